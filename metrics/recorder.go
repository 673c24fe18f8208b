// Package metrics defines the observability hooks used by the catalog and
// HTTP layer, with a Prometheus implementation.
package metrics

import "time"

// Recorder receives catalog and query events. NoopRecorder is used when
// metrics are not configured.
type Recorder interface {
	ObserveCatalogLoad(locale string, d time.Duration)
	AddCatalogEntries(locale string, loaded, skipped int)
	IncSkippedEntry(locale, reason string)
	IncQuery(locale string, filtered bool)
	IncCacheResult(locale string, hit bool)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCatalogLoad(string, time.Duration) {}
func (NoopRecorder) AddCatalogEntries(string, int, int)       {}
func (NoopRecorder) IncSkippedEntry(string, string)           {}
func (NoopRecorder) IncQuery(string, bool)                    {}
func (NoopRecorder) IncCacheResult(string, bool)              {}
