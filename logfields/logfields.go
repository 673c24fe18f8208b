// Package logfields keeps slog attribute keys consistent across packages.
package logfields

import "log/slog"

const (
	KeySlug       = "slug"
	KeyLocale     = "locale"
	KeyPath       = "path"
	KeyReason     = "reason"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyComponent  = "component"
	KeyRequestID  = "request_id"
	KeyError      = "error"
)

func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Locale(l string) slog.Attr       { return slog.String(KeyLocale, l) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
