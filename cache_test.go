package blogcatalog

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLoader) LoadCatalog(locale string) (*Catalog, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	return &Catalog{Locale: locale, Posts: scenarioCatalog()}, nil
}

// gatedLoader blocks its first load until release is closed.
type gatedLoader struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (l *gatedLoader) LoadCatalog(locale string) (*Catalog, error) {
	n := l.calls.Add(1)
	if n == 1 {
		close(l.started)
		<-l.release
	}
	return &Catalog{Locale: locale, Report: LoadReport{Loaded: []string{strconv.Itoa(int(n))}}}, nil
}

type cacheCounts struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (c *cacheCounts) ObserveCatalogLoad(string, time.Duration) {}
func (c *cacheCounts) AddCatalogEntries(string, int, int)       {}
func (c *cacheCounts) IncSkippedEntry(string, string)           {}
func (c *cacheCounts) IncQuery(string, bool)                    {}
func (c *cacheCounts) IncCacheResult(_ string, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func TestCatalogCache_HitsAndMisses(t *testing.T) {
	loader := &countingLoader{}
	counts := &cacheCounts{}
	c := NewCatalogCache(loader, time.Minute, WithCacheRecorder(counts))

	first, err := c.Get("en")
	require.NoError(t, err)
	second, err := c.Get("en")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.EqualValues(t, 1, loader.calls.Load())
	require.Equal(t, 1, counts.hits)
	require.Equal(t, 1, counts.misses)

	_, err = c.Get("es")
	require.NoError(t, err)
	require.EqualValues(t, 2, loader.calls.Load())
	require.Equal(t, []string{"en", "es"}, c.Locales())
}

func TestCatalogCache_TTLExpiry(t *testing.T) {
	loader := &countingLoader{}
	c := NewCatalogCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Get("en")
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, _ = c.Get("en")
	require.EqualValues(t, 1, loader.calls.Load())

	now = now.Add(31 * time.Second)
	_, _ = c.Get("en")
	require.EqualValues(t, 2, loader.calls.Load())
}

func TestCatalogCache_ZeroTTLNeverExpires(t *testing.T) {
	loader := &countingLoader{}
	c := NewCatalogCache(loader, 0)
	now := time.Now()
	c.now = func() time.Time { return now }
	_, _ = c.Get("en")
	now = now.Add(24 * time.Hour)
	_, _ = c.Get("en")
	require.EqualValues(t, 1, loader.calls.Load())
}

func TestCatalogCache_Invalidate(t *testing.T) {
	loader := &countingLoader{}
	c := NewCatalogCache(loader, time.Hour)
	_, _ = c.Get("en")
	_, _ = c.Get("es")

	c.InvalidateLocale("es")
	_, _ = c.Get("en")
	_, _ = c.Get("es")
	require.EqualValues(t, 3, loader.calls.Load())

	c.Invalidate()
	require.Empty(t, c.Locales())
	_, _ = c.Get("en")
	require.EqualValues(t, 4, loader.calls.Load())
}

func TestCatalogCache_ErrorsAreNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("disk gone")}
	c := NewCatalogCache(loader, time.Hour)
	_, err := c.Get("en")
	require.EqualError(t, err, "disk gone")
	_, err = c.Get("en")
	require.Error(t, err)
	require.EqualValues(t, 2, loader.calls.Load())
}

func TestCatalogCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	loader := &countingLoader{delay: 50 * time.Millisecond}
	c := NewCatalogCache(loader, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cat, err := c.Get("en")
			require.NoError(t, err)
			require.Equal(t, "en", cat.Locale)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, loader.calls.Load())
}

func TestCatalogCache_Warm(t *testing.T) {
	loader := &countingLoader{}
	c := NewCatalogCache(loader, time.Hour)
	require.NoError(t, c.Warm([]string{"en", "es"}))
	require.Equal(t, []string{"en", "es"}, c.Locales())
	_, _ = c.Get("en")
	require.EqualValues(t, 2, loader.calls.Load())
}

func TestCatalogCache_GetAfterInvalidateDoesNotJoinStaleLoad(t *testing.T) {
	loader := &gatedLoader{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCatalogCache(loader, 0)

	staleCh := make(chan *Catalog, 1)
	go func() {
		cat, _ := c.Get("en")
		staleCh <- cat
	}()
	<-loader.started
	c.Invalidate()

	freshCh := make(chan *Catalog, 1)
	go func() {
		cat, _ := c.Get("en")
		freshCh <- cat
	}()
	var fresh *Catalog
	select {
	case fresh = <-freshCh:
	case <-time.After(2 * time.Second):
		close(loader.release)
		t.Fatal("Get after Invalidate waited on the load started before it")
	}
	require.Equal(t, []string{"2"}, fresh.Report.Loaded)

	close(loader.release)
	stale := <-staleCh
	require.Equal(t, []string{"1"}, stale.Report.Loaded)

	cached, err := c.Get("en")
	require.NoError(t, err)
	require.Same(t, fresh, cached)
	require.EqualValues(t, 2, loader.calls.Load())
}
