package blogcatalog

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingWarmer struct {
	mu    sync.Mutex
	calls [][]string
	done  chan struct{}
	err   error
}

func (w *recordingWarmer) Warm(locales []string) error {
	w.mu.Lock()
	w.calls = append(w.calls, locales)
	w.mu.Unlock()
	select {
	case w.done <- struct{}{}:
	default:
	}
	return w.err
}

func TestRefresher_WarmsOnSchedule(t *testing.T) {
	w := &recordingWarmer{done: make(chan struct{}, 1)}
	r, err := NewRefresher(w, []string{"en", "es"}, 20*time.Millisecond, nil)
	require.NoError(t, err)
	r.Start()
	defer func() { require.NoError(t, r.Stop()) }()

	select {
	case <-w.done:
	case <-time.After(3 * time.Second):
		t.Fatal("refresh did not run")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	require.Equal(t, []string{"en", "es"}, w.calls[0])
}

func TestRefresher_ErrorDoesNotStopSchedule(t *testing.T) {
	w := &recordingWarmer{done: make(chan struct{}, 1), err: errors.New("boom")}
	r, err := NewRefresher(w, []string{"en"}, 10*time.Millisecond, nil)
	require.NoError(t, err)
	r.Start()
	defer func() { _ = r.Stop() }()

	for i := 0; i < 2; i++ {
		select {
		case <-w.done:
		case <-time.After(3 * time.Second):
			t.Fatalf("run %d did not happen", i+1)
		}
	}
}

func TestRefresher_RejectsNonPositiveInterval(t *testing.T) {
	_, err := NewRefresher(&recordingWarmer{}, nil, 0, nil)
	require.Error(t, err)
}

func TestRefresher_WarmsRealCache(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCatalogCache(loader, time.Hour)
	r, err := NewRefresher(cache, []string{"en"}, 10*time.Millisecond, nil)
	require.NoError(t, err)
	r.refresh()
	require.Equal(t, []string{"en"}, cache.Locales())
}
