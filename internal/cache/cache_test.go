package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TTLStore {
	t.Helper()
	s := NewTTLStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Close)
	return s
}

func TestSetGetRemove(t *testing.T) {
	s := newTestStore(t)
	s.Set("a", []string{"x"}, Expiration{Sliding: time.Minute})

	v, ok := Get[[]string](s, "a")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, v)

	_, ok = Get[int](s, "a")
	assert.False(t, ok, "wrong type is a miss")

	s.Remove("a", "missing")
	_, ok = s.Get("a")
	assert.False(t, ok)
}

func TestAbsoluteDeadline(t *testing.T) {
	s := newTestStore(t)
	start := time.Now()
	s.now = func() time.Time { return start }
	s.Set("w", 1, Expiration{Absolute: 30 * time.Minute, Sliding: 5 * time.Minute})

	_, ok := s.Get("w")
	require.True(t, ok)

	s.now = func() time.Time { return start.Add(31 * time.Minute) }
	_, ok = s.Get("w")
	assert.False(t, ok)
}

func TestSlidingExpiryRenewedByHits(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "v", Expiration{Sliding: 300 * time.Millisecond})

	time.Sleep(200 * time.Millisecond)
	_, ok := s.Get("k")
	require.True(t, ok)
	time.Sleep(200 * time.Millisecond)
	_, ok = s.Get("k")
	require.True(t, ok, "hit should have renewed the entry")

	time.Sleep(450 * time.Millisecond)
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestHitMissCounters(t *testing.T) {
	s := newTestStore(t)
	hits := testutil.ToFloat64(hitMetric)
	misses := testutil.ToFloat64(missMetric)

	s.Set("c", 1, Expiration{Sliding: time.Minute})
	s.Get("c")
	s.Get("nope")

	assert.Equal(t, hits+1, testutil.ToFloat64(hitMetric))
	assert.Equal(t, misses+1, testutil.ToFloat64(missMetric))
}

func TestNoopNeverHolds(t *testing.T) {
	var s Store = Noop{}
	s.Set("a", 1, Expiration{})
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7b0e3f5c-9a43-4a8e-bb3a-0d1c2f00aa11")
	assert.Equal(t, "Template_7b0e3f5c-9a43-4a8e-bb3a-0d1c2f00aa11", TemplateKey(id))
	assert.Equal(t, "TemplateWithDetails_7b0e3f5c-9a43-4a8e-bb3a-0d1c2f00aa11", TemplateWithDetailsKey(id))
	assert.Equal(t, "Workouts_7b0e3f5c-9a43-4a8e-bb3a-0d1c2f00aa11", WorkoutsKey(id))
	assert.ElementsMatch(t, []string{
		TemplateKey(id), TemplateWithDetailsKey(id), KeyAllTemplatesBasic, KeyAllTemplatesDetailed,
	}, TemplateKeys(id))
}
