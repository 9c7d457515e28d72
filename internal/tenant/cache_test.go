package tenant

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/unionhome/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnion(slug string) *models.Union {
	return &models.Union{ID: uuid.New(), Slug: slug, Name: slug + " union"}
}

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func TestCache_SetGet(t *testing.T) {
	c := NewCache(0)
	u := newUnion("demo")

	c.Set("demo", u, 0)

	got, ok := c.Get("demo")
	require.True(t, ok)
	assert.Same(t, u, got)
}

func TestCache_GetMissing(t *testing.T) {
	c := NewCache(0)
	got, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, 30*time.Minute, NewCache(0).DefaultTTL())
	assert.Equal(t, 30*time.Minute, NewCache(-time.Second).DefaultTTL())
	assert.Equal(t, time.Minute, NewCache(time.Minute).DefaultTTL())
}

func TestCache_ExpiryEvictsOnRead(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache(0)
	c.now = clock.Now

	c.Set("demo", newUnion("demo"), 0)

	clock.Advance(29 * time.Minute)
	_, ok := c.Get("demo")
	assert.True(t, ok, "still valid before the default TTL")

	clock.Advance(time.Minute)
	_, ok = c.Get("demo")
	assert.False(t, ok, "expired exactly at the TTL boundary")
	assert.Equal(t, 0, c.Len(), "expired entry removed on read")
}

func TestCache_ShortTTL_RealClock(t *testing.T) {
	c := NewCache(0)
	c.Set("demo", newUnion("demo"), time.Millisecond)

	time.Sleep(2 * time.Millisecond)

	_, ok := c.Get("demo")
	assert.False(t, ok)
}

func TestCache_SetOverwrites(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache(0)
	c.now = clock.Now

	first := newUnion("demo")
	second := newUnion("demo")

	c.Set("demo", first, time.Minute)
	clock.Advance(50 * time.Second)
	c.Set("demo", second, time.Minute)
	clock.Advance(50 * time.Second)

	got, ok := c.Get("demo")
	require.True(t, ok, "overwrite restamps the expiry")
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := NewCache(0)
	c.Set("a1", newUnion("a1"), 0)
	c.Set("b2", newUnion("b2"), 0)
	c.Set("c3", newUnion("c3"), 0)

	c.Delete("a1")
	_, ok := c.Get("a1")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Delete("missing")
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("b2")
	assert.False(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(0)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("u%d", i%5)
			for j := 0; j < 200; j++ {
				switch j % 4 {
				case 0:
					c.Set(key, newUnion(key), time.Millisecond*time.Duration(j%3))
				case 1, 2:
					if u, ok := c.Get(key); ok {
						assert.Equal(t, key, u.Slug)
					}
				case 3:
					if i%10 == 0 {
						c.Delete(key)
					}
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 5)
}
