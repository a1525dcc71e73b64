/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Tue Oct 13 11:50:02 2026 mstenber
 * Last modified: Tue Oct 13 13:05:41 2026 mstenber
 * Edit time:     61 min
 *
 */

package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fingon/go-actree/storage/inmemory"
	"github.com/fingon/go-actree/util"
	"github.com/stvp/assert"
)

type counter struct {
	Count   int
	History []string
}

func add(ctx context.Context, h *Host, id ID, who string) (int, error) {
	return Call(ctx, h, "counter", id, func(st *State[counter]) (int, error) {
		st.Value.Count++
		st.Value.History = append(st.Value.History, who)
		return st.Value.Count, st.Write()
	})
}

func get(ctx context.Context, h *Host, id ID) (counter, bool, error) {
	var exists bool
	c, err := Call(ctx, h, "counter", id, func(st *State[counter]) (counter, error) {
		exists = st.Exists()
		return st.Value, nil
	})
	return c, exists, err
}

func TestCall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	defer h.Close()
	id := h.NewID()
	assert.NotEqual(t, id, h.NewID())

	c, exists, err := get(ctx, h, id)
	assert.Nil(t, err)
	assert.True(t, !exists)
	assert.Equal(t, c.Count, 0)

	n, err := add(ctx, h, id, "a")
	assert.Nil(t, err)
	assert.Equal(t, n, 1)
	c, exists, err = get(ctx, h, id)
	assert.Nil(t, err)
	assert.True(t, exists)
	assert.Equal(t, c.History, []string{"a"})
}

func TestCallWithoutWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	defer h.Close()
	id := h.NewID()
	_, err := add(ctx, h, id, "a")
	assert.Nil(t, err)
	_, err = Call(ctx, h, "counter", id, func(st *State[counter]) (bool, error) {
		st.Value.Count = 42
		return true, nil
	})
	assert.Nil(t, err)
	c, _, err := get(ctx, h, id)
	assert.Nil(t, err)
	assert.Equal(t, c.Count, 1)
}

func TestSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	defer h.Close()
	id1 := h.NewID()
	id2 := h.NewID()
	var wg util.SimpleWaitGroup
	for i := 0; i < 50; i++ {
		wg.Go(func() {
			add(ctx, h, id1, "x")
		})
		wg.Go(func() {
			add(ctx, h, id2, "y")
		})
	}
	wg.Wait()
	c, _, err := get(ctx, h, id1)
	assert.Nil(t, err)
	assert.Equal(t, c.Count, 50)
	assert.Equal(t, len(c.History), 50)
	c, _, err = get(ctx, h, id2)
	assert.Nil(t, err)
	assert.Equal(t, c.Count, 50)
	assert.Equal(t, h.Calls.GetInt(), 102)
}

func TestPersistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	be := inmemory.NewInMemoryBackend()
	h := Host{Storage: be, CacheSize: 1}.Init()
	ids := []ID{h.NewID(), h.NewID(), h.NewID()}
	for _, id := range ids {
		_, err := add(ctx, h, id, string(id))
		assert.Nil(t, err)
	}
	// Cache of one means the earlier ones were evicted and reloaded
	loads := h.Loads.GetInt()
	for _, id := range ids {
		c, _, err := get(ctx, h, id)
		assert.Nil(t, err)
		assert.Equal(t, c.History, []string{string(id)})
	}
	assert.True(t, h.Loads.GetInt() > loads)
	h.Close()

	h2 := Host{Storage: be}.Init()
	defer h2.Close()
	for _, id := range ids {
		n, err := add(ctx, h2, id, "again")
		assert.Nil(t, err)
		assert.Equal(t, n, 2)
	}
}

func TestClearAndRelease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	be := inmemory.NewInMemoryBackend()
	h := Host{Storage: be}.Init()
	defer h.Close()
	id := h.NewID()
	_, err := add(ctx, h, id, "a")
	assert.Nil(t, err)
	_, err = Call(ctx, h, "counter", id, func(st *State[counter]) (bool, error) {
		return true, st.Clear()
	})
	assert.Nil(t, err)
	_, exists, err := get(ctx, h, id)
	assert.Nil(t, err)
	assert.True(t, !exists)

	_, err = add(ctx, h, id, "b")
	assert.Nil(t, err)
	assert.Nil(t, Release(ctx, h, "counter", id))
	c, exists, err := get(ctx, h, id)
	assert.Nil(t, err)
	assert.True(t, !exists)
	assert.Equal(t, c.Count, 0)
	assert.Equal(t, h.Releases.GetInt(), 2)
}

func TestClosed(t *testing.T) {
	t.Parallel()
	h := Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	h.Close()
	_, err := add(context.Background(), h, h.NewID(), "a")
	assert.Equal(t, err, ErrClosed)
	assert.Equal(t, Release(context.Background(), h, "counter", "x"), ErrClosed)
}

func TestContext(t *testing.T) {
	t.Parallel()
	h := Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	defer h.Close()
	id := h.NewID()
	var l sync.Mutex
	l.Lock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Call(ctx, h, "counter", id, func(st *State[counter]) (bool, error) {
		l.Lock()
		st.Value.Count = 7
		return true, st.Write()
	})
	assert.Equal(t, err, context.DeadlineExceeded)
	l.Unlock()

	// The call still completes; it is ahead of us in the queue
	c, _, err := get(context.Background(), h, id)
	assert.Nil(t, err)
	assert.Equal(t, c.Count, 7)
}

func TestNames(t *testing.T) {
	t.Parallel()
	h := Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	defer h.Close()
	id, err := h.LookupName("foo")
	assert.Nil(t, err)
	assert.Equal(t, id, ID(""))

	var created util.AtomicInt
	ids := make([]ID, 10)
	var wg util.SimpleWaitGroup
	for i := range ids {
		i := i
		wg.Go(func() {
			ids[i], _ = h.LookupOrRegisterName("foo", func() (ID, error) {
				created.Add(1)
				return h.NewID(), nil
			})
		})
	}
	wg.Wait()
	assert.Equal(t, created.GetInt(), 1)
	for _, v := range ids {
		assert.Equal(t, v, ids[0])
	}
	id, err = h.LookupName("foo")
	assert.Nil(t, err)
	assert.Equal(t, id, ids[0])
	assert.Nil(t, h.UnregisterName("foo"))
	id, err = h.LookupName("foo")
	assert.Nil(t, err)
	assert.Equal(t, id, ID(""))
}
