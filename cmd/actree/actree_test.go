/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Sat Oct 17 15:42:30 2026 mstenber
 * Last modified: Sat Oct 17 16:05:51 2026 mstenber
 * Edit time:     18 min
 *
 */

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stvp/assert"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/bptree"
	"github.com/fingon/go-actree/storage/inmemory"
)

func TestCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	host := actor.Host{Storage: inmemory.NewInMemoryBackend()}.Init()
	defer host.Close()
	tree, err := bptree.OpenNamedTree[string, string](ctx, host, "cli")
	assert.Nil(t, err)

	var out bytes.Buffer
	c := &cli{tree: tree, order: 3, parallel: 4, out: &out,
		in: strings.NewReader("k1\tv1\nk2\tv2\n\nk3\tv3\n")}
	run := func(args ...string) string {
		out.Reset()
		assert.Nil(t, c.run(ctx, args[0], args[1:]))
		return out.String()
	}
	assert.Equal(t, run("dump"), "{}\n")
	run("init")
	run("add", "a", "1", "b", "2")
	assert.Equal(t, run("get", "a", "x"), "a: 1\nx: not found\n")
	assert.Equal(t, run("load", "-"), "loaded 3 items\n")
	assert.Equal(t, run("get", "k2"), "k2: v2\n")
	assert.Equal(t, run("remove", "b", "b2"), "b2: not found\n")
	assert.Equal(t, run("check"), "ok, height 2\n")
	assert.True(t, strings.HasPrefix(run("dump"), `{"level":0,`))

	err = c.run(ctx, "add", []string{"a"})
	assert.True(t, errors.Is(err, ErrUsage))
	err = c.run(ctx, "get", nil)
	assert.True(t, errors.Is(err, ErrUsage))
	err = c.run(ctx, "frobnicate", nil)
	assert.True(t, errors.Is(err, ErrUsage))
	err = c.run(ctx, "init", nil)
	assert.True(t, errors.Is(err, bptree.ErrAlreadyInitialized))
}

func TestReadItems(t *testing.T) {
	t.Parallel()
	items, err := readItems(strings.NewReader("a\tb\tc\n"))
	assert.Nil(t, err)
	assert.Equal(t, items, []bptree.Item[string, string]{bptree.NewItem("a", "b\tc")})
	_, err = readItems(strings.NewReader("nope\n"))
	assert.True(t, errors.Is(err, ErrUsage))
}
