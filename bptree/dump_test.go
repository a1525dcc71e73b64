/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Sat Oct 17 13:20:31 2026 mstenber
 * Last modified: Sat Oct 17 13:58:06 2026 mstenber
 * Edit time:     21 min
 *
 */

package bptree

import (
	"context"
	"strings"
	"testing"

	"github.com/stvp/assert"
	ugorji "github.com/ugorji/go/codec"
)

func TestToJSON(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHost()
	defer h.Close()

	tree := newTree[string, string](t, h, 3)
	b, err := tree.ToJSON(ctx)
	assert.Nil(t, err)
	assert.Equal(t, strings.TrimSpace(string(b)), `{"level":0,"content":[]}`)

	assert.Nil(t, tree.Add(ctx, NewItem("b", "2")))
	assert.Nil(t, tree.Add(ctx, NewItem("a", "1")))
	b, err = tree.ToJSON(ctx)
	assert.Nil(t, err)
	assert.Equal(t, strings.TrimSpace(string(b)),
		`{"level":0,"content":[{"key":"a","value":"1"},{"key":"b","value":"2"}]}`)

	assert.Nil(t, tree.Add(ctx, NewItem("c", "3")))
	assert.Nil(t, tree.Add(ctx, NewItem("d", "4")))
	b, err = tree.ToJSON(ctx)
	assert.Nil(t, err)
	assert.Equal(t, strings.TrimSpace(string(b)),
		`{"level":0,"content":[`+
			`{"key":"a","node":{"level":1,"content":[{"key":"a","value":"1"}]}},`+
			`{"key":"d","node":{"level":1,"content":[`+
			`{"key":"b","value":"2"},{"key":"c","value":"3"},{"key":"d","value":"4"}]}}]}`)

	var d Dump[string, string]
	assert.Nil(t, ugorji.NewDecoderBytes(b, jsonHandle).Decode(&d))
	assert.Equal(t, d.Depth(), 2)
	assert.Equal(t, dumpKeys(&d), []string{"a", "b", "c", "d"})
	height, err := tree.Height(ctx)
	assert.Nil(t, err)
	assert.Equal(t, height, d.Depth())
}

func TestDumpDepth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHost()
	defer h.Close()

	tree := newTree[int, int](t, h, 3)
	for i := 0; i < 100; i++ {
		assert.Nil(t, tree.Add(ctx, NewItem(i, i)))
		d, err := tree.Dump(ctx)
		assert.Nil(t, err)
		height, err := tree.Height(ctx)
		assert.Nil(t, err)
		assert.Equal(t, d.Depth(), height, i)
		assert.Equal(t, d.Level, 0)
	}
	root, err := tree.Root(ctx)
	assert.Nil(t, err)
	d, err := root.Dump(ctx, 3)
	assert.Nil(t, err)
	assert.Equal(t, d.Level, 3)
	assert.Equal(t, d.Content[0].Node.Level, 4)
}
