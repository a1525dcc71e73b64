/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Thu Oct 15 15:40:02 2026 mstenber
 * Last modified: Fri Oct 16 09:12:44 2026 mstenber
 * Edit time:     36 min
 *
 */

package bptree

import (
	"cmp"
	"context"

	ugorji "github.com/ugorji/go/codec"
)

var jsonHandle = &ugorji.JsonHandle{}

// Dump is diagnostic snapshot of a subtree. Leaf entries carry
// values, internal entries carry the dumps of the children keyed by
// their maximum key.
type Dump[K cmp.Ordered, V any] struct {
	Level   int               `codec:"level"`
	Content []DumpEntry[K, V] `codec:"content"`
}

type DumpEntry[K cmp.Ordered, V any] struct {
	Key   K           `codec:"key"`
	Value *V          `codec:"value,omitempty"`
	Node  *Dump[K, V] `codec:"node,omitempty"`
}

// Depth is the number of levels within the dump.
func (self *Dump[K, V]) Depth() int {
	depth := 0
	for _, e := range self.Content {
		if e.Node != nil {
			depth = max(depth, e.Node.Depth())
		}
	}
	return depth + 1
}

func (self *Dump[K, V]) JSON() ([]byte, error) {
	var b []byte
	err := ugorji.NewEncoderBytes(&b, jsonHandle).Encode(self)
	return b, err
}

// Dump snapshots the subtree rooted at this node. Nodes are read one
// at a time, so concurrent changes may show up partially.
func (self *Node[K, V]) Dump(ctx context.Context, level int) (*Dump[K, V], error) {
	s, err := self.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	d := &Dump[K, V]{Level: level, Content: make([]DumpEntry[K, V], len(s.Entries))}
	for i, e := range s.Entries {
		d.Content[i].Key = e.Key
		if s.Leaf {
			value := e.Value
			d.Content[i].Value = &value
			continue
		}
		d.Content[i].Node, err = self.open(s.Children[i]).Dump(ctx, level+1)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (self *Tree[K, V]) Dump(ctx context.Context) (d *Dump[K, V], err error) {
	err = self.retry(ctx, func(ctx context.Context) error {
		root, err := self.top(ctx)
		if err != nil {
			return err
		}
		d, err = root.Dump(ctx, 0)
		return err
	})
	return
}

// ToJSON returns the dump of the whole tree as JSON, or {} if the
// tree has not been initialized.
func (self *Tree[K, V]) ToJSON(ctx context.Context) ([]byte, error) {
	ok, err := self.IsInitialized(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []byte("{}"), nil
	}
	d, err := self.Dump(ctx)
	if err != nil {
		return nil, err
	}
	return d.JSON()
}
