/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Fri Oct 16 09:20:15 2026 mstenber
 * Last modified: Fri Oct 16 11:02:37 2026 mstenber
 * Edit time:     29 min
 *
 */

package bptree

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/mlog"
)

type checker struct {
	leafDepth int
	nodes     int
}

// Check walks the whole tree and verifies its structure: keys in
// order and within the bounds given by the parent, routing keys equal
// to the maximum of the child, parent links, sizes and fences, and
// leaves all at the same depth. Violations are reported as
// ErrInconsistent. It is meant for quiescent trees.
func (self *Tree[K, V]) Check(ctx context.Context) error {
	root, err := self.Root(ctx)
	if err != nil {
		return err
	}
	c := checker{leafDepth: -1}
	_, _, err = root.check(ctx, &c, "", 1)
	if err == nil {
		mlog.Printf2("bptree/check", "%v ok: %d nodes, depth %d", self, c.nodes, c.leafDepth)
	}
	return err
}

// check verifies the subtree, returning its maximum key (if any).
func (self *Node[K, V]) check(ctx context.Context, c *checker, parent actor.ID, depth int) (high K, ok bool, err error) {
	s, err := self.snapshot(ctx)
	if err != nil {
		return
	}
	c.nodes++
	fail := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInconsistent, "%v: "+format, append([]interface{}{self}, args...)...)
	}
	if s.Parent != parent {
		err = fail("parent %v != %v", s.Parent, parent)
		return
	}
	if parent == "" && s.HasFence {
		err = fail("root with fence %v", s.Fence)
		return
	}
	if len(s.Entries) > s.Order {
		err = fail("%d entries, order %d", len(s.Entries), s.Order)
		return
	}
	for i, e := range s.Entries {
		if i > 0 && s.Entries[i-1].Key >= e.Key {
			err = fail("keys out of order at %d", i)
			return
		}
		if s.belowFence(e.Key) {
			err = fail("key %v below fence %v", e.Key, s.Fence)
			return
		}
	}
	high, ok = s.maxKey()
	if s.Leaf {
		if c.leafDepth < 0 {
			c.leafDepth = depth
		}
		if c.leafDepth != depth {
			err = fail("leaf at depth %d, expected %d", depth, c.leafDepth)
		}
		return
	}
	if len(s.Children) != len(s.Entries) || len(s.Children) == 0 {
		err = fail("%d children for %d entries", len(s.Children), len(s.Entries))
		return
	}
	for i, id := range s.Children {
		child := self.open(id)
		var cs nodeState[K, V]
		cs, err = child.snapshot(ctx)
		if err != nil {
			return
		}
		wantFence, hasFence := s.Fence, s.HasFence
		if i > 0 {
			wantFence, hasFence = s.Entries[i-1].Key, true
		}
		if cs.HasFence != hasFence || (hasFence && cs.Fence != wantFence) {
			err = fail("child %d fence %v/%v, expected %v/%v", i, cs.HasFence, cs.Fence, hasFence, wantFence)
			return
		}
		var cmax K
		var cok bool
		cmax, cok, err = child.check(ctx, c, self.id, depth+1)
		if err != nil {
			return
		}
		if cok && cmax != s.Entries[i].Key {
			err = fail("child %d max %v != routing key %v", i, cmax, s.Entries[i].Key)
			return
		}
	}
	return
}
