/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Thu Oct 15 09:12:40 2026 mstenber
 * Last modified: Sun Oct 18 11:20:44 2026 mstenber
 * Edit time:     161 min
 *
 */

package bptree

import (
	"cmp"
	"context"
	"slices"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/mlog"
)

type removal struct {
	removed bool
	lowered bool
	size    int
	order   int
	parent  actor.ID
}

// merge is the outcome of mergeChild within the parent.
type merge struct {
	merged  bool
	lowered bool
	size    int
	order   int
	parent  actor.ID
}

// drained is the content of a node being merged into its sibling.
type drained[K cmp.Ordered, V any] struct {
	entries  []Item[K, V]
	children []actor.ID
	hasFence bool
	fence    K
}

// Remove deletes key from a leaf. Nodes left with less than Order/2
// entries are merged with a sibling if the two fit in one node; the
// root is never merged away. Keys outside the range of the leaf fail
// with ErrMisrouted.
//
// Remove changes the structure of the tree, so it must not run
// concurrently with other changes to the same tree; Tree serializes
// them.
func (self *Node[K, V]) Remove(ctx context.Context, key K) (removed bool, err error) {
	r, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (r removal, err error) {
		s := &st.Value
		if !s.Leaf {
			err = nodeError(ErrInvalidNodeRole, self.id)
			return
		}
		if s.belowFence(key) {
			err = nodeError(ErrMisrouted, self.id)
			return
		}
		i, found := s.position(key)
		if !found {
			return
		}
		i--
		wasMax := i == len(s.Entries)-1
		s.remove(i)
		r = removal{removed: true, size: len(s.Entries), order: s.Order, parent: s.Parent}
		r.lowered = wasMax && len(s.Entries) > 0
		return r, st.Write()
	})
	if err != nil || !r.removed || r.parent == "" {
		return r.removed, err
	}
	if r.lowered {
		err = self.refreshRoutingKey(ctx, r.parent)
		if err != nil {
			return true, err
		}
	}
	if r.size >= r.order/2 {
		return true, nil
	}
	return true, self.rebalance(ctx)
}

// rebalance merges underfull nodes, starting from this one and
// moving up while the parents become underfull too.
func (self *Node[K, V]) rebalance(ctx context.Context) error {
	n := self
	for {
		parent, err := n.Parent(ctx)
		if err != nil || parent == nil {
			return err
		}
		underfull, err := parent.mergeChild(ctx, n)
		if err != nil || !underfull {
			return err
		}
		n = parent
	}
}

// mergeChild merges child with its next (or previous, for the last
// child) sibling if they fit within one node. The lower of the two is
// drained into the higher one, dropped from this node and released,
// all within one call of this node. Returns whether this node became
// underfull.
func (self *Node[K, V]) mergeChild(ctx context.Context, child *Node[K, V]) (underfull bool, err error) {
	m, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (m merge, err error) {
		s := &st.Value
		i := s.childIndex(child.id)
		if i < 0 {
			err = nodeError(errNotChild, child.id)
			return
		}
		if len(s.Children) < 2 {
			return
		}
		if i == len(s.Children)-1 {
			i--
		}
		nctx := context.WithoutCancel(ctx)
		lower, higher := self.open(s.Children[i]), self.open(s.Children[i+1])
		ls, err := lower.Size(nctx)
		if err != nil {
			return
		}
		hs, err := higher.Size(nctx)
		if err != nil {
			return
		}
		if ls+hs > s.Order {
			return
		}
		mlog.Printf2("bptree/remove", "%v merging %v (%d) into %v (%d)", self, lower, ls, higher, hs)
		d, err := lower.drain(nctx)
		if err != nil {
			return
		}
		high, ok, err := higher.absorb(nctx, d)
		if err != nil {
			if rerr := lower.restore(nctx); rerr != nil {
				mlog.Printf2("bptree/remove", "%v restore failed: %v", lower, rerr)
			}
			return
		}
		s.remove(i)
		last := i == len(s.Entries)-1

		// higher may have been empty, with routing key of the past
		if ok && high != s.Entries[i].Key {
			s.Entries[i].Key = high
			m.lowered = last
			if !last {
				err = self.open(s.Children[i+1]).lowerFence(nctx, high)
				if err != nil {
					return
				}
			}
		}
		err = st.Write()
		if err != nil {
			return
		}
		err = actor.Release(nctx, self.host, NodeGroup, lower.id)
		if err != nil {
			return
		}
		m.merged = true
		m.size = len(s.Entries)
		m.order = s.Order
		m.parent = s.Parent
		return
	})
	if err != nil || !m.merged {
		return false, err
	}
	if m.lowered && m.parent != "" {
		err = self.refreshRoutingKey(ctx, m.parent)
		if err != nil {
			return false, err
		}
	}
	return m.size < m.order/2, nil
}

func (self *Node[K, V]) drain(ctx context.Context) (drained[K, V], error) {
	return nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (drained[K, V], error) {
		s := &st.Value
		s.Retired = true
		d := drained[K, V]{
			entries:  slices.Clone(s.Entries),
			children: slices.Clone(s.Children),
			hasFence: s.HasFence,
			fence:    s.Fence,
		}
		return d, st.Write()
	})
}

func (self *Node[K, V]) restore(ctx context.Context) error {
	_, err := nodeCall(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		if !st.Value.Initialized {
			return false, nodeError(ErrNotInitialized, self.id)
		}
		st.Value.Retired = false
		return true, st.Write()
	})
	return err
}

// absorb prepends the content of the lower sibling, returning the
// resulting maximum key. The two must fit within one node.
func (self *Node[K, V]) absorb(ctx context.Context, d drained[K, V]) (high K, ok bool, err error) {
	r, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (r lookup[K, K], err error) {
		s := &st.Value
		if len(s.Entries)+len(d.entries) > s.Order {
			err = nodeError(ErrInconsistent, self.id)
			return
		}
		s.Entries = append(slices.Clone(d.entries), s.Entries...)
		if !s.Leaf {
			s.Children = append(slices.Clone(d.children), s.Children...)
		}
		s.HasFence = d.hasFence
		s.Fence = d.fence
		for _, child := range d.children {
			err = self.open(child).adopt(context.WithoutCancel(ctx), self.id)
			if err != nil {
				return
			}
		}
		r.key, r.found = s.maxKey()
		r.value = r.key
		return r, st.Write()
	})
	return r.value, r.found, err
}
