/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Wed Oct 14 13:30:05 2026 mstenber
 * Last modified: Sun Oct 18 10:41:52 2026 mstenber
 * Edit time:     204 min
 *
 */

package bptree

import (
	"cmp"
	"context"
	"slices"

	"github.com/pkg/errors"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/mlog"
)

// maxRelinks bounds how many times a single step chases a node that
// moved to another parent.
const maxRelinks = 16

type split[K cmp.Ordered] struct {
	low    actor.ID
	lowMax K
}

// change is what a mutation of a node means to its parent.
type change[K cmp.Ordered] struct {
	parent actor.ID
	order  int
	grew   bool
	max    K
	split  *split[K]
}

// InsertItem adds item to a leaf, replacing the value of an equal
// key. If the tree grew a new root, it is returned. Keys outside the
// range of the leaf fail with ErrMisrouted.
func (self *Node[K, V]) InsertItem(ctx context.Context, item Item[K, V]) (*Node[K, V], error) {
	c, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (c change[K], err error) {
		s := &st.Value
		if !s.Leaf {
			err = nodeError(ErrInvalidNodeRole, self.id)
			return
		}
		if s.belowFence(item.Key) {
			err = nodeError(ErrMisrouted, self.id)
			return
		}
		i, found := s.position(item.Key)
		if found {
			s.Entries[i-1].Value = item.Value
			return c, st.Write()
		}
		oldMax, hadMax := s.maxKey()
		s.insert(i, item, "")
		return self.grown(ctx, st, oldMax, hadMax)
	})
	if err != nil {
		return nil, err
	}
	return self.propagate(ctx, c)
}

// InsertNode adds child to an internal node, keyed by the child's
// current maximum key. Fences are not touched; within a tree, splits
// register their low halves on their own.
func (self *Node[K, V]) InsertNode(ctx context.Context, child *Node[K, V]) (*Node[K, V], error) {
	key, ok, err := child.MaxKey(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrInvalidNodeRole, "empty child %v", child.id)
	}
	c, err := self.insertNode(ctx, "", child, key)
	if err != nil {
		return nil, err
	}
	return self.propagate(ctx, c)
}

// insertNode adds child with routing key key. If sibling is given,
// child goes right before it, and sibling must still be our child.
func (self *Node[K, V]) insertNode(ctx context.Context, sibling actor.ID, child *Node[K, V], key K) (change[K], error) {
	return nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (c change[K], err error) {
		s := &st.Value
		if s.Leaf {
			err = nodeError(ErrInvalidNodeRole, self.id)
			return
		}
		if s.childIndex(child.id) >= 0 {
			return
		}
		var i int
		if sibling != "" {
			i = s.childIndex(sibling)
			if i < 0 {
				err = nodeError(errNotChild, sibling)
				return
			}
		} else {
			i, _ = s.position(key)
		}
		oldMax, hadMax := s.maxKey()
		s.insert(i, Item[K, V]{Key: key}, child.id)
		err = child.adopt(context.WithoutCancel(ctx), self.id)
		if err != nil {
			return
		}
		return self.grown(ctx, st, oldMax, hadMax)
	})
}

// grown finishes a call that added entries: the node is split if it
// became too large, and written in any case.
func (self *Node[K, V]) grown(ctx context.Context, st *actor.State[nodeState[K, V]], oldMax K, hadMax bool) (change[K], error) {
	s := &st.Value
	c := change[K]{parent: s.Parent, order: s.Order}
	c.max, _ = s.maxKey()
	c.grew = !hadMax || c.max > oldMax
	if len(s.Entries) <= s.Order {
		return c, st.Write()
	}
	sp, err := self.split(ctx, st)
	if err != nil {
		return c, err
	}
	c.split = &sp
	return c, nil
}

// split moves the lower Order/2 entries to a fresh node. This node
// keeps its identity (and position in the parent) as the high half.
func (self *Node[K, V]) split(ctx context.Context, st *actor.State[nodeState[K, V]]) (split[K], error) {
	s := &st.Value
	n := s.Order / 2
	low := NewNode[K, V](self.host)
	entries := slices.Clone(s.Entries[:n])
	var children []actor.ID
	if !s.Leaf {
		children = slices.Clone(s.Children[:n])
	}
	mlog.Printf2("bptree/insert", "%v split, %d to %v", self, n, low)
	err := low.initializeAsSplit(context.WithoutCancel(ctx), s, entries, children)
	if err != nil {
		return split[K]{}, err
	}
	sp := split[K]{low: low.id, lowMax: entries[n-1].Key}
	s.Entries = slices.Clone(s.Entries[n:])
	if !s.Leaf {
		s.Children = slices.Clone(s.Children[n:])
	}
	s.HasFence = true
	s.Fence = sp.lowMax
	return sp, st.Write()
}

// propagate reflects change of this node to its parent. If the root
// split, the new root is returned.
func (self *Node[K, V]) propagate(ctx context.Context, c change[K]) (*Node[K, V], error) {
	if c.split == nil {
		if c.grew && c.parent != "" {
			return nil, self.refreshRoutingKey(ctx, c.parent)
		}
		return nil, nil
	}
	low := self.open(c.split.low)
	if c.parent == "" {
		return self.newRoot(ctx, c, low)
	}
	if c.grew {
		err := self.refreshRoutingKey(ctx, c.parent)
		if err != nil {
			return nil, err
		}
	}
	return self.registerSplit(ctx, c.parent, low, c.split.lowMax)
}

// registerSplit adds the low half of this node to the parent.
func (self *Node[K, V]) registerSplit(ctx context.Context, parent actor.ID, low *Node[K, V], lowMax K) (*Node[K, V], error) {
	attempts := 0
	for {
		if parent == "" {
			return nil, nodeError(ErrInconsistent, self.id)
		}
		p := self.open(parent)
		c, err := p.insertNode(ctx, self.id, low, lowMax)
		if err != nil {
			parent, err = self.relink(ctx, err, &attempts)
			if err != nil {
				return nil, err
			}
			continue
		}
		return p.propagate(ctx, c)
	}
}

// newRoot creates a parent for this (former root) node and its low
// half. If someone else created one first, the low half is added to
// theirs instead.
func (self *Node[K, V]) newRoot(ctx context.Context, c change[K], low *Node[K, V]) (*Node[K, V], error) {
	root := NewNode[K, V](self.host)
	err := root.initializeAsParent(ctx, c.order, low, c.split.lowMax, self, c.max)
	if err != nil {
		return nil, err
	}
	err = low.SetParent(ctx, root)
	if err != nil {
		return nil, err
	}
	err = self.SetParent(ctx, root)
	if errors.Is(err, ErrParentAlreadySet) {
		mlog.Printf2("bptree/insert", "%v lost root race, dropping %v", self, root)
		err = actor.Release(ctx, self.host, NodeGroup, root.id)
		if err != nil {
			return nil, err
		}
		parent, err := self.parentId(ctx)
		if err != nil {
			return nil, err
		}
		return self.registerSplit(ctx, parent, low, c.split.lowMax)
	}
	if err != nil {
		return nil, err
	}
	mlog.Printf2("bptree/insert", "%v new root %v", self, root)

	// Inserts between the split and SetParent had no parent to tell
	return root, self.refreshRoutingKey(ctx, root.id)
}

// relink returns the current parent of this node, if err says the
// node is no longer child of the parent we thought it was.
func (self *Node[K, V]) relink(ctx context.Context, err error, attempts *int) (actor.ID, error) {
	if !errors.Is(err, errNotChild) || *attempts >= maxRelinks {
		return "", err
	}
	*attempts++
	mlog.Printf2("bptree/insert", "%v moved, relinking", self)
	return self.parentId(ctx)
}

// refreshRoutingKey sets the routing key of this node within parent
// to the current maximum of the node, and continues upwards while the
// updated entry is the last one. Lowering a key moves the fence of the
// next sibling along.
func (self *Node[K, V]) refreshRoutingKey(ctx context.Context, parent actor.ID) error {
	child := self
	attempts := 0
	for parent != "" {
		p := self.open(parent)
		up, err := nodeUpdate(ctx, p, func(st *actor.State[nodeState[K, V]]) (actor.ID, error) {
			s := &st.Value
			i := s.childIndex(child.id)
			if i < 0 {
				return "", nodeError(errNotChild, child.id)
			}
			key, ok, err := child.MaxKey(context.WithoutCancel(ctx))
			if err != nil || !ok {
				return "", err
			}
			last := i == len(s.Entries)-1
			old := s.Entries[i].Key
			if key == old {
				return "", nil
			}
			if key > old && !last {
				// only the last child may grow past its routing key
				return "", nodeError(ErrInconsistent, child.id)
			}
			s.Entries[i].Key = key
			if !last {
				err = p.open(s.Children[i+1]).lowerFence(context.WithoutCancel(ctx), key)
				if err != nil {
					return "", err
				}
			}
			err = st.Write()
			if err != nil || !last {
				return "", err
			}
			return s.Parent, nil
		})
		if err != nil {
			parent, err = child.relink(ctx, err, &attempts)
			if err != nil {
				return err
			}
			continue
		}
		child = p
		parent = up
	}
	return nil
}
