/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Wed Oct 14 10:01:47 2026 mstenber
 * Last modified: Thu Oct 15 11:12:09 2026 mstenber
 * Edit time:     154 min
 *
 */

package bptree

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/mlog"
)

// Node is a handle to a node actor. It is cheap to create and to
// copy; all of the node's state lives within the actor host, and
// every operation is a call serialized with the node's other calls.
//
// Within a call, a node only ever calls its children (or nodes it is
// just creating). Anything that involves the parent is done between
// calls, so calls never wait for each other in a cycle. Nested calls
// are not cancellable; a call is never abandoned halfway.
type Node[K cmp.Ordered, V any] struct {
	host *actor.Host
	id   actor.ID
}

func OpenNode[K cmp.Ordered, V any](host *actor.Host, id actor.ID) *Node[K, V] {
	return &Node[K, V]{host: host, id: id}
}

// NewNode returns handle to node with a fresh identity. The node
// does not exist until it is initialized.
func NewNode[K cmp.Ordered, V any](host *actor.Host) *Node[K, V] {
	return OpenNode[K, V](host, host.NewID())
}

func (self *Node[K, V]) Id() actor.ID {
	return self.id
}

func (self *Node[K, V]) String() string {
	return fmt.Sprintf("node:%v", self.id)
}

func (self *Node[K, V]) open(id actor.ID) *Node[K, V] {
	if id == "" {
		return nil
	}
	return OpenNode[K, V](self.host, id)
}

func nodeCall[K cmp.Ordered, V any, R any](ctx context.Context, n *Node[K, V], cb func(st *actor.State[nodeState[K, V]]) (R, error)) (R, error) {
	return actor.Call[nodeState[K, V], R](ctx, n.host, NodeGroup, n.id, cb)
}

// nodeUpdate is nodeCall on a live (initialized, not retired) node.
func nodeUpdate[K cmp.Ordered, V any, R any](ctx context.Context, n *Node[K, V], cb func(st *actor.State[nodeState[K, V]]) (R, error)) (R, error) {
	return nodeCall(ctx, n, func(st *actor.State[nodeState[K, V]]) (R, error) {
		s := &st.Value
		if !s.Initialized || s.Retired {
			var zero R
			return zero, nodeError(ErrNotInitialized, n.id)
		}
		return cb(st)
	})
}

func nodeRead[K cmp.Ordered, V any, R any](ctx context.Context, n *Node[K, V], cb func(s *nodeState[K, V]) R) (R, error) {
	return nodeUpdate(ctx, n, func(st *actor.State[nodeState[K, V]]) (R, error) {
		return cb(&st.Value), nil
	})
}

// InitializeAsLeaf turns a fresh node into an empty leaf.
func (self *Node[K, V]) InitializeAsLeaf(ctx context.Context, order int) error {
	if order < MinimumOrder {
		return nodeError(ErrInvalidOrder, self.id)
	}
	_, err := nodeCall(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		if st.Value.Initialized {
			return false, nodeError(ErrAlreadyInitialized, self.id)
		}
		st.Value = nodeState[K, V]{Initialized: true, Order: order, Leaf: true}
		return true, st.Write()
	})
	return err
}

// initializeAsSplit creates the low half of a split node. The
// children are moved here, so they are adopted before the state is
// written.
func (self *Node[K, V]) initializeAsSplit(ctx context.Context, template *nodeState[K, V], entries []Item[K, V], children []actor.ID) error {
	_, err := nodeCall(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		if st.Value.Initialized {
			return false, nodeError(ErrAlreadyInitialized, self.id)
		}
		st.Value = nodeState[K, V]{
			Initialized: true,
			Order:       template.Order,
			Leaf:        template.Leaf,
			Entries:     entries,
			Children:    children,
			Parent:      template.Parent,
			HasFence:    template.HasFence,
			Fence:       template.Fence,
		}
		for _, child := range children {
			err := self.open(child).adopt(context.WithoutCancel(ctx), self.id)
			if err != nil {
				return false, err
			}
		}
		return true, st.Write()
	})
	return err
}

// initializeAsParent creates a new root above the two halves of a
// split root.
func (self *Node[K, V]) initializeAsParent(ctx context.Context, order int, low *Node[K, V], lowKey K, high *Node[K, V], highKey K) error {
	_, err := nodeCall(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		if st.Value.Initialized {
			return false, nodeError(ErrAlreadyInitialized, self.id)
		}
		st.Value = nodeState[K, V]{
			Initialized: true,
			Order:       order,
			Entries:     []Item[K, V]{{Key: lowKey}, {Key: highKey}},
			Children:    []actor.ID{low.id, high.id},
		}
		return true, st.Write()
	})
	return err
}

// adopt unconditionally sets the parent link. It is used when the
// parent itself moves the node around.
func (self *Node[K, V]) adopt(ctx context.Context, parent actor.ID) error {
	_, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		if st.Value.Parent == parent {
			return false, nil
		}
		st.Value.Parent = parent
		return true, st.Write()
	})
	return err
}

// SetParent sets the parent of a node that has none yet. The parent
// must be a root itself.
func (self *Node[K, V]) SetParent(ctx context.Context, parent *Node[K, V]) error {
	pp, err := parent.Parent(ctx)
	if err != nil {
		return err
	}
	if pp != nil {
		return nodeError(ErrInvalidParent, parent.id)
	}
	_, err = nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		if st.Value.Parent != "" {
			return false, nodeError(ErrParentAlreadySet, self.id)
		}
		st.Value.Parent = parent.id
		return true, st.Write()
	})
	return err
}

// Parent returns the parent node, or nil for a root.
func (self *Node[K, V]) Parent(ctx context.Context) (*Node[K, V], error) {
	id, err := self.parentId(ctx)
	if err != nil {
		return nil, err
	}
	return self.open(id), nil
}

func (self *Node[K, V]) parentId(ctx context.Context) (actor.ID, error) {
	return nodeRead(ctx, self, func(s *nodeState[K, V]) actor.ID {
		return s.Parent
	})
}

func (self *Node[K, V]) IsLeaf(ctx context.Context) (bool, error) {
	return nodeRead(ctx, self, func(s *nodeState[K, V]) bool {
		return s.Leaf
	})
}

func (self *Node[K, V]) Order(ctx context.Context) (int, error) {
	return nodeRead(ctx, self, func(s *nodeState[K, V]) int {
		return s.Order
	})
}

// Size is the number of entries (items or children).
func (self *Node[K, V]) Size(ctx context.Context) (int, error) {
	return nodeRead(ctx, self, func(s *nodeState[K, V]) int {
		return len(s.Entries)
	})
}

// Items returns copy of the entries. For internal nodes the values
// are zero and keys are the routing keys.
func (self *Node[K, V]) Items(ctx context.Context) ([]Item[K, V], error) {
	return nodeRead(ctx, self, func(s *nodeState[K, V]) []Item[K, V] {
		return slices.Clone(s.Entries)
	})
}

func (self *Node[K, V]) Children(ctx context.Context) ([]*Node[K, V], error) {
	ids, err := nodeRead(ctx, self, func(s *nodeState[K, V]) []actor.ID {
		return slices.Clone(s.Children)
	})
	if err != nil {
		return nil, err
	}
	children := make([]*Node[K, V], len(ids))
	for i, id := range ids {
		children[i] = self.open(id)
	}
	return children, nil
}

// MaxKey returns the largest key within the node (if any).
func (self *Node[K, V]) MaxKey(ctx context.Context) (key K, ok bool, err error) {
	r, err := nodeRead(ctx, self, func(s *nodeState[K, V]) lookup[K, K] {
		k, ok := s.maxKey()
		return lookup[K, K]{k, k, ok}
	})
	return r.value, r.found, err
}

func (self *Node[K, V]) snapshot(ctx context.Context) (nodeState[K, V], error) {
	return nodeRead(ctx, self, func(s *nodeState[K, V]) nodeState[K, V] {
		return s.clone()
	})
}

// NextNode returns the sibling after child, or nil if child is the
// last one.
func (self *Node[K, V]) NextNode(ctx context.Context, child *Node[K, V]) (*Node[K, V], error) {
	return self.sibling(ctx, child, 1)
}

// PreviousNode returns the sibling before child, or nil if child is
// the first one.
func (self *Node[K, V]) PreviousNode(ctx context.Context, child *Node[K, V]) (*Node[K, V], error) {
	return self.sibling(ctx, child, -1)
}

func (self *Node[K, V]) sibling(ctx context.Context, child *Node[K, V], delta int) (*Node[K, V], error) {
	id, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (actor.ID, error) {
		s := &st.Value
		i := s.childIndex(child.id)
		if i < 0 {
			return "", nodeError(errNotChild, child.id)
		}
		i += delta
		if i < 0 || i >= len(s.Children) {
			return "", nil
		}
		return s.Children[i], nil
	})
	if err != nil {
		return nil, err
	}
	return self.open(id), nil
}

// NodeWithValue descends from this node to the leaf that should hold
// key. ErrMisrouted is returned if key is not within the range of a
// node on the way.
func (self *Node[K, V]) NodeWithValue(ctx context.Context, key K) (*Node[K, V], error) {
	n := self
	for {
		next, err := nodeUpdate(ctx, n, func(st *actor.State[nodeState[K, V]]) (actor.ID, error) {
			s := &st.Value
			if s.belowFence(key) {
				return "", nodeError(ErrMisrouted, n.id)
			}
			if s.Leaf {
				return "", nil
			}
			if len(s.Children) == 0 {
				mlog.Panicf("internal node %v without children", n.id)
			}
			return s.route(key), nil
		})
		if err != nil {
			return nil, err
		}
		if next == "" {
			return n, nil
		}
		n = n.open(next)
	}
}

// Value looks up key within a leaf. A key that is absent but within
// the range of the leaf is reported as not found; a key outside the
// range (at or below the fence) fails with ErrMisrouted, as the leaf
// cannot tell whether the key exists elsewhere.
func (self *Node[K, V]) Value(ctx context.Context, key K) (value V, found bool, err error) {
	r, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (r lookup[K, V], err error) {
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
		if found {
			r = lookup[K, V]{key, s.Entries[i-1].Value, true}
		}
		return
	})
	return r.value, r.found, err
}

// lowerFence sets the lower bound of the node and the first nodes
// below it.
func (self *Node[K, V]) lowerFence(ctx context.Context, key K) error {
	_, err := nodeUpdate(ctx, self, func(st *actor.State[nodeState[K, V]]) (bool, error) {
		s := &st.Value
		s.HasFence = true
		s.Fence = key
		if !s.Leaf && len(s.Children) > 0 {
			err := self.open(s.Children[0]).lowerFence(context.WithoutCancel(ctx), key)
			if err != nil {
				return false, err
			}
		}
		return true, st.Write()
	})
	return err
}
