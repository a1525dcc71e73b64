/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Thu Oct 15 10:02:51 2026 mstenber
 * Last modified: Sun Oct 18 11:02:13 2026 mstenber
 * Edit time:     172 min
 *
 */

// bptree is B+ tree of node actors. Every node is an actor of its
// own with persistent state; the Tree actor knows only which node is
// the root, and coordinates operations by descending from it.
//
// Nodes are split when they have more than Order entries, and merged
// with a sibling when they have less than Order/2 entries and the
// two fit in one node. Concurrent operations on the same tree are
// allowed. Changes (Add, Remove) are serialized by the tree actor;
// lookups are not, and as changes are not atomic across nodes, a
// lookup that runs into a node that was just moved around (or below
// the fence of a node) is retried from the root.
package bptree

import (
	"cmp"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/util"
)

// RetryInterval is the pause before an operation that ran into
// concurrent restructuring is retried, and MaxRetries the number of
// retries before the error is returned to the caller.
var (
	RetryInterval        = 2 * time.Millisecond
	MaxRetries    uint64 = 2000
)

// Tree is a handle to the tree coordinator actor.
type Tree[K cmp.Ordered, V any] struct {
	host *actor.Host
	id   actor.ID
}

// NewTree returns handle to tree with fresh identity; it has to be
// initialized with InitializeTree before use.
func NewTree[K cmp.Ordered, V any](host *actor.Host) *Tree[K, V] {
	return OpenTree[K, V](host, host.NewID())
}

func OpenTree[K cmp.Ordered, V any](host *actor.Host, id actor.ID) *Tree[K, V] {
	return &Tree[K, V]{host: host, id: id}
}

// OpenNamedTree returns the tree registered as name within the host
// storage, registering a fresh identity if there is none yet.
func OpenNamedTree[K cmp.Ordered, V any](ctx context.Context, host *actor.Host, name string) (*Tree[K, V], error) {
	id, err := host.LookupOrRegisterName(name, func() (actor.ID, error) {
		return host.NewID(), nil
	})
	if err != nil {
		return nil, err
	}
	return OpenTree[K, V](host, id), nil
}

func (self *Tree[K, V]) Id() actor.ID {
	return self.id
}

func (self *Tree[K, V]) String() string {
	return "tree:" + string(self.id)
}

func (self *Tree[K, V]) call(ctx context.Context, cb func(st *actor.State[treeState]) (treeState, error)) (treeState, error) {
	return actor.Call[treeState, treeState](ctx, self.host, TreeGroup, self.id, cb)
}

func (self *Tree[K, V]) state(ctx context.Context) (treeState, error) {
	return self.call(ctx, func(st *actor.State[treeState]) (treeState, error) {
		if !st.Value.Initialized {
			return st.Value, errors.Wrapf(ErrNotInitialized, "tree %v", self.id)
		}
		return st.Value, nil
	})
}

// InitializeTree creates the initial, empty, root leaf.
func (self *Tree[K, V]) InitializeTree(ctx context.Context, order int) error {
	if order < MinimumOrder {
		return errors.Wrapf(ErrInvalidOrder, "order %d", order)
	}
	_, err := self.call(ctx, func(st *actor.State[treeState]) (treeState, error) {
		if st.Value.Initialized {
			return st.Value, errors.Wrapf(ErrAlreadyInitialized, "tree %v", self.id)
		}
		root := NewNode[K, V](self.host)
		err := root.InitializeAsLeaf(context.WithoutCancel(ctx), order)
		if err != nil {
			return st.Value, err
		}
		st.Value = treeState{Initialized: true, Order: order, Root: root.id, Version: 1}
		mlog.Printf2("bptree/tree", "%v initialized, order %d root %v", self, order, root)
		return st.Value, st.Write()
	})
	return err
}

func (self *Tree[K, V]) IsInitialized(ctx context.Context) (bool, error) {
	_, err := self.state(ctx)
	if errors.Is(err, ErrNotInitialized) {
		return false, nil
	}
	return err == nil, err
}

func (self *Tree[K, V]) Order(ctx context.Context) (int, error) {
	st, err := self.state(ctx)
	return st.Order, err
}

// Root returns the current root node.
func (self *Tree[K, V]) Root(ctx context.Context) (*Node[K, V], error) {
	var root *Node[K, V]
	err := self.retry(ctx, func(ctx context.Context) (err error) {
		root, err = self.top(ctx)
		return
	})
	return root, err
}

func (self *Tree[K, V]) backoff() retry.Backoff {
	return retry.WithMaxRetries(MaxRetries, retry.NewConstant(RetryInterval))
}

// retry runs cb until it does not fail due to concurrent
// restructuring.
func (self *Tree[K, V]) retry(ctx context.Context, cb func(ctx context.Context) error) error {
	_, err := self.state(ctx)
	if err != nil {
		return err
	}
	return retry.Do(ctx, self.backoff(), func(ctx context.Context) error {
		err := cb(ctx)
		if isStale(err) {
			mlog.Printf2("bptree/tree", "%v retrying: %v", self, err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// top returns the topmost node. The stored root may lag behind a
// change in progress; parent links are followed up from it.
func (self *Tree[K, V]) top(ctx context.Context) (*Node[K, V], error) {
	st, err := self.state(ctx)
	if err != nil {
		return nil, err
	}
	return climb(ctx, OpenNode[K, V](self.host, st.Root))
}

func climb[K cmp.Ordered, V any](ctx context.Context, n *Node[K, V]) (*Node[K, V], error) {
	for {
		parent, err := n.Parent(ctx)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return n, nil
		}
		n = parent
	}
}

// update calls cb with the root node within a call of the tree
// actor, so changes to the tree happen one at a time. If cb returns
// a new root, it is installed.
func (self *Tree[K, V]) update(ctx context.Context, cb func(ctx context.Context, root *Node[K, V]) (*Node[K, V], error)) error {
	return self.retry(ctx, func(ctx context.Context) error {
		_, err := self.call(ctx, func(st *actor.State[treeState]) (treeState, error) {
			if !st.Value.Initialized {
				return st.Value, errors.Wrapf(ErrNotInitialized, "tree %v", self.id)
			}
			nctx := context.WithoutCancel(ctx)
			root, err := climb(nctx, OpenNode[K, V](self.host, st.Value.Root))
			if err != nil {
				return st.Value, err
			}
			newRoot, err := cb(nctx, root)
			if newRoot != nil {
				top, cerr := climb(nctx, newRoot)
				if cerr != nil {
					return st.Value, cerr
				}
				root = top
			}
			if root.id == st.Value.Root {
				return st.Value, err
			}
			mlog.Printf2("bptree/tree", "%v root %v -> %v", self, st.Value.Root, root)
			st.Value.Root = root.id
			st.Value.Version++
			werr := st.Write()
			if err == nil {
				err = werr
			}
			return st.Value, err
		})
		return err
	})
}

// Add inserts item, replacing the value if the key is already
// present.
func (self *Tree[K, V]) Add(ctx context.Context, item Item[K, V]) error {
	return self.update(ctx, func(ctx context.Context, root *Node[K, V]) (*Node[K, V], error) {
		leaf, err := root.NodeWithValue(ctx, item.Key)
		if err != nil {
			return nil, err
		}
		return leaf.InsertItem(ctx, item)
	})
}

// AddAll adds items with at most parallel concurrent Adds; the tree
// applies them one at a time. The first error encountered is
// returned, after all of the Adds have finished.
func (self *Tree[K, V]) AddAll(ctx context.Context, items []Item[K, V], parallel int) error {
	pl := util.ParallelLimiter{LimitTotal: util.IMax(parallel, 1)}
	var mu util.MutexLocked
	var first error
	for _, item := range items {
		item := item
		pl.Go(func() {
			err := self.Add(ctx, item)
			if err == nil {
				return
			}
			defer mu.Locked()()
			if first == nil {
				first = err
			}
		})
	}
	pl.Wait()
	return first
}

// Get returns the value of key, if it is present.
func (self *Tree[K, V]) Get(ctx context.Context, key K) (value V, found bool, err error) {
	err = self.retry(ctx, func(ctx context.Context) error {
		root, err := self.top(ctx)
		if err != nil {
			return err
		}
		leaf, err := root.NodeWithValue(ctx, key)
		if err != nil {
			return err
		}
		value, found, err = leaf.Value(ctx, key)
		return err
	})
	return
}

// Remove deletes key, returning whether it was present.
func (self *Tree[K, V]) Remove(ctx context.Context, key K) (removed bool, err error) {
	err = self.update(ctx, func(ctx context.Context, root *Node[K, V]) (*Node[K, V], error) {
		leaf, err := root.NodeWithValue(ctx, key)
		if err != nil {
			return nil, err
		}
		// the key may have been removed by an earlier attempt
		r, err := leaf.Remove(ctx, key)
		removed = removed || r
		return nil, err
	})
	return
}

// Height is the number of levels; a tree with only root leaf has
// height 1.
func (self *Tree[K, V]) Height(ctx context.Context) (height int, err error) {
	err = self.retry(ctx, func(ctx context.Context) error {
		n, err := self.top(ctx)
		if err != nil {
			return err
		}
		height = 1
		for {
			children, err := n.Children(ctx)
			if err != nil {
				return err
			}
			if len(children) == 0 {
				return nil
			}
			height++
			n = children[0]
		}
	})
	return
}
