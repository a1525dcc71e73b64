/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Wed Oct 14 09:20:12 2026 mstenber
 * Last modified: Wed Oct 14 16:02:55 2026 mstenber
 * Edit time:     47 min
 *
 */

package bptree

import (
	"cmp"
	"slices"

	"github.com/fingon/go-actree/actor"
)

const (
	NodeGroup = "node"
	TreeGroup = "tree"
)

const MinimumOrder = 3

// nodeState is the persisted state of a node actor.
//
// Leaf nodes have (key, value) entries. Internal nodes have (maximum
// key of child, zero value) entries with Children index-aligned.
//
// If HasFence is set, every key within the node's subtree is larger
// than Fence; the fence is the routing key of the previous sibling.
type nodeState[K cmp.Ordered, V any] struct {
	Initialized bool
	Order       int
	Leaf        bool
	Entries     []Item[K, V]
	Children    []actor.ID
	Parent      actor.ID
	HasFence    bool
	Fence       K
	Retired     bool
}

type treeState struct {
	Initialized bool
	Order       int
	Root        actor.ID
	Version     uint64
}

// position returns the insertion index of key, found by scanning
// down from the end, and whether the entry before it has equal key.
func (self *nodeState[K, V]) position(key K) (int, bool) {
	i := len(self.Entries)
	for i > 0 && self.Entries[i-1].Key > key {
		i--
	}
	return i, i > 0 && self.Entries[i-1].Key == key
}

func (self *nodeState[K, V]) insert(i int, item Item[K, V], child actor.ID) {
	self.Entries = slices.Insert(self.Entries, i, item)
	if !self.Leaf {
		self.Children = slices.Insert(self.Children, i, child)
	}
}

func (self *nodeState[K, V]) remove(i int) {
	self.Entries = slices.Delete(self.Entries, i, i+1)
	if !self.Leaf {
		self.Children = slices.Delete(self.Children, i, i+1)
	}
}

func (self *nodeState[K, V]) maxKey() (key K, ok bool) {
	if len(self.Entries) == 0 {
		return
	}
	return self.Entries[len(self.Entries)-1].Key, true
}

// belowFence tells if key cannot be within this node.
func (self *nodeState[K, V]) belowFence(key K) bool {
	return self.HasFence && key <= self.Fence
}

// route returns the child that may contain key: first one with
// routing key >= key, or the last one.
func (self *nodeState[K, V]) route(key K) actor.ID {
	for i, e := range self.Entries {
		if e.Key >= key {
			return self.Children[i]
		}
	}
	return self.Children[len(self.Children)-1]
}

func (self *nodeState[K, V]) childIndex(id actor.ID) int {
	return slices.Index(self.Children, id)
}

func (self *nodeState[K, V]) clone() nodeState[K, V] {
	c := *self
	c.Entries = slices.Clone(self.Entries)
	c.Children = slices.Clone(self.Children)
	return c
}

// lookup is the result of a point query within a call.
type lookup[K cmp.Ordered, T any] struct {
	key   K
	value T
	found bool
}
