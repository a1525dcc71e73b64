/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Wed Oct 14 09:02:10 2026 mstenber
 * Last modified: Wed Oct 14 09:10:33 2026 mstenber
 * Edit time:     4 min
 *
 */

package bptree

import (
	"cmp"
	"fmt"
)

// Item is single key/value pair stored in the leaves. Items are
// passed by value; the tree never modifies an item it was given.
type Item[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

func NewItem[K cmp.Ordered, V any](key K, value V) Item[K, V] {
	return Item[K, V]{Key: key, Value: value}
}

func (self Item[K, V]) String() string {
	return fmt.Sprintf("%v=%v", self.Key, self.Value)
}
