/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Wed Oct 14 09:11:02 2026 mstenber
 * Last modified: Sun Oct 18 10:12:06 2026 mstenber
 * Edit time:     14 min
 *
 */

package bptree

import (
	"github.com/pkg/errors"

	"github.com/fingon/go-actree/actor"
)

var (
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrInvalidNodeRole    = errors.New("invalid node role")
	ErrParentAlreadySet   = errors.New("parent already set")
	ErrInvalidParent      = errors.New("invalid parent")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInconsistent       = errors.New("inconsistent tree")

	// ErrMisrouted is returned by node operations given a key that
	// is not within the node's key range (at or below its fence).
	// It is transient when the node was reached by descending from
	// the root while the tree was being restructured; the tree
	// retries operations that hit it.
	ErrMisrouted = errors.New("key below node fence")
)

// errNotChild is returned when a node is no longer child of the node
// it was thought to be.
var errNotChild = errors.New("not a child")

func nodeError(err error, id actor.ID) error {
	return errors.Wrapf(err, "node %v", id)
}

// isStale tells if err is caused by topology that changed under the
// operation (as opposed to e.g. storage failure).
func isStale(err error) bool {
	return errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrMisrouted) ||
		errors.Is(err, errNotChild)
}
