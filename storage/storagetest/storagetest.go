/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Thu Dec 14 19:19:24 2017 mstenber
 * Last modified: Mon Oct 12 14:31:50 2026 mstenber
 * Edit time:     52 min
 *
 */

// storagetest contains the conformance test that every
// storage.Backend has to pass.
package storagetest

import (
	"fmt"
	"testing"

	"github.com/fingon/go-actree/storage"
	"github.com/stvp/assert"
)

// BackendFactory returns a new, initialized backend. Backends that
// persist return one backed by the same data on every call.
type BackendFactory func() storage.Backend

// ProdBackend exercises the Backend API. If persistent is set, the
// state is also checked to survive Close + reopen.
func ProdBackend(t *testing.T, factory BackendFactory, persistent bool) {
	be := factory()
	k1 := storage.StateKey{Group: "node", Id: "foo"}
	k2 := storage.StateKey{Group: "tree", Id: "foo"}

	v, err := be.GetState(k1)
	assert.Nil(t, err)
	assert.True(t, v == nil)

	assert.Nil(t, be.SetState(k1, []byte("data")))
	assert.Nil(t, be.SetState(k2, []byte("other")))
	v, err = be.GetState(k1)
	assert.Nil(t, err)
	assert.Equal(t, string(v), "data")

	assert.Nil(t, be.SetState(k1, []byte("data2")))
	v, err = be.GetState(k1)
	assert.Nil(t, err)
	assert.Equal(t, string(v), "data2")

	// Returned slice is ours to scribble on
	v[0] = 'x'
	v, err = be.GetState(k1)
	assert.Nil(t, err)
	assert.Equal(t, string(v), "data2")

	id, err := be.GetIdByName("name")
	assert.Nil(t, err)
	assert.Equal(t, id, "")
	assert.Nil(t, be.SetNameToId("name", "foo"))
	id, err = be.GetIdByName("name")
	assert.Nil(t, err)
	assert.Equal(t, id, "foo")

	for i := 0; i < 10; i++ {
		k := storage.StateKey{Group: "node", Id: fmt.Sprintf("n%d", i)}
		assert.Nil(t, be.SetState(k, []byte(k.String())))
	}

	if persistent {
		assert.Nil(t, be.Close())
		be = factory()
		v, err = be.GetState(k1)
		assert.Nil(t, err)
		assert.Equal(t, string(v), "data2")
		id, err = be.GetIdByName("name")
		assert.Nil(t, err)
		assert.Equal(t, id, "foo")
	}

	for i := 0; i < 10; i++ {
		k := storage.StateKey{Group: "node", Id: fmt.Sprintf("n%d", i)}
		v, err = be.GetState(k)
		assert.Nil(t, err)
		assert.Equal(t, string(v), k.String())
	}

	assert.Nil(t, be.DeleteState(k1))
	v, err = be.GetState(k1)
	assert.Nil(t, err)
	assert.True(t, v == nil)

	// Deleting absent state is fine
	assert.Nil(t, be.DeleteState(k1))

	// Groups do not collide
	v, err = be.GetState(k2)
	assert.Nil(t, err)
	assert.Equal(t, string(v), "other")

	assert.Nil(t, be.SetNameToId("name", ""))
	id, err = be.GetIdByName("name")
	assert.Nil(t, err)
	assert.Equal(t, id, "")

	id, err = be.GetIdByName("noname")
	assert.Nil(t, err)
	assert.Equal(t, id, "")

	assert.Nil(t, be.Close())
}
