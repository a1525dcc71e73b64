/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 17:31:40 2026 mstenber
 * Last modified: Mon Oct 12 17:36:12 2026 mstenber
 * Edit time:     4 min
 *
 */

package cassandra

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/storage/storagetest"
	"github.com/stvp/assert"
)

func TestCassandraNoAddress(t *testing.T) {
	t.Parallel()
	be := NewCassandraBackend()
	assert.Equal(t, be.Init(storage.BackendConfiguration{}), storage.ErrNoAddress)
}

func TestCassandra(t *testing.T) {
	hosts := os.Getenv("CASSANDRA_HOSTS")
	if hosts == "" {
		t.Skip("CASSANDRA_HOSTS not set")
	}
	ks := fmt.Sprintf("actree_test_%d", time.Now().Unix())
	storagetest.ProdBackend(t, func() storage.Backend {
		be := NewCassandraBackend()
		err := be.Init(storage.BackendConfiguration{Address: hosts, Namespace: ks})
		assert.Nil(t, err)
		return be
	}, true)
}
