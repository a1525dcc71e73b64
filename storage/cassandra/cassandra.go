/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 16:50:20 2026 mstenber
 * Last modified: Mon Oct 12 17:31:05 2026 mstenber
 * Edit time:     38 min
 *
 */

package cassandra

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

const DefaultKeyspace = "actree"

// ReplicationClause is used when the keyspace has to be created.
var ReplicationClause = "{'class':'SimpleStrategy', 'replication_factor':1}"

var ConnectTimeout = 10 * time.Second

// cassandraBackend stores state in cassandra tables within the
// keyspace given as the namespace:
//
// - state (grp, id) -> data
// - names name -> id
type cassandraBackend struct {
	storage.BackendConfiguration
	session *gocql.Session
}

var _ storage.Backend = &cassandraBackend{}

func NewCassandraBackend() storage.Backend {
	return &cassandraBackend{}
}

func (self *cassandraBackend) cluster() *gocql.ClusterConfig {
	hosts := strings.Split(self.Address, ",")
	cluster := gocql.NewCluster(hosts...)
	cluster.Consistency = gocql.Quorum
	cluster.ConnectTimeout = ConnectTimeout
	return cluster
}

func (self *cassandraBackend) Init(config storage.BackendConfiguration) error {
	if config.Address == "" {
		return storage.ErrNoAddress
	}
	config.Namespace = util.SOr(config.Namespace, DefaultKeyspace)
	self.BackendConfiguration = config

	// Keyspace has to exist before session bound to it can be made
	s, err := self.cluster().CreateSession()
	if err != nil {
		return errors.Wrapf(err, "cassandra connect %v", config.Address)
	}
	err = s.Query(fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = %s",
		config.Namespace, ReplicationClause)).Exec()
	s.Close()
	if err != nil {
		return errors.Wrap(err, "create keyspace")
	}

	cluster := self.cluster()
	cluster.Keyspace = config.Namespace
	s, err = cluster.CreateSession()
	if err != nil {
		return errors.Wrapf(err, "cassandra connect %v", config.Address)
	}
	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS state (grp text, id text, data blob, PRIMARY KEY ((grp, id)))",
		"CREATE TABLE IF NOT EXISTS names (name text PRIMARY KEY, id text)",
	} {
		if err = s.Query(stmt).Exec(); err != nil {
			s.Close()
			return errors.Wrap(err, "create table")
		}
	}
	self.session = s
	return nil
}

func (self *cassandraBackend) Close() error {
	self.session.Close()
	return nil
}

func (self *cassandraBackend) GetState(key storage.StateKey) ([]byte, error) {
	var data []byte
	err := self.session.Query("SELECT data FROM state WHERE grp = ? AND id = ?",
		key.Group, key.Id).Scan(&data)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cassandra get %v", key)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (self *cassandraBackend) GetIdByName(name string) (string, error) {
	var id string
	err := self.session.Query("SELECT id FROM names WHERE name = ?", name).Scan(&id)
	if err == gocql.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "cassandra get name %v", name)
	}
	return id, nil
}

func (self *cassandraBackend) SetState(key storage.StateKey, data []byte) error {
	mlog.Printf2("storage/cassandra/cassandra", "cb.SetState %v (%d b)", key, len(data))
	return self.session.Query("INSERT INTO state (grp, id, data) VALUES (?, ?, ?)",
		key.Group, key.Id, data).Exec()
}

func (self *cassandraBackend) DeleteState(key storage.StateKey) error {
	mlog.Printf2("storage/cassandra/cassandra", "cb.DeleteState %v", key)
	return self.session.Query("DELETE FROM state WHERE grp = ? AND id = ?",
		key.Group, key.Id).Exec()
}

func (self *cassandraBackend) SetNameToId(name, id string) error {
	if id == "" {
		return self.session.Query("DELETE FROM names WHERE name = ?", name).Exec()
	}
	return self.session.Query("INSERT INTO names (name, id) VALUES (?, ?)",
		name, id).Exec()
}
