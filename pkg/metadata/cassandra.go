// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/pkg/errors"
)

var (
	cassandraAddress           = conf.NewStringFlag("cassandra_address", "Address of Cassandra DB endpoint for metadata.", "127.0.0.1")
	cassandraPort              = conf.NewIntFlag("cassandra_port", "Port of Cassandra DB endpoint.", 9042)
	cassandraKeyspace          = conf.NewStringFlag("cassandra_keyspace", "Keyspace used to store metadata.", "sbsched")
	cassandraCreateKeyspace    = conf.NewBoolFlag("cassandra_create_keyspace", "Create the keyspace when it does not exist.", true)
	cassandraUsername          = conf.NewStringFlag("cassandra_username", "Cassandra username. Password authentication is used when both username and password are set.", "")
	cassandraPassword          = conf.NewStringFlag("cassandra_password", "Cassandra password.", "")
	cassandraConnectionTimeout = conf.NewDurationFlag("cassandra_connection_timeout", "Initial connection timeout.", 10*time.Second)
	cassandraTimeout           = conf.NewDurationFlag("cassandra_timeout", "Query timeout.", 10*time.Second)
	cassandraSslEnabled        = conf.NewBoolFlag("cassandra_ssl", "Use SSL when connecting to Cassandra.", false)
	cassandraSslCAPath         = conf.NewStringFlag("cassandra_ssl_ca_path", "Path to CA certificate.", "")
	cassandraSslCertPath       = conf.NewStringFlag("cassandra_ssl_cert_path", "Path to client certificate.", "")
	cassandraSslKeyPath        = conf.NewStringFlag("cassandra_ssl_key_path", "Path to client key.", "")
)

const cassandraTable = "benchmark_metadata"

// CassandraConfig configures connection to Cassandra.
type CassandraConfig struct {
	Address           string
	Port              int
	KeyspaceName      string
	CreateKeyspace    bool
	Username          string
	Password          string
	ConnectionTimeout time.Duration
	Timeout           time.Duration
	SslEnabled        bool
	SslCAPath         string
	SslCertPath       string
	SslKeyPath        string
}

// Cassandra is Metadata stored in a Cassandra table, one row per recorded map.
type Cassandra struct {
	experimentID string
	config       CassandraConfig
	session      *gocql.Session
}

// DefaultCassandraConfig returns configuration built from cassandra_* flags.
func DefaultCassandraConfig() CassandraConfig {
	return CassandraConfig{
		Address:           cassandraAddress.Value(),
		Port:              cassandraPort.Value(),
		KeyspaceName:      cassandraKeyspace.Value(),
		CreateKeyspace:    cassandraCreateKeyspace.Value(),
		Username:          cassandraUsername.Value(),
		Password:          cassandraPassword.Value(),
		ConnectionTimeout: cassandraConnectionTimeout.Value(),
		Timeout:           cassandraTimeout.Value(),
		SslEnabled:        cassandraSslEnabled.Value(),
		SslCAPath:         cassandraSslCAPath.Value(),
		SslCertPath:       cassandraSslCertPath.Value(),
		SslKeyPath:        cassandraSslKeyPath.Value(),
	}
}

// NewCassandra connects to Cassandra and makes sure the metadata table exists.
func NewCassandra(experimentID string, config CassandraConfig) (Metadata, error) {
	m := &Cassandra{
		experimentID: experimentID,
		config:       config,
	}

	if config.CreateKeyspace {
		if err := m.createKeyspace(); err != nil {
			return nil, err
		}
	}

	cluster := m.clusterConfig()
	cluster.Keyspace = config.KeyspaceName
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to cassandra at %s:%d", config.Address, config.Port)
	}
	m.session = session

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (experiment_id text, kind text, time timestamp, timeuuid TIMEUUID, metadata map<text,text>, PRIMARY KEY ((experiment_id), timeuuid)) WITH CLUSTERING ORDER BY (timeuuid DESC);", cassandraTable)
	if err := session.Query(query).Exec(); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "cannot create metadata table")
	}

	return m, nil
}

func (m *Cassandra) clusterConfig() *gocql.ClusterConfig {
	cluster := gocql.NewCluster(m.config.Address)
	cluster.Port = m.config.Port
	cluster.Consistency = gocql.LocalOne
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.ProtoVersion = 4
	cluster.ConnectTimeout = m.config.ConnectionTimeout
	cluster.Timeout = m.config.Timeout

	if m.config.Username != "" && m.config.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: m.config.Username,
			Password: m.config.Password,
		}
	}

	if m.config.SslEnabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 m.config.SslCAPath,
			CertPath:               m.config.SslCertPath,
			KeyPath:                m.config.SslKeyPath,
			EnableHostVerification: true,
		}
	}

	return cluster
}

func (m *Cassandra) createKeyspace() error {
	session, err := m.clusterConfig().CreateSession()
	if err != nil {
		return errors.Wrap(err, "cannot create session for creating keyspace")
	}
	defer session.Close()

	query := fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1};", m.config.KeyspaceName)
	return errors.Wrap(session.Query(query).Exec(), "cannot create keyspace")
}

func (m *Cassandra) storeMap(metadata map[string]string, kind string) error {
	query := fmt.Sprintf("INSERT INTO %s (experiment_id, kind, time, timeuuid, metadata) VALUES (?, ?, ?, ?, ?)", cassandraTable)
	err := m.session.Query(query, m.experimentID, kind, time.Now(), gocql.TimeUUID(), metadata).Exec()
	return errors.Wrapf(err, "cannot publish metadata of kind %q", kind)
}

// RecordMap implements Metadata interface.
func (m *Cassandra) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind implements Metadata interface. Exactly one map of given kind must exist.
func (m *Cassandra) GetByKind(kind string) (map[string]string, error) {
	var (
		metadata map[string]string
		maps     []map[string]string
	)

	query := fmt.Sprintf("SELECT metadata FROM %s WHERE experiment_id = ? AND kind = ? ALLOW FILTERING", cassandraTable)
	iter := m.session.Query(query, m.experimentID, kind).Iter()
	for iter.Scan(&metadata) {
		maps = append(maps, metadata)
		metadata = nil
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrapf(err, "cannot retrieve metadata of kind %q", kind)
	}

	if len(maps) != 1 {
		return nil, errors.Errorf("expected one metadata map of kind %q for experiment %q, found %d", kind, m.experimentID, len(maps))
	}
	return maps[0], nil
}

// Close implements Metadata interface.
func (m *Cassandra) Close() error {
	m.session.Close()
	return nil
}
