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
	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/pkg/errors"
)

// Kinds of metadata stored with an experiment.
const (
	TypeEmpty    = ""
	TypeFlags    = "flags"
	TypeEnviron  = "environ"
	TypePlatform = "platform"
	TypeResults  = "results"
)

// Supported metadata databases.
const (
	DBNone      = ""
	DBCassandra = "cassandra"
	DBInfluxDB  = "influxdb"
)

// DBFlag selects the database where experiment metadata is published.
var DBFlag = conf.NewStringFlag("metadata_db", "Database for experiment metadata: cassandra or influxdb. Empty disables publishing.", DBNone)

// Metadata stores key-value maps associated with an experiment ID.
type Metadata interface {
	// RecordMap stores a key and value map and associates with the experiment id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrieves single metadata kind from the database.
	GetByKind(kind string) (map[string]string, error)
	// Close releases the database connection.
	Close() error
}

// Enabled tells whether any metadata database was configured.
func Enabled() bool {
	return DBFlag.Value() != DBNone
}

// NewDefault connects to the database chosen with metadata_db flag.
func NewDefault(experimentID string) (Metadata, error) {
	switch DBFlag.Value() {
	case DBCassandra:
		return NewCassandra(experimentID, DefaultCassandraConfig())
	case DBInfluxDB:
		return NewInfluxDB(experimentID, DefaultInfluxDBConfig())
	}

	return nil, errors.Errorf("unsupported database for metadata: %q", DBFlag.Value())
}
