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
	"strings"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"
)

var (
	influxDBAddress            = conf.NewStringFlag("influxdb_address", "Address of InfluxDB endpoint for metadata.", "127.0.0.1")
	influxDBPort               = conf.NewIntFlag("influxdb_port", "Port of InfluxDB HTTP endpoint.", 8086)
	influxDBName               = conf.NewStringFlag("influxdb_db_name", "InfluxDB database for metadata.", "sbsched")
	influxDBCreateDatabase     = conf.NewBoolFlag("influxdb_create_database", "Create the database when it does not exist.", true)
	influxDBUsername           = conf.NewStringFlag("influxdb_username", "InfluxDB username.", "")
	influxDBPassword           = conf.NewStringFlag("influxdb_password", "InfluxDB password.", "")
	influxDBInsecureSkipVerify = conf.NewBoolFlag("influxdb_insecure_skip_verify", "Skip TLS certificate verification.", false)
	influxDBTimeout            = conf.NewDurationFlag("influxdb_timeout", "Timeout of InfluxDB requests.", 10*time.Second)
)

const influxMeasurement = "benchmark_metadata"

// InfluxDBConfig configures connection to InfluxDB.
type InfluxDBConfig struct {
	HTTPConfig     client.HTTPConfig
	DBName         string
	CreateDatabase bool
}

// InfluxDB is Metadata stored as points of one measurement tagged with
// experiment ID and kind.
type InfluxDB struct {
	experimentID string
	session      client.Client
	config       InfluxDBConfig
}

// DefaultInfluxDBConfig returns configuration built from influxdb_* flags.
func DefaultInfluxDBConfig() InfluxDBConfig {
	return InfluxDBConfig{
		DBName:         influxDBName.Value(),
		CreateDatabase: influxDBCreateDatabase.Value(),
		HTTPConfig: client.HTTPConfig{
			Addr:               fmt.Sprintf("http://%s:%d", influxDBAddress.Value(), influxDBPort.Value()),
			Username:           influxDBUsername.Value(),
			Password:           influxDBPassword.Value(),
			InsecureSkipVerify: influxDBInsecureSkipVerify.Value(),
			Timeout:            influxDBTimeout.Value(),
		},
	}
}

// NewInfluxDB creates HTTP client and the database if requested.
func NewInfluxDB(experimentID string, config InfluxDBConfig) (Metadata, error) {
	session, err := client.NewHTTPClient(config.HTTPConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create influxdb client for experiment %s", experimentID)
	}

	m := &InfluxDB{
		experimentID: experimentID,
		session:      session,
		config:       config,
	}

	if config.CreateDatabase {
		if err := m.query(fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(config.DBName)), ""); err != nil {
			session.Close()
			return nil, errors.Wrapf(err, "cannot create influxdb database %q", config.DBName)
		}
	}

	return m, nil
}

func (m *InfluxDB) query(command, database string) error {
	_, err := m.queryResponse(command, database)
	return err
}

func (m *InfluxDB) queryResponse(command, database string) (*client.Response, error) {
	response, err := m.session.Query(client.NewQuery(command, database, ""))
	if err != nil {
		return nil, errors.Wrapf(err, "query %q failed", command)
	}
	if response.Error() != nil {
		return nil, errors.Wrapf(response.Error(), "response to query %q contains error", command)
	}
	return response, nil
}

func (m *InfluxDB) storeMap(metadata map[string]string, kind string) error {
	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: m.config.DBName})
	if err != nil {
		return errors.Wrapf(err, "cannot create batch points for metadata of kind %q", kind)
	}

	tags := map[string]string{"kind": kind, "experiment_id": m.experimentID}
	fields := make(map[string]interface{}, len(metadata))
	for key, value := range metadata {
		fields[key] = value
	}

	point, err := client.NewPoint(influxMeasurement, tags, fields, time.Now())
	if err != nil {
		return errors.Wrapf(err, "cannot create point for metadata of kind %q", kind)
	}
	batchPoints.AddPoint(point)

	return errors.Wrapf(m.session.Write(batchPoints), "cannot publish metadata of kind %q", kind)
}

// RecordMap implements Metadata interface.
func (m *InfluxDB) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind implements Metadata interface. Last value of every field is returned.
func (m *InfluxDB) GetByKind(kind string) (map[string]string, error) {
	command := fmt.Sprintf("SELECT last(*) FROM %s WHERE experiment_id=%s AND kind=%s GROUP BY experiment_id,kind",
		influxMeasurement, quoteLiteral(m.experimentID), quoteLiteral(kind))
	response, err := m.queryResponse(command, m.config.DBName)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string)
	for _, result := range response.Results {
		for _, row := range result.Series {
			for _, value := range row.Values {
				for idx, cell := range value {
					// Column 0 is the timestamp. Results may be sparse.
					if cell == nil || idx == 0 {
						continue
					}
					column := strings.TrimPrefix(row.Columns[idx], "last_")
					metadata[column] = fmt.Sprint(cell)
				}
			}
		}
	}

	return metadata, nil
}

// Close implements Metadata interface.
func (m *InfluxDB) Close() error {
	return errors.Wrap(m.session.Close(), "cannot close influxdb client")
}

func quoteLiteral(value string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value) + "'"
}

func quoteIdentifier(name string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name) + `"`
}
