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
	"testing"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/results"
	. "github.com/smartystreets/goconvey/convey"
)

type memoryMetadata struct {
	kinds map[string]map[string]string
}

func newMemoryMetadata() *memoryMetadata {
	return &memoryMetadata{kinds: map[string]map[string]string{}}
}

func (m *memoryMetadata) RecordMap(metadata map[string]string, kind string) error {
	if m.kinds[kind] == nil {
		m.kinds[kind] = map[string]string{}
	}
	for key, value := range metadata {
		m.kinds[kind][key] = value
	}
	return nil
}

func (m *memoryMetadata) GetByKind(kind string) (map[string]string, error) {
	metadata, ok := m.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("no metadata of kind %q", kind)
	}
	return metadata, nil
}

func (m *memoryMetadata) Close() error {
	return nil
}

func TestDefaultConfigs(t *testing.T) {
	Convey("Cassandra default config is built from flags", t, func() {
		config := DefaultCassandraConfig()
		So(config.Address, ShouldEqual, cassandraAddress.Value())
		So(config.Port, ShouldEqual, 9042)
		So(config.KeyspaceName, ShouldEqual, "sbsched")
		So(config.Timeout, ShouldEqual, 10*time.Second)
		So(config.SslEnabled, ShouldBeFalse)
	})

	Convey("InfluxDB default config is built from flags", t, func() {
		config := DefaultInfluxDBConfig()
		So(config.DBName, ShouldEqual, influxDBName.Value())
		So(config.HTTPConfig.Addr, ShouldEqual, fmt.Sprintf("http://%s:%d", influxDBAddress.Value(), influxDBPort.Value()))
		So(config.HTTPConfig.Username, ShouldEqual, influxDBUsername.Value())
		So(config.CreateDatabase, ShouldBeTrue)
	})

	Convey("Publishing is disabled by default", t, func() {
		So(Enabled(), ShouldBeFalse)
		_, err := NewDefault("id")
		So(err, ShouldNotBeNil)
	})
}

func TestRecordResults(t *testing.T) {
	Convey("Results are recorded as one map", t, func() {
		metadata := newMemoryMetadata()
		file := results.File{
			Header: results.Header{
				Program: "sampleSort",
				Args:    []string{"100000000", "8"},
				Runs:    5,
				Policy:  "all",
				Skipped: 1,
			},
			AvgActiveTime:       30,
			AvgL3MissesMillions: 3.5,
		}

		So(RecordResults(metadata, file, "timings/host/name"), ShouldBeNil)

		recorded, err := metadata.GetByKind(TypeResults)
		So(err, ShouldBeNil)
		So(recorded, ShouldResemble, map[string]string{
			"path":                   "timings/host/name",
			"program":                "sampleSort",
			"args":                   "100000000 8",
			"policy":                 "all",
			"runs":                   "5",
			"skipped":                "1",
			"avg_active_time":        "30.0",
			"avg_l3_misses_millions": "3.5",
		})
	})
}

func TestRecordRuntimeEnv(t *testing.T) {
	Convey("Runtime environment is recorded by kind", t, func() {
		metadata := newMemoryMetadata()
		So(RecordRuntimeEnv(metadata, time.Now()), ShouldBeNil)

		flags, err := metadata.GetByKind(TypeFlags)
		So(err, ShouldBeNil)
		So(flags, ShouldContainKey, "metadata_db")

		host, err := metadata.GetByKind(TypeEmpty)
		So(err, ShouldBeNil)
		So(host, ShouldContainKey, "host")
		So(host, ShouldContainKey, "time")

		platform, err := metadata.GetByKind(TypePlatform)
		So(err, ShouldBeNil)
		So(platform, ShouldContainKey, KernelVersionKey)
	})
}

func TestEnviron(t *testing.T) {
	Convey("Only prefixed variables are taken", t, func() {
		env := environ("SBSCHED", []string{"SBSCHED_LOG=debug", "HOME=/root", "SBSCHED_ARGS=a=b", "SBSCHED_BROKEN"})
		So(env, ShouldResemble, map[string]string{"SBSCHED_LOG": "debug", "SBSCHED_ARGS": "a=b"})
	})
}

func TestFindKey(t *testing.T) {
	Convey("Value of the first matching key is returned", t, func() {
		input := "processor\t: 0\nflags\nmodel name\t: Intel(R) Xeon(R) CPU E5-2699 v3 @ 2.30GHz\nmodel name\t: other\n"
		value, err := findKey(strings.NewReader(input), "model name")
		So(err, ShouldBeNil)
		So(value, ShouldEqual, "Intel(R) Xeon(R) CPU E5-2699 v3 @ 2.30GHz")

		_, err = findKey(strings.NewReader(input), "cache size")
		So(err, ShouldNotBeNil)
	})
}

func TestQuoting(t *testing.T) {
	Convey("InfluxQL literals and identifiers are escaped", t, func() {
		So(quoteLiteral("it's"), ShouldEqual, `'it\'s'`)
		So(quoteIdentifier(`db"x`), ShouldEqual, `"db\"x"`)
	})
}
