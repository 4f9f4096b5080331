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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/harsha-simhadri/sbsched/pkg/results"
	"github.com/pkg/errors"
)

// RecordRuntimeEnv stores flags, SBSCHED_ environment, host, start time and
// platform details of the experiment.
func RecordRuntimeEnv(metadata Metadata, experimentStart time.Time) error {
	if err := metadata.RecordMap(conf.GetFlags(), TypeFlags); err != nil {
		return err
	}

	if err := metadata.RecordMap(environ(conf.EnvironmentPrefix, os.Environ()), TypeEnviron); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}
	err = metadata.RecordMap(map[string]string{"time": experimentStart.Format(time.RFC822Z), "host": hostname}, TypeEmpty)
	if err != nil {
		return err
	}

	return metadata.RecordMap(GetPlatformMetrics(), TypePlatform)
}

// RecordResults stores the benchmark outcome along with the results file location.
func RecordResults(metadata Metadata, file results.File, path string) error {
	return metadata.RecordMap(ResultsMap(file, path), TypeResults)
}

// ResultsMap flattens results file content into metadata map.
func ResultsMap(file results.File, path string) map[string]string {
	return map[string]string{
		"path":                   path,
		"program":                file.Program,
		"args":                   strings.Join(file.Args, " "),
		"policy":                 file.Policy,
		"runs":                   strconv.Itoa(file.Runs),
		"skipped":                strconv.Itoa(file.Skipped),
		"avg_active_time":        results.FormatFloat(file.AvgActiveTime),
		"avg_l3_misses_millions": results.FormatFloat(file.AvgL3MissesMillions),
	}
}

func environ(prefix string, env []string) map[string]string {
	envMetadata := map[string]string{}
	for _, entry := range env {
		if !strings.HasPrefix(entry, prefix) {
			continue
		}
		fields := strings.SplitN(entry, "=", 2)
		if len(fields) == 2 {
			envMetadata[fields[0]] = fields[1]
		}
	}
	return envMetadata
}
