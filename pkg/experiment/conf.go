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

package experiment

import (
	"fmt"
	"os"

	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/harsha-simhadri/sbsched/pkg/metadata"
	"github.com/harsha-simhadri/sbsched/pkg/utils/errutil"
	"github.com/sirupsen/logrus"
)

// ExUsage is exit code for command line usage errors (see sysexits.h).
const ExUsage = 64

var (
	dumpConfigFlag = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)

	// DumpConfigExperimentIDFlag name includes dash to excluded it from dumping.
	dumpConfigExperimentIDFlag = conf.NewStringFlag("config-dump-experiment-id", "Dump configuration recorded in metadata database for given experiment ID.", "")
)

// Configure loads environment files, parses flags and sets log level.
// Returns true when only errors are logged.
// Note: exits if flags are invalid or configuration dump was requested.
func Configure() bool {
	if err := conf.LoadEnvFiles(); err != nil {
		logrus.Errorf("Cannot load environment files: %v", err)
		os.Exit(ExUsage)
	}

	if err := conf.ParseFlags(); err != nil {
		logrus.Errorf("Cannot parse flags: %v", err)
		os.Exit(ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		previousExperimentID := dumpConfigExperimentIDFlag.Value()
		if previousExperimentID != "" {
			metadataDB, err := metadata.NewDefault(previousExperimentID)
			errutil.CheckWithContext(err, "Cannot connect to metadata database")
			flags, err := metadataDB.GetByKind(metadata.TypeFlags)
			metadataDB.Close()
			errutil.CheckWithContext(err, "Cannot retrieve flags of experiment "+previousExperimentID)
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(0)
	}

	return logrus.GetLevel() == logrus.ErrorLevel
}
