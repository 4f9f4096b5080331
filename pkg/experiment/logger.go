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
	"io"
	"os"

	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logFileFlag = conf.NewStringFlag("log_file", "Append logs to this file in addition to stderr.", "")

// TimestampFormat is used in log entries.
const TimestampFormat = "2006-01-02 15:04:05.000"

// InitializeLogger sets logrus formatter and output. When log_file flag is
// set, logs go both to the file and stderr. Returned closer closes the file.
func InitializeLogger(appName, experimentID string) (io.Closer, error) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: TimestampFormat})

	closer := io.Closer(nopCloser{})
	if path := logFileFlag.Value(); path != "" {
		logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open log file %q", path)
		}
		logrus.SetOutput(io.MultiWriter(logFile, os.Stderr))
		closer = logFile
	} else {
		logrus.SetOutput(os.Stderr)
	}

	logrus.Infof("Starting %s with experiment ID %s", appName, experimentID)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
