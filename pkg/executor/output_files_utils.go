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

package executor

import (
	"io/ioutil"
	"os"
	"path"

	"github.com/pkg/errors"
)

func createExecutorOutputFiles(binary, prefix, baseDir string) (stdout, stderr *os.File, err error) {
	if len(binary) == 0 {
		return nil, nil, errors.New("empty command")
	}

	_, commandName := path.Split(binary)

	if baseDir == "" {
		baseDir = os.TempDir()
	}
	outputDir, err := ioutil.TempDir(baseDir, prefix+"_"+commandName+"_")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create output directory for %q", commandName)
	}

	stdout, err = os.Create(path.Join(outputDir, "stdout"))
	if err != nil {
		os.RemoveAll(outputDir)
		return nil, nil, errors.Wrapf(err, "failed to create stdout file for %q", commandName)
	}

	stderr, err = os.Create(path.Join(outputDir, "stderr"))
	if err != nil {
		stdout.Close()
		os.RemoveAll(outputDir)
		return nil, nil, errors.Wrapf(err, "failed to create stderr file for %q", commandName)
	}

	return stdout, stderr, nil
}
