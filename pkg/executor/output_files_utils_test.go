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
	"os"
	"path"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCreateExecutorOutputFiles(t *testing.T) {
	Convey("I should be able to create files and folders for task output", t, func() {
		stdout, stderr, err := createExecutorOutputFiles("/usr/bin/command", "test", "")
		So(err, ShouldBeNil)
		So(stdout, ShouldNotBeNil)
		So(stderr, ShouldNotBeNil)
		outputDir := path.Dir(stdout.Name())
		defer os.RemoveAll(outputDir)
		defer stdout.Close()
		defer stderr.Close()

		Convey("Which should share one directory named after the binary", func() {
			So(path.Dir(stderr.Name()), ShouldEqual, outputDir)
			So(path.Base(outputDir), ShouldStartWith, "test_command_")
			So(path.Base(stdout.Name()), ShouldEqual, "stdout")
			So(path.Base(stderr.Name()), ShouldEqual, "stderr")

			stat, err := os.Stat(outputDir)
			So(err, ShouldBeNil)
			So(stat.IsDir(), ShouldBeTrue)
		})
	})

	Convey("Empty binary name should be rejected", t, func() {
		_, _, err := createExecutorOutputFiles("", "test", "")
		So(err, ShouldNotBeNil)
	})
}
