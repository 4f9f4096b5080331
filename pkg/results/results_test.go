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

package results

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func sampleFile() File {
	return File{
		Header: Header{
			Host:      "node1",
			Program:   "sampleSort",
			Args:      []string{"100000000", "8"},
			Runs:      5,
			Policy:    "all",
			Timestamp: time.Date(2016, time.March, 7, 9, 5, 3, 0, time.Local),
		},
		ActiveTimes:         []int64{10, 20, 30, 40, 50},
		L3Misses:            []int64{1000000, 2000000, 3000000, 4000000, 5000000},
		AvgActiveTime:       30,
		AvgL3MissesMillions: 3,
	}
}

func TestName(t *testing.T) {
	Convey("When naming results file", t, func() {
		f := sampleFile()

		Convey("It should encode program, runs, arguments, policy and unpadded timestamp", func() {
			So(f.Name(), ShouldEqual, "sampleSort_runs_5_100000000_8_sock_all__2016.3.7.9.5.3")
		})

		Convey("Without extra arguments", func() {
			f.Args = nil
			So(f.Name(), ShouldEqual, "sampleSort_runs_5_sock_all__2016.3.7.9.5.3")
		})

		Convey("Path separators in components should not create directories", func() {
			f.Program = "sort/quick"
			f.Args = []string{"in/file"}
			So(f.Name(), ShouldEqual, "sort_quick_runs_5_in_file_sock_all__2016.3.7.9.5.3")
		})
	})
}

func TestWriteTo(t *testing.T) {
	Convey("When writing results file", t, func() {
		f := sampleFile()
		buffer := &bytes.Buffer{}

		n, err := f.WriteTo(buffer)
		So(err, ShouldBeNil)
		So(int(n), ShouldEqual, buffer.Len())

		Convey("It should have exact layout", func() {
			So(buffer.String(), ShouldEqual, "\n"+
				"10   20   30   40   50   \n"+
				"1000000   2000000   3000000   4000000   5000000   \n"+
				"\n"+
				"  ============\n"+
				"Avg Active Time: 30.0\n"+
				"Avg L3_misses: 3.0\n")
		})

		Convey("Skipped runs should be reported at the end", func() {
			f.Skipped = 2
			buffer.Reset()
			_, err := f.WriteTo(buffer)
			So(err, ShouldBeNil)
			So(buffer.String(), ShouldEndWith, "Avg L3_misses: 3.0\nSkipped runs: 2\n")
		})
	})
}

func TestParse(t *testing.T) {
	Convey("When parsing written results file", t, func() {
		f := sampleFile()
		f.AvgActiveTime = 31.333333333333332
		f.AvgL3MissesMillions = 2.6666666666666665
		f.Skipped = 1

		buffer := &bytes.Buffer{}
		_, err := f.WriteTo(buffer)
		So(err, ShouldBeNil)

		parsed, err := Parse(buffer)
		So(err, ShouldBeNil)

		Convey("Samples and averages should round trip", func() {
			So(parsed.ActiveTimes, ShouldResemble, f.ActiveTimes)
			So(parsed.L3Misses, ShouldResemble, f.L3Misses)
			So(parsed.AvgActiveTime, ShouldAlmostEqual, f.AvgActiveTime, 1e-12)
			So(parsed.AvgL3MissesMillions, ShouldAlmostEqual, f.AvgL3MissesMillions, 1e-12)
			So(parsed.Skipped, ShouldEqual, 1)
			So(parsed.Runs, ShouldEqual, 6)
		})
	})

	Convey("When parsing malformed results", t, func() {
		Convey("Too short content should fail", func() {
			_, err := Parse(strings.NewReader("\n1   \n2   \n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Misaligned samples should fail", func() {
			_, err := Parse(strings.NewReader("\n1   2   3   \n1   2   \n\n  ============\nAvg Active Time: 2.0\nAvg L3_misses: 0.0\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Non numeric samples should fail", func() {
			_, err := Parse(strings.NewReader("\n1   x   3   \n1   2   3   \n\n  ============\nAvg Active Time: 2.0\nAvg L3_misses: 0.0\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Missing label should fail", func() {
			_, err := Parse(strings.NewReader("\n1   2   3   \n1   2   3   \n\n  ============\nAverage: 2.0\nAvg L3_misses: 0.0\n"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSaveAndLoad(t *testing.T) {
	Convey("When saving results file", t, func() {
		root, err := ioutil.TempDir("", "timings")
		So(err, ShouldBeNil)
		defer os.RemoveAll(root)

		f := sampleFile()
		filePath, err := Save(root, f)
		So(err, ShouldBeNil)

		Convey("It should land in host directory", func() {
			So(filePath, ShouldEqual, filepath.Join(root, "node1", f.Name()))
		})

		Convey("It should be loadable", func() {
			loaded, err := Load(filePath)
			So(err, ShouldBeNil)
			So(loaded.ActiveTimes, ShouldResemble, f.ActiveTimes)
			So(loaded.AvgL3MissesMillions, ShouldEqual, 3.0)
		})

		Convey("Saving it again should not overwrite it", func() {
			_, err := Save(root, f)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFormatFloat(t *testing.T) {
	Convey("Floats should be formatted in shortest round trip form", t, func() {
		So(FormatFloat(30), ShouldEqual, "30.0")
		So(FormatFloat(0), ShouldEqual, "0.0")
		So(FormatFloat(3.5), ShouldEqual, "3.5")
		So(FormatFloat(1.0/3), ShouldEqual, "0.3333333333333333")
		So(FormatFloat(123456789.25), ShouldEqual, "123456789.25")
		So(FormatFloat(0.00015), ShouldEqual, "0.00015")
		So(FormatFloat(0.000015), ShouldEqual, "1.5e-05")
		So(FormatFloat(1e16), ShouldEqual, "1e+16")
		So(FormatFloat(-2), ShouldEqual, "-2.0")
		So(FormatFloat(94.0/3), ShouldEqual, "31.333333333333332")
	})
}
