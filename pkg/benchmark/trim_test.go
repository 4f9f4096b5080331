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

package benchmark

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrim(t *testing.T) {
	Convey("Trimming removes one maximum and one minimum", t, func() {
		samples := []int64{10, 20, 30, 40, 50}
		trimmed, err := Trim(samples)
		So(err, ShouldBeNil)
		So(trimmed, ShouldResemble, []int64{20, 30, 40})

		Convey("Input is left untouched", func() {
			So(samples, ShouldResemble, []int64{10, 20, 30, 40, 50})
		})
	})

	Convey("Only the first occurrence of duplicated extremes is removed", t, func() {
		trimmed, err := Trim([]int64{5, 1, 5, 1, 3})
		So(err, ShouldBeNil)
		So(trimmed, ShouldResemble, []int64{5, 1, 3})
	})

	Convey("Trimming three equal samples leaves one", t, func() {
		trimmed, err := Trim([]int64{7, 7, 7})
		So(err, ShouldBeNil)
		So(trimmed, ShouldResemble, []int64{7})
	})

	Convey("Trimming fewer than three samples fails", t, func() {
		for _, samples := range [][]int64{nil, {1}, {1, 2}} {
			_, err := Trim(samples)
			So(errors.Cause(err), ShouldEqual, ErrInsufficientSamples)
		}
	})
}

func TestTrimmedMean(t *testing.T) {
	Convey("Trimmed mean of five runs drops the extremes", t, func() {
		mean, err := TrimmedMean([]int64{10, 20, 30, 40, 50})
		So(err, ShouldBeNil)
		So(mean, ShouldEqual, 30.0)
	})

	Convey("Trimmed mean does not depend on samples order", t, func() {
		permutations := [][]int64{
			{50, 40, 30, 20, 10},
			{30, 10, 50, 20, 40},
			{20, 50, 10, 40, 30},
		}
		for _, samples := range permutations {
			mean, err := TrimmedMean(samples)
			So(err, ShouldBeNil)
			So(mean, ShouldEqual, 30.0)
		}
	})

	Convey("Trimmed mean is not rounded", t, func() {
		mean, err := TrimmedMean([]int64{1, 2, 2, 3, 100})
		So(err, ShouldBeNil)
		So(mean, ShouldAlmostEqual, 7.0/3.0)
	})

	Convey("Trimmed mean in millions", t, func() {
		mean, err := TrimmedMeanMillions([]int64{1000000, 2000000, 3000000, 4000000, 5000000})
		So(err, ShouldBeNil)
		So(mean, ShouldEqual, 3.0)
	})

	Convey("Trimmed mean of two samples fails", t, func() {
		_, err := TrimmedMean([]int64{1, 2})
		So(errors.Cause(err), ShouldEqual, ErrInsufficientSamples)
		_, err = TrimmedMeanMillions([]int64{1, 2})
		So(errors.Cause(err), ShouldEqual, ErrInsufficientSamples)
	})
}
