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

	"github.com/harsha-simhadri/sbsched/pkg/isolation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildCommand(t *testing.T) {
	Convey("Command is wrapped with the policy", t, func() {
		config, err := NewRunConfiguration("host", "test", "sampleSort", "5", []string{"100000000", "8"}, isolation.DefaultPolicy(), 0)
		So(err, ShouldBeNil)

		So(BuildCommand(config), ShouldResemble, []string{
			"hugectl", "--heap=2M",
			"numactl", "--interleave=all", "--",
			"test/sampleSort", "100000000", "8",
		})
	})

	Convey("Arguments are kept verbatim", t, func() {
		config, err := NewRunConfiguration("host", "test", "prog", "3", []string{"a b", "$HOME", ""}, isolation.Policy{}, 0)
		So(err, ShouldBeNil)

		So(BuildCommand(config), ShouldResemble, []string{"test/prog", "a b", "$HOME", ""})
	})
}
