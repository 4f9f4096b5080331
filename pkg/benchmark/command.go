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

// BuildCommand returns argument vector of a single run: resource binding
// wrappers, program path and extra arguments in given order.
// Arguments are never interpreted by a shell.
func BuildCommand(config RunConfiguration) []string {
	argv := make([]string, 0, len(config.Args)+1)
	argv = append(argv, config.ProgramPath)
	argv = append(argv, config.Args...)
	return config.Policy.Decorate(argv)
}
