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

package isolation

// Decorator allows to decorate the argument vector of a launched process,
// usually by prefixing it with a wrapper binary and its options.
type Decorator interface {
	Decorate(argv []string) []string
}

// Wrapper is a Decorator which runs the command through an external binary.
type Wrapper interface {
	Decorator
	// Binary returns name of the wrapping binary.
	Binary() string
}

// Decorators represents array of Decorator implementations.
type Decorators []Decorator

// Decorate uses all available decorators to modify the command
// (and implements Decorator interface). The last decorator ends up outermost.
func (d Decorators) Decorate(argv []string) []string {
	for _, decorator := range d {
		argv = decorator.Decorate(argv)
	}
	return argv
}
