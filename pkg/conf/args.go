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

package conf

import (
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Positional arguments are read from the command line only; there is no
// environment fallback for them.

// StringArg represents positional argument with string value.
type StringArg struct {
	*kingpin.ArgClause
	value *string
}

// NewStringArg registers next positional argument with string value.
func NewStringArg(name string, description string) *StringArg {
	a := &StringArg{ArgClause: app.Arg(name, description)}
	a.value = a.String()
	resetters = append(resetters, func() { *a.value = "" })
	return a
}

// Value returns parsed argument or empty string when it was not given.
func (a StringArg) Value() string {
	return *a.value
}

// StringsArg collects all remaining positional arguments verbatim.
type StringsArg struct {
	*kingpin.ArgClause
	value *[]string
}

// NewStringsArg registers remainder of positional arguments.
func NewStringsArg(name string, description string) *StringsArg {
	a := &StringsArg{ArgClause: app.Arg(name, description)}
	a.value = new([]string)
	a.SetValue((*verbatimListVar)(a.value))
	resetters = append(resetters, func() { *a.value = nil })
	return a
}

// Value returns a copy of collected arguments.
func (a StringsArg) Value() []string {
	return append([]string{}, (*a.value)...)
}

// verbatimListVar accumulates values without splitting them.
type verbatimListVar []string

func (v *verbatimListVar) Set(value string) error {
	*v = append(*v, value)
	return nil
}

func (v *verbatimListVar) String() string {
	return strings.Join(*v, " ")
}

func (v *verbatimListVar) IsCumulative() bool {
	return true
}
