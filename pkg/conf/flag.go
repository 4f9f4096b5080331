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
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// flagType is an internal interface for all flags.
// Every flag should have method for creating `envName` from its name and `clear` method
// for clearing corresponding environment variable from env.
type flagType interface {
	envName() string
	clear()
}

// definedFlags stores all the defined flags. It helps to find
// duplicates when defining flag with the same name.
var definedFlags = map[string]flagType{}

// envName converts flag name to environment variable name.
// For instance: "run_timeout" will be "SBSCHED_RUN_TIMEOUT".
func envName(flagName string) string {
	return fmt.Sprintf("%s_%s", EnvironmentPrefix, strings.ToUpper(flagName))
}

// cliAndEnvFlag represents option's definition from CLI and Environment variable.
type cliAndEnvFlag struct {
	*kingpin.FlagClause
}

func newCliAndEnvFlag(flagName string, description string, defaultValue string) *cliAndEnvFlag {
	c := &cliAndEnvFlag{FlagClause: app.Flag(flagName, description)}
	c.OverrideDefaultFromEnvar(c.envName())
	if defaultValue != "" {
		c.Default(defaultValue)
	}
	return c
}

func (f *cliAndEnvFlag) envName() string {
	return envName(f.Model().Name)
}

// clear unsets the corresponding environment variable.
func (f *cliAndEnvFlag) clear() {
	os.Unsetenv(f.envName())
}

// Flag is an option of type T fetched from CLI or environment variable.
type Flag[T any] struct {
	*cliAndEnvFlag
	defaultValue T
	value        *T
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (f Flag[T]) Value() T {
	if !isEnvParsed {
		return f.defaultValue
	}

	return *f.value
}

// newFlag defines the flag or returns already defined one of the same name.
// Redefinition with different type or default value panics.
func newFlag[T any](flagName, description string, defaultValue T, defaultText string, bind func(*kingpin.FlagClause) *T) *Flag[T] {
	if duplicatedFlag := definedFlags[flagName]; duplicatedFlag != nil {
		flagDef, ok := duplicatedFlag.(*Flag[T])
		if !ok {
			panic(fmt.Sprintf("Flag %q was redefined but with different type. Unify the type.", flagName))
		}
		if !reflect.DeepEqual(flagDef.defaultValue, defaultValue) {
			panic(fmt.Sprintf("Flag %q was redefined but with different default value. Unify the default.", flagName))
		}
		return flagDef
	}

	flagDef := &Flag[T]{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, defaultText),
		defaultValue:  defaultValue,
	}
	flagDef.value = bind(flagDef.FlagClause)
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// StringFlag represents flag with string value.
type StringFlag = Flag[string]

// NewStringFlag is a constructor of StringFlag struct.
func NewStringFlag(flagName string, description string, defaultValue string) *StringFlag {
	return newFlag(flagName, description, defaultValue, defaultValue, (*kingpin.FlagClause).String)
}

// IntFlag represents flag with int value.
type IntFlag = Flag[int]

// NewIntFlag is a constructor of IntFlag struct.
func NewIntFlag(flagName string, description string, defaultValue int) *IntFlag {
	return newFlag(flagName, description, defaultValue, fmt.Sprintf("%d", defaultValue), (*kingpin.FlagClause).Int)
}

// SliceFlag represents flag with slice string values.
type SliceFlag = Flag[[]string]

// NewSliceFlag is a constructor of SliceFlag struct.
func NewSliceFlag(flagName string, description string, elemsInDefaultSlice ...string) *SliceFlag {
	bind := func(clause *kingpin.FlagClause) *[]string { return StringList(clause) }
	return newFlag(flagName, description, elemsInDefaultSlice, strings.Join(elemsInDefaultSlice, stringListDelimiter), bind)
}

// BoolFlag represents flag with bool value.
type BoolFlag = Flag[bool]

// NewBoolFlag is a constructor of BoolFlag struct.
func NewBoolFlag(flagName string, description string, defaultValue bool) *BoolFlag {
	return newFlag(flagName, description, defaultValue, fmt.Sprintf("%v", defaultValue), (*kingpin.FlagClause).Bool)
}

// DurationFlag represents flag with duration value.
type DurationFlag = Flag[time.Duration]

// NewDurationFlag is a constructor of DurationFlag struct.
func NewDurationFlag(flagName string, description string, defaultValue time.Duration) *DurationFlag {
	return newFlag(flagName, description, defaultValue, defaultValue.String(), (*kingpin.FlagClause).Duration)
}
