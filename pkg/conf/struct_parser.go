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
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/camelcase"
	"github.com/pkg/errors"
)

const (
	// Tag with the help description of the field. Fields without any tag are skipped.
	helpTag = "help"
	// Tag with default value of the field. [Optional]
	defaultTag = "default"
	// Tag overriding flag name derived from field name. [Optional]
	nameTag = "name"
	// Tag marking the flag as required. [Optional]
	requiredTag = "required"
	// Unexported string field holding prefix of all flags of the struct.
	prefixFieldName = "flagPrefix"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Process registers a flag for every tagged field of the struct pointed by data
// and sets the fields to flag values. Before parsing the values are defaults.
// Processing the same struct again after parsing fills in parsed values.
func Process(data interface{}) error {
	pointer := reflect.ValueOf(data)
	if pointer.Kind() != reflect.Ptr || pointer.Elem().Kind() != reflect.Struct {
		return errors.Errorf("argument needs to be a pointer to struct, got %s", pointer.Kind())
	}

	structValue := pointer.Elem()
	structType := structValue.Type()

	prefix := ""
	if prefixField := structValue.FieldByName(prefixFieldName); prefixField.IsValid() && prefixField.Kind() == reflect.String {
		prefix = prefixField.String()
	}

	for i := 0; i < structValue.NumField(); i++ {
		field := structValue.Field(i)
		fieldStruct := structType.Field(i)
		if !field.CanSet() || fieldStruct.Anonymous {
			continue
		}

		if err := processField(prefix, field, fieldStruct); err != nil {
			return errors.Wrapf(err, "cannot process field %s.%s", structType.Name(), fieldStruct.Name)
		}
	}
	return nil
}

// nameFromFieldName converts e.g. RunTimeout to run_timeout.
func nameFromFieldName(name string) string {
	var words []string
	for _, word := range camelcase.Split(name) {
		if word == "_" {
			continue
		}
		words = append(words, strings.ToLower(word))
	}
	return strings.Join(words, "_")
}

func isAnyTagSpecified(fieldStruct reflect.StructField) bool {
	for _, tag := range []string{helpTag, defaultTag, nameTag, requiredTag} {
		if _, ok := fieldStruct.Tag.Lookup(tag); ok {
			return true
		}
	}
	return false
}

func processField(prefix string, field reflect.Value, fieldStruct reflect.StructField) error {
	help := fieldStruct.Tag.Get(helpTag)
	if help == "" {
		if isAnyTagSpecified(fieldStruct) {
			return errors.New("required help tag is missing")
		}
		return nil
	}

	name := fieldStruct.Tag.Get(nameTag)
	if name == "" {
		name = fieldStruct.Name
	}
	name = nameFromFieldName(prefix + name)
	defaultValue := fieldStruct.Tag.Get(defaultTag)

	var clause *cliAndEnvFlag
	switch {
	case field.Type() == durationType:
		var defaultDuration time.Duration
		if defaultValue != "" {
			var err error
			if defaultDuration, err = time.ParseDuration(defaultValue); err != nil {
				return errors.Wrapf(err, "wrong default value %q for duration flag", defaultValue)
			}
		}
		flag := NewDurationFlag(name, help, defaultDuration)
		field.SetInt(int64(flag.Value()))
		clause = flag.cliAndEnvFlag

	case field.Kind() == reflect.String:
		flag := NewStringFlag(name, help, defaultValue)
		field.SetString(flag.Value())
		clause = flag.cliAndEnvFlag

	case field.Kind() == reflect.Int:
		var defaultInt int
		if defaultValue != "" {
			var err error
			if defaultInt, err = strconv.Atoi(defaultValue); err != nil {
				return errors.Wrapf(err, "wrong default value %q for int flag", defaultValue)
			}
		}
		flag := NewIntFlag(name, help, defaultInt)
		field.SetInt(int64(flag.Value()))
		clause = flag.cliAndEnvFlag

	case field.Kind() == reflect.Bool:
		var defaultBool bool
		if defaultValue != "" {
			var err error
			if defaultBool, err = strconv.ParseBool(defaultValue); err != nil {
				return errors.Wrapf(err, "wrong default value %q for bool flag", defaultValue)
			}
		}
		flag := NewBoolFlag(name, help, defaultBool)
		field.SetBool(flag.Value())
		clause = flag.cliAndEnvFlag

	case field.Type() == reflect.TypeOf([]string(nil)):
		var defaultSlice StringListVar
		if defaultValue != "" {
			if err := defaultSlice.Set(defaultValue); err != nil {
				return errors.Wrapf(err, "wrong default value %q for slice flag", defaultValue)
			}
		}
		flag := NewSliceFlag(name, help, defaultSlice...)
		field.Set(reflect.ValueOf(append([]string(nil), flag.Value()...)))
		clause = flag.cliAndEnvFlag

	default:
		return errors.Errorf("%s type not supported for a flag", field.Type())
	}

	if fieldStruct.Tag.Get(requiredTag) == "true" {
		clause.Required()
	}
	return nil
}
