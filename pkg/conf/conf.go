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

// Package conf is a helper for sbsched configuration for both command line
// interface and environment variables.
// It gives ability to register flags which will be fetched from
// CLI input OR environment variable, and positional arguments fetched from
// CLI input only.
// By default it registers following options:
// <SBSCHED_LOG> --log <Log level: debug, info, warn, error, fatal, panic> Default: error
//
// When `ParseEnv` is executed, only the environment variables are parsed.
// `ParseEnv` can be run multiple times.
//
// When `ParseFlags` is executed, the arguments from both CLI and Env are parsed.
// In case of --help option it prints help.
package conf

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

// EnvironmentPrefix is prepended to every flag name to get its environment variable.
const EnvironmentPrefix = "SBSCHED"

// envFilesVariable lists env files (comma separated) loaded before parsing.
const envFilesVariable = EnvironmentPrefix + "_ENV_FILE"

var (
	app = newApp("sbsched")
	// Default flags and values.
	logLevelFlag = NewStringFlag(
		"log",
		"Log level: debug, info, warn, error, fatal, panic",
		"error", // Default Error log level.
	)
	isEnvParsed = false
)

func newApp(name string) *kingpin.Application {
	a := kingpin.New(name, "No help available")
	// Arguments after the first positional one belong to the benchmarked program.
	a.Interspersed(false)
	return a
}

// SetHelp sets the help message for the CLI.
func SetHelp(help string) {
	app.Help = help
}

// SetAppName sets application name for CLI output.
func SetAppName(name string) {
	app.Name = name
}

// AppName returns specified app name.
func AppName() string {
	return app.Name
}

// LogLevel returns configured logLevel from input option or env variable.
// If it cannot parse the log level, it returns default value.
func LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(logLevelFlag.Value())
	if err == nil {
		return level
	}

	level, err = logrus.ParseLevel(logLevelFlag.defaultValue)
	if err == nil {
		return level
	}

	// Programmer error.
	panic(errors.Wrap(err, "parsing log level failed"))
}

// LoadEnvFiles loads the env files listed in SBSCHED_ENV_FILE into the process
// environment. Variables already present in the environment win.
func LoadEnvFiles() error {
	files := os.Getenv(envFilesVariable)
	if files == "" {
		return nil
	}
	return errors.Wrapf(godotenv.Load(strings.Split(files, ",")...), "cannot load environment files %q", files)
}

// ParseFlags parse both the command line flags of the process and
// environment variables.
func ParseFlags() error {
	return Parse(os.Args[1:])
}

// Parse parses given command line and environment variables.
func Parse(args []string) error {
	resetArgs()
	_, err := app.Parse(args)
	if err == nil {
		isEnvParsed = true
		return nil
	}

	return errors.Wrapf(err, "could not parse command line flags")
}

// ParseEnv parse the environment for arguments.
func ParseEnv() error {
	resetArgs()
	_, err := app.Parse([]string{})
	if err == nil {
		isEnvParsed = true
		return nil
	}

	return errors.Wrapf(err, "could not parse environment flags")
}

type flagDefinition struct {
	Name, Value, Default, Help string
}

// getFlagsDefinition returns current, default, keys and description for every flag.
func getFlagsDefinition() (flags []flagDefinition) {
	for _, flag := range app.Model().Flags {
		// Skip kingpin builtin flags and the config-* ones that aren't compatible with environment based configuration.
		if strings.Contains(flag.Name, "-") {
			continue
		}

		flags = append(flags, flagDefinition{
			Name:    flag.Name,
			Help:    flag.Help,
			Default: strings.Join(flag.Default, ","),
			Value:   flag.Value.String(),
		})
	}

	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })
	return flags
}

// DumpConfig dumps environment based configuration with current values of flags.
func DumpConfig() string {
	return DumpConfigMap(nil)
}

// DumpConfigMap dumps environment based configuration with current values overwritten by given flagMap.
// Output is a valid env file, so it can be fed back through SBSCHED_ENV_FILE.
func DumpConfigMap(flagMap map[string]string) string {
	buffer := &bytes.Buffer{}

	for i, fd := range getFlagsDefinition() {
		if i > 0 {
			buffer.WriteString("\n")
		}
		fmt.Fprintf(buffer, "# %s\n", fd.Help)
		if fd.Default != "" {
			fmt.Fprintf(buffer, "# Default: %s\n", fd.Default)
		}

		// Override current values with provided from flagMap.
		value := fd.Value
		if mapValue, ok := flagMap[fd.Name]; ok {
			value = mapValue
		}

		fmt.Fprintf(buffer, "%s=%q\n", envName(fd.Name), value)
	}

	return buffer.String()
}

// GetFlags returns flags as map with current values.
func GetFlags() map[string]string {
	flagsMap := map[string]string{}
	for _, flag := range getFlagsDefinition() {
		flagsMap[flag.Name] = flag.Value
	}
	return flagsMap
}
