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
	"os/exec"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/utils/err_collection"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// killTimeout is how long Stop waits for the process group after SIGTERM before sending SIGKILL.
const killTimeout = 5 * time.Second

// Local provisioning is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	// outputDir is a parent of per task output directories. Empty means system temp directory.
	outputDir string
}

// NewLocal returns a Local instance which keeps task output in system temp directory.
func NewLocal() Local {
	return Local{}
}

// NewLocalWithOutputDir returns a Local instance which keeps task output under given directory.
func NewLocalWithOutputDir(outputDir string) Local {
	return Local{outputDir: outputDir}
}

// Execute runs the argument vector given as input.
// Returned Task is able to stop & monitor the provisioned process.
func (l Local) Execute(argv []string) (TaskHandle, error) {
	if len(argv) == 0 {
		return nil, errors.New("cannot execute empty command")
	}
	command := strings.Join(argv, " ")

	stdoutFile, stderrFile, err := createExecutorOutputFiles(argv[0], "local", l.outputDir)
	if err != nil {
		return nil, err
	}

	log.Debug("Starting ", command)

	cmd := exec.Command(argv[0], argv[1:]...)
	// It is important to set additional Process Group ID for parent process and his children
	// to have ability to kill all the children processes.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	err = cmd.Start()
	if err != nil {
		stdoutFile.Close()
		stderrFile.Close()
		os.RemoveAll(path.Dir(stdoutFile.Name()))
		return nil, errors.Wrapf(err, "cannot start %q", command)
	}

	log.Debug("Started with pid ", cmd.Process.Pid)

	t := newLocalTaskHandle(cmd.Process.Pid, stdoutFile, stderrFile)

	// Wait for local task in goroutine.
	go func() {
		// NOTE: Wait() returns an error. We grab the process state in any case
		// (success or failure) below, so the error object matters less in the
		// status handling for now.
		cmd.Wait()

		var exitCode int
		waitStatus := cmd.ProcessState.Sys().(syscall.WaitStatus)
		if waitStatus.Exited() {
			// Process exited on his own.
			exitCode = waitStatus.ExitStatus()
		} else {
			// Show what signal caused the termination.
			exitCode = -int(waitStatus.Signal())
		}

		log.Debug(
			"Ended ", command,
			" with output in file: ", stdoutFile.Name(),
			" with err output in file: ", stderrFile.Name(),
			" with status code: ", exitCode)

		t.complete(exitCode)
	}()

	return t, nil
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	pid        int
	stdoutPath string
	stderrPath string
	stdoutFile *os.File
	stderrFile *os.File

	mutex            sync.Mutex
	exitCode         int
	hasProcessExited chan struct{}
}

// newLocalTaskHandle returns a localTaskHandle instance.
func newLocalTaskHandle(pid int, stdoutFile *os.File, stderrFile *os.File) *localTaskHandle {
	return &localTaskHandle{
		pid:              pid,
		stdoutPath:       stdoutFile.Name(),
		stderrPath:       stderrFile.Name(),
		stdoutFile:       stdoutFile,
		stderrFile:       stderrFile,
		hasProcessExited: make(chan struct{}),
	}
}

func (taskHandle *localTaskHandle) complete(exitCode int) {
	taskHandle.mutex.Lock()
	taskHandle.exitCode = exitCode
	taskHandle.mutex.Unlock()
	close(taskHandle.hasProcessExited)
}

func (taskHandle *localTaskHandle) isTerminated() bool {
	select {
	case <-taskHandle.hasProcessExited:
		return true
	default:
		return false
	}
}

// Stop terminates the local task.
func (taskHandle *localTaskHandle) Stop() error {
	if taskHandle.isTerminated() {
		return nil
	}

	// We signal the entire process group.
	// The kill syscall interprets a negated PID N as the process group N belongs to.
	log.Debug("Sending SIGTERM to PID ", -taskHandle.pid)
	if err := syscall.Kill(-taskHandle.pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot terminate process group %d", taskHandle.pid)
	}

	if taskHandle.Wait(killTimeout) {
		return nil
	}

	log.Warnf("Process group %d did not terminate within %s, sending SIGKILL", taskHandle.pid, killTimeout)
	if err := syscall.Kill(-taskHandle.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot kill process group %d", taskHandle.pid)
	}
	taskHandle.Wait(0)

	return nil
}

// ExitCode returns a exitCode. If task is not terminated it returns error.
func (taskHandle *localTaskHandle) ExitCode() (int, error) {
	if !taskHandle.isTerminated() {
		return -1, errors.New("task is not terminated")
	}

	taskHandle.mutex.Lock()
	defer taskHandle.mutex.Unlock()
	return taskHandle.exitCode, nil
}

// StdoutFile returns a read-only file handle for the task's stdout file.
func (taskHandle *localTaskHandle) StdoutFile() (*os.File, error) {
	return os.Open(taskHandle.stdoutPath)
}

// StderrFile returns a read-only file handle for the task's stderr file.
func (taskHandle *localTaskHandle) StderrFile() (*os.File, error) {
	return os.Open(taskHandle.stderrPath)
}

// Wait blocks until process is terminated or timeout appeared.
// Returns true when process terminates before timeout, otherwise false.
func (taskHandle *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-taskHandle.hasProcessExited
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-taskHandle.hasProcessExited:
		return true
	case <-timer.C:
		return false
	}
}

// Clean closes files to which stdout and stderr of executed command were written.
func (taskHandle *localTaskHandle) Clean() error {
	var errs errcollection.ErrorCollection
	errs.Add(taskHandle.stdoutFile.Close())
	errs.Add(taskHandle.stderrFile.Close())
	return errs.GetErrIfAny()
}

// EraseOutput removes the task's output directory with stdout and stderr files.
func (taskHandle *localTaskHandle) EraseOutput() error {
	outputDir := path.Dir(taskHandle.stdoutPath)
	return errors.Wrapf(os.RemoveAll(outputDir), "cannot remove output directory %q", outputDir)
}
