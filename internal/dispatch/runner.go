// Package dispatch hands extracted files to external collaborators: a web
// browser for HTML, document converters for office formats and PDF, and an
// optional dedicated image viewer.
package dispatch

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Runner abstracts process execution so dispatch decisions can be tested
// without spawning real programs.
type Runner interface {
	// Start launches a program detached and does not wait for it to exit.
	// Viewers run for as long as the user keeps them open; the pipeline must
	// not block on them.
	Start(name string, args ...string) error

	// Run launches a program and waits for it, returning an error on a
	// non-zero exit. Converters must finish before their output can be
	// dispatched.
	Run(name string, args ...string) error
}

// NewExecRunner returns the production Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	// Reap the child eventually so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}

func (execRunner) Run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s failed: %w: %s", name, err, bytes.TrimSpace(out))
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
