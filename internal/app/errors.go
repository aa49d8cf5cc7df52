package app

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning indicates Run was called while already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoScripts indicates neither the command line nor the config named a script.
	ErrNoScripts = errors.New("no scripts to run")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ScriptError reports a script that failed to load or run.
type ScriptError struct {
	Path string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
