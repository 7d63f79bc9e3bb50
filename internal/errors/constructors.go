package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// DuplicateGroup reports a workspace group registered twice under one name.
func DuplicateGroup(name string) *Error {
	return New(ErrCodeDuplicateGroup, fmt.Sprintf("group '%s' is already registered", name)).
		WithDetail("group", name)
}

// DuplicateScratchpad reports a second scratchpad group.
func DuplicateScratchpad(name, existing string) *Error {
	return New(ErrCodeDuplicateScratchpad,
		fmt.Sprintf("cannot add scratchpad '%s': scratchpad '%s' already exists", name, existing)).
		WithDetail("group", name).
		WithDetail("existing", existing)
}

// BindingConflict reports a (modifiers, key) pair bound twice.
func BindingConflict(chord string) *Error {
	return New(ErrCodeBindingConflict, fmt.Sprintf("key '%s' is already bound", chord)).
		WithDetail("key", chord)
}

// TopologyQuery wraps a failure to enumerate outputs.
func TopologyQuery(err error) *Error {
	return Wrap(err, ErrCodeTopologyQuery, "could not query display outputs")
}

// CommandNotFound creates an error for a missing executable or script.
func CommandNotFound(cmd string, err error) *Error {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", cmd)).
		WithDetail("command", cmd)
}

// CommandTimeout creates an error for a command killed by its deadline.
func CommandTimeout(cmd string, timeout string) *Error {
	return New(ErrCodeCommandTimeout, fmt.Sprintf("command '%s' did not finish within %s", cmd, timeout)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *Error {
	e := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		e = e.WithDetail("exitCode", exitErr.ExitCode())
	}

	return e
}

// DispatchFailed wraps an error returned (or panic raised) by a key action.
// An empty chord means the action was dispatched directly, not by a key.
func DispatchFailed(chord, action string, err error) *Error {
	if chord == "" {
		return Wrap(err, ErrCodeDispatchFailed, fmt.Sprintf("action %s failed", action)).
			WithDetail("action", action)
	}
	return Wrap(err, ErrCodeDispatchFailed, fmt.Sprintf("action %s for key '%s' failed", action, chord)).
		WithDetail("key", chord).
		WithDetail("action", action)
}

// DispatchBusy reports an attempt to dispatch while another action runs.
func DispatchBusy(action string) *Error {
	return New(ErrCodeDispatchBusy, fmt.Sprintf("cannot dispatch %s: another action is running", action)).
		WithDetail("action", action)
}
