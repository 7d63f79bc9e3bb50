package errors

import (
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := New(ErrCodeDuplicateGroup, "group exists")
	assert.Equal(t, ErrCodeDuplicateGroup, err.Code)
	assert.Equal(t, "DUPLICATE_GROUP: group exists", err.Error())

	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeCommandFailed, "command failed")
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.Contains(t, wrapped.Error(), "caused by: underlying error")

	assert.True(t, Is(wrapped, ErrCodeCommandFailed))
	assert.False(t, Is(wrapped, ErrCodeDuplicateGroup))
	assert.False(t, Is(nil, ErrCodeCommandFailed))

	detailed := err.WithDetail("group", "a")
	assert.Equal(t, "a", detailed.Details["group"])
	assert.Contains(t, detailed.ToJSON(), `"group": "a"`)
}

func TestGetCodeThroughFmtWrapping(t *testing.T) {
	inner := DuplicateScratchpad("sp2", "scratchpad")
	outer := fmt.Errorf("building registry: %w", inner)
	assert.Equal(t, ErrCodeDuplicateScratchpad, GetCode(outer))
	assert.Equal(t, ErrorCode(""), GetCode(fmt.Errorf("plain")))
}

func TestIsConfiguration(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{DuplicateGroup("a"), true},
		{DuplicateScratchpad("b", "a"), true},
		{BindingConflict("mod4+s"), true},
		{ConfigInvalid("bad"), true},
		{ConfigNotFound("/nope"), true},
		{TopologyQuery(fmt.Errorf("no display")), false},
		{CommandFailed("x", fmt.Errorf("boom")), false},
		{DispatchFailed("mod4+c", "window.kill", fmt.Errorf("boom")), false},
		{nil, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsConfiguration(tc.err), "%v", tc.err)
	}
}

func TestConstructorsCarryDetails(t *testing.T) {
	err := BindingConflict("mod4+shift+a")
	assert.Equal(t, "mod4+shift+a", err.Details["key"])
	assert.Contains(t, err.Error(), "mod4+shift+a")

	err = DuplicateScratchpad("second", "first")
	assert.Equal(t, "second", err.Details["group"])
	assert.Equal(t, "first", err.Details["existing"])
}

func TestCommandFailedExitCode(t *testing.T) {
	runErr := exec.Command("sh", "-c", "exit 3").Run()
	require.Error(t, runErr)

	err := CommandFailed("sh", runErr)
	assert.Equal(t, 3, err.Details["exitCode"])
}
