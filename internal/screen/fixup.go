package screen

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
)

// Runner runs an external command to completion.
type Runner interface {
	Run(ctx context.Context, argv ...string) error
}

// ScriptFixup runs <Dir>/<n>screens.sh with n as its only argument, in the
// manner of an xrandr script saved per monitor arrangement.
type ScriptFixup struct {
	Dir    string
	Runner Runner
}

// ScriptPath returns the script that applies an n-screen layout.
func (f *ScriptFixup) ScriptPath(n int) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%dscreens.sh", n))
}

func (f *ScriptFixup) Apply(ctx context.Context, n int) error {
	return f.Runner.Run(ctx, f.ScriptPath(n), strconv.Itoa(n))
}
