//go:build !linux

package topology

import (
	"context"
	"errors"
)

// Run is unsupported off Linux: there is no kernel uevent socket.
func (m *Monitor) Run(ctx context.Context, handler func(Event)) error {
	return errors.New("device event monitoring requires linux")
}
