//go:build linux

package topology

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// kernelGroup is the netlink multicast group of raw kernel uevents, as
// opposed to group 2 where udevd rebroadcasts them.
const kernelGroup = 1

// Run listens until ctx is done, calling handler once per burst of events.
// handler runs on a timer goroutine and must not touch main-loop state; it
// should only enqueue.
func (m *Monitor) Run(ctx context.Context, handler func(Event)) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK,
		unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return fmt.Errorf("netlink socket: %w", err)
	}
	defer unix.Close(fd)

	if err := unix.Bind(fd, &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: kernelGroup,
	}); err != nil {
		return fmt.Errorf("netlink bind: %w", err)
	}

	d := newDebouncer(m.quiet(), func() { handler(Event{Kind: Changed}) })
	defer d.stop()

	m.Log.WithField("subsystem", m.subsystem()).Info("watching device events")
	buffer := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// poll(2) with 100ms timeout: blocks until data is available
		// or the timeout expires, allowing periodic ctx checks.
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		count, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("netlink poll: %w", err)
		}
		if count == 0 {
			continue
		}

		n, _, err := unix.Recvfrom(fd, buffer, 0)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			if err == unix.ENOBUFS {
				// The kernel dropped messages; something changed.
				d.trigger()
				continue
			}
			return fmt.Errorf("netlink recv: %w", err)
		}
		m.handleMessage(buffer[:n], d)
	}
}
