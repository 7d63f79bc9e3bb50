package topology

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	xp "github.com/BurntSushi/xgb/xproto"
)

// RandR enumerates outputs with the X RandR extension.
type RandR struct {
	// Conn is a shared X connection. If nil, each query dials (and closes)
	// its own connection to $DISPLAY.
	Conn *xgb.Conn
	// Root is the root window of Conn. Ignored when Conn is nil.
	Root xp.Window

	initialized bool
}

// randrOutput adapts an xgb output info reply. RandR has no preferred flag,
// only a count of preferred modes.
type randrOutput struct {
	info *randr.GetOutputInfoReply
}

func (o randrOutput) NumPreferred() int {
	return int(o.info.NumPreferred)
}

// Outputs implements Source.
func (r *RandR) Outputs() ([]Output, error) {
	conn, root := r.Conn, r.Root
	if conn == nil {
		c, err := xgb.NewConn()
		if err != nil {
			return nil, err
		}
		defer c.Close()
		if err := randr.Init(c); err != nil {
			return nil, err
		}
		conn, root = c, xp.Setup(c).DefaultScreen(c).Root
	} else if !r.initialized {
		if err := randr.Init(conn); err != nil {
			return nil, err
		}
		r.initialized = true
	}

	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr: get screen resources: %w", err)
	}
	outputs := make([]Output, 0, len(res.Outputs))
	for _, o := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, o, res.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("randr: get output info %d: %w", o, err)
		}
		c := Disconnected
		if info.Connection == randr.ConnectionConnected {
			c = Connected
		}
		outputs = append(outputs, Output{
			ID:         string(info.Name),
			Preferred:  IsPreferred(randrOutput{info}),
			Connection: c,
		})
	}
	return outputs, nil
}
