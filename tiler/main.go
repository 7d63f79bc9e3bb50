package main

import (
	"context"
	"os"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xinerama"
	xp "github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/sirupsen/logrus"

	"github.com/nigeltao/tiler/internal/config"
	"github.com/nigeltao/tiler/internal/logging"
	"github.com/nigeltao/tiler/internal/session"
	"github.com/nigeltao/tiler/internal/topology"
	"github.com/nigeltao/tiler/internal/workspace"
)

var (
	xConn    *xgb.Conn
	xUtil    *xgbutil.XUtil
	rootXWin xp.Window

	eventTime xp.Timestamp

	log = logging.NewLogger("tiler")

	cfg  *config.Config
	sess *session.Session

	// proactiveChan carries X operations that happen of the program's
	// own accord, such as a config reload or the shutdown timeout. These are
	// sent to the main goroutine from other goroutines. In comparison,
	// examples of reactive operations are responding to window creation and
	// key presses.
	proactiveChan = make(chan func())
	// loopDone is closed when the main loop stops taking proactive work.
	loopDone = make(chan struct{})
)

// post hands f to the main goroutine. It reports false, dropping f, if the
// main loop has already stopped.
func post(f func()) bool {
	select {
	case proactiveChan <- f:
		return true
	case <-loopDone:
		return false
	}
}

type checker interface {
	Check() error
}

var checkers []checker

func check(c checker) {
	checkers = append(checkers, c)
}

func flushCheckers() {
	for i, c := range checkers {
		if err := c.Check(); err != nil {
			log.Println(err)
		}
		checkers[i] = nil
	}
	checkers = checkers[:0]
}

func sendClientMessage(xWin xp.Window, atom xp.Atom) {
	check(xp.SendEventChecked(xConn, false, xWin, xp.EventMaskNoEvent,
		string(xp.ClientMessageEvent{
			Format: 32,
			Window: xWin,
			Type:   atomWMProtocols,
			Data: xp.ClientMessageDataUnionData32New([]uint32{
				uint32(atom),
				uint32(eventTime),
				0,
				0,
				0,
			}),
		}.Bytes()),
	))
}

func handleConfigureRequest(e xp.ConfigureRequestEvent) {
	mask, values := uint16(0), []uint32(nil)
	if w := windowForXWin(e.Window); w != nil {
		cne := xp.ConfigureNotifyEvent{
			Event:       w.xWin,
			Window:      w.xWin,
			X:           w.rect.X,
			Y:           w.rect.Y,
			Width:       w.rect.Width,
			Height:      w.rect.Height,
			BorderWidth: borderWidth,
		}
		check(xp.SendEventChecked(xConn, false, w.xWin,
			xp.EventMaskStructureNotify, string(cne.Bytes())))
		return
	}
	if e.ValueMask&xp.ConfigWindowX != 0 {
		mask |= xp.ConfigWindowX
		values = append(values, uint32(e.X))
	}
	if e.ValueMask&xp.ConfigWindowY != 0 {
		mask |= xp.ConfigWindowY
		values = append(values, uint32(e.Y))
	}
	if e.ValueMask&xp.ConfigWindowWidth != 0 {
		mask |= xp.ConfigWindowWidth
		values = append(values, uint32(e.Width))
	}
	if e.ValueMask&xp.ConfigWindowHeight != 0 {
		mask |= xp.ConfigWindowHeight
		values = append(values, uint32(e.Height))
	}
	if e.ValueMask&xp.ConfigWindowBorderWidth != 0 {
		mask |= xp.ConfigWindowBorderWidth
		values = append(values, uint32(e.BorderWidth))
	}
	if e.ValueMask&xp.ConfigWindowSibling != 0 {
		mask |= xp.ConfigWindowSibling
		values = append(values, uint32(e.Sibling))
	}
	if e.ValueMask&xp.ConfigWindowStackMode != 0 {
		mask |= xp.ConfigWindowStackMode
		values = append(values, uint32(e.StackMode))
	}
	check(xp.ConfigureWindowChecked(xConn, e.Window, mask, values))
}

// readMetadata gathers what the workspace rules match new windows on.
func readMetadata(xWin xp.Window) workspace.WindowMetadata {
	var m workspace.WindowMetadata
	if c, err := icccm.WmClassGet(xUtil, xWin); err == nil {
		m.Classes = []string{c.Instance, c.Class}
	}
	if name, err := ewmh.WmNameGet(xUtil, xWin); err == nil && name != "" {
		m.Name = name
	} else if name, err := icccm.WmNameGet(xUtil, xWin); err == nil {
		m.Name = name
	}
	if t, err := icccm.WmTransientForGet(xUtil, xWin); err == nil && t != 0 {
		id := uint32(t)
		m.TransientFor = &id
	}
	if types, err := ewmh.WmWindowTypeGet(xUtil, xWin); err == nil && len(types) > 0 {
		m.WMType = windowType(types[0])
	}
	return m
}

// windowType turns _NET_WM_WINDOW_TYPE_DIALOG into "dialog".
func windowType(atomName string) string {
	return strings.ToLower(strings.TrimPrefix(atomName, "_NET_WM_WINDOW_TYPE_"))
}

func manage(xWin xp.Window, mapRequest bool) {
	w := windowForXWin(xWin)
	if w == nil {
		w = &window{
			xWin: xWin,
			meta: readMetadata(xWin),
			rect: xp.Rectangle{
				X:      offscreenXY,
				Y:      offscreenXY,
				Width:  1,
				Height: 1,
			},
			border: ^uint32(0),
		}
		protocols, _ := icccm.WmProtocolsGet(xUtil, xWin)
		for _, p := range protocols {
			switch p {
			case "WM_DELETE_WINDOW":
				w.wmDeleteWindow = true
			case "WM_TAKE_FOCUS":
				w.wmTakeFocus = true
			}
		}

		s := screens[0]
		if p, err := xp.QueryPointer(xConn, rootXWin).Reply(); err != nil {
			log.Println(err)
		} else {
			s = screenContaining(p.RootX, p.RootY)
		}
		g := chooseGroup(w, s)
		g.add(w)
		if g.focused == nil || g.screen != nil || w.shownOn != nil {
			g.focused = w
		}

		check(xp.ChangeWindowAttributesChecked(xConn, xWin, xp.CwEventMask,
			[]uint32{xp.EventMaskEnterWindow | xp.EventMaskStructureNotify},
		))
		w.setBorder(colorUnfocused)
		g.arrange()
		log.WithFields(logrus.Fields{
			"window":   xWin,
			"class":    w.meta.Classes,
			"group":    g.name(),
			"floating": w.floating,
		}).Debug("manage")
	}
	if mapRequest {
		check(xp.MapWindowChecked(xConn, xWin))
	}
	if w.shownOn != nil || (w.group.screen != nil && w.group.focused == w) {
		focus(w)
	}
}

// chooseGroup picks the group for a new window, which s is showing the pointer,
// and decides whether it floats.
func chooseGroup(w *window, s *screen) *group {
	reg := sess.Registry
	if d, ok := reg.DropDownFor(w.meta); ok && !dropDownManaged(d.Name) {
		w.dropDown, w.floating = &d, true
		if i, ok := pendingDropDowns[d.Name]; ok {
			delete(pendingDropDowns, d.Name)
			if i >= 0 && i < len(screens) {
				w.shownOn = screens[i]
			}
		}
		sp, _ := reg.Scratchpad()
		return groupByName[sp.Name]
	}

	g := s.group
	if rg, ok := reg.ResolveGroupFor(w.meta); ok {
		g = groupByName[rg.Name]
	}
	if g == nil {
		g = groupByName[reg.Ordinary()[0].Name]
	}
	if reg.ShouldFloat(w.meta) {
		w.floating = true
		r := s.rect
		if g.screen != nil {
			r = g.screen.rect
		}
		w.floatRect = centered(r, w.xWin)
	}
	return g
}

func dropDownManaged(name string) bool {
	return findWindow(func(w *window) bool {
		return w.dropDown != nil && w.dropDown.Name == name
	}) != nil
}

// centered is the window's requested size, plus border, in the middle of r.
func centered(r xp.Rectangle, xWin xp.Window) xp.Rectangle {
	width, height := r.Width/2, r.Height/2
	if geom, err := xp.GetGeometry(xConn, xp.Drawable(xWin)).Reply(); err != nil {
		log.Println(err)
	} else {
		width = min(geom.Width+2*borderWidth, r.Width)
		height = min(geom.Height+2*borderWidth, r.Height)
	}
	return xp.Rectangle{
		X:      r.X + int16((r.Width-width)/2),
		Y:      r.Y + int16((r.Height-height)/2),
		Width:  width,
		Height: height,
	}
}

func unmanage(xWin xp.Window) {
	w := windowForXWin(xWin)
	if w == nil {
		return
	}
	g := w.group
	g.remove(w)
	if drag.w == w {
		drag.w = nil
	}
	if quitting && findWindow(func(w *window) bool { return true }) == nil {
		os.Exit(0)
	}
	g.arrange()
	if focused == w {
		focused = nil
		if g.screen != nil {
			focus(g.focused)
		} else if w.shownOn != nil && w.shownOn.group != nil {
			focus(w.shownOn.group.focused)
		} else {
			focus(nil)
		}
	}
	*w = window{}
}

type xEventOrError struct {
	event xgb.Event
	error xgb.Error
}

func loadConfig() (*config.Config, string, error) {
	if configPath != "" {
		c, err := config.Load(configPath)
		return c, configPath, err
	}
	return config.LoadDefault()
}

func run(ctx context.Context) error {
	defer close(loopDone)
	var (
		path string
		err  error
	)
	cfg, path, err = loadConfig()
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Configure(cfg.Logging); err != nil {
		log.WithError(err).Warn("could not configure logging")
	}
	applyBorderConfig(cfg.Border.Focus, cfg.Border.Normal, cfg.Border.Width, cfg.Border.Margin)

	xConn, err = xgb.NewConn()
	if err != nil {
		return err
	}
	if err = xinerama.Init(xConn); err != nil {
		return err
	}
	if xUtil, err = xgbutil.NewConnXgb(xConn); err != nil {
		return err
	}
	xSetup := xp.Setup(xConn)
	if len(xSetup.Roots) != 1 {
		log.Fatalf("X setup has unsupported number of roots: %d", len(xSetup.Roots))
	}
	rootXWin = xSetup.Roots[0].Root

	sess, err = session.New(cfg, session.Options{
		Source:    &topology.RandR{Conn: xConn, Root: rootXWin},
		Signal:    applySlots,
		Restarted: restarted,
	})
	if err != nil {
		return err
	}

	becomeTheWM()
	initAtoms()
	initDesktop(&xSetup.Roots[0])
	initKeyboardMapping()
	grabButtons(sess.Mod)
	initGroups()
	applySlots(sess.Controller.Start(ctx))

	// Manage any existing windows.
	tree, err := xp.QueryTree(xConn, rootXWin).Reply()
	if err != nil {
		return err
	}
	for _, c := range tree.Children {
		if c == desktopXWin {
			continue
		}
		attrs, err := xp.GetWindowAttributes(xConn, c).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState == xp.MapStateUnmapped {
			continue
		}
		manage(c, false)
	}

	sess.Autostart()
	sess.WatchTopology(ctx)
	if path != "" {
		watchConfig(ctx, path)
	}

	// Process X events.
	eeChan := make(chan xEventOrError)
	go func() {
		for {
			e, err := xConn.WaitForEvent()
			if e == nil && err == nil {
				log.Fatal("X connection closed")
			}
			eeChan <- xEventOrError{e, err}
		}
	}()
	for {
		flushCheckers()

		select {
		case <-ctx.Done():
			return nil
		case f := <-proactiveChan:
			f()
		case ev := <-sess.Controller.Queue():
			sess.Controller.Handle(ctx, ev)
		case ee := <-eeChan:
			if ee.error != nil {
				log.Println(ee.error)
				continue
			}
			switch e := ee.event.(type) {
			case xp.ButtonPressEvent:
				eventTime = e.Time
				handleButtonPress(e)
			case xp.ButtonReleaseEvent:
				eventTime = e.Time
				handleButtonRelease(e)
			case xp.ClientMessageEvent:
				// No-op.
			case xp.ConfigureNotifyEvent:
				// No-op.
			case xp.ConfigureRequestEvent:
				handleConfigureRequest(e)
			case xp.DestroyNotifyEvent:
				// No-op.
			case xp.EnterNotifyEvent:
				eventTime = e.Time
				handleEnterNotify(e)
			case xp.KeyPressEvent:
				eventTime = e.Time
				handleKeyPress(e)
			case xp.KeyReleaseEvent:
				eventTime = e.Time
			case xp.MapNotifyEvent:
				// No-op.
			case xp.MappingNotifyEvent:
				if e.Request == xp.MappingKeyboard {
					initKeyboardMapping()
				}
			case xp.MapRequestEvent:
				manage(e.Window, true)
			case xp.MotionNotifyEvent:
				eventTime = e.Time
				handleMotionNotify(e)
			case xp.UnmapNotifyEvent:
				unmanage(e.Window)
			default:
				log.Debugf("unhandled event: %v", ee.event)
			}
		}
	}
}

// watchConfig restarts in place, on the main goroutine, whenever the config
// file changes. restart refuses a config that does not load.
func watchConfig(ctx context.Context, path string) {
	w, err := config.NewWatcher(path, 0, configChanged(ctx, reloadConfig), logging.NewLogger("config"))
	if err != nil {
		log.WithError(err).Warn("cannot watch config file")
		return
	}
	go w.Start(ctx)
}

// configChanged returns the watcher callback. It hands reload to the main
// goroutine, giving up once ctx is done so that the watcher can stop.
func configChanged(ctx context.Context, reload func()) func(string) {
	return func(string) {
		select {
		case proactiveChan <- reload:
		case <-ctx.Done():
		}
	}
}

func reloadConfig() {
	if err := restart(); err != nil {
		log.WithError(err).Error("config changed but is not usable, keeping the running one")
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
