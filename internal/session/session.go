// Package session assembles the window-manager core from a configuration:
// the group registry, the dispatch table, and the topology detector, screen
// allocator and reconfiguration controller.
package session

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/nigeltao/tiler/internal/command"
	"github.com/nigeltao/tiler/internal/config"
	tilerrors "github.com/nigeltao/tiler/internal/errors"
	"github.com/nigeltao/tiler/internal/keys"
	"github.com/nigeltao/tiler/internal/logging"
	"github.com/nigeltao/tiler/internal/reconfig"
	"github.com/nigeltao/tiler/internal/screen"
	"github.com/nigeltao/tiler/internal/topology"
	"github.com/nigeltao/tiler/internal/workspace"
)

// Options supplies what the configuration cannot.
type Options struct {
	// Source enumerates outputs. Nil means RandR on $DISPLAY.
	Source topology.Source
	// Executor runs scripts. Nil means the real one.
	Executor command.Executor
	// Signal is called on the main loop after each topology-driven
	// reconfiguration.
	Signal reconfig.Signal
	// Restarted is set when the process replaced a previous instance of
	// itself; autostart does not run again.
	Restarted bool
}

// Session is the assembled core. Everything but Controller.Enqueue belongs to
// the main loop.
type Session struct {
	Config     *config.Config
	Mod        keys.Mod
	Registry   *workspace.Registry
	Dispatcher *keys.Dispatcher
	Detector   *topology.Detector
	Allocator  *screen.Allocator
	Controller *reconfig.Controller
	Monitor    *topology.Monitor
	Runner     *command.Runner

	restarted bool
	log       *logrus.Entry
}

// New builds a Session. Any configuration error (a duplicate group, a second
// scratchpad, a chord bound twice) is returned unchanged so the caller can
// abort with the diagnostic.
func New(cfg *config.Config, opts Options) (*Session, error) {
	log := logging.NewLogger("session")

	mod, err := cfg.ModMask()
	if err != nil {
		return nil, tilerrors.ConfigInvalid(err.Error()).WithDetail("field", "modifier")
	}

	registry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	dispatcher := keys.NewDispatcher(logging.NewLogger("keys"))
	static, err := cfg.KeyBindings()
	if err != nil {
		return nil, err
	}
	if err := dispatcher.RegisterAll(static); err != nil {
		return nil, err
	}
	if err := dispatcher.RegisterAll(registry.Bindings(mod)); err != nil {
		return nil, err
	}

	mode, err := topology.ParseCountMode(cfg.Topology.Count)
	if err != nil {
		return nil, tilerrors.ConfigInvalid(err.Error()).WithDetail("field", "topology.count")
	}
	source := opts.Source
	if source == nil {
		source = &topology.RandR{}
	}
	topoLog := logging.NewLogger("topology")
	detector := &topology.Detector{Source: source, Mode: mode, Log: topoLog}

	runner := command.NewRunner(opts.Executor, cfg.FixupTimeout(), logging.NewLogger("command"))
	allocator := screen.NewAllocator(
		&screen.ScriptFixup{Dir: cfg.Scripts.LayoutDir, Runner: runner},
		logging.NewLogger("screen"),
	)
	controller := reconfig.New(detector, allocator, opts.Signal, logging.NewLogger("reconfig"))

	s := &Session{
		Config:     cfg,
		Mod:        mod,
		Registry:   registry,
		Dispatcher: dispatcher,
		Detector:   detector,
		Allocator:  allocator,
		Controller: controller,
		Runner:     runner,
		restarted:  opts.Restarted,
		log:        log,
	}
	if cfg.MonitorEnabled() {
		s.Monitor = &topology.Monitor{
			Subsystem: cfg.Topology.Subsystem,
			Quiet:     cfg.Debounce(),
			Log:       topoLog,
		}
	}
	log.WithFields(logrus.Fields{
		"groups":   len(registry.Groups()),
		"bindings": dispatcher.Len(),
	}).Debug("session built")
	return s, nil
}

// BuildRegistry registers the configured groups and float rules.
func BuildRegistry(cfg *config.Config) (*workspace.Registry, error) {
	groups, err := cfg.WorkspaceGroups()
	if err != nil {
		return nil, err
	}
	registry := workspace.NewRegistry()
	for _, g := range groups {
		if err := registry.Register(g); err != nil {
			return nil, err
		}
	}
	for _, r := range cfg.WorkspaceFloatRules() {
		registry.AddFloatRule(r)
	}
	return registry, nil
}

// autostarted is process-wide: a session rebuilt after a config reload must
// not run autostart again.
var autostarted atomic.Bool

// Autostart runs the autostart script, without waiting for it, the first
// time it is called in a process that was not restarted in place. It reports
// whether the script was started.
func (s *Session) Autostart() bool {
	if s.restarted || !autostarted.CompareAndSwap(false, true) {
		return false
	}
	script := s.Config.Scripts.Autostart
	if err := s.Runner.Start(script); err != nil {
		if tilerrors.Is(err, tilerrors.ErrCodeCommandNotFound) {
			s.log.WithField("script", script).Debug("no autostart script")
		} else {
			s.log.WithError(err).Warn("autostart failed")
		}
		return false
	}
	s.log.WithField("script", script).Info("autostart started")
	return true
}

// WatchTopology runs the device event monitor until ctx is done, feeding
// the controller's queue. It returns immediately when monitoring is off.
func (s *Session) WatchTopology(ctx context.Context) {
	if s.Monitor == nil {
		return
	}
	go func() {
		if err := s.Monitor.Run(ctx, s.Controller.Enqueue); err != nil {
			s.log.WithError(err).Warn("device event monitor stopped")
		}
	}()
}

// Context returns the key-dispatch context for the given live state.
func (s *Session) Context(host keys.Host, window uint32, screen int, group string) *keys.Context {
	return &keys.Context{Host: host, Window: window, Screen: screen, Group: group}
}
