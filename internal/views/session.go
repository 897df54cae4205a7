// Package views implements the operations the user interface performs on
// the core. Each view is a facade over the session's workspace, parameter
// and report models; every top-level call that changes the workspace
// publishes a single DataChanged on the bus.
//
// Single-target operations return their errors. Multi-target operations
// log unknown or invalid targets and carry on.
package views

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/internal/bus"
	"github.com/mesh-intelligence/workbench/internal/catalog"
	"github.com/mesh-intelligence/workbench/internal/filter"
	"github.com/mesh-intelligence/workbench/internal/param"
	"github.com/mesh-intelligence/workbench/internal/report"
	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// Session groups the models shared by every view.
type Session struct {
	cfg     types.Config
	fs      afero.Fs
	log     zerolog.Logger
	bus     *bus.Bus
	catalog *catalog.Catalog
	ws      *workspace.Workspace
	params  *param.Model
	reports *report.Model
	filter  *filter.Engine
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFs sets the file system used for trash moves.
func WithFs(fs afero.Fs) SessionOption {
	return func(s *Session) { s.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithBus shares an existing bus.
func WithBus(b *bus.Bus) SessionOption {
	return func(s *Session) { s.bus = b }
}

// WithCatalog makes the catalog's current workspace the session workspace.
func WithCatalog(c *catalog.Catalog) SessionOption {
	return func(s *Session) { s.catalog = c }
}

// WithWorkspace sets the session workspace when no catalog is used.
func WithWorkspace(ws *workspace.Workspace) SessionOption {
	return func(s *Session) { s.ws = ws }
}

// WithParams sets the parameter model.
func WithParams(m *param.Model) SessionOption {
	return func(s *Session) { s.params = m }
}

// WithReports sets the report model.
func WithReports(m *report.Model) SessionOption {
	return func(s *Session) { s.reports = m }
}

// NewSession returns a session. Missing collaborators get defaults: a new
// bus, a Blank workspace, an empty parameter model and a report model over
// cfg.LogsDir.
func NewSession(cfg types.Config, opts ...SessionOption) *Session {
	s := &Session{cfg: cfg, fs: afero.NewOsFs(), log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.bus == nil {
		s.bus = bus.New(bus.WithLogger(s.log))
	}
	if s.ws == nil {
		s.ws = workspace.New(cfg, workspace.WithFs(s.fs), workspace.WithLogger(s.log))
	}
	if s.params == nil {
		// No step can fail validation, so New cannot fail here.
		s.params, _ = param.New(cfg, nil, param.WithLogger(s.log))
	}
	if s.reports == nil {
		s.reports = report.New(cfg.LogsDir, report.WithFs(s.fs), report.WithLogger(s.log))
	}
	s.filter = filter.New(filter.WithLogger(s.log))
	return s
}

// Config returns the session configuration.
func (s *Session) Config() types.Config { return s.cfg }

// Bus returns the change bus.
func (s *Session) Bus() *bus.Bus { return s.bus }

// Workspace returns the live current workspace.
func (s *Session) Workspace() *workspace.Workspace {
	if s.catalog != nil {
		return s.catalog.Current()
	}
	return s.ws
}

// Params returns the parameter model.
func (s *Session) Params() *param.Model { return s.params }

// Reports returns the report model.
func (s *Session) Reports() *report.Model { return s.reports }

// Catalog returns the workspaces catalog, or nil.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// view holds what every view shares: the session and its emitter identity.
type view struct {
	s  *Session
	id string
}

func newView(s *Session) view {
	return view{s: s, id: bus.NewEmitterID()}
}

// ID returns the emitter identity of the view.
func (v view) ID() string { return v.id }

// Subscribe registers h for the events of the other views.
func (v view) Subscribe(h bus.Handler) func() {
	return v.s.bus.Subscribe(v.id, h)
}

func (v view) ws() *workspace.Workspace { return v.s.Workspace() }

// publish announces a workspace change when changed is true.
func (v view) publish(changed bool) {
	if changed {
		v.s.bus.Publish(bus.DataChanged{From: v.id, Workspace: v.ws()})
	}
}
