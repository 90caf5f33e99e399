package session

import (
	"fmt"
	"os"

	"github.com/shakfu/loki/internal/buffer"
	"github.com/shakfu/loki/internal/command"
	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/modal"
	"github.com/shakfu/loki/internal/row"
	"github.com/shakfu/loki/internal/selection"
	"github.com/shakfu/loki/internal/syntax"
)

// Config configures a new session: initial dimensions and display
// flags, mirroring the CLI surface's
// --line-numbers/--word-wrap/--rows/--cols flags.
type Config struct {
	ScreenRows, ScreenCols int
	LineNumbers            bool
	WordWrap               bool
	OpenPath               string
	IndentUnit             string // overrides the default two-space indent unit when non-empty
	ScriptHost             ScriptHost
	Plugin                 syntax.Plugin
}

// ScriptHost is the opaque scripting-host handle: entry points the
// engine may call, never the reverse.
type ScriptHost interface {
	// LookupKeymap may claim an event before the modal machine processes
	// it; handled reports whether it did.
	LookupKeymap(modeTag string, code int) (handled bool)
}

// ClipboardWriter mirrors selection.ClipboardWriter so session doesn't
// need to import the renderer package (which imports session).
type ClipboardWriter interface {
	ClipboardCopy(text []byte) error
}

// Result is handle_event's return contract: {ok, quit, error}.
type Result struct {
	Ok    bool
	Quit  bool
	Error error
}

// Session is the engine's opaque handle: one buffer manager (holding
// editor contexts), a should-quit flag, an optional scripting host, and
// the command registry and plugin hooks every buffer shares.
type Session struct {
	buffers    *buffer.Manager
	registry   *command.Registry
	scriptHost ScriptHost
	clipboard  ClipboardWriter
	plugin     syntax.Plugin

	shouldQuit bool
	lastError  error
}

// New builds a session and optionally opens an initial file.
func New(cfg Config) *Session {
	s := &Session{
		buffers:    buffer.New(),
		registry:   command.New(),
		scriptHost: cfg.ScriptHost,
		plugin:     cfg.Plugin,
	}
	ctx := NewEditorContext()
	ctx.ScreenRows, ctx.ScreenCols = cfg.ScreenRows, cfg.ScreenCols
	ctx.LineNumbers = cfg.LineNumbers
	ctx.WordWrap = cfg.WordWrap
	ctx.Syntax.Plugin = cfg.Plugin
	if cfg.IndentUnit != "" {
		ctx.Indent.Unit = cfg.IndentUnit
	}
	s.buffers.Create(ctx)

	if cfg.OpenPath != "" {
		if err := s.Open(cfg.OpenPath); err != nil {
			s.cur().setStatus("%v", err)
		}
	}
	return s
}

// SetClipboard wires a renderer's clipboard entry point into the
// session, used by VISUAL-mode yank.
func (s *Session) SetClipboard(c ClipboardWriter) { s.clipboard = c }

func (s *Session) cur() *EditorContext {
	_, ctx, ok := s.buffers.Current()
	if !ok {
		return nil
	}
	return ctx.(*EditorContext)
}

// HandleEvent routes one event through the modal machine, honoring the
// Ctrl-X buffer-prefix, overlay and live-search sub-dispatches ahead of
// the four-mode dispatch.
func (s *Session) HandleEvent(ev event.Event) Result {
	c := s.cur()
	if c == nil {
		return Result{Error: fmt.Errorf("session: no active buffer")}
	}

	if ev.Kind == event.KindResize {
		c.ScreenRows, c.ScreenCols = ev.Rows, ev.Cols
		return Result{Ok: true}
	}
	if ev.Kind == event.KindQuit {
		s.shouldQuit = true
		return Result{Ok: true, Quit: true}
	}
	if ev.Kind != event.KindKey {
		return Result{Ok: true}
	}

	if s.scriptHost != nil {
		if s.scriptHost.LookupKeymap(c.mode.String(), int(ev.Code)) {
			return Result{Ok: true}
		}
	}

	if c.overlay != nil {
		s.dispatchOverlay(ev)
		return Result{Ok: true, Quit: s.shouldQuit}
	}

	if c.ctrlX {
		c.ctrlX = false
		s.dispatchCtrlX(ev)
		return Result{Ok: true, Quit: s.shouldQuit}
	}

	if c.search != nil {
		s.dispatchSearch(ev)
		return Result{Ok: true, Quit: s.shouldQuit}
	}

	modal.Dispatch(s, ev)
	return Result{Ok: true, Quit: s.shouldQuit, Error: s.takeError()}
}

func (s *Session) takeError() error {
	err := s.lastError
	s.lastError = nil
	return err
}

// Resize is a direct pass-through to the current context's screen
// dimensions.
func (s *Session) Resize(rows, cols int) {
	if c := s.cur(); c != nil {
		c.ScreenRows, c.ScreenCols = rows, cols
	}
}

// Open loads a file into the current slot, rejecting binary content,
// and resets the slot's document state: cursor, offsets, selection,
// undo journal and grammar.
func (s *Session) Open(path string) error {
	c := s.cur()
	if c == nil {
		return fmt.Errorf("session: no active buffer")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not open file %q: %w", path, err)
	}
	if row.IsBinary(data) {
		return fmt.Errorf("refusing to open binary file %q", path)
	}

	store := row.New()
	store.Rows = store.Rows[:0]
	lines := splitLines(data)
	for _, l := range lines {
		store.InsertRow(len(store.Rows), l)
	}
	if len(store.Rows) == 0 {
		store.InsertRow(0, nil)
	}
	store.Filename = path
	store.Dirty = 0

	c.Store = store
	c.Undo.Clear()
	c.Sel = selection.Selection{}
	c.CX, c.CY, c.RowOffset, c.ColOffset = 0, 0, 0, 0
	c.Syntax.Grammar = syntax.ForFilename(path)
	if g := c.Syntax.Grammar; g != nil {
		c.Indent.Openers = g.Openers
		c.Indent.Closers = g.Closers
	}
	c.rehighlightFrom(0)
	return nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			line := data[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, append([]byte(nil), line...))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, append([]byte(nil), data[start:]...))
	}
	return lines
}

// Save writes the current buffer to path (or its existing filename when
// path is empty), truncating first, and reports the byte count written.
func (s *Session) Save(path string) error {
	c := s.cur()
	if c == nil {
		return fmt.Errorf("session: no active buffer")
	}
	if path == "" {
		path = c.Store.Filename
	}
	if path == "" {
		return fmt.Errorf("no filename set; use :w <path>")
	}
	data := c.Store.RowsToBytes()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	c.Store.Filename = path
	c.Store.Dirty = 0
	c.Undo.Break()
	c.setStatus("%d bytes written to disk", len(data))
	return nil
}

// AnyDirty reports whether any live buffer has unsaved changes, per the
// `q` built-in command's guard.
func (s *Session) AnyDirty() bool {
	for _, e := range s.buffers.List() {
		if e.Ctx.(*EditorContext).Dirty() {
			return true
		}
	}
	return false
}

// Quit requests a quit, matching command.Context's contract; force
// bypasses the dirty check.
func (s *Session) Quit(force bool) error {
	if !force && s.AnyDirty() {
		return fmt.Errorf("buffers have unsaved changes; use q! to force")
	}
	s.shouldQuit = true
	return nil
}

// ShouldQuit reports whether the session wants the host loop to stop.
func (s *Session) ShouldQuit() bool { return s.shouldQuit }

// SetOption toggles or sets a view display option, per the `set`
// built-in.
func (s *Session) SetOption(name, val string) error {
	c := s.cur()
	if c == nil {
		return fmt.Errorf("session: no active buffer")
	}
	switch name {
	case "wrap", "word-wrap":
		c.WordWrap = val == "" || val == "true" || val == "on"
	case "line-numbers", "number", "nu":
		c.LineNumbers = val == "" || val == "true" || val == "on"
	default:
		return fmt.Errorf("unknown option: %s", name)
	}
	return nil
}

// GotoLine moves the cursor to 1-based line n, clamped to the document.
func (s *Session) GotoLine(n int) error {
	c := s.cur()
	if c == nil {
		return fmt.Errorf("session: no active buffer")
	}
	n--
	if n < 0 {
		n = 0
	}
	if n >= len(c.Store.Rows) {
		n = len(c.Store.Rows) - 1
	}
	c.CY = n
	c.CX = 0
	return nil
}

// Help shows the help line/screen for name (empty for the general help).
func (s *Session) Help(name string) error {
	c := s.cur()
	if c == nil {
		return nil
	}
	if name == "" {
		c.setStatus("Loki: NORMAL hjkl/i/a/o/v/: | INSERT Esc | VISUAL y/d/x | :w :q :wq :e :set :goto")
		return nil
	}
	c.setStatus("help: %s", name)
	return nil
}

var _ command.Context = (*Session)(nil)
