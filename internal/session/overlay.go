package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shakfu/loki/internal/event"
)

// overlayKind distinguishes the two built-in full-screen modals, both
// session-level operations rendered through the same view-model snapshot
// path as the document itself.
type overlayKind int

const (
	overlayExplorer overlayKind = iota
	overlayHelp
)

type overlayEntry struct {
	name  string
	isDir bool
	size  int64
}

// overlayState is a full-screen modal's content, held on the editor
// context while active; Snapshot renders its lines in place of the
// document rows.
type overlayState struct {
	kind      overlayKind
	dir       string
	hasParent bool
	entries   []overlayEntry
	selected  int
}

var helpLines = []string{
	"Loki -- modal text editor",
	"",
	"NORMAL   hjkl/arrows move, i/a insert, o/O open line, v visual, : command",
	"         x delete char, u undo, Ctrl-R redo, { } paragraph motion",
	"INSERT   Esc to NORMAL, printable keys insert, Enter newline",
	"VISUAL   y yank, d yank+delete, x delete only, Esc cancel",
	"COMMAND  :w  :q  :wq  :e <path>  :set <opt>  :goto <n>",
	"",
	"GLOBAL   Ctrl-S save   Ctrl-Q quit   Ctrl-F search   Ctrl-L REPL toggle",
	"         Ctrl-T new buffer   Ctrl-X buffer prefix",
	"         Ctrl-E file explorer   Ctrl-H this help",
	"",
	"Press q or Esc to close",
}

// OpenExplorer opens the file explorer overlay rooted at the working
// directory, the Ctrl-E global binding.
func (s *Session) OpenExplorer() {
	c := s.cur()
	if c == nil {
		return
	}
	st, err := newExplorerState(".")
	if err != nil {
		c.setStatus("explorer: %v", err)
		return
	}
	c.overlay = st
}

// OpenHelp opens the static help overlay, the Ctrl-H global binding.
func (s *Session) OpenHelp() {
	c := s.cur()
	if c == nil {
		return
	}
	c.overlay = &overlayState{kind: overlayHelp, selected: -1}
}

func newExplorerState(dir string) (*overlayState, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	st := &overlayState{
		kind:      overlayExplorer,
		dir:       dir,
		hasParent: dir != "." && dir != "/" && dir != string(filepath.Separator),
	}
	for _, e := range entries {
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		st.entries = append(st.entries, overlayEntry{name: e.Name(), isDir: e.IsDir(), size: size})
	}
	return st, nil
}

func (ov *overlayState) rowCount() int {
	n := len(ov.entries)
	if ov.hasParent {
		n++
	}
	return n
}

// title is the overlay's status-line summary, shown in place of the
// normal StatusInfo while active.
func (ov *overlayState) title() string {
	if ov.kind == overlayHelp {
		return "Help (Enter=dismiss, q/Esc=close)"
	}
	return fmt.Sprintf("File Explorer: %s - %d items (Enter=open/navigate, q/Esc=close)", ov.dir, len(ov.entries))
}

// lines renders the overlay's content as plain display rows.
func (ov *overlayState) lines() []string {
	if ov.kind == overlayHelp {
		return helpLines
	}
	out := make([]string, 0, ov.rowCount())
	if ov.hasParent {
		out = append(out, "../")
	}
	for _, e := range ov.entries {
		if e.isDir {
			out = append(out, e.name+"/")
		} else {
			out = append(out, fmt.Sprintf("%s (%d bytes)", e.name, e.size))
		}
	}
	return out
}

// dispatchOverlay handles input while a full-screen overlay is active,
// mirroring dispatchSearch's reentrancy carve-out ahead of the modal
// machine.
func (s *Session) dispatchOverlay(ev event.Event) {
	c := s.cur()
	ov := c.overlay

	switch ev.Code {
	case event.KeyEscape:
		c.overlay = nil
		return
	case event.KeyArrowUp:
		if ov.selected > 0 {
			ov.selected--
		}
		return
	case event.KeyArrowDown:
		if ov.selected < ov.rowCount()-1 {
			ov.selected++
		}
		return
	case event.KeyEnter:
		s.activateOverlaySelection(c, ov)
		return
	}

	if len(ev.Bytes) == 1 && (ev.Bytes[0] == 'q' || ev.Bytes[0] == 'Q') {
		c.overlay = nil
	}
}

// activateOverlaySelection opens the selected file, navigates into the
// selected directory, or steps to the parent directory; a directory
// change simply swaps in a fresh overlayState. On the help overlay it
// dismisses the overlay.
func (s *Session) activateOverlaySelection(c *EditorContext, ov *overlayState) {
	if ov.kind == overlayHelp {
		c.overlay = nil
		return
	}
	idx := ov.selected
	if ov.hasParent {
		if idx == 0 {
			st, err := newExplorerState(filepath.Dir(ov.dir))
			if err != nil {
				c.setStatus("explorer: %v", err)
				return
			}
			c.overlay = st
			return
		}
		idx--
	}
	if idx < 0 || idx >= len(ov.entries) {
		return
	}

	entry := ov.entries[idx]
	path := filepath.Join(ov.dir, entry.name)
	if entry.isDir {
		st, err := newExplorerState(path)
		if err != nil {
			c.setStatus("explorer: %v", err)
			return
		}
		c.overlay = st
		return
	}

	if c.Dirty() {
		c.setStatus("explorer: current buffer has unsaved changes")
		return
	}
	if err := s.Open(path); err != nil {
		c.setStatus("explorer: %v", err)
		return
	}
	c.overlay = nil
}
