// Package session implements the opaque session handle and view-model
// snapshot boundary: the façade owning the editor contexts, routing
// events through the modal machine, and producing a deep-copied view
// model any renderer can consume.
package session

import (
	"time"

	"github.com/shakfu/loki/internal/row"
)

// Segment is a maximal run of rendered bytes sharing one highlight class
// and selection bit.
type Segment struct {
	Text     string
	Class    row.Highlight
	Selected bool
}

// maxSegmentsPerRow bounds segment count; overflow truncates the row
// right-side rather than producing an inconsistent segment.
const maxSegmentsPerRow = 256

// RowView is one visible screen row's worth of renderer-facing data.
type RowView struct {
	FileRow  int // -1 when past EOF ("empty past EOF")
	Empty    bool
	Segments []Segment
}

// TabInfo describes one buffer-manager slot for a tab bar.
type TabInfo struct {
	ID       int
	Label    string
	Modified bool
	Current  bool
}

// StatusInfo is the renderer-facing status line content.
type StatusInfo struct {
	Filename  string
	Dirty     bool
	Mode      string
	Filetype  string
	Line      int
	TotalRows int
}

// ReplState is the scripting-host REPL pane's renderer-facing state.
type ReplState struct {
	Active bool
	Prompt string
	Input  string
	Log    []string
	Cap    int
}

// CursorInfo reports the cursor in both screen and file coordinates.
type CursorInfo struct {
	ScreenRow, ScreenCol int
	FileRow, FileCol     int
	Visible              bool
}

// Message is the transient status-message channel with its expiry.
type Message struct {
	Text    string
	Expires time.Time
}

func (m Message) Live(now time.Time) bool {
	return m.Text != "" && now.Before(m.Expires)
}

// ViewModel is the deep-copied, renderer-facing snapshot of one frame.
// Every string here owns its bytes; mutating the editor after taking a
// snapshot never alters it.
type ViewModel struct {
	ScreenRows, ScreenCols int
	GutterWidth            int
	Rows                   []RowView
	Tabs                   []TabInfo
	Status                 StatusInfo
	Message                string
	MessageVisible         bool
	REPL                   ReplState
	Cursor                 CursorInfo
}
