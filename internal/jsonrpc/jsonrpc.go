// Package jsonrpc implements the control harness: one JSON object per
// line of stdin, one JSON object per line of stdout, driving a
// session.Session the same way a terminal host's keypresses do.
package jsonrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/session"
)

// request is the shape of one incoming command line; fields are sparse
// depending on Cmd.
type request struct {
	Cmd       string `json:"cmd"`
	File      string `json:"file"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Modifiers int    `json:"modifiers"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Text      string `json:"text"`
}

// response is marshaled back to the client, one object per line. Fields
// are omitted when empty/zero via omitempty so each response only carries
// what its command produces.
type response struct {
	OK        bool               `json:"ok"`
	Error     string             `json:"error,omitempty"`
	Quit      bool               `json:"quit,omitempty"`
	Mode      string             `json:"mode,omitempty"`
	Filename  string             `json:"filename,omitempty"`
	Dirty     bool               `json:"dirty,omitempty"`
	ViewModel *session.ViewModel `json:"viewmodel,omitempty"`
}

// Harness drives a session.Session from line-delimited JSON-RPC commands.
type Harness struct {
	Session *session.Session
}

// New returns a harness wrapping sess.
func New(sess *session.Session) *Harness {
	return &Harness{Session: sess}
}

// Run reads commands from in, one JSON object per line, writes one JSON
// response per line to out, and returns when the session quits, input is
// exhausted, or a "quit" command is processed. single, when true, handles
// exactly one command then returns (the --json-rpc-single CLI mode).
func (h *Harness) Run(in io.Reader, out io.Writer, single bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp, quit := h.handle(line)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if quit || single {
			return nil
		}
	}
	return scanner.Err()
}

func (h *Harness) handle(line []byte) (response, bool) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return response{Error: fmt.Sprintf("protocol: malformed json: %v", err)}, false
	}

	switch req.Cmd {
	case "load":
		if err := h.Session.Open(req.File); err != nil {
			return response{Error: err.Error()}, false
		}
		return response{OK: true}, false

	case "save":
		if err := h.Session.Save(""); err != nil {
			return response{Error: err.Error()}, false
		}
		return response{OK: true}, false

	case "resize":
		h.Session.Resize(req.Rows, req.Cols)
		return response{OK: true}, false

	case "event":
		return h.handleEvent(req)

	case "insert":
		quit := false
		for _, b := range []byte(req.Text) {
			res := h.Session.HandleEvent(event.Printable(b))
			if res.Quit {
				quit = true
			}
		}
		return response{OK: true, Quit: quit}, quit

	case "snapshot":
		vm := h.Session.Snapshot()
		return response{OK: true, ViewModel: &vm}, false

	case "status":
		vm := h.Session.Snapshot()
		return response{
			OK:       true,
			Mode:     vm.Status.Mode,
			Filename: vm.Status.Filename,
			Dirty:    vm.Status.Dirty,
		}, false

	case "quit":
		h.Session.HandleEvent(event.Quit())
		return response{OK: true, Quit: true}, true

	default:
		return response{Error: fmt.Sprintf("protocol: unknown command %q", req.Cmd)}, false
	}
}

func (h *Harness) handleEvent(req request) (response, bool) {
	switch req.Type {
	case "key":
		res := h.Session.HandleEvent(event.Event{
			Kind:      event.KindKey,
			Code:      event.Keycode(req.Code),
			Modifiers: event.Modifier(req.Modifiers),
		})
		return response{OK: res.Ok, Quit: res.Quit}, res.Quit
	case "resize":
		res := h.Session.HandleEvent(event.Resize(req.Rows, req.Cols))
		return response{OK: res.Ok}, false
	case "quit":
		h.Session.HandleEvent(event.Quit())
		return response{OK: true, Quit: true}, true
	default:
		return response{Error: fmt.Sprintf("protocol: unknown event type %q", req.Type)}, false
	}
}
