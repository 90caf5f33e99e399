// Package webhost is the --web transport: it pushes view-model JSON
// frames over a websocket and receives input events back, driving a
// session.Session through its event surface.
package webhost

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inMessage is one JSON-encoded client->server frame: a resize, key,
// insert or quit event, mirroring the example's resizeMessage
// discriminated by Type.
type inMessage struct {
	Type      string `json:"type"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Code      int    `json:"code"`
	Modifiers int    `json:"modifiers"`
	Text      string `json:"text"`
}

// Server serves the editor's web transport: static assets from webRoot
// plus a /ws endpoint; every connection drives the same Session.
type Server struct {
	Session *session.Session
	WebRoot string
}

// New returns a web host bound to sess, serving static assets from root.
func New(sess *session.Session, root string) *Server {
	return &Server{Session: sess, WebRoot: root}
}

// Handler returns the http.Handler to pass to http.ListenAndServe: static
// files under WebRoot plus the /ws websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.WebRoot != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.WebRoot)))
	}
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("webhost: upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if err := s.pushFrame(conn); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("webhost: read error: %v", err)
			}
			return
		}

		var msg inMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("webhost: malformed frame: %v", err)
			continue
		}

		quit := s.applyMessage(msg)
		if err := s.pushFrame(conn); err != nil {
			return
		}
		if quit {
			return
		}
	}
}

// applyMessage translates one client frame into session events, returning
// whether the session now wants to quit.
func (s *Server) applyMessage(msg inMessage) bool {
	switch msg.Type {
	case "resize":
		s.Session.HandleEvent(event.Resize(msg.Rows, msg.Cols))
	case "key":
		ev := event.Event{
			Kind:      event.KindKey,
			Code:      event.Keycode(msg.Code),
			Modifiers: event.Modifier(msg.Modifiers),
			Bytes:     []byte(msg.Text),
		}
		res := s.Session.HandleEvent(ev)
		return res.Quit
	case "insert":
		for _, b := range []byte(msg.Text) {
			res := s.Session.HandleEvent(event.Printable(b))
			if res.Quit {
				return true
			}
		}
	case "quit":
		res := s.Session.HandleEvent(event.Quit())
		return res.Quit
	}
	return s.Session.ShouldQuit()
}

func (s *Server) pushFrame(conn *websocket.Conn) error {
	vm := s.Session.Snapshot()
	data, err := json.Marshal(vm)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
