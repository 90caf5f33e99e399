package terminalhost

import "github.com/shakfu/loki/internal/event"

// Source adapts Host.KeyEvent into the event.Source pull interface, the
// terminal-backed counterpart of event.MemorySource.
type Source struct {
	host *Host
}

// NewSource returns an event.Source backed by host.
func NewSource(host *Host) *Source {
	return &Source{host: host}
}

// Read blocks up to timeoutMS for one key event from the terminal.
func (s *Source) Read(timeoutMS int) (event.Event, error) {
	if s.host.ConsumeResize() {
		rows, cols, err := s.host.WindowSize()
		if err == nil {
			return event.Resize(rows, cols), nil
		}
	}
	return s.host.KeyEvent(timeoutMS)
}

// Poll always reports true: a blocking terminal read has no separate
// "is something ready" check beyond attempting the read itself, so
// callers should prefer Read with a short timeout.
func (s *Source) Poll() bool { return true }

var _ event.Source = (*Source)(nil)
