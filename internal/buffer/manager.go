// Package buffer implements the fixed-slot editor-context table: each
// live slot has a unique, monotonically issued id, exactly one slot is
// current, and closing the current slot switches away first.
package buffer

import "fmt"

// Context is the per-slot payload. This package stays generic over it
// so session can own the actual editor-context type.
type Context = any

type slot struct {
	id      int
	ctx     Context
	present bool
}

// Manager is the fixed-slot table plus the current-slot designation.
type Manager struct {
	slots   []slot
	current int // index into slots, -1 if none
	nextID  int
}

// New returns an empty manager.
func New() *Manager {
	return &Manager{current: -1, nextID: 1}
}

// Create opens a new slot holding ctx and returns its id. The first slot
// created becomes current.
func (m *Manager) Create(ctx Context) int {
	id := m.nextID
	m.nextID++
	s := slot{id: id, ctx: ctx, present: true}

	for i := range m.slots {
		if !m.slots[i].present {
			m.slots[i] = s
			if m.current < 0 {
				m.current = i
			}
			return id
		}
	}
	m.slots = append(m.slots, s)
	if m.current < 0 {
		m.current = len(m.slots) - 1
	}
	return id
}

func (m *Manager) indexOf(id int) int {
	for i := range m.slots {
		if m.slots[i].present && m.slots[i].id == id {
			return i
		}
	}
	return -1
}

// liveCount returns the number of live (present) slots.
func (m *Manager) liveCount() int {
	n := 0
	for _, s := range m.slots {
		if s.present {
			n++
		}
	}
	return n
}

// Current returns the current slot's id and context. ok is false if there
// is no current slot (the table is empty).
func (m *Manager) Current() (id int, ctx Context, ok bool) {
	if m.current < 0 || !m.slots[m.current].present {
		return 0, nil, false
	}
	return m.slots[m.current].id, m.slots[m.current].ctx, true
}

// SetCurrentContext replaces the current slot's context in place (the
// session mutates its own editor context by reference in practice, but
// this keeps the manager's copy authoritative when a context is a value
// type).
func (m *Manager) SetCurrentContext(ctx Context) {
	if m.current >= 0 && m.slots[m.current].present {
		m.slots[m.current].ctx = ctx
	}
}

// Switch makes the slot holding id current.
func (m *Manager) Switch(id int) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("buffer: no such slot: %d", id)
	}
	m.current = i
	return nil
}

// dirtyCheck reports whether ctx is dirty, via the minimal interface the
// session's document model implements. Contexts that don't implement it
// are treated as never dirty.
type dirtyChecker interface {
	Dirty() bool
}

func isDirty(ctx Context) bool {
	if d, ok := ctx.(dirtyChecker); ok {
		return d.Dirty()
	}
	return false
}

// Close closes the slot holding id: refuses when dirty unless force. On
// closing the current slot, it computes the next slot first, switches to
// it, and only then frees the target -- avoiding the window where the
// current id still names the about-to-be-freed slot. Closing the last
// surviving slot is always disallowed.
func (m *Manager) Close(id int, force bool) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("buffer: no such slot: %d", id)
	}
	if m.liveCount() <= 1 {
		return fmt.Errorf("buffer: cannot close the last buffer")
	}
	if !force && isDirty(m.slots[i].ctx) {
		return fmt.Errorf("buffer: slot %d has unsaved changes", id)
	}

	if i == m.current {
		m.current = m.nextLiveIndex(i)
	}
	m.slots[i] = slot{}
	return nil
}

// nextLiveIndex finds the next live slot after i, wrapping, excluding i
// itself.
func (m *Manager) nextLiveIndex(i int) int {
	n := len(m.slots)
	for step := 1; step <= n; step++ {
		j := (i + step) % n
		if j != i && m.slots[j].present {
			return j
		}
	}
	return -1
}

// Next switches to the next live slot, wrapping.
func (m *Manager) Next() error {
	if m.current < 0 {
		return fmt.Errorf("buffer: no current slot")
	}
	j := m.nextLiveIndex(m.current)
	if j < 0 {
		return fmt.Errorf("buffer: no other slot")
	}
	m.current = j
	return nil
}

// Previous switches to the previous live slot, wrapping.
func (m *Manager) Previous() error {
	if m.current < 0 {
		return fmt.Errorf("buffer: no current slot")
	}
	n := len(m.slots)
	for step := 1; step <= n; step++ {
		j := (m.current - step%n + n) % n
		if j != m.current && m.slots[j].present {
			m.current = j
			return nil
		}
	}
	return fmt.Errorf("buffer: no other slot")
}

// Entry describes one live slot for List.
type Entry struct {
	ID      int
	Current bool
	Ctx     Context
}

// List returns all live slots in table order.
func (m *Manager) List() []Entry {
	var out []Entry
	for i, s := range m.slots {
		if !s.present {
			continue
		}
		out = append(out, Entry{ID: s.id, Current: i == m.current, Ctx: s.ctx})
	}
	return out
}

// NthLive returns the id of the n-th live slot (1-based, table order), as
// used by the Ctrl-X prefix's "1"-"9" jump.
func (m *Manager) NthLive(n int) (int, bool) {
	count := 0
	for _, s := range m.slots {
		if !s.present {
			continue
		}
		count++
		if count == n {
			return s.id, true
		}
	}
	return 0, false
}
