// Package notify provides the single process-wide notification slot that
// request failures are reported to. The slot holds one message and its
// visibility; every write replaces both at once and the last write wins.
package notify

import "sync/atomic"

// Notification is the state of the slot.
type Notification struct {
	Message string
	Visible bool
}

// Notifier receives user-facing failure messages.
type Notifier interface {
	SetMessage(text string)
	SetVisible(visible bool)
	Publish(n Notification)
}

// Slot is a Notifier safe for concurrent use. A reader never observes a
// message from one write paired with the visibility of another.
type Slot struct {
	v atomic.Pointer[Notification]
}

// NewSlot returns an empty, hidden Slot.
func NewSlot() *Slot {
	s := &Slot{}
	s.v.Store(&Notification{})
	return s
}

// Publish replaces the message and visibility together.
func (s *Slot) Publish(n Notification) {
	s.v.Store(&n)
}

// SetMessage replaces the message and keeps the current visibility.
func (s *Slot) SetMessage(text string) {
	s.update(func(n *Notification) { n.Message = text })
}

// SetVisible replaces the visibility and keeps the current message.
func (s *Slot) SetVisible(visible bool) {
	s.update(func(n *Notification) { n.Visible = visible })
}

// Load returns the current state.
func (s *Slot) Load() Notification {
	if n := s.v.Load(); n != nil {
		return *n
	}
	return Notification{}
}

// Dismiss hides the slot and clears its message.
func (s *Slot) Dismiss() {
	s.Publish(Notification{})
}

func (s *Slot) update(fn func(*Notification)) {
	for {
		old := s.v.Load()
		next := Notification{}
		if old != nil {
			next = *old
		}
		fn(&next)
		if s.v.CompareAndSwap(old, &next) {
			return
		}
	}
}
