package domain

import "fmt"

// SessionKind tags the variant a Session is in.
type SessionKind string

const (
	KindIdle                       SessionKind = "idle"                         // No active flow
	KindFillingForm                SessionKind = "filling_form"                 // Awaiting input for FieldIndex
	KindAwaitingDeleteConfirmation SessionKind = "awaiting_delete_confirmation" // Awaiting yes/no for TicketID
)

// Session is the per-user conversation state.
// Exactly one variant is active; fields that do not belong to the active
// variant are zero.
type Session struct {
	Kind SessionKind `json:"kind"`

	// FieldIndex is the schema position awaiting input (FillingForm).
	FieldIndex int `json:"field_index,omitempty"`

	// Collected holds the values accepted so far (FillingForm).
	Collected Record `json:"collected,omitempty"`

	// TicketID is the ticket pending deletion (AwaitingDeleteConfirmation).
	TicketID string `json:"ticket_id,omitempty"`

	// Revision is bumped by the session manager on every persisted write.
	// It lets compare-and-set detect intervening updates.
	Revision uint64 `json:"revision,omitempty"`
}

// Idle returns the default session.
func Idle() Session {
	return Session{Kind: KindIdle}
}

// FillingForm returns a session awaiting input for the given field.
func FillingForm(fieldIndex int, collected Record) Session {
	return Session{Kind: KindFillingForm, FieldIndex: fieldIndex, Collected: collected.Clone()}
}

// AwaitingDeleteConfirmation returns a session guarding deletion of ticketID.
func AwaitingDeleteConfirmation(ticketID string) Session {
	return Session{Kind: KindAwaitingDeleteConfirmation, TicketID: ticketID}
}

// IsIdle reports whether no flow is active. The zero Session is idle.
func (s Session) IsIdle() bool {
	return s.Kind == KindIdle || s.Kind == ""
}

// Validate checks that the variant is well-formed.
func (s Session) Validate() error {
	switch s.Kind {
	case KindIdle, "":
		if s.FieldIndex != 0 || len(s.Collected) != 0 || s.TicketID != "" {
			return fmt.Errorf("idle session carries flow data")
		}
	case KindFillingForm:
		if s.FieldIndex < 0 {
			return fmt.Errorf("negative field index %d", s.FieldIndex)
		}
		if s.TicketID != "" {
			return fmt.Errorf("form session carries ticket id")
		}
	case KindAwaitingDeleteConfirmation:
		if s.TicketID == "" {
			return fmt.Errorf("confirmation session without ticket id")
		}
		if s.FieldIndex != 0 || len(s.Collected) != 0 {
			return fmt.Errorf("confirmation session carries form data")
		}
	default:
		return fmt.Errorf("unknown session kind %q", s.Kind)
	}
	return nil
}

// Equal compares two sessions, including their revision.
func (s Session) Equal(other Session) bool {
	return s.SameContent(other) && s.Revision == other.Revision
}

// SameContent compares two sessions ignoring their revision.
// All idle sessions are the same.
func (s Session) SameContent(other Session) bool {
	if s.IsIdle() && other.IsIdle() {
		return true
	}
	return s.Kind == other.Kind &&
		s.FieldIndex == other.FieldIndex &&
		s.TicketID == other.TicketID &&
		s.Collected.Equal(other.Collected)
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	if s.Collected != nil {
		out.Collected = s.Collected.Clone()
	}
	return out
}
