/*
Package domain contains the core domain models of the ticket desk.

It defines the entities the conversation state machine reasons about: the
per-user Session variant, the Ticket, normalized inbound Events with their
structured Commands, and the transport-agnostic OutgoingMessage. This package
is kept pure and free of I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Session: tagged variant (Idle, FillingForm, AwaitingDeleteConfirmation) keyed by user.
  - Ticket: the durable entity owned by the storage collaborator.
  - Record: ordered field name to value mapping collected by the form.
  - Event / Command: what a transport delivers for one user turn.
  - OutgoingMessage: what the core hands back for the transport to render.
*/
package domain
