package domain

// Choice is a selectable option attached to an outgoing message.
// Selecting it sends Command back as a structured command.
type Choice struct {
	Label   string  `json:"label"`
	Command Command `json:"command"`
}

// OutgoingMessage describes the reply for the transport to render.
type OutgoingMessage struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// Action names the route the dispatcher took for an event.
type Action string

const (
	ActionStartForm     Action = "start_form"
	ActionAdvanceForm   Action = "advance_form"
	ActionSubmitTicket  Action = "submit_ticket"
	ActionListTickets   Action = "list_tickets"
	ActionShowTicket    Action = "show_ticket"
	ActionRequestDelete Action = "request_delete"
	ActionConfirmDelete Action = "confirm_delete"
	ActionCancelDelete  Action = "cancel_delete"
	ActionCancel        Action = "cancel"
	ActionHelp          Action = "help"
	ActionFallback      Action = "fallback"
)
