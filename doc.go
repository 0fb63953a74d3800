/*
Package ticketflow is a conversational ticket desk: a per-user state machine
that walks users through a form, files the result as a ticket, and lets them
list, inspect and delete their tickets one turn at a time.

# Concept

Every user has exactly one session, which is Idle, FillingForm or
AwaitingDeleteConfirmation. Each inbound event is routed by the dispatcher to
the form engine, the ticket service or the confirmation flow, and the reply is
returned as a transport-agnostic message with optional choices. Events for the
same user are applied strictly one at a time, in arrival order; different
users never wait on each other.

Transports (HTTP, MCP, the CLI chat), session stores (memory, file, Redis)
and ticket storage (memory, Redis, PostgreSQL) are adapters behind the
interfaces in pkg/ports.

# Usage

	desk, err := ticketflow.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	reply, err := desk.Handle(ctx, domain.Event{
		UserID:  "42",
		Command: &domain.Command{Name: domain.CmdStartForm},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Text)

	// Free text answers the current question.
	reply, _ = desk.HandleLine(ctx, "42", "Ann")

# Deletion

Deleting a ticket takes two turns: REQUEST_DELETE{id} followed immediately by
CONFIRM_DELETE. Any other event in between cancels the request.
*/
package ticketflow
