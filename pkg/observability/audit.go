package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// AuditHooks logs every turn and ticket change.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			attrs := []any{
				"user_id", e.UserID,
				"action", e.Action,
				"from", e.From,
				"to", e.To,
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.InfoContext(ctx, "dispatch", attrs...)
		},
		OnTicketCreated: func(ctx context.Context, e *domain.TicketEvent) {
			logger.InfoContext(ctx, "ticket_created", "user_id", e.UserID, "ticket_id", e.TicketID)
		},
		OnTicketDeleted: func(ctx context.Context, e *domain.TicketEvent) {
			logger.InfoContext(ctx, "ticket_deleted", "user_id", e.UserID, "ticket_id", e.TicketID)
		},
	}
}
