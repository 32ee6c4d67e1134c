package queries

import (
	"context"
	"log/slog"
	"strings"

	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

type GetEventUseCase struct {
	Events ports.EventRepository
	Logger *slog.Logger
}

func (uc GetEventUseCase) Execute(ctx context.Context, eventID string) (entities.ElectionEvent, error) {
	id := strings.TrimSpace(eventID)
	if id == "" {
		return entities.ElectionEvent{}, domainerrors.ErrEventNotFound
	}
	return uc.Events.GetEvent(ctx, id)
}

type ListEventsQuery struct {
	TenantID     string
	VotingStatus string
}

type ListEventsUseCase struct {
	Events ports.EventRepository
	Logger *slog.Logger
}

func (uc ListEventsUseCase) Execute(ctx context.Context, query ListEventsQuery) ([]entities.ElectionEvent, error) {
	return uc.Events.ListEvents(ctx, ports.EventFilter{
		TenantID:     strings.TrimSpace(query.TenantID),
		VotingStatus: entities.VotingStatus(strings.TrimSpace(query.VotingStatus)),
	})
}
