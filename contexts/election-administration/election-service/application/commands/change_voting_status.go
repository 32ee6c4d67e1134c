package commands

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/election-administration/election-service/application"
	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

type VotingStatusAction string

const (
	VotingActionOpen  VotingStatusAction = "open"
	VotingActionPause VotingStatusAction = "pause"
	VotingActionClose VotingStatusAction = "close"
)

type ChangeVotingStatusCommand struct {
	EventID string
	Action  VotingStatusAction
}

type ChangeVotingStatusUseCase struct {
	Events    ports.EventRepository
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute moves the event's voting status and emits one status-changed event
// per election under the event, so per-election consumers can project the new
// status without knowing event membership.
func (uc ChangeVotingStatusUseCase) Execute(ctx context.Context, cmd ChangeVotingStatusCommand) (entities.ElectionEvent, error) {
	logger := application.ResolveLogger(uc.Logger)
	event, err := uc.Events.GetEvent(ctx, strings.TrimSpace(cmd.EventID))
	if err != nil {
		return entities.ElectionEvent{}, err
	}

	var to entities.VotingStatus
	switch cmd.Action {
	case VotingActionOpen:
		to = entities.VotingStatusOpen
	case VotingActionPause:
		to = entities.VotingStatusPaused
	case VotingActionClose:
		to = entities.VotingStatusClosed
	default:
		return entities.ElectionEvent{}, domainerrors.ErrVotingStatusNotSupported
	}
	if !event.CanTransitionVoting(to) {
		return entities.ElectionEvent{}, domainerrors.ErrInvalidStatusTransition
	}

	now := uc.Clock.Now().UTC()
	from := event.VotingStatus
	event.VotingStatus = to
	event.UpdatedAt = now
	if err := uc.Events.UpdateEvent(ctx, event); err != nil {
		return entities.ElectionEvent{}, err
	}

	elections, err := uc.Elections.ListElectionsByEvent(ctx, event.EventID)
	if err != nil {
		return entities.ElectionEvent{}, err
	}
	for _, election := range elections {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.ElectionEvent{}, err
		}
		envelope, err := newElectionEnvelope(
			eventID,
			"election_event.status_changed",
			election.ElectionID,
			now,
			map[string]any{
				"event_id":      event.EventID,
				"election_id":   election.ElectionID,
				"voting_status": string(to),
			},
		)
		if err != nil {
			return entities.ElectionEvent{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return entities.ElectionEvent{}, err
		}
	}

	logger.Info("voting status changed",
		"event", "election_voting_status_changed",
		"module", "election-administration/election-service",
		"layer", "application",
		"event_id", event.EventID,
		"from_status", string(from),
		"to_status", string(to),
		"election_count", len(elections),
	)
	return event, nil
}
