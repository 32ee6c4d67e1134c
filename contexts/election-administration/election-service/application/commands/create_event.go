package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/election-administration/election-service/application"
	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

type CreateEventCommand struct {
	TenantID    string
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Elections   []CreateElectionInput
}

type CreateElectionInput struct {
	Name        string
	Description string
	SortOrder   int
}

type CreateEventUseCase struct {
	Events    ports.EventRepository
	Elections ports.ElectionRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

type CreateEventResult struct {
	Event     entities.ElectionEvent
	Elections []entities.Election
}

// Execute creates the event config and its elections in one command. The
// event starts with voting NOT_STARTED; opening is a separate transition.
func (uc CreateEventUseCase) Execute(ctx context.Context, cmd CreateEventCommand) (CreateEventResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateEventResult{}, err
	}
	event := entities.ElectionEvent{
		EventID:      eventID,
		TenantID:     strings.TrimSpace(cmd.TenantID),
		Name:         strings.TrimSpace(cmd.Name),
		Description:  strings.TrimSpace(cmd.Description),
		Status:       entities.EventStatusConfigCreated,
		VotingStatus: entities.VotingStatusNotStarted,
		StartDate:    cmd.StartDate,
		EndDate:      cmd.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !event.ValidateBasics() {
		return CreateEventResult{}, domainerrors.ErrInvalidEventInput
	}
	if err := uc.Events.CreateEvent(ctx, event); err != nil {
		return CreateEventResult{}, err
	}

	elections := make([]entities.Election, 0, len(cmd.Elections))
	for _, input := range cmd.Elections {
		electionID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return CreateEventResult{}, err
		}
		election := entities.Election{
			ElectionID:  electionID,
			EventID:     event.EventID,
			TenantID:    event.TenantID,
			Name:        strings.TrimSpace(input.Name),
			Description: strings.TrimSpace(input.Description),
			SortOrder:   input.SortOrder,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !election.ValidateBasics() {
			return CreateEventResult{}, domainerrors.ErrInvalidElectionInput
		}
		if err := uc.Elections.CreateElection(ctx, election); err != nil {
			return CreateEventResult{}, err
		}
		elections = append(elections, election)
	}

	logger.Info("election event created",
		"event", "election_event_created",
		"module", "election-administration/election-service",
		"layer", "application",
		"event_id", event.EventID,
		"tenant_id", event.TenantID,
		"election_count", len(elections),
	)
	return CreateEventResult{Event: event, Elections: elections}, nil
}

type UpdateEventCommand struct {
	EventID     string
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type UpdateEventUseCase struct {
	Events ports.EventRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// Execute applies a partial config update. Events with voting CLOSED are
// frozen.
func (uc UpdateEventUseCase) Execute(ctx context.Context, cmd UpdateEventCommand) (entities.ElectionEvent, error) {
	logger := application.ResolveLogger(uc.Logger)
	event, err := uc.Events.GetEvent(ctx, strings.TrimSpace(cmd.EventID))
	if err != nil {
		return entities.ElectionEvent{}, err
	}
	if event.VotingStatus == entities.VotingStatusClosed {
		return entities.ElectionEvent{}, domainerrors.ErrEventNotEditable
	}

	if cmd.Name != nil {
		event.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Description != nil {
		event.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.StartDate != nil {
		event.StartDate = cmd.StartDate
	}
	if cmd.EndDate != nil {
		event.EndDate = cmd.EndDate
	}
	if !event.ValidateBasics() {
		return entities.ElectionEvent{}, domainerrors.ErrInvalidEventInput
	}

	event.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Events.UpdateEvent(ctx, event); err != nil {
		return entities.ElectionEvent{}, err
	}
	logger.Info("election event updated",
		"event", "election_event_updated",
		"module", "election-administration/election-service",
		"layer", "application",
		"event_id", event.EventID,
	)
	return event, nil
}
