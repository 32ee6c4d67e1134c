package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/election-administration/election-service/application/commands"
	"agora/contexts/election-administration/election-service/application/queries"
	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	httptransport "agora/contexts/election-administration/election-service/transport/http"
)

type Handler struct {
	CreateEvent        commands.CreateEventUseCase
	UpdateEvent        commands.UpdateEventUseCase
	ChangeVotingStatus commands.ChangeVotingStatusUseCase
	PublishBallotStyle commands.PublishBallotStyleUseCase
	GetEvent           queries.GetEventUseCase
	ListEvents         queries.ListEventsUseCase
	ListElections      queries.ListElectionsUseCase
	GetBallotStyle     queries.GetBallotStyleUseCase
	ListBallotStyles   queries.ListBallotStylesUseCase
	Logger             *slog.Logger
}

func (h Handler) CreateEventHandler(ctx context.Context, req httptransport.CreateEventRequest) (httptransport.CreateEventResponse, error) {
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return httptransport.CreateEventResponse{}, domainerrors.ErrInvalidEventInput
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return httptransport.CreateEventResponse{}, domainerrors.ErrInvalidEventInput
	}
	elections := make([]commands.CreateElectionInput, 0, len(req.Elections))
	for _, item := range req.Elections {
		elections = append(elections, commands.CreateElectionInput{
			Name:        item.Name,
			Description: item.Description,
			SortOrder:   item.SortOrder,
		})
	}
	result, err := h.CreateEvent.Execute(ctx, commands.CreateEventCommand{
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Elections:   elections,
	})
	if err != nil {
		return httptransport.CreateEventResponse{}, err
	}
	electionDTOs := make([]httptransport.ElectionDTO, 0, len(result.Elections))
	for _, item := range result.Elections {
		electionDTOs = append(electionDTOs, mapElection(item))
	}
	return httptransport.CreateEventResponse{
		Event:     mapEvent(result.Event),
		Elections: electionDTOs,
	}, nil
}

func (h Handler) UpdateEventHandler(ctx context.Context, eventID string, req httptransport.UpdateEventRequest) (httptransport.GetEventResponse, error) {
	startDate, err := parseOptionalDatePtr(req.StartDate)
	if err != nil {
		return httptransport.GetEventResponse{}, domainerrors.ErrInvalidEventInput
	}
	endDate, err := parseOptionalDatePtr(req.EndDate)
	if err != nil {
		return httptransport.GetEventResponse{}, domainerrors.ErrInvalidEventInput
	}
	event, err := h.UpdateEvent.Execute(ctx, commands.UpdateEventCommand{
		EventID:     eventID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		return httptransport.GetEventResponse{}, err
	}
	return httptransport.GetEventResponse{Event: mapEvent(event)}, nil
}

func (h Handler) OpenVotingHandler(ctx context.Context, eventID string) (httptransport.GetEventResponse, error) {
	return h.changeStatus(ctx, eventID, commands.VotingActionOpen)
}

func (h Handler) PauseVotingHandler(ctx context.Context, eventID string) (httptransport.GetEventResponse, error) {
	return h.changeStatus(ctx, eventID, commands.VotingActionPause)
}

func (h Handler) CloseVotingHandler(ctx context.Context, eventID string) (httptransport.GetEventResponse, error) {
	return h.changeStatus(ctx, eventID, commands.VotingActionClose)
}

func (h Handler) changeStatus(ctx context.Context, eventID string, action commands.VotingStatusAction) (httptransport.GetEventResponse, error) {
	event, err := h.ChangeVotingStatus.Execute(ctx, commands.ChangeVotingStatusCommand{
		EventID: eventID,
		Action:  action,
	})
	if err != nil {
		return httptransport.GetEventResponse{}, err
	}
	return httptransport.GetEventResponse{Event: mapEvent(event)}, nil
}

func (h Handler) GetEventHandler(ctx context.Context, eventID string) (httptransport.GetEventResponse, error) {
	event, err := h.GetEvent.Execute(ctx, eventID)
	if err != nil {
		return httptransport.GetEventResponse{}, err
	}
	return httptransport.GetEventResponse{Event: mapEvent(event)}, nil
}

func (h Handler) ListEventsHandler(ctx context.Context, tenantID string, votingStatus string) (httptransport.ListEventsResponse, error) {
	items, err := h.ListEvents.Execute(ctx, queries.ListEventsQuery{
		TenantID:     tenantID,
		VotingStatus: votingStatus,
	})
	if err != nil {
		return httptransport.ListEventsResponse{}, err
	}
	result := make([]httptransport.EventDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapEvent(item))
	}
	return httptransport.ListEventsResponse{Items: result}, nil
}

func (h Handler) ListElectionsHandler(ctx context.Context, eventID string) (httptransport.ListElectionsResponse, error) {
	items, err := h.ListElections.Execute(ctx, eventID)
	if err != nil {
		return httptransport.ListElectionsResponse{}, err
	}
	result := make([]httptransport.ElectionDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapElection(item))
	}
	return httptransport.ListElectionsResponse{Items: result}, nil
}

func (h Handler) PublishBallotStyleHandler(
	ctx context.Context,
	electionID string,
	req httptransport.PublishBallotStyleRequest,
) (httptransport.PublishBallotStyleResponse, error) {
	record, err := h.PublishBallotStyle.Execute(ctx, commands.PublishBallotStyleCommand{
		TenantID:   req.TenantID,
		ElectionID: electionID,
		AreaID:     req.AreaID,
		Payload:    req.Payload,
	})
	if err != nil {
		return httptransport.PublishBallotStyleResponse{}, err
	}
	return httptransport.PublishBallotStyleResponse{Style: mapBallotStyle(record, false)}, nil
}

func (h Handler) GetBallotStyleHandler(
	ctx context.Context,
	tenantID string,
	electionID string,
	areaID string,
) (httptransport.GetBallotStyleResponse, error) {
	record, err := h.GetBallotStyle.Execute(ctx, tenantID, electionID, areaID)
	if err != nil {
		return httptransport.GetBallotStyleResponse{}, err
	}
	return httptransport.GetBallotStyleResponse{Style: mapBallotStyle(record, true)}, nil
}

func (h Handler) ListBallotStylesHandler(ctx context.Context, electionID string) (httptransport.ListBallotStylesResponse, error) {
	items, err := h.ListBallotStyles.Execute(ctx, electionID)
	if err != nil {
		return httptransport.ListBallotStylesResponse{}, err
	}
	result := make([]httptransport.BallotStyleDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapBallotStyle(item, false))
	}
	return httptransport.ListBallotStylesResponse{Items: result}, nil
}

func mapEvent(item entities.ElectionEvent) httptransport.EventDTO {
	result := httptransport.EventDTO{
		EventID:      item.EventID,
		TenantID:     item.TenantID,
		Name:         item.Name,
		Description:  item.Description,
		Status:       string(item.Status),
		VotingStatus: string(item.VotingStatus),
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
	}
	if item.StartDate != nil {
		result.StartDate = item.StartDate.UTC().Format(time.RFC3339)
	}
	if item.EndDate != nil {
		result.EndDate = item.EndDate.UTC().Format(time.RFC3339)
	}
	return result
}

func mapElection(item entities.Election) httptransport.ElectionDTO {
	return httptransport.ElectionDTO{
		ElectionID:  item.ElectionID,
		EventID:     item.EventID,
		TenantID:    item.TenantID,
		Name:        item.Name,
		Description: item.Description,
		SortOrder:   item.SortOrder,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func mapBallotStyle(item entities.BallotStyleRecord, includePayload bool) httptransport.BallotStyleDTO {
	result := httptransport.BallotStyleDTO{
		StyleID:     item.StyleID,
		TenantID:    item.TenantID,
		EventID:     item.EventID,
		ElectionID:  item.ElectionID,
		AreaID:      item.AreaID,
		Version:     item.Version,
		PublishedAt: item.PublishedAt.Format(time.RFC3339),
	}
	if includePayload {
		result.Payload = item.Payload
	}
	return result
}

func parseOptionalDate(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	utc := parsed.UTC()
	return &utc, nil
}

func parseOptionalDatePtr(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return parseOptionalDate(*raw)
}
