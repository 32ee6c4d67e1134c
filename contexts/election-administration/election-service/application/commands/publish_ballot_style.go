package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	application "agora/contexts/election-administration/election-service/application"
	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

type PublishBallotStyleCommand struct {
	TenantID   string
	ElectionID string
	AreaID     string
	Payload    json.RawMessage
}

type PublishBallotStyleUseCase struct {
	Elections ports.ElectionRepository
	Styles    ports.BallotStyleRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute publishes the ballot definition for one voting area. The payload
// must pass structural validation before it is accepted; a style published
// twice for the same area replaces the previous version.
func (uc PublishBallotStyleUseCase) Execute(ctx context.Context, cmd PublishBallotStyleCommand) (entities.BallotStyleRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	tenantID := strings.TrimSpace(cmd.TenantID)
	electionID := strings.TrimSpace(cmd.ElectionID)
	areaID := strings.TrimSpace(cmd.AreaID)
	if tenantID == "" || electionID == "" || areaID == "" {
		return entities.BallotStyleRecord{}, domainerrors.ErrInvalidBallotPayload
	}
	if !entities.ValidatePayload(cmd.Payload) {
		return entities.BallotStyleRecord{}, domainerrors.ErrInvalidBallotPayload
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.BallotStyleRecord{}, err
	}

	now := uc.Clock.Now().UTC()
	version := 1
	existing, err := uc.Styles.GetBallotStyle(ctx, tenantID, electionID, areaID)
	switch {
	case err == nil:
		version = existing.Version + 1
	case !errors.Is(err, domainerrors.ErrBallotStyleNotFound):
		return entities.BallotStyleRecord{}, err
	}

	styleID := existing.StyleID
	if styleID == "" {
		styleID, err = uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.BallotStyleRecord{}, err
		}
	}
	record := entities.BallotStyleRecord{
		StyleID:     styleID,
		TenantID:    tenantID,
		EventID:     election.EventID,
		ElectionID:  electionID,
		AreaID:      areaID,
		Payload:     append(json.RawMessage(nil), cmd.Payload...),
		Version:     version,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	if err := uc.Styles.UpsertBallotStyle(ctx, record); err != nil {
		return entities.BallotStyleRecord{}, err
	}

	logger.Info("ballot style published",
		"event", "ballot_style_published",
		"module", "election-administration/election-service",
		"layer", "application",
		"style_id", record.StyleID,
		"election_id", electionID,
		"area_id", areaID,
		"version", version,
	)
	return record, nil
}
