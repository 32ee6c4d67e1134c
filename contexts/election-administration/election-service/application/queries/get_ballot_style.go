package queries

import (
	"context"
	"log/slog"
	"strings"

	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

// GetBallotStyleUseCase serves the published ballot style for one voting
// area. This lookup is the voter-facing engine's style source.
type GetBallotStyleUseCase struct {
	Styles ports.BallotStyleRepository
	Logger *slog.Logger
}

func (uc GetBallotStyleUseCase) Execute(
	ctx context.Context,
	tenantID string,
	electionID string,
	areaID string,
) (entities.BallotStyleRecord, error) {
	tenant := strings.TrimSpace(tenantID)
	election := strings.TrimSpace(electionID)
	area := strings.TrimSpace(areaID)
	if tenant == "" || election == "" || area == "" {
		return entities.BallotStyleRecord{}, domainerrors.ErrBallotStyleNotFound
	}
	return uc.Styles.GetBallotStyle(ctx, tenant, election, area)
}

type ListBallotStylesUseCase struct {
	Styles ports.BallotStyleRepository
	Logger *slog.Logger
}

func (uc ListBallotStylesUseCase) Execute(ctx context.Context, electionID string) ([]entities.BallotStyleRecord, error) {
	election := strings.TrimSpace(electionID)
	if election == "" {
		return nil, domainerrors.ErrElectionNotFound
	}
	return uc.Styles.ListBallotStylesByElection(ctx, election)
}
