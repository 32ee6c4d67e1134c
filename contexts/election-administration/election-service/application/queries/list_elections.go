package queries

import (
	"context"
	"log/slog"
	"strings"

	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

type ListElectionsUseCase struct {
	Elections ports.ElectionRepository
	Logger    *slog.Logger
}

func (uc ListElectionsUseCase) Execute(ctx context.Context, eventID string) ([]entities.Election, error) {
	id := strings.TrimSpace(eventID)
	if id == "" {
		return nil, domainerrors.ErrEventNotFound
	}
	return uc.Elections.ListElectionsByEvent(ctx, id)
}
