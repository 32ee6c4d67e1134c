package queries

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/voter-experience/ballot-engine/application"
	"agora/contexts/voter-experience/ballot-engine/application/commands"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	"agora/contexts/voter-experience/ballot-engine/domain/services"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

// ReviewUseCase serves the read side of the voter journey: render-ready
// orderings, review-screen interpretation of selections, write-in capacity,
// and the current ballot export.
type ReviewUseCase struct {
	Selections ports.SelectionRepository
	Sessions   ports.SessionRepository
	Styles     ports.StyleCache
	Codec      commands.BallotCodecUseCase
	Orderer    *services.Orderer
	Logger     *slog.Logger
}

// OrderedContests returns the style's contests in memoized display order.
func (uc ReviewUseCase) OrderedContests(ctx context.Context, electionID string) ([]entities.Contest, error) {
	style, err := uc.style(ctx, electionID)
	if err != nil {
		return nil, err
	}
	return uc.Orderer.OrderContests(style), nil
}

// ContestLayout returns the memoized render layout for one contest.
func (uc ReviewUseCase) ContestLayout(ctx context.Context, electionID string, contestID string) (services.ContestLayout, error) {
	contest, err := uc.contest(ctx, electionID, contestID)
	if err != nil {
		return services.ContestLayout{}, err
	}
	return uc.Orderer.ContestLayout(contest), nil
}

// InterpretContestSelection re-derives validation findings for one contest
// selection as the review screen shows it. Review treats every contest as
// touched: an under-minimum contest is flagged even if never visited.
func (uc ReviewUseCase) InterpretContestSelection(
	contest entities.Contest,
	state entities.ContestSelectionState,
) entities.ContestSelectionState {
	canonical := services.CanonicalState(state)
	verdict := services.Evaluate(contest, canonical, true)
	canonical.InvalidErrors = verdict.Errors
	return canonical
}

// InterpretBallot decodes the session's reviewed ballot and re-derives
// findings per contest. An undecodable ballot yields nil: nothing to show.
func (uc ReviewUseCase) InterpretBallot(ctx context.Context, electionID string) ([]entities.ContestSelectionState, error) {
	logger := application.ResolveLogger(uc.Logger)
	style, err := uc.style(ctx, electionID)
	if err != nil {
		return nil, err
	}
	session, found, err := uc.Sessions.GetSession(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return nil, err
	}
	if !found || session.Ballot == nil {
		return nil, nil
	}
	decoded := uc.Codec.Decode(ctx, *session.Ballot, style)
	if decoded == nil {
		return nil, nil
	}
	interpreted := make([]entities.ContestSelectionState, 0, len(decoded))
	for _, state := range decoded {
		contest, ok := style.Contest(state.ContestID)
		if !ok {
			continue
		}
		interpreted = append(interpreted, uc.InterpretContestSelection(contest, state))
	}
	logger.Debug("ballot interpreted for review",
		"event", "ballot_review_interpreted",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", strings.TrimSpace(electionID),
		"contest_count", len(interpreted),
	)
	return interpreted, nil
}

// WriteInAvailableCharacters estimates remaining write-in capacity for a
// contest given what is already typed.
func (uc ReviewUseCase) WriteInAvailableCharacters(ctx context.Context, electionID string, contestID string) (int, error) {
	contest, err := uc.contest(ctx, electionID, contestID)
	if err != nil {
		return 0, err
	}
	state, found, err := uc.Selections.GetSelection(ctx, strings.TrimSpace(electionID), contest.ID)
	if err != nil {
		return 0, err
	}
	if !found {
		state = entities.NewContestSelectionState(contest)
	}
	return services.AvailableWriteInBytes(contest, state), nil
}

// IsBlank reports whether the contest carries no vote at all.
func (uc ReviewUseCase) IsBlank(ctx context.Context, electionID string, contestID string) (bool, error) {
	contest, err := uc.contest(ctx, electionID, contestID)
	if err != nil {
		return false, err
	}
	state, found, err := uc.Selections.GetSelection(ctx, strings.TrimSpace(electionID), contest.ID)
	if err != nil {
		return false, err
	}
	if !found {
		state = entities.NewContestSelectionState(contest)
	}
	return services.CheckIsBlank(state), nil
}

// CurrentBallot returns the session's reviewed ballot and its id.
func (uc ReviewUseCase) CurrentBallot(ctx context.Context, electionID string) (entities.AuditableBallot, string, error) {
	session, found, err := uc.Sessions.GetSession(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.AuditableBallot{}, "", err
	}
	if !found || session.Ballot == nil {
		return entities.AuditableBallot{}, "", domainerrors.ErrSessionNotFound
	}
	return *session.Ballot, session.BallotID, nil
}

func (uc ReviewUseCase) style(ctx context.Context, electionID string) (entities.BallotStyle, error) {
	style, found, err := uc.Styles.GetLoadedStyle(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.BallotStyle{}, err
	}
	if !found {
		return entities.BallotStyle{}, domainerrors.ErrSessionNotFound
	}
	return style, nil
}

func (uc ReviewUseCase) contest(ctx context.Context, electionID string, contestID string) (entities.Contest, error) {
	style, err := uc.style(ctx, electionID)
	if err != nil {
		return entities.Contest{}, err
	}
	contest, ok := style.Contest(strings.TrimSpace(contestID))
	if !ok {
		return entities.Contest{}, domainerrors.ErrContestNotFound
	}
	return contest, nil
}
