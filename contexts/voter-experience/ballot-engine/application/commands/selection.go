package commands

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/voter-experience/ballot-engine/application"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	"agora/contexts/voter-experience/ballot-engine/domain/services"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

// ResetSelectionCommand (re)builds selection state from a ballot style. With
// ContestID set and existing state present, only that contest is rebuilt.
type ResetSelectionCommand struct {
	Style     entities.BallotStyle
	Force     bool
	ContestID string
}

// SetChoiceCommand replaces one candidate's choice entry.
type SetChoiceCommand struct {
	ElectionID string
	ContestID  string
	Choice     entities.Choice
}

type SetExplicitInvalidCommand struct {
	ElectionID string
	ContestID  string
	Invalid    bool
}

type SetWriteInTextCommand struct {
	ElectionID  string
	ContestID   string
	CandidateID int64
	Text        string
}

type SetBlankCommand struct {
	ElectionID string
	ContestID  string
}

// SelectionResult carries the post-mutation state and its freshly computed
// verdict. Refused marks selections dropped by the disable over-vote policy.
type SelectionResult struct {
	State   entities.ContestSelectionState
	Verdict services.Verdict
	Refused bool
}

// SelectionUseCase owns every mutation of the per-session selection state.
// Mutations are synchronous and atomic: the validator re-runs inside the
// same transition that changes choices, so stored findings never lag the
// stored selection.
type SelectionUseCase struct {
	Selections ports.SelectionRepository
	Styles     ports.StyleCache
	Logger     *slog.Logger
}

// Reset builds fresh state for every contest of the style, or for a single
// contest when ContestID is set. Without force, existing election state is
// kept untouched.
func (uc SelectionUseCase) Reset(ctx context.Context, cmd ResetSelectionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.Style.ElectionID)
	if electionID == "" {
		return domainerrors.ErrInvalidSelectionInput
	}
	logger.Info("selection reset started",
		"event", "ballot_selection_reset_started",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", electionID,
		"ballot_style_id", cmd.Style.ID,
		"force", cmd.Force,
		"contest_id", strings.TrimSpace(cmd.ContestID),
	)
	if err := uc.Styles.SaveLoadedStyle(ctx, cmd.Style); err != nil {
		return err
	}

	existing, err := uc.Selections.ListSelections(ctx, electionID)
	if err != nil {
		return err
	}

	if contestID := strings.TrimSpace(cmd.ContestID); contestID != "" && len(existing) > 0 && !cmd.Force {
		contest, found := cmd.Style.Contest(contestID)
		if !found {
			return domainerrors.ErrContestNotFound
		}
		if err := uc.Selections.SaveSelection(ctx, electionID, entities.NewContestSelectionState(contest)); err != nil {
			return err
		}
		// A rebuilt contest is as fresh as one from a full reset: its
		// touched flag resets with its state.
		if err := uc.Selections.ClearTouched(ctx, electionID, contest.ID); err != nil {
			return err
		}
		logger.Info("selection contest rebuilt",
			"event", "ballot_selection_contest_reset",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", electionID,
			"contest_id", contestID,
		)
		return nil
	}

	if len(existing) > 0 && !cmd.Force {
		logger.Debug("selection reset skipped, state exists",
			"event", "ballot_selection_reset_skipped",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", electionID,
		)
		return nil
	}

	states := make([]entities.ContestSelectionState, 0, len(cmd.Style.Contests))
	for _, contest := range cmd.Style.Contests {
		states = append(states, entities.NewContestSelectionState(contest))
	}
	if err := uc.Selections.ReplaceSelections(ctx, electionID, states); err != nil {
		return err
	}
	logger.Info("selection reset completed",
		"event", "ballot_selection_reset_completed",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", electionID,
		"contest_count", len(states),
	)
	return nil
}

// SetChoice applies one candidate choice. A contest or candidate that is not
// part of the loaded style makes the call a no-op rather than an error: the
// selection went stale after a ballot-style change. Sentinel candidates are
// routed to their flag transitions so exclusivity stays atomic.
func (uc SelectionUseCase) SetChoice(ctx context.Context, cmd SetChoiceCommand) (SelectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	style, contest, state, touched, err := uc.load(ctx, cmd.ElectionID, cmd.ContestID)
	if err != nil {
		return SelectionResult{}, err
	}
	if contest == nil {
		logger.Warn("choice targets stale contest, ignoring",
			"event", "ballot_selection_stale_contest",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", strings.TrimSpace(cmd.ElectionID),
			"contest_id", strings.TrimSpace(cmd.ContestID),
		)
		return SelectionResult{State: state}, nil
	}
	candidate, found := contest.Candidate(cmd.Choice.ID)
	if !found || candidate.Presentation.IsDisabled {
		logger.Warn("choice targets stale candidate, ignoring",
			"event", "ballot_selection_stale_candidate",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", strings.TrimSpace(cmd.ElectionID),
			"contest_id", contest.ID,
			"candidate_id", cmd.Choice.ID,
		)
		return SelectionResult{State: state, Verdict: services.Evaluate(*contest, state, touched)}, nil
	}

	switch candidate.Role() {
	case entities.RoleExplicitInvalid:
		return uc.SetExplicitInvalid(ctx, SetExplicitInvalidCommand{
			ElectionID: cmd.ElectionID,
			ContestID:  cmd.ContestID,
			Invalid:    cmd.Choice.IsSelected(),
		})
	case entities.RoleExplicitBlank:
		if cmd.Choice.IsSelected() {
			return uc.SetBlank(ctx, SetBlankCommand{ElectionID: cmd.ElectionID, ContestID: cmd.ContestID})
		}
		return SelectionResult{State: state, Verdict: services.Evaluate(*contest, state, touched)}, nil
	}

	if candidate.Presentation.IsWriteIn && !contest.Presentation.AllowWriteIns {
		return SelectionResult{}, domainerrors.ErrWriteInNotAllowed
	}

	next := state.Clone()
	selecting := cmd.Choice.IsSelected()
	alreadySelected := false
	if current, ok := next.Choice(cmd.Choice.ID); ok {
		alreadySelected = current.IsSelected()
	}

	// Radio exclusivity and explicit-invalid clearing happen inside this one
	// transition; no intermediate state is ever stored. The reset runs before
	// the over-vote gate so the gate sees the post-reset count: switching a
	// radio vote is always a legal move, never an over-vote.
	if selecting && contest.IsRadioSelection() {
		for i := range next.Choices {
			next.Choices[i].Selected = -1
		}
	}
	if selecting && !alreadySelected {
		verdict := services.Evaluate(*contest, next, touched)
		if verdict.DisableSelect {
			logger.Info("choice refused by over-vote policy",
				"event", "ballot_selection_overvote_refused",
				"module", "voter-experience/ballot-engine",
				"layer", "application",
				"election_id", strings.TrimSpace(cmd.ElectionID),
				"contest_id", contest.ID,
				"candidate_id", cmd.Choice.ID,
				"selected_count", verdict.SelectedCount,
			)
			return SelectionResult{State: state, Verdict: verdict, Refused: true}, nil
		}
	}
	if selecting {
		next.IsExplicitInvalid = false
	}
	applied := false
	for i := range next.Choices {
		if next.Choices[i].ID != cmd.Choice.ID {
			continue
		}
		next.Choices[i].Selected = cmd.Choice.Selected
		if candidate.Presentation.IsWriteIn {
			next.Choices[i].WriteInText = services.NormalizeWriteIn(cmd.Choice.WriteInText)
		}
		applied = true
	}
	if !applied {
		return SelectionResult{State: state, Verdict: services.Evaluate(*contest, state, touched)}, nil
	}

	if selecting {
		if err := uc.Selections.MarkTouched(ctx, style.ElectionID, contest.ID); err != nil {
			return SelectionResult{}, err
		}
		touched = true
	}
	return uc.store(ctx, logger, *contest, style.ElectionID, next, touched, "ballot_selection_choice_set")
}

// SetExplicitInvalid flips the explicit-invalid flag. Raising it forces
// every choice back to unselected inside the same transition.
func (uc SelectionUseCase) SetExplicitInvalid(ctx context.Context, cmd SetExplicitInvalidCommand) (SelectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	style, contest, state, touched, err := uc.load(ctx, cmd.ElectionID, cmd.ContestID)
	if err != nil {
		return SelectionResult{}, err
	}
	if contest == nil {
		return SelectionResult{State: state}, nil
	}
	if cmd.Invalid && contest.Presentation.InvalidVotePolicy == entities.InvalidVotePolicyNotAllowed {
		return SelectionResult{}, domainerrors.ErrExplicitInvalidDenied
	}

	next := state.Clone()
	next.IsExplicitInvalid = cmd.Invalid
	if cmd.Invalid {
		for i := range next.Choices {
			next.Choices[i].Selected = -1
		}
		if err := uc.Selections.MarkTouched(ctx, style.ElectionID, contest.ID); err != nil {
			return SelectionResult{}, err
		}
		touched = true
	}
	return uc.store(ctx, logger, *contest, style.ElectionID, next, touched, "ballot_selection_explicit_invalid_set")
}

// SetWriteInText updates a write-in slot's text without changing its
// selection rank. Text is normalized before storage.
func (uc SelectionUseCase) SetWriteInText(ctx context.Context, cmd SetWriteInTextCommand) (SelectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	style, contest, state, touched, err := uc.load(ctx, cmd.ElectionID, cmd.ContestID)
	if err != nil {
		return SelectionResult{}, err
	}
	if contest == nil {
		return SelectionResult{State: state}, nil
	}
	candidate, found := contest.Candidate(cmd.CandidateID)
	if !found || !candidate.Presentation.IsWriteIn {
		return SelectionResult{State: state, Verdict: services.Evaluate(*contest, state, touched)}, nil
	}
	if !contest.Presentation.AllowWriteIns {
		return SelectionResult{}, domainerrors.ErrWriteInNotAllowed
	}

	next := state.Clone()
	for i := range next.Choices {
		if next.Choices[i].ID == cmd.CandidateID {
			next.Choices[i].WriteInText = services.NormalizeWriteIn(cmd.Text)
		}
	}
	return uc.store(ctx, logger, *contest, style.ElectionID, next, touched, "ballot_selection_writein_set")
}

// SetBlank clears every selection and the explicit-invalid flag, leaving the
// contest deliberately blank.
func (uc SelectionUseCase) SetBlank(ctx context.Context, cmd SetBlankCommand) (SelectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	style, contest, state, touched, err := uc.load(ctx, cmd.ElectionID, cmd.ContestID)
	if err != nil {
		return SelectionResult{}, err
	}
	if contest == nil {
		return SelectionResult{State: state}, nil
	}
	next := state.Clone()
	next.IsExplicitInvalid = false
	for i := range next.Choices {
		next.Choices[i].Selected = -1
		next.Choices[i].WriteInText = ""
	}
	return uc.store(ctx, logger, *contest, style.ElectionID, next, touched, "ballot_selection_blank_set")
}

// Get returns one contest's current state without mutating anything.
func (uc SelectionUseCase) Get(ctx context.Context, electionID string, contestID string) (entities.ContestSelectionState, error) {
	state, found, err := uc.Selections.GetSelection(ctx, strings.TrimSpace(electionID), strings.TrimSpace(contestID))
	if err != nil {
		return entities.ContestSelectionState{}, err
	}
	if !found {
		return entities.ContestSelectionState{}, domainerrors.ErrContestNotFound
	}
	return state, nil
}

// GetAll returns every contest state for the election.
func (uc SelectionUseCase) GetAll(ctx context.Context, electionID string) ([]entities.ContestSelectionState, error) {
	return uc.Selections.ListSelections(ctx, strings.TrimSpace(electionID))
}

func (uc SelectionUseCase) load(
	ctx context.Context,
	electionID string,
	contestID string,
) (entities.BallotStyle, *entities.Contest, entities.ContestSelectionState, bool, error) {
	election := strings.TrimSpace(electionID)
	if election == "" || strings.TrimSpace(contestID) == "" {
		return entities.BallotStyle{}, nil, entities.ContestSelectionState{}, false, domainerrors.ErrInvalidSelectionInput
	}
	style, found, err := uc.Styles.GetLoadedStyle(ctx, election)
	if err != nil {
		return entities.BallotStyle{}, nil, entities.ContestSelectionState{}, false, err
	}
	if !found {
		return entities.BallotStyle{}, nil, entities.ContestSelectionState{}, false, domainerrors.ErrSessionNotFound
	}

	contest, ok := style.Contest(strings.TrimSpace(contestID))
	if !ok {
		return style, nil, entities.ContestSelectionState{}, false, nil
	}
	state, exists, err := uc.Selections.GetSelection(ctx, election, contest.ID)
	if err != nil {
		return entities.BallotStyle{}, nil, entities.ContestSelectionState{}, false, err
	}
	if !exists {
		state = entities.NewContestSelectionState(contest)
	}
	touched, err := uc.Selections.IsTouched(ctx, election, contest.ID)
	if err != nil {
		return entities.BallotStyle{}, nil, entities.ContestSelectionState{}, false, err
	}
	return style, &contest, state, touched, nil
}

func (uc SelectionUseCase) store(
	ctx context.Context,
	logger *slog.Logger,
	contest entities.Contest,
	electionID string,
	next entities.ContestSelectionState,
	touched bool,
	event string,
) (SelectionResult, error) {
	verdict := services.Evaluate(contest, next, touched)
	next.InvalidErrors = verdict.Errors
	if err := uc.Selections.SaveSelection(ctx, electionID, next); err != nil {
		return SelectionResult{}, err
	}
	logger.Info("selection updated",
		"event", event,
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", electionID,
		"contest_id", contest.ID,
		"selected_count", verdict.SelectedCount,
		"explicit_invalid", next.IsExplicitInvalid,
		"error_count", len(verdict.Errors),
	)
	return SelectionResult{State: next, Verdict: verdict}, nil
}
