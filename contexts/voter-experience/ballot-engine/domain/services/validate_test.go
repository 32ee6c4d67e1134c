package services

import (
	"testing"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

func selectCandidate(state *entities.ContestSelectionState, candidateID int64, rank int) {
	for i := range state.Choices {
		if state.Choices[i].ID == candidateID {
			state.Choices[i].Selected = rank
		}
	}
}

func hasMessage(errors []entities.ValidationError, message string) bool {
	for _, finding := range errors {
		if finding.Message == message {
			return true
		}
	}
	return false
}

func TestEvaluateUnderMinimumOnlyWhenTouched(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)

	untouched := Evaluate(contest, state, false)
	if hasMessage(untouched.Errors, entities.MsgSelectedMin) {
		t.Fatalf("untouched contest must not warn under minimum")
	}

	touched := Evaluate(contest, state, true)
	if !hasMessage(touched.Errors, entities.MsgSelectedMin) {
		t.Fatalf("touched contest under minimum must warn")
	}
}

func TestEvaluateOverMaximumIsHard(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	selectCandidate(&state, 1, 0)
	selectCandidate(&state, 2, 0)
	selectCandidate(&state, 3, 0)

	verdict := Evaluate(contest, state, true)
	if !hasMessage(verdict.Errors, entities.MsgSelectedMax) {
		t.Fatalf("expected over-maximum finding, got %v", verdict.Errors)
	}
	if !state.HasAnySelection() {
		t.Fatalf("selection must remain intact")
	}
}

func TestEvaluateDisableSelectAtMaximum(t *testing.T) {
	contest := fixtureContest()
	contest.Presentation.OvervotePolicy = entities.OvervotePolicyDisable
	state := entities.NewContestSelectionState(contest)
	selectCandidate(&state, 1, 0)
	selectCandidate(&state, 2, 0)

	verdict := Evaluate(contest, state, true)
	if !verdict.DisableSelect {
		t.Fatalf("disable policy at maximum must block further selection")
	}
	if hasMessage(verdict.Errors, entities.MsgSelectedMax) {
		t.Fatalf("at-maximum is not over-maximum")
	}
}

func TestEvaluateExplicitInvalidShortCircuits(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	state.IsExplicitInvalid = true

	verdict := Evaluate(contest, state, true)
	if len(verdict.Errors) != 0 {
		t.Fatalf("explicit invalid under permissive policy must carry no findings, got %v", verdict.Errors)
	}
	if !verdict.IsChecked {
		t.Fatalf("explicit invalid counts as checked")
	}

	contest.Presentation.InvalidVotePolicy = entities.InvalidVotePolicyNotAllowed
	verdict = Evaluate(contest, state, true)
	if !hasMessage(verdict.Errors, entities.MsgExplicitNotAllowed) {
		t.Fatalf("forbidden explicit invalid must produce hard finding")
	}
	if !VotingNotAllowedNext(contest, verdict) {
		t.Fatalf("explicit hard finding refuses review outright")
	}
}

func TestCountSelectedIgnoresEmptyRequiredWriteIn(t *testing.T) {
	contest := fixtureContest()
	contest.Presentation.WriteInTextRequired = true
	state := entities.NewContestSelectionState(contest)
	selectCandidate(&state, 6, 0)

	if CountSelected(contest, state) != 0 {
		t.Fatalf("selected write-in without required text must not count")
	}

	for i := range state.Choices {
		if state.Choices[i].ID == 6 {
			state.Choices[i].WriteInText = "Jane Roe"
		}
	}
	if CountSelected(contest, state) != 1 {
		t.Fatalf("write-in with text must count")
	}
}

func TestVotingErrorDialogRespectsOverridePolicy(t *testing.T) {
	contest := fixtureContest()
	contest.Presentation.InvalidVotePolicy = entities.InvalidVotePolicyWarn
	state := entities.NewContestSelectionState(contest)

	verdict := Evaluate(contest, state, true)
	if !VotingErrorDialog(contest, verdict) {
		t.Fatalf("under-minimum with warn policy must offer override dialog")
	}
	if VotingNotAllowedNext(contest, verdict) {
		t.Fatalf("warn policy must not hard-refuse")
	}

	contest.Presentation.InvalidVotePolicy = entities.InvalidVotePolicyNotAllowed
	verdict = Evaluate(contest, state, true)
	if !VotingNotAllowedNext(contest, verdict) {
		t.Fatalf("not-allowed policy must hard-refuse implicit findings")
	}
	if VotingErrorDialog(contest, verdict) {
		t.Fatalf("hard refusal never shows a dialog")
	}
}

func TestCheckIsBlank(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	if !CheckIsBlank(state) {
		t.Fatalf("fresh state is blank")
	}
	state.IsExplicitInvalid = true
	if CheckIsBlank(state) {
		t.Fatalf("explicit invalid is a vote, not blank")
	}
	state.IsExplicitInvalid = false
	selectCandidate(&state, 1, 0)
	if CheckIsBlank(state) {
		t.Fatalf("selected state is not blank")
	}
}

func TestNormalizeWriteIn(t *testing.T) {
	if got := NormalizeWriteIn("  Jane   Q.  Roe  "); got != "Jane Q. Roe" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := NormalizeWriteIn(" \t\n "); got != "" {
		t.Fatalf("whitespace-only text must normalize to empty, got %q", got)
	}
}
