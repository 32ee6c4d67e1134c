package commands

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/voter-experience/ballot-engine/adapters/memory"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
)

func testStyle() entities.BallotStyle {
	return entities.BallotStyle{
		ID:               "style-1",
		TenantID:         "tenant-1",
		ElectionID:       "election-1",
		AreaID:           "area-1",
		Title:            "General Election",
		EncryptionPolicy: entities.EncryptionPolicyPlaintext,
		Contests: []entities.Contest{
			{
				ID:       "mayor",
				Name:     "Mayor",
				MinVotes: 1,
				MaxVotes: 1,
				Candidates: []entities.Candidate{
					{ID: 11, Name: "Alice"},
					{ID: 12, Name: "Bob"},
					{ID: 13, Name: "Invalid", Presentation: entities.CandidatePresentation{IsExplicitInvalid: true}},
				},
				Presentation: entities.ContestPresentation{
					SelectionPolicy:   entities.SelectionPolicyRadio,
					InvalidVotePolicy: entities.InvalidVotePolicyAllowed,
				},
			},
			{
				ID:       "council",
				Name:     "City Council",
				MinVotes: 1,
				MaxVotes: 2,
				Candidates: []entities.Candidate{
					{ID: 21, Name: "Carol"},
					{ID: 22, Name: "Dave"},
					{ID: 23, Name: "Erin"},
					{ID: 24, Name: "Write-in", Presentation: entities.CandidatePresentation{IsWriteIn: true}},
				},
				Presentation: entities.ContestPresentation{
					SelectionPolicy:   entities.SelectionPolicyCumulative,
					OvervotePolicy:    entities.OvervotePolicyDisable,
					InvalidVotePolicy: entities.InvalidVotePolicyWarn,
					AllowWriteIns:     true,
				},
			},
		},
	}
}

func newSelectionFixture(t *testing.T) (SelectionUseCase, *memory.Store, entities.BallotStyle) {
	t.Helper()
	store := memory.NewStore(nil)
	uc := SelectionUseCase{Selections: store, Styles: store}
	style := testStyle()
	if err := uc.Reset(context.Background(), ResetSelectionCommand{Style: style}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	return uc, store, style
}

func TestSetChoiceRadioExclusivity(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)
	ctx := context.Background()

	if _, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 11, Selected: 0},
	}); err != nil {
		t.Fatalf("first choice failed: %v", err)
	}
	result, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 12, Selected: 0},
	})
	if err != nil {
		t.Fatalf("second choice failed: %v", err)
	}

	alice, _ := result.State.Choice(11)
	bob, _ := result.State.Choice(12)
	if alice.IsSelected() {
		t.Fatalf("radio contest must deselect prior candidate")
	}
	if !bob.IsSelected() {
		t.Fatalf("new candidate must be selected")
	}
}

func TestSetChoiceRefusedByDisableOvervotePolicy(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)
	ctx := context.Background()

	for _, id := range []int64{21, 22} {
		if _, err := uc.SetChoice(ctx, SetChoiceCommand{
			ElectionID: "election-1", ContestID: "council",
			Choice: entities.Choice{ID: id, Selected: 0},
		}); err != nil {
			t.Fatalf("choice %d failed: %v", id, err)
		}
	}

	result, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "council",
		Choice: entities.Choice{ID: 23, Selected: 0},
	})
	if err != nil {
		t.Fatalf("refused choice must not error: %v", err)
	}
	if !result.Refused {
		t.Fatalf("expected over-vote refusal")
	}
	erin, _ := result.State.Choice(23)
	if erin.IsSelected() {
		t.Fatalf("refused choice must not be stored")
	}
}

func TestRadioSwitchAllowedUnderDisableOvervotePolicy(t *testing.T) {
	store := memory.NewStore(nil)
	uc := SelectionUseCase{Selections: store, Styles: store}
	style := testStyle()
	style.Contests[0].Presentation.OvervotePolicy = entities.OvervotePolicyDisable
	if err := uc.Reset(context.Background(), ResetSelectionCommand{Style: style}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	ctx := context.Background()

	if _, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 11, Selected: 0},
	}); err != nil {
		t.Fatalf("first choice failed: %v", err)
	}
	// Switching the vote in a full radio contest is exclusivity, not an
	// over-vote; the disable policy must not refuse it.
	result, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 12, Selected: 0},
	})
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if result.Refused {
		t.Fatalf("radio switch must not be refused by the over-vote policy")
	}
	alice, _ := result.State.Choice(11)
	bob, _ := result.State.Choice(12)
	if alice.IsSelected() || !bob.IsSelected() {
		t.Fatalf("switch must yield exactly the new candidate, got alice=%d bob=%d", alice.Selected, bob.Selected)
	}
}

func TestExplicitInvalidClearsSelections(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)
	ctx := context.Background()

	if _, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 11, Selected: 0},
	}); err != nil {
		t.Fatalf("choice failed: %v", err)
	}
	result, err := uc.SetExplicitInvalid(ctx, SetExplicitInvalidCommand{
		ElectionID: "election-1", ContestID: "mayor", Invalid: true,
	})
	if err != nil {
		t.Fatalf("explicit invalid failed: %v", err)
	}
	if !result.State.IsExplicitInvalid {
		t.Fatalf("flag must be raised")
	}
	if result.State.HasAnySelection() {
		t.Fatalf("raising explicit invalid must clear every choice")
	}

	// Selecting again lowers the flag in the same transition.
	result, err = uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 12, Selected: 0},
	})
	if err != nil {
		t.Fatalf("reselect failed: %v", err)
	}
	if result.State.IsExplicitInvalid {
		t.Fatalf("selecting a candidate must clear the explicit invalid flag")
	}
}

func TestExplicitInvalidSentinelRoutesThroughFlag(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)

	result, err := uc.SetChoice(context.Background(), SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 13, Selected: 0},
	})
	if err != nil {
		t.Fatalf("sentinel choice failed: %v", err)
	}
	if !result.State.IsExplicitInvalid {
		t.Fatalf("selecting the invalid sentinel must raise the flag")
	}
	if sentinel, _ := result.State.Choice(13); sentinel.IsSelected() {
		t.Fatalf("the sentinel itself must not hold a rank")
	}
}

func TestExplicitInvalidDeniedByPolicy(t *testing.T) {
	store := memory.NewStore(nil)
	uc := SelectionUseCase{Selections: store, Styles: store}
	style := testStyle()
	style.Contests[0].Presentation.InvalidVotePolicy = entities.InvalidVotePolicyNotAllowed
	if err := uc.Reset(context.Background(), ResetSelectionCommand{Style: style}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	_, err := uc.SetExplicitInvalid(context.Background(), SetExplicitInvalidCommand{
		ElectionID: "election-1", ContestID: "mayor", Invalid: true,
	})
	if !errors.Is(err, domainerrors.ErrExplicitInvalidDenied) {
		t.Fatalf("expected ErrExplicitInvalidDenied, got %v", err)
	}
}

func TestSetWriteInTextNormalizes(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)

	result, err := uc.SetWriteInText(context.Background(), SetWriteInTextCommand{
		ElectionID: "election-1", ContestID: "council", CandidateID: 24,
		Text: "  Jane   Roe ",
	})
	if err != nil {
		t.Fatalf("write-in failed: %v", err)
	}
	choice, _ := result.State.Choice(24)
	if choice.WriteInText != "Jane Roe" {
		t.Fatalf("expected normalized text, got %q", choice.WriteInText)
	}
}

func TestSetBlankClearsEverything(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)
	ctx := context.Background()

	if _, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "council",
		Choice: entities.Choice{ID: 21, Selected: 0},
	}); err != nil {
		t.Fatalf("choice failed: %v", err)
	}
	result, err := uc.SetBlank(ctx, SetBlankCommand{ElectionID: "election-1", ContestID: "council"})
	if err != nil {
		t.Fatalf("blank failed: %v", err)
	}
	if result.State.HasAnySelection() || result.State.IsExplicitInvalid {
		t.Fatalf("blank must clear selections and the invalid flag")
	}
}

func TestSetChoiceStaleContestIsNoOp(t *testing.T) {
	uc, _, _ := newSelectionFixture(t)

	result, err := uc.SetChoice(context.Background(), SetChoiceCommand{
		ElectionID: "election-1", ContestID: "retired-contest",
		Choice: entities.Choice{ID: 11, Selected: 0},
	})
	if err != nil {
		t.Fatalf("stale contest must not error: %v", err)
	}
	if result.State.HasAnySelection() {
		t.Fatalf("stale contest must not store anything")
	}
}

func TestResetSingleContestClearsTouched(t *testing.T) {
	uc, store, style := newSelectionFixture(t)
	ctx := context.Background()

	if _, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "council",
		Choice: entities.Choice{ID: 21, Selected: 0},
	}); err != nil {
		t.Fatalf("choice failed: %v", err)
	}
	if err := uc.Reset(ctx, ResetSelectionCommand{Style: style, ContestID: "council"}); err != nil {
		t.Fatalf("contest reset failed: %v", err)
	}

	touched, err := store.IsTouched(ctx, "election-1", "council")
	if err != nil {
		t.Fatalf("touched lookup failed: %v", err)
	}
	if touched {
		t.Fatalf("rebuilt contest must not stay touched")
	}

	// A non-selecting mutation on the fresh contest must not surface the
	// under-minimum finding.
	result, err := uc.SetWriteInText(ctx, SetWriteInTextCommand{
		ElectionID: "election-1", ContestID: "council", CandidateID: 24,
		Text: "Jane Roe",
	})
	if err != nil {
		t.Fatalf("write-in failed: %v", err)
	}
	for _, finding := range result.Verdict.Errors {
		if finding.Message == entities.MsgSelectedMin {
			t.Fatalf("fresh contest must not report under-minimum")
		}
	}
}

func TestResetWithoutForceKeepsState(t *testing.T) {
	uc, _, style := newSelectionFixture(t)
	ctx := context.Background()

	if _, err := uc.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 11, Selected: 0},
	}); err != nil {
		t.Fatalf("choice failed: %v", err)
	}
	if err := uc.Reset(ctx, ResetSelectionCommand{Style: style}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	state, err := uc.Get(ctx, "election-1", "mayor")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !state.HasAnySelection() {
		t.Fatalf("reset without force must keep existing state")
	}

	if err := uc.Reset(ctx, ResetSelectionCommand{Style: style, Force: true}); err != nil {
		t.Fatalf("forced reset failed: %v", err)
	}
	state, err = uc.Get(ctx, "election-1", "mayor")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if state.HasAnySelection() {
		t.Fatalf("forced reset must rebuild fresh state")
	}
}
