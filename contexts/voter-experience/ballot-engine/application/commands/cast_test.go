package commands

import (
	"context"
	"errors"
	"testing"

	cryptoadapter "agora/contexts/voter-experience/ballot-engine/adapters/crypto"
	"agora/contexts/voter-experience/ballot-engine/adapters/memory"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
)

func newCastFixture(t *testing.T, style entities.BallotStyle) (SelectionUseCase, CastFlowUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore(nil)
	selections := SelectionUseCase{Selections: store, Styles: store}
	cast := CastFlowUseCase{
		Selections: store,
		Sessions:   store,
		Styles:     store,
		Status:     store,
		Codec:      BallotCodecUseCase{Crypto: cryptoadapter.NewProvider()},
		Gateway:    store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
	if err := selections.Reset(context.Background(), ResetSelectionCommand{Style: style}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	return selections, cast, store
}

func fillMinimums(t *testing.T, selections SelectionUseCase) {
	t.Helper()
	ctx := context.Background()
	if _, err := selections.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "mayor",
		Choice: entities.Choice{ID: 11, Selected: 0},
	}); err != nil {
		t.Fatalf("mayor choice failed: %v", err)
	}
	if _, err := selections.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "council",
		Choice: entities.Choice{ID: 21, Selected: 0},
	}); err != nil {
		t.Fatalf("council choice failed: %v", err)
	}
}

func TestCastFlowHappyPath(t *testing.T) {
	selections, cast, store := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	review, err := cast.BeginReview(ctx, "election-1", false)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if review.DialogRequired {
		t.Fatalf("valid ballot must not require a dialog")
	}
	if review.BallotID == "" {
		t.Fatalf("review must produce a ballot id")
	}

	if err := store.SetVotingStatus(ctx, "election-1", entities.VotingStatusOpen); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	result, err := cast.Cast(ctx, "election-1")
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if result.BallotID != review.BallotID {
		t.Fatalf("cast ballot id must match reviewed id")
	}
	if result.Replayed {
		t.Fatalf("first cast is not a replay")
	}
	if _, found := store.CastVoteForElection("election-1"); !found {
		t.Fatalf("cast vote must reach the gateway")
	}

	// Selection state is spent once the ballot is accepted.
	states, err := selections.GetAll(ctx, "election-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("selections must be deleted after cast, got %d", len(states))
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("outbox list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "ballot.cast" {
		t.Fatalf("expected one ballot.cast outbox row, got %+v", pending)
	}
}

func TestCastFlowEncryptedPolicies(t *testing.T) {
	for _, policy := range []entities.EncryptionPolicy{
		entities.EncryptionPolicySingleContest,
		entities.EncryptionPolicyMultiContests,
	} {
		t.Run(string(policy), func(t *testing.T) {
			style := testStyle()
			style.EncryptionPolicy = policy
			style.PublicKey = entities.PublicKeyConfig{Key: "pk-test"}
			selections, cast, store := newCastFixture(t, style)
			ctx := context.Background()
			fillMinimums(t, selections)

			review, err := cast.BeginReview(ctx, "election-1", false)
			if err != nil {
				t.Fatalf("review failed: %v", err)
			}
			if len(review.Ballot.Units) == 0 || len(review.Ballot.PlainSelections) != 0 {
				t.Fatalf("encrypted policy must produce ciphertext units, got %+v", review.Ballot)
			}

			if err := store.SetVotingStatus(ctx, "election-1", entities.VotingStatusOpen); err != nil {
				t.Fatalf("set status failed: %v", err)
			}
			result, err := cast.Cast(ctx, "election-1")
			if err != nil {
				t.Fatalf("cast failed: %v", err)
			}
			if result.BallotID != review.BallotID {
				t.Fatalf("re-encode before cast must reproduce the reviewed ballot id")
			}
		})
	}
}

func TestCastReplayReturnsStoredResult(t *testing.T) {
	selections, cast, store := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	if _, err := cast.BeginReview(ctx, "election-1", false); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := store.SetVotingStatus(ctx, "election-1", entities.VotingStatusOpen); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	first, err := cast.Cast(ctx, "election-1")
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	second, err := cast.Cast(ctx, "election-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("second cast must replay")
	}
	if second.CastVote.ID != first.CastVote.ID || second.BallotID != first.BallotID {
		t.Fatalf("replay must return the original identifiers")
	}
}

func TestCastRefusedWhenElectionNotOpen(t *testing.T) {
	selections, cast, _ := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	if _, err := cast.BeginReview(ctx, "election-1", false); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	_, err := cast.Cast(ctx, "election-1")
	if !errors.Is(err, domainerrors.ErrElectionNotOpen) {
		t.Fatalf("expected ErrElectionNotOpen, got %v", err)
	}
}

func TestReviewDialogForUnderMinimumTouchedContest(t *testing.T) {
	selections, cast, _ := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	// Deselect council after touching it: under minimum, warn policy.
	if _, err := selections.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "council",
		Choice: entities.Choice{ID: 21, Selected: -1},
	}); err != nil {
		t.Fatalf("deselect failed: %v", err)
	}

	review, err := cast.BeginReview(ctx, "election-1", false)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if !review.DialogRequired {
		t.Fatalf("under-minimum touched contest must require confirmation")
	}
	if len(review.BlockedContests) != 1 || review.BlockedContests[0] != "council" {
		t.Fatalf("expected council blocked, got %v", review.BlockedContests)
	}

	review, err = cast.BeginReview(ctx, "election-1", true)
	if err != nil {
		t.Fatalf("override review failed: %v", err)
	}
	if review.DialogRequired {
		t.Fatalf("override must complete the transition")
	}
}

func TestReviewRefusedWhenOverrideForbidden(t *testing.T) {
	style := testStyle()
	style.Contests[1].Presentation.InvalidVotePolicy = entities.InvalidVotePolicyNotAllowed
	selections, cast, _ := newCastFixture(t, style)
	ctx := context.Background()
	fillMinimums(t, selections)

	if _, err := selections.SetChoice(ctx, SetChoiceCommand{
		ElectionID: "election-1", ContestID: "council",
		Choice: entities.Choice{ID: 21, Selected: -1},
	}); err != nil {
		t.Fatalf("deselect failed: %v", err)
	}

	_, err := cast.BeginReview(ctx, "election-1", true)
	if !errors.Is(err, domainerrors.ErrReviewBlocked) {
		t.Fatalf("expected ErrReviewBlocked, got %v", err)
	}
}

func TestCastAbortsOnHashMismatch(t *testing.T) {
	selections, cast, store := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	if _, err := cast.BeginReview(ctx, "election-1", false); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := store.SetVotingStatus(ctx, "election-1", entities.VotingStatusOpen); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	// Mutate stored state behind the session's back; the re-encode no longer
	// matches the reviewed ballot id.
	state, _, err := store.GetSelection(ctx, "election-1", "mayor")
	if err != nil {
		t.Fatalf("get selection failed: %v", err)
	}
	for i := range state.Choices {
		if state.Choices[i].ID == 12 {
			state.Choices[i].Selected = 0
		}
		if state.Choices[i].ID == 11 {
			state.Choices[i].Selected = -1
		}
	}
	if err := store.SaveSelection(ctx, "election-1", state); err != nil {
		t.Fatalf("save selection failed: %v", err)
	}

	_, err = cast.Cast(ctx, "election-1")
	if !errors.Is(err, domainerrors.ErrInconsistentHash) {
		t.Fatalf("expected ErrInconsistentHash, got %v", err)
	}
	session, found, err := store.GetSession(ctx, "election-1")
	if err != nil || !found {
		t.Fatalf("session must survive the abort: %v", err)
	}
	if session.FlowState != FlowSelecting || session.Ballot != nil {
		t.Fatalf("abort must force a fresh review entry, got %q", session.FlowState)
	}
}

func TestDemoCastSkipsGateway(t *testing.T) {
	style := testStyle()
	style.PublicKey.IsDemo = true
	selections, cast, store := newCastFixture(t, style)
	ctx := context.Background()
	fillMinimums(t, selections)

	if _, err := cast.BeginReview(ctx, "election-1", false); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := store.SetVotingStatus(ctx, "election-1", entities.VotingStatusOpen); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	result, err := cast.Cast(ctx, "election-1")
	if err != nil {
		t.Fatalf("demo cast failed: %v", err)
	}
	if !result.CastVote.IsDemo {
		t.Fatalf("demo election must produce a demo cast vote")
	}
	if _, found := store.CastVoteForElection("election-1"); found {
		t.Fatalf("demo cast must never reach the gateway")
	}
}

func TestReviewRefusedAfterCast(t *testing.T) {
	selections, cast, store := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	if _, err := cast.BeginReview(ctx, "election-1", false); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := store.SetVotingStatus(ctx, "election-1", entities.VotingStatusOpen); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := cast.Cast(ctx, "election-1"); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	_, err := cast.BeginReview(ctx, "election-1", false)
	if !errors.Is(err, domainerrors.ErrBallotAlreadyCast) {
		t.Fatalf("expected ErrBallotAlreadyCast, got %v", err)
	}
}

func TestBackToSelectingRequiresReviewing(t *testing.T) {
	selections, cast, _ := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	err := cast.BackToSelecting(ctx, "election-1")
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition before review, got %v", err)
	}

	if _, err := cast.BeginReview(ctx, "election-1", false); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := cast.BackToSelecting(ctx, "election-1"); err != nil {
		t.Fatalf("back transition failed: %v", err)
	}
}

func TestAuditExportsReviewedBallot(t *testing.T) {
	selections, cast, _ := newCastFixture(t, testStyle())
	ctx := context.Background()
	fillMinimums(t, selections)

	review, err := cast.BeginReview(ctx, "election-1", false)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	export, err := cast.Audit(ctx, "election-1")
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if export.BallotID != review.BallotID {
		t.Fatalf("audit must export the reviewed ballot")
	}
	if export.Signed.Content == "" || export.Signed.Signature == "" {
		t.Fatalf("audit export must be signed")
	}
}
