package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/voter-experience/ballot-engine/application"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	"agora/contexts/voter-experience/ballot-engine/domain/services"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

// Cast-flow states. Cast is terminal for the election within the session.
const (
	FlowSelecting = "selecting"
	FlowReviewing = "reviewing"
	FlowCasting   = "casting"
	FlowCast      = "cast"
)

// ReviewResult is the outcome of the selecting -> reviewing transition. When
// DialogRequired is set the transition did not happen: touched contests still
// violate min/max and the voter must explicitly confirm before retrying with
// override.
type ReviewResult struct {
	Ballot          entities.AuditableBallot
	BallotID        string
	DialogRequired  bool
	BlockedContests []string
}

type CastResult struct {
	CastVote entities.CastVote
	BallotID string
	Replayed bool
}

// AuditExport is the pre-cast ballot export for external verification.
type AuditExport struct {
	Ballot   entities.AuditableBallot
	BallotID string
	Signed   entities.SignedContent
}

// CastFlowUseCase drives the voter journey state machine: Selecting ->
// Reviewing -> Casting -> Cast, with a pre-cast audit branch. It guarantees
// at most one cast per election per session and never submits a ballot whose
// decode-back hash disagrees with what the voter reviewed.
type CastFlowUseCase struct {
	Selections ports.SelectionRepository
	Sessions   ports.SessionRepository
	Styles     ports.StyleCache
	Status     ports.ElectionStatusSource
	Codec      BallotCodecUseCase
	Gateway    ports.CastGateway
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// BeginReview validates every contest, encodes the ballot, verifies the
// encode/decode round trip, and moves the session to reviewing. Hard
// explicit findings and policy-forbidden states refuse outright; overridable
// min/max findings surface as a confirmation dialog unless override is set.
func (uc CastFlowUseCase) BeginReview(ctx context.Context, electionID string, override bool) (ReviewResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	election := strings.TrimSpace(electionID)
	logger.Info("review transition started",
		"event", "ballot_cast_review_started",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", election,
		"override", override,
	)
	style, found, err := uc.Styles.GetLoadedStyle(ctx, election)
	if err != nil {
		return ReviewResult{}, err
	}
	if !found {
		return ReviewResult{}, domainerrors.ErrSessionNotFound
	}
	session, err := uc.session(ctx, election, style.ID)
	if err != nil {
		return ReviewResult{}, err
	}
	if session.FlowState == FlowCast {
		return ReviewResult{}, domainerrors.ErrBallotAlreadyCast
	}

	states, err := uc.Selections.ListSelections(ctx, election)
	if err != nil {
		return ReviewResult{}, err
	}
	blocked := []string{}
	for _, contest := range style.Contests {
		state, ok := findState(states, contest.ID)
		if !ok {
			state = entities.NewContestSelectionState(contest)
		}
		touched, err := uc.Selections.IsTouched(ctx, election, contest.ID)
		if err != nil {
			return ReviewResult{}, err
		}
		verdict := services.Evaluate(contest, state, touched)
		if services.VotingNotAllowedNext(contest, verdict) {
			logger.Warn("review refused by validation",
				"event", "ballot_cast_review_refused",
				"module", "voter-experience/ballot-engine",
				"layer", "application",
				"election_id", election,
				"contest_id", contest.ID,
			)
			return ReviewResult{}, domainerrors.ErrReviewBlocked
		}
		if services.VotingErrorDialog(contest, verdict) {
			blocked = append(blocked, contest.ID)
		}
	}
	if len(blocked) > 0 && !override {
		logger.Info("review requires voter confirmation",
			"event", "ballot_cast_review_dialog",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", election,
			"blocked_contests", len(blocked),
		)
		return ReviewResult{DialogRequired: true, BlockedContests: blocked}, nil
	}

	ballot, ballotID, err := uc.encodeAndVerify(ctx, logger, states, style, session)
	if err != nil {
		return ReviewResult{}, err
	}

	session.FlowState = FlowReviewing
	session.Ballot = &ballot
	session.BallotID = ballotID
	session.UpdatedAt = uc.now()
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return ReviewResult{}, err
	}
	logger.Info("review transition completed",
		"event", "ballot_cast_review_completed",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", election,
		"ballot_id", ballotID,
	)
	return ReviewResult{Ballot: ballot, BallotID: ballotID}, nil
}

// BackToSelecting returns a reviewing session to selection without touching
// any selection state.
func (uc CastFlowUseCase) BackToSelecting(ctx context.Context, electionID string) error {
	election := strings.TrimSpace(electionID)
	session, found, err := uc.Sessions.GetSession(ctx, election)
	if err != nil {
		return err
	}
	if !found || session.FlowState != FlowReviewing {
		return domainerrors.ErrInvalidTransition
	}
	session.FlowState = FlowSelecting
	session.UpdatedAt = uc.now()
	return uc.Sessions.SaveSession(ctx, session)
}

// Audit exports the reviewed ballot for external verification. It is only
// reachable pre-cast from reviewing and mutates nothing.
func (uc CastFlowUseCase) Audit(ctx context.Context, electionID string) (AuditExport, error) {
	logger := application.ResolveLogger(uc.Logger)
	election := strings.TrimSpace(electionID)
	session, found, err := uc.Sessions.GetSession(ctx, election)
	if err != nil {
		return AuditExport{}, err
	}
	if !found || session.FlowState != FlowReviewing || session.Ballot == nil {
		return AuditExport{}, domainerrors.ErrInvalidTransition
	}
	style, foundStyle, err := uc.Styles.GetLoadedStyle(ctx, election)
	if err != nil {
		return AuditExport{}, err
	}
	if !foundStyle {
		return AuditExport{}, domainerrors.ErrSessionNotFound
	}
	signed, err := uc.Codec.Crypto.SignHashableBallot(session.Ballot.ToHashable(), style)
	if err != nil {
		return AuditExport{}, err
	}
	logger.Info("ballot exported for audit",
		"event", "ballot_cast_audit_exported",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", election,
		"ballot_id", session.BallotID,
	)
	return AuditExport{Ballot: *session.Ballot, BallotID: session.BallotID, Signed: signed}, nil
}

// Cast submits the ballot. A second cast for an already-cast election
// replays the stored result without a second external submission. The
// encode step always re-runs from current selection state; a hash that
// disagrees with the reviewed ballot id aborts the flow fatally.
func (uc CastFlowUseCase) Cast(ctx context.Context, electionID string) (CastResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	election := strings.TrimSpace(electionID)
	logger.Info("cast started",
		"event", "ballot_cast_started",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", election,
	)
	session, found, err := uc.Sessions.GetSession(ctx, election)
	if err != nil {
		return CastResult{}, err
	}
	if !found {
		return CastResult{}, domainerrors.ErrSessionNotFound
	}
	if session.FlowState == FlowCast {
		logger.Info("cast replayed",
			"event", "ballot_cast_replayed",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", election,
			"ballot_id", session.BallotID,
			"cast_vote_id", session.CastVoteID,
		)
		return CastResult{
			CastVote: entities.CastVote{
				ID:         session.CastVoteID,
				ElectionID: election,
				BallotID:   session.BallotID,
			},
			BallotID: session.BallotID,
			Replayed: true,
		}, nil
	}
	if session.FlowState != FlowReviewing {
		return CastResult{}, domainerrors.ErrInvalidTransition
	}

	style, foundStyle, err := uc.Styles.GetLoadedStyle(ctx, election)
	if err != nil {
		return CastResult{}, err
	}
	if !foundStyle {
		return CastResult{}, domainerrors.ErrSessionNotFound
	}

	// The election may have closed while the voter reviewed.
	status, err := uc.Status.GetVotingStatus(ctx, election)
	if err != nil {
		return CastResult{}, err
	}
	if status != entities.VotingStatusOpen {
		logger.Warn("cast refused, election not open",
			"event", "ballot_cast_election_not_open",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", election,
			"voting_status", string(status),
		)
		return CastResult{}, domainerrors.ErrElectionNotOpen
	}

	states, err := uc.Selections.ListSelections(ctx, election)
	if err != nil {
		return CastResult{}, err
	}
	ballot, ballotID, err := uc.encodeAndVerify(ctx, logger, states, style, session)
	if err != nil {
		return CastResult{}, err
	}

	hashable := ballot.ToHashable()
	content, err := json.Marshal(hashable)
	if err != nil {
		return CastResult{}, err
	}

	session.FlowState = FlowCasting
	session.Ballot = &ballot
	session.BallotID = ballotID
	session.UpdatedAt = uc.now()
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return CastResult{}, err
	}

	var castVote entities.CastVote
	if style.PublicKey.IsDemo {
		// Demo elections never reach the real cast service.
		demoID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return CastResult{}, err
		}
		castVote = entities.CastVote{
			ID:         demoID,
			ElectionID: election,
			BallotID:   ballotID,
			Content:    string(content),
			IsDemo:     true,
			CastAt:     uc.now(),
		}
		logger.Info("demo cast simulated",
			"event", "ballot_cast_demo_simulated",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", election,
			"ballot_id", ballotID,
		)
	} else {
		castVote, err = uc.Gateway.SubmitCastVote(ctx, election, ballotID, string(content))
		if err != nil {
			// Submission failures are retryable: the session returns to
			// reviewing with selection state and ballot intact.
			session.FlowState = FlowReviewing
			session.UpdatedAt = uc.now()
			if saveErr := uc.Sessions.SaveSession(ctx, session); saveErr != nil {
				return CastResult{}, saveErr
			}
			logger.Error("cast submission failed",
				"event", "ballot_cast_submit_failed",
				"module", "voter-experience/ballot-engine",
				"layer", "application",
				"election_id", election,
				"ballot_id", ballotID,
				"error", err.Error(),
			)
			return CastResult{}, err
		}
	}

	session.FlowState = FlowCast
	session.CastVoteID = castVote.ID
	session.UpdatedAt = uc.now()
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return CastResult{}, err
	}
	// Selection state is spent once the ballot is accepted.
	if err := uc.Selections.DeleteSelections(ctx, election); err != nil {
		return CastResult{}, err
	}
	if err := uc.appendCastEvent(ctx, election, ballotID, castVote); err != nil {
		return CastResult{}, err
	}
	logger.Info("cast completed",
		"event", "ballot_cast_completed",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", election,
		"ballot_id", ballotID,
		"cast_vote_id", castVote.ID,
		"demo", castVote.IsDemo,
	)
	return CastResult{CastVote: castVote, BallotID: ballotID}, nil
}

// encodeAndVerify re-runs the full encode from current selection state, then
// proves the round trip: the decoded ballot re-encodes to the same hash, and
// the hash matches any ballot id the voter already reviewed. A mismatch is a
// fatal integrity failure that forces a fresh review entry.
func (uc CastFlowUseCase) encodeAndVerify(
	ctx context.Context,
	logger *slog.Logger,
	states []entities.ContestSelectionState,
	style entities.BallotStyle,
	session ports.VotingSession,
) (entities.AuditableBallot, string, error) {
	ballot, err := uc.Codec.Encode(ctx, states, style)
	if err != nil {
		return entities.AuditableBallot{}, "", err
	}
	ballotID, err := uc.Codec.Hash(ballot)
	if err != nil {
		return entities.AuditableBallot{}, "", err
	}

	decoded := uc.Codec.Decode(ctx, ballot, style)
	if decoded != nil {
		reencoded, err := uc.Codec.Encode(ctx, decoded, style)
		if err != nil {
			return entities.AuditableBallot{}, "", err
		}
		rehash, err := uc.Codec.Hash(reencoded)
		if err != nil {
			return entities.AuditableBallot{}, "", err
		}
		if rehash != ballotID {
			return entities.AuditableBallot{}, "", uc.abortInconsistent(ctx, logger, session, ballotID, rehash)
		}
	}
	if session.BallotID != "" && session.FlowState == FlowReviewing && session.BallotID != ballotID {
		return entities.AuditableBallot{}, "", uc.abortInconsistent(ctx, logger, session, session.BallotID, ballotID)
	}
	return ballot, ballotID, nil
}

func (uc CastFlowUseCase) abortInconsistent(
	ctx context.Context,
	logger *slog.Logger,
	session ports.VotingSession,
	expected string,
	actual string,
) error {
	logger.Error("ballot hash mismatch, aborting cast flow",
		"event", "ballot_cast_hash_mismatch",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", session.ElectionID,
		"expected_hash", expected,
		"actual_hash", actual,
	)
	session.FlowState = FlowSelecting
	session.Ballot = nil
	session.BallotID = ""
	session.UpdatedAt = uc.now()
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return err
	}
	return domainerrors.ErrInconsistentHash
}

func (uc CastFlowUseCase) appendCastEvent(
	ctx context.Context,
	electionID string,
	ballotID string,
	castVote entities.CastVote,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	// The event carries identifiers only, never ballot content.
	envelope, err := newBallotEnvelope(eventID, "ballot.cast", electionID, uc.now(), map[string]any{
		"election_id":  electionID,
		"ballot_id":    ballotID,
		"cast_vote_id": castVote.ID,
		"demo":         castVote.IsDemo,
		"cast_at":      castVote.CastAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc CastFlowUseCase) session(ctx context.Context, electionID string, styleID string) (ports.VotingSession, error) {
	session, found, err := uc.Sessions.GetSession(ctx, electionID)
	if err != nil {
		return ports.VotingSession{}, err
	}
	if !found {
		session = ports.VotingSession{
			ElectionID:    electionID,
			FlowState:     FlowSelecting,
			BallotStyleID: styleID,
		}
	}
	return session, nil
}

func (uc CastFlowUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
