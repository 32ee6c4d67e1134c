package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "agora/contexts/voter-experience/ballot-engine/application"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	"agora/contexts/voter-experience/ballot-engine/domain/services"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

// BallotCodecUseCase converts between mutable selection state and the
// immutable auditable ballot, branching on the election's encryption policy.
type BallotCodecUseCase struct {
	Crypto ports.CryptoProvider
	Logger *slog.Logger
}

// Encode produces the auditable ballot for a full set of contest selection
// states. Choices are forced into canonical candidate order first: display
// order never leaks into the cryptographic payload. Provider failures leave
// the selection state untouched and surface as a retryable encoding error.
func (uc BallotCodecUseCase) Encode(
	ctx context.Context,
	states []entities.ContestSelectionState,
	style entities.BallotStyle,
) (entities.AuditableBallot, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("ballot encode started",
		"event", "ballot_codec_encode_started",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", style.ElectionID,
		"ballot_style_id", style.ID,
		"encryption_policy", string(style.EncryptionPolicy),
		"contest_count", len(style.Contests),
	)

	canonical := make([]entities.ContestSelectionState, 0, len(style.Contests))
	for _, contest := range style.Contests {
		state, found := findState(states, contest.ID)
		if !found {
			state = entities.NewContestSelectionState(contest)
		}
		canonical = append(canonical, services.CanonicalState(state))
	}

	ballot := entities.AuditableBallot{
		ElectionID:       style.ElectionID,
		BallotStyleID:    style.ID,
		EncryptionPolicy: style.EncryptionPolicy,
	}
	switch style.EncryptionPolicy {
	case entities.EncryptionPolicySingleContest:
		for i, contest := range style.Contests {
			unit, err := uc.Crypto.EncryptBallotSelection(canonical[i], contest, style)
			if err != nil {
				return entities.AuditableBallot{}, uc.encodeFailed(logger, style, contest.ID, err)
			}
			ballot.Units = append(ballot.Units, unit)
		}
	case entities.EncryptionPolicyMultiContests:
		unit, err := uc.Crypto.EncryptMultiBallotSelection(canonical, style)
		if err != nil {
			return entities.AuditableBallot{}, uc.encodeFailed(logger, style, "", err)
		}
		ballot.Units = []entities.EncryptedUnit{unit}
	case entities.EncryptionPolicyPlaintext:
		ballot.PlainSelections = canonical
	default:
		return entities.AuditableBallot{}, uc.encodeFailed(logger, style, "",
			fmt.Errorf("unknown encryption policy %q", style.EncryptionPolicy))
	}

	logger.Info("ballot encode completed",
		"event", "ballot_codec_encode_completed",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", style.ElectionID,
		"ballot_style_id", style.ID,
		"unit_count", len(ballot.Units),
	)
	return ballot, nil
}

// Decode rebuilds selection states from an auditable ballot for read-only
// review. An undecodable ballot yields nil and no error: the caller shows
// nothing instead of treating it as selection loss.
func (uc BallotCodecUseCase) Decode(
	ctx context.Context,
	ballot entities.AuditableBallot,
	style entities.BallotStyle,
) []entities.ContestSelectionState {
	logger := application.ResolveLogger(uc.Logger)
	states, ok := uc.Crypto.DecodeAuditableBallot(ballot, style)
	if !ok {
		logger.Warn("ballot decode produced nothing",
			"event", "ballot_codec_decode_empty",
			"module", "voter-experience/ballot-engine",
			"layer", "application",
			"election_id", ballot.ElectionID,
			"encryption_policy", string(ballot.EncryptionPolicy),
		)
		return nil
	}
	return states
}

// Hash is a pure function of the ballot content: identical content hashes
// identically across calls and across the encode/decode/encode cycle.
func (uc BallotCodecUseCase) Hash(ballot entities.AuditableBallot) (string, error) {
	return uc.Crypto.HashBallot(ballot.ToHashable())
}

func (uc BallotCodecUseCase) encodeFailed(logger *slog.Logger, style entities.BallotStyle, contestID string, err error) error {
	logger.Error("ballot encode failed",
		"event", "ballot_codec_encode_failed",
		"module", "voter-experience/ballot-engine",
		"layer", "application",
		"election_id", style.ElectionID,
		"ballot_style_id", style.ID,
		"contest_id", contestID,
		"error", err.Error(),
	)
	return fmt.Errorf("%w: %v", domainerrors.ErrEncodingFailed, err)
}

func findState(states []entities.ContestSelectionState, contestID string) (entities.ContestSelectionState, bool) {
	for _, state := range states {
		if state.ContestID == contestID {
			return state, true
		}
	}
	return entities.ContestSelectionState{}, false
}
