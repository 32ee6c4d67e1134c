package errors

import "errors"

var (
	ErrBallotStyleNotFound   = errors.New("ballot style not found")
	ErrSessionNotFound       = errors.New("voting session not found")
	ErrContestNotFound       = errors.New("contest not found")
	ErrInvalidSelectionInput = errors.New("invalid selection input")
	ErrSelectionRefused      = errors.New("selection refused by over-vote policy")
	ErrExplicitInvalidDenied = errors.New("explicit invalid vote is not allowed for this contest")
	ErrWriteInNotAllowed     = errors.New("write-in candidates are not allowed for this contest")
	ErrEncodingFailed        = errors.New("unable to encrypt ballot")
	ErrInconsistentHash      = errors.New("ballot hash mismatch after decode")
	ErrReviewBlocked         = errors.New("contest validation blocks review")
	ErrInvalidTransition     = errors.New("cast flow transition not allowed")
	ErrElectionNotOpen       = errors.New("election is not open for voting")
	ErrBallotAlreadyCast     = errors.New("ballot already cast for this election")
	ErrCastFailed            = errors.New("cast submission failed")
	ErrConflict              = errors.New("cast vote conflict")
)
