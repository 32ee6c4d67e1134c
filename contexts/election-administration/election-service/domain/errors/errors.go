package errors

import "errors"

var (
	ErrEventNotFound            = errors.New("election event not found")
	ErrElectionNotFound         = errors.New("election not found")
	ErrBallotStyleNotFound      = errors.New("ballot style not found")
	ErrInvalidEventInput        = errors.New("invalid election event input")
	ErrInvalidElectionInput     = errors.New("invalid election input")
	ErrInvalidBallotPayload     = errors.New("ballot style payload failed validation")
	ErrEventNotEditable         = errors.New("election event cannot be edited in current state")
	ErrInvalidStatusTransition  = errors.New("invalid voting status transition")
	ErrVotingStatusNotSupported = errors.New("unsupported voting status")
)
