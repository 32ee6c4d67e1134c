package ports

import (
	"context"
	"time"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	"agora/internal/shared/events"
)

// SelectionRepository owns the per-session selection state. One repository
// instance belongs to exactly one voting session; mutations are applied
// atomically with respect to reads.
type SelectionRepository interface {
	GetSelection(ctx context.Context, electionID string, contestID string) (entities.ContestSelectionState, bool, error)
	ListSelections(ctx context.Context, electionID string) ([]entities.ContestSelectionState, error)
	SaveSelection(ctx context.Context, electionID string, state entities.ContestSelectionState) error
	ReplaceSelections(ctx context.Context, electionID string, states []entities.ContestSelectionState) error
	DeleteSelections(ctx context.Context, electionID string) error
	IsTouched(ctx context.Context, electionID string, contestID string) (bool, error)
	MarkTouched(ctx context.Context, electionID string, contestID string) error
	ClearTouched(ctx context.Context, electionID string, contestID string) error
}

// SessionRepository tracks the cast-flow state machine and the artifacts the
// flow produces per election.
type SessionRepository interface {
	GetSession(ctx context.Context, electionID string) (VotingSession, bool, error)
	SaveSession(ctx context.Context, session VotingSession) error
}

type VotingSession struct {
	ElectionID    string
	FlowState     string
	BallotStyleID string
	Ballot        *entities.AuditableBallot
	BallotID      string
	CastVoteID    string
	UpdatedAt     time.Time
}

// StyleCache keeps the ballot style loaded for the session so mutations can
// consult contest definitions without refetching. A style is immutable once
// loaded for a session.
type StyleCache interface {
	GetLoadedStyle(ctx context.Context, electionID string) (entities.BallotStyle, bool, error)
	SaveLoadedStyle(ctx context.Context, style entities.BallotStyle) error
}

// BallotStyleSource supplies ballot styles keyed by (tenant, election,
// area). The engine treats returned styles as schema-valid.
type BallotStyleSource interface {
	GetBallotStyle(ctx context.Context, tenantID string, electionID string, areaID string) (entities.BallotStyle, error)
}

// ElectionStatusSource answers whether an election currently accepts casts.
// It is backed by a projection of admin status events.
type ElectionStatusSource interface {
	GetVotingStatus(ctx context.Context, electionID string) (entities.VotingStatus, error)
}

// CryptoProvider is the external ballot crypto boundary, consumed as pure
// functions. Decode returns ok=false for undecodable ballots; callers treat
// that as "nothing to show", never as selection loss.
type CryptoProvider interface {
	EncryptBallotSelection(selection entities.ContestSelectionState, contest entities.Contest, style entities.BallotStyle) (entities.EncryptedUnit, error)
	EncryptMultiBallotSelection(selections []entities.ContestSelectionState, style entities.BallotStyle) (entities.EncryptedUnit, error)
	DecodeAuditableBallot(ballot entities.AuditableBallot, style entities.BallotStyle) ([]entities.ContestSelectionState, bool)
	HashBallot(ballot entities.HashableBallot) (string, error)
	SignHashableBallot(ballot entities.HashableBallot, style entities.BallotStyle) (entities.SignedContent, error)
}

// CastGateway is the external cast-submission mutation.
type CastGateway interface {
	SubmitCastVote(ctx context.Context, electionID string, ballotID string, content string) (entities.CastVote, error)
}

type EventEnvelope = events.Envelope

type OutboxRecord struct {
	OutboxID    string
	EventType   string
	Payload     []byte
	Status      string
	PublishedAt *time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

// EventDedupStore gates at-least-once deliveries. ReserveEvent returns true
// when the event was already processed.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// ElectionStatusProjection is the write side of ElectionStatusSource,
// updated by the status event consumer.
type ElectionStatusProjection interface {
	SetVotingStatus(ctx context.Context, electionID string, status entities.VotingStatus) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// SeedSource owns the per-session shuffle seed so ordering stays stable for
// the whole session.
type SeedSource interface {
	SessionSeed() int64
}
