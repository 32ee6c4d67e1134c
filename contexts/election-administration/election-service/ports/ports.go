package ports

import (
	"context"
	"time"

	"agora/contexts/election-administration/election-service/domain/entities"
	"agora/internal/shared/events"
)

type EventFilter struct {
	TenantID     string
	VotingStatus entities.VotingStatus
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event entities.ElectionEvent) error
	UpdateEvent(ctx context.Context, event entities.ElectionEvent) error
	GetEvent(ctx context.Context, eventID string) (entities.ElectionEvent, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]entities.ElectionEvent, error)
}

type ElectionRepository interface {
	CreateElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElectionsByEvent(ctx context.Context, eventID string) ([]entities.Election, error)
}

// BallotStyleRepository stores published ballot styles. One style per
// (tenant, election, area); a re-publish bumps the version.
type BallotStyleRepository interface {
	UpsertBallotStyle(ctx context.Context, record entities.BallotStyleRecord) error
	GetBallotStyle(ctx context.Context, tenantID string, electionID string, areaID string) (entities.BallotStyleRecord, error)
	ListBallotStylesByElection(ctx context.Context, electionID string) ([]entities.BallotStyleRecord, error)
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

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
