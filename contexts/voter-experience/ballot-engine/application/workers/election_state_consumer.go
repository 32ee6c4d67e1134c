package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/voter-experience/ballot-engine/application"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

const (
	statusChangedTopic = "election_event.status_changed"
	defaultElectionCG  = "ballot-engine-election-cg"
)

// ElectionStateConsumer keeps the engine's open/closed projection in sync
// with admin status events so the cast gate can refuse closed elections
// without calling back into the admin module.
type ElectionStateConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Projection    ports.ElectionStatusProjection
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c ElectionStateConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("election state consumer disabled by feature flag",
			"event", "ballot_election_consumer_disabled",
			"module", "voter-experience/ballot-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultElectionCG
	}
	if err := c.Subscriber.Subscribe(ctx, statusChangedTopic, group, c.handleStatusChanged); err != nil {
		logger.Error("election state consumer subscribe failed",
			"event", "ballot_election_consumer_subscribe_failed",
			"module", "voter-experience/ballot-engine",
			"layer", "worker",
			"topic", statusChangedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("election state consumer subscription active",
		"event", "ballot_election_consumer_started",
		"module", "voter-experience/ballot-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c ElectionStateConsumer) handleStatusChanged(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("election status event dedupe failed",
			"event", "ballot_election_event_dedupe_failed",
			"module", "voter-experience/ballot-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("election status event replay skipped",
			"event", "ballot_election_status_replayed",
			"module", "voter-experience/ballot-engine",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		ElectionID   string `json:"election_id"`
		VotingStatus string `json:"voting_status"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("election status payload decode failed",
			"event", "ballot_election_status_decode_failed",
			"module", "voter-experience/ballot-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	status := entities.VotingStatus(strings.ToUpper(strings.TrimSpace(payload.VotingStatus)))
	if err := c.Projection.SetVotingStatus(ctx, strings.TrimSpace(payload.ElectionID), status); err != nil {
		logger.Error("election status projection update failed",
			"event", "ballot_election_status_update_failed",
			"module", "voter-experience/ballot-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"election_id", strings.TrimSpace(payload.ElectionID),
			"error", err.Error(),
		)
		return err
	}
	logger.Info("election status event consumed",
		"event", "ballot_election_status_consumed",
		"module", "voter-experience/ballot-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"election_id", strings.TrimSpace(payload.ElectionID),
		"voting_status", string(status),
	)
	return nil
}

func (c ElectionStateConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c ElectionStateConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
