package commands

import (
	"encoding/json"
	"time"

	"agora/contexts/voter-experience/ballot-engine/ports"
)

func newBallotEnvelope(
	eventID string,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Cast events are partitioned by election for stable ordering on
	// election-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ballot-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     electionID,
		Data:             payload,
	}, nil
}
