package commands

import (
	"encoding/json"
	"time"

	"agora/contexts/election-administration/election-service/ports"
)

func newElectionEnvelope(
	eventID string,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     electionID,
		Data:             payload,
	}, nil
}
