package entities

import (
	"encoding/json"
	"time"
)

// BallotStyleRecord binds a published ballot definition payload to one
// (tenant, election, area) tuple. The payload is opaque to the console except
// for the structural checks performed at publish time; the voting engine
// consumes it verbatim.
type BallotStyleRecord struct {
	StyleID     string
	TenantID    string
	EventID     string
	ElectionID  string
	AreaID      string
	Payload     json.RawMessage
	Version     int
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// ballotDefinition mirrors the slice of the ballot payload the console
// verifies before accepting a publish. Field names match the engine's ballot
// model so a payload that fails here would also fail to load there.
type ballotDefinition struct {
	ID               string
	ElectionID       string
	EncryptionPolicy string
	Contests         []struct {
		ID         string
		MinVotes   int
		MaxVotes   int
		Candidates []struct {
			ID int64
		}
	}
}

// ValidatePayload proves the payload parses into the typed ballot model and
// holds the structural invariants the engine assumes: non-empty unique
// contest ids, min <= max with max >= 1, unique candidate ids per contest,
// and a known encryption policy.
func ValidatePayload(payload json.RawMessage) bool {
	var definition ballotDefinition
	if err := json.Unmarshal(payload, &definition); err != nil {
		return false
	}
	switch definition.EncryptionPolicy {
	case "single-contest", "multiple-contests", "plaintext":
	default:
		return false
	}
	if len(definition.Contests) == 0 {
		return false
	}
	contestIDs := make(map[string]bool, len(definition.Contests))
	for _, contest := range definition.Contests {
		if contest.ID == "" || contestIDs[contest.ID] {
			return false
		}
		contestIDs[contest.ID] = true
		if contest.MinVotes < 0 || contest.MaxVotes < 1 || contest.MinVotes > contest.MaxVotes {
			return false
		}
		if len(contest.Candidates) == 0 {
			return false
		}
		candidateIDs := make(map[int64]bool, len(contest.Candidates))
		for _, candidate := range contest.Candidates {
			if candidateIDs[candidate.ID] {
				return false
			}
			candidateIDs[candidate.ID] = true
		}
	}
	return true
}
