package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCanTransitionVotingLifecycle(t *testing.T) {
	cases := []struct {
		from    VotingStatus
		to      VotingStatus
		allowed bool
	}{
		{VotingStatusNotStarted, VotingStatusOpen, true},
		{VotingStatusNotStarted, VotingStatusPaused, false},
		{VotingStatusNotStarted, VotingStatusClosed, false},
		{VotingStatusOpen, VotingStatusPaused, true},
		{VotingStatusOpen, VotingStatusClosed, true},
		{VotingStatusOpen, VotingStatusNotStarted, false},
		{VotingStatusPaused, VotingStatusOpen, true},
		{VotingStatusPaused, VotingStatusClosed, true},
		{VotingStatusClosed, VotingStatusOpen, false},
		{VotingStatusClosed, VotingStatusPaused, false},
	}
	for _, tc := range cases {
		event := ElectionEvent{VotingStatus: tc.from}
		if got := event.CanTransitionVoting(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestElectionEventValidateBasics(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	valid := ElectionEvent{TenantID: "tenant-1", Name: "Spring Election"}
	if !valid.ValidateBasics() {
		t.Fatalf("expected valid event")
	}
	if (ElectionEvent{Name: "Spring Election"}).ValidateBasics() {
		t.Fatalf("missing tenant must fail")
	}
	if (ElectionEvent{TenantID: "tenant-1", Name: "ab"}).ValidateBasics() {
		t.Fatalf("too-short name must fail")
	}
	ordered := ElectionEvent{TenantID: "tenant-1", Name: "Spring Election", StartDate: &start, EndDate: &end}
	if ordered.ValidateBasics() {
		t.Fatalf("end before start must fail")
	}
}

func validPayload() json.RawMessage {
	return json.RawMessage(`{
		"ID": "style-1",
		"ElectionID": "election-1",
		"EncryptionPolicy": "plaintext",
		"Contests": [
			{
				"ID": "mayor",
				"MinVotes": 1,
				"MaxVotes": 1,
				"Candidates": [{"ID": 11}, {"ID": 12}]
			}
		]
	}`)
}

func TestValidatePayloadAcceptsWellFormedDefinition(t *testing.T) {
	if !ValidatePayload(validPayload()) {
		t.Fatalf("well-formed payload must validate")
	}
}

func TestValidatePayloadRejections(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"unknown policy":    `{"EncryptionPolicy":"rot13","Contests":[{"ID":"c","MaxVotes":1,"Candidates":[{"ID":1}]}]}`,
		"no contests":       `{"EncryptionPolicy":"plaintext","Contests":[]}`,
		"duplicate contest": `{"EncryptionPolicy":"plaintext","Contests":[{"ID":"c","MaxVotes":1,"Candidates":[{"ID":1}]},{"ID":"c","MaxVotes":1,"Candidates":[{"ID":2}]}]}`,
		"min above max":     `{"EncryptionPolicy":"plaintext","Contests":[{"ID":"c","MinVotes":3,"MaxVotes":1,"Candidates":[{"ID":1}]}]}`,
		"zero max":          `{"EncryptionPolicy":"plaintext","Contests":[{"ID":"c","MaxVotes":0,"Candidates":[{"ID":1}]}]}`,
		"no candidates":     `{"EncryptionPolicy":"plaintext","Contests":[{"ID":"c","MaxVotes":1,"Candidates":[]}]}`,
		"dup candidate":     `{"EncryptionPolicy":"plaintext","Contests":[{"ID":"c","MaxVotes":1,"Candidates":[{"ID":1},{"ID":1}]}]}`,
	}
	for name, payload := range cases {
		if ValidatePayload(json.RawMessage(payload)) {
			t.Fatalf("%s: payload must be rejected", name)
		}
	}
}
