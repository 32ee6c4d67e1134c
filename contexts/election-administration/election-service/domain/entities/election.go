package entities

import (
	"strings"
	"time"
)

type EventStatus string
type VotingStatus string

const (
	EventStatusConfigCreated EventStatus = "config_created"
	EventStatusArchived      EventStatus = "archived"

	VotingStatusNotStarted VotingStatus = "NOT_STARTED"
	VotingStatusOpen       VotingStatus = "OPEN"
	VotingStatusPaused     VotingStatus = "PAUSED"
	VotingStatusClosed     VotingStatus = "CLOSED"
)

// ElectionEvent is the top-level configuration unit of the admin console. One
// event groups the elections voters see together and carries the voting
// status every downstream module keys off.
type ElectionEvent struct {
	EventID      string
	TenantID     string
	Name         string
	Description  string
	Status       EventStatus
	VotingStatus VotingStatus
	StartDate    *time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e ElectionEvent) ValidateBasics() bool {
	name := strings.TrimSpace(e.Name)
	if strings.TrimSpace(e.TenantID) == "" {
		return false
	}
	if name == "" || len(name) < 3 || len(name) > 200 {
		return false
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return false
	}
	return true
}

// CanTransitionVoting encodes the voting lifecycle: NOT_STARTED opens once,
// OPEN and PAUSED flip back and forth, CLOSED is terminal.
func (e ElectionEvent) CanTransitionVoting(to VotingStatus) bool {
	switch e.VotingStatus {
	case VotingStatusNotStarted:
		return to == VotingStatusOpen
	case VotingStatusOpen:
		return to == VotingStatusPaused || to == VotingStatusClosed
	case VotingStatusPaused:
		return to == VotingStatusOpen || to == VotingStatusClosed
	default:
		return false
	}
}

func IsSupportedVotingStatus(value VotingStatus) bool {
	switch value {
	case VotingStatusNotStarted, VotingStatusOpen, VotingStatusPaused, VotingStatusClosed:
		return true
	default:
		return false
	}
}

// Election is one contestable election inside an event. The voter-facing
// engine sees elections through ballot styles, never directly.
type Election struct {
	ElectionID  string
	EventID     string
	TenantID    string
	Name        string
	Description string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Election) ValidateBasics() bool {
	name := strings.TrimSpace(e.Name)
	return strings.TrimSpace(e.TenantID) != "" &&
		strings.TrimSpace(e.EventID) != "" &&
		name != "" &&
		len(name) <= 200
}
