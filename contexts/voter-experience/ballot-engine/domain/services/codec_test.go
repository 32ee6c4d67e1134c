package services

import (
	"strings"
	"testing"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

func TestRawChoiceVectorRoundTrip(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	selectCandidate(&state, 2, 0)
	selectCandidate(&state, 6, 1)
	for i := range state.Choices {
		if state.Choices[i].ID == 6 {
			state.Choices[i].WriteInText = "Jane Roe"
		}
	}

	vector, err := RawChoiceVector(contest, state)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeRawVector(contest, vector)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.IsExplicitInvalid {
		t.Fatalf("explicit invalid flag must survive as false")
	}
	bob, _ := decoded.Choice(2)
	if bob.Selected != 0 {
		t.Fatalf("expected rank 0 for candidate 2, got %d", bob.Selected)
	}
	writeIn, _ := decoded.Choice(6)
	if writeIn.Selected != 1 || writeIn.WriteInText != "Jane Roe" {
		t.Fatalf("write-in not restored: %+v", writeIn)
	}
	alice, _ := decoded.Choice(1)
	if alice.IsSelected() {
		t.Fatalf("unselected candidate must stay unselected")
	}
}

func TestRawChoiceVectorExplicitInvalidFlag(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	state.IsExplicitInvalid = true

	vector, err := RawChoiceVector(contest, state)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if vector[0] != 1 {
		t.Fatalf("explicit invalid must encode as leading 1, got %d", vector[0])
	}
	decoded, err := DecodeRawVector(contest, vector)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !decoded.IsExplicitInvalid {
		t.Fatalf("explicit invalid flag lost in round trip")
	}
}

func TestRawChoiceVectorPluralityCollapsesRanks(t *testing.T) {
	contest := fixtureContest()
	contest.CountingAlgorithm = "plurality-at-large"
	state := entities.NewContestSelectionState(contest)
	selectCandidate(&state, 1, 3)

	vector, err := RawChoiceVector(contest, state)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeRawVector(contest, vector)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	alice, _ := decoded.Choice(1)
	if alice.Selected != 0 {
		t.Fatalf("plurality must collapse rank to 0, got %d", alice.Selected)
	}
}

func TestRawChoiceVectorWriteInBudget(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	for i := range state.Choices {
		if state.Choices[i].ID == 6 {
			state.Choices[i].Selected = 0
			state.Choices[i].WriteInText = strings.Repeat("x", 29)
		}
	}

	if _, err := RawChoiceVector(contest, state); err == nil {
		t.Fatalf("29 bytes of text plus terminator must exceed the budget")
	}

	for i := range state.Choices {
		if state.Choices[i].ID == 6 {
			state.Choices[i].WriteInText = strings.Repeat("x", 28)
		}
	}
	if _, err := RawChoiceVector(contest, state); err != nil {
		t.Fatalf("28 bytes plus terminator must fit: %v", err)
	}
}

func TestAvailableWriteInBytes(t *testing.T) {
	contest := fixtureContest()
	state := entities.NewContestSelectionState(contest)
	if got := AvailableWriteInBytes(contest, state); got != 28 {
		t.Fatalf("empty write-in leaves budget minus terminator, got %d", got)
	}
	for i := range state.Choices {
		if state.Choices[i].ID == 6 {
			state.Choices[i].WriteInText = "abcde"
		}
	}
	if got := AvailableWriteInBytes(contest, state); got != 23 {
		t.Fatalf("expected 23 remaining bytes, got %d", got)
	}
}

func TestDecodeRawVectorRejectsShortVector(t *testing.T) {
	contest := fixtureContest()
	if _, err := DecodeRawVector(contest, []int{0, 0}); err == nil {
		t.Fatalf("short vector must fail decoding")
	}
}

func TestCanonicalStateSortsAndNormalizes(t *testing.T) {
	state := entities.ContestSelectionState{
		ContestID: "contest-1",
		Choices: []entities.Choice{
			{ID: 6, Selected: 0, WriteInText: "  Jane   Roe "},
			{ID: 1, Selected: -1},
		},
	}
	canonical := CanonicalState(state)
	if canonical.Choices[0].ID != 1 || canonical.Choices[1].ID != 6 {
		t.Fatalf("choices must sort by candidate id")
	}
	if canonical.Choices[1].WriteInText != "Jane Roe" {
		t.Fatalf("write-in text must normalize, got %q", canonical.Choices[1].WriteInText)
	}
	if state.Choices[0].ID != 6 {
		t.Fatalf("input state must not be mutated")
	}
}
