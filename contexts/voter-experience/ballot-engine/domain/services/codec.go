package services

import (
	"fmt"
	"sort"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

// writeInByteBudget is the estimated number of bytes available for write-in
// text inside one contest's encoded plaintext block.
const writeInByteBudget = 29

// CanonicalState returns a copy of the selection with choices in canonical
// candidate-id-ascending order and write-in text normalized. Display order
// never reaches the cryptographic payload.
func CanonicalState(state entities.ContestSelectionState) entities.ContestSelectionState {
	canonical := state.Clone()
	for i := range canonical.Choices {
		canonical.Choices[i].WriteInText = NormalizeWriteIn(canonical.Choices[i].WriteInText)
	}
	sort.SliceStable(canonical.Choices, func(i, j int) bool {
		return canonical.Choices[i].ID < canonical.Choices[j].ID
	})
	return canonical
}

// RawChoiceVector flattens a contest selection into the numeric layout the
// crypto provider encodes: the explicit-invalid flag, one value per
// candidate in id-ascending order, then each write-in's UTF-8 bytes with a
// terminating zero. Plurality contests collapse ranks to 0/1; every other
// counting algorithm keeps the rank as rank+1 so 0 stays "unselected".
func RawChoiceVector(contest entities.Contest, state entities.ContestSelectionState) ([]int, error) {
	canonical := CanonicalState(state)
	vector := make([]int, 0, len(canonical.Choices)+1)
	if canonical.IsExplicitInvalid {
		vector = append(vector, 1)
	} else {
		vector = append(vector, 0)
	}

	plurality := contest.IsPlurality()
	for _, choice := range canonical.Choices {
		switch {
		case !choice.IsSelected():
			vector = append(vector, 0)
		case plurality:
			vector = append(vector, 1)
		default:
			vector = append(vector, choice.Selected+1)
		}
	}

	used := 0
	for _, choice := range canonical.Choices {
		candidate, found := contest.Candidate(choice.ID)
		if !found || !candidate.Presentation.IsWriteIn {
			continue
		}
		text := []byte(choice.WriteInText)
		used += len(text) + 1
		if used > writeInByteBudget {
			return nil, fmt.Errorf("write-in text exceeds %d byte budget", writeInByteBudget)
		}
		for _, b := range text {
			vector = append(vector, int(b))
		}
		vector = append(vector, 0)
	}
	return vector, nil
}

// DecodeRawVector rebuilds a contest selection from its raw numeric layout.
// It is the exact inverse of RawChoiceVector for every valid selection.
func DecodeRawVector(contest entities.Contest, vector []int) (entities.ContestSelectionState, error) {
	state := entities.NewContestSelectionState(contest)
	sort.SliceStable(state.Choices, func(i, j int) bool {
		return state.Choices[i].ID < state.Choices[j].ID
	})
	if len(vector) < 1+len(state.Choices) {
		return entities.ContestSelectionState{}, fmt.Errorf(
			"raw vector too short: have %d values, need %d", len(vector), 1+len(state.Choices))
	}
	state.IsExplicitInvalid = vector[0] != 0

	plurality := contest.IsPlurality()
	for i := range state.Choices {
		value := vector[1+i]
		switch {
		case value == 0:
			state.Choices[i].Selected = -1
		case plurality:
			state.Choices[i].Selected = 0
		default:
			state.Choices[i].Selected = value - 1
		}
	}

	rest := vector[1+len(state.Choices):]
	for i := range state.Choices {
		candidate, found := contest.Candidate(state.Choices[i].ID)
		if !found || !candidate.Presentation.IsWriteIn {
			continue
		}
		text := make([]byte, 0, len(rest))
		terminated := false
		for len(rest) > 0 {
			value := rest[0]
			rest = rest[1:]
			if value == 0 {
				terminated = true
				break
			}
			if value < 0 || value > 255 {
				return entities.ContestSelectionState{}, fmt.Errorf("write-in byte out of range: %d", value)
			}
			text = append(text, byte(value))
		}
		if !terminated {
			return entities.ContestSelectionState{}, fmt.Errorf("unterminated write-in text for candidate %d", state.Choices[i].ID)
		}
		state.Choices[i].WriteInText = string(text)
	}
	return state, nil
}

// AvailableWriteInBytes estimates how many bytes of write-in text remain for
// the contest given what is already typed. Each write-in costs its text plus
// a terminating zero.
func AvailableWriteInBytes(contest entities.Contest, state entities.ContestSelectionState) int {
	used := 0
	for _, choice := range state.Choices {
		candidate, found := contest.Candidate(choice.ID)
		if !found || !candidate.Presentation.IsWriteIn {
			continue
		}
		used += len(NormalizeWriteIn(choice.WriteInText)) + 1
	}
	remaining := writeInByteBudget - used
	if remaining < 0 {
		return 0
	}
	return remaining
}
