package commands

import (
	"context"
	"testing"

	cryptoadapter "agora/contexts/voter-experience/ballot-engine/adapters/crypto"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

func codecStates(style entities.BallotStyle) []entities.ContestSelectionState {
	states := make([]entities.ContestSelectionState, 0, len(style.Contests))
	for _, contest := range style.Contests {
		states = append(states, entities.NewContestSelectionState(contest))
	}
	for i := range states {
		switch states[i].ContestID {
		case "mayor":
			setRank(&states[i], 11, 0)
		case "council":
			setRank(&states[i], 21, 0)
			setRank(&states[i], 24, 1)
			setWriteIn(&states[i], 24, "Jane Roe")
		}
	}
	return states
}

func setRank(state *entities.ContestSelectionState, candidateID int64, rank int) {
	for i := range state.Choices {
		if state.Choices[i].ID == candidateID {
			state.Choices[i].Selected = rank
		}
	}
}

func setWriteIn(state *entities.ContestSelectionState, candidateID int64, text string) {
	for i := range state.Choices {
		if state.Choices[i].ID == candidateID {
			state.Choices[i].WriteInText = text
		}
	}
}

func assertStatesEquivalent(t *testing.T, want []entities.ContestSelectionState, got []entities.ContestSelectionState) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d contests, got %d", len(want), len(got))
	}
	for _, wantState := range want {
		var gotState entities.ContestSelectionState
		found := false
		for _, candidate := range got {
			if candidate.ContestID == wantState.ContestID {
				gotState = candidate
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("contest %s missing from decoded states", wantState.ContestID)
		}
		for _, wantChoice := range wantState.Choices {
			gotChoice, ok := gotState.Choice(wantChoice.ID)
			if !ok {
				t.Fatalf("contest %s: candidate %d missing after round trip", wantState.ContestID, wantChoice.ID)
			}
			if gotChoice.Selected != wantChoice.Selected {
				t.Fatalf("contest %s candidate %d: selected %d, want %d",
					wantState.ContestID, wantChoice.ID, gotChoice.Selected, wantChoice.Selected)
			}
			if gotChoice.WriteInText != wantChoice.WriteInText {
				t.Fatalf("contest %s candidate %d: write-in %q, want %q",
					wantState.ContestID, wantChoice.ID, gotChoice.WriteInText, wantChoice.WriteInText)
			}
		}
	}
}

func TestEncodeDecodeRoundTripPerPolicy(t *testing.T) {
	policies := []entities.EncryptionPolicy{
		entities.EncryptionPolicySingleContest,
		entities.EncryptionPolicyMultiContests,
		entities.EncryptionPolicyPlaintext,
	}
	for _, policy := range policies {
		t.Run(string(policy), func(t *testing.T) {
			style := testStyle()
			style.EncryptionPolicy = policy
			style.PublicKey = entities.PublicKeyConfig{Key: "pk-test"}
			codec := BallotCodecUseCase{Crypto: cryptoadapter.NewProvider()}
			ctx := context.Background()
			states := codecStates(style)

			ballot, err := codec.Encode(ctx, states, style)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			switch policy {
			case entities.EncryptionPolicySingleContest:
				if len(ballot.Units) != len(style.Contests) || len(ballot.PlainSelections) != 0 {
					t.Fatalf("expected one unit per contest, got %d units %d plain",
						len(ballot.Units), len(ballot.PlainSelections))
				}
			case entities.EncryptionPolicyMultiContests:
				if len(ballot.Units) != 1 || len(ballot.Units[0].ContestIDs) != len(style.Contests) {
					t.Fatalf("expected one unit spanning every contest, got %+v", ballot.Units)
				}
			case entities.EncryptionPolicyPlaintext:
				if len(ballot.Units) != 0 || len(ballot.PlainSelections) != len(style.Contests) {
					t.Fatalf("expected plaintext selections only, got %d units %d plain",
						len(ballot.Units), len(ballot.PlainSelections))
				}
			}

			decoded := codec.Decode(ctx, ballot, style)
			if decoded == nil {
				t.Fatalf("decode produced nothing")
			}
			assertStatesEquivalent(t, states, decoded)

			// Re-encoding the decoded states yields the same content hash.
			first, err := codec.Hash(ballot)
			if err != nil {
				t.Fatalf("hash failed: %v", err)
			}
			again, err := codec.Encode(ctx, decoded, style)
			if err != nil {
				t.Fatalf("re-encode failed: %v", err)
			}
			second, err := codec.Hash(again)
			if err != nil {
				t.Fatalf("hash failed: %v", err)
			}
			if first != second {
				t.Fatalf("hash must be stable across encode/decode/encode")
			}
		})
	}
}

func TestDecodeUnknownPolicyYieldsNothing(t *testing.T) {
	style := testStyle()
	codec := BallotCodecUseCase{Crypto: cryptoadapter.NewProvider()}
	ballot := entities.AuditableBallot{
		ElectionID:       "election-1",
		EncryptionPolicy: entities.EncryptionPolicy("rot13"),
	}
	if decoded := codec.Decode(context.Background(), ballot, style); decoded != nil {
		t.Fatalf("unknown policy must decode to nothing, got %+v", decoded)
	}
}
