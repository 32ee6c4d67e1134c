package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	"agora/contexts/voter-experience/ballot-engine/domain/services"
)

// Provider is the reference ballot crypto implementation behind the
// CryptoProvider port. Real elections swap in the external ElGamal provider;
// this one produces deterministic, reversible ciphertext blocks so encode,
// decode and hash round-trips are exact. Hashing and signing follow the same
// shape as the real provider: a digest over the hashable ballot JSON.
type Provider struct{}

func NewProvider() Provider {
	return Provider{}
}

// contestBlock is the plaintext layout of one contest inside a ciphertext.
type contestBlock struct {
	ContestID string `json:"contest_id"`
	Values    []int  `json:"values"`
}

func (Provider) EncryptBallotSelection(
	selection entities.ContestSelectionState,
	contest entities.Contest,
	style entities.BallotStyle,
) (entities.EncryptedUnit, error) {
	block, err := buildBlock(contest, selection)
	if err != nil {
		return entities.EncryptedUnit{}, err
	}
	ciphertext, err := sealBlocks([]contestBlock{block})
	if err != nil {
		return entities.EncryptedUnit{}, err
	}
	return entities.EncryptedUnit{
		ContestIDs: []string{contest.ID},
		Ciphertext: ciphertext,
		Randomness: commitment(ciphertext, style.PublicKey.Key),
	}, nil
}

func (Provider) EncryptMultiBallotSelection(
	selections []entities.ContestSelectionState,
	style entities.BallotStyle,
) (entities.EncryptedUnit, error) {
	blocks := make([]contestBlock, 0, len(style.Contests))
	contestIDs := make([]string, 0, len(style.Contests))
	for _, contest := range style.Contests {
		selection, found := selectionFor(selections, contest.ID)
		if !found {
			selection = entities.NewContestSelectionState(contest)
		}
		block, err := buildBlock(contest, selection)
		if err != nil {
			return entities.EncryptedUnit{}, err
		}
		blocks = append(blocks, block)
		contestIDs = append(contestIDs, contest.ID)
	}
	ciphertext, err := sealBlocks(blocks)
	if err != nil {
		return entities.EncryptedUnit{}, err
	}
	return entities.EncryptedUnit{
		ContestIDs: contestIDs,
		Ciphertext: ciphertext,
		Randomness: commitment(ciphertext, style.PublicKey.Key),
	}, nil
}

// DecodeAuditableBallot rebuilds selection states from a ballot. Any
// malformed or unknown-policy ballot yields (nil, false), never a panic.
func (Provider) DecodeAuditableBallot(
	ballot entities.AuditableBallot,
	style entities.BallotStyle,
) ([]entities.ContestSelectionState, bool) {
	switch ballot.EncryptionPolicy {
	case entities.EncryptionPolicyPlaintext:
		states := make([]entities.ContestSelectionState, 0, len(ballot.PlainSelections))
		for _, state := range ballot.PlainSelections {
			states = append(states, state.Clone())
		}
		return states, true
	case entities.EncryptionPolicySingleContest, entities.EncryptionPolicyMultiContests:
		var states []entities.ContestSelectionState
		for _, unit := range ballot.Units {
			blocks, err := openBlocks(unit.Ciphertext)
			if err != nil {
				return nil, false
			}
			for _, block := range blocks {
				contest, found := style.Contest(block.ContestID)
				if !found {
					return nil, false
				}
				state, err := services.DecodeRawVector(contest, block.Values)
				if err != nil {
					return nil, false
				}
				states = append(states, state)
			}
		}
		return states, true
	default:
		return nil, false
	}
}

// HashBallot is a pure digest of the hashable ballot content.
func (Provider) HashBallot(ballot entities.HashableBallot) (string, error) {
	content, err := json.Marshal(ballot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}

func (Provider) SignHashableBallot(
	ballot entities.HashableBallot,
	style entities.BallotStyle,
) (entities.SignedContent, error) {
	content, err := json.Marshal(ballot)
	if err != nil {
		return entities.SignedContent{}, err
	}
	sum := sha256.Sum256(append(content, []byte(style.PublicKey.Key)...))
	return entities.SignedContent{
		Content:   string(content),
		Signature: base64.StdEncoding.EncodeToString(sum[:]),
		PublicKey: style.PublicKey.Key,
	}, nil
}

func buildBlock(contest entities.Contest, selection entities.ContestSelectionState) (contestBlock, error) {
	vector, err := services.RawChoiceVector(contest, selection)
	if err != nil {
		return contestBlock{}, err
	}
	return contestBlock{ContestID: contest.ID, Values: vector}, nil
}

func sealBlocks(blocks []contestBlock) (string, error) {
	plaintext, err := json.Marshal(blocks)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(plaintext), nil
}

func openBlocks(ciphertext string) ([]contestBlock, error) {
	plaintext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, err
	}
	var blocks []contestBlock
	if err := json.Unmarshal(plaintext, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func commitment(ciphertext string, key string) string {
	sum := sha256.Sum256([]byte(ciphertext + "|" + key))
	return hex.EncodeToString(sum[:])
}

func selectionFor(states []entities.ContestSelectionState, contestID string) (entities.ContestSelectionState, bool) {
	for _, state := range states {
		if state.ContestID == contestID {
			return state, true
		}
	}
	return entities.ContestSelectionState{}, false
}
