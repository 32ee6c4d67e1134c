package entities

import "time"

// EncryptedUnit is one ciphertext block of an auditable ballot. Under the
// single-contest policy each unit covers exactly one contest; under the
// multiple-contests policy a single unit covers every contest. Randomness is
// the replication material needed for audit re-encryption and is stripped
// before hashing.
type EncryptedUnit struct {
	ContestIDs []string `json:"contest_ids"`
	Ciphertext string   `json:"ciphertext"`
	Randomness string   `json:"randomness,omitempty"`
}

// AuditableBallot is the encoded artifact derived from a full set of contest
// selection states. It is immutable: only the codec produces it and only the
// codec and the crypto provider consume it.
type AuditableBallot struct {
	ElectionID       string                  `json:"election_id"`
	BallotStyleID    string                  `json:"ballot_style_id"`
	EncryptionPolicy EncryptionPolicy        `json:"encryption_policy"`
	Units            []EncryptedUnit         `json:"units,omitempty"`
	PlainSelections  []ContestSelectionState `json:"selections,omitempty"`
}

// HashableUnit is an encrypted unit with replication randomness removed.
type HashableUnit struct {
	ContestIDs []string `json:"contest_ids"`
	Ciphertext string   `json:"ciphertext"`
}

// HashableBallot is the canonical hash/cast content: the auditable ballot
// minus anything a verifier cannot reproduce from the published ballot.
type HashableBallot struct {
	ElectionID       string                  `json:"election_id"`
	BallotStyleID    string                  `json:"ballot_style_id"`
	EncryptionPolicy EncryptionPolicy        `json:"encryption_policy"`
	Units            []HashableUnit          `json:"units,omitempty"`
	PlainSelections  []ContestSelectionState `json:"selections,omitempty"`
}

// ToHashable strips replication randomness from every unit.
func (b AuditableBallot) ToHashable() HashableBallot {
	units := make([]HashableUnit, 0, len(b.Units))
	for _, unit := range b.Units {
		units = append(units, HashableUnit{
			ContestIDs: append([]string(nil), unit.ContestIDs...),
			Ciphertext: unit.Ciphertext,
		})
	}
	if len(units) == 0 {
		units = nil
	}
	return HashableBallot{
		ElectionID:       b.ElectionID,
		BallotStyleID:    b.BallotStyleID,
		EncryptionPolicy: b.EncryptionPolicy,
		Units:            units,
		PlainSelections:  b.PlainSelections,
	}
}

// SignedContent is a provider-signed hashable ballot.
type SignedContent struct {
	Content   string `json:"content"`
	Signature string `json:"signature"`
	PublicKey string `json:"public_key,omitempty"`
}

// CastVote is the persisted record returned by a successful cast submission.
type CastVote struct {
	ID         string
	ElectionID string
	BallotID   string
	Content    string
	IsDemo     bool
	CastAt     time.Time
}
