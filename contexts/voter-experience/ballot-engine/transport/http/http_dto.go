package http

import "agora/contexts/voter-experience/ballot-engine/domain/entities"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LoadBallotRequest struct {
	TenantID   string `json:"tenant_id"`
	ElectionID string `json:"election_id"`
	AreaID     string `json:"area_id"`
	Force      bool   `json:"force,omitempty"`
}

type ContestSummary struct {
	ContestID      string `json:"contest_id"`
	Name           string `json:"name"`
	MinVotes       int    `json:"min_votes"`
	MaxVotes       int    `json:"max_votes"`
	CandidateCount int    `json:"candidate_count"`
}

type LoadBallotResponse struct {
	BallotStyleID    string           `json:"ballot_style_id"`
	ElectionID       string           `json:"election_id"`
	Title            string           `json:"title"`
	EncryptionPolicy string           `json:"encryption_policy"`
	Demo             bool             `json:"demo"`
	Contests         []ContestSummary `json:"contests"`
}

type SetChoiceRequest struct {
	CandidateID int64  `json:"candidate_id"`
	Selected    int    `json:"selected"`
	WriteInText string `json:"write_in_text,omitempty"`
}

type SetExplicitInvalidRequest struct {
	Invalid bool `json:"invalid"`
}

type SetWriteInRequest struct {
	CandidateID int64  `json:"candidate_id"`
	Text        string `json:"text"`
}

// SelectionResponse wraps the engine's wire-format selection state. The
// embedded state shape is the shared contract and is returned verbatim.
type SelectionResponse struct {
	State   entities.ContestSelectionState `json:"state"`
	Refused bool                           `json:"refused,omitempty"`
}

type SelectionListResponse struct {
	States []entities.ContestSelectionState `json:"states"`
}

type ReviewRequest struct {
	Override bool `json:"override,omitempty"`
}

type ReviewResponse struct {
	BallotID        string                    `json:"ballot_id,omitempty"`
	DialogRequired  bool                      `json:"dialog_required"`
	BlockedContests []string                  `json:"blocked_contests,omitempty"`
	Ballot          *entities.AuditableBallot `json:"ballot,omitempty"`
}

type CastResponse struct {
	CastVoteID string `json:"cast_vote_id"`
	BallotID   string `json:"ballot_id"`
	Replayed   bool   `json:"replayed"`
	Demo       bool   `json:"demo"`
}

type AuditResponse struct {
	BallotID  string                   `json:"ballot_id"`
	Ballot    entities.AuditableBallot `json:"ballot"`
	Content   string                   `json:"content"`
	Signature string                   `json:"signature"`
	PublicKey string                   `json:"public_key,omitempty"`
}

type InterpretResponse struct {
	States []entities.ContestSelectionState `json:"states"`
}

type WriteInCapacityResponse struct {
	ContestID      string `json:"contest_id"`
	AvailableBytes int    `json:"available_bytes"`
}

type BlankCheckResponse struct {
	ContestID string `json:"contest_id"`
	IsBlank   bool   `json:"is_blank"`
}
