package entities

// Message keys shared with the interpretation/encoding boundary. These are
// part of the wire contract and must not be renamed.
const (
	MsgSelectedMin        = "errors.implicit.selectedMin"
	MsgSelectedMax        = "errors.implicit.selectedMax"
	MsgExplicitNotAllowed = "errors.explicit.notAllowed"
	MsgEncodingFailed     = "errors.encoding.failed"
	MsgEncodingWriteIn    = "errors.encoding.writeInOverflow"
)

type ValidationErrorKind string

const (
	ValidationImplicit ValidationErrorKind = "implicit"
	ValidationExplicit ValidationErrorKind = "explicit"
	ValidationEncoding ValidationErrorKind = "encoding"
)

// ValidationError is a structured validation finding. Findings are data, not
// Go errors: soft findings are dismissible until the contest is touched,
// hard findings always block the review transition.
type ValidationError struct {
	Kind        ValidationErrorKind `json:"error_type"`
	Message     string              `json:"message"`
	MessageMap  map[string]string   `json:"message_map,omitempty"`
	CandidateID *int64              `json:"answer_id,omitempty"`
	Hard        bool                `json:"-"`
}

// Choice records the voter's position on one candidate. Selected is -1 when
// unselected and a 0-based rank otherwise.
type Choice struct {
	ID          int64  `json:"id"`
	Selected    int    `json:"selected"`
	WriteInText string `json:"write_in_text,omitempty"`
}

func (c Choice) IsSelected() bool {
	return c.Selected > -1
}

// ContestSelectionState is the authoritative per-contest selection record.
// The JSON shape is the contract shared with the external interpretation and
// encoding functions and must not be restructured.
type ContestSelectionState struct {
	ContestID         string            `json:"contest_id"`
	IsExplicitInvalid bool              `json:"is_explicit_invalid"`
	InvalidErrors     []ValidationError `json:"invalid_errors"`
	Choices           []Choice          `json:"choices"`
}

// NewContestSelectionState builds the initial state for a contest: one entry
// per non-disabled candidate, all unselected.
func NewContestSelectionState(contest Contest) ContestSelectionState {
	choices := make([]Choice, 0, len(contest.Candidates))
	for _, candidate := range contest.Candidates {
		if candidate.Presentation.IsDisabled {
			continue
		}
		choices = append(choices, Choice{ID: candidate.ID, Selected: -1})
	}
	return ContestSelectionState{
		ContestID:     contest.ID,
		InvalidErrors: []ValidationError{},
		Choices:       choices,
	}
}

func (s ContestSelectionState) Choice(candidateID int64) (Choice, bool) {
	for _, choice := range s.Choices {
		if choice.ID == candidateID {
			return choice, true
		}
	}
	return Choice{}, false
}

// Clone returns a deep copy so stored state never aliases caller slices.
func (s ContestSelectionState) Clone() ContestSelectionState {
	out := s
	out.Choices = append([]Choice(nil), s.Choices...)
	out.InvalidErrors = make([]ValidationError, 0, len(s.InvalidErrors))
	for _, finding := range s.InvalidErrors {
		copied := finding
		if finding.MessageMap != nil {
			copied.MessageMap = make(map[string]string, len(finding.MessageMap))
			for lang, text := range finding.MessageMap {
				copied.MessageMap[lang] = text
			}
		}
		if finding.CandidateID != nil {
			id := *finding.CandidateID
			copied.CandidateID = &id
		}
		out.InvalidErrors = append(out.InvalidErrors, copied)
	}
	return out
}

// HasAnySelection reports whether any candidate is currently selected.
// Touch tracking lives in the session store, not here: a contest stays
// touched even after the voter deselects everything.
func (s ContestSelectionState) HasAnySelection() bool {
	for _, choice := range s.Choices {
		if choice.IsSelected() {
			return true
		}
	}
	return false
}

// HasHardErrors reports whether any current finding blocks review.
func (s ContestSelectionState) HasHardErrors() bool {
	for _, finding := range s.InvalidErrors {
		if finding.Hard {
			return true
		}
	}
	return false
}
