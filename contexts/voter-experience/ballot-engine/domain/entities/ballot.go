package entities

import "strings"

type CandidatesOrder string

const (
	CandidatesOrderFixed  CandidatesOrder = "fixed"
	CandidatesOrderCustom CandidatesOrder = "custom"
	CandidatesOrderRandom CandidatesOrder = "random"
)

type SelectionPolicy string

const (
	SelectionPolicyRadio      SelectionPolicy = "radio"
	SelectionPolicyCumulative SelectionPolicy = "cumulative"
)

type InvalidVotePolicy string

const (
	InvalidVotePolicyAllowed    InvalidVotePolicy = "allowed"
	InvalidVotePolicyWarn       InvalidVotePolicy = "warn"
	InvalidVotePolicyWarnBoth   InvalidVotePolicy = "warn-invalid-implicit-and-explicit"
	InvalidVotePolicyNotAllowed InvalidVotePolicy = "not-allowed"
)

type BlankVotePolicy string

const (
	BlankVotePolicyAllowed    BlankVotePolicy = "allowed"
	BlankVotePolicyWarn       BlankVotePolicy = "warn"
	BlankVotePolicyNotAllowed BlankVotePolicy = "not-allowed"
)

type OvervotePolicy string

const (
	OvervotePolicyWarn    OvervotePolicy = "warn"
	OvervotePolicyDisable OvervotePolicy = "disable"
)

type InvalidVotePosition string

const (
	InvalidVotePositionTop    InvalidVotePosition = "top"
	InvalidVotePositionBottom InvalidVotePosition = "bottom"
)

type EncryptionPolicy string

const (
	EncryptionPolicySingleContest EncryptionPolicy = "single-contest"
	EncryptionPolicyMultiContests EncryptionPolicy = "multiple-contests"
	EncryptionPolicyPlaintext     EncryptionPolicy = "plaintext"
)

type VotingStatus string

const (
	VotingStatusNotStarted VotingStatus = "NOT_STARTED"
	VotingStatusOpen       VotingStatus = "OPEN"
	VotingStatusPaused     VotingStatus = "PAUSED"
	VotingStatusClosed     VotingStatus = "CLOSED"
)

// CandidateRole collapses the combinatorially-exclusive presentation flags
// into a closed variant assigned once at categorization time.
type CandidateRole string

const (
	RoleRegular         CandidateRole = "regular"
	RoleWriteIn         CandidateRole = "write_in"
	RoleExplicitInvalid CandidateRole = "explicit_invalid"
	RoleExplicitBlank   CandidateRole = "explicit_blank"
	RoleCategoryHeader  CandidateRole = "category_header"
)

type CandidatePresentation struct {
	IsWriteIn           bool
	IsExplicitInvalid   bool
	IsExplicitBlank     bool
	IsCategoryList      bool
	Subtype             string
	InvalidVotePosition InvalidVotePosition
	IsDisabled          bool
	SortOrder           int
}

type Candidate struct {
	ID            int64
	Name          string
	Description   string
	CandidateType string // category key; empty means uncategorized
	Presentation  CandidatePresentation
}

// Role derives the closed variant from the presentation flags. Sentinel flags
// win over category-header and write-in markers, matching categorization.
func (c Candidate) Role() CandidateRole {
	switch {
	case c.Presentation.IsExplicitInvalid:
		return RoleExplicitInvalid
	case c.Presentation.IsExplicitBlank:
		return RoleExplicitBlank
	case c.Presentation.IsCategoryList:
		return RoleCategoryHeader
	case c.Presentation.IsWriteIn:
		return RoleWriteIn
	default:
		return RoleRegular
	}
}

func (c Candidate) IsSentinel() bool {
	return c.Presentation.IsExplicitInvalid || c.Presentation.IsExplicitBlank
}

type ContestPresentation struct {
	CandidatesOrder      CandidatesOrder
	ShuffleCategories    bool
	ShuffleCategoryList  []string
	EnableCheckableLists bool
	InvalidVotePolicy    InvalidVotePolicy
	BlankVotePolicy      BlankVotePolicy
	OvervotePolicy       OvervotePolicy
	SelectionPolicy      SelectionPolicy
	AllowWriteIns        bool
	WriteInTextRequired  bool
	Columns              int
	SortOrder            int
}

type Contest struct {
	ID                string
	Name              string
	Description       string
	MinVotes          int
	MaxVotes          int
	CountingAlgorithm string
	Candidates        []Candidate
	Presentation      ContestPresentation
}

// IsRadioSelection reports whether the contest behaves as an exactly-one
// choice contest: selecting a candidate deselects every other one.
func (c Contest) IsRadioSelection() bool {
	return c.MaxVotes == 1 && c.Presentation.SelectionPolicy == SelectionPolicyRadio
}

// IsPlurality reports whether the counting algorithm discards rank
// information, which changes how selections are encoded.
func (c Contest) IsPlurality() bool {
	return strings.EqualFold(strings.TrimSpace(c.CountingAlgorithm), "plurality-at-large")
}

func (c Contest) Candidate(candidateID int64) (Candidate, bool) {
	for _, candidate := range c.Candidates {
		if candidate.ID == candidateID {
			return candidate, true
		}
	}
	return Candidate{}, false
}

func (c Contest) ExplicitInvalidCandidate() (Candidate, bool) {
	for _, candidate := range c.Candidates {
		if candidate.Presentation.IsExplicitInvalid && !candidate.Presentation.IsDisabled {
			return candidate, true
		}
	}
	return Candidate{}, false
}

type PublicKeyConfig struct {
	Key    string
	IsDemo bool
}

type ContestsOrder string

const (
	ContestsOrderAlphabetical ContestsOrder = "alphabetical"
	ContestsOrderCustom       ContestsOrder = "custom"
	ContestsOrderRandom       ContestsOrder = "random"
)

// BallotStyle binds an election definition to a (tenant, election, area)
// tuple. Immutable once loaded for a voting session.
type BallotStyle struct {
	ID               string
	TenantID         string
	ElectionEventID  string
	ElectionID       string
	AreaID           string
	Title            string
	Contests         []Contest
	ContestsOrder    ContestsOrder
	ContestsPerPage  int
	EncryptionPolicy EncryptionPolicy
	PublicKey        PublicKeyConfig
}

func (b BallotStyle) Contest(contestID string) (Contest, bool) {
	for _, contest := range b.Contests {
		if contest.ID == contestID {
			return contest, true
		}
	}
	return Contest{}, false
}
