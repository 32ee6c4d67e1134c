package services

import (
	"strings"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

// Verdict is the full validation result for one contest. It is recomputed
// from scratch on every mutation so state and findings never drift.
type Verdict struct {
	Errors           []entities.ValidationError
	SelectedCount    int
	IsChecked        bool
	IsRadioSelection bool
	DisableSelect    bool
}

// Evaluate applies the contest's policy rules to the current selection.
// touched gates the under-minimum finding: a voter who has never selected
// anything in this contest is not warned about being under minimum.
func Evaluate(contest entities.Contest, state entities.ContestSelectionState, touched bool) Verdict {
	verdict := Verdict{
		Errors:           []entities.ValidationError{},
		SelectedCount:    CountSelected(contest, state),
		IsRadioSelection: contest.IsRadioSelection(),
	}
	verdict.IsChecked = state.IsExplicitInvalid || verdict.SelectedCount > 0
	verdict.DisableSelect = contest.Presentation.OvervotePolicy == entities.OvervotePolicyDisable &&
		verdict.SelectedCount >= contest.MaxVotes

	if state.IsExplicitInvalid {
		if contest.Presentation.InvalidVotePolicy == entities.InvalidVotePolicyNotAllowed {
			verdict.Errors = append(verdict.Errors, entities.ValidationError{
				Kind:    entities.ValidationExplicit,
				Message: entities.MsgExplicitNotAllowed,
				Hard:    true,
			})
		}
		return verdict
	}

	if verdict.SelectedCount > contest.MaxVotes {
		verdict.Errors = append(verdict.Errors, entities.ValidationError{
			Kind:    entities.ValidationImplicit,
			Message: entities.MsgSelectedMax,
			Hard:    true,
		})
	}
	if touched && verdict.SelectedCount < contest.MinVotes {
		verdict.Errors = append(verdict.Errors, entities.ValidationError{
			Kind:    entities.ValidationImplicit,
			Message: entities.MsgSelectedMin,
			Hard:    true,
		})
	}
	return verdict
}

// CountSelected counts candidates that count toward min/max: selected,
// non-sentinel, and for write-ins with the text-required flag set, carrying
// non-empty normalized text.
func CountSelected(contest entities.Contest, state entities.ContestSelectionState) int {
	count := 0
	for _, choice := range state.Choices {
		if !choice.IsSelected() {
			continue
		}
		candidate, found := contest.Candidate(choice.ID)
		if !found || candidate.IsSentinel() {
			continue
		}
		if candidate.Presentation.IsWriteIn &&
			contest.Presentation.WriteInTextRequired &&
			NormalizeWriteIn(choice.WriteInText) == "" {
			continue
		}
		count++
	}
	return count
}

// CheckIsBlank reports whether the contest carries no vote at all: nothing
// selected and no explicit invalid flag.
func CheckIsBlank(state entities.ContestSelectionState) bool {
	return !state.IsExplicitInvalid && !state.HasAnySelection()
}

// AllowsInvalidOverride reports whether the contest policy lets the voter
// confirm past implicit min/max findings instead of being hard-stopped.
func AllowsInvalidOverride(contest entities.Contest) bool {
	switch contest.Presentation.InvalidVotePolicy {
	case entities.InvalidVotePolicyAllowed,
		entities.InvalidVotePolicyWarn,
		entities.InvalidVotePolicyWarnBoth:
		return true
	default:
		return false
	}
}

// VotingNotAllowedNext reports whether the verdict must refuse the review
// transition outright, with no override dialog.
func VotingNotAllowedNext(contest entities.Contest, verdict Verdict) bool {
	for _, finding := range verdict.Errors {
		if !finding.Hard {
			continue
		}
		if finding.Kind == entities.ValidationExplicit {
			return true
		}
		if !AllowsInvalidOverride(contest) {
			return true
		}
	}
	return false
}

// VotingErrorDialog reports whether the verdict blocks review but the policy
// permits an explicit voter override via confirmation dialog.
func VotingErrorDialog(contest entities.Contest, verdict Verdict) bool {
	if VotingNotAllowedNext(contest, verdict) {
		return false
	}
	for _, finding := range verdict.Errors {
		if finding.Hard {
			return true
		}
	}
	return false
}

// NormalizeWriteIn trims and collapses internal whitespace before storage.
func NormalizeWriteIn(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
