package services

import (
	"strings"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

// CategoryGroup is one named candidate grouping, optionally with a header
// candidate representing "vote for the whole list".
type CategoryGroup struct {
	Key        string
	Header     *entities.Candidate
	Candidates []entities.Candidate
}

// Categorization partitions a contest's non-disabled candidates into
// sentinels, uncategorized candidates, and category groups. CategoryKeys
// preserves first-appearance order for deterministic tie-breaking downstream.
type Categorization struct {
	InvalidOrBlankCandidates []entities.Candidate
	NoCategoryCandidates     []entities.Candidate
	Categories               map[string]CategoryGroup
	CategoryKeys             []string
}

// Categorize is a pure function of the contest. Candidate order inside each
// partition follows input order; display ordering is the orderer's job.
func Categorize(contest entities.Contest) Categorization {
	result := Categorization{
		InvalidOrBlankCandidates: []entities.Candidate{},
		NoCategoryCandidates:     []entities.Candidate{},
		Categories:               map[string]CategoryGroup{},
		CategoryKeys:             []string{},
	}
	for _, candidate := range contest.Candidates {
		if candidate.Presentation.IsDisabled {
			continue
		}
		// Sentinel flags win: a flagged candidate never lands in a category
		// even when a category key is set.
		if candidate.IsSentinel() {
			result.InvalidOrBlankCandidates = append(result.InvalidOrBlankCandidates, candidate)
			continue
		}
		key := strings.TrimSpace(candidate.CandidateType)
		if key == "" {
			result.NoCategoryCandidates = append(result.NoCategoryCandidates, candidate)
			continue
		}
		group, exists := result.Categories[key]
		if !exists {
			group = CategoryGroup{Key: key}
			result.CategoryKeys = append(result.CategoryKeys, key)
		}
		if candidate.Presentation.IsCategoryList && group.Header == nil {
			header := candidate
			group.Header = &header
		} else {
			group.Candidates = append(group.Candidates, candidate)
		}
		result.Categories[key] = group
	}
	return result
}
