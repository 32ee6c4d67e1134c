package services

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

// ContestLayout is the render-ready ordering of one contest: categories in
// display order, each with its candidates in display order, plus sentinels
// split by their configured position.
type ContestLayout struct {
	Categories           []CategoryGroup
	NoCategoryCandidates []entities.Candidate
	SentinelsTop         []entities.Candidate
	SentinelsBottom      []entities.Candidate
}

// Orderer computes display order for contests and candidates. Results are
// memoized per contest for the session seed the orderer was built with, so
// repeated calls never reshuffle mid-session. The orderer is owned by a
// single voting session.
type Orderer struct {
	mu       sync.Mutex
	seed     int64
	layouts  map[string]ContestLayout
	contests map[string][]entities.Contest
}

func NewOrderer(seed int64) *Orderer {
	return &Orderer{
		seed:     seed,
		layouts:  map[string]ContestLayout{},
		contests: map[string][]entities.Contest{},
	}
}

// ContestLayout returns the memoized layout for a contest, computing it on
// first use. Calling twice with the same contest yields identical orderings.
func (o *Orderer) ContestLayout(contest entities.Contest) ContestLayout {
	o.mu.Lock()
	defer o.mu.Unlock()
	if layout, ok := o.layouts[contest.ID]; ok {
		return layout
	}
	layout := o.computeLayout(contest)
	o.layouts[contest.ID] = layout
	return layout
}

// OrderContests returns the ballot style's contests in display order,
// memoized per style.
func (o *Orderer) OrderContests(style entities.BallotStyle) []entities.Contest {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ordered, ok := o.contests[style.ID]; ok {
		return ordered
	}
	ordered := append([]entities.Contest(nil), style.Contests...)
	switch style.ContestsOrder {
	case entities.ContestsOrderAlphabetical:
		sort.SliceStable(ordered, func(i, j int) bool {
			return strings.ToLower(ordered[i].Name) < strings.ToLower(ordered[j].Name)
		})
	case entities.ContestsOrderRandom:
		o.shuffleContests(ordered, style.ID)
	default:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Presentation.SortOrder < ordered[j].Presentation.SortOrder
		})
	}
	o.contests[style.ID] = ordered
	return ordered
}

func (o *Orderer) computeLayout(contest entities.Contest) ContestLayout {
	categorization := Categorize(contest)
	layout := ContestLayout{
		NoCategoryCandidates: o.orderGroup(contest, categorization.NoCategoryCandidates, ""),
	}

	keys := append([]string(nil), categorization.CategoryKeys...)
	if contest.Presentation.ShuffleCategories {
		o.shuffleStrings(keys, contest.ID, "categories")
	} else {
		// Sort by the category's configured sort order (header candidate,
		// default 0), ties broken by original key order.
		sort.SliceStable(keys, func(i, j int) bool {
			return categorySortOrder(categorization.Categories[keys[i]]) <
				categorySortOrder(categorization.Categories[keys[j]])
		})
	}
	for _, key := range keys {
		group := categorization.Categories[key]
		if contest.Presentation.ShuffleCategories || containsFold(contest.Presentation.ShuffleCategoryList, key) {
			group.Candidates = o.shuffleCandidates(group.Candidates, contest.ID, key)
		} else {
			group.Candidates = o.orderGroup(contest, group.Candidates, key)
		}
		layout.Categories = append(layout.Categories, group)
	}

	for _, sentinel := range categorization.InvalidOrBlankCandidates {
		if sentinel.Presentation.InvalidVotePosition == entities.InvalidVotePositionTop {
			layout.SentinelsTop = append(layout.SentinelsTop, sentinel)
		} else {
			layout.SentinelsBottom = append(layout.SentinelsBottom, sentinel)
		}
	}
	return layout
}

func (o *Orderer) orderGroup(contest entities.Contest, candidates []entities.Candidate, groupKey string) []entities.Candidate {
	ordered := append([]entities.Candidate(nil), candidates...)
	switch contest.Presentation.CandidatesOrder {
	case entities.CandidatesOrderRandom:
		return o.shuffleCandidates(ordered, contest.ID, groupKey)
	default:
		// Fixed and custom both stable-sort by the configured sort order;
		// ties keep the input order.
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Presentation.SortOrder < ordered[j].Presentation.SortOrder
		})
		return ordered
	}
}

func (o *Orderer) shuffleCandidates(candidates []entities.Candidate, contestID string, groupKey string) []entities.Candidate {
	shuffled := append([]entities.Candidate(nil), candidates...)
	rng := o.rng(contestID, "candidates:"+groupKey)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func (o *Orderer) shuffleStrings(values []string, contestID string, scope string) {
	rng := o.rng(contestID, scope)
	rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

func (o *Orderer) shuffleContests(contests []entities.Contest, styleID string) {
	rng := o.rng(styleID, "contests")
	rng.Shuffle(len(contests), func(i, j int) {
		contests[i], contests[j] = contests[j], contests[i]
	})
}

// rng derives an independent deterministic stream per (session seed,
// contest, scope) so each group shuffles differently but reproducibly.
func (o *Orderer) rng(contestID string, scope string) *rand.Rand {
	digest := fnv.New64a()
	digest.Write([]byte(contestID))
	digest.Write([]byte{0})
	digest.Write([]byte(scope))
	return rand.New(rand.NewSource(o.seed ^ int64(digest.Sum64())))
}

func categorySortOrder(group CategoryGroup) int {
	if group.Header != nil {
		return group.Header.Presentation.SortOrder
	}
	return 0
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}
