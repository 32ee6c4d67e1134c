package services

import (
	"testing"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
)

func candidateIDs(candidates []entities.Candidate) []int64 {
	ids := make([]int64, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.ID)
	}
	return ids
}

func equalIDs(a []int64, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOrdererFixedOrderSortsBySortOrder(t *testing.T) {
	contest := fixtureContest()
	contest.Presentation.CandidatesOrder = entities.CandidatesOrderFixed

	layout := NewOrderer(1).ContestLayout(contest)
	ids := candidateIDs(layout.NoCategoryCandidates)
	if !equalIDs(ids, []int64{2, 1, 6}) {
		t.Fatalf("expected sort-order ordering [2 1 6], got %v", ids)
	}
}

func TestOrdererRandomOrderIsDeterministicPerSeed(t *testing.T) {
	contest := fixtureContest()
	contest.Presentation.CandidatesOrder = entities.CandidatesOrderRandom

	first := NewOrderer(42).ContestLayout(contest)
	second := NewOrderer(42).ContestLayout(contest)
	if !equalIDs(candidateIDs(first.NoCategoryCandidates), candidateIDs(second.NoCategoryCandidates)) {
		t.Fatalf("same seed must produce identical shuffles")
	}
}

func TestOrdererMemoizesLayoutWithinSession(t *testing.T) {
	contest := fixtureContest()
	contest.Presentation.CandidatesOrder = entities.CandidatesOrderRandom

	orderer := NewOrderer(7)
	first := orderer.ContestLayout(contest)
	second := orderer.ContestLayout(contest)
	if !equalIDs(candidateIDs(first.NoCategoryCandidates), candidateIDs(second.NoCategoryCandidates)) {
		t.Fatalf("repeated layout calls must not reshuffle")
	}
}

func TestOrdererSplitsSentinelsByPosition(t *testing.T) {
	layout := NewOrderer(1).ContestLayout(fixtureContest())
	if len(layout.SentinelsTop) != 1 || layout.SentinelsTop[0].ID != 7 {
		t.Fatalf("expected invalid sentinel on top, got %v", candidateIDs(layout.SentinelsTop))
	}
	if len(layout.SentinelsBottom) != 1 || layout.SentinelsBottom[0].ID != 8 {
		t.Fatalf("expected blank sentinel on bottom, got %v", candidateIDs(layout.SentinelsBottom))
	}
}

func TestOrdererContestOrderAlphabetical(t *testing.T) {
	style := entities.BallotStyle{
		ID:            "style-1",
		ContestsOrder: entities.ContestsOrderAlphabetical,
		Contests: []entities.Contest{
			{ID: "c1", Name: "Zoning Board"},
			{ID: "c2", Name: "assembly"},
			{ID: "c3", Name: "Mayor"},
		},
	}
	ordered := NewOrderer(3).OrderContests(style)
	if ordered[0].ID != "c2" || ordered[1].ID != "c3" || ordered[2].ID != "c1" {
		t.Fatalf("expected case-insensitive alphabetical order, got %s %s %s", ordered[0].ID, ordered[1].ID, ordered[2].ID)
	}
}

func TestOrdererContestOrderRandomStablePerStyle(t *testing.T) {
	style := entities.BallotStyle{
		ID:            "style-2",
		ContestsOrder: entities.ContestsOrderRandom,
		Contests: []entities.Contest{
			{ID: "c1"}, {ID: "c2"}, {ID: "c3"}, {ID: "c4"},
		},
	}
	orderer := NewOrderer(11)
	first := orderer.OrderContests(style)
	second := orderer.OrderContests(style)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("memoized contest order changed between calls")
		}
	}
}
