package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

type dedupEntry struct {
	payloadHash string
	expiresAt   time.Time
}

// Store is the in-memory adapter backing every ballot-engine port for tests
// and demo wiring. One store instance owns one voting session's selection
// state; mutations hold the write lock for the whole transition, so no torn
// read is observable.
type Store struct {
	mu          sync.RWMutex
	catalog     map[string]entities.BallotStyle
	loaded      map[string]entities.BallotStyle
	selections  map[string]map[string]entities.ContestSelectionState
	touched     map[string]map[string]bool
	sessions    map[string]ports.VotingSession
	statuses    map[string]entities.VotingStatus
	castVotes   map[string]entities.CastVote
	outbox      []ports.OutboxRecord
	dedup       map[string]dedupEntry
	sessionSeed int64
}

// NewStore seeds the ballot style catalog. The session shuffle seed defaults
// to the construction time and can be pinned for deterministic tests.
func NewStore(styles []entities.BallotStyle) *Store {
	store := &Store{
		catalog:     map[string]entities.BallotStyle{},
		loaded:      map[string]entities.BallotStyle{},
		selections:  map[string]map[string]entities.ContestSelectionState{},
		touched:     map[string]map[string]bool{},
		sessions:    map[string]ports.VotingSession{},
		statuses:    map[string]entities.VotingStatus{},
		castVotes:   map[string]entities.CastVote{},
		dedup:       map[string]dedupEntry{},
		sessionSeed: time.Now().UnixNano(),
	}
	for _, style := range styles {
		store.catalog[styleKey(style.TenantID, style.ElectionID, style.AreaID)] = style
	}
	return store
}

func styleKey(tenantID string, electionID string, areaID string) string {
	return strings.TrimSpace(tenantID) + "|" + strings.TrimSpace(electionID) + "|" + strings.TrimSpace(areaID)
}

// SetSessionSeed pins the shuffle seed, used by tests that assert ordering.
func (s *Store) SetSessionSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionSeed = seed
}

func (s *Store) SessionSeed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionSeed
}

// --- ports.BallotStyleSource

func (s *Store) GetBallotStyle(_ context.Context, tenantID string, electionID string, areaID string) (entities.BallotStyle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	style, found := s.catalog[styleKey(tenantID, electionID, areaID)]
	if !found {
		return entities.BallotStyle{}, domainerrors.ErrBallotStyleNotFound
	}
	return style, nil
}

// SeedBallotStyle adds a style to the catalog after construction.
func (s *Store) SeedBallotStyle(style entities.BallotStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog[styleKey(style.TenantID, style.ElectionID, style.AreaID)] = style
}

// --- ports.StyleCache

func (s *Store) GetLoadedStyle(_ context.Context, electionID string) (entities.BallotStyle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	style, found := s.loaded[strings.TrimSpace(electionID)]
	return style, found, nil
}

func (s *Store) SaveLoadedStyle(_ context.Context, style entities.BallotStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded[strings.TrimSpace(style.ElectionID)] = style
	return nil
}

// --- ports.SelectionRepository

func (s *Store) GetSelection(_ context.Context, electionID string, contestID string) (entities.ContestSelectionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contests, found := s.selections[strings.TrimSpace(electionID)]
	if !found {
		return entities.ContestSelectionState{}, false, nil
	}
	state, found := contests[strings.TrimSpace(contestID)]
	if !found {
		return entities.ContestSelectionState{}, false, nil
	}
	return state.Clone(), true, nil
}

func (s *Store) ListSelections(_ context.Context, electionID string) ([]entities.ContestSelectionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contests := s.selections[strings.TrimSpace(electionID)]
	if len(contests) == 0 {
		return nil, nil
	}
	// Return in the loaded style's contest order when available so callers
	// see a stable listing.
	states := make([]entities.ContestSelectionState, 0, len(contests))
	if style, ok := s.loaded[strings.TrimSpace(electionID)]; ok {
		for _, contest := range style.Contests {
			if state, found := contests[contest.ID]; found {
				states = append(states, state.Clone())
			}
		}
		if len(states) == len(contests) {
			return states, nil
		}
		states = states[:0]
	}
	for _, state := range contests {
		states = append(states, state.Clone())
	}
	return states, nil
}

func (s *Store) SaveSelection(_ context.Context, electionID string, state entities.ContestSelectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election := strings.TrimSpace(electionID)
	if s.selections[election] == nil {
		s.selections[election] = map[string]entities.ContestSelectionState{}
	}
	s.selections[election][state.ContestID] = state.Clone()
	return nil
}

func (s *Store) ReplaceSelections(_ context.Context, electionID string, states []entities.ContestSelectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election := strings.TrimSpace(electionID)
	contests := make(map[string]entities.ContestSelectionState, len(states))
	for _, state := range states {
		contests[state.ContestID] = state.Clone()
	}
	s.selections[election] = contests
	s.touched[election] = map[string]bool{}
	return nil
}

func (s *Store) DeleteSelections(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election := strings.TrimSpace(electionID)
	delete(s.selections, election)
	delete(s.touched, election)
	return nil
}

func (s *Store) IsTouched(_ context.Context, electionID string, contestID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched[strings.TrimSpace(electionID)][strings.TrimSpace(contestID)], nil
}

func (s *Store) MarkTouched(_ context.Context, electionID string, contestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election := strings.TrimSpace(electionID)
	if s.touched[election] == nil {
		s.touched[election] = map[string]bool{}
	}
	s.touched[election][strings.TrimSpace(contestID)] = true
	return nil
}

func (s *Store) ClearTouched(_ context.Context, electionID string, contestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.touched[strings.TrimSpace(electionID)], strings.TrimSpace(contestID))
	return nil
}

// --- ports.SessionRepository

func (s *Store) GetSession(_ context.Context, electionID string) (ports.VotingSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, found := s.sessions[strings.TrimSpace(electionID)]
	return session, found, nil
}

func (s *Store) SaveSession(_ context.Context, session ports.VotingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[strings.TrimSpace(session.ElectionID)] = session
	return nil
}

// --- ports.ElectionStatusSource / ports.ElectionStatusProjection

func (s *Store) GetVotingStatus(_ context.Context, electionID string) (entities.VotingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, found := s.statuses[strings.TrimSpace(electionID)]
	if !found {
		return entities.VotingStatusNotStarted, nil
	}
	return status, nil
}

func (s *Store) SetVotingStatus(_ context.Context, electionID string, status entities.VotingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[strings.TrimSpace(electionID)] = status
	return nil
}

// --- ports.CastGateway

func (s *Store) SubmitCastVote(ctx context.Context, electionID string, ballotID string, content string) (entities.CastVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election := strings.TrimSpace(electionID)
	if existing, found := s.castVotes[election]; found {
		if existing.BallotID == strings.TrimSpace(ballotID) {
			return existing, nil
		}
		return entities.CastVote{}, domainerrors.ErrConflict
	}
	castVote := entities.CastVote{
		ID:         uuid.NewString(),
		ElectionID: election,
		BallotID:   strings.TrimSpace(ballotID),
		Content:    content,
		CastAt:     time.Now().UTC(),
	}
	s.castVotes[election] = castVote
	return castVote, nil
}

// CastVoteForElection exposes the stored record for assertions.
func (s *Store) CastVoteForElection(electionID string) (entities.CastVote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	castVote, found := s.castVotes[strings.TrimSpace(electionID)]
	return castVote, found
}

// --- ports.OutboxWriter / ports.OutboxRepository

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.outbox = append(s.outbox, ports.OutboxRecord{
		OutboxID:  uuid.NewString(),
		EventType: event.EventType,
		Payload:   payload,
		Status:    "pending",
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]ports.OutboxRecord, 0, limit)
	for _, row := range s.outbox {
		if row.Status != "pending" {
			continue
		}
		pending = append(pending, row)
		if len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			published := publishedAt
			s.outbox[i].Status = "published"
			s.outbox[i].PublishedAt = &published
			return nil
		}
	}
	return nil
}

// --- ports.EventDedupStore

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, found := s.dedup[eventID]; found && entry.expiresAt.After(time.Now().UTC()) {
		return true, nil
	}
	s.dedup[eventID] = dedupEntry{payloadHash: payloadHash, expiresAt: expiresAt}
	return false, nil
}

// --- ports.Clock / ports.IDGenerator

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
