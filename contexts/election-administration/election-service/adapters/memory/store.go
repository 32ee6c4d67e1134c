package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"
)

type Store struct {
	mu sync.RWMutex

	events    map[string]entities.ElectionEvent
	elections map[string]entities.Election
	styles    map[string]entities.BallotStyleRecord
	outbox    []ports.OutboxRecord
}

func NewStore(seed []entities.ElectionEvent) *Store {
	events := make(map[string]entities.ElectionEvent, len(seed))
	for _, item := range seed {
		events[item.EventID] = item
	}
	return &Store{
		events:    events,
		elections: make(map[string]entities.Election),
		styles:    make(map[string]entities.BallotStyleRecord),
	}
}

func styleKey(tenantID string, electionID string, areaID string) string {
	return strings.TrimSpace(tenantID) + "|" + strings.TrimSpace(electionID) + "|" + strings.TrimSpace(areaID)
}

func (s *Store) CreateEvent(_ context.Context, event entities.ElectionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.EventID]; exists {
		return domainerrors.ErrInvalidEventInput
	}
	s.events[event.EventID] = event
	return nil
}

func (s *Store) UpdateEvent(_ context.Context, event entities.ElectionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.EventID]; !exists {
		return domainerrors.ErrEventNotFound
	}
	s.events[event.EventID] = event
	return nil
}

func (s *Store) GetEvent(_ context.Context, eventID string) (entities.ElectionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.events[strings.TrimSpace(eventID)]
	if !exists {
		return entities.ElectionEvent{}, domainerrors.ErrEventNotFound
	}
	return item, nil
}

func (s *Store) ListEvents(_ context.Context, filter ports.EventFilter) ([]entities.ElectionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ElectionEvent, 0, len(s.events))
	for _, event := range s.events {
		if strings.TrimSpace(filter.TenantID) != "" && event.TenantID != strings.TrimSpace(filter.TenantID) {
			continue
		}
		if filter.VotingStatus != "" && event.VotingStatus != filter.VotingStatus {
			continue
		}
		items = append(items, event)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CreateElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.elections[election.ElectionID]; exists {
		return domainerrors.ErrInvalidElectionInput
	}
	if _, exists := s.events[election.EventID]; !exists {
		return domainerrors.ErrEventNotFound
	}
	s.elections[election.ElectionID] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.elections[strings.TrimSpace(electionID)]
	if !exists {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return item, nil
}

func (s *Store) ListElectionsByEvent(_ context.Context, eventID string) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Election, 0)
	for _, item := range s.elections {
		if item.EventID == strings.TrimSpace(eventID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].ElectionID < items[j].ElectionID
	})
	return items, nil
}

func (s *Store) UpsertBallotStyle(_ context.Context, record entities.BallotStyleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Payload = append(json.RawMessage(nil), record.Payload...)
	s.styles[styleKey(record.TenantID, record.ElectionID, record.AreaID)] = record
	return nil
}

func (s *Store) GetBallotStyle(_ context.Context, tenantID string, electionID string, areaID string) (entities.BallotStyleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.styles[styleKey(tenantID, electionID, areaID)]
	if !exists {
		return entities.BallotStyleRecord{}, domainerrors.ErrBallotStyleNotFound
	}
	return item, nil
}

func (s *Store) ListBallotStylesByElection(_ context.Context, electionID string) ([]entities.BallotStyleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.BallotStyleRecord, 0)
	for _, item := range s.styles {
		if item.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AreaID < items[j].AreaID
	})
	return items, nil
}

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

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
