package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	electionservice "agora/contexts/election-administration/election-service"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	httptransport "agora/contexts/election-administration/election-service/transport/http"
)

func createTestEvent(t *testing.T, module electionservice.Module) httptransport.CreateEventResponse {
	t.Helper()
	resp, err := module.Handler.CreateEventHandler(context.Background(), httptransport.CreateEventRequest{
		TenantID:    "tenant-1",
		Name:        "Municipal Elections 2026",
		Description: "Spring municipal ballot",
		StartDate:   "2026-03-01T08:00:00Z",
		EndDate:     "2026-03-01T20:00:00Z",
		Elections: []httptransport.CreateElectionInputDTO{
			{Name: "Mayor", SortOrder: 1},
			{Name: "City Council", SortOrder: 2},
		},
	})
	if err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	return resp
}

func TestElectionEventCreateAndList(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)

	created := createTestEvent(t, module)
	if created.Event.VotingStatus != "NOT_STARTED" {
		t.Fatalf("new event must start NOT_STARTED, got %s", created.Event.VotingStatus)
	}
	if len(created.Elections) != 2 {
		t.Fatalf("expected 2 elections, got %d", len(created.Elections))
	}

	elections, err := module.Handler.ListElectionsHandler(context.Background(), created.Event.EventID)
	if err != nil {
		t.Fatalf("list elections failed: %v", err)
	}
	if len(elections.Items) != 2 || elections.Items[0].Name != "Mayor" {
		t.Fatalf("expected sort-ordered elections, got %+v", elections.Items)
	}

	events, err := module.Handler.ListEventsHandler(context.Background(), "tenant-1", "")
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events.Items) != 1 {
		t.Fatalf("expected 1 event for tenant, got %d", len(events.Items))
	}
}

func TestElectionEventCreateRejectsInvalidInput(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)

	_, err := module.Handler.CreateEventHandler(context.Background(), httptransport.CreateEventRequest{
		TenantID: "tenant-1",
		Name:     "ab",
	})
	if !errors.Is(err, domainerrors.ErrInvalidEventInput) {
		t.Fatalf("expected ErrInvalidEventInput, got %v", err)
	}
}

func TestVotingStatusLifecycle(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)
	created := createTestEvent(t, module)
	ctx := context.Background()

	// Pausing before voting opens is not a legal transition.
	_, err := module.Handler.PauseVotingHandler(ctx, created.Event.EventID)
	if !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	opened, err := module.Handler.OpenVotingHandler(ctx, created.Event.EventID)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened.Event.VotingStatus != "OPEN" {
		t.Fatalf("expected OPEN, got %s", opened.Event.VotingStatus)
	}

	paused, err := module.Handler.PauseVotingHandler(ctx, created.Event.EventID)
	if err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if paused.Event.VotingStatus != "PAUSED" {
		t.Fatalf("expected PAUSED, got %s", paused.Event.VotingStatus)
	}

	closed, err := module.Handler.CloseVotingHandler(ctx, created.Event.EventID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Event.VotingStatus != "CLOSED" {
		t.Fatalf("expected CLOSED, got %s", closed.Event.VotingStatus)
	}

	// Closed is terminal.
	_, err = module.Handler.OpenVotingHandler(ctx, created.Event.EventID)
	if !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("expected terminal CLOSED, got %v", err)
	}
}

func TestClosedEventIsNotEditable(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)
	created := createTestEvent(t, module)
	ctx := context.Background()

	if _, err := module.Handler.OpenVotingHandler(ctx, created.Event.EventID); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := module.Handler.CloseVotingHandler(ctx, created.Event.EventID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	name := "Renamed"
	_, err := module.Handler.UpdateEventHandler(ctx, created.Event.EventID, httptransport.UpdateEventRequest{Name: &name})
	if !errors.Is(err, domainerrors.ErrEventNotEditable) {
		t.Fatalf("expected ErrEventNotEditable, got %v", err)
	}
}

func ballotPayload() json.RawMessage {
	return json.RawMessage(`{
		"ID": "style-1",
		"ElectionID": "election-1",
		"EncryptionPolicy": "plaintext",
		"Contests": [
			{"ID": "mayor", "MinVotes": 1, "MaxVotes": 1, "Candidates": [{"ID": 11}, {"ID": 12}]}
		]
	}`)
}

func TestPublishBallotStyleAndVersionBump(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)
	created := createTestEvent(t, module)
	ctx := context.Background()
	electionID := created.Elections[0].ElectionID

	first, err := module.Handler.PublishBallotStyleHandler(ctx, electionID, httptransport.PublishBallotStyleRequest{
		TenantID: "tenant-1",
		AreaID:   "area-1",
		Payload:  ballotPayload(),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if first.Style.Version != 1 {
		t.Fatalf("first publish must be version 1, got %d", first.Style.Version)
	}

	second, err := module.Handler.PublishBallotStyleHandler(ctx, electionID, httptransport.PublishBallotStyleRequest{
		TenantID: "tenant-1",
		AreaID:   "area-1",
		Payload:  ballotPayload(),
	})
	if err != nil {
		t.Fatalf("re-publish failed: %v", err)
	}
	if second.Style.Version != 2 {
		t.Fatalf("re-publish must bump version, got %d", second.Style.Version)
	}
	if second.Style.StyleID != first.Style.StyleID {
		t.Fatalf("re-publish must keep the style id")
	}

	fetched, err := module.Handler.GetBallotStyleHandler(ctx, "tenant-1", electionID, "area-1")
	if err != nil {
		t.Fatalf("get style failed: %v", err)
	}
	if len(fetched.Style.Payload) == 0 {
		t.Fatalf("single get must include the payload")
	}
}

func TestPublishBallotStyleRejectsBadPayload(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)
	created := createTestEvent(t, module)

	_, err := module.Handler.PublishBallotStyleHandler(context.Background(), created.Elections[0].ElectionID,
		httptransport.PublishBallotStyleRequest{
			TenantID: "tenant-1",
			AreaID:   "area-1",
			Payload:  json.RawMessage(`{"EncryptionPolicy":"plaintext","Contests":[]}`),
		})
	if !errors.Is(err, domainerrors.ErrInvalidBallotPayload) {
		t.Fatalf("expected ErrInvalidBallotPayload, got %v", err)
	}
}

func TestPublishBallotStyleUnknownElection(t *testing.T) {
	module := electionservice.NewInMemoryModule(nil, nil)

	_, err := module.Handler.PublishBallotStyleHandler(context.Background(), "missing-election",
		httptransport.PublishBallotStyleRequest{
			TenantID: "tenant-1",
			AreaID:   "area-1",
			Payload:  ballotPayload(),
		})
	if !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected ErrElectionNotFound, got %v", err)
	}
}
