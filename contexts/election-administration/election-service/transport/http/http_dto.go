package http

import "encoding/json"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionInputDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
}

type CreateEventRequest struct {
	TenantID    string                   `json:"tenant_id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	StartDate   string                   `json:"start_date,omitempty"`
	EndDate     string                   `json:"end_date,omitempty"`
	Elections   []CreateElectionInputDTO `json:"elections,omitempty"`
}

type UpdateEventRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

type EventDTO struct {
	EventID      string `json:"event_id"`
	TenantID     string `json:"tenant_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	VotingStatus string `json:"voting_status"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type ElectionDTO struct {
	ElectionID  string `json:"election_id"`
	EventID     string `json:"event_id"`
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type CreateEventResponse struct {
	Event     EventDTO      `json:"event"`
	Elections []ElectionDTO `json:"elections"`
}

type GetEventResponse struct {
	Event EventDTO `json:"event"`
}

type ListEventsResponse struct {
	Items []EventDTO `json:"items"`
}

type ListElectionsResponse struct {
	Items []ElectionDTO `json:"items"`
}

type PublishBallotStyleRequest struct {
	TenantID string          `json:"tenant_id"`
	AreaID   string          `json:"area_id"`
	Payload  json.RawMessage `json:"payload"`
}

type BallotStyleDTO struct {
	StyleID     string          `json:"style_id"`
	TenantID    string          `json:"tenant_id"`
	EventID     string          `json:"event_id"`
	ElectionID  string          `json:"election_id"`
	AreaID      string          `json:"area_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Version     int             `json:"version"`
	PublishedAt string          `json:"published_at"`
}

type PublishBallotStyleResponse struct {
	Style BallotStyleDTO `json:"style"`
}

type GetBallotStyleResponse struct {
	Style BallotStyleDTO `json:"style"`
}

type ListBallotStylesResponse struct {
	Items []BallotStyleDTO `json:"items"`
}
