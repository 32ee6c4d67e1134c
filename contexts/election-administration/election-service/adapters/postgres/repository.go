package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/election-administration/election-service/domain/entities"
	domainerrors "agora/contexts/election-administration/election-service/domain/errors"
	"agora/contexts/election-administration/election-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository persists election configuration: events, elections, published
// ballot styles, and the service's outbox. The ballot_styles table it writes
// is the same one the voter-facing engine reads its styles from.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateEvent(ctx context.Context, event entities.ElectionEvent) error {
	row := eventModelFromEntity(event)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidEventInput
		}
		return r.logError("election_repo_create_event_failed", err, "event_id", row.EventID)
	}
	return nil
}

func (r *Repository) UpdateEvent(ctx context.Context, event entities.ElectionEvent) error {
	row := eventModelFromEntity(event)
	result := r.db.WithContext(ctx).
		Model(&eventModel{}).
		Where("event_id = ?", row.EventID).
		Updates(map[string]any{
			"name":          row.Name,
			"description":   row.Description,
			"status":        row.Status,
			"voting_status": row.VotingStatus,
			"start_date":    row.StartDate,
			"end_date":      row.EndDate,
			"updated_at":    row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("election_repo_update_event_failed", result.Error, "event_id", row.EventID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEventNotFound
	}
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, eventID string) (entities.ElectionEvent, error) {
	var row eventModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ElectionEvent{}, domainerrors.ErrEventNotFound
		}
		return entities.ElectionEvent{}, r.logError("election_repo_get_event_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListEvents(ctx context.Context, filter ports.EventFilter) ([]entities.ElectionEvent, error) {
	query := r.db.WithContext(ctx).Model(&eventModel{})
	if tenantID := strings.TrimSpace(filter.TenantID); tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if filter.VotingStatus != "" {
		query = query.Where("voting_status = ?", string(filter.VotingStatus))
	}
	var rows []eventModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_events_failed", err)
	}
	items := make([]entities.ElectionEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateElection(ctx context.Context, election entities.Election) error {
	row := electionModel{
		ElectionID:  strings.TrimSpace(election.ElectionID),
		EventID:     strings.TrimSpace(election.EventID),
		TenantID:    strings.TrimSpace(election.TenantID),
		Name:        election.Name,
		Description: election.Description,
		SortOrder:   election.SortOrder,
		CreatedAt:   election.CreatedAt.UTC(),
		UpdatedAt:   election.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidElectionInput
		}
		return r.logError("election_repo_create_election_failed", err, "election_id", row.ElectionID)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("election_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListElectionsByEvent(ctx context.Context, eventID string) ([]entities.Election, error) {
	var rows []electionModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("sort_order ASC, election_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("election_repo_list_elections_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpsertBallotStyle(ctx context.Context, record entities.BallotStyleRecord) error {
	row := ballotStyleModel{
		ID:              strings.TrimSpace(record.StyleID),
		TenantID:        strings.TrimSpace(record.TenantID),
		ElectionEventID: strings.TrimSpace(record.EventID),
		ElectionID:      strings.TrimSpace(record.ElectionID),
		AreaID:          strings.TrimSpace(record.AreaID),
		Payload:         append([]byte(nil), record.Payload...),
		Version:         record.Version,
		PublishedAt:     record.PublishedAt.UTC(),
		UpdatedAt:       record.UpdatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "election_id"}, {Name: "area_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"election_event_id": row.ElectionEventID,
			"payload":           row.Payload,
			"version":           row.Version,
			"published_at":      row.PublishedAt,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_upsert_style_failed", create.Error, "style_id", row.ID)
	}
	return nil
}

func (r *Repository) GetBallotStyle(ctx context.Context, tenantID string, electionID string, areaID string) (entities.BallotStyleRecord, error) {
	var row ballotStyleModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("area_id = ?", strings.TrimSpace(areaID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BallotStyleRecord{}, domainerrors.ErrBallotStyleNotFound
		}
		return entities.BallotStyleRecord{}, r.logError("election_repo_get_style_failed", err,
			"tenant_id", strings.TrimSpace(tenantID),
			"election_id", strings.TrimSpace(electionID),
			"area_id", strings.TrimSpace(areaID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListBallotStylesByElection(ctx context.Context, electionID string) ([]entities.BallotStyleRecord, error) {
	var rows []ballotStyleModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("area_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("election_repo_list_styles_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.BallotStyleRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// --- outbox

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("election_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrInvalidEventInput
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxRecord{
			OutboxID:    row.OutboxID,
			EventType:   row.EventType,
			Payload:     append([]byte(nil), row.Payload...),
			Status:      row.Status,
			PublishedAt: normalizeOptionalTime(row.PublishedAt),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEventNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-administration/election-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type eventModel struct {
	EventID      string     `gorm:"column:event_id;primaryKey"`
	TenantID     string     `gorm:"column:tenant_id"`
	Name         string     `gorm:"column:name"`
	Description  string     `gorm:"column:description"`
	Status       string     `gorm:"column:status"`
	VotingStatus string     `gorm:"column:voting_status"`
	StartDate    *time.Time `gorm:"column:start_date"`
	EndDate      *time.Time `gorm:"column:end_date"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (eventModel) TableName() string {
	return "election_events"
}

func eventModelFromEntity(event entities.ElectionEvent) eventModel {
	return eventModel{
		EventID:      strings.TrimSpace(event.EventID),
		TenantID:     strings.TrimSpace(event.TenantID),
		Name:         event.Name,
		Description:  event.Description,
		Status:       string(event.Status),
		VotingStatus: string(event.VotingStatus),
		StartDate:    normalizeOptionalTime(event.StartDate),
		EndDate:      normalizeOptionalTime(event.EndDate),
		CreatedAt:    event.CreatedAt.UTC(),
		UpdatedAt:    event.UpdatedAt.UTC(),
	}
}

func (m eventModel) toEntity() entities.ElectionEvent {
	return entities.ElectionEvent{
		EventID:      m.EventID,
		TenantID:     m.TenantID,
		Name:         m.Name,
		Description:  m.Description,
		Status:       entities.EventStatus(m.Status),
		VotingStatus: entities.VotingStatus(m.VotingStatus),
		StartDate:    normalizeOptionalTime(m.StartDate),
		EndDate:      normalizeOptionalTime(m.EndDate),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type electionModel struct {
	ElectionID  string    `gorm:"column:election_id;primaryKey"`
	EventID     string    `gorm:"column:event_id"`
	TenantID    string    `gorm:"column:tenant_id"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	SortOrder   int       `gorm:"column:sort_order"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:  m.ElectionID,
		EventID:     m.EventID,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type ballotStyleModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	TenantID        string    `gorm:"column:tenant_id"`
	ElectionEventID string    `gorm:"column:election_event_id"`
	ElectionID      string    `gorm:"column:election_id"`
	AreaID          string    `gorm:"column:area_id"`
	Payload         []byte    `gorm:"column:payload"`
	Version         int       `gorm:"column:version"`
	PublishedAt     time.Time `gorm:"column:published_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (ballotStyleModel) TableName() string {
	return "ballot_styles"
}

func (m ballotStyleModel) toEntity() entities.BallotStyleRecord {
	return entities.BallotStyleRecord{
		StyleID:     m.ID,
		TenantID:    m.TenantID,
		EventID:     m.ElectionEventID,
		ElectionID:  m.ElectionID,
		AreaID:      m.AreaID,
		Payload:     append(json.RawMessage(nil), m.Payload...),
		Version:     m.Version,
		PublishedAt: m.PublishedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock and UUIDGenerator satisfy the Clock and IDGenerator ports for
// production wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.EventRepository = (*Repository)(nil)
var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.BallotStyleRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
