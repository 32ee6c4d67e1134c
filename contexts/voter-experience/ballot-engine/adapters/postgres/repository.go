package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	domainerrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	"agora/contexts/voter-experience/ballot-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the durable side of the ballot engine: cast votes, the
// ballot style catalog, the election status projection, outbox and event
// dedup. Per-session selection state never touches the database; it lives in
// the session-owned memory store.
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

// SubmitCastVote persists the cast record. Re-submitting the same ballot for
// the same election replays the stored record; a different ballot for an
// already-cast election is a conflict.
func (r *Repository) SubmitCastVote(ctx context.Context, electionID string, ballotID string, content string) (entities.CastVote, error) {
	row := castVoteModel{
		ID:         uuid.NewString(),
		ElectionID: strings.TrimSpace(electionID),
		BallotID:   strings.TrimSpace(ballotID),
		Content:    content,
		CastAt:     time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return entities.CastVote{}, domainerrors.ErrConflict
		}
		return entities.CastVote{}, r.logError("ballot_repo_submit_cast_failed", create.Error,
			"election_id", row.ElectionID,
			"ballot_id", row.BallotID,
		)
	}
	if create.RowsAffected > 0 {
		return row.toEntity(), nil
	}

	var existing castVoteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", row.ElectionID).
		First(&existing).Error; err != nil {
		return entities.CastVote{}, r.logError("ballot_repo_load_existing_cast_failed", err,
			"election_id", row.ElectionID,
		)
	}
	if existing.BallotID != row.BallotID {
		return entities.CastVote{}, domainerrors.ErrConflict
	}
	return existing.toEntity(), nil
}

func (r *Repository) GetCastVote(ctx context.Context, electionID string) (entities.CastVote, bool, error) {
	var row castVoteModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CastVote{}, false, nil
		}
		return entities.CastVote{}, false, r.logError("ballot_repo_get_cast_vote_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), true, nil
}

// GetBallotStyle reads the style payload published by the admin module.
func (r *Repository) GetBallotStyle(ctx context.Context, tenantID string, electionID string, areaID string) (entities.BallotStyle, error) {
	var row ballotStyleModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("area_id = ?", strings.TrimSpace(areaID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BallotStyle{}, domainerrors.ErrBallotStyleNotFound
		}
		return entities.BallotStyle{}, r.logError("ballot_repo_get_style_failed", err,
			"tenant_id", strings.TrimSpace(tenantID),
			"election_id", strings.TrimSpace(electionID),
			"area_id", strings.TrimSpace(areaID),
		)
	}
	var style entities.BallotStyle
	if err := json.Unmarshal(row.Payload, &style); err != nil {
		return entities.BallotStyle{}, r.logError("ballot_repo_style_decode_failed", err,
			"ballot_style_id", row.ID,
		)
	}
	return style, nil
}

// SaveBallotStyle upserts a style payload; used by the admin publish flow.
func (r *Repository) SaveBallotStyle(ctx context.Context, style entities.BallotStyle) error {
	payload, err := json.Marshal(style)
	if err != nil {
		return r.logError("ballot_repo_style_encode_failed", err, "ballot_style_id", style.ID)
	}
	row := ballotStyleModel{
		ID:              strings.TrimSpace(style.ID),
		TenantID:        strings.TrimSpace(style.TenantID),
		ElectionEventID: strings.TrimSpace(style.ElectionEventID),
		ElectionID:      strings.TrimSpace(style.ElectionID),
		AreaID:          strings.TrimSpace(style.AreaID),
		Payload:         payload,
		UpdatedAt:       time.Now().UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "election_id"}, {Name: "area_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"election_event_id": row.ElectionEventID,
			"payload":           row.Payload,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_save_style_failed", create.Error, "ballot_style_id", row.ID)
	}
	return nil
}

// --- election status projection

func (r *Repository) GetVotingStatus(ctx context.Context, electionID string) (entities.VotingStatus, error) {
	var row electionStatusModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingStatusNotStarted, nil
		}
		return "", r.logError("ballot_repo_get_status_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return entities.VotingStatus(row.VotingStatus), nil
}

func (r *Repository) SetVotingStatus(ctx context.Context, electionID string, status entities.VotingStatus) error {
	row := electionStatusModel{
		ElectionID:   strings.TrimSpace(electionID),
		VotingStatus: string(status),
		UpdatedAt:    time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "election_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"voting_status": row.VotingStatus,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_set_status_failed", create.Error,
			"election_id", row.ElectionID,
			"voting_status", row.VotingStatus,
		)
	}
	return nil
}

// --- outbox

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("ballot_repo_append_outbox_marshal_failed", err,
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
		return r.logError("ballot_repo_append_outbox_insert_failed", create.Error,
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
		return r.logError("ballot_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
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
		return nil, r.logError("ballot_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("ballot_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// --- event dedup

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("ballot_repo_reserve_event_failed", create.Error,
			"event_id", row.EventID,
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("ballot_repo_reserve_event_load_existing_failed", err,
			"event_id", row.EventID,
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "voter-experience/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

type castVoteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ElectionID string    `gorm:"column:election_id"`
	BallotID   string    `gorm:"column:ballot_id"`
	Content    string    `gorm:"column:content"`
	IsDemo     bool      `gorm:"column:is_demo"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (castVoteModel) TableName() string {
	return "cast_votes"
}

func (m castVoteModel) toEntity() entities.CastVote {
	return entities.CastVote{
		ID:         m.ID,
		ElectionID: m.ElectionID,
		BallotID:   m.BallotID,
		Content:    m.Content,
		IsDemo:     m.IsDemo,
		CastAt:     m.CastAt.UTC(),
	}
}

type ballotStyleModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	TenantID        string    `gorm:"column:tenant_id"`
	ElectionEventID string    `gorm:"column:election_event_id"`
	ElectionID      string    `gorm:"column:election_id"`
	AreaID          string    `gorm:"column:area_id"`
	Payload         []byte    `gorm:"column:payload"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (ballotStyleModel) TableName() string {
	return "ballot_styles"
}

type electionStatusModel struct {
	ElectionID   string    `gorm:"column:election_id;primaryKey"`
	VotingStatus string    `gorm:"column:voting_status"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (electionStatusModel) TableName() string {
	return "election_status_projection"
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
	return "ballot_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "ballot_event_dedup"
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

var _ ports.CastGateway = (*Repository)(nil)
var _ ports.BallotStyleSource = (*Repository)(nil)
var _ ports.ElectionStatusSource = (*Repository)(nil)
var _ ports.ElectionStatusProjection = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
