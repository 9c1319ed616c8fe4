package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kelasku/kelasku-api/internal/models"
)

// TopicRepository handles persistence of topics.
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository constructs the repository.
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// FindByID returns a topic by its ID.
func (r *TopicRepository) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	const query = `SELECT id, category_id, title, price, is_free, position, created_at FROM topics WHERE id = $1`
	var topic models.Topic
	if err := r.db.GetContext(ctx, &topic, query, id); err != nil {
		return nil, err
	}
	return &topic, nil
}

// ListByCategory returns every topic in the category ordered by position.
func (r *TopicRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.Topic, error) {
	const query = `SELECT id, category_id, title, price, is_free, position, created_at
        FROM topics WHERE category_id = $1 ORDER BY position, created_at`
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, query, categoryID); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// ListByIDs returns the topics matching the given IDs.
func (r *TopicRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, category_id, title, price, is_free, position, created_at FROM topics WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build topics query: %w", err)
	}
	query = r.db.Rebind(query)
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, query, args...); err != nil {
		return nil, fmt.Errorf("list topics by ids: %w", err)
	}
	return topics, nil
}

// Create persists a new topic record.
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO topics (id, category_id, title, price, is_free, position, created_at)
        VALUES (:id, :category_id, :title, :price, :is_free, :position, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, topic); err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}
