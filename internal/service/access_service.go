package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/kelasku/kelasku-api/internal/models"
	"github.com/kelasku/kelasku-api/internal/plan"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

type accessTopicReader interface {
	FindByID(ctx context.Context, id string) (*models.Topic, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Topic, error)
}

type accessEnrollmentReader interface {
	FindEnrollment(ctx context.Context, userID, topicID string) (*models.Enrollment, error)
	FindBundleEnrollment(ctx context.Context, userID, categoryID string) (*models.BundleEnrollment, error)
	ListGrantingByUserAndCategory(ctx context.Context, userID, categoryID string) ([]models.Enrollment, error)
}

type accessCache interface {
	GetTopicSet(ctx context.Context, userID, categoryID string) ([]string, error)
	SetTopicSet(ctx context.Context, userID, categoryID string, topicIDs []string) error
	Invalidate(ctx context.Context, userID, categoryID string)
}

// TopicAccess is the response of a single-topic access check.
type TopicAccess struct {
	TopicID    string          `json:"topic_id"`
	HasAccess  bool            `json:"has_access"`
	AccessType plan.AccessType `json:"access_type"`
	Reason     string          `json:"reason"`
}

// AccessibleTopics lists the topic ids a user can open within a category.
type AccessibleTopics struct {
	CategoryID string   `json:"category_id"`
	TopicIDs   []string `json:"topic_ids"`
}

// AccessService answers entitlement questions from persisted enrollments.
type AccessService struct {
	topics      accessTopicReader
	enrollments accessEnrollmentReader
	cache       accessCache
	logger      *zap.Logger
}

// NewAccessService constructs AccessService. cache may be nil.
func NewAccessService(topics accessTopicReader, enrollments accessEnrollmentReader, cache accessCache, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{topics: topics, enrollments: enrollments, cache: cache, logger: logger}
}

// CheckTopic decides whether the user may open the topic. An unknown topic is
// a 404; absence of access is a normal decision.
func (s *AccessService) CheckTopic(ctx context.Context, userID, topicID string) (*TopicAccess, error) {
	topic, err := s.topics.FindByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}

	direct, err := s.enrollments.FindEnrollment(ctx, userID, topicID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	bundle, err := s.enrollments.FindBundleEnrollment(ctx, userID, topic.CategoryID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bundle enrollment")
	}

	decision := plan.EvaluateTopicAccess(plan.AccessInput{Topic: *topic, Direct: direct, Bundle: bundle})
	return &TopicAccess{
		TopicID:    topic.ID,
		HasAccess:  decision.HasAccess,
		AccessType: decision.AccessType,
		Reason:     decision.Reason,
	}, nil
}

// ListAccessible returns every topic id in the category the user can open.
// The set is cached per (user, category) and invalidated on purchase.
func (s *AccessService) ListAccessible(ctx context.Context, userID, categoryID string) (*AccessibleTopics, error) {
	if s.cache != nil {
		if ids, err := s.cache.GetTopicSet(ctx, userID, categoryID); err == nil {
			return &AccessibleTopics{CategoryID: categoryID, TopicIDs: ids}, nil
		}
	}

	topics, err := s.topics.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topics")
	}
	if len(topics) == 0 {
		return &AccessibleTopics{CategoryID: categoryID, TopicIDs: []string{}}, nil
	}

	granting, err := s.enrollments.ListGrantingByUserAndCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	direct := make(map[string]*models.Enrollment, len(granting))
	for i := range granting {
		direct[granting[i].TopicID] = &granting[i]
	}

	bundle, err := s.enrollments.FindBundleEnrollment(ctx, userID, categoryID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bundle enrollment")
	}

	ids := make([]string, 0, len(topics))
	for _, topic := range topics {
		decision := plan.EvaluateTopicAccess(plan.AccessInput{Topic: topic, Direct: direct[topic.ID], Bundle: bundle})
		if decision.HasAccess {
			ids = append(ids, topic.ID)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetTopicSet(ctx, userID, categoryID, ids); err != nil {
			s.logger.Warn("failed to cache accessible topics", zap.Error(err))
		}
	}
	return &AccessibleTopics{CategoryID: categoryID, TopicIDs: ids}, nil
}
