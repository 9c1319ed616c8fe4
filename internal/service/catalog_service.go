package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kelasku/kelasku-api/internal/models"
	"github.com/kelasku/kelasku-api/internal/plan"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

type categoryRepository interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	HasEnrollments(ctx context.Context, categoryID string) (bool, error)
}

type topicRepository interface {
	FindByID(ctx context.Context, id string) (*models.Topic, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Topic, error)
	Create(ctx context.Context, topic *models.Topic) error
}

// CreateCategoryRequest describes category creation payload.
type CreateCategoryRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	PlanType    models.PlanType `json:"plan_type" validate:"required"`
	BundlePrice float64         `json:"bundle_price" validate:"gte=0"`
}

// UpdateCategoryRequest describes category update payload.
type UpdateCategoryRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	PlanType    models.PlanType `json:"plan_type" validate:"required"`
	BundlePrice float64         `json:"bundle_price" validate:"gte=0"`
}

// CreateTopicRequest describes topic creation payload.
type CreateTopicRequest struct {
	Title    string  `json:"title" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	IsFree   bool    `json:"is_free"`
	Position int     `json:"position" validate:"gte=0"`
}

// CatalogService manages categories, their topics and pricing requirements.
type CatalogService struct {
	categories categoryRepository
	topics     topicRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(categories categoryRepository, topics topicRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{categories: categories, topics: topics, validator: validate, logger: logger}
}

// List returns categories with pagination metadata.
func (s *CatalogService) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, *models.Pagination, error) {
	categories, total, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return categories, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single category.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// Create registers a new category after checking its pricing against the plan
// type's requirements.
func (s *CatalogService) Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	if !req.PlanType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown plan type: "+string(req.PlanType))
	}
	if res := plan.ValidateCategoryPricing(req.PlanType, req.BundlePrice, nil); !res.Valid {
		return nil, res.Err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		PlanType:    req.PlanType,
		BundlePrice: req.BundlePrice,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("plan_type", string(category.PlanType)))
	return category, nil
}

// Update modifies a category. The plan type is frozen once any enrollment
// references the category: changing it would silently rewrite what existing
// purchases granted.
func (s *CatalogService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	if !req.PlanType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown plan type: "+string(req.PlanType))
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PlanType != category.PlanType {
		enrolled, err := s.categories.HasEnrollments(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
		}
		if enrolled {
			return nil, appErrors.Clone(appErrors.ErrConflict, "plan type cannot change once enrollments exist")
		}
	}

	topics, err := s.topics.ListByCategory(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topics")
	}
	if res := plan.ValidateCategoryPricing(req.PlanType, req.BundlePrice, topicPriceMap(topics)); !res.Valid {
		return nil, res.Err
	}

	category.Name = req.Name
	category.Description = req.Description
	category.PlanType = req.PlanType
	category.BundlePrice = req.BundlePrice
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}
	return category, nil
}

// Requirements returns the pricing rules the category's plan type imposes.
func (s *CatalogService) Requirements(ctx context.Context, categoryID string) (*plan.Requirements, error) {
	category, err := s.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	req, err := plan.PricingRequirements(category.PlanType)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListTopics returns the topics of a category in catalog order.
func (s *CatalogService) ListTopics(ctx context.Context, categoryID string) ([]models.Topic, error) {
	if _, err := s.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	topics, err := s.topics.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list topics")
	}
	return topics, nil
}

// AddTopic creates a topic inside a category. Under FREE plans every topic is
// forced free; under paid plans a non-free topic must carry a positive price
// when the plan sells topics individually.
func (s *CatalogService) AddTopic(ctx context.Context, categoryID string, req CreateTopicRequest) (*models.Topic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic payload")
	}
	category, err := s.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	isFree := req.IsFree
	if category.PlanType == models.PlanTypeFree {
		isFree = true
	}
	requirements, err := plan.PricingRequirements(category.PlanType)
	if err != nil {
		return nil, err
	}
	if requirements.RequiresTopicPrices && !isFree && req.Price <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "paid topic requires a positive price")
	}

	topic := &models.Topic{
		CategoryID: categoryID,
		Title:      req.Title,
		Price:      req.Price,
		IsFree:     isFree,
		Position:   req.Position,
	}
	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create topic")
	}
	s.logger.Info("topic created", zap.String("topic_id", topic.ID), zap.String("category_id", categoryID))
	return topic, nil
}

func topicPriceMap(topics []models.Topic) map[string]float64 {
	prices := make(map[string]float64, len(topics))
	for _, t := range topics {
		prices[t.ID] = t.Price
	}
	return prices
}
