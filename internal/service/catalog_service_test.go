package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelasku/kelasku-api/internal/models"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

type mockCategoryRepo struct {
	categories map[string]models.Category
	enrolled   bool
	updated    *models.Category
}

func (m *mockCategoryRepo) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error) {
	var out []models.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if m.categories == nil {
		m.categories = make(map[string]models.Category)
	}
	if category.ID == "" {
		category.ID = "cat-new"
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	m.categories[category.ID] = *category
	m.updated = category
	return nil
}

func (m *mockCategoryRepo) HasEnrollments(ctx context.Context, categoryID string) (bool, error) {
	return m.enrolled, nil
}

type mockTopicRepo struct {
	topics  []models.Topic
	created *models.Topic
}

func (m *mockTopicRepo) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	for _, t := range m.topics {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTopicRepo) ListByCategory(ctx context.Context, categoryID string) ([]models.Topic, error) {
	var out []models.Topic
	for _, t := range m.topics {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTopicRepo) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = "topic-new"
	}
	m.topics = append(m.topics, *topic)
	m.created = topic
	return nil
}

func newCatalogService(categories *mockCategoryRepo, topics *mockTopicRepo) *CatalogService {
	return NewCatalogService(categories, topics, nil, nil)
}

func TestCatalogCreateBundleRequiresPrice(t *testing.T) {
	svc := newCatalogService(&mockCategoryRepo{}, &mockTopicRepo{})

	_, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:     "Algebra",
		PlanType: models.PlanTypeBundle,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidBundlePrice.Code, appErrors.FromError(err).Code)

	category, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:        "Algebra",
		PlanType:    models.PlanTypeBundle,
		BundlePrice: 499,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
}

func TestCatalogCreateFreePlanNeedsNoPrice(t *testing.T) {
	svc := newCatalogService(&mockCategoryRepo{}, &mockTopicRepo{})

	category, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:     "Intro",
		PlanType: models.PlanTypeFree,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeFree, category.PlanType)
}

func TestCatalogCreateRejectsUnknownPlanType(t *testing.T) {
	svc := newCatalogService(&mockCategoryRepo{}, &mockTopicRepo{})

	_, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:     "Weird",
		PlanType: models.PlanType("VIP"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogUpdatePlanTypeFrozenOnceEnrolled(t *testing.T) {
	categories := &mockCategoryRepo{
		categories: map[string]models.Category{
			"c1": {ID: "c1", Name: "Algebra", PlanType: models.PlanTypeBundle, BundlePrice: 499},
		},
		enrolled: true,
	}
	svc := newCatalogService(categories, &mockTopicRepo{})

	_, err := svc.Update(context.Background(), "c1", UpdateCategoryRequest{
		Name:     "Algebra",
		PlanType: models.PlanTypeIndividual,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCatalogUpdatePlanTypeAllowedWithoutEnrollments(t *testing.T) {
	categories := &mockCategoryRepo{
		categories: map[string]models.Category{
			"c1": {ID: "c1", Name: "Algebra", PlanType: models.PlanTypeBundle, BundlePrice: 499},
		},
	}
	topics := &mockTopicRepo{topics: []models.Topic{{ID: "t1", CategoryID: "c1", Price: 50}}}
	svc := newCatalogService(categories, topics)

	category, err := svc.Update(context.Background(), "c1", UpdateCategoryRequest{
		Name:     "Algebra",
		PlanType: models.PlanTypeIndividual,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeIndividual, category.PlanType)
}

func TestCatalogRequirements(t *testing.T) {
	categories := &mockCategoryRepo{
		categories: map[string]models.Category{
			"c1": {ID: "c1", PlanType: models.PlanTypeFlexible, BundlePrice: 100},
		},
	}
	svc := newCatalogService(categories, &mockTopicRepo{})

	req, err := svc.Requirements(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, req.RequiresBundlePrice)
	assert.True(t, req.RequiresTopicPrices)
	assert.True(t, req.Allows(models.PurchaseKindBundle))
	assert.True(t, req.Allows(models.PurchaseKindIndividual))
}

func TestCatalogAddTopicForcesFreeUnderFreePlan(t *testing.T) {
	categories := &mockCategoryRepo{
		categories: map[string]models.Category{
			"c1": {ID: "c1", PlanType: models.PlanTypeFree},
		},
	}
	topics := &mockTopicRepo{}
	svc := newCatalogService(categories, topics)

	topic, err := svc.AddTopic(context.Background(), "c1", CreateTopicRequest{Title: "Intro"})
	require.NoError(t, err)
	assert.True(t, topic.IsFree)
}

func TestCatalogAddTopicPaidRequiresPrice(t *testing.T) {
	categories := &mockCategoryRepo{
		categories: map[string]models.Category{
			"c1": {ID: "c1", PlanType: models.PlanTypeIndividual},
		},
	}
	svc := newCatalogService(categories, &mockTopicRepo{})

	_, err := svc.AddTopic(context.Background(), "c1", CreateTopicRequest{Title: "Advanced"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	topic, err := svc.AddTopic(context.Background(), "c1", CreateTopicRequest{Title: "Advanced", Price: 75})
	require.NoError(t, err)
	assert.Equal(t, 75.0, topic.Price)
}

func TestCatalogGetNotFound(t *testing.T) {
	svc := newCatalogService(&mockCategoryRepo{}, &mockTopicRepo{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
