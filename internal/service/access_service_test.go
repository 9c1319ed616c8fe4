package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelasku/kelasku-api/internal/models"
	"github.com/kelasku/kelasku-api/internal/plan"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

type mockAccessEnrollments struct {
	direct  map[string]models.Enrollment       // keyed by user:topic
	bundles map[string]models.BundleEnrollment // keyed by user:category
}

func (m *mockAccessEnrollments) FindEnrollment(ctx context.Context, userID, topicID string) (*models.Enrollment, error) {
	if e, ok := m.direct[userID+":"+topicID]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccessEnrollments) FindBundleEnrollment(ctx context.Context, userID, categoryID string) (*models.BundleEnrollment, error) {
	if b, ok := m.bundles[userID+":"+categoryID]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccessEnrollments) ListGrantingByUserAndCategory(ctx context.Context, userID, categoryID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.direct {
		if e.UserID == userID && e.PaymentStatus.Granting() {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockAccessCache struct {
	sets map[string][]string
	hits int
}

func (m *mockAccessCache) GetTopicSet(ctx context.Context, userID, categoryID string) ([]string, error) {
	if ids, ok := m.sets[userID+":"+categoryID]; ok {
		m.hits++
		return ids, nil
	}
	return nil, appErrors.Clone(appErrors.ErrCacheMiss, "")
}

func (m *mockAccessCache) SetTopicSet(ctx context.Context, userID, categoryID string, topicIDs []string) error {
	if m.sets == nil {
		m.sets = make(map[string][]string)
	}
	m.sets[userID+":"+categoryID] = topicIDs
	return nil
}

func (m *mockAccessCache) Invalidate(ctx context.Context, userID, categoryID string) {
	delete(m.sets, userID+":"+categoryID)
}

func accessFixtureTopics(created time.Time) []models.Topic {
	return []models.Topic{
		{ID: "t1", CategoryID: "c1", IsFree: true, CreatedAt: created},
		{ID: "t2", CategoryID: "c1", Price: 100, CreatedAt: created},
		{ID: "t3", CategoryID: "c1", Price: 200, CreatedAt: created.Add(48 * time.Hour)},
	}
}

func TestCheckTopicUnknownTopic(t *testing.T) {
	svc := NewAccessService(&mockTopicReader{}, &mockAccessEnrollments{}, nil, nil)

	_, err := svc.CheckTopic(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCheckTopicFreeTopic(t *testing.T) {
	topics := &mockTopicReader{topics: accessFixtureTopics(time.Now())}
	svc := NewAccessService(topics, &mockAccessEnrollments{}, nil, nil)

	access, err := svc.CheckTopic(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.True(t, access.HasAccess)
	assert.Equal(t, plan.AccessTypeFree, access.AccessType)
}

func TestCheckTopicNoEnrollment(t *testing.T) {
	topics := &mockTopicReader{topics: accessFixtureTopics(time.Now())}
	svc := NewAccessService(topics, &mockAccessEnrollments{}, nil, nil)

	access, err := svc.CheckTopic(context.Background(), "u1", "t2")
	require.NoError(t, err)
	assert.False(t, access.HasAccess)
	assert.Equal(t, "no enrollment", access.Reason)
}

func TestCheckTopicBundleTemporalRule(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	enrolledAt := created.Add(24 * time.Hour)
	topics := &mockTopicReader{topics: accessFixtureTopics(created)}
	enrollments := &mockAccessEnrollments{
		bundles: map[string]models.BundleEnrollment{
			"u1:c1": {UserID: "u1", CategoryID: "c1", PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt},
		},
	}
	svc := NewAccessService(topics, enrollments, nil, nil)

	// t2 existed at purchase time, t3 was added two days later.
	access, err := svc.CheckTopic(context.Background(), "u1", "t2")
	require.NoError(t, err)
	assert.True(t, access.HasAccess)
	assert.Equal(t, plan.AccessTypeBundle, access.AccessType)

	access, err = svc.CheckTopic(context.Background(), "u1", "t3")
	require.NoError(t, err)
	assert.False(t, access.HasAccess)
	assert.Equal(t, "topic added after bundle purchase", access.Reason)
}

func TestListAccessibleUnionsDirectBundleAndFree(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	enrolledAt := created.Add(24 * time.Hour)
	topics := &mockTopicReader{topics: accessFixtureTopics(created)}
	enrollments := &mockAccessEnrollments{
		direct: map[string]models.Enrollment{
			"u1:t3": {UserID: "u1", TopicID: "t3", PaymentStatus: models.PaymentStatusPaid},
		},
		bundles: map[string]models.BundleEnrollment{
			"u1:c1": {UserID: "u1", CategoryID: "c1", PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt},
		},
	}
	svc := NewAccessService(topics, enrollments, nil, nil)

	// t1 free, t2 via bundle, t3 via direct purchase despite postdating the bundle.
	result, err := svc.ListAccessible(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, result.TopicIDs)
}

func TestListAccessibleEmptyCategory(t *testing.T) {
	svc := NewAccessService(&mockTopicReader{}, &mockAccessEnrollments{}, nil, nil)

	result, err := svc.ListAccessible(context.Background(), "u1", "c-empty")
	require.NoError(t, err)
	assert.Empty(t, result.TopicIDs)
}

func TestListAccessibleUsesCache(t *testing.T) {
	topics := &mockTopicReader{topics: accessFixtureTopics(time.Now())}
	cache := &mockAccessCache{}
	svc := NewAccessService(topics, &mockAccessEnrollments{}, cache, nil)

	first, err := svc.ListAccessible(context.Background(), "u1", "c1")
	require.NoError(t, err)

	second, err := svc.ListAccessible(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, first.TopicIDs, second.TopicIDs)
	assert.Equal(t, 1, cache.hits)

	cache.Invalidate(context.Background(), "u1", "c1")
	_, err = svc.ListAccessible(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}
