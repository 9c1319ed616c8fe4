package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelasku/kelasku-api/internal/models"
)

func TestCategoryRepositoryList(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "plan_type", "bundle_price", "created_at", "updated_at"}).
		AddRow("c1", "Algebra", "Intro algebra", "BUNDLE", 499.0, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.id, c.name, c.description, c.plan_type, c.bundle_price, c.created_at, c.updated_at\n        FROM categories c WHERE c.plan_type = $1 ORDER BY c.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.PlanTypeBundle).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM categories c WHERE c.plan_type = $1")).
		WithArgs(models.PlanTypeBundle).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	categories, total, err := repo.List(context.Background(), models.CategoryFilter{PlanType: models.PlanTypeBundle})
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs(sqlmock.AnyArg(), "Algebra", "Intro algebra", "BUNDLE", 499.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	category := &models.Category{Name: "Algebra", Description: "Intro algebra", PlanType: models.PlanTypeBundle, BundlePrice: 499}
	require.NoError(t, repo.Create(context.Background(), category))
	assert.NotEmpty(t, category.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepositoryHasEnrollments(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasEnrollments(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}
