package clskills

import (
	"context"
	"testing"

	"littlefolio/internal/models/clerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Skill{}))

	return NewService(db)
}

func ptr[T any](v T) *T {
	return &v
}

func TestCreate(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		skill, err := service.Create(ctx, &Input{Name: ptr("Go")})
		require.NoError(t, err)
		assert.Equal(t, 1, skill.Level)
	})

	t.Run("name is mandatory", func(t *testing.T) {
		_, err := service.Create(ctx, &Input{Level: ptr(3)})
		assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))
	})

	t.Run("level out of range", func(t *testing.T) {
		for _, level := range []int{0, 6, -1} {
			_, err := service.Create(ctx, &Input{Name: ptr("SQL"), Level: ptr(level)})
			assert.True(t, clerrors.IsKind(err, clerrors.KindValidation), level)
		}
	})
}

func TestListOrdering(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, &Input{Name: ptr("PostgreSQL"), Category: ptr("Backend"), DisplayOrder: ptr(2)})
	require.NoError(t, err)
	_, err = service.Create(ctx, &Input{Name: ptr("Go"), Category: ptr("Backend"), DisplayOrder: ptr(1)})
	require.NoError(t, err)
	_, err = service.Create(ctx, &Input{Name: ptr("CSS"), Category: ptr("Frontend"), DisplayOrder: ptr(1)})
	require.NoError(t, err)

	skills, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, skills, 3)

	assert.Equal(t, "Go", skills[0].Name)
	assert.Equal(t, "PostgreSQL", skills[1].Name)
	assert.Equal(t, "CSS", skills[2].Name)
}

func TestUpdateAndDelete(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	skill, err := service.Create(ctx, &Input{Name: ptr("Go"), Level: ptr(3)})
	require.NoError(t, err)

	updated, err := service.Update(ctx, skill.ID, &Input{Level: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Level)
	assert.Equal(t, "Go", updated.Name)

	_, err = service.Update(ctx, skill.ID, &Input{Level: ptr(9)})
	assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))

	_, err = service.Update(ctx, 9999, &Input{Level: ptr(2)})
	assert.True(t, clerrors.IsKind(err, clerrors.KindNotFound))

	require.NoError(t, service.Delete(ctx, skill.ID))
	assert.True(t, clerrors.IsKind(service.Delete(ctx, skill.ID), clerrors.KindNotFound))
}
