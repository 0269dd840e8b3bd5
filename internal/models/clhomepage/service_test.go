package clhomepage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"littlefolio/internal/models/clerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&HomepageConfig{}))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_homepage_single_active "+
			"ON homepage_configs (is_active) WHERE is_active = 1",
	).Error)

	return NewService(db, "Test Portfolio", "Description de test"), db
}

// setupFileService ouvre une base sqlite sur fichier : contrairement à
// :memory:, plusieurs connexions s'y disputent réellement les écritures
func setupFileService(t *testing.T) (*Service, *gorm.DB) {
	dsn := "file:" + filepath.Join(t.TempDir(), "portfolio.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&HomepageConfig{}))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_homepage_single_active "+
			"ON homepage_configs (is_active) WHERE is_active = 1",
	).Error)

	return NewService(db, "Test Portfolio", "Description de test"), db
}

func ptr[T any](v T) *T {
	return &v
}

func activeCount(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&HomepageConfig{}).Where("is_active = ?", true).Count(&count).Error)
	return count
}

func TestGetActiveCreatesDefault(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	config, err := service.GetActive(ctx)
	require.NoError(t, err)

	assert.Equal(t, "default", config.Name)
	assert.True(t, config.IsActive)
	assert.Equal(t, SectionNames, config.Order)
	assert.Equal(t, "Test Portfolio", config.Sections["hero"].Title)
	for _, name := range SectionNames {
		assert.True(t, config.Sections[name].Enabled, name)
	}

	// Idempotent : un second appel relit la même ligne
	again, err := service.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.ID, again.ID)
	assert.Equal(t, int64(1), activeCount(t, db))
}

func TestCreate(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	t.Run("inactive creation keeps the active one", func(t *testing.T) {
		active, err := service.GetActive(ctx)
		require.NoError(t, err)

		created, err := service.Create(ctx, &Input{Name: ptr("brouillon")})
		require.NoError(t, err)
		assert.False(t, created.IsActive)

		current, err := service.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, active.ID, current.ID)
	})

	t.Run("active creation deactivates the others", func(t *testing.T) {
		created, err := service.Create(ctx, &Input{
			Name:     ptr("nouvelle"),
			IsActive: ptr(true),
		})
		require.NoError(t, err)
		assert.True(t, created.IsActive)

		assert.Equal(t, int64(1), activeCount(t, db))

		current, err := service.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, created.ID, current.ID)
	})

	t.Run("unknown section is rejected before any write", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&HomepageConfig{}).Count(&before).Error)

		_, err := service.Create(ctx, &Input{
			Name:     ptr("invalide"),
			Sections: map[string]Section{"sidebar": {Enabled: true}},
		})
		assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))

		var after int64
		require.NoError(t, db.Model(&HomepageConfig{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}

func TestUpdate(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	active, err := service.GetActive(ctx)
	require.NoError(t, err)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := service.Update(ctx, active.ID, &Input{
			Sections: map[string]Section{
				"hero": {Enabled: false, Title: "Nouveau titre"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "Nouveau titre", updated.Sections["hero"].Title)
		assert.False(t, updated.Sections["hero"].Enabled)
		// Les autres sections ne bougent pas
		assert.True(t, updated.Sections["about"].Enabled)
		assert.True(t, updated.IsActive)
	})

	t.Run("invalid order leaves the config unchanged", func(t *testing.T) {
		cases := map[string][]string{
			"empty":     {},
			"unknown":   {"hero", "menu"},
			"duplicate": {"hero", "hero", "about"},
		}
		for name, order := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := service.Update(ctx, active.ID, &Input{Order: order})
				assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))

				current, err := service.Get(ctx, active.ID)
				require.NoError(t, err)
				assert.Equal(t, SectionNames, current.Order)
			})
		}
	})

	t.Run("valid order reorders sections", func(t *testing.T) {
		order := []string{"contact", "hero"}
		updated, err := service.Update(ctx, active.ID, &Input{Order: order})
		require.NoError(t, err)
		assert.Equal(t, order, updated.Order)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.Update(ctx, 9999, &Input{Name: ptr("x")})
		assert.True(t, clerrors.IsKind(err, clerrors.KindNotFound))
	})
}

func TestActivate(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	first, err := service.GetActive(ctx)
	require.NoError(t, err)

	second, err := service.Create(ctx, &Input{Name: ptr("secondaire")})
	require.NoError(t, err)

	activated, err := service.Activate(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.Equal(t, int64(1), activeCount(t, db))

	previous, err := service.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, previous.IsActive)

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.Activate(ctx, 9999)
		assert.True(t, clerrors.IsKind(err, clerrors.KindNotFound))
	})
}

func TestDelete(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	active, err := service.GetActive(ctx)
	require.NoError(t, err)

	t.Run("active config cannot be deleted", func(t *testing.T) {
		err := service.Delete(ctx, active.ID)
		assert.True(t, clerrors.IsKind(err, clerrors.KindConflict))

		// La configuration est toujours là et toujours active
		current, err := service.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, active.ID, current.ID)
	})

	t.Run("inactive config is deleted", func(t *testing.T) {
		draft, err := service.Create(ctx, &Input{Name: ptr("brouillon")})
		require.NoError(t, err)

		require.NoError(t, service.Delete(ctx, draft.ID))

		_, err = service.Get(ctx, draft.ID)
		assert.True(t, clerrors.IsKind(err, clerrors.KindNotFound))
	})

	t.Run("unknown id", func(t *testing.T) {
		err := service.Delete(ctx, 9999)
		assert.True(t, clerrors.IsKind(err, clerrors.KindNotFound))
	})
}

func TestAll(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	_, err := service.GetActive(ctx)
	require.NoError(t, err)
	_, err = service.Create(ctx, &Input{Name: ptr("brouillon")})
	require.NoError(t, err)

	configs, err := service.All(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	// L'active en premier
	assert.True(t, configs[0].IsActive)
	assert.False(t, configs[1].IsActive)
}

func TestConcurrentActivate(t *testing.T) {
	service, db := setupFileService(t)
	ctx := context.Background()

	a, err := service.Create(ctx, &Input{Name: ptr("a")})
	require.NoError(t, err)
	b, err := service.Create(ctx, &Input{Name: ptr("b")})
	require.NoError(t, err)

	// Deux activations simultanées de cibles différentes : exactement une
	// des deux doit finir active, jamais les deux, jamais aucune
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = service.Activate(ctx, a.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = service.Activate(ctx, b.ID)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(1), activeCount(t, db))

	current, err := service.GetActive(ctx)
	require.NoError(t, err)
	assert.Contains(t, []uint{a.ID, b.ID}, current.ID)
}

func TestConcurrentGetActiveFirstReaders(t *testing.T) {
	service, db := setupFileService(t)

	// Huit premiers lecteurs simultanés sur un store vide : une seule
	// configuration par défaut doit être créée
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.GetActive(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, i)
	}

	var total int64
	require.NoError(t, db.Model(&HomepageConfig{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), activeCount(t, db))
}

func TestSectionRoundTrip(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, &Input{
		Name: ptr("roundtrip"),
		Sections: map[string]Section{
			"hero": {Enabled: true, Title: "Accueil", Subtitle: "Sous-titre", Content: "## Markdown"},
		},
		Order: []string{"hero", "contact"},
	})
	require.NoError(t, err)

	var loaded HomepageConfig
	require.NoError(t, db.First(&loaded, created.ID).Error)

	assert.Equal(t, "Accueil", loaded.Sections["hero"].Title)
	assert.Equal(t, "## Markdown", loaded.Sections["hero"].Content)
	assert.Equal(t, []string{"hero", "contact"}, loaded.Order)
}
