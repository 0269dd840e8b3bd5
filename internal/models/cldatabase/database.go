package cldatabase

import (
	"fmt"

	"littlefolio/internal/clconfig"
	"littlefolio/internal/gormzerologger"
	"littlefolio/internal/models/clcontact"
	"littlefolio/internal/models/clhomepage"
	"littlefolio/internal/models/clprojects"
	"littlefolio/internal/models/clskills"
	"littlefolio/internal/models/cltechstack"
	"littlefolio/internal/models/clvisitors"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open ouvre la base configurée avec le logger GORM branché sur zerolog
func Open(cfg *clconfig.Config) (*gorm.DB, error) {
	level := "warn"
	if cfg.Logger.Level == "debug" || !cfg.Production {
		level = "trace"
	}
	gormLogger := gormzerologger.New(level)

	var db *gorm.DB
	var err error
	switch cfg.Database.Db {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{
			Logger: gormLogger,
		})
	case "mysql":
		db, err = gorm.Open(mysql.Open(cfg.Database.Dsn), &gorm.Config{
			Logger: gormLogger,
		})
	default:
		err = fmt.Errorf("le type de database doit etre sqlite ou mysql")
	}
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate crée les tables et les index, dont l'index unique partiel qui
// garantit au niveau stockage qu'une seule configuration d'accueil est
// active (sqlite seulement, mysql ne connaît pas les index partiels et
// s'appuie sur les transactions du service)
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&clvisitors.Visitor{},
		&clvisitors.Snapshot{},
		&clhomepage.HomepageConfig{},
		&clprojects.Project{},
		&clskills.Skill{},
		&cltechstack.TechStack{},
		&clcontact.Message{},
	)
	if err != nil {
		return fmt.Errorf("erreur migration: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		err = db.Exec(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_homepage_single_active " +
				"ON homepage_configs (is_active) WHERE is_active = 1",
		).Error
		if err != nil {
			return fmt.Errorf("erreur index partiel: %w", err)
		}
	}

	return nil
}
