package clhomepage

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"littlefolio/internal/models/clerrors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service garantit l'invariant "au plus une configuration active".
// Chaque séquence désactiver-puis-activer s'exécute dans une transaction ;
// sur sqlite un index unique partiel (is_active = 1) fait échouer proprement
// un éventuel écrivain concurrent au lieu de corrompre l'invariant.
type Service struct {
	db              *gorm.DB
	siteName        string
	siteDescription string
}

func NewService(db *gorm.DB, siteName, siteDescription string) *Service {
	return &Service{
		db:              db,
		siteName:        siteName,
		siteDescription: siteDescription,
	}
}

// Input porte les champs modifiables d'une configuration ; les champs nil
// sont absents de la requête
type Input struct {
	Name     *string            `json:"name"`
	Sections map[string]Section `json:"sections"`
	Order    []string           `json:"order"`
	IsActive *bool              `json:"is_active"`
}

// validate rejette toute entrée hors politique avant la moindre écriture
func validate(in *Input) error {
	for name := range in.Sections {
		if !slices.Contains(SectionNames, name) {
			return clerrors.Validation("section inconnue: %s", name)
		}
	}

	if in.Order != nil {
		if len(in.Order) == 0 {
			return clerrors.Validation("l'ordre des sections ne peut pas être vide")
		}
		seen := make(map[string]bool, len(in.Order))
		for _, name := range in.Order {
			if !slices.Contains(SectionNames, name) {
				return clerrors.Validation("section inconnue dans l'ordre: %s", name)
			}
			if seen[name] {
				return clerrors.Validation("section en double dans l'ordre: %s", name)
			}
			seen[name] = true
		}
	}

	return nil
}

// GetActive retourne la configuration active ; sur un store vide elle crée
// et persiste la configuration par défaut. Idempotent sous lecteurs
// concurrents : le perdant d'une création simultanée relit la ligne active.
func (s *Service) GetActive(ctx context.Context) (*HomepageConfig, error) {
	var config HomepageConfig
	err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&config).Error
	if err == nil {
		return &config, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error loading active config: %w", err)
	}

	created := DefaultConfig(s.siteName, s.siteDescription)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockActive(tx); err != nil {
			return err
		}
		var existing HomepageConfig
		err := tx.Where("is_active = ?", true).First(&existing).Error
		if err == nil {
			*created = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(created).Error
	})
	if err != nil {
		// Course probable avec un autre premier lecteur : relire l'actif
		log.Debug().Err(err).Msg("default homepage config creation lost the race")
		var existing HomepageConfig
		if readErr := s.db.WithContext(ctx).Where("is_active = ?", true).First(&existing).Error; readErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("error creating default config: %w", err)
	}

	return created, nil
}

// All retourne toutes les configurations, l'active en premier
func (s *Service) All(ctx context.Context) ([]HomepageConfig, error) {
	var configs []HomepageConfig
	err := s.db.WithContext(ctx).
		Order("is_active DESC, updated_at DESC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing configs: %w", err)
	}
	return configs, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*HomepageConfig, error) {
	var config HomepageConfig
	err := s.db.WithContext(ctx).First(&config, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clerrors.NotFound("configuration %d introuvable", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return &config, nil
}

// Create insère une configuration ; si elle est active, toutes les autres
// sont désactivées dans la même transaction
func (s *Service) Create(ctx context.Context, in *Input) (*HomepageConfig, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	config := DefaultConfig(s.siteName, s.siteDescription)
	config.IsActive = false
	applyInput(config, in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if config.IsActive {
			if err := deactivateAll(tx); err != nil {
				return err
			}
		}
		return tx.Create(config).Error
	})
	if err != nil {
		return nil, fmt.Errorf("error creating config: %w", err)
	}

	return config, nil
}

// Update modifie une configuration existante, mêmes règles d'activation
// que Create. La validation échoue avant toute écriture, jamais d'état
// partiel.
func (s *Service) Update(ctx context.Context, id uint, in *Input) (*HomepageConfig, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var config HomepageConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&config, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return clerrors.NotFound("configuration %d introuvable", id)
		}
		if err != nil {
			return err
		}

		applyInput(&config, in)

		if config.IsActive {
			if err := deactivateAll(tx); err != nil {
				return err
			}
		}
		return tx.Save(&config).Error
	})
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// Activate désactive tout puis active la cible, atomiquement
func (s *Service) Activate(ctx context.Context, id uint) (*HomepageConfig, error) {
	var config HomepageConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&config, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return clerrors.NotFound("configuration %d introuvable", id)
		}
		if err != nil {
			return err
		}

		if err := deactivateAll(tx); err != nil {
			return err
		}

		config.IsActive = true
		return tx.Save(&config).Error
	})
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// Delete refuse de supprimer la configuration active : il n'existe pas de
// transition Active -> supprimée
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var config HomepageConfig
		err := tx.First(&config, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return clerrors.NotFound("configuration %d introuvable", id)
		}
		if err != nil {
			return err
		}

		if config.IsActive {
			return clerrors.Conflict("activez une autre configuration avant de supprimer celle-ci")
		}

		return tx.Delete(&config).Error
	})
}

// lockActive pose un verrou d'écriture sur les lignes actives. Nécessaire
// sur mysql : la lecture versionnée d'InnoDB laisserait sinon deux
// transactions concurrentes vérifier "aucune active" chacune dans son propre
// instantané puis insérer chacune la sienne. Sur sqlite l'écrivain unique et
// l'index unique partiel couvrent déjà ce cas, et FOR UPDATE n'y existe pas.
func lockActive(tx *gorm.DB) error {
	if tx.Dialector.Name() != "mysql" {
		return nil
	}
	var ids []uint
	return tx.Model(&HomepageConfig{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
}

func deactivateAll(tx *gorm.DB) error {
	if err := lockActive(tx); err != nil {
		return err
	}
	return tx.Model(&HomepageConfig{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func applyInput(config *HomepageConfig, in *Input) {
	if in.Name != nil {
		config.Name = *in.Name
	}
	if in.Sections != nil {
		if config.Sections == nil {
			config.Sections = make(map[string]Section, len(in.Sections))
		}
		for name, section := range in.Sections {
			config.Sections[name] = section
		}
	}
	if in.Order != nil {
		config.Order = append([]string{}, in.Order...)
	}
	if in.IsActive != nil {
		config.IsActive = *in.IsActive
	}
}
