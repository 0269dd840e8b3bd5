package clskills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"littlefolio/internal/models/clerrors"

	"gorm.io/gorm"
)

// Skill est une compétence affichée sur le portfolio, niveau de 1 à 5
type Skill struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Category     string    `json:"category" gorm:"index"`
	Level        int       `json:"level" gorm:"not null;default:1"`
	DisplayOrder int       `json:"display_order" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Skill) TableName() string {
	return "skills"
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Input struct {
	Name         *string `json:"name"`
	Category     *string `json:"category"`
	Level        *int    `json:"level"`
	DisplayOrder *int    `json:"display_order"`
}

func (s *Service) List(ctx context.Context) ([]Skill, error) {
	var skills []Skill
	err := s.db.WithContext(ctx).
		Order("category ASC, display_order ASC, name ASC").
		Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("error listing skills: %w", err)
	}
	return skills, nil
}

func (s *Service) Create(ctx context.Context, in *Input) (*Skill, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, clerrors.Validation("le nom est obligatoire")
	}

	skill := &Skill{Name: strings.TrimSpace(*in.Name), Level: 1}
	if err := applyInput(skill, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(skill).Error; err != nil {
		return nil, fmt.Errorf("error creating skill: %w", err)
	}
	return skill, nil
}

func (s *Service) Update(ctx context.Context, id uint, in *Input) (*Skill, error) {
	var skill Skill
	err := s.db.WithContext(ctx).First(&skill, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clerrors.NotFound("compétence %d introuvable", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading skill: %w", err)
	}

	if in.Name != nil {
		skill.Name = strings.TrimSpace(*in.Name)
	}
	if err := applyInput(&skill, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&skill).Error; err != nil {
		return nil, fmt.Errorf("error updating skill: %w", err)
	}
	return &skill, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Skill{}, id)
	if result.Error != nil {
		return fmt.Errorf("error deleting skill: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return clerrors.NotFound("compétence %d introuvable", id)
	}
	return nil
}

func applyInput(skill *Skill, in *Input) error {
	if in.Category != nil {
		skill.Category = *in.Category
	}
	if in.Level != nil {
		if *in.Level < 1 || *in.Level > 5 {
			return clerrors.Validation("le niveau doit être entre 1 et 5")
		}
		skill.Level = *in.Level
	}
	if in.DisplayOrder != nil {
		skill.DisplayOrder = *in.DisplayOrder
	}
	return nil
}
