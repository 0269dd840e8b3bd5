package cltechstack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"littlefolio/internal/models/clerrors"

	"gorm.io/gorm"
)

// TechStack est une technologie affichée dans la section stack du site
type TechStack struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Category     string    `json:"category" gorm:"index"`
	Icon         string    `json:"icon"`
	URL          string    `json:"url"`
	DisplayOrder int       `json:"display_order" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TechStack) TableName() string {
	return "tech_stacks"
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
	Icon         *string `json:"icon"`
	URL          *string `json:"url"`
	DisplayOrder *int    `json:"display_order"`
}

func (s *Service) List(ctx context.Context) ([]TechStack, error) {
	var stacks []TechStack
	err := s.db.WithContext(ctx).
		Order("category ASC, display_order ASC, name ASC").
		Find(&stacks).Error
	if err != nil {
		return nil, fmt.Errorf("error listing tech stacks: %w", err)
	}
	return stacks, nil
}

func (s *Service) Create(ctx context.Context, in *Input) (*TechStack, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, clerrors.Validation("le nom est obligatoire")
	}

	stack := &TechStack{Name: strings.TrimSpace(*in.Name)}
	applyInput(stack, in)

	if err := s.db.WithContext(ctx).Create(stack).Error; err != nil {
		return nil, fmt.Errorf("error creating tech stack: %w", err)
	}
	return stack, nil
}

func (s *Service) Update(ctx context.Context, id uint, in *Input) (*TechStack, error) {
	var stack TechStack
	err := s.db.WithContext(ctx).First(&stack, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clerrors.NotFound("techno %d introuvable", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading tech stack: %w", err)
	}

	if in.Name != nil {
		stack.Name = strings.TrimSpace(*in.Name)
	}
	applyInput(&stack, in)

	if err := s.db.WithContext(ctx).Save(&stack).Error; err != nil {
		return nil, fmt.Errorf("error updating tech stack: %w", err)
	}
	return &stack, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&TechStack{}, id)
	if result.Error != nil {
		return fmt.Errorf("error deleting tech stack: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return clerrors.NotFound("techno %d introuvable", id)
	}
	return nil
}

func applyInput(stack *TechStack, in *Input) {
	if in.Category != nil {
		stack.Category = *in.Category
	}
	if in.Icon != nil {
		stack.Icon = *in.Icon
	}
	if in.URL != nil {
		stack.URL = *in.URL
	}
	if in.DisplayOrder != nil {
		stack.DisplayOrder = *in.DisplayOrder
	}
}
