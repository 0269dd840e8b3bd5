package clcontact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"littlefolio/internal/models/clerrors"

	"gorm.io/gorm"
)

// Message est un message reçu via le formulaire de contact
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	Read      bool      `json:"read" gorm:"index;not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "contact_messages"
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Create valide puis enregistre un message ; la vérification du captcha
// est faite en amont par le handler
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Message, error) {
	name := strings.TrimSpace(in.Name)
	body := strings.TrimSpace(in.Body)

	if name == "" {
		return nil, clerrors.Validation("le nom est obligatoire")
	}
	if body == "" {
		return nil, clerrors.Validation("le message est obligatoire")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, clerrors.Validation("adresse email invalide")
	}

	message := &Message{
		Name:    name,
		Email:   in.Email,
		Subject: strings.TrimSpace(in.Subject),
		Body:    body,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	return message, nil
}

// List retourne les messages, non lus en premier
func (s *Service) List(ctx context.Context) ([]Message, error) {
	var messages []Message
	err := s.db.WithContext(ctx).
		Order("read ASC, created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return messages, nil
}

func (s *Service) MarkRead(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("error marking message read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return clerrors.NotFound("message %d introuvable", id)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Message{}, id)
	if result.Error != nil {
		return fmt.Errorf("error deleting message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return clerrors.NotFound("message %d introuvable", id)
	}
	return nil
}
