package clhomepage

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Sections connues de la page d'accueil ; l'ordre ci-dessous est aussi
// l'ordre par défaut
var SectionNames = []string{"hero", "about", "projects", "skills", "contact"}

// Section est le contenu libre d'une section de la page d'accueil
type Section struct {
	Enabled  bool   `json:"enabled"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Content  string `json:"content,omitempty"`
}

// HomepageConfig est une configuration nommée de la page d'accueil.
// Au plus une configuration est active à la fois, l'invariant est garanti
// par le service (transaction + index unique partiel sur sqlite).
type HomepageConfig struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`

	SectionsJSON string             `json:"-" gorm:"column:sections;type:text"`
	Sections     map[string]Section `json:"sections" gorm:"-"`

	// "order" est un mot réservé SQL, la colonne s'appelle section_order
	OrderRaw string   `json:"-" gorm:"column:section_order;type:text"`
	Order    []string `json:"order" gorm:"-"`

	IsActive  bool      `json:"is_active" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (HomepageConfig) TableName() string {
	return "homepage_configs"
}

// Hooks GORM : sections en JSON, ordre en CSV
func (hc *HomepageConfig) BeforeSave(tx *gorm.DB) error {
	if hc.Sections != nil {
		data, err := json.Marshal(hc.Sections)
		if err != nil {
			return err
		}
		hc.SectionsJSON = string(data)
	}
	if len(hc.Order) > 0 {
		hc.OrderRaw = strings.Join(hc.Order, ",")
	}
	return nil
}

func (hc *HomepageConfig) AfterFind(tx *gorm.DB) error {
	if hc.SectionsJSON != "" {
		if err := json.Unmarshal([]byte(hc.SectionsJSON), &hc.Sections); err != nil {
			return err
		}
	}
	if hc.OrderRaw != "" {
		hc.Order = strings.Split(hc.OrderRaw, ",")
	}
	return nil
}

// DefaultConfig construit la configuration par défaut, créée paresseusement
// au premier GetActive sur un store vide
func DefaultConfig(siteName, siteDescription string) *HomepageConfig {
	if siteName == "" {
		siteName = "Mon portfolio"
	}

	return &HomepageConfig{
		Name: "default",
		Sections: map[string]Section{
			"hero": {
				Enabled:  true,
				Title:    siteName,
				Subtitle: siteDescription,
				Content:  "Bienvenue sur mon portfolio",
			},
			"about": {
				Enabled: true,
				Title:   "À propos",
			},
			"projects": {
				Enabled: true,
				Title:   "Projets",
			},
			"skills": {
				Enabled: true,
				Title:   "Compétences",
			},
			"contact": {
				Enabled: true,
				Title:   "Contact",
			},
		},
		Order:    append([]string{}, SectionNames...),
		IsActive: true,
	}
}
