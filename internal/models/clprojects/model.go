package clprojects

import (
	"html/template"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"littlefolio/internal/models/clmarkdown"

	stripmd "github.com/writeas/go-strip-markdown"
	"gorm.io/gorm"
)

// Project est une réalisation affichée sur le portfolio.
// La description est du Markdown, le HTML est recalculé à la lecture et
// jamais stocké.
type Project struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	Title           string        `json:"title" gorm:"not null"`
	Slug            string        `json:"slug" gorm:"uniqueIndex;not null"`
	Description     string        `json:"description" gorm:"type:text"`
	DescriptionHTML template.HTML `json:"description_html" gorm:"-"`
	Excerpt         string        `json:"excerpt"`
	Screenshot      string        `json:"screenshot"`
	RepoURL         string        `json:"repo_url"`
	LiveURL         string        `json:"live_url"`
	Tags            string        `json:"-" gorm:"type:text"`
	TagsList        []string      `json:"tags" gorm:"-"`
	Featured        bool          `json:"featured"`
	Published       bool          `json:"published" gorm:"index"`
	DisplayOrder    int           `json:"display_order" gorm:"index"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// Hooks GORM
func (p *Project) BeforeSave(tx *gorm.DB) error {
	if len(p.TagsList) > 0 {
		p.Tags = strings.Join(p.TagsList, ",")
	}
	p.FillExcerpt()
	return nil
}

func (p *Project) AfterFind(tx *gorm.DB) error {
	if p.Tags != "" {
		p.TagsList = strings.Split(p.Tags, ",")
	}
	p.DescriptionHTML = clmarkdown.ConvertMarkdownToHTML(p.Description)
	return nil
}

// FillExcerpt calcule le résumé texte brut depuis la description Markdown
func (p *Project) FillExcerpt() {
	if p.Excerpt != "" || p.Description == "" {
		return
	}
	plain := strings.TrimSpace(stripmd.Strip(p.Description))
	p.Excerpt = ExtractExcerpt(plain, 200)
}

// ExtractExcerpt tronque un texte en essayant de finir sur une phrase
func ExtractExcerpt(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	runes := []rune(text)

	// Chercher une fin de phrase proche de la limite
	cutPoint := maxLength
	for i := maxLength - 1; i >= maxLength-80 && i >= 0; i-- {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			cutPoint = i + 1
			break
		}
	}

	// Sinon couper sur un espace
	if cutPoint == maxLength {
		for i := maxLength - 1; i >= maxLength-40 && i >= 0; i-- {
			if runes[i] == ' ' {
				cutPoint = i
				break
			}
		}
	}

	result := strings.TrimSpace(string(runes[:cutPoint]))

	lastChar := runes[cutPoint-1]
	if lastChar != '.' && lastChar != '!' && lastChar != '?' {
		result += "..."
	}

	return result
}

// Slugify dérive un slug URL depuis un titre
func Slugify(s string) string {
	var result strings.Builder

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			result.WriteRune('-')
		}
	}

	return strings.Trim(result.String(), "-")
}
