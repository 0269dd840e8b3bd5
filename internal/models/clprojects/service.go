package clprojects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"littlefolio/internal/models/clerrors"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Input struct {
	Title        *string  `json:"title"`
	Slug         *string  `json:"slug"`
	Description  *string  `json:"description"`
	Excerpt      *string  `json:"excerpt"`
	RepoURL      *string  `json:"repo_url"`
	LiveURL      *string  `json:"live_url"`
	Tags         []string `json:"tags"`
	Featured     *bool    `json:"featured"`
	Published    *bool    `json:"published"`
	DisplayOrder *int     `json:"display_order"`
}

// List retourne les projets, triés pour l'affichage (mis en avant, puis
// ordre manuel, puis récence)
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]Project, error) {
	query := s.db.WithContext(ctx).
		Order("featured DESC, display_order ASC, created_at DESC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var projects []Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	return projects, nil
}

// BySlug retourne un projet publié par son slug
func (s *Service) BySlug(ctx context.Context, slug string) (*Project, error) {
	var project Project
	err := s.db.WithContext(ctx).
		Where("slug = ? AND published = ?", slug, true).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clerrors.NotFound("projet %s introuvable", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading project: %w", err)
	}
	return &project, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Project, error) {
	var project Project
	err := s.db.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clerrors.NotFound("projet %d introuvable", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading project: %w", err)
	}
	return &project, nil
}

func (s *Service) Create(ctx context.Context, in *Input) (*Project, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, clerrors.Validation("le titre est obligatoire")
	}

	project := &Project{Title: strings.TrimSpace(*in.Title)}
	applyInput(project, in)

	if project.Slug == "" {
		project.Slug = Slugify(project.Title)
	}
	if project.Slug == "" {
		return nil, clerrors.Validation("impossible de dériver un slug depuis le titre")
	}

	err := s.db.WithContext(ctx).Create(project).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, clerrors.Conflict("un projet avec le slug %s existe déjà", project.Slug)
		}
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return project, nil
}

func (s *Service) Update(ctx context.Context, id uint, in *Input) (*Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyInput(project, in)
	if in.Title != nil {
		project.Title = strings.TrimSpace(*in.Title)
	}
	if project.Slug == "" {
		project.Slug = Slugify(project.Title)
	}

	err = s.db.WithContext(ctx).Save(project).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, clerrors.Conflict("un projet avec le slug %s existe déjà", project.Slug)
		}
		return nil, fmt.Errorf("error updating project: %w", err)
	}
	return project, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(project).Error
}

// SetScreenshot enregistre le chemin de la capture d'écran traitée
func (s *Service) SetScreenshot(ctx context.Context, id uint, path string) (*Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Screenshot = path
	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, fmt.Errorf("error saving screenshot: %w", err)
	}
	return project, nil
}

func applyInput(project *Project, in *Input) {
	if in.Slug != nil {
		project.Slug = Slugify(*in.Slug)
	}
	if in.Description != nil {
		project.Description = *in.Description
		// Le résumé sera recalculé au BeforeSave
		if in.Excerpt == nil {
			project.Excerpt = ""
		}
	}
	if in.Excerpt != nil {
		project.Excerpt = *in.Excerpt
	}
	if in.RepoURL != nil {
		project.RepoURL = *in.RepoURL
	}
	if in.LiveURL != nil {
		project.LiveURL = *in.LiveURL
	}
	if in.Tags != nil {
		project.TagsList = in.Tags
		project.Tags = strings.Join(in.Tags, ",")
	}
	if in.Featured != nil {
		project.Featured = *in.Featured
	}
	if in.Published != nil {
		project.Published = *in.Published
	}
	if in.DisplayOrder != nil {
		project.DisplayOrder = *in.DisplayOrder
	}
}

// isUniqueViolation détecte une violation d'unicité sans dépendre du
// driver (sqlite et mysql formulent différemment)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
