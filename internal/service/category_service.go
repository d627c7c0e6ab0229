package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/util"
)

type CategoryService struct {
	Categories *repo.CategoryRepo
	Now        func() time.Time
}

type CategoryPatch struct {
	Name       *string
	Image      *string
	ClearImage bool
}

func (s *CategoryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CategoryService) List(ctx context.Context) ([]repo.CategoryWithCount, error) {
	return s.Categories.List(ctx)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.Categories.GetBySlug(ctx, slug)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound("Category not found")
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) slugFor(ctx context.Context, name string, exceptID uuid.UUID) (string, error) {
	return util.UniqueSlug(name, s.now(), func(slug string) (bool, error) {
		return s.Categories.SlugExists(ctx, slug, exceptID)
	})
}

func (s *CategoryService) Create(ctx context.Context, name string, image *string) (*models.Category, error) {
	slug, err := s.slugFor(ctx, name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}
	c := &models.Category{Name: strings.TrimSpace(name), Slug: slug, Image: image}
	if err := s.Categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	u := repo.NewCategoryUpdate()
	if patch.Name != nil {
		slug, err := s.slugFor(ctx, *patch.Name, id)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		u.Name(strings.TrimSpace(*patch.Name)).Slug(slug)
	}
	switch {
	case patch.ClearImage:
		u.Image(nil)
	case patch.Image != nil:
		u.Image(patch.Image)
	}

	c, err := s.Categories.Update(ctx, id, u)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNothingToUpdate):
			return nil, invalidCause("No fields to update", err)
		case repo.IsNotFound(err):
			return nil, notFound("Category not found")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Categories.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return notFound("Category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
