package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/mykafka"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/util"
)

// ProductIndex mirrors catalog changes into the full-text index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

type ProductService struct {
	Products   *repo.ProductRepo
	Categories *repo.CategoryRepo
	Index      ProductIndex
	Events     mykafka.Publisher
	Now        func() time.Time
}

type ProductInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	Stock          int
	Images         []string
	CategoryID     *uuid.UUID
	Specifications map[string]any
	IsActive       *bool
}

// ProductPatch holds the fields of a partial update; nil means unchanged.
// ClearCategory detaches the product from its category.
type ProductPatch struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	Stock          *int
	Images         *[]string
	CategoryID     *uuid.UUID
	ClearCategory  bool
	Specifications map[string]any
	IsActive       *bool
}

func (s *ProductService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ProductService) List(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error) {
	return s.Products.List(ctx, f)
}

// Search queries the full-text index and falls back to a substring match in
// the database when no index is configured or it fails.
func (s *ProductService) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, invalid("Search query is required")
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, query, from, size)
		if err == nil {
			products, err := s.Products.GetByIDs(ctx, ids)
			if err != nil {
				return 0, nil, fmt.Errorf("load search hits: %w", err)
			}
			return total, products, nil
		}
		logging.FromContext(ctx).Warn("search_fallback", "reason", "index query failed", "error", err)
	}

	return s.Products.List(ctx, repo.ProductFilter{
		ActiveOnly: true,
		Search:     query,
		Offset:     from,
		Limit:      size,
		SortDesc:   true,
	})
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.Products.GetBySlug(ctx, slug, true)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound("Product not found")
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound("Product not found")
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.Categories.GetByID(ctx, *id); err != nil {
		if repo.IsNotFound(err) {
			return invalid("Category not found")
		}
		return fmt.Errorf("load category: %w", err)
	}
	return nil
}

func (s *ProductService) slugFor(ctx context.Context, name string, exceptID uuid.UUID) (string, error) {
	return util.UniqueSlug(name, s.now(), func(slug string) (bool, error) {
		return s.Products.SlugExists(ctx, slug, exceptID)
	})
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if !in.Price.IsPositive() {
		return nil, invalid("Price must be positive")
	}
	if in.Stock < 0 {
		return nil, invalid("Stock cannot be negative")
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	slug, err := s.slugFor(ctx, in.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	p := &models.Product{
		Name:           strings.TrimSpace(in.Name),
		Slug:           slug,
		Description:    in.Description,
		Price:          in.Price,
		Stock:          in.Stock,
		Images:         in.Images,
		CategoryID:     in.CategoryID,
		Specifications: in.Specifications,
		IsActive:       true,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = map[string]any{}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	created, err := s.Products.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	s.reindex(ctx, created)
	publish(ctx, s.Events, mykafka.TopicProductEvents, created.ID.String(), map[string]any{
		"type":       "product_created",
		"product_id": created.ID,
		"slug":       created.Slug,
	})
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	u := repo.NewProductUpdate()
	if patch.Name != nil {
		slug, err := s.slugFor(ctx, *patch.Name, id)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		u.Name(strings.TrimSpace(*patch.Name)).Slug(slug)
	}
	if patch.Description != nil {
		u.Description(*patch.Description)
	}
	if patch.Price != nil {
		if !patch.Price.IsPositive() {
			return nil, invalid("Price must be positive")
		}
		u.Price(*patch.Price)
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, invalid("Stock cannot be negative")
		}
		u.Stock(*patch.Stock)
	}
	if patch.Images != nil {
		u.Images(*patch.Images)
	}
	switch {
	case patch.ClearCategory:
		u.CategoryID(nil)
	case patch.CategoryID != nil:
		if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
			return nil, err
		}
		u.CategoryID(patch.CategoryID)
	}
	if patch.Specifications != nil {
		u.Specifications(patch.Specifications)
	}
	if patch.IsActive != nil {
		u.IsActive(*patch.IsActive)
	}

	updated, err := s.Products.Update(ctx, id, u)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNothingToUpdate):
			return nil, invalidCause("No fields to update", err)
		case repo.IsNotFound(err):
			return nil, notFound("Product not found")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.reindex(ctx, updated)
	publish(ctx, s.Events, mykafka.TopicProductEvents, updated.ID.String(), map[string]any{
		"type":       "product_updated",
		"product_id": updated.ID,
		"fields":     u.Columns(),
	})
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return notFound("Product not found")
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, id.String(), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	return nil
}

// Reindex pushes every product into the search index, page by page.
func (s *ProductService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	const batch = 100
	n := 0
	for offset := 0; ; offset += batch {
		_, items, err := s.Products.List(ctx, repo.ProductFilter{Offset: offset, Limit: batch})
		if err != nil {
			return n, fmt.Errorf("list products: %w", err)
		}
		for i := range items {
			if err := s.Index.IndexProduct(ctx, &items[i]); err != nil {
				return n, fmt.Errorf("index product %s: %w", items[i].ID, err)
			}
			n++
		}
		if len(items) < batch {
			return n, nil
		}
	}
}

func (s *ProductService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}
