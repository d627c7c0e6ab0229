// Package search keeps the product catalog mirrored in Elasticsearch and
// runs full-text queries against it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

type Config struct {
	URL       string
	Username  string
	Password  string
	Index     string
	Transport http.RoundTripper
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("search: empty elasticsearch url")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}
	index := cfg.Index
	if index == "" {
		index = "products"
	}
	return &Client{es: es, index: index}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: info: %w", err)
	}
	defer res.Body.Close()
	return responseError("info", res.StatusCode, res.IsError(), res.Body)
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "slug":        {"type": "keyword"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "price":       {"type": "scaled_float", "scaling_factor": 100},
      "is_active":   {"type": "boolean"}
    }
  }
}`

// EnsureIndex creates the product index with its mapping unless it exists.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	defer res.Body.Close()
	return responseError("create index", res.StatusCode, res.IsError(), res.Body)
}

type productDoc struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
}

func newProductDoc(p *models.Product) productDoc {
	doc := productDoc{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		IsActive:    p.IsActive,
	}
	if p.Category != nil {
		doc.Category = p.Category.Slug
	}
	return doc
}

func (c *Client) IndexProduct(ctx context.Context, p *models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(newProductDoc(p)); err != nil {
		return fmt.Errorf("search: encode product: %w", err)
	}

	res, err := c.es.Index(c.index, &buf,
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("search: index product: %w", err)
	}
	defer res.Body.Close()
	return responseError("index product", res.StatusCode, res.IsError(), res.Body)
}

// DeleteProduct removes the document; a missing document is not an error.
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := c.es.Delete(c.index, id.String(), c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete product: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete product", res.StatusCode, res.IsError(), res.Body)
}

// Search runs a fuzzy multi_match over active products and returns the
// matching ids in relevance order with the total hit count.
func (c *Client) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
		"_source": false,
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if err := responseError("query", res.StatusCode, res.IsError(), res.Body); err != nil {
		return 0, nil, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func responseError(op string, status int, isError bool, body io.Reader) error {
	if !isError {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(body, 4096))
	return fmt.Errorf("search: %s: status %d: %s", op, status, strings.TrimSpace(string(b)))
}
