package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phone_shop/internal/dbtest"
	"github.com/Skotchmaster/phone_shop/internal/metrics"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/util"
)

var bg = context.Background()

type published struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Topic: topic, Key: key, Event: event.(map[string]any)})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type fakeIndex struct {
	mu        sync.Mutex
	indexed   map[uuid.UUID]string
	deleted   []uuid.UUID
	hits      []uuid.UUID
	searchErr error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{indexed: map[uuid.UUID]string{}} }

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []uuid.UUID, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	return int64(len(f.hits)), f.hits, nil
}

var errIndexDown = errors.New("index unavailable")

type env struct {
	db      *gorm.DB
	events  *recordingPublisher
	index   *fakeIndex
	metrics *metrics.Metrics
	now     time.Time

	tokens     *TokenService
	auth       *AuthService
	cart       *CartService
	orders     *OrderService
	products   *ProductService
	categories *CategoryService
	users      *UserService
	dashboard  *DashboardService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := dbtest.New(t)
	e := &env{
		db:      db,
		events:  &recordingPublisher{},
		index:   newFakeIndex(),
		metrics: metrics.New(),
		now:     time.Now().UTC().Truncate(time.Second),
	}
	clock := func() time.Time { return e.now }

	userRepo := &repo.UserRepo{DB: db}
	productRepo := &repo.ProductRepo{DB: db}
	categoryRepo := &repo.CategoryRepo{DB: db}
	orderRepo := &repo.OrderRepo{DB: db}

	e.tokens = &TokenService{
		Repo:          &repo.TokenRepo{DB: db},
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Metrics:       e.metrics,
		Now:           clock,
	}
	e.auth = &AuthService{Users: userRepo, Tokens: e.tokens, Events: e.events}
	e.cart = &CartService{Cart: &repo.CartRepo{DB: db}}
	e.orders = &OrderService{Orders: orderRepo, Events: e.events, Metrics: e.metrics}
	e.products = &ProductService{
		Products:   productRepo,
		Categories: categoryRepo,
		Index:      e.index,
		Events:     e.events,
		Now:        clock,
	}
	e.categories = &CategoryService{Categories: categoryRepo, Now: clock}
	e.users = &UserService{Users: userRepo}
	e.dashboard = &DashboardService{Products: productRepo, Orders: orderRepo, Users: userRepo}
	return e
}

func (e *env) user(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Name: "Test " + email, Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Slug:     util.Slugify(name),
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
		Images:   []string{},
	}
	require.NoError(t, e.db.Omit("Category").Create(p).Error)
	return p
}

func (e *env) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.Stock
}

// requireKind asserts err is a client error of kind with the given message.
func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	got, ok := ClientMessage(err)
	require.True(t, ok, "no client message in %v", err)
	require.Equal(t, msg, got)
}

var testAddress = models.ShippingAddress{
	Name:       "Jane Doe",
	Phone:      "+15550100",
	Address:    "1 Main Street",
	City:       "Springfield",
	Province:   "IL",
	PostalCode: "62701",
}
