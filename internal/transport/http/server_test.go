package httpserver

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phone_shop/internal/dbtest"
	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/metrics"
	"github.com/Skotchmaster/phone_shop/internal/middleware/auth"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/mykafka"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
	"github.com/Skotchmaster/phone_shop/internal/upload"
	"github.com/Skotchmaster/phone_shop/internal/util"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secret"
)

type testServer struct {
	e       *echo.Echo
	db      *gorm.DB
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.New(t)
	m := metrics.New()
	events := mykafka.Nop{}

	userRepo := &repo.UserRepo{DB: db}
	productRepo := &repo.ProductRepo{DB: db}
	categoryRepo := &repo.CategoryRepo{DB: db}
	orderRepo := &repo.OrderRepo{DB: db}

	tokens := &service.TokenService{
		Repo:          &repo.TokenRepo{DB: db},
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Metrics:       m,
	}
	authSvc := &service.AuthService{Users: userRepo, Tokens: tokens, Events: events}
	created, err := authSvc.EnsureAdmin(t.Context(), adminEmail, adminPassword, "Admin")
	require.NoError(t, err)
	require.True(t, created)

	store, err := upload.NewStore(filepath.Join(t.TempDir(), "uploads"), "/uploads")
	require.NoError(t, err)

	e := New(&Deps{
		Logger:        logging.NewWithWriter(io.Discard, "error"),
		Metrics:       m,
		Auth:          auth.New(tokens),
		UploadDir:     store.Dir,
		UploadBaseURL: store.BaseURL,

		HealthHandler: &HealthHTTP{DB: db},
		AuthHandler:   &AuthHTTP{Svc: authSvc},
		ProductHandler: &ProductHTTP{Svc: &service.ProductService{
			Products:   productRepo,
			Categories: categoryRepo,
			Events:     events,
		}},
		CategoryHandler:  &CategoryHTTP{Svc: &service.CategoryService{Categories: categoryRepo}},
		CartHandler:      &CartHTTP{Svc: &service.CartService{Cart: &repo.CartRepo{DB: db}}},
		OrderHandler:     &OrderHTTP{Svc: &service.OrderService{Orders: orderRepo, Events: events, Metrics: m}},
		UserHandler:      &UserHTTP{Svc: &service.UserService{Users: userRepo}},
		DashboardHandler: &DashboardHTTP{Svc: &service.DashboardService{Products: productRepo, Orders: orderRepo, Users: userRepo}},
		UploadHandler:    &UploadHTTP{Store: store},
	})
	return &testServer{e: e, db: db, metrics: m}
}

type envelope struct {
	Success    bool                   `json:"success"`
	Data       json.RawMessage        `json:"data"`
	Message    string                 `json:"message"`
	Pagination *util.Pagination       `json:"pagination"`
	Error      string                 `json:"error"`
	Details    []transport.FieldError `json:"details"`
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type authData struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (ts *testServer) login(t *testing.T, email, password string) authData {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[authData](t, env.Data)
}

func (ts *testServer) register(t *testing.T, email string) authData {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"email": email, "password": "secret123", "name": "Buyer"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authData](t, env.Data)
}

func (ts *testServer) seedProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Slug:     util.Slugify(name),
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		Images:   []string{},
		IsActive: true,
	}
	require.NoError(t, ts.db.Omit("Category").Create(p).Error)
	return p
}

var validAddress = map[string]string{
	"name":        "Budi Santoso",
	"phone":       "081234567890",
	"address":     "Jl. Merdeka 10",
	"city":        "Bandung",
	"province":    "Jawa Barat",
	"postal_code": "40111",
}

func TestAuth_RegisterLoginRefreshLogout(t *testing.T) {
	ts := newTestServer(t)

	reg := ts.register(t, "Buyer@Example.com")
	assert.Equal(t, "buyer@example.com", reg.User.Email)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.NotEmpty(t, reg.AccessToken)

	rec, env := ts.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "buyer@example.com", "password": "secret123", "name": "Again"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", env.Error)

	rec, env = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "buyer@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid email or password", env.Error)

	login := ts.login(t, "buyer@example.com", "secret123")

	rec, env = ts.do(t, http.MethodGet, "/api/auth/profile", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer@example.com", decode[models.User](t, env.Data).Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec, env = ts.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decode[service.Pair](t, env.Data)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The consumed refresh token is single-use.
	rec, env = ts.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": login.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired refresh token", env.Error)

	rec, env = ts.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Refresh token required", env.Error)

	rec, env = ts.do(t, http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": rotated.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", env.Message)

	rec, _ = ts.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": rotated.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "not-an-email", "password": "123", "name": "B"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email format", env.Error)
	require.Len(t, env.Details, 3)
	fields := map[string]string{}
	for _, d := range env.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Password must be at least 6 characters", fields["password"])
	assert.Equal(t, "Name must be at least 2 characters", fields["name"])

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	raw := httptest.NewRecorder()
	ts.e.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
	assert.Contains(t, raw.Body.String(), "Invalid request body")
}

func TestAuthorization(t *testing.T) {
	ts := newTestServer(t)
	buyer := ts.register(t, "buyer@example.com")

	rec, env := ts.do(t, http.MethodGet, "/api/cart", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", env.Error)

	rec, env = ts.do(t, http.MethodGet, "/api/cart", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", env.Error)

	// Public routes still reject a bad token.
	rec, _ = ts.do(t, http.MethodGet, "/api/products", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodGet, "/api/users", nil, buyer.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", env.Error)

	rec, env = ts.do(t, http.MethodGet, "/api/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", env.Error)
}

func TestCheckout(t *testing.T) {
	ts := newTestServer(t)
	buyer := ts.register(t, "buyer@example.com")
	a := ts.seedProduct(t, "Phone A", 100, 5)
	b := ts.seedProduct(t, "Phone B", 50, 3)

	rec, env := ts.do(t, http.MethodPost, "/api/orders", map[string]any{"shipping_address": validAddress}, buyer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", env.Error)

	for _, line := range []struct {
		id  uuid.UUID
		qty int
	}{{a.ID, 2}, {b.ID, 1}} {
		rec, _ = ts.do(t, http.MethodPost, "/api/cart", map[string]any{"product_id": line.id, "quantity": line.qty}, buyer.AccessToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, env = ts.do(t, http.MethodPost, "/api/cart", map[string]any{"product_id": b.ID, "quantity": 5}, buyer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not enough stock available", env.Error)

	short := map[string]string{}
	for k, v := range validAddress {
		short[k] = v
	}
	short["phone"] = "0812"
	rec, env = ts.do(t, http.MethodPost, "/api/orders", map[string]any{"shipping_address": short}, buyer.AccessToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "shipping_address.phone", env.Details[0].Field)

	rec, env = ts.do(t, http.MethodPost, "/api/orders",
		map[string]any{"shipping_address": validAddress, "payment_method": "transfer"}, buyer.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, env.Data)
	assert.True(t, decimal.NewFromInt(250).Equal(order.Total), order.Total.String())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	var stockA, stockB models.Product
	require.NoError(t, ts.db.First(&stockA, "id = ?", a.ID).Error)
	require.NoError(t, ts.db.First(&stockB, "id = ?", b.ID).Error)
	assert.Equal(t, 3, stockA.Stock)
	assert.Equal(t, 2, stockB.Stock)

	rec, env = ts.do(t, http.MethodGet, "/api/cart", nil, buyer.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[service.CartView](t, env.Data).ItemCount)

	rec, env = ts.do(t, http.MethodGet, "/api/orders/my", nil, buyer.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.Equal(t, 10, env.Pagination.Limit)

	rec, _ = ts.do(t, http.MethodGet, "/api/orders/my/"+order.ID.String(), nil, buyer.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := ts.register(t, "other@example.com")
	rec, env = ts.do(t, http.MethodGet, "/api/orders/my/"+order.ID.String(), nil, other.AccessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", env.Error)

	rec, _ = ts.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "phone_shop_orders_created_total 1")
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	ts := newTestServer(t)
	buyer := ts.register(t, "buyer@example.com")
	a := ts.seedProduct(t, "Phone A", 100, 5)
	b := ts.seedProduct(t, "Phone B", 50, 3)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		rec, _ := ts.do(t, http.MethodPost, "/api/cart", map[string]any{"product_id": id, "quantity": 1}, buyer.AccessToken)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	require.NoError(t, ts.db.Model(&models.Product{}).Where("id = ?", b.ID).Update("stock", 0).Error)

	rec, env := ts.do(t, http.MethodPost, "/api/orders", map[string]any{"shipping_address": validAddress}, buyer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not enough stock for Phone B", env.Error)

	var orders int64
	require.NoError(t, ts.db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var stockA models.Product
	require.NoError(t, ts.db.First(&stockA, "id = ?", a.ID).Error)
	assert.Equal(t, 5, stockA.Stock)

	rec, env = ts.do(t, http.MethodGet, "/api/cart", nil, buyer.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[service.CartView](t, env.Data).ItemCount)
}

func TestOrderStatus_Admin(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail, adminPassword)
	buyer := ts.register(t, "buyer@example.com")
	p := ts.seedProduct(t, "Phone A", 100, 5)

	rec, _ := ts.do(t, http.MethodPost, "/api/cart", map[string]any{"product_id": p.ID, "quantity": 1}, buyer.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, env := ts.do(t, http.MethodPost, "/api/orders", map[string]any{"shipping_address": validAddress}, buyer.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[models.Order](t, env.Data)
	statusURL := "/api/orders/admin/" + order.ID.String() + "/status"

	rec, env = ts.do(t, http.MethodPut, statusURL, map[string]string{"status": "shipped"}, buyer.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", env.Error)

	rec, env = ts.do(t, http.MethodPut, "/api/orders/admin/"+uuid.NewString()+"/status", map[string]string{"status": "shipped"}, admin.AccessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", env.Error)

	rec, env = ts.do(t, http.MethodPut, statusURL, map[string]string{"status": "lost"}, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", env.Error)

	rec, env = ts.do(t, http.MethodPut, statusURL, map[string]string{"status": "delivered"}, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusDelivered, decode[models.Order](t, env.Data).Status)

	// Transitions are not policed: delivered can go back to pending.
	rec, _ = ts.do(t, http.MethodPut, statusURL, map[string]string{"status": "pending"}, admin.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodGet, "/api/orders/admin/all?status=pending", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]models.Order](t, env.Data)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "buyer@example.com", all[0].User.Email)

	rec, env = ts.do(t, http.MethodGet, "/api/dashboard/stats", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[service.DashboardStats](t, env.Data)
	assert.Equal(t, int64(1), stats.Stats.TotalOrders)
	assert.Equal(t, int64(1), stats.Stats.TotalUsers)
	assert.Equal(t, int64(1), stats.Alerts.PendingOrders)
}

func TestCatalog_AdminLifecycle(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail, adminPassword)

	rec, env := ts.do(t, http.MethodPost, "/api/categories/admin", map[string]any{"name": "Flagship"}, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[models.Category](t, env.Data)
	assert.Equal(t, "flagship", cat.Slug)

	rec, env = ts.do(t, http.MethodPost, "/api/products/admin", map[string]any{
		"name":           "Galaxy S25 Ultra",
		"price":          "18999000.00",
		"stock":          7,
		"category_id":    cat.ID,
		"images":         []string{"/uploads/a.png"},
		"specifications": map[string]any{"ram": "12GB"},
	}, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[models.Product](t, env.Data)
	assert.Equal(t, "galaxy-s25-ultra", p.Slug)

	rec, env = ts.do(t, http.MethodPost, "/api/products/admin", map[string]any{"name": "Bad", "price": 0, "stock": 1}, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Price must be positive", env.Error)

	rec, env = ts.do(t, http.MethodGet, "/api/products?category=flagship&sortBy=price&sortOrder=asc", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.Equal(t, 12, env.Pagination.Limit)

	rec, env = ts.do(t, http.MethodGet, "/api/products/search?q=galaxy", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, env.Data), 1)

	rec, env = ts.do(t, http.MethodPut, "/api/products/admin/"+p.ID.String(),
		map[string]any{"category_id": "not-a-uuid"}, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid category id", env.Error)

	rec, env = ts.do(t, http.MethodPut, "/api/products/admin/"+p.ID.String(),
		map[string]any{"is_active": false, "category_id": ""}, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Product](t, env.Data)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.CategoryID)

	rec, _ = ts.do(t, http.MethodGet, "/api/products/"+p.Slug, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = ts.do(t, http.MethodGet, "/api/products/admin/all", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)

	rec, env = ts.do(t, http.MethodDelete, "/api/products/admin/"+p.ID.String(), nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", env.Message)

	rec, _ = ts.do(t, http.MethodDelete, "/api/products/admin/not-a-uuid", nil, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers_Admin(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail, adminPassword)
	buyer := ts.register(t, "buyer@example.com")

	rec, env := ts.do(t, http.MethodGet, "/api/users?role=user", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)

	rec, env = ts.do(t, http.MethodDelete, "/api/users/"+admin.User.ID.String(), nil, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete yourself", env.Error)

	rec, _ = ts.do(t, http.MethodDelete, "/api/users/"+buyer.User.ID.String(), nil, admin.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodDelete, "/api/users/"+buyer.User.ID.String(), nil, admin.AccessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env.Error)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail, adminPassword)
	buyer := ts.register(t, "buyer@example.com")

	send := func(path, field, token string, files map[string][]byte) (*httptest.ResponseRecorder, envelope) {
		body, ct := multipartBody(t, field, files)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set(echo.HeaderContentType, ct)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		ts.e.ServeHTTP(rec, req)
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
		return rec, env
	}

	rec, env := send("/api/upload/image", "image", buyer.AccessToken, map[string][]byte{"a.png": pngBytes(t)})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", env.Error)

	rec, env = send("/api/upload/image", "image", admin.AccessToken, map[string][]byte{"a.png": pngBytes(t)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	url := decode[map[string]string](t, env.Data)["url"]
	assert.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	get := httptest.NewRecorder()
	ts.e.ServeHTTP(get, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, pngBytes(t), get.Body.Bytes())

	rec, env = send("/api/upload/image", "image", admin.AccessToken, map[string][]byte{"notes.png": []byte("plain text, not an image")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only JPEG, PNG, WebP, and GIF images are allowed", env.Error)

	rec, env = send("/api/upload/image", "file", admin.AccessToken, map[string][]byte{"a.png": pngBytes(t)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No files uploaded", env.Error)

	rec, env = send("/api/upload/images", "images", admin.AccessToken, map[string][]byte{"a.png": pngBytes(t), "b.png": pngBytes(t)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]string](t, env.Data), 2)
}
