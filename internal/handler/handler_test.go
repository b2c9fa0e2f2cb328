package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/middleware"
	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/repository"
	"github.com/mmeshcher/bookheaven/internal/service"
	"github.com/mmeshcher/bookheaven/internal/validation"
)

type stubService struct {
	users map[string]*model.User

	signUpErr error

	session *service.Session
	signInErr error

	updateErr error

	books   []model.Book
	book    *model.Book
	bookErr error

	createdBook *model.Book
	savedBook   *model.Book
	mutateErr   error
	mutations   int

	added     bool
	cartErr   error
	cart      *model.CartView
	lastBook  string
	lastKey   string
	lastItems []string

	orders   []model.Order
	replayed bool
	orderErr error

	statusOrder *model.Order
	statusErr   error
	lastStatus  string
	recentN     int
}

func (s *stubService) SignUp(context.Context, service.SignUpInput) (string, error) {
	return "u1", s.signUpErr
}

func (s *stubService) SignIn(context.Context, string, string) (*service.Session, error) {
	return s.session, s.signInErr
}

func (s *stubService) GetUser(_ context.Context, userID string) (*model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubService) UpdateAddress(context.Context, string, string) error { return s.updateErr }
func (s *stubService) UpdateEmail(context.Context, string, string) error   { return s.updateErr }

func (s *stubService) UpdatePassword(context.Context, string, string, string) error {
	return s.updateErr
}

func (s *stubService) ListBooks(context.Context) ([]model.Book, error) {
	return s.books, s.bookErr
}

func (s *stubService) ListRecentBooks(_ context.Context, n int) ([]model.Book, error) {
	s.recentN = n
	return s.books, s.bookErr
}

func (s *stubService) GetBook(context.Context, string) (*model.Book, error) {
	return s.book, s.bookErr
}

func (s *stubService) CreateBook(_ context.Context, b *model.Book) (*model.Book, error) {
	s.savedBook = b
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	s.mutations++
	return s.createdBook, nil
}

func (s *stubService) UpdateBook(_ context.Context, _ string, b *model.Book) error {
	s.savedBook = b
	if s.mutateErr == nil {
		s.mutations++
	}
	return s.mutateErr
}

func (s *stubService) DeleteBook(context.Context, string) error {
	if s.mutateErr == nil {
		s.mutations++
	}
	return s.mutateErr
}

func (s *stubService) AddToCart(_ context.Context, _ string, bookID string) (bool, error) {
	s.lastBook = bookID
	return s.added, s.cartErr
}

func (s *stubService) RemoveFromCart(_ context.Context, _ string, bookID string) (bool, error) {
	s.lastBook = bookID
	return false, s.cartErr
}

func (s *stubService) GetCart(context.Context, string) (*model.CartView, error) {
	return s.cart, s.cartErr
}

func (s *stubService) AddFavourite(_ context.Context, _ string, bookID string) (bool, error) {
	s.lastBook = bookID
	return s.added, s.cartErr
}

func (s *stubService) RemoveFavourite(context.Context, string, string) (bool, error) {
	return true, s.cartErr
}

func (s *stubService) GetFavourites(context.Context, string) ([]model.Book, error) {
	return s.books, s.cartErr
}

func (s *stubService) PlaceOrder(_ context.Context, _ string, key string, bookIDs []string) ([]model.Order, bool, error) {
	s.lastKey = key
	s.lastItems = bookIDs
	return s.orders, s.replayed, s.orderErr
}

func (s *stubService) OrderHistory(context.Context, string) ([]model.Order, error) {
	return s.orders, s.orderErr
}

func (s *stubService) ListAllOrders(context.Context) ([]model.Order, error) {
	return s.orders, s.orderErr
}

func (s *stubService) UpdateOrderStatus(_ context.Context, _ string, status string) (*model.Order, error) {
	s.lastStatus = status
	return s.statusOrder, s.statusErr
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	auth    *middleware.AuthMiddleware
	svc     *stubService
}

func newTestEnv(t *testing.T, svc *stubService) *testEnv {
	t.Helper()

	if svc.users == nil {
		svc.users = map[string]*model.User{
			"user-1":  {ID: "user-1", Username: "reader1", Role: model.RoleUser},
			"admin-1": {ID: "admin-1", Username: "admin", Role: model.RoleAdmin},
		}
	}

	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	h := NewHandler(svc, zap.NewNop(), auth, nil, "http://localhost:5173")

	return &testEnv{handler: h, router: h.SetupRouter(), auth: auth, svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		role := model.RoleUser
		if u, ok := e.svc.users[userID]; ok {
			role = u.Role
		}
		token, err := e.auth.IssueToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", nil, http.StatusOK, "Sign-up successful"},
		{"validation", &validation.Error{Field: "username", Message: "Username length should be at least 4 characters"}, http.StatusBadRequest, "Username length should be at least 4 characters"},
		{"duplicate username", repository.ErrUsernameTaken, http.StatusBadRequest, "Username already exists"},
		{"duplicate email", repository.ErrEmailTaken, http.StatusBadRequest, "Email already exists"},
		{"store failure", errors.New("db down"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &stubService{signUpErr: tt.err})
			rec := env.do(t, http.MethodPost, "/api/v1/sign-up", "", service.SignUpInput{Username: "reader1"}, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["message"])
		})
	}
}

func TestSignUp_BadBody(t *testing.T) {
	env := newTestEnv(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sign-up", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, &stubService{session: &service.Session{ID: "user-1", Role: model.RoleUser, Token: "tok"}})
		rec := env.do(t, http.MethodPost, "/api/v1/sign-in", "", signInRequest{Username: "reader1", Password: "secret1"}, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"user-1","role":"user","token":"tok"}`, rec.Body.String())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		env := newTestEnv(t, &stubService{signInErr: service.ErrInvalidCredentials})
		rec := env.do(t, http.MethodPost, "/api/v1/sign-in", "", signInRequest{Username: "ghost", Password: "x"}, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t, &stubService{})
		rec := env.do(t, http.MethodPost, "/api/v1/sign-in", "", signInRequest{Username: "reader1"}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, &stubService{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/get-user-information"},
		{http.MethodPut, "/api/v1/update-address"},
		{http.MethodPut, "/api/v1/add-to-cart"},
		{http.MethodGet, "/api/v1/get-user-cart"},
		{http.MethodPost, "/api/v1/place-order"},
		{http.MethodGet, "/api/v1/get-order-history"},
		{http.MethodPost, "/api/v1/add-book"},
		{http.MethodGet, "/api/v1/get-all-orders"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			req.Header.Set("id", "admin-1")
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetUserInformation_UsesTokenSubject(t *testing.T) {
	env := newTestEnv(t, &stubService{})

	rec := env.do(t, http.MethodGet, "/api/v1/get-user-information", "user-1", nil, map[string]string{"id": "admin-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "reader1", body["username"])
	assert.NotContains(t, body, "PasswordHash")
}

func TestProfileUpdateErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       any
		err        error
		wantStatus int
	}{
		{"address ok", "/api/v1/update-address", updateAddressRequest{Address: "Y"}, nil, http.StatusOK},
		{"email taken", "/api/v1/update-email", updateEmailRequest{Email: "x@example.com"}, repository.ErrEmailTaken, http.StatusBadRequest},
		{"wrong password", "/api/v1/update-password", updatePasswordRequest{CurrentPassword: "a", NewPassword: "bbbbbb"}, service.ErrWrongPassword, http.StatusBadRequest},
		{"missing password fields", "/api/v1/update-password", updatePasswordRequest{CurrentPassword: "a"}, nil, http.StatusBadRequest},
		{"user vanished", "/api/v1/update-address", updateAddressRequest{Address: "Y"}, repository.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &stubService{updateErr: tt.err})
			rec := env.do(t, http.MethodPut, tt.path, "user-1", tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCatalogReads(t *testing.T) {
	books := []model.Book{{ID: "b2", Title: "B2"}, {ID: "b1", Title: "B1"}}

	t.Run("all books", func(t *testing.T) {
		env := newTestEnv(t, &stubService{books: books})
		rec := env.do(t, http.MethodGet, "/api/v1/book/get-all-book", "", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Success", body["status"])
		assert.Len(t, body["data"], 2)
	})

	t.Run("recent books default", func(t *testing.T) {
		svc := &stubService{books: books}
		env := newTestEnv(t, svc)
		rec := env.do(t, http.MethodGet, "/api/v1/get-recent-book", "", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, svc.recentN)
	})

	t.Run("recent books with limit", func(t *testing.T) {
		svc := &stubService{books: books}
		env := newTestEnv(t, svc)
		rec := env.do(t, http.MethodGet, "/api/v1/get-recent-book?limit=2", "", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, svc.recentN)
	})

	t.Run("recent books bad limit", func(t *testing.T) {
		env := newTestEnv(t, &stubService{})
		rec := env.do(t, http.MethodGet, "/api/v1/get-recent-book?limit=-1", "", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("book by id", func(t *testing.T) {
		env := newTestEnv(t, &stubService{book: &books[0]})
		rec := env.do(t, http.MethodGet, "/api/v1/get-book-by-id/b2", "", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "b2", data["_id"])
	})

	t.Run("book not found", func(t *testing.T) {
		env := newTestEnv(t, &stubService{bookErr: repository.ErrBookNotFound})
		rec := env.do(t, http.MethodGet, "/api/v1/get-book-by-id/nope", "", nil, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Book not found", decodeBody(t, rec)["message"])
	})
}

func TestCatalogMutations_AdminOnly(t *testing.T) {
	book := bookRequest{URL: "https://x.io", Title: "T", Author: "A", Price: 2.99, Language: "English"}

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/v1/add-book", book},
		{http.MethodPut, "/api/v1/update-book", book},
		{http.MethodDelete, "/api/v1/delete-book", nil},
	}

	for _, rt := range routes {
		t.Run(rt.method+" as user", func(t *testing.T) {
			svc := &stubService{createdBook: &model.Book{ID: "b1"}}
			env := newTestEnv(t, svc)
			rec := env.do(t, rt.method, rt.path, "user-1", rt.body, map[string]string{"bookid": "b1"})

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "You have not access", decodeBody(t, rec)["message"])
			assert.Zero(t, svc.mutations)
		})

		t.Run(rt.method+" as admin", func(t *testing.T) {
			svc := &stubService{createdBook: &model.Book{ID: "b1"}}
			env := newTestEnv(t, svc)
			rec := env.do(t, rt.method, rt.path, "admin-1", rt.body, map[string]string{"bookid": "b1"})

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 1, svc.mutations)
		})
	}
}

func TestCatalogMutations_BookFieldsFromJSON(t *testing.T) {
	body := map[string]any{
		"url":         "https://www.amazon.in/Deep-Work-Focused-Success-Distracted/dp/0349413681",
		"title":       "Deep Work",
		"author":      "Cal Newport",
		"price":       450,
		"description": "A classic",
		"language":    "English",
		"image":       "https://m.media-amazon.com/images/I/71g2ednj0JL.jpg",
	}

	for _, rt := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/add-book"},
		{http.MethodPut, "/api/v1/update-book"},
	} {
		t.Run(rt.path, func(t *testing.T) {
			svc := &stubService{createdBook: &model.Book{ID: "b1"}}
			env := newTestEnv(t, svc)
			rec := env.do(t, rt.method, rt.path, "admin-1", body, map[string]string{"bookid": "b1"})

			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, svc.savedBook)
			assert.Equal(t, &model.Book{
				URL:         "https://www.amazon.in/Deep-Work-Focused-Success-Distracted/dp/0349413681",
				Title:       "Deep Work",
				Author:      "Cal Newport",
				Price:       450,
				Description: "A classic",
				Language:    "English",
				Image:       "https://m.media-amazon.com/images/I/71g2ednj0JL.jpg",
			}, svc.savedBook)
		})
	}
}

func TestCatalogMutations_Errors(t *testing.T) {
	t.Run("missing bookid header", func(t *testing.T) {
		env := newTestEnv(t, &stubService{})
		rec := env.do(t, http.MethodDelete, "/api/v1/delete-book", "admin-1", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		env := newTestEnv(t, &stubService{mutateErr: repository.ErrBookNotFound})
		rec := env.do(t, http.MethodDelete, "/api/v1/delete-book", "admin-1", nil, map[string]string{"bookid": "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid book", func(t *testing.T) {
		env := newTestEnv(t, &stubService{mutateErr: &validation.Error{Field: "price", Message: "Price must not be negative"}})
		rec := env.do(t, http.MethodPost, "/api/v1/add-book", "admin-1", bookRequest{Price: -1}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Price must not be negative", decodeBody(t, rec)["message"])
	})
}

func TestCart(t *testing.T) {
	t.Run("add new", func(t *testing.T) {
		svc := &stubService{added: true}
		env := newTestEnv(t, svc)
		rec := env.do(t, http.MethodPut, "/api/v1/add-to-cart", "user-1", nil, map[string]string{"bookid": "b1"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Book added to cart", decodeBody(t, rec)["message"])
		assert.Equal(t, "b1", svc.lastBook)
	})

	t.Run("add existing", func(t *testing.T) {
		env := newTestEnv(t, &stubService{added: false})
		rec := env.do(t, http.MethodPut, "/api/v1/add-to-cart", "user-1", nil, map[string]string{"bookid": "b1"})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Success", body["status"])
		assert.Equal(t, "Book is already in cart", body["message"])
	})

	t.Run("add unknown book", func(t *testing.T) {
		env := newTestEnv(t, &stubService{cartErr: repository.ErrBookNotFound})
		rec := env.do(t, http.MethodPut, "/api/v1/add-to-cart", "user-1", nil, map[string]string{"bookid": "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("remove absent is success", func(t *testing.T) {
		env := newTestEnv(t, &stubService{})
		rec := env.do(t, http.MethodPut, "/api/v1/remove-book-from-cart", "user-1", nil, map[string]string{"bookid": "b9"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Book removed from cart", decodeBody(t, rec)["message"])
	})

	t.Run("list", func(t *testing.T) {
		env := newTestEnv(t, &stubService{cart: &model.CartView{Books: []model.Book{{ID: "b2"}, {ID: "b1"}}, Total: 7.98}})
		rec := env.do(t, http.MethodGet, "/api/v1/get-user-cart", "user-1", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Len(t, body["data"], 2)
		assert.InDelta(t, 7.98, body["total"], 0.0001)
	})
}

func TestFavourites(t *testing.T) {
	svc := &stubService{added: true, books: []model.Book{{ID: "b1"}}}
	env := newTestEnv(t, svc)

	rec := env.do(t, http.MethodPut, "/api/v1/add-book-to-favourite", "user-1", nil, map[string]string{"bookid": "b1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Book added to favourites", decodeBody(t, rec)["message"])

	rec = env.do(t, http.MethodPut, "/api/v1/remove-book-from-favourite", "user-1", nil, map[string]string{"bookid": "b1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/get-favourite-books", "user-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], 1)
}

func TestPlaceOrder(t *testing.T) {
	body := placeOrderRequest{Order: []lineItem{{ID: "b1"}, {ID: "b2"}}}

	t.Run("success", func(t *testing.T) {
		svc := &stubService{orders: []model.Order{{ID: "o1"}, {ID: "o2"}}}
		env := newTestEnv(t, svc)
		rec := env.do(t, http.MethodPost, "/api/v1/place-order", "user-1", body, map[string]string{"Idempotency-Key": "k1"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"b1", "b2"}, svc.lastItems)
		assert.Equal(t, "k1", svc.lastKey)
		assert.Empty(t, rec.Header().Get(replayedHeader))
		assert.Len(t, decodeBody(t, rec)["data"], 2)
	})

	t.Run("replayed", func(t *testing.T) {
		env := newTestEnv(t, &stubService{orders: []model.Order{{ID: "o1"}}, replayed: true})
		rec := env.do(t, http.MethodPost, "/api/v1/place-order", "user-1", body, map[string]string{"Idempotency-Key": "k1"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "true", rec.Header().Get(replayedHeader))
	})

	errCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty order", service.ErrEmptyOrder, http.StatusBadRequest},
		{"unknown book", repository.ErrBookNotFound, http.StatusNotFound},
		{"key reused by another user", repository.ErrCheckoutKeyConflict, http.StatusConflict},
		{"store failure", errors.New("tx aborted"), http.StatusInternalServerError},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &stubService{orderErr: tt.err})
			rec := env.do(t, http.MethodPost, "/api/v1/place-order", "user-1", body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAdminOrders(t *testing.T) {
	t.Run("get all orders as admin", func(t *testing.T) {
		env := newTestEnv(t, &stubService{orders: []model.Order{{ID: "o1", User: &model.User{Username: "reader1"}}}})
		rec := env.do(t, http.MethodGet, "/api/v1/get-all-orders", "admin-1", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data, ok := body["data"].([]any)
		require.True(t, ok, "data must be the order list, got %T", body["data"])
		assert.Len(t, data, 1)
	})

	t.Run("get all orders as user", func(t *testing.T) {
		env := newTestEnv(t, &stubService{})
		rec := env.do(t, http.MethodGet, "/api/v1/get-all-orders", "user-1", nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	statusCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"invalid status", service.ErrInvalidStatus, http.StatusBadRequest},
		{"illegal transition", service.ErrIllegalTransition, http.StatusConflict},
		{"concurrent change", repository.ErrStatusConflict, http.StatusConflict},
		{"unknown order", repository.ErrOrderNotFound, http.StatusNotFound},
	}
	for _, tt := range statusCases {
		t.Run("update status "+tt.name, func(t *testing.T) {
			svc := &stubService{statusOrder: &model.Order{ID: "o1", Status: model.OrderStatusShipped}, statusErr: tt.err}
			env := newTestEnv(t, svc)
			rec := env.do(t, http.MethodPut, "/api/v1/update-status/o1", "admin-1", updateStatusRequest{Status: "shipped"}, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "shipped", svc.lastStatus)
		})
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, &stubService{})

	rec := env.do(t, http.MethodGet, "/api/v1/nope", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/sign-in", "", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(t, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
