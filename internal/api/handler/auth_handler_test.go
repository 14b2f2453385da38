package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ecommerce-platform/identity-service/internal/core/domain"
	"github.com/ecommerce-platform/identity-service/internal/core/ports"
)

type stubAuthService struct {
	registerUser *domain.User
	registerErr  error
	loginUser    *domain.User
	loginErr     error
	getUser      *domain.User
	getErr       error
	listUsers    []*domain.User
	listErr      error
	updatedUser  *domain.User
	updateErr    error

	updatedRole domain.Role
}

func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (*domain.User, string, error) {
	return s.registerUser, "stub-token", s.registerErr
}

func (s *stubAuthService) Login(context.Context, string, string) (*domain.User, string, error) {
	return s.loginUser, "stub-token", s.loginErr
}

func (s *stubAuthService) GetUser(context.Context, string) (*domain.User, error) {
	return s.getUser, s.getErr
}

func (s *stubAuthService) ListUsers(context.Context) ([]*domain.User, error) {
	return s.listUsers, s.listErr
}

func (s *stubAuthService) UpdateRole(_ context.Context, _ string, role domain.Role) (*domain.User, error) {
	s.updatedRole = role
	return s.updatedUser, s.updateErr
}

func testUser() *domain.User {
	return &domain.User{
		ID:           "user-1",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         domain.RoleCustomer,
		Enabled:      true,
	}
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Created(t *testing.T) {
	svc := &stubAuthService{registerUser: testUser()}
	h := NewAuthHandler(svc)

	body := `{"email":"a@x.com","password":"Aa1@aaaa","firstName":"Ada","lastName":"Lovelace"}`
	c, rec := newTestContext(http.MethodPost, "/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] != "stub-token" || resp["type"] != "Bearer" {
		t.Fatalf("unexpected envelope: %v", resp)
	}
	if resp["userId"] != "user-1" || resp["role"] != "CUSTOMER" {
		t.Fatalf("unexpected user fields: %v", resp)
	}
	if _, leaked := resp["passwordHash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := map[string]string{
		"malformed json": `{"email":`,
		"missing email":  `{"password":"Aa1@aaaa","firstName":"A","lastName":"B"}`,
		"bad email":      `{"email":"not-an-email","password":"Aa1@aaaa","firstName":"A","lastName":"B"}`,
		"weak password":  `{"email":"a@x.com","password":"password","firstName":"A","lastName":"B"}`,
		"short password": `{"email":"a@x.com","password":"Aa1@","firstName":"A","lastName":"B"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/auth/register", body)
			err := h.Register(c)

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected *echo.HTTPError, got %v", err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", httpErr.Code)
			}
		})
	}
}

func TestAuthHandler_Register_DuplicateEmailPassedThrough(t *testing.T) {
	svc := &stubAuthService{registerErr: domain.ErrDuplicateEmail}
	h := NewAuthHandler(svc)

	body := `{"email":"a@x.com","password":"Aa1@aaaa","firstName":"Ada","lastName":"Lovelace"}`
	c, _ := newTestContext(http.MethodPost, "/auth/register", body)

	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail passed through, got %v", err)
	}
}

func TestAuthHandler_Login_OK(t *testing.T) {
	svc := &stubAuthService{loginUser: testUser()}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Aa1@aaaa"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] != "stub-token" || resp["email"] != "a@x.com" {
		t.Fatalf("unexpected envelope: %v", resp)
	}
}

func TestAuthHandler_Login_FailuresPassedThrough(t *testing.T) {
	for _, sentinel := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrAccountDisabled,
		domain.ErrTooManyAttempts,
	} {
		svc := &stubAuthService{loginErr: sentinel}
		h := NewAuthHandler(svc)

		c, _ := newTestContext(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"whatever1A@"}`)
		if err := h.Login(c); !errors.Is(err, sentinel) {
			t.Fatalf("expected %v passed through, got %v", sentinel, err)
		}
	}
}

func TestAuthHandler_GetUser_OK(t *testing.T) {
	svc := &stubAuthService{getUser: testUser()}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/auth/users/user-1", "")
	c.SetParamNames("id")
	c.SetParamValues("user-1")

	if err := h.GetUser(c); err != nil {
		t.Fatalf("get user: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["id"] != "user-1" || resp["enabled"] != true {
		t.Fatalf("unexpected body: %v", resp)
	}
	if _, leaked := resp["passwordHash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestAuthHandler_ListUsers_OK(t *testing.T) {
	svc := &stubAuthService{listUsers: []*domain.User{testUser(), testUser()}}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/auth/users", "")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("list users: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp))
	}
}

func TestAuthHandler_UpdateRole_OK(t *testing.T) {
	updated := testUser()
	updated.Role = domain.RoleManager
	svc := &stubAuthService{updatedUser: updated}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPatch, "/auth/users/user-1/role?role=manager", "")
	c.SetParamNames("id")
	c.SetParamValues("user-1")

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.updatedRole != domain.RoleManager {
		t.Fatalf("role query param not normalized, got %s", svc.updatedRole)
	}
}

func TestAuthHandler_UpdateRole_InvalidRole(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPatch, "/auth/users/user-1/role?role=WIZARD", "")
	c.SetParamNames("id")
	c.SetParamValues("user-1")

	if err := h.UpdateRole(c); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}
