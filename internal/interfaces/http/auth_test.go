package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"horizon/internal/domain/session"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/payments"
	"horizon/internal/shared/auth"
	"horizon/internal/shared/middleware"
)

// MockUserRepo implements user.Repository
type MockUserRepo struct {
	CreateFunc     func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIDFunc    func(ctx context.Context, id int64) (*user.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &user.User{ID: 1, Email: params.Email}, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrNotFound
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, user.ErrNotFound
}

// MockSessionStore implements session.Store
type MockSessionStore struct {
	Sessions map[string]*session.Session
}

func newMockSessionStore() *MockSessionStore {
	return &MockSessionStore{Sessions: map[string]*session.Session{}}
}

func (m *MockSessionStore) Save(ctx context.Context, s *session.Session) error {
	m.Sessions[s.Secret] = s
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, secret string) (*session.Session, error) {
	if s, ok := m.Sessions[secret]; ok {
		return s, nil
	}
	return nil, session.ErrNotFound
}

func (m *MockSessionStore) Delete(ctx context.Context, secret string) error {
	delete(m.Sessions, secret)
	return nil
}

// MockPaymentsClient implements payments.ClientInterface
type MockPaymentsClient struct {
	CreateCustomerFunc func(ctx context.Context, params payments.CustomerParams) (*payments.Customer, error)
}

func (m *MockPaymentsClient) CreateCustomer(ctx context.Context, params payments.CustomerParams) (*payments.Customer, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, params)
	}
	return &payments.Customer{ID: "cust-1", Location: "https://pay.example/customers/1"}, nil
}

func (m *MockPaymentsClient) CreateFundingSource(ctx context.Context, params payments.FundingSourceParams) (string, error) {
	return "", nil
}

func (m *MockPaymentsClient) AuthorizeTransfer(ctx context.Context, params payments.AuthorizeParams) (*payments.Authorization, error) {
	return nil, nil
}

func (m *MockPaymentsClient) CreateTransfer(ctx context.Context, params payments.CreateParams) (*payments.Transfer, error) {
	return nil, nil
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestHandleRegister(t *testing.T) {
	t.Run("Success creates customer, user and session", func(t *testing.T) {
		var customerCreated bool
		paymentsClient := &MockPaymentsClient{
			CreateCustomerFunc: func(ctx context.Context, params payments.CustomerParams) (*payments.Customer, error) {
				customerCreated = true
				if params.Email != "ada@example.com" {
					t.Errorf("customer email = %s, want ada@example.com", params.Email)
				}
				return &payments.Customer{ID: "cust-1", Location: "https://pay.example/customers/1"}, nil
			},
		}
		users := &MockUserRepo{
			CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
				if params.PaymentsCustomerID != "cust-1" {
					t.Errorf("PaymentsCustomerID = %s, want cust-1", params.PaymentsCustomerID)
				}
				if params.PasswordHash == "strong-password" {
					t.Error("password was stored unhashed")
				}
				return &user.User{ID: 1, Email: params.Email}, nil
			},
		}
		store := newMockSessionStore()

		h := NewAuthHandler(users, store, paymentsClient, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
			`{"email":"ada@example.com","password":"strong-password","firstName":"Ada","lastName":"Lovelace"}`))
		rec := httptest.NewRecorder()

		h.HandleRegister(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		if !customerCreated {
			t.Error("payments customer was not created")
		}

		cookie := sessionCookie(t, rec)
		if cookie == nil {
			t.Fatal("no session cookie set")
		}
		if !cookie.HttpOnly {
			t.Error("session cookie is not HttpOnly")
		}
		if _, ok := store.Sessions[cookie.Value]; !ok {
			t.Error("cookie secret does not resolve to a stored session")
		}
	})

	t.Run("Payments failure aborts registration", func(t *testing.T) {
		paymentsClient := &MockPaymentsClient{
			CreateCustomerFunc: func(ctx context.Context, params payments.CustomerParams) (*payments.Customer, error) {
				return nil, &payments.APIError{StatusCode: 500, Code: "ServerError"}
			},
		}
		users := &MockUserRepo{
			CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
				t.Error("user was created after payments failure")
				return nil, nil
			},
		}

		h := NewAuthHandler(users, newMockSessionStore(), paymentsClient, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
			`{"email":"ada@example.com","password":"strong-password","firstName":"Ada","lastName":"Lovelace"}`))
		rec := httptest.NewRecorder()

		h.HandleRegister(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})

	t.Run("Duplicate email", func(t *testing.T) {
		users := &MockUserRepo{
			GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 1, Email: email}, nil
			},
		}

		h := NewAuthHandler(users, newMockSessionStore(), &MockPaymentsClient{}, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
			`{"email":"ada@example.com","password":"strong-password","firstName":"Ada","lastName":"Lovelace"}`))
		rec := httptest.NewRecorder()

		h.HandleRegister(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("Invalid body", func(t *testing.T) {
		h := NewAuthHandler(&MockUserRepo{}, newMockSessionStore(), &MockPaymentsClient{}, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
			`{"email":"not-an-email","password":"short"}`))
		rec := httptest.NewRecorder()

		h.HandleRegister(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	users := &MockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			if email == "ada@example.com" {
				return &user.User{ID: 1, Email: email, PasswordHash: hash}, nil
			}
			return nil, user.ErrNotFound
		},
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectCookie   bool
	}{
		{
			name:           "Valid credentials",
			body:           `{"email":"ada@example.com","password":"correct-password"}`,
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name:           "Wrong password",
			body:           `{"email":"ada@example.com","password":"wrong"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown email",
			body:           `{"email":"nobody@example.com","password":"whatever"}`,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockSessionStore()
			h := NewAuthHandler(users, store, &MockPaymentsClient{}, time.Hour)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleLogin(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
			cookie := sessionCookie(t, rec)
			if tt.expectCookie && cookie == nil {
				t.Error("expected session cookie, got none")
			}
			if !tt.expectCookie && cookie != nil {
				t.Error("unexpected session cookie")
			}
		})
	}
}

func TestHandleLogout(t *testing.T) {
	store := newMockSessionStore()
	store.Sessions["secret-1"] = &session.Session{Secret: "secret-1", UserID: 1}

	h := NewAuthHandler(&MockUserRepo{}, store, &MockPaymentsClient{}, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "secret-1"})
	rec := httptest.NewRecorder()

	h.HandleLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if _, ok := store.Sessions["secret-1"]; ok {
		t.Error("session was not deleted")
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("session cookie was not cleared")
	}
}
