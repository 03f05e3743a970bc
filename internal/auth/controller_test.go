package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/auth"
	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", credentials.ErrMiss
	}
	return value, nil
}

func (s *fakeStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]string{}
	return nil
}

func newTestController(t *testing.T, handler http.Handler) (*auth.Controller, *fakeStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := newFakeStore()
	client := api.NewClient(server.URL, 5*time.Second, store, zap.NewNop())
	return auth.NewController(client, store, zap.NewNop()), store
}

func TestLogin_PersistsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "token": "token-123", "user": {"id": 7, "username": "alice"}}`))
	})
	ctrl, store := newTestController(t, mux)

	user, err := ctrl.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	token, err := store.Get(credentials.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "token-123", token)

	username, err := store.Get(credentials.KeyUsername)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	userID, err := store.Get(credentials.KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "7", userID)
}

func TestLogin_EmptyFieldsSkipRequest(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, auth.ErrMissingFields)

	_, err = ctrl.Login(context.Background(), "alice@example.com", "")
	assert.ErrorIs(t, err, auth.ErrMissingFields)

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestLogin_BackendRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "error": "Invalid credentials"}`))
	})
	ctrl, store := newTestController(t, mux)

	_, err := ctrl.Login(context.Background(), "alice@example.com", "wrong")
	assert.EqualError(t, err, "Invalid credentials")

	_, err = store.Get(credentials.KeyAuthToken)
	assert.ErrorIs(t, err, credentials.ErrMiss)
}

func TestRegister_Validation(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctrl, _ := newTestController(t, mux)

	valid := models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
		Gender:   "female",
		Age:      25,
	}

	missing := valid
	missing.Email = ""
	assert.ErrorIs(t, ctrl.Register(context.Background(), missing), auth.ErrMissingFields)

	tooYoung := valid
	tooYoung.Age = 12
	assert.Error(t, ctrl.Register(context.Background(), tooYoung))

	tooOld := valid
	tooOld.Age = 121
	assert.Error(t, ctrl.Register(context.Background(), tooOld))

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRegister_BoundaryAges(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	})
	ctrl, _ := newTestController(t, mux)

	req := models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
		Gender:   "female",
	}

	req.Age = auth.MinAge
	assert.NoError(t, ctrl.Register(context.Background(), req))

	req.Age = auth.MaxAge
	assert.NoError(t, ctrl.Register(context.Background(), req))
}

func TestResetPassword_MismatchSkipsRequest(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctrl, _ := newTestController(t, mux)

	err := ctrl.ResetPassword(context.Background(), "alice@example.com", "newpass", "different")
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestResetPassword_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reset-password", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	})
	ctrl, _ := newTestController(t, mux)

	assert.NoError(t, ctrl.ResetPassword(context.Background(), "alice@example.com", "newpass", "newpass"))
}

func TestLogout_ClearsCredentialsEvenOnBackendError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctrl, store := newTestController(t, mux)
	require.NoError(t, store.Set(credentials.KeyAuthToken, "token-123"))
	require.NoError(t, store.Set(credentials.KeyUsername, "alice"))

	require.NoError(t, ctrl.Logout(context.Background()))

	_, err := store.Get(credentials.KeyAuthToken)
	assert.ErrorIs(t, err, credentials.ErrMiss)
	_, err = store.Get(credentials.KeyUsername)
	assert.ErrorIs(t, err, credentials.ErrMiss)
}

func TestLogout_NotifiesBackend(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	})
	ctrl, store := newTestController(t, mux)
	require.NoError(t, store.Set(credentials.KeyAuthToken, "token-123"))

	require.NoError(t, ctrl.Logout(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
