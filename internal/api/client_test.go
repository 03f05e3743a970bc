package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore 仅用于单元测试（内存凭证存储）
type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok || v == "" {
		return "", credentials.ErrMiss
	}
	return v, nil
}

func (f *fakeStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string]string)
	return nil
}

func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *fakeStore, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := newFakeStore()
	client := api.NewClient(server.URL, 5*time.Second, store, zap.NewNop())
	return client, store, server
}

func TestLatestData_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		// 后端时间戳不带时区，数值字段可能是字符串
		w.Write([]byte(`{"heart_rate":"72.35","temperature":36.6,"timestamp":"2026-08-30T14:05:09.123456","is_abnormal":true,"alert_message":"High HR"}`))
	}))
	require.NoError(t, store.Set(credentials.KeyAuthToken, "token-abc"))

	sample, err := client.LatestData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.InDelta(t, 72.35, float64(sample.HeartRate), 1e-9)
	assert.InDelta(t, 36.6, float64(sample.Temperature), 1e-9)
	assert.True(t, sample.IsAbnormal)
	assert.Equal(t, "High HR", sample.AlertMessage)
	assert.Equal(t, 14, sample.Timestamp.Hour())
}

func TestLatestData_NoToken(t *testing.T) {
	requests := 0
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := client.LatestData(context.Background())
	assert.ErrorIs(t, err, api.ErrNoSession)
	assert.Zero(t, requests, "must not hit the backend without a token")
}

func TestLatestData_EmptyResponse(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	require.NoError(t, store.Set(credentials.KeyAuthToken, "t"))

	_, err := client.LatestData(context.Background())
	assert.Error(t, err)
}

func TestUnauthorized_ClearsCredentials(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, store.Set(credentials.KeyAuthToken, "stale"))
	require.NoError(t, store.Set(credentials.KeyUsername, "runner42"))
	require.NoError(t, store.Set(credentials.KeyUserID, "7"))

	_, err := client.History(context.Background(), 24)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	for _, key := range []string{credentials.KeyAuthToken, credentials.KeyUsername, credentials.KeyUserID} {
		_, err := store.Get(key)
		assert.ErrorIs(t, err, credentials.ErrMiss, key)
	}
}

func TestHistory_PassesHoursParam(t *testing.T) {
	var gotHours string
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHours = r.URL.Query().Get("hours")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"heart_rate":80,"temperature":36.2,"timestamp":"2026-08-30T10:00:00"},
			{"heart_rate":"91.5","temperature":"36.9","timestamp":"2026-08-30T10:05:00"}
		]`))
	}))
	require.NoError(t, store.Set(credentials.KeyAuthToken, "t"))

	records, err := client.History(context.Background(), 168)
	require.NoError(t, err)

	assert.Equal(t, "168", gotHours)
	require.Len(t, records, 2)
	assert.InDelta(t, 91.5, float64(records[1].HeartRate), 1e-9)
}

func TestVerifySession_ReturnsUser(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"user":{"id":7,"username":"runner42"}}`))
	}))
	require.NoError(t, store.Set(credentials.KeyAuthToken, "t"))

	user, err := client.VerifySession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "runner42", user.Username)
}

func TestLogin_SurfacesServerError(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"invalid credentials"}`))
	}))

	resp, err := client.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid credentials", resp.Error)
}

func TestPushReading(t *testing.T) {
	var gotBody string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))

	err := client.PushReading(context.Background(), models.RawReadingRequest{
		HeartRate:   78,
		Temperature: 36.4,
		AthleteID:   1,
	})
	require.NoError(t, err)
	assert.Contains(t, gotBody, `"heart_rate":78`)
	assert.Contains(t, gotBody, `"athlete_id":1`)
}
