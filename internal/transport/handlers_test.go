package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github-achievement-miner/internal/domain"
	"github-achievement-miner/internal/port"
	"github-achievement-miner/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) FetchEvents(ctx context.Context, username string, since time.Time) ([]domain.RawEvent, error) {
	args := m.Called(ctx, username, since)
	return args.Get(0).([]domain.RawEvent), args.Error(1)
}

func (m *MockEventSource) FetchRepoStars(ctx context.Context, repoFullNames []string) (domain.RepoStarsMap, error) {
	args := m.Called(ctx, repoFullNames)
	return args.Get(0).(domain.RepoStarsMap), args.Error(1)
}

func (m *MockEventSource) FetchFirstContributions(ctx context.Context, username string, repoFullNames []string) (domain.FirstContributionSet, error) {
	args := m.Called(ctx, username, repoFullNames)
	return args.Get(0).(domain.FirstContributionSet), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upsert(ctx context.Context, a *domain.Achievement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockStore) ListTop(ctx context.Context, userID string, limit int) ([]*domain.Achievement, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]*domain.Achievement), args.Error(1)
}

func (m *MockStore) ListUnpublished(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.Achievement), args.Error(1)
}

func (m *MockStore) GetByID(ctx context.Context, id string) (*domain.Achievement, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Achievement), args.Error(1)
}

func (m *MockStore) MarkPublished(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, a *domain.Achievement, format port.ContentFormat) (string, error) {
	args := m.Called(ctx, a, format)
	return args.String(0), args.Error(1)
}

func newTestRouter(source port.EventSource, store port.AchievementStore, generator port.ContentGenerator) http.Handler {
	pipeline := service.NewPipelineService(source, store, generator, nil)
	handler := NewHandler(pipeline, store, zap.NewNop())
	return NewRouter(handler, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(new(MockEventSource), new(MockStore), new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(new(MockEventSource), new(MockStore), new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListAchievements(t *testing.T) {
	store := new(MockStore)
	store.On("ListTop", mock.Anything, "octocat", 20).Return([]*domain.Achievement{
		{ID: "a1", UserID: "octocat", Type: domain.TypeFirstContribution, Score: 70},
	}, nil)

	router := newTestRouter(new(MockEventSource), store, new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/achievements?user=octocat", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User         string                `json:"user"`
		Achievements []*domain.Achievement `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "octocat", body.User)
	require.Len(t, body.Achievements, 1)
	assert.Equal(t, domain.TypeFirstContribution, body.Achievements[0].Type)
}

func TestListAchievements_Validation(t *testing.T) {
	router := newTestRouter(new(MockEventSource), new(MockStore), new(MockGenerator))

	t.Run("missing user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/achievements", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/achievements?user=octocat&limit=zero", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListAchievements_StoreError(t *testing.T) {
	store := new(MockStore)
	store.On("ListTop", mock.Anything, "octocat", 20).
		Return([]*domain.Achievement(nil), errors.New("db down"))

	router := newTestRouter(new(MockEventSource), store, new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/achievements?user=octocat", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClassifyUser(t *testing.T) {
	source := new(MockEventSource)
	store := new(MockStore)

	events := []domain.RawEvent{
		{
			Kind:         domain.KindPullRequest,
			RepoFullName: "octo/hello",
			OccurredAt:   time.Now(),
			PullRequest: &domain.PullRequestPayload{
				Number: 1, Title: "Fix bug", Merged: true, Action: "closed",
			},
		},
	}

	source.On("FetchEvents", mock.Anything, "octocat", mock.Anything).Return(events, nil)
	source.On("FetchRepoStars", mock.Anything, mock.Anything).Return(domain.RepoStarsMap{}, nil)
	source.On("FetchFirstContributions", mock.Anything, "octocat", mock.Anything).
		Return(domain.FirstContributionSet{}, nil)
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	router := newTestRouter(source, store, new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/octocat/classify", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User   string `json:"user"`
		Stored int    `json:"stored"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "octocat", body.User)
	assert.Equal(t, 1, body.Stored)
}

func TestClassifyUser_BadDays(t *testing.T) {
	router := newTestRouter(new(MockEventSource), new(MockStore), new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/octocat/classify?days=-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateContent(t *testing.T) {
	store := new(MockStore)
	generator := new(MockGenerator)

	a := &domain.Achievement{ID: "a1", Title: "Fix flaky test"}
	store.On("GetByID", mock.Anything, "a1").Return(a, nil)
	generator.On("Generate", mock.Anything, a, port.FormatResumeBullet).
		Return("Fixed a flaky test.", nil)

	router := newTestRouter(new(MockEventSource), store, generator)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/achievements/a1/content?format=resume_bullet", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Fixed a flaky test.", body["content"])
	assert.Equal(t, "resume_bullet", body["format"])
}

func TestGenerateContent_UnknownFormat(t *testing.T) {
	router := newTestRouter(new(MockEventSource), new(MockStore), new(MockGenerator))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/achievements/a1/content?format=haiku", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
