package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
	"github.com/acmclub/ojrank/internal/service"
)

type stubLeaderboard struct {
	result *service.ListResult
	user   *models.UserRecord
	err    error
}

func (s *stubLeaderboard) GetLeaderboard(_ context.Context, q service.ListQuery) (*service.ListResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.Page = q.Page
	return &r, nil
}

func (s *stubLeaderboard) GetUser(context.Context, string) (*models.UserRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubAggregation struct {
	ran     bool
	deleted string
	err     error
}

func (s *stubAggregation) RunForDate(context.Context, time.Time) error { return s.err }
func (s *stubAggregation) RunToday(context.Context) error {
	s.ran = true
	return s.err
}
func (s *stubAggregation) DeleteUser(_ context.Context, id string) error {
	s.deleted = id
	return s.err
}

func newTestRouter(lb *stubLeaderboard, agg *stubAggregation) *mux.Router {
	h := NewLeaderboardHandler(lb, agg, logger.Development("test"))
	r := mux.NewRouter()
	h.Register(r)
	return r
}

func TestGetLeaderboardHandler(t *testing.T) {
	lb := &stubLeaderboard{result: &service.ListResult{
		Data:       []*models.UserRecord{models.NewUserRecord("2510000001", "小明")},
		TotalCount: 25,
		PageSize:   10,
		TotalPages: 3,
	}}
	router := newTestRouter(lb, &stubAggregation{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?page=2&pageSize=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body service.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 25, body.TotalCount)
	assert.Equal(t, 3, body.TotalPages)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2510000001", body.Data[0].ID)
}

func TestGetUserHandler_NotFound(t *testing.T) {
	lb := &stubLeaderboard{err: apperrors.New(apperrors.CodeNotFound, "user not found")}
	router := newTestRouter(lb, &stubAggregation{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body["error"])
	assert.Equal(t, apperrors.CodeNotFound, body["code"])
}

func TestRefreshHandler(t *testing.T) {
	agg := &stubAggregation{}
	router := newTestRouter(&stubLeaderboard{}, agg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, agg.ran)
}

func TestRefreshHandler_SourceFailure(t *testing.T) {
	agg := &stubAggregation{err: apperrors.New(apperrors.CodeSourceFetch, "upstream down")}
	router := newTestRouter(&stubLeaderboard{}, agg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDeleteUserHandler(t *testing.T) {
	agg := &stubAggregation{}
	router := newTestRouter(&stubLeaderboard{}, agg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/2510000001", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2510000001", agg.deleted)
}
