package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	dispatchdomain "github.com/smallbiznis/sathi/internal/dispatch/domain"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	"github.com/smallbiznis/sathi/internal/observability"
	"github.com/smallbiznis/sathi/internal/ratelimit"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCrisisService struct{ mock.Mock }

func (m *mockCrisisService) Submit(ctx context.Context, req crisisdomain.SubmitRequest) (*crisisdomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*crisisdomain.Response)
	return resp, args.Error(1)
}

func (m *mockCrisisService) GetByID(ctx context.Context, id string) (*crisisdomain.Response, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*crisisdomain.Response)
	return resp, args.Error(1)
}

func (m *mockCrisisService) Queue(ctx context.Context, req crisisdomain.QueueRequest) ([]crisisdomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).([]crisisdomain.Response)
	return resp, args.Error(1)
}

func (m *mockCrisisService) UpdateStatus(ctx context.Context, req crisisdomain.UpdateStatusRequest) (*crisisdomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*crisisdomain.Response)
	return resp, args.Error(1)
}

type mockResourceService struct{ mock.Mock }

func (m *mockResourceService) Create(ctx context.Context, req resourcedomain.CreateRequest) (*resourcedomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*resourcedomain.Response)
	return resp, args.Error(1)
}

func (m *mockResourceService) List(ctx context.Context, req resourcedomain.ListRequest) ([]resourcedomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).([]resourcedomain.Response)
	return resp, args.Error(1)
}

func (m *mockResourceService) GetByID(ctx context.Context, id string) (*resourcedomain.Response, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*resourcedomain.Response)
	return resp, args.Error(1)
}

func (m *mockResourceService) Replenish(ctx context.Context, req resourcedomain.ReplenishRequest) (*resourcedomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*resourcedomain.Response)
	return resp, args.Error(1)
}

type mockMatchingService struct{ mock.Mock }

func (m *mockMatchingService) MatchRequest(ctx context.Context, req matchingdomain.MatchRequest) (*matchingdomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*matchingdomain.Response)
	return resp, args.Error(1)
}

func (m *mockMatchingService) Rank(ctx context.Context, req matchingdomain.RankRequest) (*matchingdomain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*matchingdomain.Response)
	return resp, args.Error(1)
}

type mockDispatchService struct{ mock.Mock }

func (m *mockDispatchService) Dispatch(ctx context.Context, req dispatchdomain.DispatchRequest) (*dispatchdomain.Result, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dispatchdomain.Result)
	return resp, args.Error(1)
}

func (m *mockDispatchService) ListByRequest(ctx context.Context, requestID string) ([]dispatchdomain.Response, error) {
	args := m.Called(ctx, requestID)
	resp, _ := args.Get(0).([]dispatchdomain.Response)
	return resp, args.Error(1)
}

func (m *mockDispatchService) ListByResource(ctx context.Context, resourceID string) ([]dispatchdomain.Response, error) {
	args := m.Called(ctx, resourceID)
	resp, _ := args.Get(0).([]dispatchdomain.Response)
	return resp, args.Error(1)
}

type mockFeedbackService struct{ mock.Mock }

func (m *mockFeedbackService) SubmitUser(ctx context.Context, req feedbackdomain.UserFeedbackRequest) (*feedbackdomain.UserFeedbackResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*feedbackdomain.UserFeedbackResponse)
	return resp, args.Error(1)
}

func (m *mockFeedbackService) SubmitDispatcher(ctx context.Context, req feedbackdomain.DispatcherFeedbackRequest) (*feedbackdomain.DispatcherFeedbackResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*feedbackdomain.DispatcherFeedbackResponse)
	return resp, args.Error(1)
}

func (m *mockFeedbackService) ListByRequest(ctx context.Context, requestID string) (*feedbackdomain.ListResponse, error) {
	args := m.Called(ctx, requestID)
	resp, _ := args.Get(0).(*feedbackdomain.ListResponse)
	return resp, args.Error(1)
}

type mockBucket struct{ mock.Mock }

func (m *mockBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*ratelimit.Result, error) {
	args := m.Called(ctx, key, rate, burst)
	res, _ := args.Get(0).(*ratelimit.Result)
	return res, args.Error(1)
}

type testServer struct {
	engine    *gin.Engine
	crisis    *mockCrisisService
	resources *mockResourceService
	matching  *mockMatchingService
	dispatch  *mockDispatchService
	feedback  *mockFeedbackService
}

func newTestServer(t *testing.T, limiter *ratelimit.DispatchLimiter) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := testServer{
		engine:    NewEngine(zap.NewNop(), observability.Config{}, nil),
		crisis:    &mockCrisisService{},
		resources: &mockResourceService{},
		matching:  &mockMatchingService{},
		dispatch:  &mockDispatchService{},
		feedback:  &mockFeedbackService{},
	}
	NewServer(ServerParams{
		Gin:             ts.engine,
		CrisisSvc:       ts.crisis,
		ResourceSvc:     ts.resources,
		MatchingSvc:     ts.matching,
		DispatchSvc:     ts.dispatch,
		FeedbackSvc:     ts.feedback,
		DispatchLimiter: limiter,
	})
	return ts
}

func (ts testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func intPtr(v int) *int { return &v }

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSubmitRequestCreated(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.crisis.On("Submit", mock.Anything, mock.MatchedBy(func(req crisisdomain.SubmitRequest) bool {
		return req.Extraction.NeedType == "medical" && req.Urgency != nil && req.Urgency.Level == "U1 - Critical"
	})).Return(&crisisdomain.Response{ID: "1", Status: "NEW"}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/requests", map[string]any{
		"raw_text":   "Need 3 doctors near Bandra station",
		"extraction": map[string]any{"need_type": "medical", "quantity": 3},
		"urgency":    map[string]any{"score": 90, "level": "U1 - Critical"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"NEW"`)
	ts.crisis.AssertExpectations(t)
}

func TestValidationErrorShape(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.crisis.On("Submit", mock.Anything, mock.Anything).Return(nil, crisisdomain.ErrInvalidRawText).Once()

	rec := ts.do(http.MethodPost, "/api/requests", map[string]any{"raw_text": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "raw_text", payload.Errors[0].Field)
	assert.Equal(t, "invalid_raw_text", payload.Errors[0].Code)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	ts := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/resources", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Errors[0].Code)
}

func TestNotFoundMapping(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.resources.On("GetByID", mock.Anything, "42").Return(nil, resourcedomain.ErrNotFound).Once()
	ts.crisis.On("GetByID", mock.Anything, "7").Return(nil, crisisdomain.ErrNotFound).Once()

	rec := ts.do(http.MethodGet, "/api/resources/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodGet, "/api/requests/7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchRequestPassesTopN(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.matching.On("MatchRequest", mock.Anything, matchingdomain.MatchRequest{RequestID: "9", TopN: 5}).
		Return(&matchingdomain.Response{RequestID: "9", NeedType: "medical", Matches: []matchingdomain.Match{}}, nil).Once()

	rec := ts.do(http.MethodGet, "/api/requests/9/matches?top_n=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matches":[]`)

	rec = ts.do(http.MethodGet, "/api/requests/9/matches?top_n=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_top_n", decodeError(t, rec).Errors[0].Code)
	ts.matching.AssertExpectations(t)
}

func TestRankMissingFieldIsBadRequest(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.matching.On("Rank", mock.Anything, mock.Anything).Return(nil, matchingdomain.ErrMissingUrgencyTier).Once()

	rec := ts.do(http.MethodPost, "/api/matches", map[string]any{
		"query": map[string]any{"latitude": 19.0, "longitude": 72.8, "need_type": "food"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "urgency_tier", payload.Errors[0].Field)
	assert.Equal(t, "value is required", payload.Errors[0].Message)
}

func TestDispatchCreated(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.dispatch.On("Dispatch", mock.Anything, dispatchdomain.DispatchRequest{
		RequestID:  "11",
		ResourceID: "22",
		Quantity:   intPtr(2),
	}).Return(&dispatchdomain.Result{
		DispatchID:         "33",
		RequestID:          "11",
		ResourceID:         "22",
		QuantityDispatched: 2,
		RemainingCapacity:  3,
		NewRequestStatus:   "IN_PROGRESS",
		DispatchedAt:       time.Date(2026, 7, 26, 9, 0, 0, 0, time.UTC),
	}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/requests/11/dispatch/22", map[string]any{"quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data dispatchdomain.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.RemainingCapacity)
	assert.Equal(t, "IN_PROGRESS", body.Data.NewRequestStatus)
	ts.dispatch.AssertExpectations(t)
}

func TestDispatchWithoutBody(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.dispatch.On("Dispatch", mock.Anything, dispatchdomain.DispatchRequest{RequestID: "11", ResourceID: "22"}).
		Return(&dispatchdomain.Result{DispatchID: "1"}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/requests/11/dispatch/22", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	ts.dispatch.AssertExpectations(t)
}

func TestDispatchConflict(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.dispatch.On("Dispatch", mock.Anything, mock.Anything).Return(nil, dispatchdomain.ErrInsufficientQuantity).Once()

	rec := ts.do(http.MethodPost, "/api/requests/11/dispatch/22", map[string]any{"quantity": 50})
	require.Equal(t, http.StatusConflict, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "conflict", payload.Type)
	assert.Equal(t, "insufficient_quantity", payload.Code)
}

func TestDispatchRateLimited(t *testing.T) {
	bucket := &mockBucket{}
	bucket.On("Allow", mock.Anything, "sathi:dispatch:resource:22", 1.0, 2).
		Return(&ratelimit.Result{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil).Once()

	ts := newTestServer(t, ratelimit.NewDispatchLimiterWithBucket(bucket, 1, 2))
	rec := ts.do(http.MethodPost, "/api/requests/11/dispatch/22", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, rec).Type)
	ts.dispatch.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestDispatchRateLimitAllows(t *testing.T) {
	bucket := &mockBucket{}
	bucket.On("Allow", mock.Anything, "sathi:dispatch:resource:22", 1.0, 2).
		Return(&ratelimit.Result{Allowed: true}, nil).Once()
	ts := newTestServer(t, ratelimit.NewDispatchLimiterWithBucket(bucket, 1, 2))
	ts.dispatch.On("Dispatch", mock.Anything, mock.Anything).Return(&dispatchdomain.Result{DispatchID: "1"}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/requests/11/dispatch/22", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestQueueBindsQuery(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.crisis.On("Queue", mock.Anything, crisisdomain.QueueRequest{Status: "NEW", Limit: 10}).
		Return([]crisisdomain.Response{{ID: "1"}}, nil).Once()

	rec := ts.do(http.MethodGet, "/api/requests/queue?status=NEW&limit=10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/requests/queue?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.crisis.AssertExpectations(t)
}

func TestReplenishAndStatusRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.resources.On("Replenish", mock.Anything, resourcedomain.ReplenishRequest{ID: "5", Quantity: 10}).
		Return(&resourcedomain.Response{ID: "5", QuantityAvailable: 10}, nil).Once()
	ts.crisis.On("UpdateStatus", mock.Anything, crisisdomain.UpdateStatusRequest{ID: "6", Status: "RESOLVED"}).
		Return(nil, crisisdomain.ErrInvalidTransition).Once()

	rec := ts.do(http.MethodPost, "/api/resources/5/replenish", map[string]any{"quantity": 10})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPatch, "/api/requests/6/status", map[string]any{"status": "RESOLVED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status_transition", decodeError(t, rec).Errors[0].Code)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(dispatchdomain.ErrInsufficientQuantity)
	assert.Equal(t, "conflict", typ)
	assert.Equal(t, "insufficient_quantity", code)

	typ, code = classifyErrorForLog(assert.AnError)
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "internal_error", code)
}

func TestSubmitUserFeedbackCreated(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.feedback.On("SubmitUser", mock.Anything, mock.MatchedBy(func(req feedbackdomain.UserFeedbackRequest) bool {
		return req.RequestID == "12" && req.IsCorrect != nil && !*req.IsCorrect &&
			req.CorrectedText != nil && *req.CorrectedText == "flood, not fire"
	})).Return(&feedbackdomain.UserFeedbackResponse{ID: "1", RequestID: "12"}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/requests/12/feedback/user", map[string]any{
		"is_correct":     false,
		"corrected_text": "flood, not fire",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"12"`)
	ts.feedback.AssertExpectations(t)
}

func TestSubmitDispatcherFeedbackRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.feedback.On("SubmitDispatcher", mock.Anything, mock.MatchedBy(func(req feedbackdomain.DispatcherFeedbackRequest) bool {
		return req.RequestID == "12" && req.MatchingRating != nil && *req.MatchingRating == 4
	})).Return(&feedbackdomain.DispatcherFeedbackResponse{ID: "2", RequestID: "12", MatchingRating: intPtr(4)}, nil).Once()
	ts.feedback.On("SubmitDispatcher", mock.Anything, mock.MatchedBy(func(req feedbackdomain.DispatcherFeedbackRequest) bool {
		return req.RequestID == "13"
	})).Return(nil, feedbackdomain.ErrInvalidMatchingRating).Once()
	ts.feedback.On("SubmitDispatcher", mock.Anything, mock.MatchedBy(func(req feedbackdomain.DispatcherFeedbackRequest) bool {
		return req.RequestID == "14"
	})).Return(nil, feedbackdomain.ErrRequestNotFound).Once()

	rec := ts.do(http.MethodPost, "/api/requests/12/feedback/dispatcher", map[string]any{"matching_rating": 4})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matching_rating":4`)

	rec = ts.do(http.MethodPost, "/api/requests/13/feedback/dispatcher", map[string]any{"matching_rating": 9})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "matching_rating", payload.Errors[0].Field)

	rec = ts.do(http.MethodPost, "/api/requests/14/feedback/dispatcher", map[string]any{"matching_rating": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "request_not_found", decodeError(t, rec).Code)
	ts.feedback.AssertExpectations(t)
}

func TestSubmitFeedbackMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/requests/12/feedback/user", bytes.NewBufferString(`{"is_correct":"yes"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.feedback.AssertNotCalled(t, "SubmitUser", mock.Anything, mock.Anything)
}

func TestListRequestFeedback(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.feedback.On("ListByRequest", mock.Anything, "12").Return(&feedbackdomain.ListResponse{
		RequestID:  "12",
		User:       []feedbackdomain.UserFeedbackResponse{},
		Dispatcher: []feedbackdomain.DispatcherFeedbackResponse{},
	}, nil).Once()

	rec := ts.do(http.MethodGet, "/api/requests/12/feedback", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":[]`)
}
