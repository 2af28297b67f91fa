package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/clock"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	crisisrepository "github.com/smallbiznis/sathi/internal/crisis/repository"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
	"github.com/smallbiznis/sathi/internal/feedback/repository"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"github.com/smallbiznis/sathi/internal/testutil/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const storedRequestID = "1001"

func newTestService(t *testing.T) (feedbackdomain.Service, *clock.FakeClock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 7, 26, 9, 0, 0, 0, time.UTC))
	db := testdb.Open(t)

	requests := crisisrepository.Provide()
	require.NoError(t, requests.Insert(context.Background(), db, &crisisdomain.CrisisRequest{
		ID:              1001,
		RawText:         "Need 3 doctors urgently near Bandra station",
		NeedType:        resourcedomain.TypeMedical,
		Extraction:      datatypes.JSON(`{}`),
		UrgencyScore:    88,
		UrgencyLevel:    "U1 - Critical",
		UrgencyAnalysis: datatypes.JSON(`{}`),
		Status:          crisisdomain.StatusNew,
		CreatedAt:       clk.Now(),
		UpdatedAt:       clk.Now(),
	}))

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		RequestRepo: requests,
	})
	return svc, clk
}

func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestSubmitUserFeedback(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	resp, err := svc.SubmitUser(ctx, feedbackdomain.UserFeedbackRequest{
		RequestID:     storedRequestID,
		IsCorrect:     boolPtr(false),
		CorrectedText: strPtr("  Not fire, it is a flood  "),
	})
	require.NoError(t, err)
	assert.Equal(t, storedRequestID, resp.RequestID)
	assert.False(t, resp.IsCorrect)
	require.NotNil(t, resp.CorrectedText)
	assert.Equal(t, "Not fire, it is a flood", *resp.CorrectedText)
	assert.Equal(t, clk.Now(), resp.CreatedAt)

	confirmed, err := svc.SubmitUser(ctx, feedbackdomain.UserFeedbackRequest{
		RequestID:     storedRequestID,
		IsCorrect:     boolPtr(true),
		CorrectedText: strPtr("   "),
	})
	require.NoError(t, err)
	assert.True(t, confirmed.IsCorrect)
	assert.Nil(t, confirmed.CorrectedText)
}

func TestSubmitUserFeedbackValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  feedbackdomain.UserFeedbackRequest
		want error
	}{
		{"bad id", feedbackdomain.UserFeedbackRequest{RequestID: "abc", IsCorrect: boolPtr(true)}, feedbackdomain.ErrInvalidID},
		{"unknown request", feedbackdomain.UserFeedbackRequest{RequestID: "999", IsCorrect: boolPtr(true)}, feedbackdomain.ErrRequestNotFound},
		{"missing verdict", feedbackdomain.UserFeedbackRequest{RequestID: storedRequestID}, feedbackdomain.ErrMissingIsCorrect},
		{
			"correction too long",
			feedbackdomain.UserFeedbackRequest{
				RequestID:     storedRequestID,
				IsCorrect:     boolPtr(false),
				CorrectedText: strPtr(strings.Repeat("x", feedbackdomain.MaxCorrectedTextLength+1)),
			},
			feedbackdomain.ErrInvalidCorrectedText,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitUser(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSubmitDispatcherFeedback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.SubmitDispatcher(ctx, feedbackdomain.DispatcherFeedbackRequest{
		RequestID:        storedRequestID,
		ExtractionRating: intPtr(4),
		MatchingRating:   intPtr(2),
		Comment:          strPtr("nearest clinic was closed"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, *resp.ExtractionRating)
	assert.Equal(t, 2, *resp.MatchingRating)
	assert.Equal(t, "nearest clinic was closed", *resp.Comment)

	commentOnly, err := svc.SubmitDispatcher(ctx, feedbackdomain.DispatcherFeedbackRequest{
		RequestID: storedRequestID,
		Comment:   strPtr("good match"),
	})
	require.NoError(t, err)
	assert.Nil(t, commentOnly.ExtractionRating)
	assert.Nil(t, commentOnly.MatchingRating)
}

func TestSubmitDispatcherFeedbackValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  feedbackdomain.DispatcherFeedbackRequest
		want error
	}{
		{"extraction below scale", feedbackdomain.DispatcherFeedbackRequest{RequestID: storedRequestID, ExtractionRating: intPtr(0)}, feedbackdomain.ErrInvalidExtractionRating},
		{"matching above scale", feedbackdomain.DispatcherFeedbackRequest{RequestID: storedRequestID, MatchingRating: intPtr(6)}, feedbackdomain.ErrInvalidMatchingRating},
		{"nothing to record", feedbackdomain.DispatcherFeedbackRequest{RequestID: storedRequestID, Comment: strPtr("  ")}, feedbackdomain.ErrMissingFeedback},
		{
			"comment too long",
			feedbackdomain.DispatcherFeedbackRequest{RequestID: storedRequestID, Comment: strPtr(strings.Repeat("y", feedbackdomain.MaxCommentLength+1))},
			feedbackdomain.ErrInvalidComment,
		},
		{"unknown request", feedbackdomain.DispatcherFeedbackRequest{RequestID: "999", MatchingRating: intPtr(3)}, feedbackdomain.ErrRequestNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitDispatcher(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestListFeedbackByRequest(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	empty, err := svc.ListByRequest(ctx, storedRequestID)
	require.NoError(t, err)
	assert.Empty(t, empty.User)
	assert.Empty(t, empty.Dispatcher)

	_, err = svc.SubmitUser(ctx, feedbackdomain.UserFeedbackRequest{RequestID: storedRequestID, IsCorrect: boolPtr(true)})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.SubmitDispatcher(ctx, feedbackdomain.DispatcherFeedbackRequest{RequestID: storedRequestID, MatchingRating: intPtr(5)})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.SubmitDispatcher(ctx, feedbackdomain.DispatcherFeedbackRequest{RequestID: storedRequestID, MatchingRating: intPtr(3)})
	require.NoError(t, err)

	list, err := svc.ListByRequest(ctx, storedRequestID)
	require.NoError(t, err)
	assert.Equal(t, storedRequestID, list.RequestID)
	require.Len(t, list.User, 1)
	assert.True(t, list.User[0].IsCorrect)
	require.Len(t, list.Dispatcher, 2)
	assert.Equal(t, 5, *list.Dispatcher[0].MatchingRating)
	assert.Equal(t, 3, *list.Dispatcher[1].MatchingRating)

	_, err = svc.ListByRequest(ctx, "999")
	assert.ErrorIs(t, err, feedbackdomain.ErrRequestNotFound)
}
