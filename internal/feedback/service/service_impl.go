package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/clock"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        feedbackdomain.Repository
	RequestRepo crisisdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        feedbackdomain.Repository
	requestRepo crisisdomain.Repository
}

func New(p Params) feedbackdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("feedback.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		requestRepo: p.RequestRepo,
	}
}

func (s *Service) SubmitUser(ctx context.Context, req feedbackdomain.UserFeedbackRequest) (*feedbackdomain.UserFeedbackResponse, error) {
	requestID, err := s.requireRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if req.IsCorrect == nil {
		return nil, feedbackdomain.ErrMissingIsCorrect
	}
	corrected, err := normalizeText(req.CorrectedText, feedbackdomain.MaxCorrectedTextLength, feedbackdomain.ErrInvalidCorrectedText)
	if err != nil {
		return nil, err
	}

	entry := &feedbackdomain.UserFeedback{
		ID:              s.genID.Generate(),
		CrisisRequestID: requestID,
		IsCorrect:       *req.IsCorrect,
		CorrectedText:   corrected,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.InsertUser(ctx, s.db, entry); err != nil {
		s.log.Error("failed to store user feedback", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("user feedback recorded",
		zap.String("request_id", requestID.String()),
		zap.Bool("is_correct", entry.IsCorrect),
	)
	resp := feedbackdomain.ToUserResponse(entry)
	return &resp, nil
}

func (s *Service) SubmitDispatcher(ctx context.Context, req feedbackdomain.DispatcherFeedbackRequest) (*feedbackdomain.DispatcherFeedbackResponse, error) {
	requestID, err := s.requireRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if !feedbackdomain.ValidRating(req.ExtractionRating) {
		return nil, feedbackdomain.ErrInvalidExtractionRating
	}
	if !feedbackdomain.ValidRating(req.MatchingRating) {
		return nil, feedbackdomain.ErrInvalidMatchingRating
	}
	comment, err := normalizeText(req.Comment, feedbackdomain.MaxCommentLength, feedbackdomain.ErrInvalidComment)
	if err != nil {
		return nil, err
	}
	if req.ExtractionRating == nil && req.MatchingRating == nil && comment == nil {
		return nil, feedbackdomain.ErrMissingFeedback
	}

	entry := &feedbackdomain.DispatcherFeedback{
		ID:               s.genID.Generate(),
		CrisisRequestID:  requestID,
		ExtractionRating: req.ExtractionRating,
		MatchingRating:   req.MatchingRating,
		Comment:          comment,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.repo.InsertDispatcher(ctx, s.db, entry); err != nil {
		s.log.Error("failed to store dispatcher feedback", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("dispatcher feedback recorded", zap.String("request_id", requestID.String()))
	resp := feedbackdomain.ToDispatcherResponse(entry)
	return &resp, nil
}

func (s *Service) ListByRequest(ctx context.Context, requestID string) (*feedbackdomain.ListResponse, error) {
	id, err := s.requireRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.ListUserByRequest(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	dispatchers, err := s.repo.ListDispatcherByRequest(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := &feedbackdomain.ListResponse{
		RequestID:  id.String(),
		User:       make([]feedbackdomain.UserFeedbackResponse, 0, len(users)),
		Dispatcher: make([]feedbackdomain.DispatcherFeedbackResponse, 0, len(dispatchers)),
	}
	for i := range users {
		resp.User = append(resp.User, feedbackdomain.ToUserResponse(&users[i]))
	}
	for i := range dispatchers {
		resp.Dispatcher = append(resp.Dispatcher, feedbackdomain.ToDispatcherResponse(&dispatchers[i]))
	}
	return resp, nil
}

func (s *Service) requireRequest(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := feedbackdomain.ParseID(strings.TrimSpace(raw))
	if err != nil {
		return 0, feedbackdomain.ErrInvalidID
	}
	request, err := s.requestRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if request == nil {
		return 0, feedbackdomain.ErrRequestNotFound
	}
	return id, nil
}

// normalizeText trims value and treats blank text as absent.
func normalizeText(value *string, maxLen int, invalid error) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return nil, invalid
	}
	return &trimmed, nil
}
