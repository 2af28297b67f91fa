package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/sathi/internal/config"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	dispatchdomain "github.com/smallbiznis/sathi/internal/dispatch/domain"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	"github.com/smallbiznis/sathi/internal/observability"
	obslogger "github.com/smallbiznis/sathi/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/sathi/internal/observability/metrics"
	obstracing "github.com/smallbiznis/sathi/internal/observability/tracing"
	"github.com/smallbiznis/sathi/internal/ratelimit"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Base:            log,
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	crisisSvc       crisisdomain.Service
	resourceSvc     resourcedomain.Service
	matchingSvc     matchingdomain.Service
	dispatchSvc     dispatchdomain.Service
	feedbackSvc     feedbackdomain.Service
	dispatchLimiter *ratelimit.DispatchLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	CrisisSvc       crisisdomain.Service
	ResourceSvc     resourcedomain.Service
	MatchingSvc     matchingdomain.Service
	DispatchSvc     dispatchdomain.Service
	FeedbackSvc     feedbackdomain.Service
	DispatchLimiter *ratelimit.DispatchLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		crisisSvc:       p.CrisisSvc,
		resourceSvc:     p.ResourceSvc,
		matchingSvc:     p.MatchingSvc,
		dispatchSvc:     p.DispatchSvc,
		feedbackSvc:     p.FeedbackSvc,
		dispatchLimiter: p.DispatchLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/requests", s.SubmitRequest)
	api.GET("/requests/queue", s.RequestQueue)
	api.GET("/requests/:id", s.GetRequestByID)
	api.PATCH("/requests/:id/status", s.UpdateRequestStatus)
	api.GET("/requests/:id/matches", s.MatchRequest)
	api.POST("/requests/:id/dispatch/:resource_id", s.DispatchRateLimit(), s.Dispatch)
	api.GET("/requests/:id/dispatches", s.ListRequestDispatches)
	api.POST("/requests/:id/feedback/user", s.SubmitUserFeedback)
	api.POST("/requests/:id/feedback/dispatcher", s.SubmitDispatcherFeedback)
	api.GET("/requests/:id/feedback", s.ListRequestFeedback)

	api.POST("/matches", s.RankMatches)

	api.POST("/resources", s.CreateResource)
	api.GET("/resources", s.ListResources)
	api.GET("/resources/:id", s.GetResourceByID)
	api.POST("/resources/:id/replenish", s.ReplenishResource)
	api.GET("/resources/:id/dispatches", s.ListResourceDispatches)
}
