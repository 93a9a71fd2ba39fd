package http

import (
	"context"
	"net/http"
	"time"

	"squircle/internal/config"
	"squircle/internal/domain"
	"squircle/internal/infra/auth/rbac"
	"squircle/internal/infra/auth/session"
	"squircle/internal/infra/db"
	"squircle/internal/infra/identity"
	"squircle/internal/infra/policymfa"
	"squircle/internal/infra/ratelimit"
	"squircle/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine
	log   zerolog.Logger

	ideas      *usecase.IdeaService
	membership *usecase.MembershipService

	authenticator domain.Authenticator
	authorizer    domain.Authorizer
	authInitErr   error

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r, log: log.With().Str("component", "http").Logger()}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Ideas         *usecase.IdeaService
	Membership    *usecase.MembershipService
	Authenticator domain.Authenticator
	Authorizer    domain.Authorizer
	RateLimiter   domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		log:           log.With().Str("component", "http").Logger(),
		ideas:         deps.Ideas,
		membership:    deps.Membership,
		authenticator: deps.Authenticator,
		authorizer:    deps.Authorizer,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	client, err := identity.Load(s.cfg)
	if err != nil {
		s.authInitErr = err
	} else {
		policy, err := policymfa.FromConfig(context.Background(), s.cfg)
		if err != nil {
			s.authInitErr = err
		} else {
			s.authenticator = session.New(client, policy, s.log)
			s.authorizer = rbac.NewAuthorizer(client, s.log)
			s.membership = &usecase.MembershipService{Directory: client}
		}
	}

	if s.store != nil {
		s.ideas = &usecase.IdeaService{Ideas: db.NewIdeaRepository(s.store.DB)}
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.GET("/ideas", s.handleListIdeas)
		v1.POST("/ideas", s.handleAddIdea)
		v1.DELETE("/ideas/:idea_id", s.handleDeleteIdea)

		v1.GET("/members", s.handleListMembers)
		v1.POST("/members/invite", s.handleInviteMember)
		v1.PUT("/members/:member_id/admin", s.handleToggleAdmin)

		v1.GET("/organization/settings/permissions", s.handleSettingsPermissions)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	if s.authInitErr != nil {
		return s.authInitErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
