package server

import (
	"net/http"
	"time"

	"library-backend/internal/config"
	"library-backend/internal/handler"
	"library-backend/internal/middleware"
	"library-backend/internal/repository"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, log *logrus.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
		log:    log,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Repositories
	credentialRepo := repository.NewCredentialRepository(s.db, s.log)
	userRepo := repository.NewUserRepository(s.db, s.log)
	memberRepo := repository.NewMemberRepository(s.db, s.log)
	holdingRepo := repository.NewHoldingRepository(s.db, s.log)
	reservationRepo := repository.NewReservationRepository(s.db, s.log)
	removalRepo := repository.NewRemovalRepository(s.db, s.log)
	issueRepo := repository.NewIssueRepository(s.db, s.log)

	// Services
	tokens := service.NewTokenAuthority(
		credentialRepo,
		[]byte(s.cfg.Auth.AccessSecret),
		[]byte(s.cfg.Auth.RefreshSecret),
		time.Duration(s.cfg.Auth.AccessTTLMinutes)*time.Minute,
		s.logger,
	)
	authService := service.NewAuthService(userRepo, tokens, s.logger)
	directory := service.NewMembershipDirectory(memberRepo, s.logger)
	ledger := service.NewCirculationLedger(holdingRepo, reservationRepo, issueRepo, directory, s.logger)
	audit := service.NewRemovalAudit(removalRepo, memberRepo, holdingRepo, s.logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, s.log)
	memberHandler := handler.NewMemberHandler(directory, s.log)
	holdingHandler := handler.NewHoldingHandler(ledger, s.log)
	reservationHandler := handler.NewReservationHandler(ledger, s.log)
	removalHandler := handler.NewRemovalHandler(audit, s.log)
	issueHandler := handler.NewIssueHandler(issueRepo, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Protected routes: authenticate, then rotate the refresh token so
	// every response carries a fresh pair.
	api := s.router.Group("/api")
	api.Use(middleware.Authenticate(tokens, s.logger))
	api.Use(middleware.RotateRefresh(tokens, s.logger))
	{
		api.GET("/members", memberHandler.List)
		api.POST("/members", memberHandler.Register)
		api.DELETE("/members/ban/:id", memberHandler.Ban)

		api.POST("/holdings", holdingHandler.Create)
		api.GET("/holdings/available/:serial", holdingHandler.Available)
		api.GET("/holdings/issue/:id", holdingHandler.ByIssue)
		api.DELETE("/holdings/:serial", holdingHandler.Remove)

		api.GET("/reservations", reservationHandler.List)
		api.POST("/reservations", reservationHandler.Create)
		api.PUT("/reservations/receive/:id", reservationHandler.Receive)
		api.GET("/reservations/overdue", reservationHandler.Overdue)

		api.GET("/removals/:subject", removalHandler.List)

		api.GET("/issues", issueHandler.List)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
