package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/kicklink/social-backend/internal/config"
	"github.com/kicklink/social-backend/internal/handler"
	"github.com/kicklink/social-backend/internal/identity"
	"github.com/kicklink/social-backend/internal/media"
	appmw "github.com/kicklink/social-backend/internal/middleware"
	"github.com/kicklink/social-backend/internal/presence"
	"github.com/kicklink/social-backend/internal/repository"
	"github.com/kicklink/social-backend/internal/service"
)

type Server struct {
	e     *echo.Echo
	repos []interface{ SetDB(*gorm.DB) }
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	hub := presence.NewHub()
	typing := presence.NewTypingTracker(time.Duration(cfg.TypingTTLSeconds) * time.Second)
	reactions := presence.NewReactionSet()
	online := presence.NewOnlineTracker(rdb, time.Duration(cfg.PresenceTTLSeconds)*time.Second)

	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	sneakerRepo := repository.NewSneakerRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	notifSvc := service.NewNotificationService(notifRepo)
	convSvc := service.NewConversationService(convRepo, msgRepo, sneakerRepo, tradeRepo, hub, notifSvc)
	tradeSvc := service.NewTradeService(tradeRepo, sneakerRepo, convSvc, notifSvc)
	commentSvc := service.NewCommentService(commentRepo, notifSvc)
	sneakerSvc := service.NewSneakerService(sneakerRepo)
	presenceSvc := service.NewPresenceService(convRepo, msgRepo, hub, typing, reactions, online)

	convHandler := handler.NewConversationHandler(convSvc)
	tradeHandler := handler.NewTradeHandler(tradeSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	sneakerHandler := handler.NewSneakerHandler(sneakerSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	presenceHandler := handler.NewPresenceHandler(presenceSvc)

	var mediaHandler *handler.MediaHandler
	if cfg.StorageBucket != "" {
		if sc, err := storage.NewClient(context.Background()); err == nil {
			mediaHandler = handler.NewMediaHandler(media.NewUploader(sc, cfg.StorageBucket))
		} else {
			e.Logger.Warnf("storage client init failed, media upload disabled: %v", err)
		}
	}

	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	var userHandler *handler.UserHandler
	if cfg.FirebaseProjectID != "" {
		authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			e.Logger.Fatalf("failed to init firebase auth: %v", err)
		}
		requireAuth = authMw.RequireAuth
		userHandler = handler.NewUserHandler(identity.NewFirebaseResolver(authMw.Client()), presenceSvc)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")

	api.POST("/conversations", convHandler.Create, requireAuth)
	api.GET("/conversations", convHandler.List, requireAuth)
	api.GET("/conversations/:id", convHandler.Get, requireAuth)
	api.GET("/conversations/:id/participants", convHandler.Participants, requireAuth)
	api.GET("/conversations/:id/messages", convHandler.ListMessages, requireAuth)
	api.POST("/conversations/:id/messages", convHandler.PostMessage, requireAuth)
	api.PATCH("/conversations/:id/messages/:msgId", convHandler.EditMessage, requireAuth)
	api.DELETE("/conversations/:id/messages/:msgId", convHandler.DeleteMessage, requireAuth)
	api.POST("/conversations/:id/read", convHandler.MarkRead, requireAuth)

	api.POST("/conversations/:id/typing", presenceHandler.SetTyping, requireAuth)
	api.GET("/conversations/:id/typing", presenceHandler.Typing, requireAuth)
	api.GET("/conversations/:id/events", presenceHandler.Events, requireAuth)
	api.POST("/messages/:msgId/reactions", presenceHandler.React, requireAuth)
	api.DELETE("/messages/:msgId/reactions", presenceHandler.Unreact, requireAuth)
	api.GET("/messages/:msgId/reactions", presenceHandler.Reactions, requireAuth)
	api.POST("/presence/heartbeat", presenceHandler.Heartbeat, requireAuth)

	api.POST("/posts/:postId/comments", commentHandler.Add, requireAuth)
	api.GET("/posts/:postId/comments", commentHandler.List)
	api.PATCH("/comments/:id", commentHandler.Edit, requireAuth)
	api.DELETE("/comments/:id", commentHandler.Delete, requireAuth)
	api.POST("/comments/:id/like", commentHandler.Like, requireAuth)
	api.DELETE("/comments/:id/like", commentHandler.Unlike, requireAuth)

	api.POST("/trades", tradeHandler.Propose, requireAuth)
	api.GET("/trades/:id", tradeHandler.Get, requireAuth)
	api.POST("/trades/:id/respond", tradeHandler.Respond, requireAuth)
	api.GET("/me/trades", tradeHandler.ListMine, requireAuth)

	api.GET("/sneakers", sneakerHandler.List)
	api.GET("/sneakers/:id", sneakerHandler.Get)
	api.POST("/sneakers", sneakerHandler.Create, requireAuth)

	api.GET("/me/notifications", notifHandler.List, requireAuth)
	api.POST("/me/notifications/read", notifHandler.MarkAllRead, requireAuth)

	if mediaHandler != nil {
		api.POST("/media", mediaHandler.Upload, requireAuth)
	}
	if userHandler != nil {
		api.GET("/users/:uid/public", userHandler.GetPublic)
	}

	return &Server{
		e: e,
		repos: []interface{ SetDB(*gorm.DB) }{
			convRepo, msgRepo, tradeRepo, commentRepo, sneakerRepo, notifRepo,
		},
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the late-connected database into every repository. The
// server starts serving before the DB is up; repositories answer
// ErrDBNotReady until this runs.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
}
