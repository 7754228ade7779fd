package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"comlab_tool/auth"
	"comlab_tool/config"
	"comlab_tool/db"
	"comlab_tool/live"
	"comlab_tool/models"
	"comlab_tool/session"
	"comlab_tool/stats"
	"comlab_tool/storage"
)

// Short aliases for handlers.
type Ctx = gin.Context
type H = gin.H

// App bundles every dependency the handlers need.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	Repo   *db.Repo
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Config config.Config

	Hub      *live.Hub
	Notifier live.Notifier
	Blobs    storage.Store
	Tokens   *auth.Issuer
	Limiter  *Limiter
	Stats    *stats.Service
	Prefs    *session.RangeStore

	appSess *session.AppSessionStore
	ceremon *session.Store
	relay   *live.RedisNotifier
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) Ceremonies() *session.Store            { return a.ceremon }

// New connects to the database and Redis and builds the router.
func New(cfg config.Config) (*App, error) {
	dbConn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.SMTP.AppName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	a := NewWithDeps(cfg, dbConn, rdb, wa)
	a.relay = live.NewRedisNotifier(rdb, a.Hub)
	a.Notifier = a.relay
	a.appSess = session.NewAppSessionStore(rdb, cfg.AppTTL)
	a.ceremon = session.NewStore(rdb, cfg.SessionTTL)
	a.Prefs = session.NewRangeStore(rdb)
	return a, nil
}

// NewWithDeps wires an App around existing connections. rdb and wa may be
// nil; the live notifier then stays local to this process.
func NewWithDeps(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, wa *webauthn.WebAuthn) *App {
	repo := db.NewRepo(dbConn)

	hub := live.NewHub(time.Local)
	hub.Register(models.TopicBorrowList, repo.BorrowFeed)
	hub.Register(models.TopicReportList, repo.ReportFeed)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set; live tokens will not survive a restart")
	}

	svc := stats.NewService(repo)
	svc.Loc = time.Local

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	useCORS(r, cfg.WebOrigin, cfg.RPOrigins)

	return &App{
		Router:   r,
		DB:       dbConn,
		Repo:     repo,
		RDB:      rdb,
		WA:       wa,
		Config:   cfg,
		Hub:      hub,
		Notifier: hub,
		Blobs:    storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL),
		Tokens:   auth.NewIssuer(secret, cfg.LiveTTL),
		Limiter:  NewLimiter(cfg.SubmitRate, cfg.SubmitBurst),
		Stats:    svc,
	}
}

// Start runs the background loops until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)
	if a.relay != nil {
		go a.relay.Listen(ctx)
	}
	go a.Limiter.Sweep(ctx, 10*time.Minute)
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// NewUserID returns a fresh user id; its 16 UUID bytes are the passkey user handle.
func NewUserID() string { return uuid.NewString() }
