package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Usergeee443/nikoh/internal/config"
	"github.com/Usergeee443/nikoh/internal/infra/telegram"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
	redrepo "github.com/Usergeee443/nikoh/internal/repo/redis"
	adminsvc "github.com/Usergeee443/nikoh/internal/services/admin"
	authsvc "github.com/Usergeee443/nikoh/internal/services/auth"
	chatsvc "github.com/Usergeee443/nikoh/internal/services/chats"
	favoritesvc "github.com/Usergeee443/nikoh/internal/services/favorites"
	feedsvc "github.com/Usergeee443/nikoh/internal/services/feed"
	notifysvc "github.com/Usergeee443/nikoh/internal/services/notify"
	profilesvc "github.com/Usergeee443/nikoh/internal/services/profiles"
	ratesvc "github.com/Usergeee443/nikoh/internal/services/rate"
	requestsvc "github.com/Usergeee443/nikoh/internal/services/requests"
	tariffsvc "github.com/Usergeee443/nikoh/internal/services/tariffs"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	tariffRepo := pgrepo.NewTariffRepo(pool)
	paymentRepo := pgrepo.NewPaymentRepo(pool)
	requestRepo := pgrepo.NewRequestRepo(pool)
	chatRepo := pgrepo.NewChatRepo(pool)
	favoriteRepo := pgrepo.NewFavoriteRepo(pool)
	feedRepo := pgrepo.NewFeedRepo(pool)
	statsRepo := pgrepo.NewStatsRepo(pool)

	// The API process sends notifications through the same bot account the
	// bot process polls with. Without a token the app still serves requests,
	// it just stays silent.
	var notifier *notifysvc.Service
	if cfg.Bot.Token != "" {
		if bot, err := telegram.NewBot(cfg.Bot.Token); err != nil {
			log.Warn("telegram bot init failed, notifications disabled", zap.Error(err))
		} else {
			notifier = notifysvc.NewService(bot, userRepo, log, notifysvc.Config{
				AdminIDs:  cfg.Bot.AdminIDs,
				WebAppURL: cfg.Bot.WebAppURL,
			})
		}
	}

	authService := authsvc.NewService(userRepo, authsvc.Config{
		BotToken:      cfg.Bot.Token,
		AdminIDs:      cfg.Bot.AdminIDs,
		AllowInsecure: cfg.Auth.AllowInsecure,
	}, log)
	profileService := profilesvc.NewService(profileRepo, tariffRepo)
	feedService := feedsvc.NewService(feedsvc.Dependencies{
		Feed:      feedRepo,
		Profiles:  profileRepo,
		Requests:  requestRepo,
		Favorites: favoriteRepo,
	}, feedsvc.Config{
		PageSize:    cfg.Feed.PageSize,
		MaxPageSize: cfg.Feed.MaxPageSize,
	})
	requestDeps := requestsvc.Dependencies{
		Requests: requestRepo,
		Profiles: profileRepo,
	}
	if notifier != nil {
		requestDeps.Notifier = notifier
	}
	requestService := requestsvc.NewService(requestDeps, requestsvc.Config{
		ChatWindow: cfg.Chat.Window,
	})
	messageLimiter := ratesvc.NewLimiter(rateRepo, cfg.Chat.MessagesPerMinute, cfg.Chat.MessagesPer10Sec)
	chatDeps := chatsvc.Dependencies{
		Chats:   chatRepo,
		Limiter: messageLimiter,
		Logger:  log,
	}
	if notifier != nil {
		chatDeps.Notifier = notifier
	}
	chatService := chatsvc.NewService(chatDeps, chatsvc.Config{
		MessageMaxLength:    cfg.Chat.MessageMaxLength,
		HistoryPageMessages: cfg.Chat.HistoryPageMessages,
	})
	favoriteService := favoritesvc.NewService(favoriteRepo)
	tariffDeps := tariffsvc.Dependencies{
		Payments: paymentRepo,
		Tariffs:  tariffRepo,
	}
	if notifier != nil {
		tariffDeps.Notifier = notifier
	}
	tariffService := tariffsvc.NewService(tariffDeps, tariffsvc.Config{
		CardNumber: cfg.Payment.CardNumber,
		CardHolder: cfg.Payment.CardHolder,
	})
	adminService := adminsvc.NewService(adminsvc.Dependencies{
		Stats:    statsRepo,
		Users:    userRepo,
		Payments: tariffService,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		ProfileService:  profileService,
		FeedService:     feedService,
		RequestService:  requestService,
		ChatService:     chatService,
		FavoriteService: favoriteService,
		TariffService:   tariffService,
		AdminService:    adminService,
		Logger:          log,
		Config:          cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
