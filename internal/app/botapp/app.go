package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Usergeee443/nikoh/internal/config"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
	tginfra "github.com/Usergeee443/nikoh/internal/infra/telegram"
	"github.com/Usergeee443/nikoh/internal/jobs/expiry"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
	notifysvc "github.com/Usergeee443/nikoh/internal/services/notify"
	tariffsvc "github.com/Usergeee443/nikoh/internal/services/tariffs"
)

const (
	welcomeText = "Assalomu alaykum! Nikoh xizmatiga xush kelibsiz.\nTanishuvni boshlash uchun ilovani oching."
	helpText    = "Ilova orqali anketa to'ldiring, tarif tanlang va to'lov chekini shu botga rasm qilib yuboring.\nChek admin tomonidan tekshirilgach tarif faollashadi."
	openAppText = "Ilovani ochish"

	noAccountText    = "Avval Mini App orqali kirib ro'yxatdan o'ting, so'ng chekni qayta yuboring."
	noPendingText    = "Sizda kutilayotgan to'lov yo'q. Avval ilovada tarif tanlang."
	receiptSavedText = "Chek qabul qilindi. Admin tasdiqlagach sizga xabar beramiz."
)

type App struct {
	cfg           config.Config
	logger        *zap.Logger
	postgres      *pgxpool.Pool
	bot           *tginfra.Bot
	userRepo      *pgrepo.UserRepo
	tariffService *tariffsvc.Service
	expiryJob     *expiry.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}

	userRepo := pgrepo.NewUserRepo(pool)
	paymentRepo := pgrepo.NewPaymentRepo(pool)
	tariffRepo := pgrepo.NewTariffRepo(pool)
	chatRepo := pgrepo.NewChatRepo(pool)

	var bot *tginfra.Bot
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Bot.Token)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
	} else {
		logger.Warn("BOT_TOKEN is empty, update listener disabled")
	}

	tariffDeps := tariffsvc.Dependencies{
		Payments: paymentRepo,
		Tariffs:  tariffRepo,
	}
	if bot != nil {
		tariffDeps.Notifier = notifysvc.NewService(bot, userRepo, logger, notifysvc.Config{
			AdminIDs:  cfg.Bot.AdminIDs,
			WebAppURL: cfg.Bot.WebAppURL,
		})
	}
	tariffService := tariffsvc.NewService(tariffDeps, tariffsvc.Config{
		CardNumber: cfg.Payment.CardNumber,
		CardHolder: cfg.Payment.CardHolder,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		postgres:      pool,
		bot:           bot,
		userRepo:      userRepo,
		tariffService: tariffService,
		expiryJob:     expiry.New(chatRepo, tariffRepo, logger),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.runExpiryLoop(ctx)
	}()

	if a.bot != nil {
		go func() {
			errCh <- a.bot.Listen(ctx, tginfra.Handlers{
				OnCommand:  a.handleCommand,
				OnText:     a.handleText,
				OnPhoto:    a.handlePhoto,
				OnCallback: a.handleCallback,
			})
		}()
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) runExpiryLoop(ctx context.Context) error {
	interval := a.cfg.Bot.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	if err := a.expiryJob.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.expiryJob.Run(ctx); err != nil {
				return err
			}
		}
	}
}

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	if a.bot == nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(update.Command)) {
	case "start":
		return a.bot.SendWebAppButton(ctx, update.ChatID, welcomeText, openAppText, a.cfg.Bot.WebAppURL)
	case "help":
		return a.bot.SendText(ctx, update.ChatID, helpText)
	default:
		return nil
	}
}

func (a *App) handleText(ctx context.Context, update tginfra.TextUpdate) error {
	if a.bot == nil {
		return nil
	}
	return a.bot.SendWebAppButton(ctx, update.ChatID, helpText, openAppText, a.cfg.Bot.WebAppURL)
}

// handlePhoto treats every incoming photo as a transfer receipt for the
// sender's open payment.
func (a *App) handlePhoto(ctx context.Context, update tginfra.PhotoUpdate) error {
	if a.bot == nil {
		return nil
	}

	user, err := a.userRepo.FindByTelegramID(ctx, update.UserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return a.bot.SendText(ctx, update.ChatID, noAccountText)
		}
		return err
	}

	payment, err := a.tariffService.AttachReceipt(ctx, user.ID, update.FileID)
	if err != nil {
		if errors.Is(err, tariffsvc.ErrPaymentNotFound) {
			return a.bot.SendText(ctx, update.ChatID, noPendingText)
		}
		return err
	}

	a.notifyAdmins(ctx, payment)

	return a.bot.SendText(ctx, update.ChatID, receiptSavedText)
}

// notifyAdmins pushes the review card with approve/reject buttons to every
// configured admin. Failures only get logged.
func (a *App) notifyAdmins(ctx context.Context, payment model.PaymentRequest) {
	plan, ok := rules.TariffPlanByID(payment.TariffID)
	if !ok {
		a.logger.Warn("payment references unknown tariff", zap.Int64("payment_id", payment.ID), zap.String("tariff_id", payment.TariffID))
		return
	}

	text := fmt.Sprintf("Yangi to'lov cheki #%d\nTarif: %s\nSumma: %d so'm", payment.ID, plan.Name, payment.Amount)
	for _, adminID := range a.cfg.Bot.AdminIDs {
		if err := a.bot.SendReviewQueue(ctx, adminID, text, payment.ID); err != nil {
			a.logger.Warn("failed to notify admin about receipt", zap.Error(err), zap.Int64("admin_id", adminID))
		}
	}
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	if a.bot == nil {
		return nil
	}

	parts := strings.Split(strings.TrimSpace(update.Data), ":")
	if len(parts) != 3 || parts[0] != "pay" {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Noma'lum amal")
	}

	if !a.isAdmin(update.UserID) {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Ruxsat yo'q")
	}

	paymentID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || paymentID <= 0 {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Noto'g'ri to'lov raqami")
	}

	switch parts[1] {
	case "approve":
		if _, _, err := a.tariffService.Approve(ctx, paymentID); err != nil {
			return a.answerResolveError(ctx, update.CallbackID, err)
		}
		if err := a.bot.AnswerCallback(ctx, update.CallbackID, "Tasdiqlandi"); err != nil {
			return err
		}
		return a.bot.SendText(ctx, update.ChatID, fmt.Sprintf("To'lov #%d tasdiqlandi.", paymentID))
	case "reject":
		if _, err := a.tariffService.Reject(ctx, paymentID); err != nil {
			return a.answerResolveError(ctx, update.CallbackID, err)
		}
		if err := a.bot.AnswerCallback(ctx, update.CallbackID, "Rad etildi"); err != nil {
			return err
		}
		return a.bot.SendText(ctx, update.ChatID, fmt.Sprintf("To'lov #%d rad etildi.", paymentID))
	default:
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Noma'lum amal")
	}
}

func (a *App) answerResolveError(ctx context.Context, callbackID string, err error) error {
	switch {
	case errors.Is(err, tariffsvc.ErrPaymentResolved):
		return a.bot.AnswerCallback(ctx, callbackID, "Bu to'lov allaqachon ko'rib chiqilgan")
	case errors.Is(err, tariffsvc.ErrPaymentNotFound):
		return a.bot.AnswerCallback(ctx, callbackID, "To'lov topilmadi")
	default:
		a.logger.Error("payment resolution failed", zap.Error(err))
		return a.bot.AnswerCallback(ctx, callbackID, "Xatolik yuz berdi, keyinroq urinib ko'ring")
	}
}

func (a *App) isAdmin(telegramID int64) bool {
	for _, id := range a.cfg.Bot.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}
