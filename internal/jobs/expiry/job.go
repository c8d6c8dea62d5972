package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type ChatStore interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type TariffStore interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// Job closes chats past their expiry and retires tariffs past their listing
// window. Both stores tolerate repeated runs.
type Job struct {
	chats   ChatStore
	tariffs TariffStore
	now     func() time.Time
	logger  *zap.Logger
}

func New(chats ChatStore, tariffs TariffStore, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		chats:   chats,
		tariffs: tariffs,
		now:     time.Now,
		logger:  logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	now := j.now().UTC()

	if j.chats != nil {
		closed, err := j.chats.DeactivateExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("deactivate expired chats: %w", err)
		}
		if closed > 0 {
			j.logger.Info("expired chats closed", zap.Int64("closed", closed))
		}
	}

	if j.tariffs != nil {
		retired, err := j.tariffs.DeactivateExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("deactivate expired tariffs: %w", err)
		}
		if retired > 0 {
			j.logger.Info("expired tariffs retired", zap.Int64("retired", retired))
		}
	}

	return nil
}
