package model

import (
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
)

type PaymentRequest struct {
	ID            int64               `json:"id"`
	UserID        int64               `json:"user_id"`
	TariffID      string              `json:"tariff_id"`
	Amount        int64               `json:"amount"`
	Status        enums.PaymentStatus `json:"status"`
	ReceiptFileID string              `json:"receipt_file_id"`
	CreatedAt     time.Time           `json:"created_at"`
	ReviewedAt    *time.Time          `json:"reviewed_at"`
}
