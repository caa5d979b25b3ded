package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxStatusPending   = "pending"
	TxStatusSubmitted = "submitted"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// Transaction — запись в журнале ончейн-переводов, только добавление
type Transaction struct {
	ID           int64           `db:"id" json:"id"`
	WalletID     int64           `db:"wallet_id" json:"wallet_id"`
	TxHash       *string         `db:"tx_hash" json:"tx_hash,omitempty"`
	FromAddress  string          `db:"from_address" json:"from"`
	ToAddress    string          `db:"to_address" json:"to"`
	Value        decimal.Decimal `db:"value" json:"value"`
	FunctionName string          `db:"function_name" json:"function_name"`
	FunctionArgs FunctionArgs    `db:"function_args" json:"function_args"`
	Status       string          `db:"status" json:"status"`
	IdemKey      string          `db:"idem_key" json:"-"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Terminal — из терминального статуса запись больше не переходит
func (t Transaction) Terminal() bool {
	return t.Status == TxStatusConfirmed || t.Status == TxStatusFailed
}

type FunctionArgs map[string]interface{}

func (a FunctionArgs) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(a)
}

func (a *FunctionArgs) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	default:
		return errors.New("unsupported type for FunctionArgs")
	}
}

type TransferInput struct {
	WalletID     int64           `json:"wallet_id" binding:"required"`
	ToAddress    string          `json:"to_address" binding:"required"`
	TokenAddress string          `json:"token_address" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	// Signatures — подписи от внешнего signing-сервиса, сырые ключи сюда не передаются
	Signatures     []string `json:"signatures" binding:"required"`
	IdempotencyKey string   `json:"idempotency_key"`
}

type ReconcileInput struct {
	TxHash string `json:"tx_hash" binding:"required"`
}
