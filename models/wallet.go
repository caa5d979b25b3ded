package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet — фиатный кошелёк пользователя, ровно один на пользователя
type Wallet struct {
	ID                int64           `db:"id" json:"id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	FiatBalance       decimal.Decimal `db:"fiat_balance" json:"fiat_balance"`
	StablecoinBalance decimal.Decimal `db:"stablecoin_balance" json:"stablecoin_balance"`
	BaseCurrency      string          `db:"base_currency" json:"base_currency"`
	DisplayCurrency   string          `db:"display_currency" json:"display_currency"`
	CountryCode       *string         `db:"country_code" json:"country_code,omitempty"`
	Settings          WalletSettings  `db:"settings" json:"settings"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

type WalletSettings struct {
	AllowedCurrencies    []string        `json:"allowed_currencies"`
	ConversionFeePercent decimal.Decimal `json:"conversion_fee_percent"`
	RegulatoryStatus     string          `json:"regulatory_status"`
}

func (s WalletSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *WalletSettings) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = WalletSettings{}
		return nil
	default:
		return errors.New("unsupported type for WalletSettings")
	}
}

type DepositInput struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
}

type CreateWalletInput struct {
	BaseCurrency    string  `json:"base_currency" binding:"required"`
	DisplayCurrency string  `json:"display_currency"`
	CountryCode     *string `json:"country_code"`
}

type DisplayCurrencyInput struct {
	DisplayCurrency string `json:"display_currency" binding:"required"`
}

// ConvertInput — перевод фиата в стейблкоин внутри кошелька
type ConvertInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// WalletView — кошелёк с балансом, пересчитанным в display-валюту на момент чтения
type WalletView struct {
	Wallet
	DisplayBalance decimal.Decimal `json:"display_balance"`
}
