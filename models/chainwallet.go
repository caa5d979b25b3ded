package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	WalletVariantSingleKey = "eoa"
	WalletVariantMultisig  = "multisig"
)

// ChainWallet — блокчейн-кошелёк (EOA или multisig), приватный ключ не хранится
type ChainWallet struct {
	ID             int64          `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Chain          string         `db:"chain" json:"chain"`
	Variant        string         `db:"variant" json:"variant"`
	Address        string         `db:"address" json:"address"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	UserID         *int64         `db:"user_id" json:"user_id,omitempty"`
	TeamID         *int64         `db:"team_id" json:"team_id,omitempty"`
	OwnerAddresses pq.StringArray `db:"owner_addresses" json:"owner_addresses,omitempty"`
	Threshold      *int           `db:"threshold" json:"threshold,omitempty"`
	DeployTxHash   *string        `db:"deploy_tx_hash" json:"deploy_tx_hash,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// Scope — владелец кошелька: пользователь и, опционально, его команда
type Scope struct {
	UserID int64
	TeamID *int64
}

type CreateChainWalletInput struct {
	Name   string `json:"name" binding:"required"`
	Chain  string `json:"chain"`
	TeamID *int64 `json:"team_id"`
}

type CreateMultisigInput struct {
	Name           string   `json:"name" binding:"required"`
	Chain          string   `json:"chain"`
	OwnerAddresses []string `json:"owner_addresses" binding:"required"`
	Threshold      int      `json:"threshold" binding:"required"`
	TeamID         *int64   `json:"team_id"`
}

type SetActiveInput struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreatedChainWallet — ответ на создание EOA: секрет возвращается ровно один раз
type CreatedChainWallet struct {
	ChainWallet
	PrivateKey string `json:"private_key,omitempty"`
}
