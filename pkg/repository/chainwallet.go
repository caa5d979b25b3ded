package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"crosspay_back/models"
)

const chainWalletColumns = `id, name, chain, variant, address, is_active, user_id, team_id, owner_addresses, threshold, deploy_tx_hash, created_at`

type ChainWalletPostgres struct {
	db *sqlx.DB
}

func NewChainWalletPostgres(db *sqlx.DB) *ChainWalletPostgres {
	return &ChainWalletPostgres{db: db}
}

func (r *ChainWalletPostgres) Create(ctx context.Context, wallet models.ChainWallet) (models.ChainWallet, error) {
	var w models.ChainWallet
	query := `
        INSERT INTO chain_wallets (name, chain, variant, address, is_active, user_id, team_id, owner_addresses, threshold, deploy_tx_hash)
        VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $8, $9)
        RETURNING ` + chainWalletColumns
	err := r.db.GetContext(ctx, &w, query,
		wallet.Name,
		wallet.Chain,
		wallet.Variant,
		wallet.Address,
		wallet.UserID,
		wallet.TeamID,
		wallet.OwnerAddresses,
		wallet.Threshold,
		wallet.DeployTxHash,
	)
	return w, classify(err, "chain wallet not found")
}

// GetByID отдаёт кошелёк только владельцу: чужой id выглядит как NotFound
func (r *ChainWalletPostgres) GetByID(ctx context.Context, id int64, scope models.Scope) (models.ChainWallet, error) {
	var w models.ChainWallet
	query := `
        SELECT ` + chainWalletColumns + ` FROM chain_wallets
        WHERE id = $1 AND (user_id = $2 OR ($3::bigint IS NOT NULL AND team_id = $3))`
	err := r.db.GetContext(ctx, &w, query, id, scope.UserID, scope.TeamID)
	return w, classify(err, "chain wallet not found")
}

func (r *ChainWalletPostgres) ListByScope(ctx context.Context, scope models.Scope) ([]models.ChainWallet, error) {
	wallets := []models.ChainWallet{}
	query := `
        SELECT ` + chainWalletColumns + ` FROM chain_wallets
        WHERE user_id = $1 OR ($2::bigint IS NOT NULL AND team_id = $2)
        ORDER BY created_at, id`
	err := r.db.SelectContext(ctx, &wallets, query, scope.UserID, scope.TeamID)
	return wallets, classify(err, "chain wallet not found")
}

func (r *ChainWalletPostgres) SetActive(ctx context.Context, id int64, scope models.Scope, active bool) (models.ChainWallet, error) {
	var w models.ChainWallet
	query := `
        UPDATE chain_wallets SET is_active = $1
        WHERE id = $2 AND (user_id = $3 OR ($4::bigint IS NOT NULL AND team_id = $4))
        RETURNING ` + chainWalletColumns
	err := r.db.GetContext(ctx, &w, query, active, id, scope.UserID, scope.TeamID)
	return w, classify(err, "chain wallet not found")
}
