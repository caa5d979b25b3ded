package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"crosspay_back/models"
)

const txColumns = `id, wallet_id, tx_hash, from_address, to_address, value, function_name, function_args, status, idem_key, created_at`

type TransactionPostgres struct {
	db *sqlx.DB
}

func NewTransactionPostgres(db *sqlx.DB) *TransactionPostgres {
	return &TransactionPostgres{db: db}
}

// CreatePending пишет запись ДО брадкаста; уникальный idem_key ловит повтор
// того же платежа и возвращает Conflict вместо второй записи
func (r *TransactionPostgres) CreatePending(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	var out models.Transaction
	query := `
        INSERT INTO transactions (wallet_id, from_address, to_address, value, function_name, function_args, status, idem_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + txColumns
	err := r.db.GetContext(ctx, &out, query,
		tx.WalletID,
		tx.FromAddress,
		tx.ToAddress,
		tx.Value,
		tx.FunctionName,
		tx.FunctionArgs,
		models.TxStatusPending,
		tx.IdemKey,
	)
	return out, classify(err, "transaction not found")
}

func (r *TransactionPostgres) GetByIdemKey(ctx context.Context, key string) (models.Transaction, error) {
	var out models.Transaction
	query := `SELECT ` + txColumns + ` FROM transactions WHERE idem_key = $1`
	err := r.db.GetContext(ctx, &out, query, key)
	return out, classify(err, "transaction not found")
}

func (r *TransactionPostgres) GetByHash(ctx context.Context, hash string) (models.Transaction, error) {
	var out models.Transaction
	query := `SELECT ` + txColumns + ` FROM transactions WHERE tx_hash = $1`
	err := r.db.GetContext(ctx, &out, query, hash)
	return out, classify(err, "transaction not found")
}

// MarkSubmitted переводит pending → submitted и фиксирует хэш
func (r *TransactionPostgres) MarkSubmitted(ctx context.Context, id int64, hash string) (models.Transaction, error) {
	var out models.Transaction
	query := `
        UPDATE transactions SET tx_hash = $1, status = $2
        WHERE id = $3 AND status = $4
        RETURNING ` + txColumns
	err := r.db.GetContext(ctx, &out, query, hash, models.TxStatusSubmitted, id, models.TxStatusPending)
	return out, classify(err, "transaction not found")
}

// SetStatusByHash двигает статус только вперёд: терминальные записи не трогаются
func (r *TransactionPostgres) SetStatusByHash(ctx context.Context, hash, status string) (models.Transaction, error) {
	var out models.Transaction
	query := `
        UPDATE transactions SET status = $1
        WHERE tx_hash = $2 AND status NOT IN ($3, $4)
        RETURNING ` + txColumns
	err := r.db.GetContext(ctx, &out, query, status, hash, models.TxStatusConfirmed, models.TxStatusFailed)
	return out, classify(err, "transaction not found")
}

// FailPending закрывает pending-запись, чей брадкаст так и не дошёл до ноды
func (r *TransactionPostgres) FailPending(ctx context.Context, id int64) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`
	_, err := r.db.ExecContext(ctx, query, models.TxStatusFailed, id, models.TxStatusPending)
	return classify(err, "transaction not found")
}

func (r *TransactionPostgres) ListByWallet(ctx context.Context, walletID int64) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	query := `SELECT ` + txColumns + ` FROM transactions WHERE wallet_id = $1 ORDER BY created_at, id`
	err := r.db.SelectContext(ctx, &txs, query, walletID)
	return txs, classify(err, "transaction not found")
}

// ListStale — записи в данном статусе старше порога, кандидаты для sweep
func (r *TransactionPostgres) ListStale(ctx context.Context, status string, olderThan time.Duration) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	query := `
        SELECT ` + txColumns + ` FROM transactions
        WHERE status = $1 AND created_at < NOW() - make_interval(secs => $2)
        ORDER BY created_at, id`
	err := r.db.SelectContext(ctx, &txs, query, status, olderThan.Seconds())
	return txs, classify(err, "transaction not found")
}
