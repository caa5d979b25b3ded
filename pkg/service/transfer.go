package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crosspay_back/internal/wallet"
	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
	"crosspay_back/pkg/cache"
	"crosspay_back/pkg/chainclient"
	"crosspay_back/pkg/repository"
)

const (
	stalePendingAfter   = 2 * time.Minute
	staleSubmittedAfter = 10 * time.Minute
	// pending-запись, которую нода не видела дольше этого срока, считается несостоявшейся
	abandonPendingAfter = 24 * time.Hour
)

type TransferService struct {
	wallets  repository.ChainWallet
	txs      repository.Transaction
	node     ChainNode
	store    *cache.IdempotencyStore
	notifier Notifier
}

func NewTransferService(wallets repository.ChainWallet, txs repository.Transaction, node ChainNode, store *cache.IdempotencyStore, notifier Notifier) *TransferService {
	return &TransferService{
		wallets:  wallets,
		txs:      txs,
		node:     node,
		store:    store,
		notifier: notifier,
	}
}

// Transfer проводит перевод: проверки → pending-запись → брадкаст → submitted.
// Запись создаётся до брадкаста, поэтому успешный перевод не может остаться
// незафиксированным; повтор того же платежа упирается в idempotency key
func (s *TransferService) Transfer(ctx context.Context, scope models.Scope, input models.TransferInput) (models.Transaction, error) {
	if !input.Amount.IsPositive() {
		return models.Transaction{}, apperr.New(apperr.InvalidArgument, "transfer amount must be positive")
	}

	w, err := s.wallets.GetByID(ctx, input.WalletID, scope)
	if err != nil {
		return models.Transaction{}, err
	}
	if !w.IsActive {
		return models.Transaction{}, apperr.New(apperr.InvalidState, "wallet is not active")
	}
	if !wallet.ValidAddress(w.Chain, input.ToAddress) {
		return models.Transaction{}, apperr.New(apperr.InvalidArgument, "invalid to_address for chain %s", w.Chain)
	}

	// Подписи проверяются до любой записи: недобор подписей не оставляет следа в журнале
	if err := verifyAuthorization(w, input); err != nil {
		return models.Transaction{}, err
	}

	key := input.IdempotencyKey
	if key == "" {
		key = deriveIdemKey(w, input)
	}

	// Быстрый путь: недавний повтор находит хэш по ключу без похода за записью по ключу
	if hash, ok := s.store.Get(key); ok {
		if rec, err := s.txs.GetByHash(ctx, hash); err == nil {
			logrus.Infof("Повтор перевода по ключу %s, хэш %s уже известен", key, hash)
			return rec, nil
		}
	}

	if existing, err := s.txs.GetByIdemKey(ctx, key); err == nil {
		return s.resumeExisting(ctx, w, input, existing, key)
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return models.Transaction{}, err
	}

	rec, err := s.txs.CreatePending(ctx, models.Transaction{
		WalletID:     w.ID,
		FromAddress:  w.Address,
		ToAddress:    input.ToAddress,
		Value:        input.Amount,
		FunctionName: "transfer",
		FunctionArgs: models.FunctionArgs{
			"token_address": input.TokenAddress,
			"amount":        input.Amount.String(),
		},
		IdemKey: key,
	})
	if err != nil {
		// Проиграли гонку за ключ — запись уже есть
		if apperr.IsKind(err, apperr.Conflict) {
			existing, err := s.txs.GetByIdemKey(ctx, key)
			if err != nil {
				return models.Transaction{}, err
			}
			return s.resumeExisting(ctx, w, input, existing, key)
		}
		return models.Transaction{}, err
	}

	return s.broadcastAndSubmit(ctx, w, input, rec, key)
}

// resumeExisting решает судьбу найденной по ключу записи: submitted и терминальные
// возвращаются как есть, а pending без хэша доводится заново с шага брадкаста —
// вызывающему pending никогда не отдаётся
func (s *TransferService) resumeExisting(ctx context.Context, w models.ChainWallet, input models.TransferInput, existing models.Transaction, key string) (models.Transaction, error) {
	if existing.Status != models.TxStatusPending {
		logrus.Infof("Повтор перевода по ключу %s, возвращаем запись %d", key, existing.ID)
		return existing, nil
	}
	// Прошлый брадкаст не завершился; нода дедуплицирует по ключу,
	// второй транзакции от повтора не будет
	logrus.Infof("Возобновляем перевод %d по ключу %s", existing.ID, key)
	return s.broadcastAndSubmit(ctx, w, input, existing, key)
}

func (s *TransferService) broadcastAndSubmit(ctx context.Context, w models.ChainWallet, input models.TransferInput, rec models.Transaction, key string) (models.Transaction, error) {
	txHash, err := s.node.Broadcast(ctx, chainclient.BroadcastRequest{
		IdempotencyKey: key,
		Chain:          w.Chain,
		FromAddress:    w.Address,
		ToAddress:      input.ToAddress,
		TokenAddress:   input.TokenAddress,
		Value:          input.Amount.String(),
		Signatures:     input.Signatures,
	})
	if err != nil {
		// Хэша нет: pending-запись остаётся, sweep разберётся, дошёл брадкаст или нет
		logrus.Errorf("Брадкаст перевода %d не удался: %s", rec.ID, err)
		return models.Transaction{}, err
	}

	// Точка невозврата: хэш получен, запись дописывается даже если вызывающий отменился
	nctx := context.WithoutCancel(ctx)
	var out models.Transaction
	err = withRetry(nctx, "mark submitted", func() error {
		out, err = s.txs.MarkSubmitted(nctx, rec.ID, txHash)
		return err
	})
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			// Конкурентный повтор уже проставил хэш
			return s.txs.GetByHash(nctx, txHash)
		}
		return models.Transaction{}, err
	}

	s.store.Set(key, txHash)
	logrus.Infof("Перевод %d отправлен, хэш %s", out.ID, txHash)
	return out, nil
}

// Reconcile сверяет запись с состоянием сети; терминальная запись не меняется
func (s *TransferService) Reconcile(ctx context.Context, txHash string) (models.Transaction, error) {
	rec, err := s.txs.GetByHash(ctx, txHash)
	if err != nil {
		return models.Transaction{}, err
	}
	if rec.Terminal() {
		return rec, nil
	}

	receipt, err := s.node.GetReceipt(ctx, txHash)
	if err != nil {
		return models.Transaction{}, err
	}

	var status string
	switch receipt.Status {
	case chainclient.ReceiptSuccess:
		status = models.TxStatusConfirmed
	case chainclient.ReceiptFailed:
		status = models.TxStatusFailed
	default:
		return rec, nil
	}

	updated, err := s.txs.SetStatusByHash(ctx, txHash, status)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			// Кто-то успел довести запись до терминального статуса раньше
			return s.txs.GetByHash(ctx, txHash)
		}
		return models.Transaction{}, err
	}

	if updated.Status == models.TxStatusConfirmed {
		s.notifier.TransferConfirmed(updated)
	}
	return updated, nil
}

func (s *TransferService) ListForWallet(ctx context.Context, walletID int64, scope models.Scope) ([]models.Transaction, error) {
	if _, err := s.wallets.GetByID(ctx, walletID, scope); err != nil {
		return nil, err
	}
	return s.txs.ListByWallet(ctx, walletID)
}

// Sweep закрывает окно между брадкастом и записью: зависшие pending-записи
// досылаются хэшем из ноды по idempotency key, зависшие submitted — сверяются
func (s *TransferService) Sweep(ctx context.Context) error {
	pending, err := s.txs.ListStale(ctx, models.TxStatusPending, stalePendingAfter)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		txHash, found, err := s.node.FindByIdemKey(ctx, rec.IdemKey)
		if err != nil {
			logrus.Errorf("Sweep: нода недоступна для ключа %s: %s", rec.IdemKey, err)
			continue
		}
		if found {
			if _, err := s.txs.MarkSubmitted(ctx, rec.ID, txHash); err != nil && !apperr.IsKind(err, apperr.NotFound) {
				logrus.Errorf("Sweep: не удалось проставить хэш записи %d: %s", rec.ID, err)
				continue
			}
			if _, err := s.Reconcile(ctx, txHash); err != nil {
				logrus.Errorf("Sweep: сверка %s не удалась: %s", txHash, err)
			}
			continue
		}
		if time.Since(rec.CreatedAt) > abandonPendingAfter {
			if err := s.txs.FailPending(ctx, rec.ID); err != nil {
				logrus.Errorf("Sweep: не удалось закрыть запись %d: %s", rec.ID, err)
			}
		}
	}

	submitted, err := s.txs.ListStale(ctx, models.TxStatusSubmitted, staleSubmittedAfter)
	if err != nil {
		return err
	}
	for _, rec := range submitted {
		if rec.TxHash == nil {
			continue
		}
		if _, err := s.Reconcile(ctx, *rec.TxHash); err != nil {
			logrus.Errorf("Sweep: сверка %s не удалась: %s", *rec.TxHash, err)
		}
	}
	return nil
}

// verifyAuthorization проверяет подписи от signing-сервиса по варианту кошелька:
// EOA — одна подпись ключом кошелька, multisig — не меньше threshold разных владельцев
func verifyAuthorization(w models.ChainWallet, input models.TransferInput) error {
	if len(input.Signatures) == 0 {
		return apperr.New(apperr.InsufficientAuthorization, "signature is required")
	}

	digest := wallet.PayloadDigest("transfer", w.Chain, w.Address, input.ToAddress, input.TokenAddress, input.Amount.String())

	switch w.Variant {
	case models.WalletVariantSingleKey:
		signer, err := wallet.RecoverSigner(w.Chain, digest, input.Signatures[0])
		if err != nil {
			return apperr.New(apperr.InsufficientAuthorization, "invalid signature")
		}
		if !sameAddress(w.Chain, signer, w.Address) {
			return apperr.New(apperr.InsufficientAuthorization, "signature does not match wallet key")
		}
		return nil

	case models.WalletVariantMultisig:
		owners := map[string]bool{}
		for _, o := range w.OwnerAddresses {
			owners[normalizeAddress(w.Chain, o)] = true
		}
		signed := map[string]bool{}
		for _, sig := range input.Signatures {
			signer, err := wallet.RecoverSigner(w.Chain, digest, sig)
			if err != nil {
				return apperr.New(apperr.InsufficientAuthorization, "invalid signature")
			}
			signer = normalizeAddress(w.Chain, signer)
			if !owners[signer] {
				return apperr.New(apperr.InsufficientAuthorization, "signer %s is not an owner", signer)
			}
			signed[signer] = true
		}
		if w.Threshold == nil || len(signed) < *w.Threshold {
			return apperr.New(apperr.InsufficientAuthorization,
				"got %d distinct owner signatures, need %d", len(signed), derefThreshold(w.Threshold))
		}
		return nil

	default:
		return apperr.New(apperr.InvalidState, "unknown wallet variant: %s", w.Variant)
	}
}

func sameAddress(chain, a, b string) bool {
	return normalizeAddress(chain, a) == normalizeAddress(chain, b)
}

func derefThreshold(t *int) int {
	if t == nil {
		return 0
	}
	return *t
}

// deriveIdemKey — детерминированный ключ из параметров платежа,
// если вызывающий не прислал свой
func deriveIdemKey(w models.ChainWallet, input models.TransferInput) string {
	payload := strings.Join([]string{
		"transfer", w.Chain, w.Address, input.ToAddress, input.TokenAddress, input.Amount.String(),
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(payload)).String()
}
