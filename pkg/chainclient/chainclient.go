package chainclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"crosspay_back/pkg/apperr"
)

// Статусы квитанции у ноды
const (
	ReceiptSuccess = "SUCCESS"
	ReceiptFailed  = "FAILED"
	ReceiptPending = "PENDING"
)

// Дубликат по idempotency key нода не исполняет второй раз,
// а возвращает txid уже принятой транзакции
const codeDuplicate = "DUPLICATE_TRANSACTION"

// Client — HTTP-клиент узла подписи/брадкаста. Ядро не подписывает само:
// сюда уходит уже подписанный платёж, обратно приходит хэш
type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		apiKey: apiKey,
	}
}

type BroadcastRequest struct {
	IdempotencyKey string   `json:"idempotency_key"`
	Chain          string   `json:"chain"`
	FromAddress    string   `json:"from_address"`
	ToAddress      string   `json:"to_address"`
	TokenAddress   string   `json:"token_address"`
	Value          string   `json:"value"`
	Signatures     []string `json:"signatures"`
}

type broadcastResponse struct {
	TxID    string `json:"txid"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DeployRequest struct {
	Chain          string   `json:"chain"`
	OwnerAddresses []string `json:"owner_addresses"`
	Threshold      int      `json:"threshold"`
}

type deployResponse struct {
	Address string `json:"address"`
	TxID    string `json:"txid"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Receipt struct {
	Status      string `json:"status"`
	BlockNumber int64  `json:"block_number"`
}

type lookupResponse struct {
	TxID  string `json:"txid"`
	Found bool   `json:"found"`
}

// Broadcast отправляет подписанный перевод в сеть и возвращает хэш транзакции.
// Повтор с тем же idempotency key не даёт второй транзакции
func (c *Client) Broadcast(ctx context.Context, req BroadcastRequest) (string, error) {
	var result broadcastResponse
	resp, err := c.post(ctx, "/wallet/broadcasttransaction", req, &result)
	if err != nil {
		return "", apperr.Wrap(err, apperr.BroadcastFailure, "broadcast request failed")
	}
	if resp.IsError() {
		return "", apperr.New(apperr.BroadcastFailure, "node returned status %d", resp.StatusCode())
	}

	if result.Code == codeDuplicate && result.TxID != "" {
		logrus.Infof("Нода вернула дубликат по ключу %s, txid %s", req.IdempotencyKey, result.TxID)
		return result.TxID, nil
	}
	if result.Code != "" {
		return "", apperr.New(apperr.BroadcastFailure, "broadcast failed with code %s: %s", result.Code, result.Message)
	}
	if result.TxID == "" {
		return "", apperr.New(apperr.BroadcastFailure, "node returned empty txid")
	}

	return result.TxID, nil
}

// DeploySafe деплоит threshold-контракт и возвращает адрес и хэш деплоя
func (c *Client) DeploySafe(ctx context.Context, req DeployRequest) (address, txID string, err error) {
	var result deployResponse
	resp, err := c.post(ctx, "/wallet/deploysafe", req, &result)
	if err != nil {
		return "", "", apperr.Wrap(err, apperr.BroadcastFailure, "deploy request failed")
	}
	if resp.IsError() {
		return "", "", apperr.New(apperr.BroadcastFailure, "node returned status %d", resp.StatusCode())
	}
	if result.Code != "" {
		return "", "", apperr.New(apperr.BroadcastFailure, "deploy failed with code %s: %s", result.Code, result.Message)
	}
	if result.Address == "" || result.TxID == "" {
		return "", "", apperr.New(apperr.BroadcastFailure, "node returned empty deploy result")
	}

	return result.Address, result.TxID, nil
}

// GetReceipt запрашивает состояние транзакции по хэшу
func (c *Client) GetReceipt(ctx context.Context, txHash string) (Receipt, error) {
	var result Receipt
	resp, err := c.post(ctx, "/wallet/gettransactioninfo", map[string]string{"value": txHash}, &result)
	if err != nil {
		return Receipt{}, apperr.Wrap(err, apperr.BroadcastFailure, "receipt request failed")
	}
	if resp.IsError() {
		return Receipt{}, apperr.New(apperr.BroadcastFailure, "node returned status %d", resp.StatusCode())
	}
	if result.Status == "" {
		result.Status = ReceiptPending
	}

	return result, nil
}

// FindByIdemKey ищет у ноды транзакцию по idempotency key — нужен sweep'у,
// когда брадкаст прошёл, а локальная запись осталась без хэша
func (c *Client) FindByIdemKey(ctx context.Context, key string) (string, bool, error) {
	var result lookupResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetQueryParam("key", key).
		SetResult(&result).
		Get("/wallet/transactionbykey")

	if err != nil {
		return "", false, apperr.Wrap(err, apperr.BroadcastFailure, "lookup request failed")
	}
	if resp.IsError() {
		return "", false, apperr.New(apperr.BroadcastFailure, "node returned status %d", resp.StatusCode())
	}

	return result.TxID, result.Found && result.TxID != "", nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) (*resty.Response, error) {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", c.apiKey).
		SetBody(body).
		SetResult(result).
		Post(path)
}
