package rates

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"crosspay_back/pkg/apperr"
)

// Client ходит за курсом во внешний источник; курсы не кэшируются,
// каждый пересчёт берёт свежее значение
type Client struct {
	http   *resty.Client
	apiKey string
}

type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		apiKey: apiKey,
	}
}

// Rate возвращает положительный курс from→to или RateUnavailable
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	var result rateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", c.apiKey).
		SetQueryParams(map[string]string{"from": from, "to": to}).
		SetResult(&result).
		Get("/rates")

	if err != nil {
		logrus.Errorf("Ошибка при получении курса %s→%s: %s", from, to, err)
		return decimal.Zero, apperr.Wrap(err, apperr.RateUnavailable, "rate source request failed")
	}
	if resp.IsError() {
		logrus.Errorf("Источник курсов ответил %d для %s→%s", resp.StatusCode(), from, to)
		return decimal.Zero, apperr.New(apperr.RateUnavailable, "rate source returned status %d", resp.StatusCode())
	}
	if !result.Rate.IsPositive() {
		return decimal.Zero, apperr.New(apperr.RateUnavailable, "non-positive rate for %s->%s", from, to)
	}

	return result.Rate, nil
}
