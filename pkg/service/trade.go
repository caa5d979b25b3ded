package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
	"crosspay_back/pkg/repository"
)

type TradeService struct {
	repos repository.Trade
	rates RateSource
}

func NewTradeService(repos repository.Trade, rates RateSource) *TradeService {
	return &TradeService{
		repos: repos,
		rates: rates,
	}
}

// Record фиксирует сделку в журнале; курс без значения берётся
// у источника курсов на момент записи
func (s *TradeService) Record(ctx context.Context, userID int64, input models.RecordTradeInput) (models.Trade, error) {
	if !input.Amount.IsPositive() {
		return models.Trade{}, apperr.New(apperr.InvalidArgument, "trade amount must be positive")
	}

	from, to, err := splitPair(input.CurrencyPair)
	if err != nil {
		return models.Trade{}, err
	}

	rate := input.Rate
	if rate.IsZero() {
		rate, err = s.rates.Rate(ctx, from, to)
		if err != nil {
			return models.Trade{}, err
		}
	}
	if !rate.IsPositive() {
		return models.Trade{}, apperr.New(apperr.InvalidArgument, "trade rate must be positive")
	}

	trade, err := s.repos.Create(ctx, models.Trade{
		UserID:       userID,
		CurrencyPair: from + "/" + to,
		Amount:       input.Amount,
		Rate:         rate,
	})
	if err != nil {
		return models.Trade{}, err
	}

	logrus.Infof("Сделка %d записана: %s, объём %s по курсу %s", trade.ID, trade.CurrencyPair, trade.Amount, trade.Rate)
	return trade, nil
}

func (s *TradeService) List(ctx context.Context, userID int64) ([]models.Trade, error) {
	return s.repos.ListByUser(ctx, userID)
}

// splitPair разбирает пару вида "EUR/USD" в нормализованные коды
func splitPair(pair string) (string, string, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(pair)), "/")
	if len(parts) != 2 || !ValidCurrencyCode(parts[0]) || !ValidCurrencyCode(parts[1]) {
		return "", "", apperr.New(apperr.InvalidArgument, "malformed currency pair: %s", pair)
	}
	if parts[0] == parts[1] {
		return "", "", apperr.New(apperr.InvalidArgument, "currency pair sides must differ")
	}
	return parts[0], parts[1], nil
}
