package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
)

type fakeTradeRepo struct {
	mu     sync.Mutex
	trades map[int64]models.Trade
	nextID int64
}

func newFakeTradeRepo() *fakeTradeRepo {
	return &fakeTradeRepo{trades: make(map[int64]models.Trade)}
}

func (f *fakeTradeRepo) Create(_ context.Context, trade models.Trade) (models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	trade.ID = f.nextID
	f.trades[trade.ID] = trade
	return trade, nil
}

func (f *fakeTradeRepo) ListByUser(_ context.Context, userID int64) ([]models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Trade
	for _, tr := range f.trades {
		if tr.UserID == userID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func TestRecordTradeExplicitRate(t *testing.T) {
	repo := newFakeTradeRepo()
	rates := &fakeRateSource{}
	svc := NewTradeService(repo, rates)

	trade, err := svc.Record(context.Background(), 1, models.RecordTradeInput{
		CurrencyPair: "eur/usd",
		Amount:       dec("250"),
		Rate:         dec("1.0842"),
	})
	require.NoError(t, err)

	// пара нормализуется, явный курс не перезапрашивается
	assert.Equal(t, "EUR/USD", trade.CurrencyPair)
	assert.True(t, trade.Rate.Equal(dec("1.0842")))
	assert.Zero(t, rates.calls)
}

func TestRecordTradeFetchesRate(t *testing.T) {
	repo := newFakeTradeRepo()
	rates := &fakeRateSource{rates: map[string]decimal.Decimal{"EUR->USD": dec("1.09")}}
	svc := NewTradeService(repo, rates)

	trade, err := svc.Record(context.Background(), 1, models.RecordTradeInput{
		CurrencyPair: "EUR/USD",
		Amount:       dec("100"),
	})
	require.NoError(t, err)
	assert.True(t, trade.Rate.Equal(dec("1.09")))
	assert.Equal(t, 1, rates.calls)
}

func TestRecordTradeRateUnavailable(t *testing.T) {
	svc := NewTradeService(newFakeTradeRepo(), &fakeRateSource{})

	_, err := svc.Record(context.Background(), 1, models.RecordTradeInput{
		CurrencyPair: "EUR/USD",
		Amount:       dec("100"),
	})
	assert.True(t, apperr.IsKind(err, apperr.RateUnavailable))
}

func TestRecordTradeInvalid(t *testing.T) {
	repo := newFakeTradeRepo()
	svc := NewTradeService(repo, &fakeRateSource{})

	cases := []models.RecordTradeInput{
		{CurrencyPair: "EURUSD", Amount: dec("1"), Rate: dec("1")},
		{CurrencyPair: "EUR/USD/JPY", Amount: dec("1"), Rate: dec("1")},
		{CurrencyPair: "USD/USD", Amount: dec("1"), Rate: dec("1")},
		{CurrencyPair: "EUR/USD", Amount: dec("0"), Rate: dec("1")},
		{CurrencyPair: "EUR/USD", Amount: dec("1"), Rate: dec("-2")},
	}
	for _, input := range cases {
		_, err := svc.Record(context.Background(), 1, input)
		assert.True(t, apperr.IsKind(err, apperr.InvalidArgument), "input %+v", input)
	}
	assert.Empty(t, repo.trades)
}

func TestListTradesByUser(t *testing.T) {
	repo := newFakeTradeRepo()
	svc := NewTradeService(repo, &fakeRateSource{})

	_, err := svc.Record(context.Background(), 1, models.RecordTradeInput{CurrencyPair: "EUR/USD", Amount: dec("10"), Rate: dec("1.1")})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), 2, models.RecordTradeInput{CurrencyPair: "GBP/USD", Amount: dec("20"), Rate: dec("1.3")})
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "EUR/USD", mine[0].CurrencyPair)
}
