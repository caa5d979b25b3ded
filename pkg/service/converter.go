package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"crosspay_back/pkg/apperr"
)

// minorUnits — знаки после запятой по валюте; округление банковское
// и выполняется один раз, в момент сохранения пересчитанной суммы
var minorUnits = map[string]int32{
	"JPY":  0,
	"KRW":  0,
	"VND":  0,
	"BHD":  3,
	"KWD":  3,
	"OMR":  3,
	"TND":  3,
	"USDT": 6,
}

func MinorUnits(code string) int32 {
	if u, ok := minorUnits[strings.ToUpper(code)]; ok {
		return u
	}
	return 2
}

// RoundToCurrency — округление round-half-even до точности валюты
func RoundToCurrency(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.RoundBank(MinorUnits(code))
}

func ValidCurrencyCode(code string) bool {
	if len(code) < 3 || len(code) > 5 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Converter — чистый пересчёт суммы между валютами через внешний курс
type Converter struct {
	rates RateSource
}

func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Convert возвращает сумму в целевой валюте; при from == to сумма не трогается
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if !ValidCurrencyCode(from) || !ValidCurrencyCode(to) {
		return decimal.Zero, apperr.New(apperr.InvalidArgument, "malformed currency code")
	}
	if from == to {
		return amount, nil
	}

	rate, err := c.rates.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return RoundToCurrency(amount.Mul(rate), to), nil
}
