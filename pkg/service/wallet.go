package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
	"crosspay_back/pkg/repository"
)

const (
	defaultBaseCurrency = "USD"
	stablecoinSymbol    = "USDT"
)

var oneHundred = decimal.NewFromInt(100)

type WalletService struct {
	repos     repository.Wallet
	converter *Converter
	rates     RateSource
}

func NewWalletService(repos repository.Wallet, converter *Converter, rates RateSource) *WalletService {
	return &WalletService{
		repos:     repos,
		converter: converter,
		rates:     rates,
	}
}

func defaultSettings(baseCurrency string) models.WalletSettings {
	allowed := []string{baseCurrency}
	for _, c := range []string{"USD", "EUR", "GBP"} {
		if c != baseCurrency {
			allowed = append(allowed, c)
		}
	}
	return models.WalletSettings{
		AllowedCurrencies:    allowed,
		ConversionFeePercent: decimal.NewFromInt(1),
		RegulatoryStatus:     "compliant",
	}
}

// Get возвращает кошелёк, создавая его с нулевыми балансами, если его ещё нет
func (s *WalletService) Get(ctx context.Context, userID int64) (models.WalletView, error) {
	w, err := s.getOrCreate(ctx, userID, defaultBaseCurrency)
	if err != nil {
		return models.WalletView{}, err
	}
	return s.view(ctx, w)
}

// Create — явное создание; второй кошелёк для пользователя — жёсткий Conflict
func (s *WalletService) Create(ctx context.Context, userID int64, input models.CreateWalletInput) (models.Wallet, error) {
	base := strings.ToUpper(input.BaseCurrency)
	if !ValidCurrencyCode(base) {
		return models.Wallet{}, apperr.New(apperr.InvalidArgument, "malformed currency code: %s", input.BaseCurrency)
	}
	display := base
	if input.DisplayCurrency != "" {
		display = strings.ToUpper(input.DisplayCurrency)
		if !ValidCurrencyCode(display) {
			return models.Wallet{}, apperr.New(apperr.InvalidArgument, "malformed currency code: %s", input.DisplayCurrency)
		}
	}

	return s.repos.Create(ctx, models.Wallet{
		UserID:          userID,
		BaseCurrency:    base,
		DisplayCurrency: display,
		CountryCode:     input.CountryCode,
		Settings:        defaultSettings(base),
	})
}

// Deposit пополняет фиатный баланс; валюта, отличная от базовой,
// пересчитывается по свежему курсу и округляется один раз при записи
func (s *WalletService) Deposit(ctx context.Context, userID int64, input models.DepositInput) (models.Wallet, error) {
	if !input.Amount.IsPositive() {
		return models.Wallet{}, apperr.New(apperr.InvalidArgument, "deposit amount must be positive")
	}
	currency := strings.ToUpper(input.Currency)
	if !ValidCurrencyCode(currency) {
		return models.Wallet{}, apperr.New(apperr.InvalidArgument, "malformed currency code: %s", input.Currency)
	}

	w, err := s.getOrCreate(ctx, userID, currency)
	if err != nil {
		return models.Wallet{}, err
	}

	delta := input.Amount
	if currency != w.BaseCurrency {
		delta, err = s.converter.Convert(ctx, input.Amount, currency, w.BaseCurrency)
		if err != nil {
			return models.Wallet{}, err
		}
	}

	var out models.Wallet
	err = withRetry(ctx, "deposit", func() error {
		out, err = s.repos.AddFiat(ctx, userID, delta)
		return err
	})
	return out, err
}

// ConvertToStablecoin списывает фиат и начисляет стейблкоин с учётом комиссии кошелька
func (s *WalletService) ConvertToStablecoin(ctx context.Context, userID int64, input models.ConvertInput) (models.Wallet, error) {
	if !input.Amount.IsPositive() {
		return models.Wallet{}, apperr.New(apperr.InvalidArgument, "conversion amount must be positive")
	}

	w, err := s.repos.GetByUserID(ctx, userID)
	if err != nil {
		return models.Wallet{}, err
	}

	rate, err := s.rates.Rate(ctx, w.BaseCurrency, stablecoinSymbol)
	if err != nil {
		return models.Wallet{}, err
	}

	fee := w.Settings.ConversionFeePercent
	net := input.Amount.Mul(oneHundred.Sub(fee)).Div(oneHundred)
	stable := RoundToCurrency(net.Mul(rate), stablecoinSymbol)

	var out models.Wallet
	err = withRetry(ctx, "convert", func() error {
		out, err = s.repos.ConvertToStablecoin(ctx, userID, input.Amount, stable)
		return err
	})
	return out, err
}

// SetDisplayCurrency меняет только представление, балансы не пересчитываются
func (s *WalletService) SetDisplayCurrency(ctx context.Context, userID int64, currency string) (models.WalletView, error) {
	currency = strings.ToUpper(currency)
	if !ValidCurrencyCode(currency) {
		return models.WalletView{}, apperr.New(apperr.InvalidArgument, "malformed currency code: %s", currency)
	}

	w, err := s.getOrCreate(ctx, userID, defaultBaseCurrency)
	if err != nil {
		return models.WalletView{}, err
	}
	w, err = s.repos.UpdateDisplayCurrency(ctx, w.UserID, currency)
	if err != nil {
		return models.WalletView{}, err
	}
	return s.view(ctx, w)
}

func (s *WalletService) getOrCreate(ctx context.Context, userID int64, baseCurrency string) (models.Wallet, error) {
	return s.repos.GetOrCreate(ctx, models.Wallet{
		UserID:          userID,
		BaseCurrency:    baseCurrency,
		DisplayCurrency: baseCurrency,
		Settings:        defaultSettings(baseCurrency),
	})
}

// view считает display-баланс заново на каждое чтение: курсы меняются,
// кэшировать пересчитанное значение нельзя
func (s *WalletService) view(ctx context.Context, w models.Wallet) (models.WalletView, error) {
	display := w.FiatBalance
	if w.BaseCurrency != w.DisplayCurrency {
		var err error
		display, err = s.converter.Convert(ctx, w.FiatBalance, w.BaseCurrency, w.DisplayCurrency)
		if err != nil {
			return models.WalletView{}, err
		}
	}
	return models.WalletView{Wallet: w, DisplayBalance: display}, nil
}
