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

// fakeWalletRepo — потокобезопасная карта кошельков с инъекцией
// StorageConflict для проверки ретраев
type fakeWalletRepo struct {
	mu            sync.Mutex
	wallets       map[int64]models.Wallet
	nextID        int64
	conflictsLeft int
	addFiatCalls  int
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[int64]models.Wallet)}
}

func (f *fakeWalletRepo) GetByUserID(_ context.Context, userID int64) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return models.Wallet{}, apperr.New(apperr.NotFound, "wallet not found")
	}
	return w, nil
}

func (f *fakeWalletRepo) Create(_ context.Context, wallet models.Wallet) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.wallets[wallet.UserID]; ok {
		return models.Wallet{}, apperr.New(apperr.Conflict, "duplicate row")
	}
	f.nextID++
	wallet.ID = f.nextID
	f.wallets[wallet.UserID] = wallet
	return wallet, nil
}

func (f *fakeWalletRepo) GetOrCreate(_ context.Context, wallet models.Wallet) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.wallets[wallet.UserID]; ok {
		return w, nil
	}
	f.nextID++
	wallet.ID = f.nextID
	f.wallets[wallet.UserID] = wallet
	return wallet, nil
}

func (f *fakeWalletRepo) AddFiat(_ context.Context, userID int64, delta decimal.Decimal) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addFiatCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return models.Wallet{}, apperr.New(apperr.StorageConflict, "write conflict")
	}
	w, ok := f.wallets[userID]
	if !ok {
		return models.Wallet{}, apperr.New(apperr.NotFound, "wallet not found")
	}
	w.FiatBalance = w.FiatBalance.Add(delta)
	f.wallets[userID] = w
	return w, nil
}

func (f *fakeWalletRepo) ConvertToStablecoin(_ context.Context, userID int64, fiatDelta, stableDelta decimal.Decimal) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return models.Wallet{}, apperr.New(apperr.StorageConflict, "write conflict")
	}
	w, ok := f.wallets[userID]
	if !ok {
		return models.Wallet{}, apperr.New(apperr.NotFound, "wallet not found")
	}
	if w.FiatBalance.LessThan(fiatDelta) {
		return models.Wallet{}, apperr.New(apperr.InvalidArgument, "insufficient fiat balance")
	}
	w.FiatBalance = w.FiatBalance.Sub(fiatDelta)
	w.StablecoinBalance = w.StablecoinBalance.Add(stableDelta)
	f.wallets[userID] = w
	return w, nil
}

func (f *fakeWalletRepo) UpdateDisplayCurrency(_ context.Context, userID int64, currency string) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return models.Wallet{}, apperr.New(apperr.NotFound, "wallet not found")
	}
	w.DisplayCurrency = currency
	f.wallets[userID] = w
	return w, nil
}

func newWalletService(repo *fakeWalletRepo, rates *fakeRateSource) *WalletService {
	return NewWalletService(repo, NewConverter(rates), rates)
}

func TestWalletGetCreatesOnce(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, &fakeRateSource{})

	var wg sync.WaitGroup
	ids := make([]int64, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			view, err := svc.Get(context.Background(), 7)
			require.NoError(t, err)
			ids[i] = view.ID
		}(i)
	}
	wg.Wait()

	// гонка на первом чтении не плодит кошельки
	assert.Len(t, repo.wallets, 1)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.True(t, repo.wallets[7].FiatBalance.IsZero())
}

func TestWalletCreateDuplicate(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, &fakeRateSource{})

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "EUR"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	assert.Equal(t, "EUR", repo.wallets[1].BaseCurrency)
}

func TestDepositSameCurrency(t *testing.T) {
	repo := newFakeWalletRepo()
	rates := &fakeRateSource{}
	svc := newWalletService(repo, rates)

	w, err := svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("100.50"), Currency: "usd"})
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(dec("100.50")))
	// совпадающая валюта не ходит за курсом
	assert.Zero(t, rates.calls)
}

func TestDepositConverts(t *testing.T) {
	repo := newFakeWalletRepo()
	rates := &fakeRateSource{rates: map[string]decimal.Decimal{"EUR->USD": dec("0.9")}}
	svc := newWalletService(repo, rates)

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)

	w, err := svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("100"), Currency: "EUR"})
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(dec("90.00")), "got %s", w.FiatBalance)
}

func TestDepositRateUnavailable(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, &fakeRateSource{})

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)

	_, err = svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("100"), Currency: "EUR"})
	assert.True(t, apperr.IsKind(err, apperr.RateUnavailable))
	// баланс не трогается, если курс не получен
	assert.True(t, repo.wallets[1].FiatBalance.IsZero())
	assert.Zero(t, repo.addFiatCalls)
}

func TestDepositInvalid(t *testing.T) {
	svc := newWalletService(newFakeWalletRepo(), &fakeRateSource{})

	_, err := svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("-5"), Currency: "USD"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument))

	_, err = svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("0"), Currency: "USD"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument))

	_, err = svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("5"), Currency: "D0LLAR"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument))
}

func TestDepositRetriesStorageConflict(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, &fakeRateSource{})

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)

	repo.conflictsLeft = 2
	w, err := svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("10"), Currency: "USD"})
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(dec("10")))
	assert.Equal(t, 3, repo.addFiatCalls)
}

func TestDepositGivesUpAfterRetries(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, &fakeRateSource{})

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)

	repo.conflictsLeft = 10
	_, err = svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("10"), Currency: "USD"})
	assert.True(t, apperr.IsKind(err, apperr.StorageConflict))
	assert.Equal(t, 3, repo.addFiatCalls)
}

func TestConcurrentDepositsNoLostUpdate(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, &fakeRateSource{})

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("10"), Currency: "USD"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, repo.wallets[1].FiatBalance.Equal(dec("200")), "got %s", repo.wallets[1].FiatBalance)
}

func TestConvertToStablecoin(t *testing.T) {
	repo := newFakeWalletRepo()
	rates := &fakeRateSource{rates: map[string]decimal.Decimal{"USD->USDT": dec("0.998")}}
	svc := newWalletService(repo, rates)

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)
	_, err = svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("200"), Currency: "USD"})
	require.NoError(t, err)

	// комиссия кошелька 1%: 100 → 99 нетто → 99 * 0.998 = 98.802
	w, err := svc.ConvertToStablecoin(context.Background(), 1, models.ConvertInput{Amount: dec("100")})
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(dec("100")), "fiat got %s", w.FiatBalance)
	assert.True(t, w.StablecoinBalance.Equal(dec("98.802")), "stable got %s", w.StablecoinBalance)
}

func TestConvertToStablecoinInsufficient(t *testing.T) {
	repo := newFakeWalletRepo()
	rates := &fakeRateSource{rates: map[string]decimal.Decimal{"USD->USDT": dec("1")}}
	svc := newWalletService(repo, rates)

	_, err := svc.Create(context.Background(), 1, models.CreateWalletInput{BaseCurrency: "USD"})
	require.NoError(t, err)

	_, err = svc.ConvertToStablecoin(context.Background(), 1, models.ConvertInput{Amount: dec("100")})
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument))
	assert.True(t, repo.wallets[1].StablecoinBalance.IsZero())
}

func TestSetDisplayCurrency(t *testing.T) {
	repo := newFakeWalletRepo()
	rates := &fakeRateSource{rates: map[string]decimal.Decimal{"USD->EUR": dec("1.1")}}
	svc := newWalletService(repo, rates)

	_, err := svc.Deposit(context.Background(), 1, models.DepositInput{Amount: dec("100"), Currency: "USD"})
	require.NoError(t, err)

	view, err := svc.SetDisplayCurrency(context.Background(), 1, "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", view.DisplayCurrency)
	// базовый баланс хранится без изменений, пересчёт только в представлении
	assert.True(t, view.FiatBalance.Equal(dec("100")))
	assert.True(t, view.DisplayBalance.Equal(dec("110.00")), "got %s", view.DisplayBalance)

	// возврат к базовой валюте — без похода за курсом
	before := rates.calls
	view, err = svc.SetDisplayCurrency(context.Background(), 1, "USD")
	require.NoError(t, err)
	assert.True(t, view.DisplayBalance.Equal(dec("100")))
	assert.Equal(t, before, rates.calls)
}
