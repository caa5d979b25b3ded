package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"crosspay_back/internal/wallet"
	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
	"crosspay_back/pkg/chainclient"
	"crosspay_back/pkg/repository"
)

type ChainRegistryService struct {
	repos repository.ChainWallet
	node  ChainNode
}

func NewChainRegistryService(repos repository.ChainWallet, node ChainNode) *ChainRegistryService {
	return &ChainRegistryService{
		repos: repos,
		node:  node,
	}
}

// CreateSingleKey генерирует пару ключей и отдаёт приватный ключ один раз.
// Сервер копию не хранит, дальше за сохранность отвечает вызывающий
func (s *ChainRegistryService) CreateSingleKey(ctx context.Context, scope models.Scope, input models.CreateChainWalletInput) (models.CreatedChainWallet, error) {
	chain := normalizeChain(input.Chain)
	if !wallet.SupportedChain(chain) {
		return models.CreatedChainWallet{}, apperr.New(apperr.InvalidArgument, "unsupported chain: %s", input.Chain)
	}

	generated, err := wallet.Generate(chain)
	if err != nil {
		return models.CreatedChainWallet{}, err
	}

	created, err := s.repos.Create(ctx, models.ChainWallet{
		Name:    input.Name,
		Chain:   chain,
		Variant: models.WalletVariantSingleKey,
		Address: generated.Address,
		UserID:  ownerUserID(scope, input.TeamID),
		TeamID:  input.TeamID,
	})
	if err != nil {
		return models.CreatedChainWallet{}, err
	}

	// В лог попадает только адрес, ключ не логируется
	logrus.Infof("Создан EOA-кошелёк %d (%s) в сети %s", created.ID, created.Address, chain)

	return models.CreatedChainWallet{
		ChainWallet: created,
		PrivateKey:  generated.PrivateKey,
	}, nil
}

// CreateMultisig валидирует владельцев и порог до любых побочных эффектов,
// затем деплоит threshold-контракт через ноду и сохраняет хэш деплоя
func (s *ChainRegistryService) CreateMultisig(ctx context.Context, scope models.Scope, input models.CreateMultisigInput) (models.ChainWallet, error) {
	chain := normalizeChain(input.Chain)
	if !wallet.SupportedChain(chain) {
		return models.ChainWallet{}, apperr.New(apperr.InvalidArgument, "unsupported chain: %s", input.Chain)
	}
	if len(input.OwnerAddresses) == 0 {
		return models.ChainWallet{}, apperr.New(apperr.InvalidArgument, "owner addresses must not be empty")
	}
	if input.Threshold < 1 || input.Threshold > len(input.OwnerAddresses) {
		return models.ChainWallet{}, apperr.New(apperr.InvalidArgument,
			"invalid threshold: must be between 1 and %d", len(input.OwnerAddresses))
	}

	owners := make([]string, 0, len(input.OwnerAddresses))
	seen := map[string]bool{}
	for _, addr := range input.OwnerAddresses {
		normalized := normalizeAddress(chain, addr)
		if !wallet.ValidAddress(chain, normalized) {
			return models.ChainWallet{}, apperr.New(apperr.InvalidArgument, "invalid owner address: %s", addr)
		}
		if seen[normalized] {
			return models.ChainWallet{}, apperr.New(apperr.InvalidArgument, "duplicate owner address: %s", addr)
		}
		seen[normalized] = true
		owners = append(owners, normalized)
	}

	address, deployHash, err := s.node.DeploySafe(ctx, chainclient.DeployRequest{
		Chain:          chain,
		OwnerAddresses: owners,
		Threshold:      input.Threshold,
	})
	if err != nil {
		return models.ChainWallet{}, err
	}

	threshold := input.Threshold
	created, err := s.repos.Create(ctx, models.ChainWallet{
		Name:           input.Name,
		Chain:          chain,
		Variant:        models.WalletVariantMultisig,
		Address:        address,
		UserID:         ownerUserID(scope, input.TeamID),
		TeamID:         input.TeamID,
		OwnerAddresses: owners,
		Threshold:      &threshold,
		DeployTxHash:   &deployHash,
	})
	if err != nil {
		return models.ChainWallet{}, err
	}

	logrus.Infof("Задеплоен multisig-кошелёк %d (%s), порог %d из %d, деплой %s",
		created.ID, created.Address, threshold, len(owners), deployHash)
	return created, nil
}

func (s *ChainRegistryService) Get(ctx context.Context, id int64, scope models.Scope) (models.ChainWallet, error) {
	return s.repos.GetByID(ctx, id, scope)
}

func (s *ChainRegistryService) List(ctx context.Context, scope models.Scope) ([]models.ChainWallet, error) {
	return s.repos.ListByScope(ctx, scope)
}

func (s *ChainRegistryService) SetActive(ctx context.Context, id int64, scope models.Scope, active bool) (models.ChainWallet, error) {
	return s.repos.SetActive(ctx, id, scope, active)
}

func normalizeChain(chain string) string {
	if chain == "" {
		return wallet.ChainEthereum
	}
	return strings.ToLower(chain)
}

func normalizeAddress(chain, address string) string {
	if chain == wallet.ChainEthereum {
		return strings.ToLower(strings.TrimSpace(address))
	}
	return strings.TrimSpace(address)
}

// Кошелёк команды не приписывается лично создателю
func ownerUserID(scope models.Scope, teamID *int64) *int64 {
	if teamID != nil {
		return nil
	}
	userID := scope.UserID
	return &userID
}
