package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

const (
	ChainEthereum = "ethereum"
	ChainTron     = "tron"
)

// Wallet — свежая пара ключей; приватный ключ отдаётся вызывающему один раз и нигде не хранится
type Wallet struct {
	PrivateKey string
	Address    string
}

func SupportedChain(chain string) bool {
	switch chain {
	case ChainEthereum, ChainTron:
		return true
	}
	return false
}

// Generate генерирует новый кошелёк для указанной сети
func Generate(chain string) (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	privHex := hex.EncodeToString(crypto.FromECDSA(privateKey))

	address, err := AddressFromPubKey(chain, &privateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		PrivateKey: privHex,
		Address:    address,
	}, nil
}

// AddressFromPubKey получает адрес из публичного ключа в формате сети
func AddressFromPubKey(chain string, pub *ecdsa.PublicKey) (string, error) {
	switch chain {
	case ChainEthereum:
		return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
	case ChainTron:
		return tronAddress(pub)
	default:
		return "", fmt.Errorf("unsupported chain: %s", chain)
	}
}

// tronAddress получает TRON-адрес из публичного ключа
func tronAddress(pub *ecdsa.PublicKey) (string, error) {
	pubBytes := crypto.FromECDSAPub(pub)[1:]
	if len(pubBytes) != 64 {
		return "", errors.New("invalid public key length")
	}

	hash := crypto.Keccak256(pubBytes)
	addr := append([]byte{0x41}, hash[12:]...)

	// Чексума по стандарту TRON (double SHA256)
	first := sha256.Sum256(addr)
	second := sha256.Sum256(first[:])
	full := append(addr, second[:4]...)

	return base58.Encode(full), nil
}

// ValidAddress проверяет формат адреса для сети
func ValidAddress(chain, address string) bool {
	switch chain {
	case ChainEthereum:
		if !strings.HasPrefix(address, "0x") || len(address) != 42 {
			return false
		}
		_, err := hex.DecodeString(address[2:])
		return err == nil
	case ChainTron:
		decoded, err := base58.Decode(address)
		if err != nil || len(decoded) != 25 || decoded[0] != 0x41 {
			return false
		}
		first := sha256.Sum256(decoded[:21])
		second := sha256.Sum256(first[:])
		for i := 0; i < 4; i++ {
			if decoded[21+i] != second[i] {
				return false
			}
		}
		return true
	}
	return false
}

// PayloadDigest — keccak256 канонической строки платежа, её подписывает signing-сервис
func PayloadDigest(parts ...string) []byte {
	return crypto.Keccak256([]byte(strings.Join(parts, "|")))
}

// RecoverSigner восстанавливает адрес подписанта из 65-байтовой secp256k1 подписи
func RecoverSigner(chain string, digest []byte, sigHex string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("failed to decode signature hex: %v", err)
	}
	if len(sig) != 65 {
		return "", errors.New("invalid signature length")
	}
	// go-ethereum ждёт recovery id 0/1 в последнем байте
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %v", err)
	}
	return AddressFromPubKey(chain, pub)
}
