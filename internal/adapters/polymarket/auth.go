package polymarket

// auth.go — Polymarket CLOB authenticated client.
//
// Implements two-level authentication:
//   L1: EIP-712 signature with wallet private key → derive API credentials
//   L2: HMAC-SHA256 signing of every authenticated request
//
// Stored L2 credentials are used as-is; L1 is only needed when the config
// holds a private key but no API credentials yet.

import (
	"context"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	polygonChainID = int64(137)

	// CLOB EIP-712 auth domain
	clobDomainName    = "ClobAuthDomain"
	clobDomainVersion = "1"
	// Message signed for deriving API keys
	clobAuthMessage = "This message attests that I control the given wallet"

	deriveAPIKeyPath = "/auth/derive-api-key"
)

// Credentials holds the CLOB L2 API credentials.
type Credentials struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// Complete reports whether all three fields are set.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.Secret != "" && c.Passphrase != ""
}

// AuthConfig is what the balance reader needs from stored configuration.
// Either PrivateKeyHex, or Address + complete Credentials, must be set.
type AuthConfig struct {
	PrivateKeyHex string // Polygon private key, with or without 0x
	Address       string // funder address, required when there is no private key
	Credentials   Credentials
}

// AuthClient wraps the base Client with L1/L2 auth capabilities.
type AuthClient struct {
	*Client
	privateKey *ecdsa.PrivateKey // nil when only L2 credentials are stored
	address    common.Address

	mu    sync.Mutex
	creds *Credentials
}

// NewAuthClient creates an authenticated client from stored configuration.
func NewAuthClient(clobBase string, cfg AuthConfig) (*AuthClient, error) {
	ac := &AuthClient{Client: NewClient(clobBase)}

	if cfg.PrivateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("auth: invalid private key: %w", err)
		}
		ac.privateKey = key
		ac.address = crypto.PubkeyToAddress(key.PublicKey)
	} else {
		if !common.IsHexAddress(cfg.Address) {
			return nil, fmt.Errorf("auth: address %q is not a valid hex address", cfg.Address)
		}
		ac.address = common.HexToAddress(cfg.Address)
	}

	if cfg.Credentials.Complete() {
		creds := cfg.Credentials
		ac.creds = &creds
	} else if ac.privateKey == nil {
		return nil, fmt.Errorf("auth: need either a private key or complete API credentials")
	}

	return ac, nil
}

// Address returns the wallet address.
func (ac *AuthClient) Address() string {
	return ac.address.Hex()
}

// EnsureCreds derives API credentials via L1 auth if none are cached.
func (ac *AuthClient) EnsureCreds(ctx context.Context) error {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.creds != nil {
		return nil
	}
	if ac.privateKey == nil {
		return fmt.Errorf("auth: no credentials and no private key to derive them")
	}

	url := ac.clobBase + deriveAPIKeyPath
	body, err := ac.doWithRetry(ctx, func() (*http.Request, error) {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		sig, err := ac.signClobAuth(ts, "0")
		if err != nil {
			return nil, fmt.Errorf("sign l1: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("POLY_ADDRESS", ac.address.Hex())
		req.Header.Set("POLY_SIGNATURE", sig)
		req.Header.Set("POLY_TIMESTAMP", ts)
		req.Header.Set("POLY_NONCE", "0")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("auth: derive-api-key: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return fmt.Errorf("auth: parse creds: %w", err)
	}
	if !creds.Complete() {
		return fmt.Errorf("auth: derive-api-key returned incomplete credentials")
	}
	ac.creds = &creds
	return nil
}

// EIP-712 type hashes (computed once).
var (
	eip712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId)",
	))
	clobAuthTypeHash = crypto.Keccak256Hash([]byte(
		"ClobAuth(address address,string timestamp,uint256 nonce,string message)",
	))
)

// clobAuthDomainSeparator computes the EIP-712 domain separator for ClobAuthDomain.
func clobAuthDomainSeparator() common.Hash {
	var buf []byte
	buf = append(buf, eip712DomainTypeHash.Bytes()...)
	buf = append(buf, crypto.Keccak256Hash([]byte(clobDomainName)).Bytes()...)
	buf = append(buf, crypto.Keccak256Hash([]byte(clobDomainVersion)).Bytes()...)
	buf = append(buf, common.LeftPadBytes(big.NewInt(polygonChainID).Bytes(), 32)...)
	return crypto.Keccak256Hash(buf)
}

// clobAuthDigest is the EIP-712 digest signed for L1 auth.
func clobAuthDigest(addr common.Address, timestamp string, nonce *big.Int) common.Hash {
	var structBuf []byte
	structBuf = append(structBuf, clobAuthTypeHash.Bytes()...)
	structBuf = append(structBuf, common.LeftPadBytes(addr.Bytes(), 32)...)
	structBuf = append(structBuf, crypto.Keccak256Hash([]byte(timestamp)).Bytes()...)
	structBuf = append(structBuf, common.LeftPadBytes(nonce.Bytes(), 32)...)
	structBuf = append(structBuf, crypto.Keccak256Hash([]byte(clobAuthMessage)).Bytes()...)
	structHash := crypto.Keccak256Hash(structBuf)

	var rawBuf []byte
	rawBuf = append(rawBuf, 0x19, 0x01)
	rawBuf = append(rawBuf, clobAuthDomainSeparator().Bytes()...)
	rawBuf = append(rawBuf, structHash.Bytes()...)
	return crypto.Keccak256Hash(rawBuf)
}

// signClobAuth signs the ClobAuth EIP-712 typed data for L1 auth.
func (ac *AuthClient) signClobAuth(timestamp, nonce string) (string, error) {
	nonceInt, ok := new(big.Int).SetString(nonce, 10)
	if !ok {
		return "", fmt.Errorf("invalid nonce: %s", nonce)
	}

	msgHash := clobAuthDigest(ac.address, timestamp, nonceInt)
	sig, err := crypto.Sign(msgHash.Bytes(), ac.privateKey)
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return "0x" + fmt.Sprintf("%x", sig), nil
}

// l2Signature is the HMAC-SHA256 of timestamp+METHOD+path+body, base64url encoded.
func l2Signature(secret, timestamp, method, path, body string) (string, error) {
	secretBytes, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("auth: decode secret: %w", err)
	}
	mac := hmac.New(sha256.New, secretBytes)
	mac.Write([]byte(timestamp + strings.ToUpper(method) + path + body))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// l2Headers returns the authenticated headers for L2 API calls.
func (ac *AuthClient) l2Headers(method, path, body string) (map[string]string, error) {
	ac.mu.Lock()
	creds := ac.creds
	ac.mu.Unlock()
	if creds == nil {
		return nil, fmt.Errorf("auth: credentials not derived yet")
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig, err := l2Signature(creds.Secret, ts, method, path, body)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"POLY_ADDRESS":    ac.address.Hex(),
		"POLY_SIGNATURE":  sig,
		"POLY_TIMESTAMP":  ts,
		"POLY_API_KEY":    creds.APIKey,
		"POLY_PASSPHRASE": creds.Passphrase,
	}, nil
}

// getL2 executes an authenticated GET. Only path is signed; query goes unsigned,
// as the CLOB expects.
func (ac *AuthClient) getL2(ctx context.Context, path, query string, out any) error {
	fullURL := ac.clobBase + path
	if query != "" {
		fullURL += "?" + query
	}

	body, err := ac.doWithRetry(ctx, func() (*http.Request, error) {
		headers, err := ac.l2Headers(http.MethodGet, path, "")
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
