package polymarket

// balance.go — read-only collateral balance check.
//
// Implements ports.BalanceReader. It is a connectivity diagnostic: the value
// is displayed and journaled, never fed into any calculation.

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	balanceAllowancePath = "/balance-allowance"
	usdcDecimals         = 6
)

type balanceAllowanceResponse struct {
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
}

// BalanceClient reads the USDC collateral balance from the CLOB.
type BalanceClient struct {
	auth          *AuthClient
	signatureType int
}

// NewBalanceClient creates a BalanceClient. signatureType is 0 for EOA wallets,
// 1 for email/magic proxies and 2 for browser proxies.
func NewBalanceClient(auth *AuthClient, signatureType int) *BalanceClient {
	return &BalanceClient{auth: auth, signatureType: signatureType}
}

// Name implements ports.BalanceReader.
func (bc *BalanceClient) Name() string {
	return "polymarket"
}

// Balance returns the available collateral in USDC.
func (bc *BalanceClient) Balance(ctx context.Context) (float64, error) {
	if err := bc.auth.EnsureCreds(ctx); err != nil {
		return 0, fmt.Errorf("polymarket.Balance: creds: %w", err)
	}

	q := url.Values{}
	q.Set("asset_type", "COLLATERAL")
	q.Set("signature_type", fmt.Sprintf("%d", bc.signatureType))

	var resp balanceAllowanceResponse
	if err := bc.auth.getL2(ctx, balanceAllowancePath, q.Encode(), &resp); err != nil {
		return 0, fmt.Errorf("polymarket.Balance: %w", err)
	}

	bal, err := parseUSDC(resp.Balance)
	if err != nil {
		return 0, fmt.Errorf("polymarket.Balance: %w", err)
	}
	return bal, nil
}

// parseUSDC converts a micro-USDC integer string (e.g. "1000000") to USDC.
func parseUSDC(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("invalid micro-USDC amount %q", s)
	}
	return d.Shift(-usdcDecimals).InexactFloat64(), nil
}
