package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
)

// TokenAccountSize is the data size of an SPL token account
const TokenAccountSize = 165

// ErrAccountNotFound is returned when an account does not exist on chain.
var ErrAccountNotFound = errors.New("account not found")

// Connection is the signing-agnostic RPC handle used by the wallet.
type Connection interface {
	Endpoint() string
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	GetTokenBalances(ctx context.Context, owner solana.PublicKey) ([]ParsedTokenBalance, error)
	GetTokenAccountBalance(ctx context.Context, tokenAccount solana.PublicKey) (ParsedTokenBalance, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error)
}

// ParsedTokenBalance is one SPL token account of an owner.
type ParsedTokenBalance struct {
	TokenAccount solana.PublicKey
	Mint         solana.PublicKey
	Owner        solana.PublicKey
	Amount       uint64
	Decimals     uint8
	// UIAmount is the decimal adjusted amount as reported by the node
	UIAmount string
}

// TokenAccountInfo is the jsonParsed form of a token account's data
type TokenAccountInfo struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint,omitempty"`
			Owner       string `json:"owner,omitempty"`
			TokenAmount struct {
				Amount         string `json:"amount,omitempty"`
				Decimals       int    `json:"decimals,omitempty"`
				UiAmountString string `json:"uiAmountString,omitempty"`
			} `json:"tokenAmount,omitempty"`
		} `json:"info,omitempty"`
		Type string `json:"type,omitempty"`
	} `json:"parsed,omitempty"`
}

// SolanaClient is a rate limited client for working with Solana RPC
type SolanaClient struct {
	rpcClient *rpc.Client
	rpcURL    string
	limiter   *rate.Limiter
}

// NewSolanaClient creates a client for rpcURL. requestsPerSecond <= 0 disables limiting.
func NewSolanaClient(rpcURL string, requestsPerSecond float64) *SolanaClient {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}
	return &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		rpcURL:    rpcURL,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// Endpoint returns the RPC URL
func (c *SolanaClient) Endpoint() string {
	return c.rpcURL
}

func (c *SolanaClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// GetBalance gets the SOL balance in lamports
func (c *SolanaClient) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// GetLatestBlockhash gets the latest finalized blockhash
func (c *SolanaClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Hash{}, err
	}
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return recent.Value.Blockhash, nil
}

// GetAccountData gets the raw account data. Returns ErrAccountNotFound if missing.
func (c *SolanaClient) GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	info, err := c.rpcClient.GetAccountInfo(ctx, account)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if info == nil || info.Value == nil || info.Value.Data == nil {
		return nil, ErrAccountNotFound
	}
	return info.Value.Data.GetBinary(), nil
}

// GetTokenBalances gets every SPL token account owned by owner
func (c *SolanaClient) GetTokenBalances(ctx context.Context, owner solana.PublicKey) ([]ParsedTokenBalance, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	programID := solana.TokenProgramID
	res, err := c.rpcClient.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts: %w", err)
	}

	out := make([]ParsedTokenBalance, 0, len(res.Value))
	for _, acc := range res.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		balance, err := ParseTokenAccount(acc.Pubkey, acc.Account.Data.GetRawJSON())
		if err != nil {
			return nil, err
		}
		out = append(out, balance)
	}
	return out, nil
}

// GetTokenAccountBalance gets the balance of a single token account
func (c *SolanaClient) GetTokenAccountBalance(ctx context.Context, tokenAccount solana.PublicKey) (ParsedTokenBalance, error) {
	if err := c.wait(ctx); err != nil {
		return ParsedTokenBalance{}, err
	}
	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentConfirmed)
	if err != nil {
		if isNotFoundError(err) {
			return ParsedTokenBalance{}, ErrAccountNotFound
		}
		return ParsedTokenBalance{}, fmt.Errorf("failed to get token account balance: %w", err)
	}
	if balance.Value == nil {
		return ParsedTokenBalance{TokenAccount: tokenAccount}, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return ParsedTokenBalance{}, fmt.Errorf("failed to parse token balance amount: %w", err)
	}
	return ParsedTokenBalance{
		TokenAccount: tokenAccount,
		Amount:       amount,
		Decimals:     balance.Value.Decimals,
		UIAmount:     balance.Value.UiAmountString,
	}, nil
}

// GetMinimumBalanceForRentExemption gets the rent exempt minimum for size bytes of data
func (c *SolanaClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	lamports, err := c.rpcClient.GetMinimumBalanceForRentExemption(ctx, size, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption: %w", err)
	}
	return lamports, nil
}

// SendTransaction submits a signed transaction
func (c *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       skipPreflight,
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// ParseTokenAccount decodes the jsonParsed data of a token account
func ParseTokenAccount(tokenAccount solana.PublicKey, raw json.RawMessage) (ParsedTokenBalance, error) {
	var info TokenAccountInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return ParsedTokenBalance{}, fmt.Errorf("failed to unmarshal token account %s: %w", tokenAccount, err)
	}
	data := info.Parsed.Info

	mint, err := solana.PublicKeyFromBase58(data.Mint)
	if err != nil {
		return ParsedTokenBalance{}, fmt.Errorf("invalid mint in token account %s: %w", tokenAccount, err)
	}
	owner, err := solana.PublicKeyFromBase58(data.Owner)
	if err != nil {
		return ParsedTokenBalance{}, fmt.Errorf("invalid owner in token account %s: %w", tokenAccount, err)
	}

	var amount uint64
	if data.TokenAmount.Amount != "" {
		amount, err = strconv.ParseUint(data.TokenAmount.Amount, 10, 64)
		if err != nil {
			return ParsedTokenBalance{}, fmt.Errorf("failed to parse amount of %s: %w", tokenAccount, err)
		}
	}
	if data.TokenAmount.Decimals < 0 || data.TokenAmount.Decimals > 255 {
		return ParsedTokenBalance{}, fmt.Errorf("invalid decimals in token account %s", tokenAccount)
	}

	return ParsedTokenBalance{
		TokenAccount: tokenAccount,
		Mint:         mint,
		Owner:        owner,
		Amount:       amount,
		Decimals:     uint8(data.TokenAmount.Decimals),
		UIAmount:     data.TokenAmount.UiAmountString,
	}, nil
}

// DecodeMintDecimals reads the decimals field of an SPL mint account
func DecodeMintDecimals(data []byte) (uint8, error) {
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return 0, fmt.Errorf("failed to decode mint: %w", err)
	}
	if !mint.IsInitialized {
		return 0, errors.New("mint is not initialized")
	}
	return mint.Decimals, nil
}

// isNotFoundError checks if error indicates that the account doesn't exist
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
