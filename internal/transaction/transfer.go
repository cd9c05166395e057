package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/cosmic-wallet/internal/client"
	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/signer"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

const (
	FeeLamports = 5000 // Fee in lamports (0.000005 SOL)
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoTokenAccount    = errors.New("no token account for this mint")
)

// ParseAddress validates a base58 account address
func ParseAddress(field, address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return solana.PublicKey{}, common.Invalid(field, err)
	}
	if pk.IsZero() {
		return solana.PublicKey{}, common.Invalid(field, errors.New("zero address"))
	}
	return pk, nil
}

// NativeTransfer sends amount SOL, given as a decimal string, to destination.
func (m *Manager) NativeTransfer(ctx context.Context, s signer.Signer, destination solana.PublicKey, amount string) (solana.Signature, error) {
	if s == nil {
		return solana.Signature{}, ErrNoSigner
	}
	lamports, err := common.SOLToLamports(amount)
	if err != nil {
		return solana.Signature{}, common.Invalid("amount", err)
	}
	if lamports == 0 {
		return solana.Signature{}, common.Invalid("amount", errors.New("amount must be positive"))
	}
	if destination.IsZero() {
		return solana.Signature{}, common.Invalid("recipient", errors.New("zero address"))
	}

	conn := m.network.Connection()
	from := s.PublicKey()

	// Check balance including the fee
	balance, err := conn.GetBalance(ctx, from)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to check balance: %w", err)
	}
	need, err := common.AddUint64(lamports, FeeLamports)
	if err != nil {
		return solana.Signature{}, common.Invalid("amount", err)
	}
	if balance < need {
		return solana.Signature{}, fmt.Errorf("%w: need %s SOL (fee: %s SOL). Have: %s SOL", ErrInsufficientFunds,
			common.LamportsToSOL(need), common.LamportsToSOL(FeeLamports), common.LamportsToSOL(balance))
	}

	sig, err := m.send(ctx, conn, s, []Instruction{NativeTransferInstruction(destination, lamports)})
	if err != nil {
		return solana.Signature{}, err
	}
	m.log.Info().Str("to", destination.String()).Uint64("lamports", lamports).Msg("native transfer")
	return sig, nil
}

// TokenTransfer sends amount of mint, given as a decimal string, to the token
// account of destination, creating it when missing.
func (m *Manager) TokenTransfer(ctx context.Context, s signer.Signer, mint, destination solana.PublicKey, amount string) (solana.Signature, error) {
	if s == nil {
		return solana.Signature{}, ErrNoSigner
	}
	if destination.IsZero() {
		return solana.Signature{}, common.Invalid("recipient", errors.New("zero address"))
	}
	conn := m.network.Connection()
	owner := s.PublicKey()

	decimals, err := MintDecimals(ctx, conn, mint)
	if err != nil {
		return solana.Signature{}, err
	}
	raw, err := common.ParseUnits(amount, decimals)
	if err != nil {
		return solana.Signature{}, common.Invalid("amount", err)
	}
	if raw == 0 {
		return solana.Signature{}, common.Invalid("amount", errors.New("amount must be positive"))
	}

	// Get source ATA address
	source, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to find source token account address: %w", err)
	}
	sourceBalance, err := conn.GetTokenAccountBalance(ctx, source)
	if err != nil {
		if errors.Is(err, client.ErrAccountNotFound) {
			return solana.Signature{}, fmt.Errorf("%w: %s", ErrNoTokenAccount, mint)
		}
		return solana.Signature{}, fmt.Errorf("failed to check source token account: %w", err)
	}
	if sourceBalance.Amount < raw {
		return solana.Signature{}, fmt.Errorf("%w: have %s", ErrInsufficientFunds, common.FormatUnits(sourceBalance.Amount, decimals))
	}

	// The fee, plus rent when the destination token account has to be created
	need := uint64(FeeLamports)
	rent, err := destinationRent(ctx, conn, mint, destination)
	if err != nil {
		return solana.Signature{}, err
	}
	if need, err = common.AddUint64(need, rent); err != nil {
		return solana.Signature{}, err
	}
	solBalance, err := conn.GetBalance(ctx, owner)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to check balance: %w", err)
	}
	if solBalance < need {
		return solana.Signature{}, fmt.Errorf("%w: need %s SOL (fee: %s SOL, account rent: %s SOL). Have: %s SOL",
			ErrInsufficientFunds, common.LamportsToSOL(need), common.LamportsToSOL(FeeLamports),
			common.LamportsToSOL(rent), common.LamportsToSOL(solBalance))
	}

	instructions := []Instruction{
		CreateAssociatedTokenAccount(conn, mint, destination),
		TokenTransferInstruction(mint, destination, raw, decimals),
	}
	sig, err := m.send(ctx, conn, s, instructions)
	if err != nil {
		return solana.Signature{}, err
	}
	m.log.Info().Str("to", destination.String()).Str("mint", mint.String()).Uint64("amount", raw).Msg("token transfer")
	return sig, nil
}

// destinationRent returns the rent exempt minimum of a token account when the
// one of owner for mint does not exist yet, and 0 otherwise.
func destinationRent(ctx context.Context, conn client.Connection, mint, owner solana.PublicKey) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to find destination token account: %w", err)
	}
	_, err = conn.GetAccountData(ctx, ata)
	switch {
	case err == nil:
		return 0, nil
	case errors.Is(err, client.ErrAccountNotFound):
		rent, err := conn.GetMinimumBalanceForRentExemption(ctx, client.TokenAccountSize)
		if err != nil {
			return 0, fmt.Errorf("failed to get token account rent: %w", err)
		}
		return rent, nil
	default:
		return 0, fmt.Errorf("failed to get destination account info: %w", err)
	}
}

// NativeTransferInstruction moves lamports from the funder to destination.
func NativeTransferInstruction(destination solana.PublicKey, lamports uint64) Instruction {
	return func(_ context.Context, funder solana.PublicKey) ([]solana.Instruction, error) {
		return []solana.Instruction{
			system.NewTransferInstruction(lamports, funder, destination).Build(),
		}, nil
	}
}

// CreateAssociatedTokenAccount creates the token account of owner for mint,
// paid by the funder. It yields nothing when the account already exists.
func CreateAssociatedTokenAccount(conn client.Connection, mint, owner solana.PublicKey) Instruction {
	return func(ctx context.Context, funder solana.PublicKey) ([]solana.Instruction, error) {
		ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to find destination token account: %w", err)
		}
		_, err = conn.GetAccountData(ctx, ata)
		switch {
		case err == nil:
			return nil, nil
		case errors.Is(err, client.ErrAccountNotFound):
			return []solana.Instruction{
				associatedtokenaccount.NewCreateInstruction(funder, owner, mint).Build(),
			}, nil
		default:
			return nil, fmt.Errorf("failed to get destination account info: %w", err)
		}
	}
}

// TokenTransferInstruction moves amount raw units of mint from the funder's
// token account to the token account of destination.
func TokenTransferInstruction(mint, destination solana.PublicKey, amount uint64, decimals uint8) Instruction {
	return func(_ context.Context, funder solana.PublicKey) ([]solana.Instruction, error) {
		source, _, err := solana.FindAssociatedTokenAddress(funder, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to find source token account address: %w", err)
		}
		dest, _, err := solana.FindAssociatedTokenAddress(destination, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to find destination token account: %w", err)
		}
		return []solana.Instruction{
			token.NewTransferCheckedInstruction(
				amount,
				decimals,
				source,
				mint,
				dest,
				funder,
				[]solana.PublicKey{},
			).Build(),
		}, nil
	}
}

// MintDecimals fetches the mint account and returns its decimals.
func MintDecimals(ctx context.Context, conn client.Connection, mint solana.PublicKey) (uint8, error) {
	data, err := conn.GetAccountData(ctx, mint)
	if err != nil {
		if errors.Is(err, client.ErrAccountNotFound) {
			return 0, common.Invalid("mint", err)
		}
		return 0, fmt.Errorf("failed to get mint account: %w", err)
	}
	decimals, err := client.DecodeMintDecimals(data)
	if err != nil {
		return 0, common.Invalid("mint", err)
	}
	return decimals, nil
}
