// Package transaction builds, signs and submits transactions for the active signer.
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/cosmic-wallet/internal/client"
	"github.com/AlexZinkM/cosmic-wallet/internal/signer"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

var (
	ErrNoSigner          = errors.New("no active signer")
	ErrNoInstructions    = errors.New("no instructions")
	ErrSubmissionFailed  = errors.New("transaction submission failed")
	ErrTransactionTooBig = errors.New("instructions do not fit in a single transaction")
)

// Instruction returns the instructions of one logical step for funder.
// The instructions of one closure are never split across transactions.
type Instruction func(ctx context.Context, funder solana.PublicKey) ([]solana.Instruction, error)

// Static wraps prebuilt instructions.
func Static(ixs ...solana.Instruction) Instruction {
	return func(context.Context, solana.PublicKey) ([]solana.Instruction, error) {
		return ixs, nil
	}
}

// Network is the active connection together with its explorer link format.
type Network interface {
	Connection() client.Connection
	FormatTransactionLink(signature string) string
}

// BalanceRefresher re-fetches the balances of owner after a successful submission.
type BalanceRefresher interface {
	RefreshBalances(ctx context.Context, owner solana.PublicKey) error
}

// Manager submits transactions on the network's current connection.
type Manager struct {
	network       Network
	skipPreflight bool
	refresher     BalanceRefresher
	log           zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRefresher sets the refresher called after every successful submission.
func WithRefresher(r BalanceRefresher) Option {
	return func(m *Manager) { m.refresher = r }
}

// WithSkipPreflight disables node side simulation before submission.
func WithSkipPreflight(skip bool) Option {
	return func(m *Manager) { m.skipPreflight = skip }
}

func NewManager(network Network, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{network: network, log: log}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendTransaction builds one transaction from instructions, signs it and submits it.
// Any failure returns an error and no signature; nothing was submitted unless the
// error wraps ErrSubmissionFailed.
func (m *Manager) SendTransaction(ctx context.Context, s signer.Signer, instructions ...Instruction) (solana.Signature, error) {
	if s == nil {
		return solana.Signature{}, ErrNoSigner
	}
	return m.send(ctx, m.network.Connection(), s, instructions)
}

// send runs on conn for the whole flow so a cluster switch cannot split it.
func (m *Manager) send(ctx context.Context, conn client.Connection, s signer.Signer, instructions []Instruction) (solana.Signature, error) {
	ixs, err := collect(ctx, s.PublicKey(), instructions)
	if err != nil {
		return solana.Signature{}, err
	}
	var flat []solana.Instruction
	for _, group := range ixs {
		flat = append(flat, group...)
	}

	blockhash, err := conn.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	tx, err := build(flat, blockhash, s.PublicKey())
	if err != nil {
		return solana.Signature{}, err
	}
	if size, err := EstimateSize(tx); err != nil {
		return solana.Signature{}, err
	} else if size > MaxTransactionSize {
		return solana.Signature{}, fmt.Errorf("%w: %d bytes", ErrTransactionTooBig, size)
	}
	if err := s.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := m.submit(ctx, conn, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	m.refresh(ctx, s.PublicKey())
	return sig, nil
}

// SendDynamicTransaction packs instructions into as few transactions as fit the
// packet limit, signs every one and submits them in order. Signatures are only
// returned when every transaction was accepted.
func (m *Manager) SendDynamicTransaction(ctx context.Context, s signer.Signer, instructions ...Instruction) ([]solana.Signature, error) {
	if s == nil {
		return nil, ErrNoSigner
	}
	conn := m.network.Connection()

	groups, err := collect(ctx, s.PublicKey(), instructions)
	if err != nil {
		return nil, err
	}
	blockhash, err := conn.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := Pack(groups, blockhash, s.PublicKey())
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if err := s.SignTransaction(tx); err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}
	}

	sigs := make([]solana.Signature, 0, len(txs))
	for i, tx := range txs {
		sig, err := m.submit(ctx, conn, tx)
		if err != nil {
			m.log.Error().Int("index", i).Int("total", len(txs)).Int("accepted", len(sigs)).Msg("batch aborted")
			// accepted signatures are not returned on failure
			return nil, fmt.Errorf("transaction %d of %d: %w", i+1, len(txs), err)
		}
		sigs = append(sigs, sig)
	}
	m.refresh(ctx, s.PublicKey())
	return sigs, nil
}

func (m *Manager) submit(ctx context.Context, conn client.Connection, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := conn.SendTransaction(ctx, tx, m.skipPreflight)
	if err != nil {
		m.log.Error().Err(err).Str("endpoint", conn.Endpoint()).Bool("skip_preflight", m.skipPreflight).Msg("transaction error")
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	m.log.Info().Str("signature", sig.String()).Str("explorer", m.network.FormatTransactionLink(sig.String())).Msg("transaction sent")
	return sig, nil
}

func (m *Manager) refresh(ctx context.Context, owner solana.PublicKey) {
	if m.refresher == nil {
		return
	}
	if err := m.refresher.RefreshBalances(ctx, owner); err != nil {
		m.log.Warn().Err(err).Str("owner", owner.String()).Msg("balance refresh after transaction failed")
	}
}

func collect(ctx context.Context, funder solana.PublicKey, instructions []Instruction) ([][]solana.Instruction, error) {
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}
	out := make([][]solana.Instruction, 0, len(instructions))
	for _, fn := range instructions {
		ixs, err := fn(ctx, funder)
		if err != nil {
			return nil, err
		}
		if len(ixs) > 0 {
			out = append(out, ixs)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoInstructions
	}
	return out, nil
}

func build(ixs []solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}
