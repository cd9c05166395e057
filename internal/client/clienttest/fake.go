// Package clienttest provides an in-memory client.Connection for tests.
package clienttest

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/AlexZinkM/cosmic-wallet/internal/client"

	"github.com/gagliardetto/solana-go"
)

// FeeLamports is charged to the fee payer of every applied transaction
const FeeLamports = 5000

// Fake is a programmable connection. It applies system transfers of sent
// transactions to its balances.
type Fake struct {
	mu sync.Mutex

	endpoint      string
	balances      map[solana.PublicKey]uint64
	accounts      map[solana.PublicKey][]byte
	tokenAccounts map[solana.PublicKey][]client.ParsedTokenBalance

	Blockhash solana.Hash
	Rent      uint64

	balanceErr error
	tokenErr   error
	sendErr    error
	onBalance  func(owner solana.PublicKey)

	sent  []*solana.Transaction
	calls map[string]int
}

// New creates a fake for endpoint.
func New(endpoint string) *Fake {
	return &Fake{
		endpoint:      endpoint,
		balances:      make(map[solana.PublicKey]uint64),
		accounts:      make(map[solana.PublicKey][]byte),
		tokenAccounts: make(map[solana.PublicKey][]client.ParsedTokenBalance),
		Blockhash:     solana.HashFromBytes(make([]byte, 32)),
		Rent:          2039280,
		calls:         make(map[string]int),
	}
}

// SetBalance sets the lamport balance of owner.
func (f *Fake) SetBalance(owner solana.PublicKey, lamports uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[owner] = lamports
}

// Balance returns the lamport balance of owner.
func (f *Fake) Balance(owner solana.PublicKey) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[owner]
}

// FailBalance makes GetBalance return err until called again with nil.
func (f *Fake) FailBalance(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceErr = err
}

// FailTokens makes the token balance calls return err.
func (f *Fake) FailTokens(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenErr = err
}

// FailSend makes SendTransaction return err.
func (f *Fake) FailSend(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// OnBalance installs a hook that runs inside GetBalance before the balance is read.
// The hook may block.
func (f *Fake) OnBalance(fn func(owner solana.PublicKey)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onBalance = fn
}

// SetAccountData makes account exist with data.
func (f *Fake) SetAccountData(account solana.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account] = append([]byte(nil), data...)
}

// SetTokenAccounts replaces the token accounts of owner.
func (f *Fake) SetTokenAccounts(owner solana.PublicKey, accounts ...client.ParsedTokenBalance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenAccounts[owner] = append([]client.ParsedTokenBalance(nil), accounts...)
	for _, acc := range accounts {
		if _, ok := f.accounts[acc.TokenAccount]; !ok {
			f.accounts[acc.TokenAccount] = make([]byte, client.TokenAccountSize)
		}
	}
}

// Sent returns the transactions accepted so far.
func (f *Fake) Sent() []*solana.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*solana.Transaction(nil), f.sent...)
}

// Calls returns how many times method was called.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) Endpoint() string {
	return f.endpoint
}

func (f *Fake) GetBalance(_ context.Context, owner solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	f.calls["getBalance"]++
	hook := f.onBalance
	f.mu.Unlock()
	if hook != nil {
		hook(owner)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[owner], nil
}

func (f *Fake) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getLatestBlockhash"]++
	return f.Blockhash, nil
}

func (f *Fake) GetAccountData(_ context.Context, account solana.PublicKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getAccountInfo"]++
	data, ok := f.accounts[account]
	if !ok {
		return nil, client.ErrAccountNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *Fake) GetTokenBalances(_ context.Context, owner solana.PublicKey) ([]client.ParsedTokenBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getTokenAccountsByOwner"]++
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return append([]client.ParsedTokenBalance(nil), f.tokenAccounts[owner]...), nil
}

func (f *Fake) GetTokenAccountBalance(_ context.Context, tokenAccount solana.PublicKey) (client.ParsedTokenBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getTokenAccountBalance"]++
	if f.tokenErr != nil {
		return client.ParsedTokenBalance{}, f.tokenErr
	}
	for _, accounts := range f.tokenAccounts {
		for _, acc := range accounts {
			if acc.TokenAccount.Equals(tokenAccount) {
				return acc, nil
			}
		}
	}
	return client.ParsedTokenBalance{}, client.ErrAccountNotFound
}

func (f *Fake) GetMinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getMinimumBalanceForRentExemption"]++
	return f.Rent, nil
}

func (f *Fake) SendTransaction(_ context.Context, tx *solana.Transaction, _ bool) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["sendTransaction"]++
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	if len(tx.Signatures) == 0 || len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		return solana.Signature{}, errors.New("signature verification failed")
	}
	for _, sig := range tx.Signatures {
		if sig == (solana.Signature{}) {
			return solana.Signature{}, errors.New("missing signature")
		}
	}
	if err := f.apply(tx); err != nil {
		return solana.Signature{}, err
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

// apply executes the system transfers of tx and charges the fee payer.
func (f *Fake) apply(tx *solana.Transaction) error {
	keys := tx.Message.AccountKeys
	payer := keys[0]
	if f.balances[payer] < FeeLamports {
		return errors.New("insufficient funds for fee")
	}
	balances := make(map[solana.PublicKey]uint64, len(f.balances))
	for k, v := range f.balances {
		balances[k] = v
	}
	balances[payer] -= FeeLamports

	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) || !keys[ix.ProgramIDIndex].Equals(solana.SystemProgramID) {
			continue
		}
		data := ix.Data
		if len(data) != 12 || binary.LittleEndian.Uint32(data[:4]) != 2 || len(ix.Accounts) != 2 {
			continue
		}
		lamports := binary.LittleEndian.Uint64(data[4:])
		from, to := keys[ix.Accounts[0]], keys[ix.Accounts[1]]
		if balances[from] < lamports {
			return errors.New("insufficient lamports")
		}
		balances[from] -= lamports
		balances[to] += lamports
	}
	f.balances = balances
	return nil
}
