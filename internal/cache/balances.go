package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/AlexZinkM/cosmic-wallet/internal/client"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// Balances is a point-in-time view of one owner's native and token balances.
type Balances struct {
	Owner    solana.PublicKey
	Endpoint string
	Native   Entry[uint64]
	Tokens   Entry[[]client.ParsedTokenBalance]
}

// BalanceCaches are the shared caches BalanceWatchers register with.
type BalanceCaches struct {
	Native *Cache[uint64]
	Tokens *Cache[[]client.ParsedTokenBalance]
}

// NewBalanceCaches creates both caches with the same options.
func NewBalanceCaches(log zerolog.Logger, opts ...Option) BalanceCaches {
	return BalanceCaches{
		Native: New[uint64](log.With().Str("cache", "native").Logger(), opts...),
		Tokens: New[[]client.ParsedTokenBalance](log.With().Str("cache", "tokens").Logger(), opts...),
	}
}

// SetVisibility forwards v to both caches.
func (c BalanceCaches) SetVisibility(v Visibility) {
	c.Native.SetVisibility(v)
	c.Tokens.SetVisibility(v)
}

// Close stops every loop of both caches.
func (c BalanceCaches) Close() {
	c.Native.Close()
	c.Tokens.Close()
}

// BalanceWatcher keeps the balances of one owner on one connection fresh.
type BalanceWatcher struct {
	owner   solana.PublicKey
	conn    client.Connection
	caches  BalanceCaches
	key     Key
	removes []func()
}

// NewBalanceWatcher registers native and token listeners for owner on conn.
// onChange may be nil.
func NewBalanceWatcher(caches BalanceCaches, conn client.Connection, owner solana.PublicKey, interval time.Duration, onChange func(Balances)) *BalanceWatcher {
	w := &BalanceWatcher{
		owner:  owner,
		conn:   conn,
		caches: caches,
		key:    Key{Endpoint: conn.Endpoint(), Subject: owner.String()},
	}

	notify := func() {
		if onChange != nil {
			onChange(w.Snapshot())
		}
	}
	w.removes = append(w.removes,
		caches.Native.AddListener(w.key, w.fetchNative, interval, func(Entry[uint64]) { notify() }),
		caches.Tokens.AddListener(w.key, w.fetchTokens, interval, func(Entry[[]client.ParsedTokenBalance]) { notify() }),
	)
	return w
}

// Owner returns the watched account.
func (w *BalanceWatcher) Owner() solana.PublicKey {
	return w.owner
}

// Snapshot returns the cached balances.
func (w *BalanceWatcher) Snapshot() Balances {
	native, _ := w.caches.Native.Get(w.key)
	tokens, _ := w.caches.Tokens.Get(w.key)
	tokens.Value = slices.Clone(tokens.Value)
	return Balances{
		Owner:    w.owner,
		Endpoint: w.key.Endpoint,
		Native:   native,
		Tokens:   tokens,
	}
}

// RefreshEverything fetches the native balance, then the token balances.
// The token list is replaced as a whole.
func (w *BalanceWatcher) RefreshEverything(ctx context.Context) error {
	_, nativeErr := w.caches.Native.Refresh(ctx, w.key)
	_, tokensErr := w.caches.Tokens.Refresh(ctx, w.key)
	return errors.Join(nativeErr, tokensErr)
}

// RefreshBalanceForMint re-reads the owner's associated token account of mint
// and updates that mint in the cached list. A missing account leaves the list alone.
func (w *BalanceWatcher) RefreshBalanceForMint(ctx context.Context, mint solana.PublicKey) error {
	ata, _, err := solana.FindAssociatedTokenAddress(w.owner, mint)
	if err != nil {
		return fmt.Errorf("failed to find token account address: %w", err)
	}
	balance, err := w.conn.GetTokenAccountBalance(ctx, ata)
	if err != nil {
		if errors.Is(err, client.ErrAccountNotFound) {
			return nil
		}
		return err
	}
	balance.Mint = mint
	balance.Owner = w.owner

	current, _ := w.caches.Tokens.Get(w.key)
	list := slices.DeleteFunc(slices.Clone(current.Value), func(b client.ParsedTokenBalance) bool {
		return b.Mint.Equals(mint)
	})
	list = append(list, balance)
	sortByMint(list)
	w.caches.Tokens.Set(w.key, list, false)
	return nil
}

// Close removes the watcher's listeners, stopping loops it was the last user of.
func (w *BalanceWatcher) Close() {
	for _, remove := range w.removes {
		remove()
	}
	w.removes = nil
}

func (w *BalanceWatcher) fetchNative(ctx context.Context) (uint64, error) {
	return w.conn.GetBalance(ctx, w.owner)
}

func (w *BalanceWatcher) fetchTokens(ctx context.Context) ([]client.ParsedTokenBalance, error) {
	balances, err := w.conn.GetTokenBalances(ctx, w.owner)
	if err != nil {
		return nil, err
	}
	sortByMint(balances)
	return balances, nil
}

func sortByMint(balances []client.ParsedTokenBalance) {
	slices.SortStableFunc(balances, func(a, b client.ParsedTokenBalance) int {
		return bytes.Compare(a.Mint[:], b.Mint[:])
	})
}
