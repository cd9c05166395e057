package transaction

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/AlexZinkM/cosmic-wallet/internal/client"
	"github.com/AlexZinkM/cosmic-wallet/internal/client/clienttest"
	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/signer"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetwork struct {
	conn *clienttest.Fake
}

func (n *fakeNetwork) Connection() client.Connection { return n.conn }

func (n *fakeNetwork) FormatTransactionLink(sig string) string { return "link/" + sig }

type recordingRefresher struct {
	mu     sync.Mutex
	owners []solana.PublicKey
}

func (r *recordingRefresher) RefreshBalances(_ context.Context, owner solana.PublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, owner)
	return nil
}

func setup(t *testing.T) (*Manager, *clienttest.Fake, *signer.KeypairSigner, *recordingRefresher) {
	t.Helper()
	conn := clienttest.New("http://localhost:8899")
	s, err := signer.NewKeypairSigner(solana.NewWallet().PrivateKey)
	require.NoError(t, err)
	r := &recordingRefresher{}
	m := NewManager(&fakeNetwork{conn: conn}, zerolog.Nop(), WithRefresher(r), WithSkipPreflight(true))
	return m, conn, s, r
}

func mintData(decimals uint8) []byte {
	data := make([]byte, 82)
	data[44] = decimals
	data[45] = 1
	return data
}

func TestNativeTransfer(t *testing.T) {
	t.Parallel()
	m, conn, s, r := setup(t)
	dest := solana.NewWallet().PublicKey()
	conn.SetBalance(s.PublicKey(), 5*common.LamportsPerSOL)

	sig, err := m.NativeTransfer(context.Background(), s, dest, "1.5")
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)

	sent := conn.Sent()
	require.Len(t, sent, 1)
	ix := sent[0].Message.Instructions[0]
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(ix.Data[:4]))
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(ix.Data[4:]))

	assert.Equal(t, uint64(1_500_000_000), conn.Balance(dest))
	assert.Equal(t, uint64(5*common.LamportsPerSOL-1_500_000_000-clienttest.FeeLamports), conn.Balance(s.PublicKey()))
	assert.Equal(t, []solana.PublicKey{s.PublicKey()}, r.owners)
}

func TestNativeTransfer_Rejections(t *testing.T) {
	t.Parallel()
	m, conn, s, r := setup(t)
	dest := solana.NewWallet().PublicKey()
	conn.SetBalance(s.PublicKey(), common.LamportsPerSOL)
	ctx := context.Background()

	_, err := m.NativeTransfer(ctx, nil, dest, "1")
	require.ErrorIs(t, err, ErrNoSigner)

	_, err = m.NativeTransfer(ctx, s, dest, "abc")
	require.True(t, common.IsValidationError(err))
	_, err = m.NativeTransfer(ctx, s, dest, "0")
	require.True(t, common.IsValidationError(err))
	_, err = m.NativeTransfer(ctx, s, solana.PublicKey{}, "0.1")
	require.True(t, common.IsValidationError(err))

	// the fee does not fit
	_, err = m.NativeTransfer(ctx, s, dest, "1")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	conn.FailSend(errors.New("node is behind"))
	_, err = m.NativeTransfer(ctx, s, dest, "0.5")
	require.ErrorIs(t, err, ErrSubmissionFailed)

	assert.Empty(t, conn.Sent())
	assert.Empty(t, r.owners)
	assert.Equal(t, common.LamportsPerSOL, int(conn.Balance(s.PublicKey())))
}

func TestTokenTransfer(t *testing.T) {
	t.Parallel()
	m, conn, s, _ := setup(t)
	mint := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	conn.SetBalance(s.PublicKey(), common.LamportsPerSOL)
	conn.SetAccountData(mint, mintData(6))

	source, _, err := solana.FindAssociatedTokenAddress(s.PublicKey(), mint)
	require.NoError(t, err)
	conn.SetTokenAccounts(s.PublicKey(), client.ParsedTokenBalance{
		TokenAccount: source, Mint: mint, Owner: s.PublicKey(), Amount: 10_000_000, Decimals: 6,
	})

	ctx := context.Background()
	_, err = m.TokenTransfer(ctx, s, mint, dest, "2.5")
	require.NoError(t, err)

	sent := conn.Sent()
	require.Len(t, sent, 1)
	msg := sent[0].Message
	require.Len(t, msg.Instructions, 2)
	programs := []solana.PublicKey{
		msg.AccountKeys[msg.Instructions[0].ProgramIDIndex],
		msg.AccountKeys[msg.Instructions[1].ProgramIDIndex],
	}
	assert.Equal(t, []solana.PublicKey{solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID}, programs)

	// TransferChecked: tag 12, amount, decimals
	data := msg.Instructions[1].Data
	assert.Equal(t, byte(12), data[0])
	assert.Equal(t, uint64(2_500_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, byte(6), data[9])

	// destination account exists: no create instruction
	destATA, _, _ := solana.FindAssociatedTokenAddress(dest, mint)
	conn.SetAccountData(destATA, make([]byte, client.TokenAccountSize))
	_, err = m.TokenTransfer(ctx, s, mint, dest, "1")
	require.NoError(t, err)
	sent = conn.Sent()
	require.Len(t, sent, 2)
	assert.Len(t, sent[1].Message.Instructions, 1)
}

func TestTokenTransfer_Rejections(t *testing.T) {
	t.Parallel()
	m, conn, s, _ := setup(t)
	mint := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	ctx := context.Background()

	_, err := m.TokenTransfer(ctx, s, mint, dest, "1")
	require.True(t, common.IsValidationError(err), "unknown mint")

	conn.SetAccountData(mint, mintData(2))
	_, err = m.TokenTransfer(ctx, s, mint, dest, "1.001")
	require.ErrorIs(t, err, common.ErrTooManyDigits)

	_, err = m.TokenTransfer(ctx, s, mint, dest, "1")
	require.ErrorIs(t, err, ErrNoTokenAccount)

	source, _, _ := solana.FindAssociatedTokenAddress(s.PublicKey(), mint)
	conn.SetTokenAccounts(s.PublicKey(), client.ParsedTokenBalance{TokenAccount: source, Mint: mint, Amount: 50, Decimals: 2})
	_, err = m.TokenTransfer(ctx, s, mint, dest, "1")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = m.TokenTransfer(ctx, s, mint, dest, "0.5")
	require.ErrorIs(t, err, ErrInsufficientFunds, "no SOL for the fee")

	// enough for the fee but not for the rent of the new token account
	conn.SetBalance(s.PublicKey(), FeeLamports+conn.Rent-1)
	_, err = m.TokenTransfer(ctx, s, mint, dest, "0.5")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "account rent")
	assert.Positive(t, conn.Calls("getMinimumBalanceForRentExemption"))
	assert.Empty(t, conn.Sent())

	// an existing destination account needs only the fee
	destATA, _, _ := solana.FindAssociatedTokenAddress(dest, mint)
	conn.SetAccountData(destATA, make([]byte, client.TokenAccountSize))
	conn.SetBalance(s.PublicKey(), FeeLamports)
	_, err = m.TokenTransfer(ctx, s, mint, dest, "0.5")
	require.NoError(t, err)
	assert.Len(t, conn.Sent(), 1)
}

func TestSendTransaction_NoInstructions(t *testing.T) {
	t.Parallel()
	m, _, s, _ := setup(t)
	_, err := m.SendTransaction(context.Background(), s)
	require.ErrorIs(t, err, ErrNoInstructions)
	_, err = m.SendTransaction(context.Background(), s, Static())
	require.ErrorIs(t, err, ErrNoInstructions)

	boom := errors.New("boom")
	_, err = m.SendTransaction(context.Background(), s, func(context.Context, solana.PublicKey) ([]solana.Instruction, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func transfers(from solana.PublicKey, n int) []Instruction {
	out := make([]Instruction, n)
	for i := range out {
		out[i] = Static(system.NewTransferInstruction(1, from, solana.NewWallet().PublicKey()).Build())
	}
	return out
}

func TestPack(t *testing.T) {
	t.Parallel()
	payer := solana.NewWallet().PublicKey()
	var groups [][]solana.Instruction
	for i := 0; i < 60; i++ {
		groups = append(groups, []solana.Instruction{
			system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build(),
		})
	}

	txs, err := Pack(groups, solana.Hash{}, payer)
	require.NoError(t, err)
	require.Greater(t, len(txs), 1)

	total := 0
	for _, tx := range txs {
		size, err := EstimateSize(tx)
		require.NoError(t, err)
		assert.LessOrEqual(t, size, MaxTransactionSize)
		total += len(tx.Message.Instructions)
	}
	assert.Equal(t, 60, total)

	// a single group over the limit cannot be packed
	var huge []solana.Instruction
	for i := 0; i < 60; i++ {
		huge = append(huge, system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build())
	}
	_, err = Pack([][]solana.Instruction{huge}, solana.Hash{}, payer)
	require.ErrorIs(t, err, ErrTransactionTooBig)
}

func TestSendDynamicTransaction(t *testing.T) {
	t.Parallel()
	m, conn, s, r := setup(t)
	conn.SetBalance(s.PublicKey(), common.LamportsPerSOL)

	sigs, err := m.SendDynamicTransaction(context.Background(), s, transfers(s.PublicKey(), 60)...)
	require.NoError(t, err)
	sent := conn.Sent()
	require.Len(t, sigs, len(sent))
	require.Greater(t, len(sigs), 1)
	for i := range sigs {
		assert.Equal(t, sent[i].Signatures[0], sigs[i])
	}
	assert.Len(t, r.owners, 1)
}

func TestSendDynamicTransaction_AllOrNothing(t *testing.T) {
	t.Parallel()
	m, conn, s, r := setup(t)
	// enough for the first transaction's fee only
	conn.SetBalance(s.PublicKey(), clienttest.FeeLamports+100)

	sigs, err := m.SendDynamicTransaction(context.Background(), s, transfers(s.PublicKey(), 60)...)
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Nil(t, sigs)
	assert.Empty(t, r.owners)
}

func TestCreateAssociatedTokenAccount(t *testing.T) {
	t.Parallel()
	conn := clienttest.New("x")
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	funder := solana.NewWallet().PublicKey()

	ixs, err := CreateAssociatedTokenAccount(conn, mint, owner)(context.Background(), funder)
	require.NoError(t, err)
	require.Len(t, ixs, 1)
	_, isCreate := ixs[0].(*associatedtokenaccount.Instruction)
	assert.True(t, isCreate)

	ata, _, _ := solana.FindAssociatedTokenAddress(owner, mint)
	conn.SetAccountData(ata, []byte{1})
	ixs, err = CreateAssociatedTokenAccount(conn, mint, owner)(context.Background(), funder)
	require.NoError(t, err)
	assert.Empty(t, ixs)
}

func TestParseAddress(t *testing.T) {
	t.Parallel()
	pk := solana.NewWallet().PublicKey()
	got, err := ParseAddress("recipient", " "+pk.String()+" ")
	require.NoError(t, err)
	assert.Equal(t, pk, got)

	_, err = ParseAddress("recipient", "not-an-address")
	require.True(t, common.IsValidationError(err))
	_, err = ParseAddress("recipient", solana.PublicKey{}.String())
	require.True(t, common.IsValidationError(err))
}
