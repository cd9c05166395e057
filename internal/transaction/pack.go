package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MaxTransactionSize is the packet limit of a serialized transaction
const MaxTransactionSize = 1232

// EstimateSize returns the wire size of tx once every required signature is present.
func EstimateSize(tx *solana.Transaction) (int, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}
	sigs := int(tx.Message.Header.NumRequiredSignatures)
	return len(msg) + shortVecLen(sigs) + sigs*64, nil
}

// Pack greedily groups instructions into transactions that fit MaxTransactionSize.
// Groups keep their order and are never split.
func Pack(groups [][]solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) ([]*solana.Transaction, error) {
	var (
		out     []*solana.Transaction
		pending []solana.Instruction
		current *solana.Transaction
	)
	for i, group := range groups {
		candidate := append(append([]solana.Instruction(nil), pending...), group...)
		tx, size, err := sized(candidate, blockhash, payer)
		if err != nil {
			return nil, err
		}
		if size <= MaxTransactionSize {
			pending, current = candidate, tx
			continue
		}
		if len(pending) == 0 {
			return nil, fmt.Errorf("%w: instruction group %d is %d bytes", ErrTransactionTooBig, i, size)
		}

		out = append(out, current)
		tx, size, err = sized(group, blockhash, payer)
		if err != nil {
			return nil, err
		}
		if size > MaxTransactionSize {
			return nil, fmt.Errorf("%w: instruction group %d is %d bytes", ErrTransactionTooBig, i, size)
		}
		pending, current = append([]solana.Instruction(nil), group...), tx
	}
	if current != nil {
		out = append(out, current)
	}
	return out, nil
}

func sized(ixs []solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) (*solana.Transaction, int, error) {
	tx, err := build(ixs, blockhash, payer)
	if err != nil {
		return nil, 0, err
	}
	size, err := EstimateSize(tx)
	if err != nil {
		return nil, 0, err
	}
	return tx, size, nil
}

// shortVecLen is the length of the compact-u16 encoding of n
func shortVecLen(n int) int {
	switch {
	case n < 0x80:
		return 1
	case n < 0x4000:
		return 2
	default:
		return 3
	}
}
