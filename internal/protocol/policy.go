package protocol

import (
	"context"
	"slices"

	"github.com/gagliardetto/solana-go"
)

// Policy approves requests from a fixed set of origins without prompting.
// "*" allows every origin.
type Policy struct {
	Origins     []string
	AutoApprove bool
}

func (p Policy) allowed(origin string) bool {
	return slices.Contains(p.Origins, "*") || slices.Contains(p.Origins, origin)
}

func (p Policy) ApproveConnection(_ context.Context, origin string, _ solana.PublicKey, autoApprove bool) (bool, bool, error) {
	if !p.allowed(origin) {
		return false, false, nil
	}
	return true, autoApprove && p.AutoApprove, nil
}

func (p Policy) ApproveRequest(_ context.Context, req Approval) (bool, error) {
	return p.allowed(req.Origin), nil
}
