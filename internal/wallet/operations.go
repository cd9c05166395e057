package wallet

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/AlexZinkM/cosmic-wallet/internal/cluster"
	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/transaction"

	"github.com/gagliardetto/solana-go"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// TransferRequest moves Amount of SOL, or of the token Mint when set, to Recipient.
type TransferRequest struct {
	Recipient string
	Amount    string
	Mint      string
}

// TransferResult is an accepted transfer.
type TransferResult struct {
	Signature solana.Signature
	Explorer  string
}

// ReceiveInfo is what a payer needs to pay the active account.
type ReceiveInfo struct {
	Address  solana.PublicKey
	Explorer string
	// QRCode is a base64 PNG of the address
	QRCode string
}

// Transfer sends SOL or SPL tokens from the active account.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	sg, err := s.signer()
	if err != nil {
		return TransferResult{}, err
	}
	recipient, err := transaction.ParseAddress("recipient", req.Recipient)
	if err != nil {
		return TransferResult{}, err
	}
	var mint solana.PublicKey
	if strings.TrimSpace(req.Mint) != "" {
		if mint, err = transaction.ParseAddress("mint", req.Mint); err != nil {
			return TransferResult{}, err
		}
	}

	// Check cooldown
	s.payMu.Lock()
	defer s.payMu.Unlock()

	if !s.lastTransfer.IsZero() && s.cfg.TransferCooldown > 0 {
		if since := s.now().Sub(s.lastTransfer); since < s.cfg.TransferCooldown {
			remaining := s.cfg.TransferCooldown - since
			return TransferResult{}, fmt.Errorf("%w, please wait %v", ErrCooldown, remaining.Round(time.Second))
		}
	}

	var sig solana.Signature
	if mint.IsZero() {
		sig, err = s.txs.NativeTransfer(ctx, sg, recipient, req.Amount)
	} else {
		sig, err = s.txs.TokenTransfer(ctx, sg, mint, recipient, req.Amount)
	}
	if err != nil {
		return TransferResult{}, err
	}
	s.lastTransfer = s.now()

	return TransferResult{
		Signature: sig,
		Explorer:  s.clusters.FormatTransactionLink(sig.String()),
	}, nil
}

// SendInstructions submits prebuilt instructions signed by the active account.
// With dynamic they are packed into as many transactions as needed.
func (s *Service) SendInstructions(ctx context.Context, dynamic bool, ixs ...transaction.Instruction) ([]solana.Signature, error) {
	sg, err := s.signer()
	if err != nil {
		return nil, err
	}
	if dynamic {
		return s.txs.SendDynamicTransaction(ctx, sg, ixs...)
	}
	sig, err := s.txs.SendTransaction(ctx, sg, ixs...)
	if err != nil {
		return nil, err
	}
	return []solana.Signature{sig}, nil
}

// SignMessage signs arbitrary bytes with the active account.
func (s *Service) SignMessage(msg []byte) (solana.Signature, solana.PublicKey, error) {
	sg, err := s.signer()
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	sig, err := sg.SignMessage(msg)
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig, sg.PublicKey(), nil
}

// SignMessages signs every message with the same key, captured once.
func (s *Service) SignMessages(msgs [][]byte) ([]solana.Signature, solana.PublicKey, error) {
	sg, err := s.signer()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	sigs := make([]solana.Signature, 0, len(msgs))
	for _, msg := range msgs {
		sig, err := sg.SignMessage(msg)
		if err != nil {
			return nil, solana.PublicKey{}, fmt.Errorf("failed to sign message: %w", err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, sg.PublicKey(), nil
}

// DiffieHellman derives the X25519 key pair shared with peer.
func (s *Service) DiffieHellman(peer solana.PublicKey) (*crypto.BoxKeyPair, error) {
	sg, err := s.signer()
	if err != nil {
		return nil, err
	}
	return sg.DiffieHellman(peer)
}

// Clusters lists the selectable clusters.
func (s *Service) Clusters() []cluster.Cluster {
	return s.clusters.Clusters()
}

// CurrentCluster returns the selected cluster.
func (s *Service) CurrentCluster() cluster.Cluster {
	return s.clusters.Cluster()
}

// SelectCluster switches the network and re-watches the active account on it.
func (s *Service) SelectCluster(ctx context.Context, slug cluster.Slug) (cluster.Cluster, error) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	c, err := s.clusters.Select(slug)
	if err != nil {
		return cluster.Cluster{}, err
	}
	s.rebindLocked(ctx)
	return c, nil
}

// SetCustomCluster registers and selects a custom endpoint.
func (s *Service) SetCustomCluster(ctx context.Context, httpEndpoint, label, wsEndpoint string) (cluster.Cluster, error) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	c, err := s.clusters.SetCustom(httpEndpoint, label, wsEndpoint)
	if err != nil {
		return cluster.Cluster{}, err
	}
	s.rebindLocked(ctx)
	return c, nil
}

func (s *Service) rebindLocked(ctx context.Context) {
	cur := s.active.Load()
	if cur == nil {
		return
	}
	s.swapLocked(ctx, cur.selector, cur.signer)
}

// Receive returns the active address with its explorer link and a QR code.
func (s *Service) Receive() (ReceiveInfo, error) {
	pubkey, err := s.ActivePublicKey()
	if err != nil {
		return ReceiveInfo{}, err
	}
	qr, err := generateQRCode(pubkey.String())
	if err != nil {
		return ReceiveInfo{}, err
	}
	return ReceiveInfo{
		Address:  pubkey,
		Explorer: s.clusters.FormatAccountLink(pubkey.String()),
		QRCode:   qr,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
