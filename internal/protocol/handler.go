package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/AlexZinkM/cosmic-wallet/internal/crypto"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
)

// Wallet is the signing surface exposed to pages.
type Wallet interface {
	ActivePublicKey() (solana.PublicKey, error)
	SignMessage(msg []byte) (solana.Signature, solana.PublicKey, error)
	SignMessages(msgs [][]byte) ([]solana.Signature, solana.PublicKey, error)
	DiffieHellman(peer solana.PublicKey) (*crypto.BoxKeyPair, error)
}

// Display is how a sign request asks its payload to be shown.
type Display string

const (
	DisplayTx            Display = "tx"
	DisplayUTF8          Display = "utf8"
	DisplayHex           Display = "hex"
	DisplayDiffieHellman Display = "diffieHellman"
)

// Approval describes a request awaiting the user's decision.
type Approval struct {
	Origin   string
	Method   string
	Messages [][]byte
	Display  Display
}

// Approver asks the user. Returning false rejects the request.
type Approver interface {
	ApproveConnection(ctx context.Context, origin string, pubkey solana.PublicKey, autoApprove bool) (approved, grantAutoApprove bool, err error)
	ApproveRequest(ctx context.Context, req Approval) (bool, error)
}

// forgetNotifier is implemented by wallets whose seed can be forgotten.
type forgetNotifier interface {
	OnForget(fn func()) (unsubscribe func())
}

// Connection is the persisted grant of one origin.
type Connection struct {
	PublicKey   string `json:"publicKey"`
	AutoApprove bool   `json:"autoApprove"`
}

// Handler dispatches page requests per origin.
type Handler struct {
	wallet   Wallet
	approver Approver
	store    storage.Store
	log      zerolog.Logger

	mu          sync.Mutex
	connections map[string]Connection

	unsubscribe func()
}

// NewHandler restores the connected origins from store.
func NewHandler(wallet Wallet, approver Approver, store storage.Store, log zerolog.Logger) (*Handler, error) {
	h := &Handler{
		wallet:      wallet,
		approver:    approver,
		store:       store,
		log:         log,
		connections: make(map[string]Connection),
	}
	if _, err := storage.GetJSON(store, storage.KeyConnectedWallets, &h.connections); err != nil {
		return nil, err
	}
	if h.connections == nil {
		h.connections = make(map[string]Connection)
	}
	if n, ok := wallet.(forgetNotifier); ok {
		h.unsubscribe = n.OnForget(h.Reset)
	}
	return h, nil
}

// Close stops following the wallet.
func (h *Handler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

// Reset drops every grant. The persisted record is expected to be gone
// already when the wallet was forgotten.
func (h *Handler) Reset() {
	h.mu.Lock()
	n := len(h.connections)
	h.connections = make(map[string]Connection)
	h.mu.Unlock()
	h.log.Info().Int("connections", n).Msg("connections reset")
}

// Connections returns a copy of the connected origins.
func (h *Handler) Connections() map[string]Connection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.connections)
}

// Disconnect forgets origin.
func (h *Handler) Disconnect(origin string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[origin]; !ok {
		return nil
	}
	delete(h.connections, origin)
	return h.persistLocked()
}

// Handle answers one request from origin. It never returns a transport error;
// failures are carried in Response.Error.
func (h *Handler) Handle(ctx context.Context, origin string, req Request) Response {
	resp := Response{JSONRPC: jsonRPCVersion, ID: req.ID}
	result, method, err := h.dispatch(ctx, origin, req)
	if err != nil {
		ev := h.log.Warn()
		if IsRejection(err) {
			ev = h.log.Info()
		}
		ev.Err(err).Str("origin", origin).Str("method", req.Method).Msg("request failed")
		resp.Error = err.Error()
		return resp
	}
	resp.Method = method
	resp.Result = result
	return resp
}

func (h *Handler) dispatch(ctx context.Context, origin string, req Request) (any, string, error) {
	switch req.Method {
	case MethodConnect:
		res, err := h.connect(ctx, origin, req.Params)
		return res, notifyConnected, err
	case MethodDisconnect:
		return nil, notifyDisconnected, h.Disconnect(origin)
	case MethodSignTransaction, MethodSignAllTransactions, MethodSign, MethodDiffieHellman:
	default:
		return nil, "", ErrUnsupportedMethod
	}

	conn, err := h.connected(origin)
	if err != nil {
		return nil, "", err
	}

	approval, err := decodeApproval(origin, req)
	if err != nil {
		return nil, "", err
	}
	if !conn.AutoApprove {
		ok, err := h.approver.ApproveRequest(ctx, approval)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", ErrCancelled
		}
	}

	switch req.Method {
	case MethodDiffieHellman:
		peer := solana.PublicKeyFromBytes(approval.Messages[0])
		kp, err := h.wallet.DiffieHellman(peer)
		if err != nil {
			return nil, "", err
		}
		return KeyPairResult{PublicKey: base58.Encode(kp.PublicKey), SecretKey: base58.Encode(kp.SecretKey)}, "", nil
	case MethodSignAllTransactions:
		sigs, pk, err := h.wallet.SignMessages(approval.Messages)
		if err != nil {
			return nil, "", err
		}
		if err := ensureSigner(conn, pk); err != nil {
			return nil, "", err
		}
		out := SignaturesResult{Signatures: make([]string, len(sigs)), PublicKey: pk.String()}
		for i, sig := range sigs {
			out.Signatures[i] = sig.String()
		}
		return out, "", nil
	default:
		sig, pk, err := h.wallet.SignMessage(approval.Messages[0])
		if err != nil {
			return nil, "", err
		}
		if err := ensureSigner(conn, pk); err != nil {
			return nil, "", err
		}
		return SignatureResult{Signature: sig.String(), PublicKey: pk.String()}, "", nil
	}
}

func (h *Handler) connect(ctx context.Context, origin string, raw json.RawMessage) (ConnectResult, error) {
	if origin == "" {
		return ConnectResult{}, fmt.Errorf("%w: missing origin", ErrInvalidParams)
	}
	var params connectParams
	if err := decodeParams(raw, &params); err != nil {
		return ConnectResult{}, err
	}
	pk, err := h.wallet.ActivePublicKey()
	if err != nil {
		return ConnectResult{}, err
	}

	h.mu.Lock()
	existing, ok := h.connections[origin]
	h.mu.Unlock()
	if ok && existing.PublicKey == pk.String() {
		return ConnectResult{PublicKey: existing.PublicKey, AutoApprove: existing.AutoApprove}, nil
	}

	approved, autoApprove, err := h.approver.ApproveConnection(ctx, origin, pk, params.AutoApprove)
	if err != nil {
		return ConnectResult{}, err
	}
	if !approved {
		return ConnectResult{}, ErrConnectRejected
	}

	conn := Connection{PublicKey: pk.String(), AutoApprove: autoApprove}
	h.mu.Lock()
	h.connections[origin] = conn
	err = h.persistLocked()
	h.mu.Unlock()
	if err != nil {
		return ConnectResult{}, err
	}
	h.log.Info().Str("origin", origin).Str("address", conn.PublicKey).Bool("auto_approve", autoApprove).Msg("origin connected")
	return ConnectResult(conn), nil
}

// connected returns the grant of origin if it is for the active account.
func (h *Handler) connected(origin string) (Connection, error) {
	h.mu.Lock()
	conn, ok := h.connections[origin]
	h.mu.Unlock()
	if !ok {
		return Connection{}, ErrNotConnected
	}
	pk, err := h.wallet.ActivePublicKey()
	if err != nil {
		return Connection{}, err
	}
	if pk.String() != conn.PublicKey {
		return Connection{}, ErrNotConnected
	}
	return conn, nil
}

// ensureSigner rejects signatures made after the active account changed.
func ensureSigner(conn Connection, pk solana.PublicKey) error {
	if pk.String() != conn.PublicKey {
		return ErrNotConnected
	}
	return nil
}

func (h *Handler) persistLocked() error {
	return storage.SetJSON(h.store, storage.KeyConnectedWallets, h.connections)
}

func decodeApproval(origin string, req Request) (Approval, error) {
	a := Approval{Origin: origin, Method: req.Method, Display: DisplayTx}
	switch req.Method {
	case MethodSignTransaction:
		var p signTransactionParams
		if err := decodeParams(req.Params, &p); err != nil {
			return a, err
		}
		msg, err := decodeBase58("message", p.Message)
		if err != nil {
			return a, err
		}
		a.Messages = [][]byte{msg}
	case MethodSignAllTransactions:
		var p signAllTransactionsParams
		if err := decodeParams(req.Params, &p); err != nil {
			return a, err
		}
		if len(p.Messages) == 0 {
			return a, fmt.Errorf("%w: messages is empty", ErrInvalidParams)
		}
		for _, m := range p.Messages {
			msg, err := decodeBase58("messages", m)
			if err != nil {
				return a, err
			}
			a.Messages = append(a.Messages, msg)
		}
	case MethodSign:
		var p signParams
		if err := decodeParams(req.Params, &p); err != nil {
			return a, err
		}
		if p.Data == nil {
			return a, fmt.Errorf("%w: missing data", ErrInvalidParams)
		}
		a.Messages = [][]byte{p.Data}
		a.Display = DisplayHex
		if p.Display == string(DisplayUTF8) {
			a.Display = DisplayUTF8
		}
	case MethodDiffieHellman:
		var p diffieHellmanParams
		if err := decodeParams(req.Params, &p); err != nil {
			return a, err
		}
		peer, err := solana.PublicKeyFromBase58(p.PublicKey)
		if err != nil {
			return a, fmt.Errorf("%w: publicKey: %v", ErrInvalidParams, err)
		}
		a.Messages = [][]byte{peer.Bytes()}
		a.Display = DisplayDiffieHellman
	}
	return a, nil
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func decodeBase58(field, s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidParams, field)
	}
	out, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParams, field, err)
	}
	return out, nil
}

// IsRejection reports whether err is a user or session rejection rather than a failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrConnectRejected) || errors.Is(err, ErrNotConnected)
}
