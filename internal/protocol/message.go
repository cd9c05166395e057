// Package protocol serves the request/response channel between an embedding
// page and the wallet: connect, sign and key agreement requests keyed by origin.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
)

const jsonRPCVersion = "2.0"

// Methods a page may call.
const (
	MethodConnect             = "connect"
	MethodDisconnect          = "disconnect"
	MethodSignTransaction     = "signTransaction"
	MethodSignAllTransactions = "signAllTransactions"
	MethodSign                = "sign"
	MethodDiffieHellman       = "diffieHellman"
)

// Notifications the wallet sends back with a response.
const (
	notifyConnected    = "connected"
	notifyDisconnected = "disconnected"
)

// Error strings returned to pages.
var (
	ErrUnsupportedMethod = errors.New("Unsupported method")
	ErrCancelled         = errors.New("Transaction cancelled")
	ErrNotConnected      = errors.New("Wallet not connected")
	ErrConnectRejected   = errors.New("Connection rejected")
	ErrInvalidParams     = errors.New("Invalid params")
)

// Request is a page originated message.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method"`
	ID      json.RawMessage `json:"id,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response carries either Result or Error for the request with the same ID.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// ConnectResult answers connect.
type ConnectResult struct {
	PublicKey   string `json:"publicKey"`
	AutoApprove bool   `json:"autoApprove"`
}

// SignatureResult answers signTransaction and sign.
type SignatureResult struct {
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// SignaturesResult answers signAllTransactions.
type SignaturesResult struct {
	Signatures []string `json:"signatures"`
	PublicKey  string   `json:"publicKey"`
}

// KeyPairResult answers diffieHellman.
type KeyPairResult struct {
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

type connectParams struct {
	AutoApprove bool `json:"autoApprove"`
}

type signTransactionParams struct {
	Message string `json:"message"`
}

type signAllTransactionsParams struct {
	Messages []string `json:"messages"`
}

type signParams struct {
	Data    Bytes  `json:"data"`
	Display string `json:"display"`
}

type diffieHellmanParams struct {
	PublicKey string `json:"publicKey"`
}

// Bytes decodes binary payloads sent as a base58 string, a JSON number array,
// or an index keyed object as produced by serializing a Uint8Array.
type Bytes []byte

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		out, err := base58.Decode(s)
		if err != nil {
			return fmt.Errorf("invalid base58 data: %w", err)
		}
		*b = out
		return nil
	}

	var arr []int
	if err := json.Unmarshal(data, &arr); err == nil {
		out, err := toBytes(arr)
		if err != nil {
			return err
		}
		*b = out
		return nil
	}

	var obj map[string]int
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.New("data must be a base58 string or a byte array")
	}
	arr = make([]int, len(obj))
	for k, v := range obj {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(obj) || strconv.Itoa(i) != k {
			return fmt.Errorf("invalid byte index %q", k)
		}
		arr[i] = v
	}
	out, err := toBytes(arr)
	if err != nil {
		return err
	}
	*b = out
	return nil
}

func toBytes(arr []int) ([]byte, error) {
	out := make([]byte, len(arr))
	for i, v := range arr {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}
