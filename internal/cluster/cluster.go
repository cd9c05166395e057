// Package cluster holds the active (cluster, connection) pair.
package cluster

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Slug identifies a cluster.
type Slug string

const (
	MainnetBeta Slug = "mainnet-beta"
	Localnet    Slug = "localnet"
	Custom      Slug = "custom"
)

// DefaultLocalnetURL is the RPC endpoint of a local test validator
const DefaultLocalnetURL = "http://localhost:8899"

const explorerBase = "https://explorer.solana.com"

var (
	ErrUnknownCluster  = errors.New("unknown cluster")
	ErrInvalidEndpoint = errors.New("endpoint must be an absolute http(s) URL")
)

// Cluster describes one selectable network.
type Cluster struct {
	HTTPEndpoint string `json:"httpEndPoint"`
	WSEndpoint   string `json:"wsEndPoint,omitempty"`
	Slug         Slug   `json:"slug"`
	Label        string `json:"label"`
}

// KnownClusters returns the built-in clusters. An empty mainnetURL leaves mainnet out.
func KnownClusters(mainnetURL, mainnetWSURL, localnetURL string) []Cluster {
	var out []Cluster
	if mainnetURL != "" {
		out = append(out, Cluster{
			HTTPEndpoint: mainnetURL,
			WSEndpoint:   mainnetWSURL,
			Slug:         MainnetBeta,
			Label:        "Mainnet",
		})
	}
	if localnetURL == "" {
		localnetURL = DefaultLocalnetURL
	}
	out = append(out, Cluster{HTTPEndpoint: localnetURL, Slug: Localnet, Label: "Localnet"})
	return out
}

// ValidateEndpoint checks that endpoint is an absolute http or https URL
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	return nil
}

// TransactionLink returns the block explorer URL of a transaction signature on c.
func TransactionLink(c Cluster, signature string) string {
	return explorerLink(c, "tx", signature)
}

// AccountLink returns the block explorer URL of an address on c.
func AccountLink(c Cluster, address string) string {
	return explorerLink(c, "address", address)
}

func explorerLink(c Cluster, kind, id string) string {
	link := explorerBase + "/" + kind + "/" + id
	if c.Slug == MainnetBeta {
		return link
	}
	// localnet and custom are both addressed by their endpoint
	return link + "?cluster=custom&customUrl=" + url.QueryEscape(c.HTTPEndpoint)
}
