// Package pin provides the object-pinning collaborator: storing bytes under a
// content address and dereferencing addresses for display.
package pin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kobuta23/telegram-minter/internal/model"
)

// Object describes the payload being pinned.
type Object struct {
	Filename    string
	ContentType string
}

// Pinner stores bytes off-chain and returns an ipfs:// content address.
type Pinner interface {
	Pin(ctx context.Context, data []byte, obj Object) (string, error)
}

// Gateway dereferences ipfs:// content addresses through an HTTP gateway.
type Gateway struct {
	base string // e.g. https://ipfs.io/ipfs/
	http *http.Client
}

// NewGateway constructs a Gateway with the given base URL.
func NewGateway(base string, hc *http.Client) *Gateway {
	if hc == nil {
		hc = http.DefaultClient
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Gateway{base: base, http: hc}
}

// URL rewrites an ipfs:// content address to a fetchable gateway URL.
// Non-ipfs inputs pass through unchanged.
func (g *Gateway) URL(contentAddress string) string {
	if rest, ok := strings.CutPrefix(contentAddress, "ipfs://"); ok {
		return g.base + rest
	}
	return contentAddress
}

// FetchMetadata dereferences a token metadata content address.
func (g *Gateway) FetchMetadata(ctx context.Context, contentAddress string) (*model.TokenMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL(contentAddress), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", contentAddress, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", contentAddress, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", contentAddress, err)
	}
	var meta model.TokenMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", contentAddress, err)
	}
	return &meta, nil
}
