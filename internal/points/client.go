// Package points talks to the external points system that rewards NFT
// holders.
package points

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/model"
)

// Service assigns points to the holders of a token.
type Service interface {
	GiveToHolders(ctx context.Context, tokenID, points int64) error
}

// Client is the HTTP implementation against the points API.
type Client struct {
	apiKey   string
	systemID int64
	contract model.Address
	chainID  int64
	baseURL  string
	http     *http.Client
	log      *zap.Logger
}

var _ Service = (*Client)(nil)

// New constructs a points client for the given point system and contract.
func New(apiKey string, systemID int64, contract model.Address, chainID int64, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:   apiKey,
		systemID: systemID,
		contract: contract,
		chainID:  chainID,
		baseURL:  "https://api.stack.so",
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// GiveToHolders creates an NFT-holder event integration granting points to
// every holder of the token.
func (c *Client) GiveToHolders(ctx context.Context, tokenID, points int64) error {
	payload := map[string]any{
		"type": "nft_holder",
		"args": map[string]any{
			"nftContractAddress": c.contract,
			"chainId":            c.chainID,
			"tokenId":            tokenID,
			"points":             points,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/point-system/%d/event-integrations", c.baseURL, c.systemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("points integration: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("points integration: status %d: %s", resp.StatusCode, detail)
	}
	c.log.Info("points granted to holders",
		zap.Int64("tokenId", tokenID),
		zap.Int64("points", points),
	)
	return nil
}
