// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
)

// Config is the full process configuration. There are no flags; everything
// comes from the environment.
type Config struct {
	BotToken        string `env:"TELEGRAM_BOT_TOKEN,required"`
	PinataJWT       string `env:"PINATA_JWT,required"`
	ContractAddress string `env:"CONTRACT_ADDRESS,required"`
	AccountAddress  string `env:"CHAIN_ACCOUNT,required"`
	AdminID         int64  `env:"ADMIN_ID,required"`
	Testnet         bool   `env:"TESTNET" envDefault:"false"`
	RPCURL          string `env:"RPC_URL"`
	MainnetRPCURL   string `env:"MAINNET_RPC_URL" envDefault:"https://eth-mainnet.rpc.x.superfluid.dev/"`
	StackAPIKey     string `env:"STACK_API_KEY"`
	PointSystemID   int64  `env:"POINT_SYSTEM_ID"`
	IPFSGateway     string `env:"IPFS_GATEWAY" envDefault:"https://ipfs.io/ipfs/"`
	DataDir         string `env:"DATA_DIR" envDefault:"data"`
}

// Load parses configuration from the environment and fills derived defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RPCURL == "" {
		if cfg.Testnet {
			cfg.RPCURL = "https://base-sepolia.rpc.x.superfluid.dev/"
		} else {
			cfg.RPCURL = "https://base-mainnet.rpc.x.superfluid.dev/"
		}
	}
	return &cfg, nil
}

// ExplorerTxURL renders a block-explorer link for a transaction hash.
func (c *Config) ExplorerTxURL(txRef string) string {
	if c.Testnet {
		return "https://sepolia.basescan.org/tx/" + txRef
	}
	return "https://basescan.org/tx/" + txRef
}

// PinCredentialExpiry extracts the expiry claim from the pinning bearer token
// without verifying its signature (we only hold it to present it upstream).
// A zero time means the token carries no expiry.
func (c *Config) PinCredentialExpiry() (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.PinataJWT, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse pin credential: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
