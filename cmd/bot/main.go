// Command minter-bot starts the GroupChat NFT Telegram bot.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/audit"
	"github.com/kobuta23/telegram-minter/internal/bot"
	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/chain/ethrpc"
	"github.com/kobuta23/telegram-minter/internal/config"
	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/pin"
	"github.com/kobuta23/telegram-minter/internal/points"
	"github.com/kobuta23/telegram-minter/internal/security"
	"github.com/kobuta23/telegram-minter/internal/session"
	"github.com/kobuta23/telegram-minter/internal/storage"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the durable stores, and runs the poll loop.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("contract", cfg.ContractAddress),
		zap.String("account", cfg.AccountAddress),
		zap.Bool("testnet", cfg.Testnet),
	)

	if exp, err := cfg.PinCredentialExpiry(); err != nil {
		logger.Warn("pin credential unreadable", zap.Error(err))
	} else if !exp.IsZero() && time.Now().After(exp) {
		logger.Warn("pin credential expired", zap.Time("expiredAt", exp))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable stores: whole-file JSON snapshots, loaded once.
	registry, err := security.Open(filepath.Join(cfg.DataDir, "config.json"))
	if err != nil {
		logger.Fatal("open permission registry", zap.Error(err))
	}
	directory, err := storage.OpenDirectory(filepath.Join(cfg.DataDir, "users.json"))
	if err != nil {
		logger.Fatal("open actor directory", zap.Error(err))
	}
	tokens, err := storage.OpenTokenBook(filepath.Join(cfg.DataDir, "userTokens.json"))
	if err != nil {
		logger.Fatal("open token book", zap.Error(err))
	}
	trail, err := audit.Open(filepath.Join(cfg.DataDir, "logs.json"))
	if err != nil {
		logger.Fatal("open audit trail", zap.Error(err))
	}

	if err := registry.Grant(model.ActorID(cfg.AdminID), model.CapAdmin); err != nil {
		logger.Fatal("grant configured admin", zap.Error(err))
	}

	chainClient := ethrpc.New(ethrpc.Config{
		RPCURL:        cfg.RPCURL,
		MainnetRPCURL: cfg.MainnetRPCURL,
		Contract:      model.Address(cfg.ContractAddress),
		Account:       model.Address(cfg.AccountAddress),
		Log:           logger,
	})
	gateway := chain.NewGateway(chainClient, logger)

	chainID := int64(8453) // Base mainnet
	if cfg.Testnet {
		chainID = 84532 // Base Sepolia
	}

	api := telegram.NewClient(cfg.BotToken, logger)
	b := bot.New(bot.Deps{
		API:       api,
		Registry:  registry,
		Sessions:  session.NewStore(),
		Trail:     trail,
		Directory: directory,
		Tokens:    tokens,
		Gateway:   gateway,
		Chain:     chainClient,
		Pinner:    pin.NewPinata(cfg.PinataJWT, nil, logger),
		IPFS:      pin.NewGateway(cfg.IPFSGateway, &http.Client{Timeout: 30 * time.Second}),
		Points:    points.New(cfg.StackAPIKey, cfg.PointSystemID, model.Address(cfg.ContractAddress), chainID, logger),
		Explorer:  cfg.ExplorerTxURL,
		Log:       logger,
	})

	poller := telegram.NewPoller(api, b.HandleUpdate, logger)
	logger.Info("bot started")
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("poller", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
