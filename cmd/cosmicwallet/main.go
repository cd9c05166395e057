// Command cosmicwallet runs the wallet daemon on the loopback interface.
//
// @title        Cosmic Wallet API
// @version      1.0
// @description  Local Solana wallet: seed custody, accounts, balances, transfers and page signing requests.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/AlexZinkM/cosmic-wallet/docs"
	"github.com/AlexZinkM/cosmic-wallet/internal/account"
	"github.com/AlexZinkM/cosmic-wallet/internal/api"
	"github.com/AlexZinkM/cosmic-wallet/internal/cache"
	"github.com/AlexZinkM/cosmic-wallet/internal/client"
	"github.com/AlexZinkM/cosmic-wallet/internal/cluster"
	"github.com/AlexZinkM/cosmic-wallet/internal/config"
	"github.com/AlexZinkM/cosmic-wallet/internal/logging"
	"github.com/AlexZinkM/cosmic-wallet/internal/protocol"
	"github.com/AlexZinkM/cosmic-wallet/internal/seed"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"
	"github.com/AlexZinkM/cosmic-wallet/internal/wallet"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cosmicwallet:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	// Open durable storage
	durable, err := storage.OpenBolt(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open wallet database: %w", err)
	}
	defer durable.Close()

	sessionPath := cfg.SessionPath()
	session, sessionCloser, err := storage.OpenSession(sessionPath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessionCloser.Close()
	if sessionPath == "" {
		log.Warn().Msg("no runtime directory, stay logged in lasts until exit")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, pages, err := wire(cfg, durable, session, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	defer pages.Close()

	state, err := svc.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start wallet: %w", err)
	}
	log.Info().Str("state", state.String()).Msg("wallet restored")

	if state == seed.Locked && cfg.UnlockOnStart {
		if err := unlock(ctx, svc, cfg.StayLoggedIn); err != nil {
			// the API can still unlock it
			log.Warn().Err(err).Msg("wallet left locked")
		}
	}

	srv := &http.Server{
		Addr:    "127.0.0.1:" + config.GetPort(),
		Handler: api.SetupRouter(svc, pages),
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func wire(cfg *config.Config, durable, session storage.Store, log zerolog.Logger) (*wallet.Service, *protocol.Handler, error) {
	seeds := seed.NewManager(durable, session, logging.Component(log, "seed"))

	dial := func(c cluster.Cluster) client.Connection {
		return client.NewSolanaClient(c.HTTPEndpoint, cfg.RequestsPerSecond)
	}
	known := cluster.KnownClusters(cfg.MainnetRPCURL, cfg.MainnetWSURL, cfg.LocalnetRPCURL)
	clusters, err := cluster.NewManager(durable, known, cluster.Slug(cfg.Cluster), dial, logging.Component(log, "cluster"))
	if err != nil {
		return nil, nil, err
	}

	svc := wallet.NewService(wallet.Deps{
		Seeds:    seeds,
		Accounts: account.NewDirectory(durable, seeds, logging.Component(log, "account")),
		Clusters: clusters,
		Caches:   cache.NewBalanceCaches(logging.Component(log, "cache")),
	}, wallet.Config{
		RefreshInterval:  cfg.RefreshInterval,
		TransferCooldown: cfg.TransferCooldown,
		SkipPreflight:    cfg.SkipPreflight,
	}, logging.Component(log, "wallet"))

	approver := protocol.Policy{Origins: cfg.TrustedOrigins, AutoApprove: cfg.AutoApproveTrusted}
	pages, err := protocol.NewHandler(svc, approver, durable, logging.Component(log, "protocol"))
	if err != nil {
		svc.Close()
		return nil, nil, err
	}
	return svc, pages, nil
}

func unlock(ctx context.Context, svc *wallet.Service, stayLoggedIn bool) error {
	password, err := config.PromptForPassword("Wallet password: ")
	if err != nil {
		return err
	}
	defer clear(password) // Always clear password from memory
	return svc.Unlock(ctx, password, stayLoggedIn)
}
