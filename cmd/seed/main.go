package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wolfman30/leadflow/internal/app/bootstrap"
	"github.com/wolfman30/leadflow/internal/auth"
	appconfig "github.com/wolfman30/leadflow/internal/config"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/seed"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// usage: seed [-users N] [-leads N] [-reset]
func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required to seed")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.BuildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect stores", "error", err)
		os.Exit(1)
	}

	result, err := run(ctx, cfg, stores, opts, logger)
	stores.Close()
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d users and %d leads (%d skipped)\n", len(result.UserIDs), result.LeadsCreated, result.LeadsSkipped)
	fmt.Printf("Demo login: %s / %s\n", seed.DemoEmail, seed.DemoPassword)
}

func parseFlags(args []string, out io.Writer) (seed.Options, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(out)
	opts := seed.Options{}
	fs.IntVar(&opts.Users, "users", seed.DefaultUsers, "number of users, including the demo account")
	fs.IntVar(&opts.Leads, "leads", seed.DefaultLeads, "number of leads spread across the users")
	fs.BoolVar(&opts.Reset, "reset", false, "delete the demo account's leads before seeding")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Users < 1 || opts.Leads < 0 {
		fmt.Fprintln(out, "users must be at least 1 and leads cannot be negative")
		return opts, errors.New("invalid counts")
	}
	return opts, nil
}

func run(ctx context.Context, cfg *appconfig.Config, stores *bootstrap.Stores, opts seed.Options, logger *logging.Logger) (*seed.Result, error) {
	importer, ok := stores.Leads.(leads.Importer)
	if !ok {
		return nil, fmt.Errorf("lead store %T cannot import records", stores.Leads)
	}
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(stores.Users, issuer, stores.Sessions, nil, logger)
	return seed.Run(ctx, seed.NewGenerator(nil), authService, stores.Users, importer, opts, logger)
}
