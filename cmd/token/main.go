// Command token mints a back-office bearer token from the configured secret.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		operator string
		ttl      time.Duration
	)
	flag.StringVar(&operator, "operator", "", "Name recorded as the token subject (required)")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if operator == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	token, err := auth.NewJWTService(cfg.JWT).Generate(operator, ttl)
	if err != nil {
		log.Fatal("Failed to generate token", zap.Error(err))
	}
	log.Info("Token issued",
		zap.String("operator", operator),
		zap.Time("expires_at", token.ExpiresAt),
	)
	fmt.Println(token.AccessToken)
}
