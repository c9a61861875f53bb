// Command admintoken prints an ADMIN bearer token for POST /internal/jobs/ingest.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"servicecatalog/internal/config"
	"servicecatalog/internal/platform/crypto"
)

func main() {
	var (
		subject = flag.String("sub", "ops", "Token subject (operator or service name)")
		ttl     = flag.Duration("ttl", time.Hour, "Token lifetime")
	)
	flag.Parse()

	cfg, err := config.Load[config.Auth]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: %v\n", err)
		os.Exit(1)
	}
	if err := mint(os.Stdout, cfg.JWTSecret, *subject, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: %v\n", err)
		os.Exit(1)
	}
}

func mint(w io.Writer, secret, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	token, _, err := crypto.GenerateToken(secret, subject, crypto.RoleAdmin, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
