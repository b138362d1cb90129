package main

// Mint a bearer credential from the configured secret without going through
// the HTTP token route:
//   go run ./cmd/mint-token -service-id partner-gateway

import (
	"flag"
	"fmt"
	"os"

	"docextract-api/internal/shared/auth"
	"docextract-api/internal/shared/config"
)

func main() {
	serviceID := flag.String("service-id", "", "service identity to mint for (defaults to API_SERVICE_ID)")
	flag.Parse()

	cfg := config.Load()
	id := *serviceID
	if id == "" {
		id = cfg.ServiceID
	}

	authority, err := auth.NewAuthority(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.ServiceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint-token: %v\n", err)
		os.Exit(1)
	}
	cred, err := authority.Issue(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint-token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(cred.Token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", auth.FormatExpiresAt(cred.ExpiresAt))
}
