// cmd/dbtools/token/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/api/auth"
	"github.com/codr1/Glansen/internal/db"
)

func main() {
	var (
		dbPath = flag.String("db", "", "Path to SQLite database")
		orgID  = flag.String("org", "", "Organization ID the token is scoped to")
		name   = flag.String("name", "", "Label for the token, e.g. the integration using it")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" || strings.TrimSpace(*orgID) == "" || strings.TrimSpace(*name) == "" {
		fmt.Fprintln(os.Stderr, "All flags are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	org, err := database.Queries.GetOrganizationByID(ctx, strings.TrimSpace(*orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Fatal().Str("org_id", *orgID).Msg("Organization not found; run a sync first")
		}
		log.Fatal().Err(err).Msg("Failed to load organization")
	}

	token, row, err := auth.IssueToken(ctx, database.Queries, org.ID, strings.TrimSpace(*name))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}

	log.Info().
		Str("org_id", org.ID).
		Int64("token_id", row.ID).
		Str("token_prefix", row.TokenPrefix).
		Msg("API token issued; it is shown once")
	fmt.Println(token)
}
