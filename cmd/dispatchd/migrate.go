package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/persistence"
	"github.com/schooltransit/dispatch/internal/persistence/sqlite"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: "Apply database migrations and, when --admin-email and --admin-password " +
		"are set, seed the first administrator account.",
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&adminEmail, "admin-email", "", "email for the seeded administrator account")
	migrateCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password for the seeded administrator account")
	migrateCmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "display name for the seeded administrator account")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		return err
	}
	logger.Info().Msg("migrations applied")

	if adminEmail == "" && adminPassword == "" {
		return nil
	}
	if adminEmail == "" || adminPassword == "" {
		return errors.New("--admin-email and --admin-password must be set together")
	}
	return seedAdmin(ctx, sqlite.NewOperatorRepository(pool))
}

// seedAdmin creates the administrator account unless one already exists
// under the given email. Reruns are safe.
func seedAdmin(ctx context.Context, operators persistence.OperatorRepository) error {
	email := strings.ToLower(strings.TrimSpace(adminEmail))

	if _, err := operators.GetOperatorByEmail(ctx, email); err == nil {
		logger.Info().Str("email", email).Msg("administrator already exists, skipping seed")
		return nil
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	hash, err := application.HashPassword(adminPassword, application.DefaultArgon2Params)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	operator := persistence.Operator{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  adminName,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := operators.CreateOperator(ctx, operator); err != nil {
		return err
	}
	logger.Info().Str("email", email).Msg("administrator account seeded")
	return nil
}
