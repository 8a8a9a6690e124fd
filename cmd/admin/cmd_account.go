package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/infrastructure/postgres"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account recovery commands",
}

var accountReactivateCmd = &cobra.Command{
	Use:   "reactivate <account-id>",
	Short: "Restore a soft-deleted account",
	Long: `Flip a soft-deleted account back to active. The balance and the
transaction history were never touched by the deletion, so nothing else changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := account.NewService(postgres.NewAccountRepository(db))
		if err := svc.ReactivateAccount(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return fmt.Errorf("account %s not found", args[0])
			}
			return err
		}

		log.Info("account reactivated", zap.String("account_id", args[0]))
		return nil
	},
}

func init() {
	accountCmd.AddCommand(accountReactivateCmd)
}
