package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"postplanner/internal/approval"
	"postplanner/internal/dbmysql"
	"postplanner/internal/di"
)

var seedWorkflow bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the MySQL schema",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&seedWorkflow, "seed", true, "also create the default approval workflow")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	infra, cleanup, err := di.InitializeInfra()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := dbmysql.Migrate(infra.DB); err != nil {
		return err
	}
	infra.Log.Info("schema migrated", zap.String("database", infra.Config.Database.DatabaseName))

	if !seedWorkflow {
		return nil
	}
	approvals := approval.NewApprovalService(
		dbmysql.NewApprovalRepository(infra.DB),
		dbmysql.NewPostRepository(infra.DB),
		nil,
		infra.Config,
		infra.Log,
	)
	if err := approvals.EnsureDefaultWorkflow(cmd.Context()); err != nil {
		return fmt.Errorf("seed default workflow: %w", err)
	}
	infra.Log.Info("default approval workflow ready",
		zap.String("workflow_id", infra.Config.Scheduling.DefaultApprovalWorkflowID))
	return nil
}
