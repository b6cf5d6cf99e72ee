// callingctl is the operational companion to the API server: roster imports,
// permission group seeding, and superuser creation.
package main

import (
	"fmt"
	"os"

	"github.com/jhstephenson/callingtrack/internal/config"
	"github.com/jhstephenson/callingtrack/internal/database"
	"github.com/jhstephenson/callingtrack/internal/history"
	"github.com/jhstephenson/callingtrack/internal/importer"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/permissions"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "callingctl",
		Short: "CallingTrack administration commands",
	}

	rootCmd.AddCommand(importCallingsCmd())
	rootCmd.AddCommand(importCompletedCallingsCmd())
	rootCmd.AddCommand(seedGroupsCmd())
	rootCmd.AddCommand(createSuperuserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads config, opens the database and runs migrations
func connect() (*gorm.DB, error) {
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		return nil, err
	}
	return database.GetDB(), nil
}

func importCallingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-callings <file>",
		Short: "Import a calling roster from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			callingRepo := repository.NewCallingRepository(db)
			unitRepo := repository.NewUnitRepository(db)
			orgRepo := repository.NewOrganizationRepository(db)
			positionRepo := repository.NewPositionRepository(db)
			callingService := services.NewCallingService(callingRepo, unitRepo, orgRepo, positionRepo, history.NewRecorder())

			stats, err := importer.New(db, callingService).Run(file)
			if err != nil {
				return err
			}

			cmd.Println("Import completed")
			cmd.Printf("Rows processed:        %d\n", stats.RowsProcessed)
			cmd.Printf("Rows skipped:          %d\n", stats.RowsSkipped)
			cmd.Printf("Units created:         %d\n", stats.UnitsCreated)
			cmd.Printf("Organizations created: %d\n", stats.OrganizationsCreated)
			cmd.Printf("Positions created:     %d\n", stats.PositionsCreated)
			cmd.Printf("Callings created:      %d\n", stats.CallingsCreated)
			cmd.Printf("Callings released:     %d\n", stats.CallingsReleased)
			return nil
		},
	}
}

func importCompletedCallingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-completed-callings <file>",
		Short: "Backfill already-released callings from a completed-roster CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			callingRepo := repository.NewCallingRepository(db)
			unitRepo := repository.NewUnitRepository(db)
			orgRepo := repository.NewOrganizationRepository(db)
			positionRepo := repository.NewPositionRepository(db)
			callingService := services.NewCallingService(callingRepo, unitRepo, orgRepo, positionRepo, history.NewRecorder())

			stats, err := importer.New(db, callingService).RunCompleted(file)
			if err != nil {
				return err
			}

			cmd.Println("Import completed")
			cmd.Printf("Rows processed:        %d\n", stats.RowsProcessed)
			cmd.Printf("Rows skipped:          %d\n", stats.RowsSkipped)
			cmd.Printf("Units created:         %d\n", stats.UnitsCreated)
			cmd.Printf("Organizations created: %d\n", stats.OrganizationsCreated)
			cmd.Printf("Positions created:     %d\n", stats.PositionsCreated)
			cmd.Printf("Callings created:      %d\n", stats.CallingsCreated)
			cmd.Printf("Callings updated:      %d\n", stats.CallingsUpdated)
			return nil
		},
	}
}

func seedGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-groups",
		Short: "Create the built-in permission groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			userRepo := repository.NewUserRepository(db)
			if err := userRepo.EnsureGroups(permissions.AllGroups); err != nil {
				return err
			}

			cmd.Println("Permission groups seeded:")
			for _, name := range permissions.AllGroups {
				cmd.Printf("  %s\n", name)
			}
			return nil
		},
	}
}

func createSuperuserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an account with all capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			userRepo := repository.NewUserRepository(db)
			authService := services.NewAuthService(userRepo)

			user, err := authService.Signup(username, password)
			if err != nil {
				return err
			}

			if err := db.Model(&models.User{}).
				Where("id = ?", user.ID).
				Update("is_superuser", true).Error; err != nil {
				return err
			}

			cmd.Printf("Superuser %s created\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for the new account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for the new account")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
