package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/rentara/rentara-api/internal/config"
	"github.com/rentara/rentara-api/internal/database"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/services"
	"github.com/rentara/rentara-api/pkg/logger"
	"gorm.io/gorm"
)

// allModels lists every schema-managed model. Order matters for foreign keys.
var allModels = []interface{}{
	&models.User{},
	&models.RefreshToken{},
	&models.Tenant{},
	&models.Property{},
	&models.Lease{},
	&models.Installment{},
	&models.MaintenanceCharge{},
	&models.Notification{},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rentara database migration tool",
	}

	rootCmd.AddCommand(upCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Environment)
	return database.Connect(cfg.DatabaseURL)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			if err := db.AutoMigrate(allModels...); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info("Schema migrated", "models", len(allModels))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}

			var count int64
			if err := db.Model(&models.User{}).Where("role LIKE ?", "%admin%").Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				logger.Info("Admin user already exists, skipping seed")
				return nil
			}

			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}

			admin := models.User{
				Email:             email,
				EncryptedPassword: hash,
				FullName:          "Administrator",
				Role:              models.RoleAdmin,
				Status:            models.StatusActive,
			}
			if err := db.Create(&admin).Error; err != nil {
				return err
			}
			logger.Info("Admin user created", "email", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "admin@rentara.io", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
