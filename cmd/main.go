package main

import (
	"context"
	"fmt"
	"os"

	"clinic-frontdesk/cmd/bootstrap"
	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/infrastructure/database"
	"clinic-frontdesk/internal/repository"
	"clinic-frontdesk/internal/usecase"
	"clinic-frontdesk/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "frontdesk",
		Short:        "Clinic front-desk queue server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clinicCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			if err := app.InitServer(context.Background()); err != nil {
				app.Close()
				return err
			}
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := database.MigrateUp(app.DB); err != nil {
				return err
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := database.MigrateDown(app.DB, steps); err != nil {
				return err
			}
			fmt.Printf("Rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func clinicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinics",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new clinic",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			phone, _ := cmd.Flags().GetString("phone")
			email, _ := cmd.Flags().GetString("email")
			address, _ := cmd.Flags().GetString("address")

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			clinics := usecase.NewClinicUsecase(app.DB, app.Log, repository.NewClinicRepository())
			clinic, err := clinics.CreateClinic(cmd.Context(), name, phone, email, address)
			if err != nil {
				return err
			}
			fmt.Printf("Clinic created: %s (%s)\n", clinic.Name, clinic.ID)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Clinic display name")
	createCmd.Flags().String("phone", "", "Contact phone")
	createCmd.Flags().String("email", "", "Contact email")
	createCmd.Flags().String("address", "", "Street address")
	_ = createCmd.MarkFlagRequired("name")

	cmd.AddCommand(createCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage staff access tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint an access token for a staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawClinic, _ := cmd.Flags().GetString("clinic")
			rawUser, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")

			clinicID, err := uuid.Parse(rawClinic)
			if err != nil {
				return fmt.Errorf("invalid --clinic: %w", err)
			}
			userID := uuid.New()
			if rawUser != "" {
				if userID, err = uuid.Parse(rawUser); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			if !entity.IsValidRole(role) {
				return fmt.Errorf("invalid --role %q", role)
			}

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			clinics := usecase.NewClinicUsecase(app.DB, app.Log, repository.NewClinicRepository())
			if _, err := clinics.GetClinic(ctx, clinicID); err != nil {
				return err
			}

			jwtService := jwt.NewJWTService(app.Config.JWT)
			token, tokenID, err := jwtService.GenerateAccessToken(userID, clinicID, role)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			key := jwt.AccessTokenKey(userID, tokenID)
			if err := app.RedisClient.Set(ctx, key, clinicID.String(), jwtService.GetAccessExpiry()).Err(); err != nil {
				return fmt.Errorf("failed to register token: %w", err)
			}

			fmt.Printf("user: %s\nexpires in: %s\ntoken: %s\n", userID, jwtService.GetAccessExpiry(), token)
			return nil
		},
	}
	issueCmd.Flags().String("clinic", "", "Clinic ID the token is scoped to")
	issueCmd.Flags().String("user", "", "Staff user ID (generated when empty)")
	issueCmd.Flags().String("role", entity.RoleReceptionist, "admin, receptionist or doctor")
	_ = issueCmd.MarkFlagRequired("clinic")

	cmd.AddCommand(issueCmd)
	return cmd
}
