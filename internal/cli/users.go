package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BrunoXDR/project-manager-v2/internal/auth"
	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

// newCreateUserCommand provisions accounts of any role, including the
// manager and admin accounts public registration refuses.
func newCreateUserCommand(app *App) *cobra.Command {
	var in domain.UserInput
	var role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Email = strings.TrimSpace(in.Email)
			in.Role = domain.UserRole(role)
			if failed := domain.ValidateUserInput(in); !domain.ValidationPassed(failed) {
				return fmt.Errorf("invalid user: %s", strings.Join(failed, ", "))
			}

			hashed, err := auth.HashPassword(in.Password)
			if err != nil {
				return err
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.CreateUser(cmd.Context(), in.Email, hashed, in.Role)
			if err != nil {
				return fmt.Errorf("create user %s: %w", in.Email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "admin, manager or member")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTokenCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token helpers",
	}

	issue := &cobra.Command{
		Use:   "issue <email>",
		Short: "Issue an access token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := app.Config.GetString("jwt-secret")
			if secret == "" {
				return fmt.Errorf("jwt secret is required (--jwt-secret or JWT_SECRET)")
			}
			ttl := app.Config.GetDuration("jwt-ttl")

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.GetUserByEmail(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}
			token, err := auth.NewTokenIssuer(secret, ttl).Issue(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().String("jwt-secret", "", "signing secret (env JWT_SECRET)")
	issue.Flags().Duration("jwt-ttl", 0, "token lifetime (env JWT_TTL)")
	_ = app.Config.BindPFlag("jwt-secret", issue.Flags().Lookup("jwt-secret"))
	_ = app.Config.BindPFlag("jwt-ttl", issue.Flags().Lookup("jwt-ttl"))

	cmd.AddCommand(issue)
	return cmd
}
