// Package cli implements pmctl, the operator command line for provisioning
// accounts and inspecting the quality gate table.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
)

// UserStore is the slice of the relational store pmctl needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword string, role domain.UserRole) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	Close() error
}

// App carries the dependencies shared by every command so tests can swap
// the store and capture output.
type App struct {
	Out       io.Writer
	Config    *viper.Viper
	OpenStore func(dsn string) (UserStore, error)
}

func NewApp() *App {
	return &App{
		Out:    os.Stdout,
		Config: newConfig(),
		OpenStore: func(dsn string) (UserStore, error) {
			store, err := storage.NewPostgresStore(dsn)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	}
}

// newConfig resolves flags and the same environment keys the services read,
// so POSTGRES_DSN feeds --postgres-dsn.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("jwt-ttl", "30m")
	return v
}

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pmctl",
		Short:         "Operate the project manager backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)

	root.PersistentFlags().String("postgres-dsn", "", "postgres connection string (env POSTGRES_DSN)")
	_ = app.Config.BindPFlag("postgres-dsn", root.PersistentFlags().Lookup("postgres-dsn"))

	root.AddCommand(
		newCreateUserCommand(app),
		newGatesCommand(app),
		newTokenCommand(app),
	)
	return root
}

// Execute runs pmctl and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pmctl:", err)
		return 1
	}
	return 0
}

func (a *App) openStore() (UserStore, error) {
	dsn := a.Config.GetString("postgres-dsn")
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required (--postgres-dsn or POSTGRES_DSN)")
	}
	return a.OpenStore(dsn)
}
