package cli

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskdash/internal/fakeapi"
	"taskdash/internal/model"
)

func newDevServerCmd(app *App) *cobra.Command {
	var addr, secret string
	var seed bool

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory task service for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := fakeapi.New([]byte(secret))
			srv.Logger = app.logger
			if seed {
				for _, u := range []struct {
					email string
					role  model.Role
				}{
					{"admin@example.com", model.RoleAdmin},
					{"user@example.com", model.RoleUser},
				} {
					if _, err := srv.AddUser(u.email, string(u.role), u.role); err != nil {
						return writeErr(cmd, err)
					}
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := srv.ListenAndServe(ctx, addr, func(a net.Addr) {
				_ = writeOut(cmd, app, map[string]any{
					"data": map[string]any{"addr": a.String(), "seeded": seed},
				})
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("TASKDASH_DEV_ADDR", ":5000"), "Listen address")
	cmd.Flags().StringVar(&secret, "secret", envOr("TASKDASH_DEV_SECRET", ""), "Token signing secret (random when empty)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create admin@example.com/admin and user@example.com/user")
	return cmd
}
