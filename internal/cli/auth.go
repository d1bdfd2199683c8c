package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdash/internal/identity"
	"taskdash/internal/model"
)

func newRegisterCmd(app *App) *cobra.Command {
	var email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the task service",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return writeErr(cmd, errors.New("missing --email or --password"))
			}
			_, c, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Register(cmd.Context(), strings.TrimSpace(email), password, r); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"email": strings.TrimSpace(email), "role": r},
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("TASKDASH_PASSWORD", ""), "Password")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "Role (user|admin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, c, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := guard.Login(cmd.Context(), c, strings.TrimSpace(email), password)
			if err != nil {
				return writeErr(cmd, err)
			}
			if s, err := app.store(); err == nil {
				if st, err := s.LoadTUIState(); err == nil {
					st.LastEmail = strings.TrimSpace(email)
					_ = s.SaveTUIState(st)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": id})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("TASKDASH_PASSWORD", ""), "Password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, _, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity in the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, _, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := guard.Require(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{"userId": id.UserID, "role": id.Role}
			tok, _, _ := guard.Store.Get(cmd.Context())
			if claims, err := identity.ParseClaims(tok); err == nil {
				if exp, ok := claims.Expiry(); ok {
					out["expiresAt"] = exp.UTC().Format(time.RFC3339)
					out["expired"] = time.Now().After(exp)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}
