package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

var errCycleFailed = errors.New("no source could be fetched")

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Kanso backend and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return services.ErrPasswordRequired
				}
				password = strings.TrimRight(line, "\r\n")
			}

			session, err := c.app.Sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s logged in as %s (user %s)\n", okStyle.Render("✓"), session.Email, session.UserID)
			if !c.app.PersistentCredentials {
				fmt.Fprintln(out, warnStyle.Render("token kept in memory only; set KANSO_CREDENTIAL_PASSPHRASE to persist it"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newOverviewCmd(c *cli) *cobra.Command {
	var asJSON, concurrent bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Fetch all sources and print the overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncSvc := c.app.Sync
			if concurrent {
				syncSvc = c.app.WithStrategy(services.FetchConcurrent)
			}

			snap, err := syncSvc.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			view := services.Project(snap)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(view); err != nil {
					return err
				}
			} else {
				renderOverview(out, view)
			}

			if snap.Failed() {
				return fmt.Errorf("%w: %v", errCycleFailed, snap.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	cmd.Flags().BoolVar(&concurrent, "concurrent", false, "fetch the three sources at once")
	return cmd
}

func newBadgesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List the badge catalog and what is unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			unlocked, err := c.app.Sync.UnlockedBadges(cmd.Context())
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(unlocked))
			for _, b := range unlocked {
				ids = append(ids, b.ID)
			}
			renderBadges(cmd.OutOrStdout(), c.app.Catalog.All(), domain.NewUnlockedBadgeSet(ids...))
			return nil
		},
	}
}
