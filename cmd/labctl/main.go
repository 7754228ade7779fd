// Command labctl runs one-off administration tasks against the lab database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"comlab_tool/app"
	"comlab_tool/config"
	"comlab_tool/db"
)

type env struct {
	cfg  config.Config
	conn *gorm.DB
	repo *db.Repo
}

func (e *env) open(cmd *cobra.Command, _ []string) error {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogFormat)
	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	e.cfg, e.conn, e.repo = cfg, conn, db.NewRepo(conn)
	return nil
}

func (e *env) close(*cobra.Command, []string) {
	if e.conn == nil {
		return
	}
	if sqlDB, err := e.conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:               "labctl",
		Short:             "Administer the computer lab request service",
		SilenceUsage:      true,
		PersistentPreRunE: e.open,
		PersistentPostRun: e.close,
	}
	root.AddCommand(
		migrateCmd(),
		setAdminCmd(e),
		inviteCmd(e),
		addRoomCmd(e),
	)
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func setAdminCmd(e *env) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "set-admin <email>",
		Short: "Grant (or with --revoke remove) the admin claim of a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			u, err := e.repo.FindUserByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("find %s: %w", args[0], err)
			}
			if err := e.repo.SetUserAdmin(ctx, u.ID, !revoke); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", u.Username, !revoke)
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the admin claim instead")
	return cmd
}

func inviteCmd(e *env) *cobra.Command {
	var (
		asAdmin bool
		days    int
	)
	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Create a registration invite and print its link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				days = 1
			}
			token, err := app.NewInviteToken()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			inv, err := e.repo.CreateInvite(ctx, args[0], token, asAdmin, time.Now().AddDate(0, 0, days), "labctl")
			if err != nil {
				return err
			}
			link := app.InviteLink(e.cfg.WebOrigin, token)
			if err := app.SendInvite(e.cfg.SMTP, inv.Email, link, days); err != nil {
				log.Warn().Err(err).Msg("invite email failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asAdmin, "admin", false, "register the invitee as an admin")
	cmd.Flags().IntVar(&days, "days", 1, "days until the invite expires")
	return cmd
}

func addRoomCmd(e *env) *cobra.Command {
	var pcs int
	cmd := &cobra.Command{
		Use:   "add-room <room>",
		Short: "Add a lab room and provision its PCs as available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			created, err := e.repo.AddRoom(ctx, args[0], pcs)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "room %s %s with %d pcs\n", args[0], verb, pcs)
			return nil
		},
	}
	cmd.Flags().IntVar(&pcs, "pcs", 0, "number of PCs to provision")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
