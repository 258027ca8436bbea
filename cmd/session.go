package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"traceper/internal/config"
	"traceper/internal/session"
	"traceper/internal/storage"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the stored session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the session held by the configured origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			return showSession(cmd.OutOrStdout(), cfg)
		},
	})
	return cmd
}

// showSession reads the session the way a tab would, without writing.
func showSession(w io.Writer, cfg *config.Config) error {
	kv, closeStorage := openStorage(cfg.DBPath, cfg.Origin, nil)
	defer closeStorage()

	origin := storage.NewOrigin(cfg.Origin, kv, nil)
	area := origin.Open("cli")
	defer area.Close()

	sess := session.NewStore(area, nil).Session()

	state := "unauthenticated"
	if sess.Authenticated() {
		state = "authenticated"
	}
	fmt.Fprintf(w, "origin: %s\n", cfg.Origin)
	fmt.Fprintf(w, "state:  %s\n", state)
	if sess.DisplayName != "" {
		fmt.Fprintf(w, "user:   %s\n", sess.DisplayName)
	}
	if sess.Token != "" {
		fmt.Fprintf(w, "token:  %s\n", maskToken(sess.Token))
	}
	return nil
}

func maskToken(tok string) string {
	const visible = 6
	if len(tok) <= visible {
		return strings.Repeat("*", len(tok))
	}
	return tok[:visible] + strings.Repeat("*", 8)
}
