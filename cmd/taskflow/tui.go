package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Joseda-hg/taskflow/internal/auth"
	"github.com/Joseda-hg/taskflow/internal/config"
	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/gateway"
	"github.com/Joseda-hg/taskflow/internal/tui"
)

func tuiCmd(flags *rootFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// the board owns the terminal, so logs go to a file next to the config
			if err := config.EnsureDir(path); err != nil {
				return err
			}
			logFile, err := os.OpenFile(filepath.Join(filepath.Dir(path), "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return err
			}
			defer logFile.Close()
			log.SetOutput(logFile)

			if email == "" {
				if email, err = prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			logger := log.StandardLogger()
			store, err := db.Open(ctx, cfg.BackendURL, db.WithLogger(logger))
			if err != nil {
				return err
			}
			defer store.Close()

			gw, err := gateway.New(store, gateway.WithLogger(logger))
			if err != nil {
				return err
			}
			defer gw.Close()

			provider := auth.New(store, sessionSecret(cfg),
				auth.WithBaseURL(cfg.PublicBaseURL),
				auth.WithSessionTTL(cfg.SessionTTL),
				auth.WithProfiles(gw),
				auth.WithLogger(logger),
			)
			session, err := provider.SignInWithPassword(ctx, email, password)
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}
			defer func() {
				if err := provider.SignOut(ctx, session.AccessToken); err != nil {
					logger.WithError(err).Warn("sign out")
				}
			}()

			return tui.Run(gw, session.User)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, prompted when omitted")
	return cmd
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Fprint(os.Stderr, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
