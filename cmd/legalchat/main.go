// Package main provides the legalchat terminal client.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"legalchat-backend/internal/chatclient"
	"legalchat-backend/internal/logging"
	"legalchat-backend/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	Version = "0.1.0"
	appName = "legalchat"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	serverURL  string
	queryURL   string
	logLevel   string

	stdin *bufio.Reader
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Chat with the AI legal assistant from the terminal",
		Long: `legalchat is a terminal client for the legal assistant.

Sign up or log in once; the session is kept in the config directory.
Running legalchat without a subcommand starts an interactive chat.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML, default ~/.config/legalchat/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "Backend URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.queryURL, "query-url", "", "Answer service URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		signupCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		statusCmd(opts),
		chatCmd(opts),
		configCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// app is what every subcommand needs: resolved config, a logger and a backend client
// carrying the persisted session.
type app struct {
	cfg         *chatclient.ClientConfig
	configPath  string
	sessionPath string
	logger      *zap.Logger
	backend     *chatclient.BackendClient
}

func newApp(opts *rootOptions) (*app, error) {
	logger, err := logging.New(opts.logLevel, "console")
	if err != nil {
		return nil, err
	}

	configPath := opts.configPath
	if configPath == "" {
		if configPath, err = chatclient.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := chatclient.LoadClientConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if opts.serverURL != "" {
		cfg.Server.URL = opts.serverURL
	}
	if opts.queryURL != "" {
		cfg.Query.URL = opts.queryURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	backend, err := chatclient.NewBackendClient(cfg.Server.URL, cfg.Server.Timeout, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		configPath:  configPath,
		sessionPath: cfg.SessionPath(configPath),
		logger:      logger,
		backend:     backend,
	}
	if token, err := os.ReadFile(a.sessionPath); err == nil {
		backend.SetSessionToken(strings.TrimSpace(string(token)))
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not read session file", zap.String("path", a.sessionPath), zap.Error(err))
	}
	return a, nil
}

func (a *app) saveSession() error {
	token := a.backend.SessionToken()
	if token == "" {
		return a.clearSession()
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionPath), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(a.sessionPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (a *app) clearSession() error {
	if err := os.Remove(a.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func signupCmd(opts *rootOptions) *cobra.Command {
	var req models.SignupRequest
	var phone, bar string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if req.Password == "" {
				if req.Password, err = prompt(cmd, opts, "Password: "); err != nil {
					return err
				}
			}
			if phone != "" {
				req.PhoneNumber = &phone
			}
			if bar != "" {
				req.BarNumber = &bar
			}

			resp, err := a.backend.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s. Welcome, %s!\n", resp.Message, resp.User.FirstName)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.FirstName, "first-name", "", "First name")
	f.StringVar(&req.LastName, "last-name", "", "Last name")
	f.StringVar(&req.Email, "email", "", "Email address")
	f.StringVar(&req.Password, "password", "", "Password (prompted when empty)")
	f.StringVar(&req.UserType, "type", models.UserTypeClient, "Account type (lawyer, client, student)")
	f.StringVar(&phone, "phone", "", "Phone number")
	f.StringVar(&bar, "bar-number", "", "Bar number (required for lawyers)")
	return cmd
}

func loginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = prompt(cmd, opts, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd, opts, "Password: "); err != nil {
					return err
				}
			}

			resp, err := a.backend.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s. Hello, %s!\n", resp.Message, resp.User.FirstName)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if err := a.backend.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := a.clearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logout successful")
			return nil
		},
	}
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			status, err := a.backend.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !status.IsAuthenticated {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s %s <%s> (%s)\n",
				status.User.FirstName, status.User.LastName, status.User.Email, status.User.UserType)
			fmt.Fprintf(out, "Server: %s\n", a.cfg.Server.URL)
			return nil
		},
	}
}

func configCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				var err error
				if path, err = chatclient.DefaultConfigPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := chatclient.DefaultClientConfig().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})
	return cmd
}

// input returns one buffered reader over the command's stdin for all prompts.
func (o *rootOptions) input(cmd *cobra.Command) *bufio.Reader {
	if o.stdin == nil {
		o.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return o.stdin
}

// prompt reads one line from the command's input.
func prompt(cmd *cobra.Command, opts *rootOptions, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := opts.input(cmd).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
