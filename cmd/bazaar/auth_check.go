package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/config"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authCheckRole          string
	authCheckEmail         string
	authCheckSignup        bool
	authCheckPasswordStdin bool
)

var authCheckCmd = &cobra.Command{
	Use:   "auth-check",
	Short: "Submit credentials to the configured provider the way an auth screen does.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := auth.ParseRole(authCheckRole)
		if err != nil {
			return err
		}
		mode := auth.ModeLogin
		if authCheckSignup {
			mode = auth.ModeSignup
		}

		password, err := resolveAuthCheckPassword(cmd, os.Stdin)
		if err != nil {
			return err
		}

		cfg, err := config.LoadOptionalDB()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := logging.NewLogger(logging.DefaultConfig(), io.Discard, cmd.CommandPath())
		if err := loadProviderSecrets(ctx, &cfg, logger); err != nil {
			return err
		}
		provider, err := buildProvider(ctx, cfg)
		if err != nil {
			return err
		}
		screens, err := buildScreens(cfg, provider)
		if err != nil {
			return err
		}

		for _, screen := range screens {
			if screen.Role() != role {
				continue
			}
			out := screen.Submit(ctx, "auth-check", auth.Credentials{Email: authCheckEmail, Password: password}, mode)
			if out.Err != nil {
				return &exitError{code: exitCodeRejected, err: fmt.Errorf("%s: %s", out.Err.Kind, out.Err.Message)}
			}
			cmd.Printf("%s %s succeeded: subject=%s email=%s redirect=%s\n",
				role, mode, out.Identity.Subject, out.Identity.Email, out.Redirect)
			return nil
		}
		return fmt.Errorf("no screen for role %q", role)
	},
}

func resolveAuthCheckPassword(cmd *cobra.Command, stdin *os.File) (string, error) {
	if authCheckPasswordStdin {
		return readPasswordLine(stdin)
	}
	if !term.IsTerminal(int(stdin.Fd())) {
		return "", errors.New("no password provided (use --password-stdin or run from a terminal)")
	}
	cmd.Print("Password: ")
	raw, err := term.ReadPassword(int(stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", errors.New("password is empty")
	}
	return string(raw), nil
}

func readPasswordLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("password is empty")
	}
	password := strings.TrimRight(scanner.Text(), "\r\n")
	if password == "" {
		return "", errors.New("password is empty")
	}
	return password, nil
}

func init() {
	authCheckCmd.Flags().StringVar(&authCheckRole, "role", "", "Screen role: supplier or vendor")
	authCheckCmd.Flags().StringVar(&authCheckEmail, "email", "", "Account email address")
	authCheckCmd.Flags().BoolVar(&authCheckSignup, "signup", false, "Create the account instead of signing in")
	authCheckCmd.Flags().BoolVar(&authCheckPasswordStdin, "password-stdin", false, "Read the password from stdin")
	_ = authCheckCmd.MarkFlagRequired("role")
	_ = authCheckCmd.MarkFlagRequired("email")
}
