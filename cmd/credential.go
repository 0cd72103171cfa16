package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/bugzilla-recovery/internal/credential"
)

func newCredentialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the stored IMAP password",
	}
	cmd.AddCommand(newCredentialSetCmd(a), newCredentialDeleteCmd(a))
	return cmd
}

func newCredentialSetCmd(a *app) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the IMAP password in the system keyring",
		Long: `Prompt for the password of imap.username and store it in the system
keyring. With --stdin the password is read from the first line of
standard input instead.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			username := a.cfg.IMAP.Username

			var password string
			if fromStdin {
				if username == "" {
					return errors.New("imap.username is not configured")
				}
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			} else {
				if err := promptCredential(&username, &password); err != nil {
					return err
				}
			}
			if password == "" {
				return errors.New("password is empty")
			}

			if err := credential.SetIMAPPassword(username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s\n", username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the password from standard input")
	return cmd
}

func newCredentialDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored IMAP password",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			username := a.cfg.IMAP.Username
			if username == "" {
				return errors.New("imap.username is not configured")
			}
			if err := credential.DeleteIMAPPassword(username); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed password for %s\n", username)
			return nil
		},
	}
}

// promptCredential asks for the password, and for the username when the
// config does not name one.
func promptCredential(username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().
			Title("IMAP Username").
			Description("Account that receives the tracker mail").
			Value(username).
			Validate(validateRequired("Username")))
	}
	fields = append(fields, huh.NewInput().
		Title("IMAP Password").
		Description("Stored in the system keyring, never in the config file").
		EchoMode(huh.EchoModePassword).
		Value(password).
		Validate(validateRequired("Password")))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
