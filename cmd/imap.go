package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/bugzilla-recovery/internal/credential"
	"github.com/nhle/bugzilla-recovery/internal/ingest"
	"github.com/nhle/bugzilla-recovery/internal/source/email"
)

func newIMAPCmd(a *app) *cobra.Command {
	var mailbox string

	cmd := &cobra.Command{
		Use:   "imap",
		Short: "Ingest notifications directly from an IMAP mailbox",
		Long: `Read every message of an IMAP mailbox in UID order and ingest it.

The mailbox is opened read-only and messages are fetched without
setting their \Seen flag. Connection settings come from the imap.*
config keys; the password from BUGRECOVER_IMAP_PASSWORD or the keyring
(see "bugrecover credential set").`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			imapCfg := a.cfg.IMAP
			if mailbox != "" {
				imapCfg.Mailbox = mailbox
			}
			if err := imapCfg.Validate(); err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			password, err := credential.IMAPPassword(imapCfg.Username)
			if err != nil {
				return err
			}

			archive, err := email.Open(cmd.Context(), email.Config{
				Host:     imapCfg.Host,
				Port:     imapCfg.Port,
				Username: imapCfg.Username,
				Password: password,
				TLS:      imapCfg.TLS,
				Mailbox:  imapCfg.Mailbox,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := archive.Close(); err != nil {
					a.logger.Warn("closing mailbox", zap.Error(err))
				}
			}()
			a.logger.Info("mailbox opened",
				zap.String("archive", archive.Name()),
				zap.Int("messages", archive.Len()),
			)

			driver := ingest.NewDriver(s, a.cfg.Ingest.BatchSize, a.logger)
			stats, runErr := driver.Run(cmd.Context(), archive)
			fmt.Fprint(cmd.OutOrStdout(), renderStats([]ingest.Stats{stats}))
			return runErr
		},
	}

	cmd.Flags().StringVar(&mailbox, "mailbox", "", "mailbox to read (default imap.mailbox)")
	return cmd
}
