// Package email reads tracker notifications straight from an IMAP
// mailbox.
package email

import (
	"context"
	"fmt"
	"io"
	"net"
	"slices"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/bugzilla-recovery/internal/source"
)

// fetchChunk is the number of messages requested per FETCH.
const fetchChunk = 50

// Config holds the connection settings of one mailbox.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
	Mailbox  string
}

// Archive walks a mailbox in ascending UID order. Messages are fetched
// with BODY.PEEK so their \Seen flag is left alone.
type Archive struct {
	cfg     Config
	client  *imapclient.Client
	uids    []imap.UID
	next    int
	pending [][]byte
}

var _ source.Archive = (*Archive)(nil)

// Connect establishes a connection to the IMAP server and authenticates.
// The caller is responsible for calling Logout/Close on the returned
// client.
func Connect(_ context.Context, cfg Config) (*imapclient.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	var client *imapclient.Client
	var err error

	if cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.AuthError{
			SourceType: source.SourceTypeIMAP,
			Message: fmt.Sprintf(
				"authentication failed for %s: %v",
				cfg.Username, err,
			),
		}
	}

	return client, nil
}

// Open connects, selects the mailbox read-only and lists its UIDs.
func Open(ctx context.Context, cfg Config) (*Archive, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	selectOpts := &imap.SelectOptions{ReadOnly: true}
	if _, err := client.Select(cfg.Mailbox, selectOpts).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", cfg.Mailbox, err)
	}

	searchData, err := client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("searching %s: %w", cfg.Mailbox, err)
	}

	uids := searchData.AllUIDs()
	slices.Sort(uids)

	return &Archive{cfg: cfg, client: client, uids: uids}, nil
}

// Type returns the archive kind.
func (a *Archive) Type() source.SourceType {
	return source.SourceTypeIMAP
}

// Name returns an imap URL for the mailbox.
func (a *Archive) Name() string {
	return fmt.Sprintf("imap://%s@%s/%s", a.cfg.Username, a.cfg.Host, a.cfg.Mailbox)
}

// Len returns the number of messages in the mailbox when it was opened.
func (a *Archive) Len() int {
	return len(a.uids)
}

// Next returns the next message, or io.EOF after the last one.
func (a *Archive) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for len(a.pending) == 0 {
		if a.next >= len(a.uids) {
			return nil, io.EOF
		}
		if err := a.fetch(); err != nil {
			return nil, err
		}
	}

	raw := a.pending[0]
	a.pending = a.pending[1:]
	return raw, nil
}

// fetch loads the next chunk of messages into pending, in UID order.
// Messages expunged since Open are skipped.
func (a *Archive) fetch() error {
	end := min(a.next+fetchChunk, len(a.uids))
	chunk := a.uids[a.next:end]
	a.next = end

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	msgs, err := a.client.Fetch(imap.UIDSetNum(chunk...), fetchOpts).Collect()
	if err != nil {
		return fmt.Errorf("fetching messages: %w", err)
	}

	byUID := make(map[imap.UID][]byte, len(msgs))
	for _, buf := range msgs {
		if raw := buf.FindBodySection(bodySection); raw != nil {
			byUID[buf.UID] = raw
		}
	}
	for _, uid := range chunk {
		if raw, ok := byUID[uid]; ok {
			a.pending = append(a.pending, raw)
		}
	}
	return nil
}

// Close logs out and closes the connection.
func (a *Archive) Close() error {
	err := a.client.Logout().Wait()
	_ = a.client.Close()
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}
