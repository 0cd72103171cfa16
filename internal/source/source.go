package source

import (
	"context"
	"errors"
	"fmt"
)

// AuthError indicates that authentication was rejected by a remote
// mailbox.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of archive.
type SourceType string

const (
	SourceTypeMbox SourceType = "mbox"
	SourceTypeIMAP SourceType = "imap"
)

// Archive is an ordered sequence of raw RFC 5322 messages.
type Archive interface {
	// Type returns the archive kind.
	Type() SourceType

	// Name identifies the archive in logs and the run log.
	Name() string

	// Next returns the next raw message, or io.EOF after the last one.
	Next(ctx context.Context) ([]byte, error)

	// Close releases the underlying file or connection.
	Close() error
}
