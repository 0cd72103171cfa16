package mbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gombox "github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/nhle/bugzilla-recovery/internal/bugmail"
	"github.com/nhle/bugzilla-recovery/internal/source"
)

// BrokenName is the output file for messages without a usable Date.
const BrokenName = "mail-broken"

const defaultSender = "MAILER-DAEMON"

// monthFile is an open output archive.
type monthFile struct {
	file *os.File
	w    *gombox.Writer
}

// Split copies every message of src into per-month archives under
// outDir named mail-YYMM after the message date. Existing files are
// appended to. It returns the number of messages written per file name.
func Split(ctx context.Context, src source.Archive, outDir string, logger *zap.Logger) (map[string]int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	open := make(map[string]*monthFile)
	closeAll := func() error {
		var errs []error
		for _, mf := range open {
			errs = append(errs, mf.w.Close(), mf.file.Close())
		}
		return errors.Join(errs...)
	}

	counts := make(map[string]int)
	for {
		raw, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = closeAll()
			return counts, err
		}

		name, sender, at := splitTarget(raw)
		mf, ok := open[name]
		if !ok {
			f, err := os.OpenFile(filepath.Join(outDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				_ = closeAll()
				return counts, fmt.Errorf("opening %s: %w", name, err)
			}
			mf = &monthFile{file: f, w: gombox.NewWriter(f)}
			open[name] = mf
		}

		w, err := mf.w.CreateMessage(sender, at)
		if err != nil {
			_ = closeAll()
			return counts, fmt.Errorf("writing to %s: %w", name, err)
		}
		if _, err := w.Write(raw); err != nil {
			_ = closeAll()
			return counts, fmt.Errorf("writing to %s: %w", name, err)
		}
		counts[name]++

		if n := total(counts); n%1000 == 0 {
			logger.Info("split progress", zap.Int("messages", n))
		}
	}

	if err := closeAll(); err != nil {
		return counts, fmt.Errorf("closing split archives: %w", err)
	}
	logger.Info("split finished",
		zap.String("archive", src.Name()),
		zap.Int("messages", total(counts)),
		zap.Int("files", len(counts)),
	)
	return counts, nil
}

// splitTarget picks the output file, envelope sender and envelope date
// for one message.
func splitTarget(raw []byte) (name, sender string, at time.Time) {
	sender = defaultSender
	e, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return BrokenName, sender, time.Unix(0, 0).UTC()
	}
	h := mail.Header{Header: e.Header}

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		sender = from[0].Address
	}

	at, err = bugmail.ParseDate(h.Get("Date"))
	if err != nil {
		return BrokenName, sender, time.Unix(0, 0).UTC()
	}
	return fmt.Sprintf("mail-%s", at.Format("0601")), sender, at
}

func total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
