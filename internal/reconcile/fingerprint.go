package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nhle/bugzilla-recovery/internal/model"
)

// Fingerprint derives the dedup key of a comment. A numbered comment is
// identified by its position alone, so re-sent copies with cosmetic
// differences collapse into one row. Anything else falls back to the
// body text.
func Fingerprint(issueID int64, commentIndex int, body string) string {
	var payload string
	if commentIndex >= 0 {
		payload = fmt.Sprintf("bug:%d/comment:%d", issueID, commentIndex)
	} else {
		payload = "body:" + body
	}
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// withFingerprint returns c with its DedupKey filled in.
func withFingerprint(c model.Comment) model.Comment {
	c.DedupKey = Fingerprint(c.IssueID, c.CommentIndex, c.Body)
	return c
}
