package model

import "time"

// Issue is the current metadata snapshot of one tracked bug, rebuilt from
// the newest authoritative notification seen for it.
type Issue struct {
	// ID is the tracker's bug number.
	ID int64 `json:"id" db:"issue_id"`

	// Subject is the bug title with the "New:" marker and any attachment
	// suffix removed.
	Subject string `json:"subject" db:"subject"`

	Product   string `json:"product" db:"product"`
	Component string `json:"component" db:"component"`
	Severity  string `json:"severity" db:"severity"`
	Priority  string `json:"priority" db:"priority"`
	Status    string `json:"status" db:"status"`
	Assignee  string `json:"assignee" db:"assignee"`

	// IsSecurity only ever goes from false to true.
	IsSecurity bool `json:"is_security" db:"is_security"`

	// LastUpdate is the timestamp of the message that last wrote this row.
	LastUpdate time.Time `json:"last_update" db:"last_update"`
}
