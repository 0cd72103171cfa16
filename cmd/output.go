package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/bugzilla-recovery/internal/ingest"
	"github.com/nhle/bugzilla-recovery/internal/model"
	"github.com/nhle/bugzilla-recovery/internal/survey"
	"github.com/nhle/bugzilla-recovery/internal/theme"
)

// row is one labelled counter of a report panel.
type row struct {
	label string
	value int
	warn  bool
}

func renderPanel(title string, rows []row) string {
	lines := []string{theme.HeaderStyle.Render(title)}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			theme.LabelStyle.Render(r.label),
			theme.CountStyle(r.value, r.warn).Render(fmt.Sprint(r.value)),
		))
	}
	return theme.PanelStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func statsRows(s ingest.Stats) []row {
	return []row{
		{label: "messages", value: s.Messages},
		{label: "skipped by category", value: s.SkippedCategory},
		{label: "malformed subjects", value: s.MalformedSubject, warn: true},
		{label: "unreadable headers", value: s.UnreadableHeader, warn: true},
		{label: "undated messages", value: s.UndatedMessages, warn: true},
		{label: "unreadable parts", value: s.UnreadableParts, warn: true},
		{label: "issues inserted", value: s.IssuesInserted},
		{label: "issues updated", value: s.IssuesUpdated},
		{label: "issues stale", value: s.IssuesStale},
		{label: "issues non-authoritative", value: s.IssuesNonAuthoritative},
		{label: "comments inserted", value: s.CommentsInserted},
		{label: "comments duplicate", value: s.CommentsDuplicate},
		{label: "bodies unrecognized", value: s.BodiesUnrecognized, warn: true},
	}
}

// renderStats prints one panel per archive, plus a total when more than
// one archive was read.
func renderStats(all []ingest.Stats) string {
	var b strings.Builder
	var total ingest.Stats
	for _, s := range all {
		b.WriteString(renderPanel(s.Archive, statsRows(s)))
		total.Add(s)
	}
	if len(all) > 1 {
		b.WriteString(renderPanel(fmt.Sprintf("total (%d archives)", len(all)), statsRows(total)))
	}
	return b.String()
}

func renderCategories(counts []survey.Count) string {
	if len(counts) == 0 {
		return theme.HelpStyle.Render("no messages found") + "\n"
	}

	lines := []string{theme.HeaderStyle.Render("notification categories")}
	for _, c := range counts {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			theme.LabelStyle.Render(c.Category.Label()),
			theme.ValueStyle.Render(fmt.Sprint(c.Messages)),
			theme.EligibilityStyle(c.Eligibility).Render(c.Eligibility.String()),
		))
	}
	return theme.PanelStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func renderRuns(runs []model.IngestRun) string {
	if len(runs) == 0 {
		return theme.HelpStyle.Render("no runs recorded") + "\n"
	}

	var b strings.Builder
	for _, r := range runs {
		state := "unfinished"
		if r.FinishedAt != nil {
			state = "finished " + r.FinishedAt.Format("2006-01-02 15:04:05")
		}
		title := fmt.Sprintf("%s  %s", r.Archive, theme.HelpStyle.Render(state))
		b.WriteString(renderPanel(title, []row{
			{label: "messages", value: r.Messages},
			{label: "issues inserted", value: r.IssuesInserted},
			{label: "issues updated", value: r.IssuesUpdated},
			{label: "comments inserted", value: r.CommentsInserted},
		}))
	}
	return b.String()
}
