package sessions

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokendeck/tokendeck/internal/models"
	"github.com/tokendeck/tokendeck/internal/pricing"
	"github.com/tokendeck/tokendeck/internal/ui/styles"
)

// View renders the sessions tab.
func (m *Model) View() string {
	history := m.state.GetHistory()

	if m.loading && !m.loaded {
		return styles.DocStyle.
			Width(m.width).
			Height(m.height).
			Render(m.spinner.ViewWithLabel())
	}

	if m.lastErr != "" && len(history) == 0 {
		content := fmt.Sprintf("%s %s",
			styles.ErrorTextStyle.Render("Error:"),
			m.lastErr,
		)
		return styles.DocStyle.
			Width(m.width).
			Height(m.height).
			Render(content)
	}

	if len(history) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Sessions"),
			"",
			styles.HelpStyle.Render("No sessions recorded yet."),
		)
		return styles.DocStyle.
			Width(m.width).
			Height(m.height).
			Render(content)
	}

	sections := []string{
		m.renderHeader(len(history)),
		m.renderTable(history),
		m.renderDetail(history),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader(count int) string {
	title := styles.TitleStyle.Render("Sessions")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d most recent, newest first", count))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTable(history []models.SessionHistoryRecord) string {
	cardWidth := max(m.width-6, 50)

	header := fmt.Sprintf("  %-22s %-16s %8s %10s %10s",
		"Session", "Started", "Reqs", "Tokens", "Cost")

	rows := []string{styles.TableHeaderStyle.Render(header)}

	for i, rec := range history {
		id := rec.SessionID
		if len(id) > 20 {
			id = id[:17] + "..."
		}

		started := rec.StartTime.Format("Jan 2 15:04")
		if rec.Ongoing() {
			started += " ●"
		}

		line := fmt.Sprintf("%-22s %-16s %8d %10s %10s",
			id,
			started,
			rec.RequestCount,
			pricing.FormatTokens(rec.TokensTotal),
			pricing.FormatCost(rec.Cost),
		)

		if i == m.selectedIndex {
			rows = append(rows, styles.SelectedListItemStyle.Render(styles.TableSelectedStyle.Render(line)))
		} else {
			rows = append(rows, styles.ListItemStyle.Render(line))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDetail(history []models.SessionHistoryRecord) string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(history) {
		return ""
	}
	rec := history[m.selectedIndex]
	cardWidth := max(m.width-6, 50)

	var status string
	if rec.Ongoing() {
		status = styles.SuccessTextStyle.Render("ongoing")
	} else {
		status = fmt.Sprintf("ended %s (%s)",
			rec.EndTime.Format("Jan 2 15:04"),
			formatDuration(rec.EndTime.Sub(rec.StartTime)),
		)
	}

	user := "-"
	if rec.UserID != nil {
		user = *rec.UserID
	}

	rows := []string{
		styles.CardTitleStyle.Render("Session Detail"),
		fmt.Sprintf("Session   %s", styles.InfoTextStyle.Render(rec.SessionID)),
		fmt.Sprintf("User      %s", user),
		fmt.Sprintf("Status    %s", status),
		fmt.Sprintf("Requests  %d", rec.RequestCount),
		fmt.Sprintf("Tokens    %s in / %s out (%s total)",
			pricing.FormatTokens(rec.TokensInput),
			pricing.FormatTokens(rec.TokensOutput),
			pricing.FormatTokens(rec.TokensTotal),
		),
		fmt.Sprintf("Cost      %s", pricing.FormatCost(rec.Cost)),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
