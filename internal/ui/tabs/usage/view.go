package usage

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokendeck/tokendeck/internal/models"
	"github.com/tokendeck/tokendeck/internal/pricing"
	"github.com/tokendeck/tokendeck/internal/ui/components"
	"github.com/tokendeck/tokendeck/internal/ui/styles"
)

// View renders the usage tab.
func (m *Model) View() string {
	if m.phase == PhaseIdle {
		return styles.DocStyle.
			Width(m.width).
			Height(m.height).
			Render(styles.HelpStyle.Render("Usage view is closed."))
	}

	stats, period, stale := m.state.GetStats()

	if stats == nil {
		if m.lastErr != "" {
			return m.renderUnavailable()
		}
		return styles.DocStyle.
			Width(m.width).
			Height(m.height).
			Render(m.spinner.ViewWithLabel())
	}

	sections := []string{
		m.renderHeader(period, stale),
		m.renderTotals(stats.Totals, period),
		m.renderTrendChart(stats.DailyStats),
		m.renderCurrentSession(stats.CurrentSession),
	}
	if estimate := m.renderEstimate(); estimate != "" {
		sections = append(sections, estimate)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderUnavailable() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Usage"),
		"",
		fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Store unreachable:"), m.lastErr),
		styles.HelpStyle.Render("Retrying on the next poll. Press r to retry now."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(period models.Period, stale bool) string {
	title := styles.TitleStyle.Render("Usage")

	var periodButtons []string
	for _, p := range []models.Period{models.Period7Days, models.Period30Days} {
		label := p.String()
		if p == period {
			periodButtons = append(periodButtons, styles.ButtonActiveStyle.Render(label))
		} else {
			periodButtons = append(periodButtons, styles.ButtonInactiveStyle.Render(label))
		}
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.HelpStyle.Render("[t] "),
		lipgloss.JoinHorizontal(lipgloss.Center, periodButtons...),
	)

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", selector)

	var status string
	switch {
	case m.phase == PhaseLoading || m.phase == PhaseStale:
		status = m.spinner.ViewWithLabel()
	case stale || m.lastErr != "":
		status = styles.StaleBadgeStyle.Render("⚠ stale") +
			styles.HelpStyle.Render(" — showing last known data")
	case !m.lastUpdated.IsZero():
		status = styles.HelpStyle.Render("Updated " + m.lastUpdated.Format("15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, status, "")
}

func (m *Model) renderTotals(totals models.UsageTotals, period models.Period) string {
	cardWidth := max(m.width-6, 40)

	cellStyle := lipgloss.NewStyle().Width(cardWidth / 3)
	labelStyle := styles.HelpStyle
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)

	cells := []string{
		cellStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render("Requests"),
			valueStyle.Render(fmt.Sprintf("%d", totals.TotalRequests)),
		)),
		cellStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render("Tokens"),
			valueStyle.Render(pricing.FormatTokens(totals.TokensTotal)),
		)),
		cellStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render("Cost"),
			valueStyle.Render(pricing.FormatCost(totals.TotalCost)),
		)),
	}

	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Totals — Last %s", period)),
		lipgloss.JoinHorizontal(lipgloss.Top, cells...),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTrendChart(daily []models.DailyUsageRecord) string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Daily Cost"), "")

	if len(daily) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No daily data for this period"))
	} else {
		costs := make([]float64, len(daily))
		for i, d := range daily {
			costs[i] = d.Cost
		}

		chartWidth := max(cardWidth-12, 30)
		chartHeight := 6

		chart := components.RenderLineChart(costs, chartWidth, chartHeight,
			fmt.Sprintf("%s … %s (USD/day)", daily[0].Date, daily[len(daily)-1].Date))

		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		tokens := make([]float64, len(daily))
		for i, d := range daily {
			tokens[i] = float64(d.TokensTotal)
		}
		rows = append(rows, "", "  "+components.RenderSparkline(tokens, min(chartWidth, 40)))
		rows = append(rows, "  "+components.RenderLegend([]components.LegendItem{
			{Label: "cost (USD/day)", Color: styles.Primary},
			{Label: "tokens/day", Color: styles.Info},
		}))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderCurrentSession(session *models.CurrentSessionUsage) string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Current Session (reported)"))

	if session == nil {
		rows = append(rows, styles.HelpStyle.Render("No active session reported by the store."))
	} else {
		id := session.SessionID
		if len(id) > 24 {
			id = id[:21] + "..."
		}

		var threshold float64
		if m.services != nil && m.services.Config() != nil {
			threshold = m.services.Config().CostAlertThreshold
		}

		rows = append(rows,
			fmt.Sprintf("Session   %s", styles.InfoTextStyle.Render(id)),
			fmt.Sprintf("Requests  %d", session.RequestCount),
			fmt.Sprintf("Tokens    %s in / %s out (%s total)",
				pricing.FormatTokens(session.TokensInput),
				pricing.FormatTokens(session.TokensOutput),
				pricing.FormatTokens(session.TokensTotal),
			),
			fmt.Sprintf("Cost      %s",
				styles.GetCostStyle(session.Cost, threshold).Render(pricing.FormatCost(session.Cost)),
			),
		)
	}

	return styles.SessionCardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderEstimate draws the local estimate in its own visually distinct frame.
// These figures come from counting the transcript on this machine and are
// never mixed into the reported numbers above. The card is omitted entirely
// until the transcript has produced a non-zero estimate.
func (m *Model) renderEstimate() string {
	est := m.state.GetEstimate()
	if est == nil || est.Tokens == 0 {
		return ""
	}

	cardWidth := max(m.width-6, 40)

	age := ""
	if !est.UpdatedAt.IsZero() {
		age = styles.HelpStyle.Render(" · " + formatAge(time.Since(est.UpdatedAt)))
	}

	rows := []string{
		styles.CardTitleStyle.Render("Live Estimate ") +
			styles.EstimateLabelStyle.Render("(local, approximate)"),
		fmt.Sprintf("Model     %s", est.Model),
		fmt.Sprintf("Tokens    %s %s",
			pricing.FormatTokens(int64(est.Tokens)),
			styles.EstimateLabelStyle.Render("~estimated")+age,
		),
		fmt.Sprintf("Cost      %s %s",
			pricing.FormatCost(pricing.EstimateCost(int64(est.Tokens))),
			styles.EstimateLabelStyle.Render("~at blended rate"),
		),
	}

	if breakdown := renderModelBreakdown(est.Summary, cardWidth); breakdown != "" {
		rows = append(rows, "", breakdown)
	}

	return styles.EstimateCardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderModelBreakdown shows the estimate split per model: the token share
// as a bar chart and, per model, the prompt/completion split with its cost
// at the table rate.
func renderModelBreakdown(summary models.TokenUsageSummary, cardWidth int) string {
	if len(summary.Models) == 0 {
		return ""
	}

	values := make([]float64, len(summary.Models))
	labels := make([]string, len(summary.Models))
	for i, mu := range summary.Models {
		values[i] = float64(mu.TotalTokens)
		labels[i] = mu.Model
	}

	rows := []string{
		styles.CardTitleStyle.Render("By Model"),
		components.RenderBarChart(values, labels, min(cardWidth-4, 60)),
	}

	for _, mu := range summary.Models {
		cost := pricing.Cost(mu.Model, mu.PromptTokens, mu.CompletionTokens)
		rows = append(rows, fmt.Sprintf("%-16s %s in / %s out · %s",
			mu.Model,
			pricing.FormatTokens(mu.PromptTokens),
			pricing.FormatTokens(mu.CompletionTokens),
			pricing.FormatCost(cost),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
