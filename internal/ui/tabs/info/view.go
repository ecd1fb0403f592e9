package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokendeck/tokendeck/internal/pricing"
	"github.com/tokendeck/tokendeck/internal/ui/styles"
)

// Version info - can be set at build time
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

func init() {
	if BuildDate == "dev" {
		BuildDate = time.Now().Format("2006-01-02") + "-dev"
	}
}

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderPricingCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderConfigCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("Usage API", m.config.UsageAPIBaseURL))
		rows = append(rows, m.renderConfigRow("Settings DB", m.config.SettingsPath))
		rows = append(rows, m.renderConfigRow("Transcript", m.config.TranscriptPath))
		rows = append(rows, m.renderConfigRow("Log File", m.config.LogPath))
		rows = append(rows, m.renderConfigRow("Default Model", m.config.DefaultModel))
		rows = append(rows, m.renderConfigRow("Poll Interval", m.config.PollInterval.String()))
		rows = append(rows, m.renderConfigRow("History Limit", fmt.Sprintf("%d", m.config.HistoryLimit)))
		if m.config.CostAlertThreshold > 0 {
			rows = append(rows, m.renderConfigRow("Cost Alert", pricing.FormatCost(m.config.CostAlertThreshold)))
		}
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderPricingCard shows the rate table, per 1M tokens.
func (m *Model) renderPricingCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Pricing (USD per 1M tokens)"))
	rows = append(rows, "")

	header := fmt.Sprintf("%-18s %10s %10s", "Model", "Input", "Output")
	rows = append(rows, styles.TableHeaderStyle.Render(header))

	for _, name := range pricing.Models() {
		rate := pricing.RateFor(name)
		rows = append(rows, fmt.Sprintf("%-18s %10.3f %10.3f", name, rate.Input, rate.Output))
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render(
		fmt.Sprintf("Unlisted models use the default rate; estimates use a %.3f blend.", pricing.EstimateRate())))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderAboutCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Tokendeck"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", Version))
	rows = append(rows, m.renderConfigRow("Build Date", BuildDate))
	rows = append(rows, m.renderConfigRow("Git Commit", GitCommit))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) cardWidth() int {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}
	return cardWidth
}
