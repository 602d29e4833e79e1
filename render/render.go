// ABOUTME: Terminal rendering of distributed day records
// ABOUTME: Lipgloss-styled view plus a plain-text variant for report history
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/punchcard/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	dayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true)
)

// Styled renders the day records for the terminal.
func Styled(days []models.DayActivity, summary models.DistributionSummary) string {
	return render(days, summary, true)
}

// Plain renders the same content without ANSI styling, suitable for the
// report history and for piping.
func Plain(days []models.DayActivity, summary models.DistributionSummary) string {
	return render(days, summary, false)
}

func render(days []models.DayActivity, summary models.DistributionSummary, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if styled {
			return s.Render(text)
		}
		return text
	}

	var b strings.Builder

	title := "Timesheet"
	if len(days) > 0 {
		title = fmt.Sprintf("Timesheet %s to %s", days[0].Day, days[len(days)-1].Day)
	}
	b.WriteString(style(titleStyle, title))
	b.WriteString("\n\n")

	for _, day := range days {
		b.WriteString(style(dayStyle, day.Day))
		b.WriteString("\n")

		if !day.HasActivity() {
			b.WriteString(style(emptyStyle, "  no recorded activity"))
			b.WriteString("\n\n")
			continue
		}

		if len(day.Events) > 0 {
			b.WriteString(style(sectionStyle, fmt.Sprintf("  Meetings (%d)", len(day.Events))))
			b.WriteString("\n")
			for _, ev := range day.Events {
				b.WriteString(fmt.Sprintf("    %s %s (%d attendees)\n",
					ev.Start.Format("15:04"), ev.Title, ev.AttendeeCount))
			}
		}

		if len(day.Activity.Commits) > 0 {
			b.WriteString(style(sectionStyle, fmt.Sprintf("  Commits (%d)", day.Activity.WorkCommits())))
			b.WriteString("\n")
			for _, c := range day.Activity.Commits {
				line := fmt.Sprintf("    [%s] %s", c.Project, c.Message)
				if c.Marker {
					line = "    " + c.Message
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}

		if len(day.Activity.Reviews) > 0 {
			b.WriteString(style(sectionStyle, fmt.Sprintf("  Reviews (%d)", len(day.Activity.Reviews))))
			b.WriteString("\n")
			for _, r := range day.Activity.Reviews {
				id := ""
				if r.ID != "" {
					id = " " + r.ID
				}
				b.WriteString(fmt.Sprintf("    [%s] %s%s: %s\n", r.Project, r.Action, id, r.Title))
			}
		}

		if len(day.Activity.Issues) > 0 {
			b.WriteString(style(sectionStyle, fmt.Sprintf("  Issues (%d)", len(day.Activity.Issues))))
			b.WriteString("\n")
			for _, is := range day.Activity.Issues {
				id := ""
				if is.ID != "" {
					id = " " + is.ID
				}
				b.WriteString(fmt.Sprintf("    [%s] %s%s: %s\n", is.Project, is.Action, id, is.Title))
			}
		}

		if day.Description != "" {
			b.WriteString(fmt.Sprintf("  %s\n", day.Description))
		}

		b.WriteString("\n")
	}

	if summary.Message != "" {
		b.WriteString(style(summaryStyle, summary.Message))
		b.WriteString("\n")
	}

	return b.String()
}
