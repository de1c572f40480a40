package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

const dateLayout = "2006-01-02"

// RenderPlan formats a plan as a summary, a task table, milestones, risks,
// and recommendations.
func RenderPlan(p *planner.Plan, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Plan " + p.PlanID))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render(p.Goal))
	b.WriteString("\n\n")

	budget := "n/a"
	if p.EstimatedBudget != nil {
		budget = fmt.Sprintf("$%.2f", *p.EstimatedBudget)
	}
	summary := [][2]string{
		{"Category", string(p.Category)},
		{"Total hours", fmt.Sprintf("%.1f", p.TotalEstimatedHours)},
		{"Critical path", fmt.Sprintf("%d days", p.CriticalPathDuration)},
		{"Confidence", percent(p.ConfidenceScore)},
		{"Success probability", percent(p.SuccessProbability)},
		{"Estimated budget", budget},
	}
	for _, kv := range summary {
		b.WriteString(s.Label.Render(fmt.Sprintf("%-20s", kv[0])))
		b.WriteString(s.Value.Render(kv[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.Title.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(taskTable(p.Tasks, s))
	b.WriteString("\n\n")

	if len(p.Milestones) > 0 {
		b.WriteString(s.Title.Render("Milestones"))
		b.WriteString("\n")
		for _, m := range p.Milestones {
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
				s.Highlighted.Render(fmt.Sprintf("%3d%%", m.Percentage)),
				m.Date.Format(dateLayout),
				m.KeyTask))
		}
		b.WriteString("\n")
	}

	b.WriteString(s.Title.Render("Risk"))
	b.WriteString("\n")
	ra := p.RiskAssessment
	for _, kv := range []struct {
		name  string
		level domain.RiskLevel
	}{
		{"Timeline", ra.TimelineRisk},
		{"Resources", ra.ResourceRisk},
		{"Complexity", ra.ComplexityRisk},
		{"Budget", ra.BudgetRisk},
		{"Technical", ra.TechnicalRisk},
		{"Stakeholders", ra.StakeholderRisk},
	} {
		b.WriteString("  ")
		b.WriteString(s.Label.Render(fmt.Sprintf("%-14s", kv.name)))
		b.WriteString(riskStyle(kv.level, s).Render(string(kv.level)))
		b.WriteString("\n")
	}
	for _, m := range ra.RiskMitigationStrategies {
		b.WriteString(s.Muted.Render("  - " + m))
		b.WriteString("\n")
	}

	if len(p.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Title.Render("Recommendations"))
		b.WriteString("\n")
		for _, r := range p.Recommendations {
			b.WriteString("  - " + r + "\n")
		}
	}

	return b.String()
}

func taskTable(tasks []planner.Task, s Styles) string {
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			t.Title,
			string(t.Priority),
			fmt.Sprintf("%.1f", t.EstimatedHours),
			date(t.StartDate),
			date(t.EndDate),
			percent(t.ConfidenceScore),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		Headers("#", "Task", "Priority", "Hours", "Start", "End", "Confidence").
		Rows(rows...).
		String()
}

// RenderDomains lists the planning domains in name order.
func RenderDomains(c *catalog.Catalog, s Styles) string {
	rows := make([][]string, 0, len(c.Domains))
	for _, key := range c.DomainNames() {
		d := c.Domains[key]
		rows = append(rows, []string{
			key,
			d.Description,
			d.TypicalDuration,
			d.Complexity,
			fmt.Sprintf("$%.0f/h", c.HourlyRate(key)),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		Headers("Domain", "Description", "Typical duration", "Complexity", "Rate").
		Rows(rows...).
		String()
}

// RenderTemplates lists each category template with its steps and the
// domain phase tables.
func RenderTemplates(c *catalog.Catalog, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render(fmt.Sprintf("Template catalog %s", c.Version)))
	b.WriteString("\n\n")

	for _, t := range c.Templates {
		keywords := "fallback"
		if !t.IsFallback() {
			keywords = strings.Join(t.Keywords, ", ")
		}
		b.WriteString(s.Value.Render(t.Name))
		b.WriteString(s.Muted.Render(fmt.Sprintf("  [%s] %.0fh  (%s)", t.Category, t.BaseHours, keywords)))
		b.WriteString("\n")
		for _, step := range t.Steps {
			line := fmt.Sprintf("  %-44s %-8s %4.0f%%", step.Title, step.Priority, step.HourShare*100)
			if len(step.DependsOn) > 0 {
				line += s.Muted.Render("  after " + strings.Join(step.DependsOn, ", "))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	names := make([]string, 0, len(c.DomainTemplates))
	for name := range c.DomainTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dt := c.DomainTemplates[name]
		b.WriteString(s.Value.Render(name))
		b.WriteString(s.Muted.Render(": " + strings.Join(dt.Phases, " > ")))
		b.WriteString("\n")
	}

	return b.String()
}

func riskStyle(level domain.RiskLevel, s Styles) lipgloss.Style {
	switch level {
	case domain.RiskHigh:
		return s.Error
	case domain.RiskMedium:
		return s.Warning
	default:
		return s.Success
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}
