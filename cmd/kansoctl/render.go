package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB300"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E53935"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
)

// calendarGlyphs index by intensity level.
var calendarGlyphs = []string{"·", "░", "▒", "▓", "█"}

func renderOverview(w io.Writer, view services.OverviewView) {
	switch view.Status {
	case services.StatusError:
		fmt.Fprintln(w, errStyle.Render("✗ "+view.Warning))
		return
	case services.StatusPartial:
		fmt.Fprintln(w, warnStyle.Render("! partial data: "+view.Warning))
	}

	fmt.Fprintln(w, titleStyle.Render("Summary"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, card := range view.Summary {
		fmt.Fprintf(tw, "  %s\t%d\n", card.Label, card.Value)
	}
	_ = tw.Flush()

	renderHabits(w, "Habits", view.GoodHabits)
	renderHabits(w, "Avoiding", view.AvoidanceHabits)

	if len(view.Calendar) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Activity"))
		var b strings.Builder
		for _, cell := range view.Calendar {
			glyph := calendarGlyphs[cell.Level]
			if cell.HasRelapse {
				glyph = errStyle.Render("x")
			}
			b.WriteString(glyph)
		}
		fmt.Fprintf(w, "  %s %s\n", b.String(), mutedStyle.Render(view.Calendar[0].Date+" .. "+view.Calendar[len(view.Calendar)-1].Date))
	}

	if len(view.NewBadges) > 0 {
		fmt.Fprintln(w, titleStyle.Render("New badges"))
		for _, badge := range view.NewBadges {
			fmt.Fprintf(w, "  %s %s: %s\n", okStyle.Render("★"), badge.Name, badge.Description)
		}
	}
}

func renderHabits(w io.Writer, title string, rows []services.HabitRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		best := "-"
		if row.BestStreak != nil {
			best = fmt.Sprintf("%d", *row.BestStreak)
		}
		done := mutedStyle.Render("○")
		if row.CompletedToday {
			done = okStyle.Render("●")
		}
		fmt.Fprintf(tw, "  %s\t%s\tstreak %d\tbest %s\n", done, row.Name, row.CurrentStreak, best)
	}
	_ = tw.Flush()
}

func renderBadges(w io.Writer, catalog []domain.Badge, unlocked domain.UnlockedBadgeSet) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Badges %d/%d", len(unlocked), len(catalog))))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, badge := range catalog {
		mark := mutedStyle.Render("·")
		if unlocked.Has(badge.ID) {
			mark = okStyle.Render("★")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", mark, badge.Name, mutedStyle.Render(badge.Description))
	}
	_ = tw.Flush()
}
