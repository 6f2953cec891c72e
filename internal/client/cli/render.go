package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dateStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const headerLayout = "Monday, January 2 2006"

func statusStyle(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusPublished:
		return successStyle
	case models.StatusFailed:
		return errorStyle
	default:
		return warnStyle
	}
}

// dayHeader turns a bucket key into a readable heading. Unknown keys are
// printed as they are.
func dayHeader(key string) string {
	t, err := time.Parse(schedule.DateKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format(headerLayout)
}

func targetList(t models.Targets) string {
	var names []string
	if t.YouTube {
		names = append(names, string(models.PlatformYouTube))
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

// renderSchedule prints g as one section per day, times shown in loc.
func renderSchedule(w io.Writer, title string, g schedule.GroupedSchedule, loc *time.Location) {
	fmt.Fprintln(w, titleStyle.Render(title))

	if g.Empty() {
		fmt.Fprintln(w, mutedStyle.Render("Nothing scheduled."))
		return
	}

	for _, key := range g.Keys {
		fmt.Fprintln(w, dateStyle.Render(dayHeader(key)))
		for _, it := range g.Buckets[key] {
			renderItem(w, it, loc)
		}
	}
}

func renderItem(w io.Writer, it models.ScheduledItem, loc *time.Location) {
	badge := statusStyle(it.Status).Render(fmt.Sprintf("[%s]", it.Status))
	fmt.Fprintf(w, "  %s  %s %s\n", it.ScheduledAt.In(loc).Format("15:04"), badge, it.Title)
	fmt.Fprintf(w, "         %s\n", mutedStyle.Render(fmt.Sprintf("id %s · %s", it.ID, targetList(it.Targets))))

	if it.PlatformVideoID != "" {
		fmt.Fprintf(w, "         %s\n", successStyle.Render("video "+it.PlatformVideoID))
	}
	if it.PublishError != "" {
		fmt.Fprintf(w, "         %s\n", errorStyle.Render("error: "+it.PublishError))
	}
}

func renderWorkspaces(w io.Writer, selected *models.Workspace, all []models.Workspace) {
	fmt.Fprintln(w, titleStyle.Render("Workspaces"))
	if len(all) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No workspaces yet."))
		return
	}
	for _, ws := range all {
		marker := " "
		if selected != nil && selected.ID == ws.ID {
			marker = successStyle.Render("*")
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, ws.Name, mutedStyle.Render(ws.ID))
	}
}

func connectionLabel(connected bool) string {
	if connected {
		return successStyle.Render("connected")
	}
	return warnStyle.Render("not connected")
}
