package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/unified"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func formatTime(t *time.Time, allDay bool) string {
	if t == nil {
		return ""
	}
	if allDay {
		return t.Format(dateLayout)
	}
	return t.Local().Format(dateTimeLayout)
}

func checkbox(t model.Task) string {
	if t.IsCompleted() {
		return "[x]"
	}
	return "[ ]"
}

// TaskLine renders a task as one list item.
func TaskLine(t model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s **%s** (`%s`)", checkbox(t), t.Title, t.ID)
	if t.Priority != ticktick.PriorityNone {
		fmt.Fprintf(&b, " priority: %s", t.Priority)
	}
	if due := formatTime(t.DueDate, t.IsAllDay); due != "" {
		fmt.Fprintf(&b, " due: %s", due)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, " #%s", strings.Join(t.Tags, " #"))
	}
	return b.String()
}

// Task renders one task with all its details.
func Task(t model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s %s\n\n", checkbox(t), t.Title)
	fmt.Fprintf(&b, "- **ID**: `%s`\n", t.ID)
	fmt.Fprintf(&b, "- **Project**: `%s`\n", t.ProjectID)
	fmt.Fprintf(&b, "- **Status**: %s\n", t.Status)
	fmt.Fprintf(&b, "- **Priority**: %s\n", t.Priority)
	if s := formatTime(t.StartDate, t.IsAllDay); s != "" {
		fmt.Fprintf(&b, "- **Start**: %s\n", s)
	}
	if s := formatTime(t.DueDate, t.IsAllDay); s != "" {
		fmt.Fprintf(&b, "- **Due**: %s\n", s)
	}
	if s := formatTime(t.CompletedTime, false); s != "" {
		fmt.Fprintf(&b, "- **Completed**: %s\n", s)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags**: %s\n", strings.Join(t.Tags, ", "))
	}
	if t.ParentID != "" {
		fmt.Fprintf(&b, "- **Parent**: `%s`\n", t.ParentID)
	}
	if len(t.ChildIDs) > 0 {
		fmt.Fprintf(&b, "- **Subtasks**: %d\n", len(t.ChildIDs))
	}
	if t.RepeatFlag != "" {
		fmt.Fprintf(&b, "- **Repeats**: %s\n", t.RepeatFlag)
	}
	if t.Content != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Content)
	}
	if len(t.Items) > 0 {
		b.WriteString("\n### Checklist\n\n")
		for _, it := range t.Items {
			mark := "[ ]"
			if it.Status == ticktick.StatusCompleted {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s\n", mark, it.Title)
		}
	}
	return b.String()
}

// Tasks renders a titled task list.
func Tasks(title string, tasks []model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%d)\n\n", title, len(tasks))
	if len(tasks) == 0 {
		b.WriteString("No tasks found.\n")
		return b.String()
	}
	for _, t := range tasks {
		b.WriteString(TaskLine(t))
		b.WriteByte('\n')
	}
	return b.String()
}

func projectLine(p model.Project) string {
	line := fmt.Sprintf("- **%s** (`%s`)", p.Name, p.ID)
	if p.Kind == ticktick.KindNote {
		line += " notes"
	}
	if p.ViewMode != "" && p.ViewMode != ticktick.ViewList {
		line += " view: " + string(p.ViewMode)
	}
	if p.Closed {
		line += " archived"
	}
	return line
}

// Projects renders projects grouped under their folder.
func Projects(projects []model.Project, groups []model.ProjectGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Projects (%d)\n\n", len(projects))
	if len(projects) == 0 {
		b.WriteString("No projects found.\n")
		return b.String()
	}

	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	byGroup := map[string][]model.Project{}
	var order []string
	for _, p := range projects {
		if _, seen := byGroup[p.GroupID]; !seen {
			order = append(order, p.GroupID)
		}
		byGroup[p.GroupID] = append(byGroup[p.GroupID], p)
	}
	for _, gid := range order {
		if gid != "" {
			name := names[gid]
			if name == "" {
				name = gid
			}
			fmt.Fprintf(&b, "\n## %s\n\n", name)
		}
		for _, p := range byGroup[gid] {
			b.WriteString(projectLine(p))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Project renders one project.
func Project(p model.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", p.Name)
	fmt.Fprintf(&b, "- **ID**: `%s`\n", p.ID)
	fmt.Fprintf(&b, "- **Kind**: %s\n", p.Kind)
	fmt.Fprintf(&b, "- **View**: %s\n", p.ViewMode)
	if p.Color != "" {
		fmt.Fprintf(&b, "- **Color**: %s\n", p.Color)
	}
	if p.GroupID != "" {
		fmt.Fprintf(&b, "- **Folder**: `%s`\n", p.GroupID)
	}
	return b.String()
}

// ProjectData renders a project followed by its open tasks.
func ProjectData(d model.ProjectData) string {
	var b strings.Builder
	b.WriteString(Project(d.Project))
	if len(d.Columns) > 0 {
		cols := make([]string, 0, len(d.Columns))
		for _, c := range d.Columns {
			cols = append(cols, c.Name)
		}
		fmt.Fprintf(&b, "- **Columns**: %s\n", strings.Join(cols, ", "))
	}
	fmt.Fprintf(&b, "\n### Tasks (%d)\n\n", len(d.Tasks))
	for _, t := range d.Tasks {
		b.WriteString(TaskLine(t))
		b.WriteByte('\n')
	}
	return b.String()
}

// Folders renders project folders.
func Folders(groups []model.ProjectGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Folders (%d)\n\n", len(groups))
	if len(groups) == 0 {
		b.WriteString("No folders found.\n")
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "- **%s** (`%s`)\n", g.Name, g.ID)
	}
	return b.String()
}

// Tags renders tags, nesting children under their parent.
func Tags(tags []model.Tag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tags (%d)\n\n", len(tags))
	if len(tags) == 0 {
		b.WriteString("No tags found.\n")
		return b.String()
	}
	children := map[string][]model.Tag{}
	known := map[string]bool{}
	for _, t := range tags {
		children[t.Parent] = append(children[t.Parent], t)
		known[t.Name] = true
	}
	visited := map[string]bool{}
	var walk func(list []model.Tag, depth int)
	walk = func(list []model.Tag, depth int) {
		for _, t := range list {
			if visited[t.Name] {
				continue
			}
			visited[t.Name] = true
			fmt.Fprintf(&b, "%s- **%s** (`%s`)", strings.Repeat("  ", depth), t.Label, t.Name)
			if t.Color != "" {
				fmt.Fprintf(&b, " %s", t.Color)
			}
			b.WriteByte('\n')
			walk(children[t.Name], depth+1)
		}
	}
	var roots []model.Tag
	for _, t := range tags {
		// A tag whose parent is gone is shown at the top level.
		if t.Parent == "" || !known[t.Parent] {
			roots = append(roots, t)
		}
	}
	walk(roots, 0)
	return b.String()
}

// Tag renders one tag.
func Tag(t model.Tag) string {
	s := fmt.Sprintf("Tag **%s** (`%s`)", t.Label, t.Name)
	if t.Color != "" {
		s += " color " + t.Color
	}
	if t.Parent != "" {
		s += " under `" + t.Parent + "`"
	}
	return s
}

// Merge renders a tag merge summary.
func Merge(r unified.MergeResult) string {
	return fmt.Sprintf("Merged tag `%s` into `%s`; %d task(s) updated.", r.Source, r.Target, r.TasksUpdated)
}

// User renders the account profile.
func User(u model.User) string {
	var b strings.Builder
	b.WriteString("# Profile\n\n")
	fmt.Fprintf(&b, "- **Username**: %s\n", u.Username)
	if u.DisplayName != "" {
		fmt.Fprintf(&b, "- **Display name**: %s\n", u.DisplayName)
	}
	if u.Name != "" {
		fmt.Fprintf(&b, "- **Name**: %s\n", u.Name)
	}
	if u.Email != "" {
		fmt.Fprintf(&b, "- **Email**: %s\n", u.Email)
	}
	if u.Locale != "" {
		fmt.Fprintf(&b, "- **Locale**: %s\n", u.Locale)
	}
	return b.String()
}

// Status renders the subscription status.
func Status(s model.UserStatus) string {
	var b strings.Builder
	b.WriteString("# Account status\n\n")
	fmt.Fprintf(&b, "- **User ID**: `%s`\n", s.UserID)
	fmt.Fprintf(&b, "- **Username**: %s\n", s.Username)
	fmt.Fprintf(&b, "- **Inbox**: `%s`\n", s.InboxID)
	plan := "free"
	if s.IsPro {
		plan = "pro"
		if s.ProEndDate != "" {
			plan += " until " + s.ProEndDate
		}
	}
	fmt.Fprintf(&b, "- **Plan**: %s\n", plan)
	return b.String()
}

// Statistics renders productivity statistics.
func Statistics(s model.UserStatistics) string {
	var b strings.Builder
	b.WriteString("# Statistics\n\n")
	fmt.Fprintf(&b, "- **Level**: %d (score %d)\n", s.Level, s.Score)
	fmt.Fprintf(&b, "- **Completed today**: %d\n", s.TodayCompleted)
	fmt.Fprintf(&b, "- **Completed yesterday**: %d\n", s.YesterdayCompleted)
	fmt.Fprintf(&b, "- **Completed in total**: %d\n", s.TotalCompleted)
	fmt.Fprintf(&b, "- **Pomodoros today**: %d\n", s.TodayPomoCount)
	fmt.Fprintf(&b, "- **Pomodoros in total**: %d (%.1f h)\n", s.TotalPomoCount, s.TotalPomoDurationHours())
	return b.String()
}

func hours(seconds int64) string {
	return (time.Duration(seconds) * time.Second).Round(time.Minute).String()
}

// FocusHeatmap renders focus time per day.
func FocusHeatmap(days []model.FocusDay) string {
	var b strings.Builder
	var total int64
	for _, d := range days {
		total += d.Duration
	}
	fmt.Fprintf(&b, "# Focus time (%s over %d day(s))\n\n", hours(total), len(days))
	for _, d := range days {
		fmt.Fprintf(&b, "- %s: %s\n", d.Day, hours(d.Duration))
	}
	return b.String()
}

// FocusByTag renders focus time per tag, largest first.
func FocusByTag(byTag map[string]int64) string {
	type entry struct {
		tag     string
		seconds int64
	}
	entries := make([]entry, 0, len(byTag))
	for tag, secs := range byTag {
		entries = append(entries, entry{tag, secs})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].seconds != entries[j].seconds {
			return entries[i].seconds > entries[j].seconds
		}
		return entries[i].tag < entries[j].tag
	})

	var b strings.Builder
	b.WriteString("# Focus time by tag\n\n")
	if len(entries) == 0 {
		b.WriteString("No focus time recorded.\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s**: %s\n", e.tag, hours(e.seconds))
	}
	return b.String()
}

// SyncSummary counts the top-level collections of a full sync.
type SyncSummary struct {
	InboxID  string `json:"inbox_id"`
	Projects int    `json:"projects"`
	Folders  int    `json:"folders"`
	Tasks    int    `json:"tasks"`
	Tags     int    `json:"tags"`
}

// SummarizeSync builds a SyncSummary from a raw sync mapping.
func SummarizeSync(raw map[string]any) SyncSummary {
	count := func(v any) int {
		items, _ := v.([]any)
		return len(items)
	}
	s := SyncSummary{
		Projects: count(raw["projectProfiles"]),
		Folders:  count(raw["projectGroups"]),
		Tags:     count(raw["tags"]),
	}
	s.InboxID, _ = raw["inboxId"].(string)
	if bean, ok := raw["syncTaskBean"].(map[string]any); ok {
		s.Tasks = count(bean["update"])
	}
	return s
}

// Sync renders a sync summary.
func Sync(s SyncSummary) string {
	var b strings.Builder
	b.WriteString("# Sync\n\n")
	fmt.Fprintf(&b, "- **Inbox**: `%s`\n", s.InboxID)
	fmt.Fprintf(&b, "- **Projects**: %d\n", s.Projects)
	fmt.Fprintf(&b, "- **Folders**: %d\n", s.Folders)
	fmt.Fprintf(&b, "- **Active tasks**: %d\n", s.Tasks)
	fmt.Fprintf(&b, "- **Tags**: %d\n", s.Tags)
	return b.String()
}
