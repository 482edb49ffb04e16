package model

import (
	"slices"
	"time"

	"github.com/teemow/tickfewer/internal/ticktick"
	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// Task is the canonical task.
type Task struct {
	ID            string              `json:"id"`
	ProjectID     string              `json:"project_id"`
	Title         string              `json:"title"`
	Content       string              `json:"content,omitempty"`
	Desc          string              `json:"desc,omitempty"`
	StartDate     *time.Time          `json:"start_date,omitempty"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	TimeZone      string              `json:"time_zone,omitempty"`
	IsAllDay      bool                `json:"is_all_day,omitempty"`
	Status        ticktick.TaskStatus `json:"status"`
	Priority      ticktick.Priority   `json:"priority"`
	Tags          []string            `json:"tags,omitempty"`
	ParentID      string              `json:"parent_id,omitempty"`
	ChildIDs      []string            `json:"child_ids,omitempty"`
	Items         []ChecklistItem     `json:"items,omitempty"`
	Reminders     []string            `json:"reminders,omitempty"`
	RepeatFlag    string              `json:"repeat_flag,omitempty"`
	CompletedTime *time.Time          `json:"completed_time,omitempty"`
	CreatedTime   *time.Time          `json:"created_time,omitempty"`
	ModifiedTime  *time.Time          `json:"modified_time,omitempty"`
	SortOrder     int64               `json:"sort_order,omitempty"`
	Etag          string              `json:"etag,omitempty"`
}

// ChecklistItem is a checklist line of a task.
type ChecklistItem struct {
	ID            string              `json:"id,omitempty"`
	Title         string              `json:"title"`
	Status        ticktick.TaskStatus `json:"status"`
	SortOrder     int64               `json:"sort_order,omitempty"`
	StartDate     *time.Time          `json:"start_date,omitempty"`
	CompletedTime *time.Time          `json:"completed_time,omitempty"`
	IsAllDay      bool                `json:"is_all_day,omitempty"`
	TimeZone      string              `json:"time_zone,omitempty"`
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool {
	return t.Status == ticktick.StatusCompleted
}

// IsSubtask reports whether the task has a parent.
func (t Task) IsSubtask() bool {
	return t.ParentID != ""
}

// HasTag reports whether the task carries the named tag.
func (t Task) HasTag(name string) bool {
	return slices.Contains(t.Tags, ticktick.TagName(name))
}

// IsOverdue reports whether an open task's due date lies before now.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted() && t.DueDate != nil && t.DueDate.Before(now)
}

// IsDueOn reports whether the task is due on day's calendar date in day's location.
func (t Task) IsDueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.In(day.Location())
	y1, m1, d1 := due.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func normalizePriority(p int) ticktick.Priority {
	if pr := ticktick.Priority(p); pr.Valid() {
		return pr
	}
	return ticktick.PriorityNone
}

// TaskFromV1 converts an open API task.
func TaskFromV1(in v1.Task) Task {
	items := make([]ChecklistItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ChecklistItem{
			ID:            it.ID,
			Title:         it.Title,
			Status:        ticktick.TaskStatus(it.Status),
			SortOrder:     it.SortOrder,
			StartDate:     ParseDate(it.StartDate),
			CompletedTime: ParseDate(it.CompletedTime),
			IsAllDay:      it.IsAllDay,
			TimeZone:      it.TimeZone,
		})
	}
	return Task{
		ID:            in.ID,
		ProjectID:     in.ProjectID,
		Title:         in.Title,
		Content:       in.Content,
		Desc:          in.Desc,
		StartDate:     ParseDate(in.StartDate),
		DueDate:       ParseDate(in.DueDate),
		TimeZone:      in.TimeZone,
		IsAllDay:      in.IsAllDay,
		Status:        ticktick.TaskStatus(in.Status),
		Priority:      normalizePriority(in.Priority),
		Items:         emptyToNil(items),
		Reminders:     in.Reminders,
		RepeatFlag:    in.RepeatFlag,
		CompletedTime: ParseDate(in.CompletedTime),
		SortOrder:     in.SortOrder,
	}
}

// TaskFromV2 converts a private API task.
func TaskFromV2(in v2.Task) Task {
	items := make([]ChecklistItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ChecklistItem{
			ID:            it.ID,
			Title:         it.Title,
			Status:        ticktick.TaskStatus(it.Status),
			SortOrder:     it.SortOrder,
			StartDate:     ParseDate(it.StartDate),
			CompletedTime: ParseDate(it.CompletedTime),
			IsAllDay:      it.IsAllDay,
			TimeZone:      it.TimeZone,
		})
	}
	reminders := make([]string, 0, len(in.Reminders))
	for _, r := range in.Reminders {
		reminders = append(reminders, r.Trigger)
	}
	return Task{
		ID:            in.ID,
		ProjectID:     in.ProjectID,
		Title:         in.Title,
		Content:       in.Content,
		Desc:          in.Desc,
		StartDate:     ParseDate(in.StartDate),
		DueDate:       ParseDate(in.DueDate),
		TimeZone:      in.TimeZone,
		IsAllDay:      in.IsAllDay,
		Status:        ticktick.TaskStatus(in.Status),
		Priority:      normalizePriority(in.Priority),
		Tags:          ticktick.NormalizeTags(in.Tags),
		ParentID:      in.ParentID,
		ChildIDs:      in.ChildIDs,
		Items:         emptyToNil(items),
		Reminders:     emptyToNil(reminders),
		RepeatFlag:    in.RepeatFlag,
		CompletedTime: ParseDate(in.CompletedTime),
		CreatedTime:   ParseDate(in.CreatedTime),
		ModifiedTime:  ParseDate(in.ModifiedTime),
		SortOrder:     in.SortOrder,
		Etag:          in.Etag,
	}
}

// ToV1 converts to the open API shape. Tags and parent links have no
// representation there and are dropped.
func (t Task) ToV1() v1.Task {
	items := make([]v1.ChecklistItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, v1.ChecklistItem{
			ID:            it.ID,
			Title:         it.Title,
			Status:        int(it.Status),
			SortOrder:     it.SortOrder,
			StartDate:     formatV1(it.StartDate),
			CompletedTime: formatV1(it.CompletedTime),
			IsAllDay:      it.IsAllDay,
			TimeZone:      it.TimeZone,
		})
	}
	return v1.Task{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Title:         t.Title,
		Content:       t.Content,
		Desc:          t.Desc,
		IsAllDay:      t.IsAllDay,
		StartDate:     formatV1(t.StartDate),
		DueDate:       formatV1(t.DueDate),
		TimeZone:      t.TimeZone,
		Reminders:     t.Reminders,
		RepeatFlag:    t.RepeatFlag,
		Priority:      int(t.Priority),
		Status:        int(t.Status),
		CompletedTime: formatV1(t.CompletedTime),
		SortOrder:     t.SortOrder,
		Items:         emptyToNil(items),
	}
}

// ToV2 converts to the private API shape.
func (t Task) ToV2() v2.Task {
	items := make([]v2.ChecklistItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, v2.ChecklistItem{
			ID:            it.ID,
			Title:         it.Title,
			Status:        int(it.Status),
			SortOrder:     it.SortOrder,
			StartDate:     formatV2(it.StartDate),
			CompletedTime: formatV2(it.CompletedTime),
			IsAllDay:      it.IsAllDay,
			TimeZone:      it.TimeZone,
		})
	}
	reminders := make([]v2.Reminder, 0, len(t.Reminders))
	for _, trigger := range t.Reminders {
		reminders = append(reminders, v2.Reminder{Trigger: trigger})
	}
	return v2.Task{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Title:         t.Title,
		Content:       t.Content,
		Desc:          t.Desc,
		IsAllDay:      t.IsAllDay,
		StartDate:     formatV2(t.StartDate),
		DueDate:       formatV2(t.DueDate),
		TimeZone:      t.TimeZone,
		Reminders:     emptyToNil(reminders),
		RepeatFlag:    t.RepeatFlag,
		Priority:      int(t.Priority),
		Status:        int(t.Status),
		Tags:          t.Tags,
		ParentID:      t.ParentID,
		ChildIDs:      t.ChildIDs,
		Items:         emptyToNil(items),
		CompletedTime: formatV2(t.CompletedTime),
		CreatedTime:   formatV2(t.CreatedTime),
		ModifiedTime:  formatV2(t.ModifiedTime),
		SortOrder:     t.SortOrder,
		Etag:          t.Etag,
	}
}

func emptyToNil[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
