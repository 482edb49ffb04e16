package v2

import (
	"encoding/json"
	"sort"
)

// Session is the result of a successful sign-on.
type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	InboxID  string `json:"inboxId"`
	Username string `json:"username"`
	Pro      bool   `json:"pro"`
}

// Task is a task as the private API encodes it.
type Task struct {
	ID            string          `json:"id,omitempty"`
	ProjectID     string          `json:"projectId,omitempty"`
	Title         string          `json:"title,omitempty"`
	Content       string          `json:"content,omitempty"`
	Desc          string          `json:"desc,omitempty"`
	IsAllDay      bool            `json:"isAllDay,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	DueDate       string          `json:"dueDate,omitempty"`
	TimeZone      string          `json:"timeZone,omitempty"`
	Reminders     []Reminder      `json:"reminders,omitempty"`
	RepeatFlag    string          `json:"repeatFlag,omitempty"`
	Priority      int             `json:"priority"`
	Status        int             `json:"status"`
	Tags          []string        `json:"tags,omitempty"`
	ParentID      string          `json:"parentId,omitempty"`
	ChildIDs      []string        `json:"childIds,omitempty"`
	Items         []ChecklistItem `json:"items,omitempty"`
	CompletedTime string          `json:"completedTime,omitempty"`
	CreatedTime   string          `json:"createdTime,omitempty"`
	ModifiedTime  string          `json:"modifiedTime,omitempty"`
	SortOrder     int64           `json:"sortOrder,omitempty"`
	Etag          string          `json:"etag,omitempty"`
	Kind          string          `json:"kind,omitempty"`
}

// Reminder is a single reminder trigger such as "TRIGGER:-PT30M".
type Reminder struct {
	ID      string `json:"id,omitempty"`
	Trigger string `json:"trigger"`
}

// ChecklistItem is a subtask line inside a task.
type ChecklistItem struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	CompletedTime string `json:"completedTime,omitempty"`
	IsAllDay      bool   `json:"isAllDay,omitempty"`
	SortOrder     int64  `json:"sortOrder,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	TimeZone      string `json:"timeZone,omitempty"`
}

// TaskRef identifies a task in a batch delete.
type TaskRef struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
}

// TaskMove moves a task between projects.
type TaskMove struct {
	TaskID        string `json:"taskId"`
	FromProjectID string `json:"fromProjectId"`
	ToProjectID   string `json:"toProjectId"`
}

// TaskParent sets or clears a task's parent.
type TaskParent struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
	ParentID  string `json:"parentId,omitempty"`
}

// Project is a task list.
type Project struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	SortOrder  int64  `json:"sortOrder,omitempty"`
	Closed     bool   `json:"closed,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	ViewMode   string `json:"viewMode,omitempty"`
	Permission string `json:"permission,omitempty"`
	Kind       string `json:"kind,omitempty"`
	InAll      bool   `json:"inAll,omitempty"`
	Etag       string `json:"etag,omitempty"`
}

// ProjectGroup is a folder of projects.
type ProjectGroup struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sortOrder,omitempty"`
	ShowAll   bool   `json:"showAll,omitempty"`
	Etag      string `json:"etag,omitempty"`
}

// Tag is a label attached to tasks. Name is the lowercase key.
type Tag struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Color     string `json:"color,omitempty"`
	Parent    string `json:"parent,omitempty"`
	SortOrder int64  `json:"sortOrder,omitempty"`
	SortType  string `json:"sortType,omitempty"`
	Etag      string `json:"etag,omitempty"`
}

// SyncTaskBean carries the active tasks of a sync.
type SyncTaskBean struct {
	Update []Task `json:"update"`
}

// SyncState is the account snapshot returned by a full sync. Raw keeps the
// undecoded document for callers that want every field.
type SyncState struct {
	InboxID         string         `json:"inboxId"`
	CheckPoint      int64          `json:"checkPoint"`
	ProjectProfiles []Project      `json:"projectProfiles"`
	ProjectGroups   []ProjectGroup `json:"projectGroups"`
	SyncTaskBean    SyncTaskBean   `json:"syncTaskBean"`
	Tags            []Tag          `json:"tags"`

	Raw map[string]any `json:"-"`
}

// BatchTaskRequest adds, updates and deletes tasks in one call.
type BatchTaskRequest struct {
	Add    []Task    `json:"add,omitempty"`
	Update []Task    `json:"update,omitempty"`
	Delete []TaskRef `json:"delete,omitempty"`
}

// BatchProjectRequest adds, updates and deletes projects in one call.
type BatchProjectRequest struct {
	Add    []Project `json:"add,omitempty"`
	Update []Project `json:"update,omitempty"`
	Delete []string  `json:"delete,omitempty"`
}

// BatchProjectGroupRequest adds, updates and deletes folders in one call.
type BatchProjectGroupRequest struct {
	Add    []ProjectGroup `json:"add,omitempty"`
	Update []ProjectGroup `json:"update,omitempty"`
	Delete []string       `json:"delete,omitempty"`
}

// BatchTagRequest adds and updates tags in one call.
type BatchTagRequest struct {
	Add    []Tag `json:"add,omitempty"`
	Update []Tag `json:"update,omitempty"`
}

// BatchResponse acknowledges a batch write.
type BatchResponse struct {
	ID2Etag  map[string]string `json:"id2etag"`
	ID2Error map[string]string `json:"id2error"`
}

// FirstID returns the lexically first acknowledged id, or "" when the
// acknowledgment carries none.
func (r *BatchResponse) FirstID() string {
	if r == nil || len(r.ID2Etag) == 0 {
		return ""
	}
	ids := make([]string, 0, len(r.ID2Etag))
	for id := range r.ID2Etag {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0]
}

// TagRename renames a tag, keeping its tasks.
type TagRename struct {
	Name    string `json:"name"`
	NewName string `json:"newName"`
}

// UserProfile is the account profile.
type UserProfile struct {
	Username      string `json:"username"`
	DisplayName   string `json:"displayName,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Locale        string `json:"locale,omitempty"`
	VerifiedEmail bool   `json:"verifiedEmail,omitempty"`
}

// UserStatus describes the subscription of the account.
type UserStatus struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	InboxID    string `json:"inboxId"`
	Pro        bool   `json:"pro"`
	ProEndDate string `json:"proEndDate,omitempty"`
	TeamUser   bool   `json:"teamUser,omitempty"`
}

// UserStatistics is the productivity summary of the account. Durations
// are in seconds.
type UserStatistics struct {
	Score              int64 `json:"score"`
	Level              int64 `json:"level"`
	TodayCompleted     int64 `json:"todayCompleted"`
	YesterdayCompleted int64 `json:"yesterdayCompleted"`
	TotalCompleted     int64 `json:"totalCompleted"`
	TodayPomoCount     int64 `json:"todayPomoCount"`
	TotalPomoCount     int64 `json:"totalPomoCount"`
	TodayPomoDuration  int64 `json:"todayPomoDuration"`
	TotalPomoDuration  int64 `json:"totalPomoDuration"`
}

// FocusDay is one entry of the focus heatmap.
type FocusDay struct {
	Day      string `json:"day,omitempty"`
	Duration int64  `json:"duration"`
}

// FocusDistribution is the focus time per tag in seconds.
type FocusDistribution struct {
	TagDurations map[string]int64 `json:"tagDurations"`
}

// decodeSync decodes a sync document twice: once into SyncState and once
// into the raw map.
func decodeSync(data []byte) (*SyncState, error) {
	var state SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &state.Raw); err != nil {
		return nil, err
	}
	return &state, nil
}
