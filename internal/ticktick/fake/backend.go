package fake

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teemow/tickfewer/internal/ticktick"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// Account defaults.
const (
	UserID   = "123456789"
	InboxID  = "inbox123456789"
	Username = "user@example.com"
)

// Call is one recorded upstream call.
type Call struct {
	Upstream string
	Op       string
}

func (c Call) String() string {
	return c.Upstream + "." + c.Op
}

// Backend is one in-memory account. Both upstream views read and write the
// same state.
type Backend struct {
	mu sync.Mutex

	projects map[string]*v2.Project
	groups   map[string]*v2.ProjectGroup
	tasks    map[string]*v2.Task
	tags     map[string]*v2.Tag

	profile    v2.UserProfile
	status     v2.UserStatus
	statistics v2.UserStatistics
	focusDays  []v2.FocusDay
	focusByTag map[string]int64

	failures     map[string]error
	calls        []Call
	ackWithoutID bool
	counter      int
	now          func() time.Time
}

// New returns an empty account with only an inbox.
func New() *Backend {
	return &Backend{
		projects:   map[string]*v2.Project{},
		groups:     map[string]*v2.ProjectGroup{},
		tasks:      map[string]*v2.Task{},
		tags:       map[string]*v2.Tag{},
		profile:    v2.UserProfile{Username: Username, Name: "Test User", Email: Username},
		status:     v2.UserStatus{UserID: UserID, Username: Username, InboxID: InboxID, Pro: true},
		focusByTag: map[string]int64{},
		failures:   map[string]error{},
		now:        time.Now,
	}
}

// V1 returns the open API view of the account.
func (b *Backend) V1() *V1 {
	return &V1{b: b}
}

// V2 returns the private API view of the account.
func (b *Backend) V2() *V2 {
	return &V2{b: b}
}

// Fail makes every call of op on upstream return err until Heal.
func (b *Backend) Fail(upstream, op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[upstream+"."+op] = err
}

// FailAll makes every call on upstream return err until Heal.
func (b *Backend) FailAll(upstream string, err error) {
	b.Fail(upstream, "*", err)
}

// Heal removes all injected failures.
func (b *Backend) Heal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = map[string]error{}
}

// AckWithoutID makes private API adds acknowledge without returning an id.
func (b *Backend) AckWithoutID(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ackWithoutID = on
}

// SetNow replaces the clock used for completion times.
func (b *Backend) SetNow(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// Calls returns the calls recorded so far, in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// ResetCalls clears the call log.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// ServerError returns the error an upstream reports for a 5xx response.
func ServerError(upstream, op string) error {
	return &ticktick.APIError{Upstream: upstream, Op: op, StatusCode: http.StatusServiceUnavailable, Kind: ticktick.KindAPI, Body: "service unavailable"}
}

// AuthError returns the error an upstream reports for rejected credentials.
func AuthError(upstream, op string) error {
	return &ticktick.APIError{Upstream: upstream, Op: op, StatusCode: http.StatusUnauthorized, Kind: ticktick.KindAuth}
}

// NotFound returns the error an upstream reports for a missing entity.
func NotFound(upstream, op string) error {
	return &ticktick.APIError{Upstream: upstream, Op: op, StatusCode: http.StatusNotFound, Kind: ticktick.KindNotFound}
}

// record logs a call and returns the injected failure for it, if any.
// The caller holds b.mu.
func (b *Backend) record(upstream, op string) error {
	b.calls = append(b.calls, Call{Upstream: upstream, Op: op})
	if err, ok := b.failures[upstream+"."+op]; ok {
		return err
	}
	if err, ok := b.failures[upstream+".*"]; ok {
		return err
	}
	return nil
}

func (b *Backend) newID() string {
	b.counter++
	return fmt.Sprintf("%024x", b.counter)
}

func (b *Backend) etag() string {
	b.counter++
	return fmt.Sprintf("e%07x", b.counter)
}

// Seeding and inspection helpers.

// AddProject stores p, assigning an id when empty, and returns the id.
func (b *Backend) AddProject(p v2.Project) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.newID()
	}
	b.projects[p.ID] = &p
	return p.ID
}

// AddGroup stores g, assigning an id when empty, and returns the id.
func (b *Backend) AddGroup(g v2.ProjectGroup) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.ID == "" {
		g.ID = b.newID()
	}
	b.groups[g.ID] = &g
	return g.ID
}

// AddTask stores t, defaulting the project to the inbox, and returns the id.
func (b *Backend) AddTask(t v2.Task) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addTask(t)
}

// AddTag stores a tag keyed by its lowercased name.
func (b *Backend) AddTag(t v2.Tag) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.Name == "" {
		t.Name = t.Label
	}
	t.Name = strings.ToLower(t.Name)
	if t.Label == "" {
		t.Label = t.Name
	}
	b.tags[t.Name] = &t
}

// SetStatistics replaces the user statistics.
func (b *Backend) SetStatistics(s v2.UserStatistics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statistics = s
}

// SetFocus replaces the focus heatmap and per-tag distribution.
func (b *Backend) SetFocus(days []v2.FocusDay, byTag map[string]int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focusDays = slices.Clone(days)
	b.focusByTag = map[string]int64{}
	for k, v := range byTag {
		b.focusByTag[k] = v
	}
}

// Task returns a copy of a stored task.
func (b *Backend) Task(id string) (v2.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return v2.Task{}, false
	}
	return cloneTask(t), true
}

// Tasks returns copies of all stored tasks ordered by id.
func (b *Backend) Tasks() []v2.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.taskList(func(*v2.Task) bool { return true })
}

// Project returns a copy of a stored project.
func (b *Backend) Project(id string) (v2.Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	if !ok {
		return v2.Project{}, false
	}
	return *p, true
}

// Group returns a copy of a stored folder.
func (b *Backend) Group(id string) (v2.ProjectGroup, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[id]
	if !ok {
		return v2.ProjectGroup{}, false
	}
	return *g, true
}

// Tag returns a copy of a stored tag.
func (b *Backend) Tag(name string) (v2.Tag, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tags[strings.ToLower(name)]
	if !ok {
		return v2.Tag{}, false
	}
	return *t, true
}

// State mutations shared by both views. Callers hold b.mu.

func (b *Backend) addTask(t v2.Task) string {
	if t.ID == "" {
		t.ID = b.newID()
	}
	if t.ProjectID == "" {
		t.ProjectID = InboxID
	}
	t.Tags = ticktick.NormalizeTags(t.Tags)
	t.Etag = b.etag()
	stored := cloneTask(&t)
	b.tasks[t.ID] = &stored
	if t.ParentID != "" {
		b.linkChild(t.ParentID, t.ID)
	}
	return t.ID
}

func (b *Backend) projectExists(id string) bool {
	if id == InboxID {
		return true
	}
	_, ok := b.projects[id]
	return ok
}

func (b *Backend) deleteTask(id string) {
	t, ok := b.tasks[id]
	if !ok {
		return
	}
	if t.ParentID != "" {
		b.unlinkChild(t.ParentID, id)
	}
	for _, childID := range t.ChildIDs {
		if child, ok := b.tasks[childID]; ok {
			child.ParentID = ""
		}
	}
	delete(b.tasks, id)
}

func (b *Backend) deleteProject(id string) {
	for taskID, t := range b.tasks {
		if t.ProjectID == id {
			b.deleteTask(taskID)
		}
	}
	delete(b.projects, id)
}

func (b *Backend) complete(t *v2.Task) {
	if t.Status == int(ticktick.StatusCompleted) {
		return
	}
	t.Status = int(ticktick.StatusCompleted)
	t.CompletedTime = b.now().UTC().Format("2006-01-02T15:04:05.000-0700")
}

func (b *Backend) linkChild(parentID, childID string) {
	parent, ok := b.tasks[parentID]
	if !ok {
		return
	}
	if !slices.Contains(parent.ChildIDs, childID) {
		parent.ChildIDs = append(parent.ChildIDs, childID)
	}
}

func (b *Backend) unlinkChild(parentID, childID string) {
	parent, ok := b.tasks[parentID]
	if !ok {
		return
	}
	parent.ChildIDs = slices.DeleteFunc(parent.ChildIDs, func(id string) bool { return id == childID })
}

// replaceTag rewrites every task carrying from so that it carries to
// instead, or drops it when to is empty.
func (b *Backend) replaceTag(from, to string) {
	for _, t := range b.tasks {
		idx := slices.IndexFunc(t.Tags, func(tag string) bool { return strings.EqualFold(tag, from) })
		if idx < 0 {
			continue
		}
		tags := slices.Delete(slices.Clone(t.Tags), idx, idx+1)
		if to != "" && !slices.Contains(tags, to) {
			tags = slices.Insert(tags, idx, to)
		}
		t.Tags = tags
	}
}

func (b *Backend) taskList(keep func(*v2.Task) bool) []v2.Task {
	ids := make([]string, 0, len(b.tasks))
	for id, t := range b.tasks {
		if keep(t) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]v2.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneTask(b.tasks[id]))
	}
	return out
}

func (b *Backend) projectList() []v2.Project {
	ids := make([]string, 0, len(b.projects))
	for id := range b.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]v2.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, *b.projects[id])
	}
	return out
}

func (b *Backend) groupList() []v2.ProjectGroup {
	ids := make([]string, 0, len(b.groups))
	for id := range b.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]v2.ProjectGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, *b.groups[id])
	}
	return out
}

func (b *Backend) tagList() []v2.Tag {
	names := make([]string, 0, len(b.tags))
	for name := range b.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]v2.Tag, 0, len(names))
	for _, name := range names {
		out = append(out, *b.tags[name])
	}
	return out
}

func cloneTask(t *v2.Task) v2.Task {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.ChildIDs = slices.Clone(t.ChildIDs)
	c.Items = slices.Clone(t.Items)
	c.Reminders = slices.Clone(t.Reminders)
	return c
}
