package unified

import (
	"context"
	"slices"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// MergeResult reports a completed tag merge.
type MergeResult struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	TasksUpdated int    `json:"tasks_updated"`
}

func findTag(state *v2.SyncState, name string) (v2.Tag, bool) {
	for _, t := range state.Tags {
		if ticktick.TagName(t.Name) == name {
			return t, true
		}
	}
	return v2.Tag{}, false
}

// ListTags returns every tag.
func (a *API) ListTags(ctx context.Context) ([]model.Tag, error) {
	return run(ctx, a, OpListTags, call[[]model.Tag]{
		v2: func(ctx context.Context, c V2Client) ([]model.Tag, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]model.Tag, 0, len(state.Tags))
			for _, t := range state.Tags {
				out = append(out, model.TagFromV2(t))
			}
			return out, nil
		},
	})
}

// CreateTag creates a tag named after the lowercased label.
func (a *API) CreateTag(ctx context.Context, label, color, parent string) (*model.Tag, error) {
	if err := ticktick.ValidateTagLabel("label", label); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateColor(color); err != nil {
		return nil, err
	}
	if parent != "" {
		if err := ticktick.ValidateTagLabel("parent", parent); err != nil {
			return nil, err
		}
	}
	tag := model.NewTag(label, color, parent)

	return run(ctx, a, OpCreateTag, call[*model.Tag]{
		resource: "tag",
		id:       tag.Name,
		v2: func(ctx context.Context, c V2Client) (*model.Tag, error) {
			if _, err := c.CreateTag(ctx, tag.ToV2()); err != nil {
				return nil, err
			}
			return &tag, nil
		},
	})
}

// DeleteTag deletes a tag and removes it from every task.
func (a *API) DeleteTag(ctx context.Context, name string) error {
	if err := ticktick.ValidateTagLabel("name", name); err != nil {
		return err
	}
	name = ticktick.TagName(name)

	_, err := run(ctx, a, OpDeleteTag, call[struct{}]{
		resource: "tag",
		id:       name,
		v2: func(ctx context.Context, c V2Client) (struct{}, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return struct{}{}, err
			}
			if _, ok := findTag(state, name); !ok {
				return struct{}{}, &ticktick.NotFoundError{Resource: "tag", ID: name}
			}
			return struct{}{}, c.DeleteTag(ctx, name)
		},
	})
	return err
}

// RenameTag gives a tag a new label, and with it a new name. Tasks keep
// the tag. Renaming onto another existing tag is refused; use MergeTags.
func (a *API) RenameTag(ctx context.Context, oldName, newLabel string) (*model.Tag, error) {
	if err := ticktick.ValidateTagLabel("old_name", oldName); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateTagLabel("new_name", newLabel); err != nil {
		return nil, err
	}
	oldName = ticktick.TagName(oldName)
	newName := ticktick.TagName(newLabel)

	return run(ctx, a, OpRenameTag, call[*model.Tag]{
		resource: "tag",
		id:       oldName,
		v2: func(ctx context.Context, c V2Client) (*model.Tag, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			existing, ok := findTag(state, oldName)
			if !ok {
				return nil, &ticktick.NotFoundError{Resource: "tag", ID: oldName}
			}
			if newName != oldName {
				if _, taken := findTag(state, newName); taken {
					return nil, ticktick.NewValidationError("new_name", "tag %q already exists, merge the tags instead", newName)
				}
			}
			if err := c.RenameTag(ctx, oldName, newLabel); err != nil {
				return nil, err
			}
			renamed := model.TagFromV2(existing)
			renamed.Name = newName
			renamed.Label = newLabel
			return &renamed, nil
		},
	})
}

// MergeTags moves every task tagged source to target and deletes source.
// Tasks that already carry target keep a single copy of it.
func (a *API) MergeTags(ctx context.Context, source, target string) (*MergeResult, error) {
	if err := ticktick.ValidateTagLabel("source", source); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateTagLabel("target", target); err != nil {
		return nil, err
	}
	source = ticktick.TagName(source)
	target = ticktick.TagName(target)
	if source == target {
		return nil, ticktick.NewValidationError("target", "cannot merge a tag into itself")
	}

	return run(ctx, a, OpMergeTags, call[*MergeResult]{
		resource: "tag",
		id:       source,
		v2: func(ctx context.Context, c V2Client) (*MergeResult, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			if _, ok := findTag(state, source); !ok {
				return nil, &ticktick.NotFoundError{Resource: "tag", ID: source, Role: "source"}
			}
			if _, ok := findTag(state, target); !ok {
				return nil, &ticktick.NotFoundError{Resource: "tag", ID: target, Role: "target"}
			}

			var updates []v2.Task
			for _, t := range state.SyncTaskBean.Update {
				tags := ticktick.NormalizeTags(t.Tags)
				idx := slices.Index(tags, source)
				if idx < 0 {
					continue
				}
				tags[idx] = target
				t.Tags = ticktick.NormalizeTags(tags)
				updates = append(updates, t)
			}
			if len(updates) > 0 {
				if _, err := c.BatchTasks(ctx, v2.BatchTaskRequest{Update: updates}); err != nil {
					return nil, err
				}
			}
			if err := c.DeleteTag(ctx, source); err != nil {
				return nil, err
			}
			return &MergeResult{Source: source, Target: target, TasksUpdated: len(updates)}, nil
		},
	})
}
