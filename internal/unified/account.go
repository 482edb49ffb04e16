package unified

import (
	"context"
	"time"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
)

// MaxFocusWindow bounds the range of focus statistics queries.
const MaxFocusWindow = 365 * 24 * time.Hour

func validateWindow(start, end time.Time, limit time.Duration) error {
	if end.Before(start) {
		return ticktick.NewValidationError("end_date", "must not be before start_date")
	}
	if end.Sub(start) > limit {
		return ticktick.NewValidationError("end_date", "range must not exceed %d days", int(limit.Hours()/24))
	}
	return nil
}

// GetUserProfile returns the account profile.
func (a *API) GetUserProfile(ctx context.Context) (*model.User, error) {
	return run(ctx, a, OpUserProfile, call[*model.User]{
		v2: func(ctx context.Context, c V2Client) (*model.User, error) {
			p, err := c.UserProfile(ctx)
			if err != nil {
				return nil, err
			}
			out := model.UserFromV2(*p)
			return &out, nil
		},
	})
}

// GetUserStatus returns the subscription status.
func (a *API) GetUserStatus(ctx context.Context) (*model.UserStatus, error) {
	return run(ctx, a, OpUserStatus, call[*model.UserStatus]{
		v2: func(ctx context.Context, c V2Client) (*model.UserStatus, error) {
			s, err := c.UserStatus(ctx)
			if err != nil {
				return nil, err
			}
			out := model.UserStatusFromV2(*s)
			return &out, nil
		},
	})
}

// GetUserStatistics returns the productivity summary.
func (a *API) GetUserStatistics(ctx context.Context) (*model.UserStatistics, error) {
	return run(ctx, a, OpUserStatistics, call[*model.UserStatistics]{
		v2: func(ctx context.Context, c V2Client) (*model.UserStatistics, error) {
			s, err := c.UserStatistics(ctx)
			if err != nil {
				return nil, err
			}
			out := model.UserStatisticsFromV2(*s)
			return &out, nil
		},
	})
}

// GetFocusHeatmap returns focus time per day between start and end.
func (a *API) GetFocusHeatmap(ctx context.Context, start, end time.Time) ([]model.FocusDay, error) {
	if err := validateWindow(start, end, MaxFocusWindow); err != nil {
		return nil, err
	}
	return run(ctx, a, OpFocusHeatmap, call[[]model.FocusDay]{
		v2: func(ctx context.Context, c V2Client) ([]model.FocusDay, error) {
			days, err := c.FocusHeatmap(ctx, start, end)
			if err != nil {
				return nil, err
			}
			out := make([]model.FocusDay, 0, len(days))
			for _, d := range days {
				out = append(out, model.FocusDayFromV2(d))
			}
			return out, nil
		},
	})
}

// GetFocusByTag returns focus seconds per tag between start and end.
func (a *API) GetFocusByTag(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	if err := validateWindow(start, end, MaxFocusWindow); err != nil {
		return nil, err
	}
	return run(ctx, a, OpFocusByTag, call[map[string]int64]{
		v2: func(ctx context.Context, c V2Client) (map[string]int64, error) {
			return c.FocusByTag(ctx, start, end)
		},
	})
}

// SyncAll returns the raw account snapshot of the private API.
func (a *API) SyncAll(ctx context.Context) (map[string]any, error) {
	return run(ctx, a, OpSyncAll, call[map[string]any]{
		v2: func(ctx context.Context, c V2Client) (map[string]any, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			return state.Raw, nil
		},
	})
}
