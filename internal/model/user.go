package model

import (
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// User is the account profile.
type User struct {
	Username      string `json:"username"`
	DisplayName   string `json:"display_name,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Locale        string `json:"locale,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
}

// UserStatus describes the account subscription.
type UserStatus struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	InboxID    string `json:"inbox_id"`
	IsPro      bool   `json:"is_pro"`
	ProEndDate string `json:"pro_end_date,omitempty"`
	TeamUser   bool   `json:"team_user,omitempty"`
}

// UserStatistics is the productivity summary. Durations are seconds.
type UserStatistics struct {
	Score              int64 `json:"score"`
	Level              int64 `json:"level"`
	TodayCompleted     int64 `json:"today_completed"`
	YesterdayCompleted int64 `json:"yesterday_completed"`
	TotalCompleted     int64 `json:"total_completed"`
	TodayPomoCount     int64 `json:"today_pomo_count"`
	TotalPomoCount     int64 `json:"total_pomo_count"`
	TodayPomoDuration  int64 `json:"today_pomo_duration"`
	TotalPomoDuration  int64 `json:"total_pomo_duration"`
}

// TotalPomoDurationHours returns the total focus time in hours.
func (s UserStatistics) TotalPomoDurationHours() float64 {
	return float64(s.TotalPomoDuration) / 3600
}

// FocusDay is one day of the focus heatmap.
type FocusDay struct {
	Day      string `json:"day,omitempty"`
	Duration int64  `json:"duration"`
}

// UserFromV2 converts the profile.
func UserFromV2(in v2.UserProfile) User {
	return User{
		Username:      in.Username,
		DisplayName:   in.DisplayName,
		Name:          in.Name,
		Email:         in.Email,
		Locale:        in.Locale,
		VerifiedEmail: in.VerifiedEmail,
	}
}

// UserStatusFromV2 converts the subscription status.
func UserStatusFromV2(in v2.UserStatus) UserStatus {
	return UserStatus{
		UserID:     in.UserID,
		Username:   in.Username,
		InboxID:    in.InboxID,
		IsPro:      in.Pro,
		ProEndDate: in.ProEndDate,
		TeamUser:   in.TeamUser,
	}
}

// UserStatisticsFromV2 converts the statistics.
func UserStatisticsFromV2(in v2.UserStatistics) UserStatistics {
	return UserStatistics{
		Score:              in.Score,
		Level:              in.Level,
		TodayCompleted:     in.TodayCompleted,
		YesterdayCompleted: in.YesterdayCompleted,
		TotalCompleted:     in.TotalCompleted,
		TodayPomoCount:     in.TodayPomoCount,
		TotalPomoCount:     in.TotalPomoCount,
		TodayPomoDuration:  in.TodayPomoDuration,
		TotalPomoDuration:  in.TotalPomoDuration,
	}
}

// FocusDayFromV2 converts a heatmap entry.
func FocusDayFromV2(in v2.FocusDay) FocusDay {
	return FocusDay{Day: in.Day, Duration: in.Duration}
}
