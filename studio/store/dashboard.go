package store

import (
	"log/slog"
	"math"
	"strconv"

	"tunesmith/studio/schema"
)

type MonthlyGrowth struct {
	Streams   int `json:"streams"`
	Royalties int `json:"royalties"`
}

type DashboardStats struct {
	SongsCreated    int              `json:"songsCreated"`
	TotalStreams    int              `json:"totalStreams"`
	RoyaltiesEarned string           `json:"royaltiesEarned"`
	AiCredits       int              `json:"aiCredits"`
	RecentProjects  []schema.Project `json:"recentProjects"`
	MonthlyGrowth   MonthlyGrowth    `json:"monthlyGrowth"`
}

// DashboardStats assembles the composite dashboard summary: credit balance,
// lifetime aggregates, the five most recently touched projects, and growth
// percentages derived from the monthly counters.
func (s *Store) DashboardStats(userId string) (DashboardStats, error) {
	user, err := schema.GetUser(userId, s.db)
	if err != nil {
		return DashboardStats{}, err
	}

	stats, err := schema.GetUserStats(userId, s.db)
	if err != nil && err != schema.ErrStatsNotFound {
		return DashboardStats{}, err
	}

	var recent []schema.Project
	result := s.db.Where("user_id = ?", userId).
		Order("updated_at DESC").
		Limit(5).
		Find(&recent)
	if result.Error != nil {
		slog.Error("sql error loading recent projects", "user_id", userId, "error", result.Error)
		return DashboardStats{}, schema.ErrDbAccessFailed
	}

	royalties := stats.RoyaltiesEarned
	if royalties == "" {
		royalties = "0.00"
	}

	return DashboardStats{
		SongsCreated:    stats.SongsCreated,
		TotalStreams:    stats.TotalStreams,
		RoyaltiesEarned: royalties,
		AiCredits:       user.AiCredits,
		RecentProjects:  recent,
		MonthlyGrowth: MonthlyGrowth{
			Streams:   growthPercent(float64(stats.MonthlyStreams), float64(stats.TotalStreams)),
			Royalties: growthPercent(parseDecimal(stats.MonthlyRoyalties), parseDecimal(stats.RoyaltiesEarned)),
		},
	}, nil
}

func parseDecimal(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

// growthPercent reports this month's contribution against the prior
// baseline. With no history the growth is zero, not infinite.
func growthPercent(monthly, total float64) int {
	baseline := total - monthly
	if baseline <= 0 || monthly <= 0 {
		return 0
	}
	return int(math.Round(monthly / baseline * 100))
}
