package core

import "sort"

// SustainabilityMetrics is the static gamification summary shown on the profile.
type SustainabilityMetrics struct {
	TotalPoints        int    `json:"total_points"`
	WeeklyPoints       int    `json:"weekly_points"`
	MonthlyPoints      int    `json:"monthly_points"`
	SustainableChoices int    `json:"sustainable_choices"`
	Level              string `json:"level"`
	NextLevelPoints    int    `json:"next_level_points"`
}

// LeaderboardEntry is one user row of the leaderboard.
type LeaderboardEntry struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Points             int    `json:"points"`
	Level              string `json:"level"`
	ReceiptsCount      int    `json:"receipts_count"`
	SustainableChoices int    `json:"sustainable_choices"`
}

var levels = []struct {
	min  int
	name string
}{
	{1000, "Eco Master"},
	{500, "Sustainability Pro"},
	{250, "Green Enthusiast"},
	{100, "Eco Learner"},
}

// LevelFor maps eco points to a level name.
func LevelFor(points int) string {
	for _, l := range levels {
		if points >= l.min {
			return l.name
		}
	}
	return "Eco Beginner"
}

// NextLevelAt returns the points needed for the next level, or 0 at the top.
func NextLevelAt(points int) int {
	next := 0
	for _, l := range levels {
		if points < l.min {
			next = l.min
		}
	}
	return next
}

// Leaderboard fills in levels and orders users by points, highest first.
func Leaderboard(users []LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(users))
	copy(out, users)
	for i := range out {
		out[i].Level = LevelFor(out[i].Points)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// DefaultLeaderboard is the demo leaderboard.
func DefaultLeaderboard() []LeaderboardEntry {
	return Leaderboard([]LeaderboardEntry{
		{ID: 1, Name: "Alex Green", Points: 850, ReceiptsCount: 25, SustainableChoices: 20},
		{ID: 2, Name: "Sam Earth", Points: 620, ReceiptsCount: 18, SustainableChoices: 15},
		{ID: 3, Name: "Jordan Rivers", Points: 450, ReceiptsCount: 12, SustainableChoices: 10},
		{ID: 4, Name: "Taylor Woods", Points: 320, ReceiptsCount: 8, SustainableChoices: 6},
		{ID: 5, Name: "Casey Waters", Points: 180, ReceiptsCount: 5, SustainableChoices: 3},
	})
}

// DefaultMetrics is the demo profile summary.
func DefaultMetrics() SustainabilityMetrics {
	const total = 750
	return SustainabilityMetrics{
		TotalPoints:        total,
		WeeklyPoints:       120,
		MonthlyPoints:      450,
		SustainableChoices: 15,
		Level:              LevelFor(total),
		NextLevelPoints:    NextLevelAt(total),
	}
}
