package dto

type StreakOutput struct {
	CurrentStreak int
	MaxStreak     int
	ReadToday     bool
	LastReadDate  string
}
