package domain

import "time"

const DateLayout = "2006-01-02"

// State is the process-wide reading-day ledger. LastReadDate is a local
// calendar date, empty before the first read.
type State struct {
	LastReadDate  string `json:"lastReadDate"`
	CurrentStreak int    `json:"currentStreak"`
	MaxStreak     int    `json:"maxStreak"`
}

type View struct {
	CurrentStreak int
	MaxStreak     int
	ReadToday     bool
	LastReadDate  string
}

func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// previousDate steps back one calendar day. AddDate keeps this correct
// across DST changes where a day is not 24h.
func previousDate(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location()).AddDate(0, 0, -1).Format(DateLayout)
}

// Record marks now's calendar day as read and returns the next state.
func (s State) Record(now time.Time) State {
	today := DateOf(now)
	if s.LastReadDate == today {
		return s
	}
	next := s
	if s.LastReadDate == previousDate(now) {
		next.CurrentStreak = s.CurrentStreak + 1
	} else {
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.MaxStreak {
		next.MaxStreak = next.CurrentStreak
	}
	next.LastReadDate = today
	return next
}

// View reports the state as of now without changing it. A streak whose
// last day is before yesterday reads as zero.
func (s State) View(now time.Time) View {
	v := View{
		CurrentStreak: s.CurrentStreak,
		MaxStreak:     s.MaxStreak,
		LastReadDate:  s.LastReadDate,
		ReadToday:     s.LastReadDate != "" && s.LastReadDate == DateOf(now),
	}
	if s.LastReadDate == "" {
		v.CurrentStreak = 0
		return v
	}
	if s.LastReadDate != DateOf(now) && s.LastReadDate != previousDate(now) {
		v.CurrentStreak = 0
	}
	return v
}
