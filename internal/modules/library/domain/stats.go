package domain

// Stats feeds the dashboard.
type Stats struct {
	TotalBooks      int
	TotalPages      int
	TotalDurationMs int64
}

func ComputeStats(books []Book) Stats {
	stats := Stats{TotalBooks: len(books)}
	for _, b := range books {
		for _, s := range b.Sessions {
			stats.TotalDurationMs += s.DurationMs
			// physical books count pages through CurrentPage below
			if b.Kind != KindPhysical {
				stats.TotalPages += s.PagesRead
			}
		}
		if b.Kind == KindPhysical {
			stats.TotalPages += b.CurrentPage
		}
	}
	return stats
}

// PagesPerMinute is zero until both pages and time have been recorded.
func (s Stats) PagesPerMinute() float64 {
	if s.TotalDurationMs <= 0 || s.TotalPages <= 0 {
		return 0
	}
	return float64(s.TotalPages) / (float64(s.TotalDurationMs) / 60000)
}
