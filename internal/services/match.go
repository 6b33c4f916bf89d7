package services

import "github.com/desertthunder/traxyt/internal/models"

// BestDurationMatch returns the candidate whose duration is closest to target.
//
// Ties go to the earliest candidate. Reports false for an empty list.
func BestDurationMatch(candidates []models.VideoCandidate, target int) (models.VideoCandidate, bool) {
	if len(candidates) == 0 {
		return models.VideoCandidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if absInt(c.Duration-target) < absInt(best.Duration-target) {
			best = c
		}
	}
	return best, true
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
