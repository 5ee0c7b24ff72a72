package app

import "math"

// MaxScore is awarded for a correct answer given instantly.
const MaxScore = 1000

// Score returns the points awarded for one answer. The award decays linearly from
// MaxScore at zero elapsed time to zero at the time limit.
func Score(correct bool, timeTaken float64, timeLimit int) int {
	if !correct || timeLimit <= 0 {
		return 0
	}
	if timeTaken < 0 {
		timeTaken = 0
	}
	raw := math.Max(0, MaxScore-(timeTaken/float64(timeLimit))*MaxScore)
	return int(math.Round(raw))
}
