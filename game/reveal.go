package game

const maskRune = '_'

// maskWord builds the initial revealed pattern for a secret word: every
// character masked except spaces, which stay visible.
func maskWord(word string) []byte {
	pattern := make([]byte, len(word))
	for i := 0; i < len(word); i++ {
		if word[i] == ' ' {
			pattern[i] = ' '
		} else {
			pattern[i] = maskRune
		}
	}
	return pattern
}

// revealScheduler tracks the letter-reveal checkpoints of one drawing phase.
// Checkpoints sit at 70%, 50% and 30% of the round duration, rounded down to
// whole seconds; duplicates collapse into a single checkpoint. A checkpoint
// fires once, when the remaining time drops strictly below it.
type revealScheduler struct {
	checkpoints []int
}

func newRevealScheduler(roundDurationSeconds int) *revealScheduler {
	fractions := []float64{0.7, 0.5, 0.3}
	seen := make(map[int]bool, len(fractions))
	checkpoints := make([]int, 0, len(fractions))
	for _, f := range fractions {
		c := int(float64(roundDurationSeconds) * f)
		if !seen[c] {
			seen[c] = true
			checkpoints = append(checkpoints, c)
		}
	}
	return &revealScheduler{checkpoints: checkpoints}
}

// crossed consumes and counts the checkpoints that the clock has now passed.
// Checkpoints are held in decreasing order, so only the head needs checking.
func (rs *revealScheduler) crossed(timeRemaining int) int {
	n := 0
	for len(rs.checkpoints) > 0 && timeRemaining < rs.checkpoints[0] {
		rs.checkpoints = rs.checkpoints[1:]
		n++
	}
	return n
}

// revealRandomPosition unmasks one random still-masked, non-space position of
// the pattern in place. Reports false when nothing is left to reveal.
func revealRandomPosition(secret string, pattern []byte, rng RandomSource) bool {
	masked := make([]int, 0, len(pattern))
	for i := range pattern {
		if pattern[i] == maskRune && secret[i] != ' ' {
			masked = append(masked, i)
		}
	}
	if len(masked) == 0 {
		return false
	}
	pos := masked[rng.Intn(len(masked))]
	pattern[pos] = secret[pos]
	return true
}
