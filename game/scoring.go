package game

const (
	GUESSER_POINTS = 100 // awarded to a participant who guesses the word
	DRAWER_POINTS  = 50  // awarded to the drawer for each correct guess
)

type scoreAward struct {
	guesserDelta int
	drawerDelta  int
}

// onCorrectGuess computes the point deltas for one correct guess. The drawer
// never scores from their own guess; that is guarded before we get here.
func onCorrectGuess() scoreAward {
	return scoreAward{guesserDelta: GUESSER_POINTS, drawerDelta: DRAWER_POINTS}
}
