package game

import "math/rand"

type systemRandom struct{}

func (systemRandom) Intn(n int) int {
	return rand.Intn(n)
}

func NewSystemRandom() RandomSource {
	return systemRandom{}
}
