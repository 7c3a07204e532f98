package game

import "time"

// NetworkSession is the transport a player actor talks through. The only real
// implementation wraps a gorilla websocket; tests substitute a mock.
type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// RandomSource abstracts the process-wide random generator so drawer picks,
// letter reveals and bot timing are reproducible in tests.
type RandomSource interface {
	Intn(n int) int
}

type WordChooser interface {
	ChooseOptions(n int) []string
}

type UniqueIdGenerator interface {
	Generate() string
	Dispose(id string)
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}
