package academic

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource - источник случайности для синтезатора.
// *rand.Rand удовлетворяет этому интерфейсу.
type RandomSource interface {
	// Float64 возвращает число в [0.0, 1.0).
	Float64() float64
	// Intn возвращает число в [0, n).
	Intn(n int) int
}

// lockedSource делает *rand.Rand безопасным для конкурентного использования.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource создаёт потокобезопасный источник с указанным seed.
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func newTimeSeededSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}
