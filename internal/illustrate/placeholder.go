package illustrate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// seedOffsets gives each style its own band of 100 placeholder seeds.
var seedOffsets = map[string]int{
	"cartoon":    0,
	"watercolor": 100,
	"digital":    200,
	"hand-drawn": 300,
	"realistic":  400,
}

// Placeholder returns stock photos instead of generated art. Seeds are
// drawn per style so the same style tends to look alike.
type Placeholder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPlaceholder uses src for seed selection; nil means a random source.
func NewPlaceholder(src rand.Source) *Placeholder {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Placeholder{rnd: rand.New(src)}
}

func (p *Placeholder) Render(_ context.Context, _ string, artStyle string) (string, error) {
	return fmt.Sprintf("https://picsum.photos/seed/%d/600/400", p.seed(artStyle)), nil
}

func (p *Placeholder) seed(artStyle string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if off, ok := seedOffsets[strings.ToLower(artStyle)]; ok {
		return p.rnd.IntN(100) + 1 + off
	}
	return p.rnd.IntN(500) + 1
}

func (p *Placeholder) Name() string { return "placeholder" }
