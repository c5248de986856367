package buildsrv

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// steps mirrors a typical CI pipeline; each step emits a start line, a few
// detail lines, and a completion line.
var steps = []string{
	"Cloning repository",
	"Installing dependencies",
	"Running tests",
	"Building assets",
	"Packaging artifacts",
	"Deploying to staging",
	"Smoke tests",
	"Deploying to production",
}

// Build is one simulated build run. Emitted lines are retained so a
// subscriber attaching late first replays everything already produced, then
// follows live output.
type Build struct {
	ID string

	mu       sync.Mutex
	lines    []string
	finished bool
	subs     map[chan string]struct{}
}

func newBuild() *Build {
	return &Build{
		ID:   strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		subs: make(map[chan string]struct{}),
	}
}

// Subscribe returns the backlog of lines emitted so far plus a live channel.
// The channel is closed when the build finishes; a nil channel means the
// build already finished and the backlog is complete.
func (b *Build) Subscribe() ([]string, <-chan string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	backlog := make([]string, len(b.lines))
	copy(backlog, b.lines)
	if b.finished {
		return backlog, nil, true
	}
	ch := make(chan string, 1024)
	b.subs[ch] = struct{}{}
	return backlog, ch, false
}

func (b *Build) Unsubscribe(ch <-chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if sub == ch {
			delete(b.subs, sub)
			close(sub)
			return
		}
	}
}

func (b *Build) emit(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.lines = append(b.lines, line)
	for sub := range b.subs {
		select {
		case sub <- line:
		default:
			log.Warn().Str("build_id", b.ID).Msg("subscriber channel full, dropping line")
		}
	}
}

func (b *Build) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = true
	for sub := range b.subs {
		close(sub)
	}
	b.subs = make(map[chan string]struct{})
}

// run produces the simulated log output until all steps complete or ctx is
// canceled. Either way the build ends finished so streams terminate.
func (b *Build) run(ctx context.Context, d Delays) {
	defer b.finish()

	for _, step := range steps {
		if !sleep(ctx, d.step()) {
			return
		}
		b.emit(fmt.Sprintf("[%s] ➜ %s …", timestamp(), step))

		for i := 0; i < 1+rand.Intn(4); i++ {
			if !sleep(ctx, d.detail()) {
				return
			}
			b.emit(fmt.Sprintf("[%s]     %s — detail %d", timestamp(), step, i+1))
		}
		b.emit(fmt.Sprintf("[%s] ✓ %s completed", timestamp(), step))
	}

	b.emit(fmt.Sprintf("[%s] 🎉 Build %s completed successfully", timestamp(), b.ID))
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Delays controls the pacing of simulated output. Zero values fall back to
// interactive defaults; tests shrink them to keep runs instant.
type Delays struct {
	MinStep   time.Duration
	MaxStep   time.Duration
	MinDetail time.Duration
	MaxDetail time.Duration
}

func (d Delays) withDefaults() Delays {
	if d.MaxStep <= 0 {
		d.MinStep, d.MaxStep = 600*time.Millisecond, 1400*time.Millisecond
	}
	if d.MaxDetail <= 0 {
		d.MinDetail, d.MaxDetail = 100*time.Millisecond, 400*time.Millisecond
	}
	return d
}

func (d Delays) step() time.Duration   { return between(d.MinStep, d.MaxStep) }
func (d Delays) detail() time.Duration { return between(d.MinDetail, d.MaxDetail) }

func between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

// Registry indexes in-flight and completed builds by id.
type Registry struct {
	mu     sync.Mutex
	builds map[string]*Build
}

func NewRegistry() *Registry {
	return &Registry{builds: make(map[string]*Build)}
}

func (r *Registry) Create() *Build {
	b := newBuild()
	r.mu.Lock()
	r.builds[b.ID] = b
	r.mu.Unlock()
	return b
}

func (r *Registry) Get(id string) *Build {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builds[id]
}
