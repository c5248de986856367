package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/rsadaphule/buildwatch/pkg/client"
	"github.com/rsadaphule/buildwatch/pkg/events"
)

// Runner owns the Session and is its only writer. Operator commands arrive
// on the actions topic; stream events are forwarded onto the stream topic
// and applied by a single consumer handler, so every mutation happens in
// arrival order and each event is fully handled before the next.
type Runner struct {
	mu     sync.Mutex
	sess   *Session
	svc    client.Service
	pub    message.Publisher
	ctx    context.Context
	cancel context.CancelFunc // active subscription slot, nil when released

	run            uint64 // subscription sequence; stale events are dropped
	triggerTimeout time.Duration
}

type RunnerOptions struct {
	// TriggerTimeout bounds the one-shot start request. The log stream
	// itself is deliberately unbounded.
	TriggerTimeout time.Duration
}

// RegisterRunner wires a Runner onto the bus. ctx scopes every subscription
// the runner opens; canceling it abandons an in-flight stream.
func RegisterRunner(ctx context.Context, bus *events.Bus, svc client.Service, opts RunnerOptions) *Runner {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.TriggerTimeout <= 0 {
		opts.TriggerTimeout = 10 * time.Second
	}
	r := &Runner{
		sess:           New(),
		svc:            svc,
		pub:            bus.Publisher,
		ctx:            ctx,
		triggerTimeout: opts.TriggerTimeout,
	}

	bus.AddHandler("buildwatch-session-actions", events.TopicUIActions, func(msg *message.Message) error {
		defer msg.Ack()

		var env events.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			return nil
		}
		if env.Type != events.UITypeStartRequest {
			return nil
		}
		var req events.StartBuildRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return nil
		}
		r.handleStart()
		return nil
	})

	bus.AddHandler("buildwatch-session-stream", events.TopicStreamEvents, func(msg *message.Message) error {
		defer msg.Ack()

		var env events.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			return nil
		}
		r.handleStreamEvent(env)
		return nil
	})

	return r
}

// Snapshot exposes the session read-only, for headless callers and tests.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess.Snapshot()
}

func (r *Runner) handleStart() {
	r.mu.Lock()
	if r.sess.Status() == StatusRunning {
		r.mu.Unlock()
		log.Debug().Msg("start rejected: build already running")
		r.publishActionLog("start rejected: a build is already running")
		return
	}
	// Release any leftover subscription slot before opening a new one so two
	// subscriptions can never interleave lines into the same buffer.
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.run++
	seq := r.run
	r.sess.Reset()
	r.mu.Unlock()

	r.publishSnapshot()
	r.publishActionLog("starting build")

	triggerCtx, cancelTrigger := context.WithTimeout(r.ctx, r.triggerTimeout)
	buildID, err := r.svc.StartBuild(triggerCtx)
	cancelTrigger()
	if err != nil {
		// Clean failure: stay idle with no partial state.
		log.Warn().Err(err).Msg("build trigger failed")
		r.publishEnded(events.SessionEnded{Ok: false, Error: err.Error(), At: time.Now()})
		r.publishActionLog("start failed: " + err.Error())
		r.publishSnapshot()
		return
	}

	subCtx, cancel := context.WithCancel(r.ctx)
	logs, err := r.svc.FollowLogs(subCtx, buildID)
	if err != nil {
		cancel()
		log.Warn().Str("build_id", buildID).Err(err).Msg("log stream open failed")
		r.mu.Lock()
		if runErr := r.sess.Run(buildID); runErr == nil {
			_ = r.sess.Interrupt()
		}
		r.mu.Unlock()
		r.publishEnded(events.SessionEnded{BuildID: buildID, Ok: false, Error: err.Error(), At: time.Now()})
		r.publishSnapshot()
		return
	}

	r.mu.Lock()
	if err := r.sess.Run(buildID); err != nil {
		r.mu.Unlock()
		cancel()
		log.Error().Err(err).Msg("session refused run transition")
		return
	}
	r.cancel = cancel
	r.mu.Unlock()

	log.Debug().Str("build_id", buildID).Msg("log stream opened")
	_ = events.Publish(r.pub, events.TopicDomainEvents, events.DomainTypeSessionStarted,
		events.SessionStarted{BuildID: buildID, At: time.Now()})
	r.publishSnapshot()

	go r.forward(subCtx, seq, buildID, logs)
}

// forward moves subscription events onto the ordered stream topic. It never
// touches the session itself.
func (r *Runner) forward(ctx context.Context, seq uint64, buildID string, logs <-chan client.LogEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-logs:
			if !ok {
				return
			}
			now := time.Now()
			switch ev.Kind {
			case client.EventLine:
				_ = events.Publish(r.pub, events.TopicStreamEvents, events.StreamTypeLine,
					events.StreamLine{Run: seq, BuildID: buildID, Line: ev.Line, At: now})
			case client.EventDone:
				_ = events.Publish(r.pub, events.TopicStreamEvents, events.StreamTypeDone,
					events.StreamDone{Run: seq, BuildID: buildID, At: now})
				return
			case client.EventFailed:
				errText := ""
				if ev.Err != nil {
					errText = ev.Err.Error()
				}
				_ = events.Publish(r.pub, events.TopicStreamEvents, events.StreamTypeFailed,
					events.StreamFailed{Run: seq, BuildID: buildID, Error: errText, At: now})
				return
			}
		}
	}
}

func (r *Runner) handleStreamEvent(env events.Envelope) {
	switch env.Type {
	case events.StreamTypeLine:
		var ev events.StreamLine
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return
		}
		r.mu.Lock()
		if ev.Run != r.run {
			r.mu.Unlock()
			return
		}
		if err := r.sess.Append(ev.Line); err != nil {
			r.mu.Unlock()
			log.Debug().Err(err).Msg("dropping log line")
			return
		}
		r.mu.Unlock()
		r.publishSnapshot()

	case events.StreamTypeDone:
		var ev events.StreamDone
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return
		}
		r.mu.Lock()
		if ev.Run != r.run {
			r.mu.Unlock()
			return
		}
		if err := r.sess.Finish(); err != nil {
			r.mu.Unlock()
			return
		}
		r.releaseLocked()
		r.mu.Unlock()
		r.publishEnded(events.SessionEnded{BuildID: ev.BuildID, Ok: true, At: ev.At})
		r.publishSnapshot()

	case events.StreamTypeFailed:
		var ev events.StreamFailed
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return
		}
		r.mu.Lock()
		if ev.Run != r.run {
			r.mu.Unlock()
			return
		}
		if err := r.sess.Interrupt(); err != nil {
			r.mu.Unlock()
			return
		}
		r.releaseLocked()
		r.mu.Unlock()
		log.Warn().Str("build_id", ev.BuildID).Str("error", ev.Error).Msg("log stream failed")
		r.publishEnded(events.SessionEnded{BuildID: ev.BuildID, Ok: false, Error: ev.Error, At: ev.At})
		r.publishSnapshot()
	}
}

func (r *Runner) releaseLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Runner) publishSnapshot() {
	r.mu.Lock()
	snap := r.sess.Snapshot()
	r.mu.Unlock()
	_ = events.Publish(r.pub, events.TopicDomainEvents, events.DomainTypeSessionSnapshot,
		events.SessionSnapshotEvent{
			Status:  string(snap.Status),
			BuildID: snap.BuildID,
			Lines:   snap.Lines,
			At:      time.Now(),
		})
}

func (r *Runner) publishEnded(ev events.SessionEnded) {
	_ = events.Publish(r.pub, events.TopicDomainEvents, events.DomainTypeSessionEnded, ev)
}

func (r *Runner) publishActionLog(text string) {
	_ = events.Publish(r.pub, events.TopicDomainEvents, events.DomainTypeActionLog,
		events.ActionLog{At: time.Now(), Text: text})
}
