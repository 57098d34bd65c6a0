package irc

import (
	"context"
	"log/slog"
	"time"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

type pending struct {
	raw      string
	received time.Time
	done     chan struct{}
	msg      domain.TwitchMessage
	err      error
}

// Pipeline parses lines on a bounded worker pool and emits the results in
// the order the lines arrived. Submit has a single caller (the reader).
type Pipeline struct {
	log    logger.Logger
	parser ports.ParserPort

	queue          chan *pending
	sem            chan struct{}
	out            chan domain.TwitchMessage
	enqueueTimeout time.Duration
}

func NewPipeline(log logger.Logger, parser ports.ParserPort, workers, queueSize int, enqueueTimeout time.Duration) *Pipeline {
	return &Pipeline{
		log:            log,
		parser:         parser,
		queue:          make(chan *pending, queueSize),
		sem:            make(chan struct{}, workers),
		out:            make(chan domain.TwitchMessage, queueSize),
		enqueueTimeout: enqueueTimeout,
	}
}

// Submit reserves the next output slot for raw and starts parsing it. When the
// queue stays full for longer than the enqueue timeout the line is dropped.
// ctx bounds the parse, so emote fetches of a closed connection give up and
// the message is still emitted with plain text.
func (p *Pipeline) Submit(ctx context.Context, raw string) bool {
	if ctx.Err() != nil {
		return false
	}

	pd := &pending{
		raw:      raw,
		received: time.Now(),
		done:     make(chan struct{}),
	}

	timer := time.NewTimer(p.enqueueTimeout)
	defer timer.Stop()

	select {
	case p.queue <- pd:
	case <-timer.C:
		metrics.PipelineDropped.Inc()
		p.log.Warn("Parse queue full, line dropped", slog.String("line", raw))
		return false
	case <-ctx.Done():
		return false
	}

	go func() {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		pd.msg, pd.err = p.parser.Parse(ctx, pd.raw)
		metrics.MessageProcessingTime.Observe(time.Since(pd.received).Seconds())
		close(pd.done)
	}()

	return true
}

// Run emits parsed messages in arrival order until ctx ends. Lines already
// queued are then drained: their parses see the same cancellation, so they
// finish quickly with literal emote text and are still emitted before the
// output channel closes. Malformed lines are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) error {
	defer close(p.out)

	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case pd := <-p.queue:
			select {
			case <-pd.done:
			case <-ctx.Done():
				<-pd.done
				p.emit(pd)
				p.drain()
				return nil
			}

			if msg, ok := p.result(pd); ok {
				select {
				case p.out <- msg:
				case <-ctx.Done():
					p.out <- msg
					p.drain()
					return nil
				}
			}
		}
	}
}

// drain empties the queue after cancellation. Consumers keep reading until
// the output channel is closed.
func (p *Pipeline) drain() {
	for {
		select {
		case pd := <-p.queue:
			<-pd.done
			p.emit(pd)
		default:
			return
		}
	}
}

func (p *Pipeline) emit(pd *pending) {
	if msg, ok := p.result(pd); ok {
		p.out <- msg
	}
}

func (p *Pipeline) result(pd *pending) (domain.TwitchMessage, bool) {
	if pd.err != nil {
		p.log.Warn("Dropping unparsable line", slog.String("line", pd.raw), slog.String("error", pd.err.Error()))
		return nil, false
	}
	return pd.msg, true
}

func (p *Pipeline) Messages() <-chan domain.TwitchMessage {
	return p.out
}
