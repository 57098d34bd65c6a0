package parse

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

// ParseEmotes decodes "id:start-end[,start-end]/id:start-end". Only the first
// range of each id is used; malformed entries are skipped.
func ParseEmotes(value string) []domain.Emote {
	if value == "" {
		return nil
	}

	var emotes []domain.Emote
	for _, entry := range strings.Split(value, "/") {
		id, ranges, ok := strings.Cut(entry, ":")
		if !ok || id == "" {
			continue
		}

		first, _, _ := strings.Cut(ranges, ",")
		s, e, ok := strings.Cut(first, "-")
		if !ok {
			continue
		}

		start, err := strconv.ParseUint(s, 10, strconv.IntSize-1)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(e, 10, strconv.IntSize-1)
		if err != nil || end < start {
			continue
		}

		emotes = append(emotes, domain.Emote{
			ID:    id,
			URL:   domain.EmoteURL(id),
			Start: int(start),
			End:   int(end),
		})
	}
	return emotes
}

// nameEmotes fills Name from the untouched message text. Offsets count
// characters and the end is inclusive. Ranges outside the text keep an empty name.
func nameEmotes(emotes []domain.Emote, text string) {
	runes := []rune(text)
	for i := range emotes {
		if emotes[i].End < len(runes) {
			emotes[i].Name = string(runes[emotes[i].Start : emotes[i].End+1])
		}
	}
}

type EmoteResolver struct {
	fetcher ports.ImageFetcherPort
	encoder ports.ImageEncoderPort
	cache   ports.CachePort[string]
	log     logger.Logger

	timeout     time.Duration
	parallelism int
}

func NewEmoteResolver(fetcher ports.ImageFetcherPort, encoder ports.ImageEncoderPort, cache ports.CachePort[string], log logger.Logger, timeout time.Duration) *EmoteResolver {
	return &EmoteResolver{
		fetcher:     fetcher,
		encoder:     encoder,
		cache:       cache,
		log:         log,
		timeout:     timeout,
		parallelism: 4,
	}
}

// Resolve returns text with every emote name replaced by its image sequence
// together with the decoded emotes. Emotes that cannot be fetched stay as text.
func (r *EmoteResolver) Resolve(ctx context.Context, value, text string) (string, []domain.Emote) {
	emotes := ParseEmotes(value)
	if len(emotes) == 0 {
		return text, emotes
	}
	nameEmotes(emotes, text)

	seqs := make([]string, len(emotes))

	var g errgroup.Group
	g.SetLimit(r.parallelism)
	for i, e := range emotes {
		if e.Name == "" {
			continue
		}
		g.Go(func() error {
			seqs[i] = r.sequence(ctx, e)
			return nil
		})
	}
	_ = g.Wait()

	pairs := make([]string, 0, 2*len(emotes))
	seen := make(map[string]struct{}, len(emotes))
	for i, e := range emotes {
		if seqs[i] == "" {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		pairs = append(pairs, e.Name, seqs[i])
	}
	if len(pairs) == 0 {
		return text, emotes
	}

	// A single pass never rescans inserted payloads.
	return strings.NewReplacer(pairs...).Replace(text), emotes
}

func (r *EmoteResolver) sequence(ctx context.Context, e domain.Emote) string {
	seq, err := r.cache.Load(ctx, e.ID, func(ctx context.Context, id string) (string, error) {
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		png, err := r.fetcher.Fetch(ctx, domain.EmoteURL(id))
		if err != nil {
			return "", err
		}
		return r.encoder.Encode(png), nil
	})
	if err != nil {
		metrics.EmoteFetchFailures.WithLabelValues(failureReason(err)).Inc()
		r.log.Warn("emote left as text", "id", e.ID, "name", e.Name, "error", err.Error())
		return ""
	}
	return seq
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, domain.ErrEmoteDecodeFailed):
		return "decode"
	default:
		return "fetch"
	}
}

