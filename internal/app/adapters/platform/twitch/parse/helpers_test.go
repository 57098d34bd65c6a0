package parse

import (
	"context"
	"fmt"
	"sync"

	"twitchchat/internal/app/adapters/terminal"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/pkg/logger"
)

// fakeFetcher serves PNG bytes per URL. URLs not in images fail.
type fakeFetcher struct {
	mu     sync.Mutex
	images map[string][]byte
	calls  map[string]int
	err    error
}

func newFakeFetcher(images map[string][]byte) *fakeFetcher {
	return &fakeFetcher{images: images, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	img, ok := f.images[url]
	if !ok {
		return nil, fmt.Errorf("%w: status 404", domain.ErrEmoteFetchFailed)
	}
	return img, nil
}

func (f *fakeFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func newTestEmoteResolver(f *fakeFetcher, tmux bool) *EmoteResolver {
	return NewEmoteResolver(f, terminal.NewEncoder(tmux), storage.NewCache[string](storage.CacheOptions{Capacity: 64}), logger.Discard(), 0)
}

func newTestBadgeResolver(dir string) *BadgeResolver {
	return NewBadgeResolver(dir, terminal.NewEncoder(false), storage.NewCache[string](storage.CacheOptions{Capacity: 64}), logger.Discard())
}
