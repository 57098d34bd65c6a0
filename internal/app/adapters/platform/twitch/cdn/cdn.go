package cdn

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/pkg/logger"
)

const maxImageSize = 1 << 20

// Fetcher downloads emote images from the Twitch CDN and normalizes them to PNG.
type Fetcher struct {
	log    logger.Logger
	client *http.Client
}

func New(log logger.Logger, client *http.Client) *Fetcher {
	return &Fetcher{
		log:    log,
		client: client,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.EmoteFetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmoteFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmoteFetchFailed, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.log.Error("Failed to close response body", cerr, slog.String("url", url))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrEmoteFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > maxImageSize {
		return nil, fmt.Errorf("%w: image of %d bytes is too large", domain.ErrEmoteFetchFailed, resp.ContentLength)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmoteFetchFailed, err)
	}
	if len(raw) > maxImageSize {
		return nil, fmt.Errorf("%w: image is too large", domain.ErrEmoteFetchFailed)
	}

	f.log.Trace("Emote downloaded", slog.String("url", url), slog.Int("bytes", len(raw)))
	return ToPNG(raw)
}

// ToPNG decodes a PNG, GIF (first frame) or JPEG image and re-encodes it as PNG.
func ToPNG(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmoteDecodeFailed, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmoteDecodeFailed, err)
	}
	return buf.Bytes(), nil
}
