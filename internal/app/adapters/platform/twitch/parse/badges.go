package parse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

// ParseBadges returns the badge set ids that are switched on, in tag order.
// "broadcaster/1,subscriber/0,premium" yields [broadcaster premium].
func ParseBadges(value string) []string {
	if value == "" {
		return nil
	}

	var badges []string
	for _, entry := range strings.Split(value, ",") {
		name, version, _ := strings.Cut(entry, "/")
		if name == "" || version == "0" {
			continue
		}
		badges = append(badges, name)
	}
	return badges
}

// BadgeResolver turns badge set ids into inline image sequences read from
// <dir>/<set_id>.txt files holding base64 images.
type BadgeResolver struct {
	dir     string
	encoder ports.ImageEncoderPort
	cache   ports.CachePort[string]
	log     logger.Logger
}

func NewBadgeResolver(dir string, encoder ports.ImageEncoderPort, cache ports.CachePort[string], log logger.Logger) *BadgeResolver {
	return &BadgeResolver{
		dir:     dir,
		encoder: encoder,
		cache:   cache,
		log:     log,
	}
}

// Glyphs concatenates the sequences of every badge that has an asset.
// Missing assets are skipped.
func (r *BadgeResolver) Glyphs(ctx context.Context, badges []string) string {
	var b strings.Builder
	for _, badge := range badges {
		seq, err := r.cache.Load(ctx, badge, r.load)
		if err != nil {
			r.log.Debug("badge skipped", "badge", badge, "error", err.Error())
			metrics.BadgeAssetsMissing.Inc()
			continue
		}
		b.WriteString(seq)
	}
	return b.String()
}

func (r *BadgeResolver) load(_ context.Context, badge string) (string, error) {
	if !isPlainName(badge) {
		return "", fmt.Errorf("%w: invalid badge name %q", domain.ErrBadgeAssetMissing, badge)
	}

	data, err := os.ReadFile(filepath.Join(r.dir, badge+".txt"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrBadgeAssetMissing, err)
	}

	payload := strings.TrimSpace(string(data))
	if payload == "" {
		return "", fmt.Errorf("%w: empty asset for %q", domain.ErrBadgeAssetMissing, badge)
	}

	return r.encoder.EncodeBase64(payload), nil
}

func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
