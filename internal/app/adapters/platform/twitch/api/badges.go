package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const maxBadgeSize = 256 << 10

// GetBadges returns the global badge sets, or the channel's own sets when
// broadcasterID is set.
func (t *Twitch) GetBadges(ctx context.Context, broadcasterID string) ([]BadgeSet, error) {
	u := t.baseURL + "/chat/badges/global"
	if broadcasterID != "" {
		u = t.baseURL + "/chat/badges?broadcaster_id=" + url.QueryEscape(broadcasterID)
	}

	var resp BadgesResponse
	if _, err := t.doTwitchRequest(ctx, twitchRequest{Method: "GET", URL: u}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SyncBadges stores one base64 image per badge set as <dir>/<set_id>.txt.
// Channel badges replace global ones with the same set id. Existing files
// are left alone. It returns the number of files written.
func (t *Twitch) SyncBadges(ctx context.Context, dir, broadcasterID string) (int, error) {
	sets, err := t.GetBadges(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("global badges: %w", err)
	}

	globalCount := len(sets)
	overrides := map[string]bool{}
	if broadcasterID != "" {
		channel, err := t.GetBadges(ctx, broadcasterID)
		if err != nil {
			t.log.Warn("Failed to get channel badges", slog.String("error", err.Error()))
		}
		for _, s := range channel {
			overrides[s.SetID] = true
		}
		sets = append(sets, channel...)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		written int
		errs    []error
	)

	for i, set := range sets {
		// Skip the global copy of a set the channel overrides.
		if overrides[set.SetID] && i < globalCount {
			continue
		}

		version, ok := pickVersion(set)
		if !ok || !validSetID(set.SetID) {
			continue
		}

		path := filepath.Join(dir, set.SetID+".txt")
		if _, err := os.Stat(path); err == nil && !overrides[set.SetID] {
			continue
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return written, err
		}

		wg.Add(1)
		err := t.pool.Submit(func() {
			defer wg.Done()

			err := t.downloadBadge(ctx, version.ImageURL1x, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("badge %s: %w", set.SetID, err))
				return
			}
			written++
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return written, err
		}
	}

	wg.Wait()
	t.log.Info("Badges synced", slog.Int("written", written), slog.Int("failed", len(errs)))
	return written, errors.Join(errs...)
}

// pickVersion prefers version "1", falling back to the first one listed.
func pickVersion(set BadgeSet) (BadgeVersion, bool) {
	if len(set.Versions) == 0 {
		return BadgeVersion{}, false
	}
	for _, v := range set.Versions {
		if v.ID == "1" {
			return v, true
		}
	}
	return set.Versions[0], true
}

func validSetID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (t *Twitch) downloadBadge(ctx context.Context, imageURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBadgeSize))
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(base64.StdEncoding.EncodeToString(raw)), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
