package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetUserID resolves a login to its user id. Results are cached.
func (t *Twitch) GetUserID(ctx context.Context, login string) (string, error) {
	login = strings.ToLower(strings.TrimPrefix(login, "#"))
	if login == "" {
		return "", fmt.Errorf("%w: empty login", ErrBadRequest)
	}

	return t.users.Load(ctx, login, func(ctx context.Context, login string) (string, error) {
		var userResp UserResponse
		if _, err := t.doTwitchRequest(ctx, twitchRequest{
			Method: "GET",
			URL:    t.baseURL + "/users?login=" + url.QueryEscape(login),
		}, &userResp); err != nil {
			return "", err
		}

		if len(userResp.Data) == 0 {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, login)
		}
		return userResp.Data[0].ID, nil
	})
}
