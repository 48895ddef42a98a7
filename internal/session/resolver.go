package session

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"haru-assistant/internal/envelope"
	"haru-assistant/internal/gateway"
)

// Profile is the minimal identity record the assistant needs.
type Profile struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Provider string `json:"provider"`
}

// Resolver resolves a user profile by walking a list of identity-provider
// endpoints. Attempts are strictly sequential: the next endpoint is only
// tried after the previous response is known to be non-success, and a
// client-class rejection stops the chain outright.
type Resolver struct {
	client *gateway.Client
	paths  []string
}

func NewResolver(client *gateway.Client, paths []string) *Resolver {
	if len(paths) == 0 {
		paths = []string{"/auth/profile", "/auth/kakao/profile", "/auth/google/profile"}
	}
	return &Resolver{client: client, paths: paths}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (Profile, error) {
	q := url.Values{}
	if token != "" {
		q.Set("token", token)
	}

	var lastErr error
	for _, path := range r.paths {
		raw, status, err := r.client.GetJSON(ctx, path, q)
		if err != nil {
			lastErr = err
			log.Printf("profile lookup via %s failed: %v", path, err)
			continue
		}
		if status >= 400 && status < 500 {
			// the credential itself was rejected; other providers
			// will not change that
			return Profile{}, gateway.NewError(gateway.KindValidation, status, "로그인이 필요합니다")
		}
		env, err := envelope.Normalize(raw)
		if err != nil || !env.OK {
			lastErr = err
			if lastErr == nil {
				lastErr = envelope.Require(env)
			}
			log.Printf("profile lookup via %s returned non-success: %v", path, lastErr)
			continue
		}
		var p Profile
		if env.Payload.Kind == envelope.Single {
			if err := json.Unmarshal(env.Payload.One, &p); err == nil && p.UserID != "" {
				return p, nil
			}
		}
		lastErr = gateway.NewError(gateway.KindDecode, status, "profile record is malformed")
	}
	if lastErr == nil {
		lastErr = gateway.NewError(gateway.KindTransport, 0, "no identity provider responded")
	}
	return Profile{}, lastErr
}
