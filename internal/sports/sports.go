// Package sports adapts the soccer-data backend. One keyword query comes
// back as result groups keyed by entity kind; every group is optional
// and independently capped for display.
package sports

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"

	"haru-assistant/internal/envelope"
	"haru-assistant/internal/gateway"
)

type Player struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`
}

type Team struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

type Stadium struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type Match struct {
	Home string `json:"home"`
	Away string `json:"away"`
	Date string `json:"date"`
}

// Groups holds the per-kind results; any group may be absent.
type Groups struct {
	Players   []Player  `json:"players"`
	Teams     []Team    `json:"teams"`
	Stadiums  []Stadium `json:"stadiums"`
	Schedules []Match   `json:"schedules"`
}

func (g Groups) Empty() bool {
	return len(g.Players) == 0 && len(g.Teams) == 0 && len(g.Stadiums) == 0 && len(g.Schedules) == 0
}

type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Search queries the soccer backend by a single keyword. Read path:
// failures collapse to empty groups with the cause logged.
func (s *Service) Search(ctx context.Context, keyword string) Groups {
	keyword = strings.TrimSpace(keyword)
	q := url.Values{"keyword": {keyword}}
	raw, _, err := s.client.GetJSON(ctx, "/soccer/search", q)
	if err != nil {
		log.Printf("sports search for %q failed: %v", keyword, err)
		return Groups{}
	}
	env, err := envelope.Normalize(raw)
	if err != nil || !env.OK {
		log.Printf("sports search for %q returned non-success: code=%d err=%v", keyword, env.Code, err)
		return Groups{}
	}
	if env.Payload.Kind != envelope.Single {
		log.Printf("sports payload for %q has unexpected shape (kind=%d)", keyword, env.Payload.Kind)
		return Groups{}
	}
	var g Groups
	if err := json.Unmarshal(env.Payload.One, &g); err != nil {
		log.Printf("sports payload malformed: %v", err)
		return Groups{}
	}
	return g
}
