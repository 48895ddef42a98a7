// Package diary adapts the diary backend. Read operations degrade to an
// empty result on any failure; write operations surface the backend's
// message as a typed error. That asymmetry is the contract every caller
// relies on.
package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"haru-assistant/internal/dates"
	"haru-assistant/internal/envelope"
	"haru-assistant/internal/gateway"
	"haru-assistant/internal/session"
)

type Record struct {
	ID      int64  `json:"id,omitempty"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Emotion string `json:"emotion,omitempty"`
}

// Weekday derives the Korean day-of-week label from the record's date,
// empty when the date is not in canonical form.
func (r Record) Weekday() string {
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return ""
	}
	return dates.WeekdayLabel(t)
}

type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Search returns the user's diaries matching term in title or content,
// case-insensitively. An empty term means no filter. Never throws: any
// failure collapses to an empty slice with the cause logged.
func (s *Service) Search(ctx context.Context, sess session.Context, term string) []Record {
	all := s.ListByUser(ctx, sess)
	if strings.TrimSpace(term) == "" {
		return all
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []Record
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.Content), needle) {
			out = append(out, r)
		}
	}
	return out
}

// ListByUser fetches the user's diaries. Read path: empty on failure.
func (s *Service) ListByUser(ctx context.Context, sess session.Context) []Record {
	if sess.UserID == "" {
		return nil
	}
	q := url.Values{"userId": {sess.UserID}}
	return s.list(gateway.WithBearer(ctx, sess.BearerToken()), "/diary/list", q)
}

// ListAll fetches every diary visible to the assistant. Read path.
func (s *Service) ListAll(ctx context.Context, sess session.Context) []Record {
	return s.list(gateway.WithBearer(ctx, sess.BearerToken()), "/diary/all", nil)
}

func (s *Service) list(ctx context.Context, path string, q url.Values) []Record {
	raw, _, err := s.client.GetJSON(ctx, path, q)
	if err != nil {
		log.Printf("diary list via %s failed: %v", path, err)
		return nil
	}
	env, err := envelope.Normalize(raw)
	if err != nil || !env.OK {
		log.Printf("diary list via %s returned non-success: code=%d err=%v", path, env.Code, err)
		return nil
	}
	var out []Record
	for _, item := range env.Payload.Records() {
		var r Record
		if err := json.Unmarshal(item, &r); err != nil {
			log.Printf("diary record skipped, malformed: %v", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Save creates a diary. Write path: validation precedes any network
// call, and every backend failure is a typed error the caller must not
// swallow. A best-effort copy goes to the backup path; its outcome never
// affects the primary result.
func (s *Service) Save(ctx context.Context, sess session.Context, rec Record) (Record, error) {
	if err := sess.RequireUser(); err != nil {
		return Record{}, err
	}
	date, err := dates.Normalize(rec.Date)
	if err != nil {
		return Record{}, err
	}
	rec.Date = date
	rec.UserID = sess.UserID
	ctx = gateway.WithBearer(ctx, sess.BearerToken())

	saved, err := s.write(func() (json.RawMessage, int, error) {
		return s.client.PostJSON(ctx, "/diary/create", rec)
	}, rec)
	if err != nil {
		return Record{}, err
	}

	gateway.BestEffort("diary backup write", func() error {
		_, _, err := s.client.PostJSON(ctx, "/diary/backup", saved)
		return err
	})
	return saved, nil
}

// Update rewrites an existing diary. Write path.
func (s *Service) Update(ctx context.Context, sess session.Context, rec Record) (Record, error) {
	if err := sess.RequireUser(); err != nil {
		return Record{}, err
	}
	if rec.ID == 0 {
		return Record{}, gateway.NewError(gateway.KindValidation, 0, "수정할 일기를 찾을 수 없습니다")
	}
	date, err := dates.Normalize(rec.Date)
	if err != nil {
		return Record{}, err
	}
	rec.Date = date
	rec.UserID = sess.UserID
	ctx = gateway.WithBearer(ctx, sess.BearerToken())
	return s.write(func() (json.RawMessage, int, error) {
		return s.client.PutJSON(ctx, "/diary/update", rec)
	}, rec)
}

// Delete removes a diary by id. Write path.
func (s *Service) Delete(ctx context.Context, sess session.Context, id int64) error {
	if err := sess.RequireUser(); err != nil {
		return err
	}
	q := url.Values{"id": {fmt.Sprintf("%d", id)}, "userId": {sess.UserID}}
	raw, _, err := s.client.DeleteJSON(gateway.WithBearer(ctx, sess.BearerToken()), "/diary/delete", q)
	if err != nil {
		return err
	}
	env, err := envelope.Normalize(raw)
	if err != nil {
		return err
	}
	return envelope.Require(env)
}

// write runs one mutation and unwraps the echoed record when the backend
// returns one, else falls back to the submitted record.
func (s *Service) write(call func() (json.RawMessage, int, error), submitted Record) (Record, error) {
	raw, _, err := call()
	if err != nil {
		return Record{}, err
	}
	env, err := envelope.Normalize(raw)
	if err != nil {
		return Record{}, err
	}
	if err := envelope.Require(env); err != nil {
		return Record{}, err
	}
	if env.Payload.Kind == envelope.Single {
		var echoed Record
		if err := json.Unmarshal(env.Payload.One, &echoed); err == nil && echoed.Title != "" {
			return echoed, nil
		}
	}
	return submitted, nil
}
