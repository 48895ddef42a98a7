// Package calendar adapts the calendar backend's event and task paths.
// Same contract as the diary adapter: reads degrade to empty, writes
// fail loud with the backend message, validation precedes the network.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	"haru-assistant/internal/dates"
	"haru-assistant/internal/envelope"
	"haru-assistant/internal/gateway"
	"haru-assistant/internal/session"
)

type Event struct {
	ID       int64  `json:"id,omitempty"`
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Start    string `json:"startTime,omitempty"`
	End      string `json:"endTime,omitempty"`
	Location string `json:"location,omitempty"`
}

type Task struct {
	ID     int64  `json:"id,omitempty"`
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Done   bool   `json:"done"`
}

type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// EventsByUser lists all of the user's events. Read path.
func (s *Service) EventsByUser(ctx context.Context, sess session.Context) []Event {
	return listInto[Event](s, gateway.WithBearer(ctx, sess.BearerToken()), "/calendar/events", userQuery(sess))
}

// EventsByDate lists the user's events on one date. Read path; a bad
// date is logged and collapses to empty like any other read failure.
func (s *Service) EventsByDate(ctx context.Context, sess session.Context, date string) []Event {
	q, ok := dateQuery(sess, date, "event")
	if !ok {
		return nil
	}
	return listInto[Event](s, gateway.WithBearer(ctx, sess.BearerToken()), "/calendar/events/date", q)
}

// TasksByUser lists all of the user's tasks. Read path.
func (s *Service) TasksByUser(ctx context.Context, sess session.Context) []Task {
	return listInto[Task](s, gateway.WithBearer(ctx, sess.BearerToken()), "/calendar/tasks", userQuery(sess))
}

// TasksByDate lists the user's tasks on one date. Read path.
func (s *Service) TasksByDate(ctx context.Context, sess session.Context, date string) []Task {
	q, ok := dateQuery(sess, date, "task")
	if !ok {
		return nil
	}
	return listInto[Task](s, gateway.WithBearer(ctx, sess.BearerToken()), "/calendar/tasks/date", q)
}

// CreateEvent adds an event. Write path.
func (s *Service) CreateEvent(ctx context.Context, sess session.Context, ev Event) (Event, error) {
	ev, err := s.prepareEvent(sess, ev)
	if err != nil {
		return Event{}, err
	}
	ctx = gateway.WithBearer(ctx, sess.BearerToken())
	return writeInto(func() (json.RawMessage, int, error) {
		return s.client.PostJSON(ctx, "/calendar/events/create", ev)
	}, ev)
}

// UpdateEvent rewrites an event. Write path.
func (s *Service) UpdateEvent(ctx context.Context, sess session.Context, ev Event) (Event, error) {
	if ev.ID == 0 {
		return Event{}, gateway.NewError(gateway.KindValidation, 0, "수정할 일정을 찾을 수 없습니다")
	}
	ev, err := s.prepareEvent(sess, ev)
	if err != nil {
		return Event{}, err
	}
	ctx = gateway.WithBearer(ctx, sess.BearerToken())
	return writeInto(func() (json.RawMessage, int, error) {
		return s.client.PutJSON(ctx, "/calendar/events/update", ev)
	}, ev)
}

// DeleteEvent removes an event. Write path.
func (s *Service) DeleteEvent(ctx context.Context, sess session.Context, id int64) error {
	return s.deleteByID(ctx, sess, "/calendar/events/delete", id)
}

// CreateTask adds a task. Write path.
func (s *Service) CreateTask(ctx context.Context, sess session.Context, task Task) (Task, error) {
	task, err := s.prepareTask(sess, task)
	if err != nil {
		return Task{}, err
	}
	ctx = gateway.WithBearer(ctx, sess.BearerToken())
	return writeInto(func() (json.RawMessage, int, error) {
		return s.client.PostJSON(ctx, "/calendar/tasks/create", task)
	}, task)
}

// UpdateTask rewrites a task. Write path.
func (s *Service) UpdateTask(ctx context.Context, sess session.Context, task Task) (Task, error) {
	if task.ID == 0 {
		return Task{}, gateway.NewError(gateway.KindValidation, 0, "수정할 할 일을 찾을 수 없습니다")
	}
	task, err := s.prepareTask(sess, task)
	if err != nil {
		return Task{}, err
	}
	ctx = gateway.WithBearer(ctx, sess.BearerToken())
	return writeInto(func() (json.RawMessage, int, error) {
		return s.client.PutJSON(ctx, "/calendar/tasks/update", task)
	}, task)
}

// DeleteTask removes a task. Write path.
func (s *Service) DeleteTask(ctx context.Context, sess session.Context, id int64) error {
	return s.deleteByID(ctx, sess, "/calendar/tasks/delete", id)
}

// ToggleTask flips a task's completion flag. Write path.
func (s *Service) ToggleTask(ctx context.Context, sess session.Context, id int64) (Task, error) {
	if err := sess.RequireUser(); err != nil {
		return Task{}, err
	}
	if id == 0 {
		return Task{}, gateway.NewError(gateway.KindValidation, 0, "완료 처리할 할 일을 찾을 수 없습니다")
	}
	body := map[string]any{"id": id, "userId": sess.UserID}
	ctx = gateway.WithBearer(ctx, sess.BearerToken())
	return writeInto(func() (json.RawMessage, int, error) {
		return s.client.PutJSON(ctx, "/calendar/tasks/toggle", body)
	}, Task{ID: id, UserID: sess.UserID})
}

func (s *Service) prepareEvent(sess session.Context, ev Event) (Event, error) {
	if err := sess.RequireUser(); err != nil {
		return Event{}, err
	}
	date, err := dates.Normalize(ev.Date)
	if err != nil {
		return Event{}, err
	}
	ev.Date = date
	if ev.Start != "" {
		if ev.Start, err = dates.NormalizeClock(ev.Start); err != nil {
			return Event{}, err
		}
	}
	if ev.End != "" {
		if ev.End, err = dates.NormalizeClock(ev.End); err != nil {
			return Event{}, err
		}
	}
	ev.UserID = sess.UserID
	return ev, nil
}

func (s *Service) prepareTask(sess session.Context, task Task) (Task, error) {
	if err := sess.RequireUser(); err != nil {
		return Task{}, err
	}
	date, err := dates.Normalize(task.Date)
	if err != nil {
		return Task{}, err
	}
	task.Date = date
	task.UserID = sess.UserID
	return task, nil
}

func (s *Service) deleteByID(ctx context.Context, sess session.Context, path string, id int64) error {
	if err := sess.RequireUser(); err != nil {
		return err
	}
	q := url.Values{"id": {fmt.Sprintf("%d", id)}, "userId": {sess.UserID}}
	raw, _, err := s.client.DeleteJSON(gateway.WithBearer(ctx, sess.BearerToken()), path, q)
	if err != nil {
		return err
	}
	env, err := envelope.Normalize(raw)
	if err != nil {
		return err
	}
	return envelope.Require(env)
}

func userQuery(sess session.Context) url.Values {
	if sess.UserID == "" {
		return nil
	}
	return url.Values{"userId": {sess.UserID}}
}

func dateQuery(sess session.Context, date, kind string) (url.Values, bool) {
	normalized, err := dates.Normalize(date)
	if err != nil {
		log.Printf("calendar %s list skipped, bad date %q: %v", kind, date, err)
		return nil, false
	}
	q := userQuery(sess)
	if q == nil {
		q = url.Values{}
	}
	q.Set("date", normalized)
	return q, true
}

func listInto[T any](s *Service, ctx context.Context, path string, q url.Values) []T {
	raw, _, err := s.client.GetJSON(ctx, path, q)
	if err != nil {
		log.Printf("calendar list via %s failed: %v", path, err)
		return nil
	}
	env, err := envelope.Normalize(raw)
	if err != nil || !env.OK {
		log.Printf("calendar list via %s returned non-success: code=%d err=%v", path, env.Code, err)
		return nil
	}
	var out []T
	for _, item := range env.Payload.Records() {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			log.Printf("calendar record skipped, malformed: %v", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func writeInto[T any](call func() (json.RawMessage, int, error), submitted T) (T, error) {
	var zero T
	raw, _, err := call()
	if err != nil {
		return zero, err
	}
	env, err := envelope.Normalize(raw)
	if err != nil {
		return zero, err
	}
	if err := envelope.Require(env); err != nil {
		return zero, err
	}
	if env.Payload.Kind == envelope.Single {
		var echoed T
		if err := json.Unmarshal(env.Payload.One, &echoed); err == nil {
			return echoed, nil
		}
	}
	return submitted, nil
}
