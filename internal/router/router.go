// Package router turns one classified input into exactly one response.
// A dispatch runs Idle -> Classifying -> Dispatching -> Formatting ->
// Idle with no overlap; submissions are serialized, and every dispatch
// ends with exactly one appended interaction, success or not.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"haru-assistant/internal/calendar"
	"haru-assistant/internal/classify"
	"haru-assistant/internal/dates"
	"haru-assistant/internal/diary"
	"haru-assistant/internal/gateway"
	"haru-assistant/internal/history"
	"haru-assistant/internal/llm"
	"haru-assistant/internal/session"
	"haru-assistant/internal/speech"
	"haru-assistant/internal/sports"
	"haru-assistant/internal/storage"
	"haru-assistant/internal/weather"
)

const recentDiaryLimit = 5

type Deps struct {
	Diary    *diary.Service
	Calendar *calendar.Service
	Weather  *weather.Service
	Sports   *sports.Service
	Chat     llm.Client
	History  *history.Manager
	Recorder storage.Recorder // optional, best-effort
	Voice    speech.Sink      // optional, fire-and-forget
}

type Router struct {
	mu   sync.Mutex
	deps Deps
}

func New(deps Deps) *Router {
	return &Router{deps: deps}
}

// ResetContext drops the user's conversation history.
func (r *Router) ResetContext(userID int64) {
	r.deps.History.Reset(userID)
}

// Log returns the user's full display log.
func (r *Router) Log(userID int64) []history.Interaction {
	return r.deps.History.All(userID)
}

// Dispatch processes one submission end to end. Adapter failures are
// converted into user-visible text here; the state machine never stays
// stuck in Dispatching and the caller always gets a completed
// interaction back.
func (r *Router) Dispatch(ctx context.Context, userID int64, sess session.Context, text string) history.Interaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := classify.Classify(text)
	log.Printf("dispatch user=%d category=%s argument=%q", userID, res.Category, res.Argument)

	response, advisory := r.run(ctx, userID, sess, res)

	it := r.deps.History.Append(userID, history.Interaction{
		Input:         text,
		Categories:    []string{string(res.Category)},
		Response:      response,
		AdvisoryLabel: advisory,
	})

	if r.deps.Recorder != nil {
		gateway.BestEffort("interaction recording", func() error {
			return r.deps.Recorder.AppendInteraction(storage.Event{
				Timestamp:  time.Now().UTC(),
				UserID:     userID,
				Input:      text,
				Categories: it.Categories,
				Response:   response,
			})
		})
	}
	if r.deps.Voice != nil {
		gateway.BestEffort("voice output", func() error {
			return r.deps.Voice.Speak(response)
		})
	}
	return it
}

// run selects exactly one adapter call for the classified category and
// formats its outcome.
func (r *Router) run(ctx context.Context, userID int64, sess session.Context, res classify.Result) (response, advisory string) {
	switch res.Category {
	case classify.CategoryDiarySearch:
		recs := r.deps.Diary.Search(ctx, sess, res.Argument)
		return formatDiaryList(recs), ""

	case classify.CategoryDiaryWrite:
		rec := diary.Record{
			Title:   deriveTitle(res.Argument),
			Content: res.Argument,
			Date:    dates.Today(),
		}
		saved, err := r.deps.Diary.Save(ctx, sess, rec)
		if err != nil {
			log.Printf("diary write failed: %v", err)
			return "일기를 저장하지 못했어요: " + gateway.UserMessage(err, "잠시 후 다시 시도해 주세요"), ""
		}
		return fmt.Sprintf("일기를 저장했어요: %s (%s)", saved.Title, saved.Date), ""

	case classify.CategorySports:
		groups := r.deps.Sports.Search(ctx, res.Argument)
		return formatSports(groups), ""

	case classify.CategoryWeather:
		f, ok := r.deps.Weather.MidRange(ctx, res.Argument)
		if !ok {
			return "날씨 정보를 가져오지 못했어요.", ""
		}
		return formatForecast(f), ""

	default:
		return r.runChat(ctx, userID, sess, res)
	}
}

func (r *Router) runChat(ctx context.Context, userID int64, sess session.Context, res classify.Result) (response, advisory string) {
	msgs := r.chatContext(ctx, userID, sess)
	msgs = append(msgs, llm.Message{Role: "user", Content: res.Argument})

	resp, err := r.deps.Chat.Generate(ctx, msgs)
	if err != nil {
		log.Printf("chat generate failed: %v", err)
		return "지금은 답변을 만들 수 없어요. 잠시 후 다시 시도해 주세요.", ""
	}

	// The backend's classification of the turn is telemetry only. When
	// it disagrees with the keyword decision it is logged and stored,
	// and the keyword decision still stands; metadata never triggers a
	// write or delete on its own.
	if c := resp.Classification; c != nil {
		advisory = c.Label
		log.Printf("chat backend classified turn as %q (confidence %.2f)", c.Label, c.Confidence)
		if c.Label != string(res.Category) {
			log.Printf("backend classification %q contradicts keyword category %q; keyword decision wins", c.Label, res.Category)
		}
	}
	return resp.Content, advisory
}

// chatContext assembles the bounded grounding for a chat turn: a system
// preamble summarizing recent diaries and today's calendar, then the
// last few exchanges as alternating turns.
func (r *Router) chatContext(ctx context.Context, userID int64, sess session.Context) []llm.Message {
	var sb strings.Builder
	sb.WriteString("너는 사용자의 하루를 아는 개인 비서야. 짧고 다정하게 한국어로 답해.\n")

	if recs := r.deps.Diary.ListByUser(ctx, sess); len(recs) > 0 {
		sortByDateDesc(recs)
		if len(recs) > recentDiaryLimit {
			recs = recs[:recentDiaryLimit]
		}
		sb.WriteString("최근 일기:\n")
		for _, rec := range recs {
			sb.WriteString(fmt.Sprintf("- %s %s\n", rec.Date, rec.Title))
		}
	}
	if r.deps.Calendar != nil {
		today := dates.Today()
		for _, ev := range r.deps.Calendar.EventsByDate(ctx, sess, today) {
			sb.WriteString(fmt.Sprintf("오늘 일정: %s %s\n", ev.Start, ev.Title))
		}
		for _, task := range r.deps.Calendar.TasksByDate(ctx, sess, today) {
			if !task.Done {
				sb.WriteString(fmt.Sprintf("오늘 할 일: %s\n", task.Title))
			}
		}
	}

	msgs := []llm.Message{{Role: "system", Content: sb.String()}}
	return append(msgs, r.deps.History.ContextTurns(userID)...)
}

func deriveTitle(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) > 20 {
		runes = runes[:20]
	}
	if len(runes) == 0 {
		return "오늘의 일기"
	}
	return string(runes)
}
