package telegram

import (
	"context"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"haru-assistant/internal/router"
	"haru-assistant/internal/session"
)

const resetCmd = "reset_ctx"

type Bot struct {
	api      *tgbotapi.BotAPI
	s        Sender
	allowed  map[int64]bool
	router   *router.Router
	resolver *session.Resolver
	gwToken  string

	mu       sync.Mutex
	sessions map[int64]session.Context
}

// New builds the bot. resolver and gwToken are optional: with them the
// first message from a user resolves a backend profile and every adapter
// call carries the gateway credential; without them the Telegram id is
// the user identity.
func New(botToken string, allowedUsers []int64, r *router.Router, resolver *session.Resolver, gwToken string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}
	return &Bot{
		api:      api,
		s:        api,
		allowed:  allowed,
		router:   r,
		resolver: resolver,
		gwToken:  gwToken,
		sessions: make(map[int64]session.Context),
	}, nil
}

// sessionFor returns the user's session, resolving the backend profile
// on first contact. A failed resolution falls back to the Telegram
// identity without being cached, so the next message retries.
func (b *Bot) sessionFor(ctx context.Context, telegramID int64) session.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sess, ok := b.sessions[telegramID]; ok {
		return sess
	}

	sess := session.Context{UserID: strconv.FormatInt(telegramID, 10)}
	if b.gwToken != "" {
		sess.Token = session.StaticToken(b.gwToken)
	}
	if b.resolver != nil {
		p, err := b.resolver.Resolve(ctx, b.gwToken)
		if err != nil {
			log.Printf("profile resolution for %d failed, using telegram identity: %v", telegramID, err)
			return sess
		}
		sess.UserID = p.UserID
	}
	b.sessions[telegramID] = sess
	return sess
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update.Message)
			continue
		}
		if update.CallbackQuery != nil {
			b.handleCallback(update.CallbackQuery)
			continue
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if len(b.allowed) > 0 && !b.allowed[msg.From.ID] {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "접근 권한이 없습니다")
		return
	}

	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	sess := b.sessionFor(ctx, msg.From.ID)
	it := b.router.Dispatch(ctx, msg.From.ID, sess, msg.Text)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("대화 초기화", resetCmd),
		),
	)
	msgOut := tgbotapi.NewMessage(msg.Chat.ID, it.Response)
	msgOut.ReplyMarkup = kb
	if _, err := b.s.Send(msgOut); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Data == resetCmd {
		b.router.ResetContext(cb.From.ID)
		edit := tgbotapi.NewMessage(cb.Message.Chat.ID, "대화를 초기화했어요")
		if _, err := b.s.Send(edit); err != nil {
			log.Printf("failed to send reset confirmation: %v", err)
		}
		return
	}
}

// SendTo pushes text to a chat outside the dispatch loop; the daily
// briefing uses this.
func (b *Bot) SendTo(chatID int64, text string) {
	b.sendMessage(chatID, text)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
