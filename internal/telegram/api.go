package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender abstracts the outgoing half of the Telegram API so handlers
// can be exercised with a fake in tests.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
