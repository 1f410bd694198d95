package telegram

import (
	"context"
	"strconv"

	"whoseonfirst/internal/domain/transport"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the transport.Client interface using the
// gopkg.in/telebot.v3 library. The address is a Telegram chat ID; teams
// that prefer DMs over SMS select this channel in configuration.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// Send delivers one message to the chat identified by address.
func (tba *TelebotAdapter) Send(ctx context.Context, address, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chatID, err := strconv.ParseInt(address, 10, 64)
	if err != nil {
		return "", &transport.Error{Message: "address is not a telegram chat id: " + address, Retryable: false}
	}

	msg, err := tba.bot.Send(&telebot.User{ID: chatID}, body, &telebot.SendOptions{})
	if err != nil {
		return "", &transport.Error{Message: err.Error(), Retryable: true}
	}
	return strconv.Itoa(msg.ID), nil
}
