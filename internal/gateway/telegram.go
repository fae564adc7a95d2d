package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smehra/bookwise/internal/pipeline"
	"github.com/smehra/bookwise/internal/provider"
)

// TelegramGateway treats every incoming message as a book request and
// replies with the presentation list. The configured provider key is used;
// there is no per-chat key entry.
type TelegramGateway struct {
	Bot *tgbotapi.BotAPI
	Svc Recommender
}

func NewTelegramGateway(token string, svc Recommender) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot: bot,
		Svc: svc,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		state, err := tg.Svc.Recommend(context.Background(), "", update.Message.Text)
		reply := formatReply(state, err)

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
		if _, err := tg.Bot.Send(msg); err != nil {
			log.Printf("failed to send reply: %v", err)
		}
	}
	return nil
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

func formatReply(state *pipeline.RunState, err error) string {
	switch {
	case errors.Is(err, provider.ErrMissingKey):
		return "No API key is configured for the model provider. Ask the operator to set one."
	case err != nil:
		var initErr *provider.InitError
		if errors.As(err, &initErr) {
			return fmt.Sprintf("Could not initialize the model: %v", initErr.Err)
		}
		return fmt.Sprintf("The run failed: %v", err)
	case len(state.Presentation) == 0:
		return "No recommendations found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %s picks:\n", state.Genre)
	for i, title := range state.Presentation {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	return strings.TrimRight(b.String(), "\n")
}
