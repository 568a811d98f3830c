package main

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// telegramMaxMessage is the Bot API limit on message text length.
const telegramMaxMessage = 4096

const notAllowedReply = "Sorry, this bot is private."

// runTelegram long-polls for updates and answers each message in its own
// goroutine until ctx is done.
func runTelegram(ctx context.Context, token string, allowed userFilter, a answerer, toolNames []string) error {
	log := zerolog.Ctx(ctx)

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	log.Info().Str("account", bot.Self.UserName).Msg("authorized on telegram")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("bot stopped")
			return nil
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			go func(message *tgbotapi.Message) {
				reply := replyTo(ctx, a, allowed, toolNames, message)
				msg := tgbotapi.NewMessage(message.Chat.ID, reply)
				msg.ReplyToMessageID = message.MessageID
				if _, err := bot.Send(msg); err != nil {
					log.Error().Err(err).Msg("error sending message")
				}
			}(update.Message)
		}
	}
}

func userName(message *tgbotapi.Message) string {
	if message.From == nil {
		return ""
	}
	return message.From.UserName
}

// userFilter admits chat users by username or numeric ID. An empty filter
// admits everyone.
type userFilter map[string]struct{}

func newUserFilter(entries []string) userFilter {
	f := userFilter{}
	for _, e := range entries {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "@"))
		if e != "" {
			f[e] = struct{}{}
		}
	}
	return f
}

func (f userFilter) allows(user *tgbotapi.User) bool {
	if len(f) == 0 {
		return true
	}
	if user == nil {
		return false
	}
	if _, ok := f[strconv.FormatInt(user.ID, 10)]; ok {
		return true
	}
	if user.UserName == "" {
		return false
	}
	_, ok := f[strings.ToLower(user.UserName)]
	return ok
}

// replyTo answers one update, turning away users the filter does not admit.
func replyTo(ctx context.Context, a answerer, allowed userFilter, toolNames []string, message *tgbotapi.Message) string {
	if !allowed.allows(message.From) {
		zerolog.Ctx(ctx).Warn().Str("user", userName(message)).Msg("message from unlisted user")
		return notAllowedReply
	}
	return handleMessage(ctx, a, toolNames, message.Command(), message.Text, userName(message))
}

// handleMessage produces the reply to one chat message. command is the bot
// command without the slash, empty for plain text.
func handleMessage(ctx context.Context, a answerer, toolNames []string, command, text, user string) string {
	log := zerolog.Ctx(ctx)
	log.Info().Str("user", user).Str("command", command).Msg("message received")

	var reply string
	switch command {
	case "start":
		reply = "👋 Hello! I'm a tool-using assistant.\n\n" +
			"I can use: " + strings.Join(toolNames, ", ") + ".\n\n" +
			"Ask me anything, or send /help."

	case "help":
		reply = "Available commands:\n" +
			"/start - Start the bot\n" +
			"/help - Show this help message\n\n" +
			"Or just ask me things like:\n" +
			"• \"What's the weather in Paris?\"\n" +
			"• \"What is sqrt(2) * pi?\"\n" +
			"• \"Summarize https://example.com\""

	case "":
		if strings.TrimSpace(text) == "" {
			return "Please send a text question."
		}
		res, err := a.Run(ctx, text)
		if err != nil {
			log.Error().Err(err).Msg("agent error")
			reply = "Sorry, I couldn't process that. Please try again."
		} else {
			reply = res.Output
		}

	default:
		reply = "Unknown command. Try /help"
	}

	if reply == "" {
		reply = "(no answer)"
	}
	return truncateMessage(reply)
}

func truncateMessage(s string) string {
	runes := []rune(s)
	if len(runes) <= telegramMaxMessage {
		return s
	}
	return string(runes[:telegramMaxMessage-3]) + "..."
}
