// Package bot implements the Telegram command surface of the weather alert
// bot: a long-polling update loop and the dispatcher that maps chat commands
// to tracking-state toggles and on-demand market snapshots.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
	"github.com/Teeee306/PM-alert-bot3/internal/tracker"
)

// pollTimeout is the long-poll timeout passed to getUpdates, in seconds.
const pollTimeout = 30

// Bot handles inbound Telegram commands. Replies go to the chat the command
// came from; scheduled alerts are delivered separately by the notifier.
type Bot struct {
	api     *tgbotapi.BotAPI
	monitor *tracker.Monitor
	tracker *tracker.Tracker
	logger  *slog.Logger
}

// New creates a Bot on top of an authenticated Telegram API client.
func New(api *tgbotapi.BotAPI, monitor *tracker.Monitor, trk *tracker.Tracker, logger *slog.Logger) *Bot {
	return &Bot{
		api:     api,
		monitor: monitor,
		tracker: trk,
		logger:  logger.With(slog.String("component", "bot")),
	}
}

// Run consumes Telegram updates until the context is cancelled. Update fetch
// failures are logged and retried after a short pause; a 409 response means
// another instance is polling the same token and is downgraded to an operator
// warning rather than crashing the process.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.InfoContext(ctx, "telegram bot connected",
		slog.String("username", b.api.Self.UserName),
	)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := b.api.GetUpdates(cfg)
		if err != nil {
			if isPollingConflict(err) {
				b.logger.WarnContext(ctx, "polling conflict: another bot instance is consuming updates; wait a few seconds and restart")
			} else {
				b.logger.ErrorContext(ctx, "get updates failed",
					slog.String("error", err.Error()),
				)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= cfg.Offset {
				cfg.Offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage dispatches a single inbound message. Non-commands, unknown
// commands, and commands with an unrecognized station argument get no reply.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	command := strings.ToLower(msg.Command())
	args := msg.CommandArguments()
	chatID := msg.Chat.ID

	b.logger.DebugContext(ctx, "command received",
		slog.String("command", command),
		slog.String("args", args),
		slog.Int64("chat_id", chatID),
	)

	switch command {
	case "start":
		b.cmdStart(ctx, chatID)
	case "alert":
		if station, ok := domain.ParseStation(args); ok {
			b.cmdAlert(ctx, chatID, station)
		}
	case "stop":
		if station, ok := domain.ParseStation(args); ok {
			b.cmdStop(ctx, chatID, station)
		}
	case "current":
		if station, ok := domain.ParseStation(args); ok {
			b.cmdCurrent(ctx, chatID, station)
		}
	case "resolve":
		b.cmdResolve(ctx, chatID)
	case "streak":
		if station, ok := domain.ParseStation(args); ok {
			b.cmdStreak(ctx, chatID, station)
		}
	case "help":
		b.cmdHelp(ctx, chatID)
	}
}

// reply sends a plain-text response to the chat a command came from. Delivery
// failures are logged and swallowed.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.ErrorContext(ctx, "reply failed",
			slog.String("error", err.Error()),
		)
	}
}

// isPollingConflict reports whether err is the Telegram 409 returned when two
// bot instances poll the same token.
func isPollingConflict(err error) bool {
	var tgErr *tgbotapi.Error
	return errors.As(err, &tgErr) && tgErr.Code == http.StatusConflict
}
