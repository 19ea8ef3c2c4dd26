package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
)

const helpText = `Available commands:
/alert london - start tracking London
/alert nyc - start tracking NYC
/stop london - stop tracking London
/stop nyc - stop tracking NYC
/current london - show current top 3 London options
/current nyc - show current top 3 NYC options
/resolve - show resolved outcome
/streak london - show recent winners for London
/streak nyc - show recent winners for NYC
/help - show this help`

// commandKeyboard is the persistent reply keyboard offered by /start.
func commandKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/alert london"),
			tgbotapi.NewKeyboardButton("/alert nyc"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/stop london"),
			tgbotapi.NewKeyboardButton("/stop nyc"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/current london"),
			tgbotapi.NewKeyboardButton("/current nyc"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/resolve"),
			tgbotapi.NewKeyboardButton("/streak london"),
			tgbotapi.NewKeyboardButton("/streak nyc"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
	keyboard.OneTimeKeyboard = false
	return keyboard
}

func (b *Bot) cmdStart(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Hi! Use the buttons below or type commands:")
	msg.ReplyMarkup = commandKeyboard()
	b.send(ctx, msg)
}

// cmdAlert turns tracking on and immediately runs one check cycle so the
// first price baseline is recorded without waiting for the next tick.
func (b *Bot) cmdAlert(ctx context.Context, chatID int64, station domain.Station) {
	b.tracker.SetTracking(station, true)
	b.reply(ctx, chatID, fmt.Sprintf("✅ Now tracking %s weather markets!", station.Name()))

	if err := b.monitor.Check(ctx, station); err != nil {
		b.logger.ErrorContext(ctx, "immediate check failed",
			slog.String("station", string(station)),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) cmdStop(ctx context.Context, chatID int64, station domain.Station) {
	b.tracker.SetTracking(station, false)
	b.reply(ctx, chatID, fmt.Sprintf("⏹ Stopped tracking %s.", station.Name()))
}

func (b *Bot) cmdCurrent(ctx context.Context, chatID int64, station domain.Station) {
	lines, err := b.monitor.Current(ctx, station)
	if err != nil {
		b.logger.WarnContext(ctx, "current snapshot unavailable",
			slog.String("station", string(station)),
			slog.String("error", err.Error()),
		)
		b.reply(ctx, chatID, fmt.Sprintf("No market found for %s today.", station.Name()))
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("[%s] %s", station.Label(), strings.Join(lines, ", ")))
}

func (b *Bot) cmdResolve(ctx context.Context, chatID int64) {
	lines := make([]string, 0, len(domain.Stations()))
	for _, station := range domain.Stations() {
		line, err := b.monitor.Resolution(ctx, station)
		if err != nil {
			b.logger.WarnContext(ctx, "resolution lookup failed",
				slog.String("station", string(station)),
				slog.String("error", err.Error()),
			)
			line = fmt.Sprintf("[%s] No market found", station.Label())
		}
		lines = append(lines, line)
	}
	b.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdStreak(ctx context.Context, chatID int64, station domain.Station) {
	records := b.tracker.RecentWinners(station)
	if len(records) == 0 {
		b.reply(ctx, chatID, fmt.Sprintf("No streak data for %s yet.", station.Name()))
		return
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, fmt.Sprintf("[%s] last %d results:", station.Label(), len(records)))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Date, r.Winner))
	}
	b.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdHelp(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, helpText)
}
