package app

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Teeee306/PM-alert-bot3/internal/bot"
	"github.com/Teeee306/PM-alert-bot3/internal/config"
	"github.com/Teeee306/PM-alert-bot3/internal/notify"
	"github.com/Teeee306/PM-alert-bot3/internal/platform/polymarket"
	"github.com/Teeee306/PM-alert-bot3/internal/scheduler"
	"github.com/Teeee306/PM-alert-bot3/internal/server"
	"github.com/Teeee306/PM-alert-bot3/internal/server/handler"
	"github.com/Teeee306/PM-alert-bot3/internal/tracker"
)

// Dependencies bundles every component the application runs. It is
// constructed by Wire.
type Dependencies struct {
	Tracker   *tracker.Tracker
	Monitor   *tracker.Monitor
	Bot       *bot.Bot
	Scheduler *scheduler.Scheduler
	Server    *server.Server // nil when the HTTP server is disabled
}

// Wire constructs all concrete dependency implementations from the given
// configuration. Creating the Telegram client authenticates the bot token, so
// an invalid token fails here rather than at first send.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	gamma := polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("app: telegram auth: %w", err)
	}

	trk := tracker.NewTracker(logger)

	notifier := notify.NewNotifier(
		[]notify.Sender{notify.NewTelegramSender(api, cfg.Telegram.ChatID)},
		cfg.Notify.Events,
		logger,
	)

	monitor := tracker.NewMonitor(gamma, trk, notifier, logger)

	// Validated by config.Validate, so these cannot fail here.
	refreshHour, refreshMin, err := cfg.Tracker.RefreshClock()
	if err != nil {
		return nil, fmt.Errorf("app: refresh time: %w", err)
	}
	loc, err := cfg.Tracker.Location()
	if err != nil {
		return nil, fmt.Errorf("app: timezone: %w", err)
	}

	deps := &Dependencies{
		Tracker:   trk,
		Monitor:   monitor,
		Bot:       bot.New(api, monitor, trk, logger),
		Scheduler: scheduler.New(monitor, cfg.Tracker.PollInterval.Duration, refreshHour, refreshMin, loc, logger),
	}

	if cfg.Server.Enabled {
		deps.Server = server.NewServer(
			server.Config{Port: cfg.Server.Port},
			server.Handlers{
				Health: handler.NewHealthHandler(),
				Status: handler.NewStatusHandler(trk),
			},
			logger,
		)
	}

	return deps, nil
}
