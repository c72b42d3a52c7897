package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"giveaway-grid/config"
	"giveaway-grid/fetcher"
	"giveaway-grid/results"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "Commands:\n" +
	"/start - Start the bot\n" +
	"/help - Show this help\n" +
	"/giveaways N - Fetch giveaways from the first N pages\n\n" +
	"You can also just send me a number of pages."

// Bot serves giveaway results to Telegram chats, one controller per chat
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	cfg     *config.Config
	fetcher fetcher.Fetcher
	logger  *slog.Logger

	mu    sync.Mutex
	chats map[int64]*results.Controller
}

// NewBot authorizes against the bot API with the configured token
func NewBot(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) (*Bot, error) {
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("GIVEAWAY_TG_TOKEN environment variable is not set")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	logger.Info("authorized on account", "username", api.Self.UserName)

	b := newBot(api, cfg, f, logger)
	b.api = api
	return b, nil
}

func newBot(sender Sender, cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *Bot {
	return &Bot{
		sender:  sender,
		cfg:     cfg,
		fetcher: f,
		logger:  logger,
		chats:   make(map[int64]*results.Controller),
	}
}

// Run long-polls for updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	// Start from the latest update so old messages are skipped
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			b.waitAll()
			b.logger.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram updates channel closed")
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches a single update
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	logger := b.logger.With("chat_id", chatID, "user_id", userID)

	if !b.cfg.IsAllowedUser(userID) {
		logger.Warn("unauthorized user attempted to use bot")
		b.reply(chatID, "Sorry, you are not authorized to use this bot.")
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.reply(chatID, fmt.Sprintf("Welcome! Send me a number of pages (1-%d) and I'll fetch the current giveaways.", b.cfg.Pages.Max))
		case "help":
			b.reply(chatID, helpText)
		case "giveaways":
			b.submit(ctx, chatID, msg.CommandArguments(), logger)
		default:
			b.reply(chatID, "Unknown command. Use /help for available commands.")
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.reply(chatID, "Please send me a number of pages.")
		return
	}
	b.submit(ctx, chatID, text, logger)
}

func (b *Bot) submit(ctx context.Context, chatID int64, pageCount string, logger *slog.Logger) {
	if err := b.controller(chatID, logger).Submit(ctx, pageCount); err != nil {
		logger.Debug("submit rejected", "error", err)
	}
}

// controller returns the chat's controller, creating it on first use
func (b *Bot) controller(chatID int64, logger *slog.Logger) *results.Controller {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.chats[chatID]; ok {
		return c
	}

	view := &messageView{sender: b.sender, chatID: chatID, logger: logger}
	c := results.NewController(b.fetcher, view,
		results.WithMaxPages(b.cfg.Pages.Max),
		results.WithTimeout(b.cfg.API.RequestTimeout),
		results.WithLogger(logger),
	)
	b.chats[chatID] = c
	return c
}

// waitAll blocks until every chat's request has finished, bounded so shutdown cannot hang
func (b *Bot) waitAll() {
	b.mu.Lock()
	ctrls := make([]*results.Controller, 0, len(b.chats))
	for _, c := range b.chats {
		ctrls = append(ctrls, c)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, c := range ctrls {
			c.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		b.logger.Warn("gave up waiting for in-flight requests")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("error sending message", "chat_id", chatID, "error", err)
	}
}
