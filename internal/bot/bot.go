package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/dank-times-bot/internal/chat"
	"github.com/xaenox/dank-times-bot/internal/metrics"
	"github.com/xaenox/dank-times-bot/internal/models"
	"github.com/xaenox/dank-times-bot/internal/scheduler"
	"github.com/xaenox/dank-times-bot/internal/settings"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	registry  *chat.Registry
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

func New(token string, registry *chat.Registry, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:      api,
		registry: registry,
		logger:   logger,
	}, nil
}

// SetScheduler wires the scheduler in after construction; the scheduler
// needs the bot as its notifier, so the two cannot be built in one go.
func (b *Bot) SetScheduler(s *scheduler.Scheduler) {
	b.scheduler = s
}

// Start consumes Telegram updates until Stop is called. Updates are handled
// sequentially: scoring depends on arrival order.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update.Message)
	}

	return nil
}

// Stop closes the update stream, unblocking Start.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// SendMessage implements scheduler.Notifier.
func (b *Bot) SendMessage(chatID int64, text string) {
	b.sendHTML(chatID, text)
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.MigrateToChatID != 0 {
		b.registry.MigrateChatID(message.Chat.ID, message.MigrateToChatID)
		return
	}
	if message.From == nil {
		return
	}
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}
	if message.Text == "" {
		return
	}

	c := b.registry.GetOrCreate(message.Chat.ID)
	reply := c.ProcessMessage(message.From.ID, userName(message.From), message.Text, int64(message.Date))
	metrics.MessagesProcessed.Inc()
	if reply != "" {
		b.sendHTML(message.Chat.ID, reply)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.ifSenderIsAdmin(message, b.handleStart)
	case "help":
		b.handleHelp(message)
	case "danktimes":
		b.handleDankTimes(message)
	case "leaderboard":
		b.handleLeaderboard(message)
	case "addtime":
		b.ifSenderIsAdmin(message, b.handleAddTime)
	case "removetime":
		b.ifSenderIsAdmin(message, b.handleRemoveTime)
	case "reset":
		b.ifSenderIsAdmin(message, b.handleReset)
	case "set":
		b.handleSet(message)
	case "settings":
		b.handleSettings(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

// ifSenderIsAdmin gates a handler on the sender being a chat admin. Private
// chats have no admins, so they pass straight through.
func (b *Bot) ifSenderIsAdmin(message *tgbotapi.Message, handler func(*tgbotapi.Message)) {
	if message.Chat.IsPrivate() {
		handler(message)
		return
	}

	admins, err := b.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: message.Chat.ID},
	})
	if err != nil {
		b.logger.Error("Failed to retrieve admin list",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendMessage(message.Chat.ID, "Failed to retrieve the admin list. Please try again later.")
		return
	}

	for _, admin := range admins {
		if admin.User != nil && admin.User.ID == message.From.ID {
			handler(message)
			return
		}
	}
	b.sendMessage(message.Chat.ID, "This option is only available to admins.")
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	c := b.registry.GetOrCreate(message.Chat.ID)
	if c.Settings().Running() {
		b.sendMessage(message.Chat.ID, "The bot is already running!")
		return
	}
	if err := c.Settings().TrySetFromString(settings.Running, "true"); err != nil {
		b.logger.Error("Failed to start chat", zap.Error(err), zap.Int64("chat_id", c.ID()))
		return
	}
	c.GenerateRandomDankTimes()
	b.scheduler.RescheduleAllOfChat(c)
	b.sendMessage(message.Chat.ID, "The bot is now running! Hit the dank times to earn points.")
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the game in this chat (admins only)
/help - Show this help message
/danktimes - Show the dank times of this chat
/leaderboard - Show the leaderboard
/addtime [hour] [minute] [points] [text...] - Add a dank time (admins only)
/removetime [hour] [minute] - Remove a dank time (admins only)
/reset - Reset the scores (admins only)
/set [setting] [value] - Change a setting
/settings - Show the current settings

Post one of the dank time texts at exactly the right minute to score!`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleDankTimes(message *tgbotapi.Message) {
	c := b.registry.GetOrCreate(message.Chat.ID)
	dankTimes := c.DankTimes()
	if len(dankTimes) == 0 {
		b.sendMessage(message.Chat.ID, "This chat doesn't have any dank times yet. Add one with /addtime.")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>--- DANK TIMES ---</b>")
	for _, dankTime := range dankTimes {
		sb.WriteString(fmt.Sprintf("\ntime: %02d:%02d    texts: %s    points: %d",
			dankTime.Hour, dankTime.Minute, strings.Join(dankTime.Texts, ", "), dankTime.Points))
	}
	b.sendHTML(message.Chat.ID, sb.String())
}

func (b *Bot) handleLeaderboard(message *tgbotapi.Message) {
	c := b.registry.GetOrCreate(message.Chat.ID)
	b.sendHTML(message.Chat.ID, c.GenerateLeaderboard(false))
}

func (b *Bot) handleAddTime(message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) < 4 {
		b.sendMessage(message.Chat.ID, "Usage: /addtime [hour] [minute] [points] [text1] [text2] ...")
		return
	}

	hour, err1 := strconv.Atoi(args[0])
	minute, err2 := strconv.Atoi(args[1])
	points, err3 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || err3 != nil {
		b.sendMessage(message.Chat.ID, "The hour, minute, and points must all be numbers!")
		return
	}

	dankTime, err := models.NewDankTime(hour, minute, points, args[3:])
	if err != nil {
		b.sendMessage(message.Chat.ID, capitalize(err.Error())+"!")
		return
	}

	c := b.registry.GetOrCreate(message.Chat.ID)
	c.AddDankTime(dankTime)
	b.scheduler.RescheduleAllOfChat(c)
	b.sendMessage(message.Chat.ID, "Added the new dank time!")
}

func (b *Bot) handleRemoveTime(message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) < 2 {
		b.sendMessage(message.Chat.ID, "Usage: /removetime [hour] [minute]")
		return
	}

	hour, err1 := strconv.Atoi(args[0])
	minute, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		b.sendMessage(message.Chat.ID, "The hour and minute must both be numbers!")
		return
	}

	c := b.registry.GetOrCreate(message.Chat.ID)
	if !c.RemoveDankTime(hour, minute) {
		b.sendMessage(message.Chat.ID, "There is no dank time with that hour and minute.")
		return
	}
	b.scheduler.RescheduleAllOfChat(c)
	b.sendMessage(message.Chat.ID, "Removed the dank time!")
}

func (b *Bot) handleReset(message *tgbotapi.Message) {
	c := b.registry.GetOrCreate(message.Chat.ID)
	c.ArmReset(message.From.ID)
	b.sendMessage(message.Chat.ID, "Are you sure you want to reset the leaderboard? Type 'yes' to confirm.")
}

func (b *Bot) handleSet(message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		b.sendMessage(message.Chat.ID, "Usage: /set [setting] [value]")
		return
	}

	c := b.registry.GetOrCreate(message.Chat.ID)
	if err := c.Settings().TrySetFromString(args[0], args[1]); err != nil {
		b.sendMessage(message.Chat.ID, capitalize(err.Error())+"!")
		return
	}

	// Running, timezone, and notification settings all affect the timers.
	b.scheduler.RescheduleAllOfChat(c)
	b.sendMessage(message.Chat.ID, "Updated the setting!")
}

func (b *Bot) handleSettings(message *tgbotapi.Message) {
	c := b.registry.GetOrCreate(message.Chat.ID)
	snapshot := c.Settings().Snapshot()

	var sb strings.Builder
	sb.WriteString("<b>--- SETTINGS ---</b>")
	for _, name := range settings.Names() {
		sb.WriteString(fmt.Sprintf("\n%s: %s", name, snapshot[name]))
	}
	b.sendHTML(message.Chat.ID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func userName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return "anonymous"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
