// Package bot runs the Telegram bot that reports logbook activity
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/ledger"
	"rfid-logbook/internal/models"
	"rfid-logbook/internal/services"
)

// historyDays is how far back /history looks
const historyDays = 7

// Bot answers commands and forwards notifications to the admin chat
type Bot struct {
	api          *tgbotapi.BotAPI
	targetChatID int64
	logbook      services.LogbookService
}

// New authorizes the bot token
func New(token, authorizedChatIDStr string, logbook services.LogbookService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	api.Debug = false
	log.Infof("🤖 Authorized on account %s", api.Self.UserName)

	b := &Bot{api: api, logbook: logbook}
	if authorizedChatIDStr != "" {
		id, err := strconv.ParseInt(authorizedChatIDStr, 10, 64)
		if err != nil {
			log.Warnf("⚠️ Ignoring invalid AUTHORIZED_CHAT_ID %q", authorizedChatIDStr)
		} else {
			b.targetChatID = id
		}
	}
	return b, nil
}

// StartPolling starts the update loop; it stops when ctx is done
func (b *Bot) StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"
			msg.Text = b.handleCommand(update.Message.Command(), update.Message.CommandArguments(), update.Message.Chat.ID)

			if _, err := b.api.Send(msg); err != nil {
				log.Errorf("Bot send error: %v", err)
			}
		}
	}()
}

func (b *Bot) handleCommand(command, args string, chatID int64) string {
	switch command {
	case "start":
		return "🏷️ *RFID Logbook*\n\n" +
			"*Commands:*\n" +
			"/today - today's check-ins\n" +
			"/borrows - items currently out\n" +
			"/history [name] - check-ins of the last 7 days\n" +
			"/getid - this chat's id"

	case "getid":
		return fmt.Sprintf("Chat ID: `%d`", chatID)

	case "today":
		return b.today()

	case "borrows":
		return b.activeBorrows()

	case "history":
		return b.history(strings.TrimSpace(args))

	default:
		return "Unknown command, use /start"
	}
}

func (b *Bot) today() string {
	today := b.logbook.Now().Format(models.DateLayout)
	entries := b.logbook.Attendance(ledger.Filter{Date: today, Sort: ledger.SortDateAsc})
	if len(entries) == 0 {
		return "No check-ins today"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Today* (%d)\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %s\n", e.Timestamp[len(models.DateLayout)+1:], label(e.Nickname, e.TagID))
	}
	return sb.String()
}

func (b *Bot) activeBorrows() string {
	borrows := b.logbook.Borrows(ledger.Filter{ActiveOnly: true, Sort: ledger.SortDateAsc})
	if len(borrows) == 0 {
		return "Nothing is borrowed"
	}

	loc := b.logbook.Location()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 *Borrowed* (%d)\n", len(borrows))
	for _, v := range borrows {
		fmt.Fprintf(&sb, "%s: %s since %s\n",
			v.ItemName, label(v.Nickname, v.TagID), v.BorrowedAt().In(loc).Format("02/01 15:04"))
	}
	return sb.String()
}

func (b *Bot) history(search string) string {
	since := b.logbook.Now().AddDate(0, 0, -(historyDays - 1)).Format(models.DateLayout)
	entries := b.logbook.Attendance(ledger.Filter{Search: search})

	var sb strings.Builder
	sb.WriteString("📅 *History*\n\n")
	n := 0
	for _, e := range entries {
		if e.Date < since {
			break
		}
		fmt.Fprintf(&sb, "%s %s\n", e.Timestamp[:len(models.DateLayout)+6], label(e.Nickname, e.TagID))
		n++
	}
	if n == 0 {
		return "No history found"
	}
	return sb.String()
}

func label(nickname, tagID string) string {
	if nickname == "" {
		return "`" + tagID + "`"
	}
	return fmt.Sprintf("*%s* (`%s`)", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, nickname), tagID)
}

// SendNotification sends message to admin
func (b *Bot) SendNotification(message string) {
	if b == nil || b.targetChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.targetChatID, message)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Errorf("Failed to send: %v", err)
	}
}
