package telegram

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"giveaway-grid/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is Telegram's limit for a text message
const maxMessageLen = 4096

// Sender is the part of the bot API the views need
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// messageView renders a chat's results into one status message per submit.
// ShowLoading posts the message and the state that settles the submit edits it.
// Once settled the message is left alone, so later output starts a new one.
type messageView struct {
	sender    Sender
	chatID    int64
	messageID int
	logger    *slog.Logger
}

// ShowLoading implements results.View
func (v *messageView) ShowLoading() {
	if v.messageID != 0 {
		// a superseded request already posted the loading message
		return
	}

	msg := tgbotapi.NewMessage(v.chatID, "⏳ Fetching giveaways...")
	sent, err := v.sender.Send(msg)
	if err != nil {
		v.logger.Error("error sending loading message", "error", err)
		return
	}
	v.messageID = sent.MessageID
}

// ShowItems implements results.View
func (v *messageView) ShowItems(items []models.DisplayItem) {
	v.settle(formatItems(items))
}

// ShowEmpty implements results.View
func (v *messageView) ShowEmpty() {
	v.settle("No entries found.")
}

// ShowError implements results.View
func (v *messageView) ShowError(message string) {
	v.settle("❌ " + html.EscapeString(message))
}

// settle replaces the loading message with text. When there is no loading
// message, or it cannot be edited, text is posted as a new message.
func (v *messageView) settle(text string) {
	messageID := v.messageID
	v.messageID = 0

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(v.chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.DisableWebPagePreview = true
		_, err := v.sender.Send(edit)
		if err == nil {
			return
		}
		v.logger.Warn("error editing results message, sending a new one", "error", err, "message_id", messageID)
	}

	v.send(text)
}

// send posts text as HTML, falling back to plain text when Telegram rejects the markup
func (v *messageView) send(text string) {
	msg := tgbotapi.NewMessage(v.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := v.sender.Send(msg)
	if err == nil {
		return
	}
	v.logger.Warn("error sending results message, retrying as plain text", "error", err)

	plain := tgbotapi.NewMessage(v.chatID, plainText(text))
	plain.DisableWebPagePreview = true
	if _, err := v.sender.Send(plain); err != nil {
		v.logger.Error("error sending results message", "error", err)
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// plainText strips the markup formatItems adds and unescapes the rest
func plainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// formatItems lists items in order as HTML, truncated to fit one message
func formatItems(items []models.DisplayItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎁 <b>%s</b>\n", models.GiveawayCount(len(items)))

	for i, item := range items {
		var entry strings.Builder
		fmt.Fprintf(&entry, "\n%d. ", i+1)
		if item.URL != "" {
			fmt.Fprintf(&entry, `<a href="%s">%s</a>`, html.EscapeString(item.URL), html.EscapeString(item.Name))
		} else {
			entry.WriteString(html.EscapeString(item.Name))
		}
		fmt.Fprintf(&entry, "\n   expires on %s\n", html.EscapeString(item.ExpirationDate))

		footer := fmt.Sprintf("\n…and %d more", len(items)-i)
		if b.Len()+entry.Len()+len(footer) > maxMessageLen {
			b.WriteString(footer)
			break
		}
		b.WriteString(entry.String())
	}

	return b.String()
}
