package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"genpay/internal/models"
)

// NotifyService pushes a short Telegram message to the owner's channel when
// a payment commits. A nil *NotifyService is valid and does nothing, so the
// integration stays optional.
type NotifyService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifyService(botToken string, chatID int64) *NotifyService {
	if botToken == "" || chatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[notify][init] telegram disabled: %v", err)
		return nil
	}
	log.Printf("[notify][init] telegram notifications enabled, bot=%s", bot.Self.UserName)
	return &NotifyService{bot: bot, chatID: chatID}
}

func (n *NotifyService) PaymentProcessed(r *models.Receipt) error {
	if n == nil {
		return nil
	}
	text := fmt.Sprintf(
		"Payment #%s\nClient: %s\nAmount: %s\nNew balance: %s\nOperator entry at %s",
		r.PaymentID, r.ClientName,
		r.PaymentAmount.StringFixed(2), r.NewBalance.StringFixed(2), r.Date,
	)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
