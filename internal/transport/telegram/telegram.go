// Package telegram is the alternate delivery backend. It exists to prove the
// Sender seam: the gate and renderer are identical whether messages leave
// through the exec CLI or through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

type Sender struct {
	config transport.ConfigFunc
	log    logx.Logger
	bot    *tele.Bot
}

// New builds a Telegram sender from the current secrets snapshot. The token
// is read once at construction (the bot session is stateful); destination
// chat id stays hot-reloadable through the config func.
func New(config transport.ConfigFunc, log logx.Logger) (*Sender, error) {
	cfg := config()
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram: tg_token is empty")
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &Sender{config: config, log: log, bot: b}, nil
}

func (s *Sender) SendText(ctx context.Context, text string) error {
	cfg := s.config()
	if cfg.TelegramChatID == 0 {
		s.log.Error("tg_chat_id empty in secrets.yaml(.example), text not sent")
		return transport.ErrNoDestination
	}
	_, err := s.bot.Send(tele.ChatID(cfg.TelegramChatID), text, tele.NoPreview)
	if err != nil {
		s.log.Error("telegram text delivery failed", logx.Err(err))
		return err
	}
	s.log.Info("text message delivered")
	return nil
}

func (s *Sender) SendImage(ctx context.Context, filename string, data []byte) error {
	cfg := s.config()
	if cfg.TelegramChatID == 0 {
		s.log.Error("tg_chat_id empty in secrets.yaml(.example), image not sent")
		return transport.ErrNoDestination
	}
	photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(data)), Caption: filename}
	if _, err := s.bot.Send(tele.ChatID(cfg.TelegramChatID), photo); err != nil {
		s.log.Error("telegram image delivery failed", logx.String("filename", filename), logx.Err(err))
		return err
	}
	s.log.Info("image delivered", logx.String("filename", filename))
	return nil
}
