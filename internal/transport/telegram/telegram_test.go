package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/webtense/btr-automation-whatsapp/internal/secrets"
	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

func snapshotFunc(s secrets.Snapshot) transport.ConfigFunc {
	return func() secrets.Snapshot { return s }
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	for _, token := range []string{"", "   "} {
		if _, err := New(snapshotFunc(secrets.Snapshot{TelegramToken: token}), logx.Nop()); err == nil {
			t.Fatalf("New(token=%q) should fail before any API call", token)
		}
	}
}

func TestSendWithoutChatID(t *testing.T) {
	t.Parallel()
	// Destination checks run before the bot is touched, so a zero-value
	// session is enough to exercise them.
	s := &Sender{config: snapshotFunc(secrets.Snapshot{TelegramToken: "t"}), log: logx.Nop()}

	if err := s.SendText(context.Background(), "hola"); !errors.Is(err, transport.ErrNoDestination) {
		t.Fatalf("SendText err = %v, want ErrNoDestination", err)
	}
	if err := s.SendImage(context.Background(), "foto.jpg", []byte{0xff}); !errors.Is(err, transport.ErrNoDestination) {
		t.Fatalf("SendImage err = %v, want ErrNoDestination", err)
	}
}
