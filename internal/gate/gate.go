// Package gate decides, per lifecycle event, whether a notification goes out
// and in which shape. It is the only component that both renders and sends,
// and it is the error boundary: nothing that happens here may abort the
// record mutation that triggered the event.
package gate

import (
	"context"

	"github.com/webtense/btr-automation-whatsapp/internal/render"
	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/internal/workorder"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

// AttachmentSource is the slice of the host store the gate needs.
type AttachmentSource interface {
	AttachmentsByOrder(ctx context.Context, orderID int64, imagesOnly bool) ([]workorder.Attachment, error)
}

type Gate struct {
	store      AttachmentSource
	renderer   render.Renderer
	sender     transport.Sender
	classifier workorder.Classifier
	log        logx.Logger
}

func New(store AttachmentSource, renderer render.Renderer, sender transport.Sender, log logx.Logger) *Gate {
	return &Gate{
		store:      store,
		renderer:   renderer,
		sender:     sender,
		classifier: renderer.Classifier,
		log:        log,
	}
}

// HandleCreated notifies a freshly created record and forwards its image
// attachments. The primary text always goes out before any attachment.
func (g *Gate) HandleCreated(ctx context.Context, o workorder.WorkOrder) {
	log := g.log.With(logx.String("code", o.Code), logx.Int64("order_id", o.ID))
	log.Info("work order created, notifying")

	if err := g.sender.SendText(ctx, g.renderer.Created(o)); err != nil {
		return // transport already logged the failure
	}

	images, err := g.store.AttachmentsByOrder(ctx, o.ID, true)
	if err != nil {
		log.Error("attachment lookup failed", logx.Err(err))
		return
	}
	for _, a := range images {
		if a.Data == nil {
			continue
		}
		_ = g.sender.SendImage(ctx, a.Name, a.Data)
	}
}

// HandleUpdated classifies the stage transition once and dispatches the
// matching notification. The single classification point is what keeps the
// ordinary-change and closure paths from ever double-sending the same event.
func (g *Gate) HandleUpdated(ctx context.Context, o workorder.WorkOrder, prev, next string) {
	log := g.log.With(logx.String("code", o.Code), logx.Int64("order_id", o.ID),
		logx.String("from", prev), logx.String("to", next))

	switch g.classifier.Classify(prev, next) {
	case workorder.ClosedAsRepaired:
		log.Info("work order closed, notifying")
		g.handleClosed(ctx, o, prev, next, log)
	case workorder.OtherStatusChange:
		log.Info("work order stage changed, notifying")
		msg, ok := g.renderer.StatusChange(o, prev, next)
		if !ok {
			return
		}
		_ = g.sender.SendText(ctx, msg)
	default:
		log.Debug("stage unchanged, nothing to send")
	}
}

func (g *Gate) handleClosed(ctx context.Context, o workorder.WorkOrder, prev, next string, log logx.Logger) {
	if err := g.sender.SendText(ctx, g.renderer.Closed(o, prev, next)); err != nil {
		return
	}

	atts, err := g.store.AttachmentsByOrder(ctx, o.ID, false)
	if err != nil {
		log.Error("attachment lookup failed", logx.Err(err))
		return
	}
	if len(atts) == 0 {
		return
	}

	// Images travel inline AND appear in the link list; everything else is
	// linked only. The list goes out as one consolidated message to cap the
	// number of deliveries per closure.
	for _, a := range atts {
		if a.IsImage() && a.Data != nil {
			_ = g.sender.SendImage(ctx, a.Name, a.Data)
		}
	}
	_ = g.sender.SendText(ctx, g.renderer.AttachmentList(atts))
}
