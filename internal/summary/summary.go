// Package summary computes the daily and weekly work-order digests. Both
// entry points are one-shot and synchronous; whatever scheduler invokes them
// only supplies "now".
package summary

import (
	"context"
	"time"

	"github.com/webtense/btr-automation-whatsapp/internal/render"
	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

// RecordSource is the slice of the host store the aggregator needs.
type RecordSource interface {
	CreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	ClosedBetween(ctx context.Context, from, to time.Time) (count int, hours float64, err error)
}

type Service struct {
	store    RecordSource
	renderer render.Renderer
	sender   transport.Sender
	log      logx.Logger
}

func New(store RecordSource, renderer render.Renderer, sender transport.Sender, log logx.Logger) *Service {
	return &Service{store: store, renderer: renderer, sender: sender, log: log}
}

// DayWindow is the inclusive [00:00:00, 23:59:59] window of now's calendar day.
func DayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	return start, end
}

// WeekWindows returns the current [Monday..Sunday] window around today and
// the seven days immediately preceding it, gapless and non-overlapping.
// All four bounds are at the usual inclusive day edges.
func WeekWindows(today time.Time) (curStart, curEnd, prevStart, prevEnd time.Time) {
	// time.Weekday starts the week on Sunday; shift so Monday is day zero.
	offset := (int(today.Weekday()) + 6) % 7
	monday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).AddDate(0, 0, -offset)

	curStart = monday
	curEnd = monday.AddDate(0, 0, 6).Add(24*time.Hour - time.Second)
	prevStart = monday.AddDate(0, 0, -7)
	prevEnd = monday.Add(-time.Second)
	return curStart, curEnd, prevStart, prevEnd
}

// Daily sends the end-of-day digest. It always sends, even when all counts
// are zero; silence would be indistinguishable from a broken job.
func (s *Service) Daily(ctx context.Context, now time.Time) {
	start, end := DayWindow(now)
	log := s.log.With(logx.Time("window_start", start), logx.Time("window_end", end))

	created, err := s.store.CreatedBetween(ctx, start, end)
	if err != nil {
		log.Error("daily summary: created query failed", logx.Err(err))
		return
	}
	closed, hours, err := s.store.ClosedBetween(ctx, start, end)
	if err != nil {
		log.Error("daily summary: closed query failed", logx.Err(err))
		return
	}

	log.Info("daily summary computed", logx.Int("created", created), logx.Int("closed", closed), logx.Float64("hours", hours))
	_ = s.sender.SendText(ctx, s.renderer.DailySummary(now, created, closed, hours))
}

// Weekly sends the weekly digest with deltas against the prior week.
func (s *Service) Weekly(ctx context.Context, today time.Time) {
	curStart, curEnd, prevStart, prevEnd := WeekWindows(today)
	log := s.log.With(logx.Time("week_start", curStart), logx.Time("week_end", curEnd))

	created, err := s.store.CreatedBetween(ctx, curStart, curEnd)
	if err != nil {
		log.Error("weekly summary: created query failed", logx.Err(err))
		return
	}
	closed, hours, err := s.store.ClosedBetween(ctx, curStart, curEnd)
	if err != nil {
		log.Error("weekly summary: closed query failed", logx.Err(err))
		return
	}
	prevClosed, prevHours, err := s.store.ClosedBetween(ctx, prevStart, prevEnd)
	if err != nil {
		log.Error("weekly summary: prior-week query failed", logx.Err(err))
		return
	}

	deltaClosed := closed - prevClosed
	deltaHours := hours - prevHours
	log.Info("weekly summary computed",
		logx.Int("created", created), logx.Int("closed", closed),
		logx.Float64("hours", hours), logx.Int("delta_closed", deltaClosed))
	_ = s.sender.SendText(ctx, s.renderer.WeeklySummary(curStart, curStart.AddDate(0, 0, 6), created, closed, hours, deltaClosed, deltaHours))
}
