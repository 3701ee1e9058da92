// Package render builds the outbound message texts. Rendering is pure: no
// I/O, no side effects, output depends only on the record fields and the
// injected clock.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/webtense/btr-automation-whatsapp/internal/workorder"
)

const (
	timestampFormat = "02/01/2006 15:04"
	dayFormat       = "02/01/2006"
	shortDayFormat  = "02/01"

	headerRule = "─────────────V3───────────"
	footerRule = "───────────────────────────"
	shortRule  = "─────────────────────"
)

// Placeholder strings for absent optional fields. The host UI is Spanish;
// these match what its users already see in the record form.
const (
	phSummary     = "Sin resumen"
	phTechnician  = "Sin técnico asignado"
	phHotel       = "No especificado"
	phEquipment   = "No asignado"
	phTeam        = "No asignado"
	phDate        = "No disponible"
	phDescription = "Sin descripción"
	phNote        = "No especificadas"
)

// Renderer formats work-order events into message texts.
//
// BaseURL is the host application's public root used for deep links.
// Now is injectable so tests get byte-identical output; nil means time.Now.
type Renderer struct {
	BaseURL    string
	Now        func() time.Time
	Classifier workorder.Classifier
}

func New(baseURL string) Renderer {
	return Renderer{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Classifier: workorder.ClassifierFor(workorder.DefaultClosedStage),
	}
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// OrderURL builds the deep link opening the record's form view.
func (r Renderer) OrderURL(id int64) string {
	return fmt.Sprintf("%s/web#id=%d&model=maintenance.request&view_type=form", r.BaseURL, id)
}

// AttachmentURL builds the retrieval link for an attachment.
func (r Renderer) AttachmentURL(id int64) string {
	return fmt.Sprintf("%s/web/content/%d", r.BaseURL, id)
}

// Created renders the new-order notification. The first timestamp is the
// render time, not the record's creation time.
func (r Renderer) Created(o workorder.WorkOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛠 NUEVA OT CREADA # %s\n", o.Code)
	b.WriteString(headerRule + "\n")
	fmt.Fprintf(&b, "📅 *Fecha Notificación:* %s\n", r.now().Format(timestampFormat))
	fmt.Fprintf(&b, "📝 *Resumen:* %s\n", orPlaceholder(o.Name, phSummary))
	fmt.Fprintf(&b, "👷 *Técnico:* %s\n", orPlaceholder(o.Technician, phTechnician))
	fmt.Fprintf(&b, "🏢 *Hotel:* %s\n", orPlaceholder(o.Hotel, phHotel))
	fmt.Fprintf(&b, "🏠 *Estancia:* %s\n", orPlaceholder(o.Equipment, phEquipment))
	fmt.Fprintf(&b, "👥 *Equipo de Mantenimiento:* %s\n", orPlaceholder(o.Team, phTeam))
	fmt.Fprintf(&b, "📅 *Fecha Creación:* %s\n", formatDate(&o.CreateDate))
	fmt.Fprintf(&b, "📄 *Descripción:* %s\n", orPlaceholder(o.Description, phDescription))
	fmt.Fprintf(&b, "📌 *Instrucciones:*\n%s\n", noteText(o.Note))
	fmt.Fprintf(&b, "🔗 Abrir OT: %s\n", r.OrderURL(o.ID))
	b.WriteString(footerRule)
	return b.String()
}

// StatusChange renders the compact stage-change notification. The closure
// transition is the closure renderer's responsibility, so the classifier
// suppresses it here (ok=false, empty text) to avoid duplicate sends.
func (r Renderer) StatusChange(o workorder.WorkOrder, prev, next string) (string, bool) {
	if r.Classifier.Classify(prev, next) != workorder.OtherStatusChange {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛠 CAMBIO DE ESTADO # %s\n", o.Code)
	b.WriteString(headerRule + "\n")
	fmt.Fprintf(&b, "🔄 *De:* %s  ➡️  *A:* %s\n", prev, next)
	fmt.Fprintf(&b, "📝 *Resumen:* %s\n", orPlaceholder(o.Name, phSummary))
	fmt.Fprintf(&b, "🔗 Abrir OT: %s", r.OrderURL(o.ID))
	return b.String(), true
}

// Closed renders the closure notification with duration and close date.
func (r Renderer) Closed(o workorder.WorkOrder, prev, next string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛠 *CIERRE DE OT # %s*\n", o.Code)
	b.WriteString(headerRule + "\n")
	fmt.Fprintf(&b, "🔄 *De:* %s ➡️ *A:* %s\n", prev, next)
	fmt.Fprintf(&b, "👷 *Técnico:* %s\n", orPlaceholder(o.Technician, phTechnician))
	fmt.Fprintf(&b, "🏢 *Hotel:* %s\n", orPlaceholder(o.Hotel, phHotel))
	fmt.Fprintf(&b, "🏠 *Estancia:* %s\n", orPlaceholder(o.Equipment, phEquipment))
	fmt.Fprintf(&b, "⏳ *Tiempo Dedicado:* %.2f horas\n", o.DurationHours)
	fmt.Fprintf(&b, "🗓 *Fecha Cierre:* %s\n", formatDate(o.CloseDate))
	fmt.Fprintf(&b, "📄 *Descripción:* %s\n", orPlaceholder(o.Description, phDescription))
	fmt.Fprintf(&b, "📌 *Instrucciones:*\n%s\n", noteText(o.Note))
	fmt.Fprintf(&b, "🔗 Abrir OT: %s\n", r.OrderURL(o.ID))
	b.WriteString(footerRule)
	return b.String()
}

// AttachmentList renders the consolidated link-list message sent after a
// closure: one line per attachment, images marked distinctly.
func (r Renderer) AttachmentList(atts []workorder.Attachment) string {
	lines := make([]string, 0, len(atts)+1)
	lines = append(lines, "Adjuntos:")
	for _, a := range atts {
		icon := "📎"
		if a.IsImage() {
			icon = "🖼"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", icon, a.Name, r.AttachmentURL(a.ID)))
	}
	return strings.Join(lines, "\n")
}

// DailySummary renders the end-of-day counters.
func (r Renderer) DailySummary(day time.Time, created, closed int, hours float64) string {
	var b strings.Builder
	b.WriteString("📝 *RESUMEN DEL DÍA*\n")
	b.WriteString(shortRule + "\n")
	fmt.Fprintf(&b, "📅 Fecha: %s\n", day.Format(dayFormat))
	fmt.Fprintf(&b, "✅ OTs Creadas: %d\n", created)
	fmt.Fprintf(&b, "🛠️ OTs Cerradas: %d\n", closed)
	fmt.Fprintf(&b, "⏳ Horas trabajadas: %.2fh\n", hours)
	b.WriteString(shortRule)
	return b.String()
}

// WeeklySummary renders the weekly counters with week-over-week deltas.
// Non-negative deltas carry an explicit leading plus.
func (r Renderer) WeeklySummary(weekStart, weekEnd time.Time, created, closed int, hours float64, deltaClosed int, deltaHours float64) string {
	var b strings.Builder
	b.WriteString("📊 *RESUMEN SEMANAL*\n")
	b.WriteString(shortRule + "\n")
	fmt.Fprintf(&b, "📅 Semana: %s - %s\n", weekStart.Format(shortDayFormat), weekEnd.Format(shortDayFormat))
	fmt.Fprintf(&b, "✅ OTs creadas: %d\n", created)
	fmt.Fprintf(&b, "🛠️ OTs cerradas: %d (%+d vs semana ant.)\n", closed, deltaClosed)
	fmt.Fprintf(&b, "⏳ Horas: %.2fh (%+.2f vs ant.)\n", hours, deltaHours)
	b.WriteString(shortRule)
	return b.String()
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return phDate
	}
	return t.Format(timestampFormat)
}

func noteText(note string) string {
	if strings.TrimSpace(note) == "" {
		return phNote
	}
	return HTMLToPlain(note)
}
