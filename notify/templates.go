package notify

import (
	"fmt"
	"strings"

	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/workflow"
)

const dateLayout = "02/01/2006"

// Render produces subject and body for one notification. Short channels
// (SMS/WhatsApp) get the body only; email gets both. Everything is built
// from the structured context; no free text reaches this package from the
// engine.
func Render(notificationType models.NotificationType, channel models.NotificationChannel, msgCtx workflow.MessageContext) (subject, body string) {
	kind := "energy"
	switch msgCtx.ContractType {
	case models.ContractTypeElectricity:
		kind = "electricity"
	case models.ContractTypeGas:
		kind = "gas"
	}

	switch notificationType {
	case models.NotificationTypePenaltyFree:
		subject = fmt.Sprintf("Your %s contract with %s can now be changed penalty-free", kind, msgCtx.SupplierName)
		body = fmt.Sprintf(
			"Hello %s,\n\nsince %s your %s contract with %s can be modified or cancelled without penalty.\nExpiry date: %s.\n\nIf you would like to review better offers, get in touch with us.",
			msgCtx.ClientName,
			msgCtx.PenaltyFreeDate.Format(dateLayout),
			kind,
			msgCtx.SupplierName,
			msgCtx.ExpiryDate.Format(dateLayout),
		)
	case models.NotificationTypeRecommended:
		subject = fmt.Sprintf("Time to review your %s contract with %s", kind, msgCtx.SupplierName)
		body = fmt.Sprintf(
			"Hello %s,\n\nyour %s contract with %s expires on %s (%d days from now).\nThis is a good moment to compare offers and decide whether to switch supplier before renewal terms kick in.",
			msgCtx.ClientName,
			kind,
			msgCtx.SupplierName,
			msgCtx.ExpiryDate.Format(dateLayout),
			msgCtx.DaysToExpiry,
		)
	case models.NotificationTypeExpiry:
		when := fmt.Sprintf("in %d days", msgCtx.DaysToExpiry)
		if msgCtx.DaysToExpiry == 1 {
			when = "tomorrow"
		} else if msgCtx.DaysToExpiry == 0 {
			when = "today"
		}
		subject = fmt.Sprintf("Your %s contract with %s expires %s", kind, msgCtx.SupplierName, when)
		body = fmt.Sprintf(
			"Hello %s,\n\nyour %s contract with %s expires on %s (%s).\nContact us to arrange the renewal or a switch before the service lapses.",
			msgCtx.ClientName,
			kind,
			msgCtx.SupplierName,
			msgCtx.ExpiryDate.Format(dateLayout),
			when,
		)
	}

	if channel == models.NotificationChannelSms || channel == models.NotificationChannelWhatsapp {
		// Short transports: single line, no salutation block.
		body = strings.ReplaceAll(body, "\n\n", " ")
		body = strings.ReplaceAll(body, "\n", " ")
	}
	return subject, body
}

// RenderDigest turns a cycle summary into the admin email.
func RenderDigest(summary workflow.CycleSummary) (subject, body string) {
	total := 0
	for _, n := range summary.Sent {
		total += n
	}
	subject = fmt.Sprintf("Notification cycle %s: %d sent", summary.RanAt.Format("2006-01-02"), total)

	var b strings.Builder
	fmt.Fprintf(&b, "Cycle run at %s\n", summary.RanAt.Format("2006-01-02 15:04"))
	if summary.Simulate {
		b.WriteString("Mode: SIMULATE (no sends, no records)\n")
	}
	fmt.Fprintf(&b, "Contracts evaluated: %d (nothing due: %d)\n\n", summary.Evaluated, summary.NothingDue)

	for _, t := range []models.NotificationType{models.NotificationTypeExpiry, models.NotificationTypeRecommended, models.NotificationTypePenaltyFree} {
		fmt.Fprintf(&b, "%-12s sent=%d failed=%d skipped=%d\n", t, summary.Sent[t], summary.Failed[t], summary.Skipped[t])
	}

	if len(summary.Outcomes) > 0 {
		b.WriteString("\nDetails:\n")
		for _, o := range summary.Outcomes {
			line := fmt.Sprintf("- contract %d (%s): %s %s via %s", o.ContractId, o.ClientName, o.Outcome, o.Type, o.Channel)
			if o.Error != "" {
				line += ": " + o.Error
			}
			b.WriteString(line + "\n")
		}
	}
	return subject, b.String()
}
