package workflow

import (
	"context"
	"time"

	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/utils"
	"github.com/sirupsen/logrus"
)

// MessageContext is the structured payload handed to the channel sender.
// The core never renders text; subject/body templating belongs to the
// sender side.
type MessageContext struct {
	ContractId          int
	ClientName          string
	SupplierName        string
	ContractType        models.ContractType
	PenaltyFreeDate     time.Time
	RecommendedDate     time.Time
	ExpiryDate          time.Time
	DaysToExpiry        int
	DaysFromPenaltyFree int
}

// Collaborator interfaces. The gorm/smtp/twilio implementations live in
// models and notify; tests substitute fakes.

type ContractStore interface {
	UpdateMilestones(ctx context.Context, contractId int, ms Milestones) error
}

type NotificationHistory interface {
	FindForDay(ctx context.Context, contractId int, notificationType models.NotificationType, day time.Time) ([]models.NotificationRecord, error)
}

type NotificationWriter interface {
	Create(ctx context.Context, record *models.NotificationRecord) error
	MarkSent(ctx context.Context, id int, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int, message string) error
}

type ChannelSender interface {
	Send(ctx context.Context, channel models.NotificationChannel, recipient string, notificationType models.NotificationType, msgCtx MessageContext) error
}

type CycleDeps struct {
	Contracts   ContractStore
	History     NotificationHistory
	Records     NotificationWriter
	Sender      ChannelSender
	Checkpoints CheckpointConfig
	Logger      *logrus.Logger
	// Simulate computes decisions without sending or writing anything.
	Simulate bool
}

// CycleOutcome is one contract's result within a cycle.
type CycleOutcome struct {
	ContractId int                        `json:"contract_id"`
	ClientName string                     `json:"client_name"`
	Type       models.NotificationType    `json:"type,omitempty"`
	Channel    models.NotificationChannel `json:"channel,omitempty"`
	Outcome    string                     `json:"outcome"`
	Error      string                     `json:"error,omitempty"`
}

const (
	OutcomeSent      = "SENT"
	OutcomeFailed    = "FAILED"
	OutcomeSkipped   = "SKIPPED"
	OutcomeSimulated = "SIMULATED"
)

// CycleSummary is what an operator sees for one run and what the admin
// digest is rendered from.
type CycleSummary struct {
	RanAt      time.Time                       `json:"ran_at"`
	Simulate   bool                            `json:"simulate"`
	Evaluated  int                             `json:"evaluated"`
	NothingDue int                             `json:"nothing_due"`
	Sent       map[models.NotificationType]int `json:"sent"`
	Failed     map[models.NotificationType]int `json:"failed"`
	Skipped    map[models.NotificationType]int `json:"skipped"`
	Outcomes   []CycleOutcome                  `json:"outcomes"`
}

func newCycleSummary(now time.Time, simulate bool) CycleSummary {
	return CycleSummary{
		RanAt:    now,
		Simulate: simulate,
		Sent:     map[models.NotificationType]int{},
		Failed:   map[models.NotificationType]int{},
		Skipped:  map[models.NotificationType]int{},
	}
}

// RunCycle evaluates a batch of contracts for "now" and dispatches whatever
// is due. Contracts are independent: one contract's failure (bad dates, send
// error, persistence error) never aborts the others. Cancelling the context
// stops before the next contract; already-dispatched notifications are not
// rolled back.
func RunCycle(ctx context.Context, now time.Time, contracts []*models.Contract, deps CycleDeps) CycleSummary {
	summary := newCycleSummary(now, deps.Simulate)

	for _, contract := range contracts {
		select {
		case <-ctx.Done():
			return summary
		default:
		}
		summary.Evaluated++
		runContract(ctx, now, contract, deps, &summary)
	}

	return summary
}

func runContract(ctx context.Context, now time.Time, contract *models.Contract, deps CycleDeps, summary *CycleSummary) {
	logger := deps.Logger

	// Self-healing backfill: recompute missing derived dates and write them
	// back before evaluating eligibility.
	ms := MilestonesOf(contract)
	if !contract.HasAllMilestones() {
		recomputed, err := ComputeMilestones(contract.StartDate, contract.DurationMonths, contract.PenaltyFreeAfterMonths)
		if err != nil {
			// Stored fields cannot produce valid milestones: a data-quality
			// problem on the record, not a cycle bug. Skip, do not retry
			// within this run.
			dq := &utils.DataQualityError{ContractId: contract.ID, Reason: err.Error()}
			if logger != nil {
				logContractSkip(logger, contract.ID, dq.Error())
			}
			summary.Skipped[models.NotificationTypeExpiry]++
			summary.Outcomes = append(summary.Outcomes, CycleOutcome{
				ContractId: contract.ID,
				ClientName: contract.ClientDisplayName(),
				Outcome:    OutcomeSkipped,
				Error:      dq.Error(),
			})
			return
		}
		ms = recomputed
		if !deps.Simulate {
			if err := deps.Contracts.UpdateMilestones(ctx, contract.ID, ms); err != nil {
				summary.Failed[models.NotificationTypeExpiry]++
				summary.Outcomes = append(summary.Outcomes, CycleOutcome{
					ContractId: contract.ID,
					ClientName: contract.ClientDisplayName(),
					Outcome:    OutcomeFailed,
					Error:      (&utils.PersistenceError{Op: "milestone backfill", Err: err}).Error(),
				})
				return
			}
		}
	}

	// Eligibility needs today's records for the dedup check. Look up all
	// three types for today in one place; DecideNotification re-checks type.
	today := utils.TruncateToDate(now)
	var todaysRecords []models.NotificationRecord
	for _, t := range []models.NotificationType{models.NotificationTypeExpiry, models.NotificationTypeRecommended, models.NotificationTypePenaltyFree} {
		records, err := deps.History.FindForDay(ctx, contract.ID, t, today)
		if err != nil {
			summary.Failed[t]++
			summary.Outcomes = append(summary.Outcomes, CycleOutcome{
				ContractId: contract.ID,
				ClientName: contract.ClientDisplayName(),
				Type:       t,
				Outcome:    OutcomeFailed,
				Error:      err.Error(),
			})
			return
		}
		todaysRecords = append(todaysRecords, records...)
	}

	decision := DecideNotification(now, contract, ms, todaysRecords, deps.Checkpoints)
	if decision == nil {
		summary.NothingDue++
		return
	}

	msgCtx := MessageContext{
		ContractId:          contract.ID,
		ClientName:          contract.ClientDisplayName(),
		SupplierName:        supplierDisplayName(contract),
		ContractType:        contract.ContractType,
		PenaltyFreeDate:     ms.PenaltyFreeDate,
		RecommendedDate:     ms.RecommendedDate,
		ExpiryDate:          ms.ExpiryDate,
		DaysToExpiry:        decision.DaysToExpiry,
		DaysFromPenaltyFree: decision.DaysFromPenaltyFree,
	}

	if deps.Simulate {
		summary.Outcomes = append(summary.Outcomes, CycleOutcome{
			ContractId: contract.ID,
			ClientName: contract.ClientDisplayName(),
			Type:       decision.Type,
			Channel:    decision.Channel,
			Outcome:    OutcomeSimulated,
		})
		summary.Sent[decision.Type]++
		return
	}

	dispatch(ctx, now, contract, decision, msgCtx, deps, summary)
}

// dispatch writes the record first, then sends. A crash between the two
// leaves an orphan PENDING record rather than risking a duplicate send; a
// periodic sweep reconciles those. The dedup unique index makes a concurrent
// insert for the same (contract, type, day) fail with a duplicate key, which
// is treated as already handled.
func dispatch(ctx context.Context, now time.Time, contract *models.Contract, decision *NotificationDecision, msgCtx MessageContext, deps CycleDeps, summary *CycleSummary) {
	record := models.NotificationRecord{
		ContractId:    contract.ID,
		Type:          decision.Type,
		ScheduledDate: utils.TruncateToDate(now),
		Channel:       decision.Channel,
		Recipient:     decision.Recipient,
		Status:        models.NotificationStatusPending,
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		record.CorrelationId = correlationId
	}

	if !decision.Channel.IsExternal() {
		// Dashboard notifications are delivered once recorded.
		sentAt := now
		record.Status = models.NotificationStatusSent
		record.SentAt = &sentAt
	}

	if err := deps.Records.Create(ctx, &record); err != nil {
		if utils.IsDuplicateKeyErr(err) {
			// Another run got here first today.
			summary.Skipped[decision.Type]++
			summary.Outcomes = append(summary.Outcomes, CycleOutcome{
				ContractId: contract.ID,
				ClientName: contract.ClientDisplayName(),
				Type:       decision.Type,
				Channel:    decision.Channel,
				Outcome:    OutcomeSkipped,
				Error:      "already handled today",
			})
			return
		}
		summary.Failed[decision.Type]++
		summary.Outcomes = append(summary.Outcomes, CycleOutcome{
			ContractId: contract.ID,
			ClientName: contract.ClientDisplayName(),
			Type:       decision.Type,
			Channel:    decision.Channel,
			Outcome:    OutcomeFailed,
			Error:      err.Error(),
		})
		return
	}

	if !decision.Channel.IsExternal() {
		summary.Sent[decision.Type]++
		summary.Outcomes = append(summary.Outcomes, CycleOutcome{
			ContractId: contract.ID,
			ClientName: contract.ClientDisplayName(),
			Type:       decision.Type,
			Channel:    decision.Channel,
			Outcome:    OutcomeSent,
		})
		return
	}

	if err := deps.Sender.Send(ctx, decision.Channel, decision.Recipient, decision.Type, msgCtx); err != nil {
		channelErr := &utils.ChannelError{Channel: string(decision.Channel), Err: err}
		if markErr := deps.Records.MarkFailed(ctx, record.ID, channelErr.Error()); markErr != nil && deps.Logger != nil {
			logContractSkip(deps.Logger, contract.ID, markErr.Error())
		}
		summary.Failed[decision.Type]++
		summary.Outcomes = append(summary.Outcomes, CycleOutcome{
			ContractId: contract.ID,
			ClientName: contract.ClientDisplayName(),
			Type:       decision.Type,
			Channel:    decision.Channel,
			Outcome:    OutcomeFailed,
			Error:      channelErr.Error(),
		})
		return
	}

	sentAt := time.Now().UTC()
	if err := deps.Records.MarkSent(ctx, record.ID, sentAt); err != nil {
		// The send went out; the record is stuck PENDING for the sweep.
		summary.Failed[decision.Type]++
		summary.Outcomes = append(summary.Outcomes, CycleOutcome{
			ContractId: contract.ID,
			ClientName: contract.ClientDisplayName(),
			Type:       decision.Type,
			Channel:    decision.Channel,
			Outcome:    OutcomeFailed,
			Error:      err.Error(),
		})
		return
	}

	summary.Sent[decision.Type]++
	summary.Outcomes = append(summary.Outcomes, CycleOutcome{
		ContractId: contract.ID,
		ClientName: contract.ClientDisplayName(),
		Type:       decision.Type,
		Channel:    decision.Channel,
		Outcome:    OutcomeSent,
	})
}

func supplierDisplayName(contract *models.Contract) string {
	if contract.Supplier != nil {
		return contract.Supplier.Name
	}
	return ""
}

func logContractSkip(logger *logrus.Logger, contractId int, reason string) {
	logger.WithFields(logrus.Fields{
		"module":      "workflow",
		"contract_id": contractId,
	}).Warn(reason)
}
