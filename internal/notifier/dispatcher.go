// Package notifier decides which debts are due a WhatsApp reminder, renders
// the messages and records every delivery attempt.
package notifier

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/internal/valuation"
	"github.com/segyhp/debt-tracker/internal/whatsapp"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
	"github.com/segyhp/debt-tracker/pkg/retry"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sender delivers one text message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// SentItem is one successfully notified debt in an owner summary.
type SentItem struct {
	DebtorName string
	Remaining  decimal.Decimal
}

// OwnerSummary collects what a cycle did for one debt owner.
type OwnerSummary struct {
	UserID      uuid.UUID
	Sent        []SentItem
	Failed      int
	SummarySent bool
}

// Report counts the outcomes of one dispatch cycle.
type Report struct {
	Processed int
	Sent      int
	Failed    int
	Skipped   int
	Invalid   int
	PerOwner  map[uuid.UUID]*OwnerSummary

	owners []uuid.UUID
}

func newReport() *Report {
	return &Report{PerOwner: make(map[uuid.UUID]*OwnerSummary)}
}

func (r *Report) owner(userID uuid.UUID) *OwnerSummary {
	s, ok := r.PerOwner[userID]
	if !ok {
		s = &OwnerSummary{UserID: userID}
		r.PerOwner[userID] = s
		r.owners = append(r.owners, userID)
	}
	return s
}

type Dispatcher struct {
	debts         repository.DebtRepository
	payments      repository.PaymentRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	sender        Sender
	clock         clock.Clock
	logger        *zap.Logger

	policy       retry.Policy
	overdueDays  int
	debtDelay    time.Duration
	summaryDelay time.Duration
	sendSummary  bool
	closingTag   string
	location     *time.Location
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(
	debts repository.DebtRepository,
	payments repository.PaymentRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	sender Sender,
	clk clock.Clock,
	cfg *config.Config,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		debts:         debts,
		payments:      payments,
		notifications: notifications,
		users:         users,
		sender:        sender,
		clock:         clk,
		logger:        logger.Named("notifier"),
		policy: retry.Policy{
			MaxAttempts: cfg.WhatsApp.MaxAttempts,
			Backoff:     retry.Linear(cfg.WhatsApp.BackoffStep),
			Retryable:   whatsapp.IsRetryable,
		},
		overdueDays:  cfg.Notification.OverduePeriodicityDays,
		debtDelay:    cfg.Notification.DebtDelay,
		summaryDelay: cfg.Notification.SummaryDelay,
		sendSummary:  cfg.Notification.SendSummary,
		closingTag:   cfg.Notification.ClosingTag,
		location:     cfg.Location(),
		sleep:        retry.Sleep,
	}
}

// RunCycle sends a reminder for every auto-notify debt that is due one, then
// reports to each owner. Debts are handled one at a time; a failure on one
// debt is counted and the cycle moves on. Cancelling ctx stops the cycle
// between debts.
func (d *Dispatcher) RunCycle(ctx context.Context) (*Report, error) {
	report := newReport()

	debts, err := d.debts.ListAutoNotify(ctx)
	if err != nil {
		return report, customError.WrapDatabaseError(err)
	}

	ids := make([]uuid.UUID, 0, len(debts))
	for _, debt := range debts {
		ids = append(ids, debt.ID)
	}
	payments, err := d.payments.ListActiveByDebtIDs(ctx, ids)
	if err != nil {
		return report, customError.WrapDatabaseError(err)
	}

	d.logger.Info("notification cycle started", zap.Int("candidates", len(debts)))

	var cycleErr error
	delivered := false
	for _, debt := range debts {
		if err := ctx.Err(); err != nil {
			cycleErr = err
			break
		}

		phone, message, ok := d.prepare(debt, payments[debt.ID], report)
		if !ok {
			report.Processed++
			continue
		}

		// Wait only between two sends.
		if delivered {
			if err := d.sleep(ctx, d.debtDelay); err != nil {
				cycleErr = err
				break
			}
		}
		report.Processed++

		if d.send(ctx, debt, phone, message, report) {
			delivered = true
		}
	}

	d.logger.Info("notification cycle finished",
		zap.Int("processed", report.Processed),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("invalid", report.Invalid),
	)

	if cycleErr == nil && d.sendSummary {
		cycleErr = d.sendSummaries(ctx, report)
	}

	return report, cycleErr
}

// prepare values a candidate and builds its reminder. It returns false, after
// counting the debt as skipped or invalid, when nothing should be sent.
func (d *Dispatcher) prepare(debt *domain.Debt, payments []*domain.Payment, report *Report) (string, string, bool) {
	now := d.clock.Now()

	if err := valuation.Project(debt, valuation.SumActive(payments), now); err != nil {
		report.Invalid++
		d.logger.Warn("skipping debt with invalid terms", zap.String("debt_id", debt.ID.String()), zap.Error(err))
		return "", "", false
	}

	if debt.RemainingAmount.IsZero() || !Eligible(debt, debt.Status, now, d.overdueDays) {
		report.Skipped++
		return "", "", false
	}

	phone := debtorPhone(debt)
	if phone == "" {
		report.Skipped++
		d.logger.Warn("skipping debt whose debtor has no phone", zap.String("debt_id", debt.ID.String()))
		return "", "", false
	}

	message := Render(debtorName(debt), debt.DueDate.In(d.location), now, debt.RemainingAmount, debt.Status, d.closingTag)
	return phone, message, true
}

// send delivers one reminder and records the outcome in report. It reports
// whether the gateway was contacted.
func (d *Dispatcher) send(ctx context.Context, debt *domain.Debt, phone, message string, report *Report) bool {
	log := d.logger.With(zap.String("debt_id", debt.ID.String()))

	notification, err := d.deliver(ctx, debt, phone, message)
	if notification == nil {
		// Nothing was sent; the owner is not told about a failure that never happened.
		report.Invalid++
		log.Error("failed to record notification, debt not sent", zap.Error(err))
		return false
	}
	if err != nil {
		log.Error("failed to record notification outcome", zap.Error(err))
	}

	owner := report.owner(debt.UserID)
	if notification.Status == domain.NotificationStatusSent {
		report.Sent++
		owner.Sent = append(owner.Sent, SentItem{DebtorName: debtorName(debt), Remaining: debt.RemainingAmount})
	} else {
		report.Failed++
		owner.Failed++
	}

	return true
}

// SendManual delivers a reminder for one debt right away, using custom as the
// text when it is not blank. The returned notification tells whether the
// gateway accepted it.
func (d *Dispatcher) SendManual(ctx context.Context, userID, debtID uuid.UUID, custom string) (*domain.Notification, error) {
	debt, err := d.debts.GetByID(ctx, userID, debtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDebtNotFound(debtID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := d.payments.ListByDebt(ctx, debtID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := d.clock.Now()
	if err := valuation.Project(debt, valuation.SumActive(payments), now); err != nil {
		return nil, err
	}

	phone := debtorPhone(debt)
	if phone == "" {
		return nil, customError.WrapInvalidInput("debtor has no phone number")
	}

	var message string
	if strings.TrimSpace(custom) != "" {
		message = RenderManual(custom, d.closingTag)
	} else {
		message = Render(debtorName(debt), debt.DueDate.In(d.location), now, debt.RemainingAmount, debt.Status, d.closingTag)
	}

	return d.deliver(ctx, debt, phone, message)
}

// deliver records a PENDING notification, sends it with retries and stores
// the outcome. A nil notification means nothing was sent. The returned error
// only reports storage failures; delivery failures end up in the record.
func (d *Dispatcher) deliver(ctx context.Context, debt *domain.Debt, phone, message string) (*domain.Notification, error) {
	now := d.clock.Now()
	debtorID := debt.DebtorID
	debtID := debt.ID

	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    debt.UserID,
		DebtorID:  &debtorID,
		DebtID:    &debtID,
		Phone:     phone,
		Message:   message,
		Status:    domain.NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.notifications.Create(ctx, notification); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	attempts, sendErr := retry.Do(ctx, d.policy, func(ctx context.Context, attempt int) error {
		return d.sender.Send(ctx, phone, message)
	})

	notification.Attempts = attempts
	if sendErr == nil {
		sentAt := d.clock.Now()
		notification.Status = domain.NotificationStatusSent
		notification.SentAt = &sentAt
	} else {
		errMsg := sendErr.Error()
		notification.Status = domain.NotificationStatusFailed
		notification.ErrorMessage = &errMsg
		d.logger.Warn("notification delivery failed",
			zap.String("debt_id", debt.ID.String()),
			zap.Int("attempts", attempts),
			zap.Error(sendErr),
		)
	}

	// The outcome must be stored even when the cycle is being cancelled.
	storeCtx := context.WithoutCancel(ctx)
	var errs []error
	if err := d.notifications.UpdateOutcome(storeCtx, notification); err != nil {
		errs = append(errs, customError.WrapDatabaseError(err))
	}
	if notification.Status == domain.NotificationStatusSent {
		if err := d.debts.TouchLastNotification(storeCtx, debt.ID, *notification.SentAt); err != nil {
			errs = append(errs, customError.WrapDatabaseError(err))
		} else {
			debt.LastNotification = notification.SentAt
		}
	}

	return notification, errors.Join(errs...)
}

func (d *Dispatcher) sendSummaries(ctx context.Context, report *Report) error {
	sentAny := false
	for _, userID := range report.owners {
		summary := report.PerOwner[userID]
		if len(summary.Sent) == 0 && summary.Failed == 0 {
			continue
		}

		if sentAny {
			if err := d.sleep(ctx, d.summaryDelay); err != nil {
				return err
			}
		}

		log := d.logger.With(zap.String("user_id", userID.String()))
		user, err := d.users.GetByID(ctx, userID)
		if err != nil {
			log.Warn("skipping summary, owner not loaded", zap.Error(err))
			continue
		}
		if user.Phone == nil || strings.TrimSpace(*user.Phone) == "" {
			log.Warn("skipping summary, owner has no phone")
			continue
		}

		message := RenderSummary(user.Name, d.clock.Now().In(d.location), summary, d.closingTag)
		_, err = retry.Do(ctx, d.policy, func(ctx context.Context, attempt int) error {
			return d.sender.Send(ctx, *user.Phone, message)
		})
		sentAny = true
		if err != nil {
			log.Warn("owner summary delivery failed", zap.Error(err))
			continue
		}
		summary.SummarySent = true
	}

	return nil
}

func debtorPhone(debt *domain.Debt) string {
	if debt.Debtor == nil {
		return ""
	}
	return strings.TrimSpace(debt.Debtor.Phone)
}

func debtorName(debt *domain.Debt) string {
	if debt.Debtor == nil {
		return ""
	}
	return debt.Debtor.Name
}
