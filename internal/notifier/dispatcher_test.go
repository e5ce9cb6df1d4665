package notifier

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/mocks"
	"github.com/segyhp/debt-tracker/internal/whatsapp"
	"github.com/segyhp/debt-tracker/pkg/clock"
	customError "github.com/segyhp/debt-tracker/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

type dispatcherFixture struct {
	debts         *mocks.MockDebtRepository
	payments      *mocks.MockPaymentRepository
	notifications *mocks.MockNotificationRepository
	users         *mocks.MockUserRepository
	sender        *mocks.MockSender

	dispatcher *Dispatcher
	backoffs   []time.Duration
	delays     []time.Duration
}

func newDispatcherFixture(sendSummary bool) *dispatcherFixture {
	f := &dispatcherFixture{
		debts:         new(mocks.MockDebtRepository),
		payments:      new(mocks.MockPaymentRepository),
		notifications: new(mocks.MockNotificationRepository),
		users:         new(mocks.MockUserRepository),
		sender:        new(mocks.MockSender),
	}

	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{Timezone: "UTC"},
		WhatsApp:  config.WhatsAppConfig{MaxAttempts: 3, BackoffStep: 2 * time.Second},
		Notification: config.NotificationConfig{
			OverduePeriodicityDays: 2,
			DebtDelay:              5 * time.Second,
			SummaryDelay:           3 * time.Second,
			SendSummary:            sendSummary,
			ClosingTag:             "#DEBTTRACKER",
		},
	}

	f.dispatcher = NewDispatcher(f.debts, f.payments, f.notifications, f.users, f.sender, clock.Fixed(testNow), cfg, zap.NewNop())
	f.dispatcher.policy.Sleep = func(ctx context.Context, d time.Duration) error {
		f.backoffs = append(f.backoffs, d)
		return nil
	}
	f.dispatcher.sleep = func(ctx context.Context, d time.Duration) error {
		f.delays = append(f.delays, d)
		return nil
	}
	return f
}

func (f *dispatcherFixture) assertExpectations(t *testing.T) {
	f.debts.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func newAutoDebt(ownerID uuid.UUID, name, phone string, due time.Time) *domain.Debt {
	periodicity := 2
	return &domain.Debt{
		ID:                uuid.New(),
		UserID:            ownerID,
		DebtorID:          uuid.New(),
		Principal:         decimal.NewFromInt(1000),
		InterestRate:      decimal.NewFromInt(10),
		LoanDate:          testNow.AddDate(0, -1, 0),
		DueDate:           due,
		Status:            domain.DebtStatusPending,
		AutoNotify:        true,
		NotifyPeriodicity: &periodicity,
		Active:            true,
		Debtor:            &domain.Debtor{Name: name, Phone: phone},
	}
}

func TestRunCycle_RetriesTransportErrors(t *testing.T) {
	f := newDispatcherFixture(false)
	debt := newAutoDebt(uuid.New(), "João", "841234567", testNow.AddDate(0, 0, 3))

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{debt}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, []uuid.UUID{debt.ID}).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	var stored *domain.Notification
	f.notifications.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Notification) }).
		Return(nil)

	timeout := &whatsapp.TransportError{Err: errors.New("timeout")}
	f.sender.On("Send", mock.Anything, "841234567", mock.Anything).Return(timeout).Twice()
	f.sender.On("Send", mock.Anything, "841234567", mock.Anything).Return(nil).Once()
	f.debts.On("TouchLastNotification", mock.Anything, debt.ID, testNow).Return(nil)

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 0, report.Failed)

	require.NotNil(t, stored)
	assert.Equal(t, domain.NotificationStatusSent, stored.Status)
	assert.Equal(t, 3, stored.Attempts)
	assert.Nil(t, stored.ErrorMessage)
	assert.Contains(t, stored.Message, "💰 Valor a pagar: 1 100 MT")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.backoffs)
	assert.Empty(t, f.delays)
	f.assertExpectations(t)
}

func TestRunCycle_GatewayRejectionIsNotRetried(t *testing.T) {
	f := newDispatcherFixture(false)
	debt := newAutoDebt(uuid.New(), "Maria", "841111111", testNow.AddDate(0, 0, -5))

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{debt}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)

	var stored *domain.Notification
	f.notifications.On("UpdateOutcome", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Notification) }).
		Return(nil)
	f.sender.On("Send", mock.Anything, "841111111", mock.Anything).
		Return(&whatsapp.GatewayError{StatusCode: 400, Message: "invalid number"}).Once()

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.NotNil(t, stored)
	assert.Equal(t, domain.NotificationStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "invalid number", *stored.ErrorMessage)
	assert.Contains(t, stored.Message, "⚠️ Dívida em atraso há 5 dias")
	assert.Empty(t, f.backoffs)
	f.debts.AssertNotCalled(t, "TouchLastNotification", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestRunCycle_SkipsIneligibleDebts(t *testing.T) {
	f := newDispatcherFixture(true)
	owner := uuid.New()

	recent := newAutoDebt(owner, "Recente", "841000001", testNow.AddDate(0, 0, 10))
	last := testNow.AddDate(0, 0, -1)
	recent.LastNotification = &last

	noPhone := newAutoDebt(owner, "Sem Telefone", "  ", testNow.AddDate(0, 0, 10))

	settled := newAutoDebt(owner, "Quitado", "841000002", testNow.AddDate(0, 0, 10))

	invalid := newAutoDebt(owner, "Invalido", "841000003", testNow.AddDate(0, 0, 10))
	invalid.Principal = decimal.Zero

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{recent, noPhone, settled, invalid}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{
		settled.ID: {{Amount: decimal.NewFromInt(1100), Active: true}},
	}, nil)

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, f.delays)
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestRunCycle_SendsOwnerSummary(t *testing.T) {
	f := newDispatcherFixture(true)
	owner := uuid.New()
	ownerPhone := "849999999"

	first := newAutoDebt(owner, "João", "841000001", testNow.AddDate(0, 0, 3))
	second := newAutoDebt(owner, "Maria", "841000002", testNow.AddDate(0, 0, 4))

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{first, second}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("UpdateOutcome", mock.Anything, mock.Anything).Return(nil)
	f.sender.On("Send", mock.Anything, "841000001", mock.Anything).Return(nil).Once()
	f.sender.On("Send", mock.Anything, "841000002", mock.Anything).Return(&whatsapp.GatewayError{StatusCode: 500, Message: "down"}).Once()
	f.debts.On("TouchLastNotification", mock.Anything, first.ID, testNow).Return(nil)
	f.users.On("GetByID", mock.Anything, owner).Return(&domain.User{ID: owner, Name: "Ana", Phone: &ownerPhone}, nil)

	var summary string
	f.sender.On("Send", mock.Anything, ownerPhone, mock.Anything).
		Run(func(args mock.Arguments) { summary = args.String(2) }).
		Return(nil).Once()

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []time.Duration{5 * time.Second}, f.delays)

	ownerSummary := report.PerOwner[owner]
	require.NotNil(t, ownerSummary)
	assert.True(t, ownerSummary.SummarySent)
	assert.True(t, strings.HasPrefix(summary, "Olá Boss Ana! 👋"))
	assert.Contains(t, summary, "• João - 1 100 MT")
	assert.Contains(t, summary, "❌ *1* falha ao enviar")
	f.assertExpectations(t)
}

func TestRunCycle_SkipsSummaryWithoutOwnerPhone(t *testing.T) {
	f := newDispatcherFixture(true)
	owner := uuid.New()
	debt := newAutoDebt(owner, "João", "841000001", testNow.AddDate(0, 0, 3))

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{debt}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("UpdateOutcome", mock.Anything, mock.Anything).Return(nil)
	f.sender.On("Send", mock.Anything, "841000001", mock.Anything).Return(nil).Once()
	f.debts.On("TouchLastNotification", mock.Anything, debt.ID, testNow).Return(nil)
	f.users.On("GetByID", mock.Anything, owner).Return(&domain.User{ID: owner, Name: "Ana"}, nil)

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.False(t, report.PerOwner[owner].SummarySent)
	f.assertExpectations(t)
}

func TestRunCycle_StopsWhenCancelled(t *testing.T) {
	f := newDispatcherFixture(true)
	owner := uuid.New()
	first := newAutoDebt(owner, "João", "841000001", testNow.AddDate(0, 0, 3))
	second := newAutoDebt(owner, "Maria", "841000002", testNow.AddDate(0, 0, 3))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.dispatcher.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{first, second}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.notifications.On("UpdateOutcome", mock.Anything, mock.Anything).Return(nil).Once()
	f.sender.On("Send", mock.Anything, "841000001", mock.Anything).Return(nil).Once()
	f.debts.On("TouchLastNotification", mock.Anything, first.ID, testNow).Return(nil)

	report, err := f.dispatcher.RunCycle(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Sent)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, "841000002", mock.Anything)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestRunCycle_DelaysOnlyBetweenSends(t *testing.T) {
	f := newDispatcherFixture(false)
	owner := uuid.New()

	last := testNow.AddDate(0, 0, -1)
	leading := newAutoDebt(owner, "Recente", "841000009", testNow.AddDate(0, 0, 10))
	leading.LastNotification = &last
	first := newAutoDebt(owner, "João", "841000001", testNow.AddDate(0, 0, 3))
	second := newAutoDebt(owner, "Maria", "841000002", testNow.AddDate(0, 0, 3))
	trailing := newAutoDebt(owner, "Sem Telefone", "", testNow.AddDate(0, 0, 3))

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{leading, first, second, trailing}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("UpdateOutcome", mock.Anything, mock.Anything).Return(nil)
	f.sender.On("Send", mock.Anything, "841000001", mock.Anything).Return(nil).Once()
	f.sender.On("Send", mock.Anything, "841000002", mock.Anything).Return(nil).Once()
	f.debts.On("TouchLastNotification", mock.Anything, first.ID, testNow).Return(nil)
	f.debts.On("TouchLastNotification", mock.Anything, second.ID, testNow).Return(nil)

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, []time.Duration{5 * time.Second}, f.delays)
	f.assertExpectations(t)
}

func TestRunCycle_RecordFailureIsNotADeliveryFailure(t *testing.T) {
	f := newDispatcherFixture(true)
	owner := uuid.New()
	debt := newAutoDebt(owner, "João", "841000001", testNow.AddDate(0, 0, 3))

	f.debts.On("ListAutoNotify", mock.Anything).Return([]*domain.Debt{debt}, nil)
	f.payments.On("ListActiveByDebtIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID][]*domain.Payment{}, nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	report, err := f.dispatcher.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 0, report.Failed)
	assert.Nil(t, report.PerOwner[owner])
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestRunCycle_ListFailure(t *testing.T) {
	f := newDispatcherFixture(false)
	f.debts.On("ListAutoNotify", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := f.dispatcher.RunCycle(context.Background())

	assert.Equal(t, customError.ErrCodeDatabaseError, customError.Code(err))
}

func TestSendManual(t *testing.T) {
	t.Run("custom text gets the closing tag", func(t *testing.T) {
		f := newDispatcherFixture(false)
		owner := uuid.New()
		debt := newAutoDebt(owner, "João", "841000001", testNow.AddDate(0, 0, 3))

		f.debts.On("GetByID", mock.Anything, owner, debt.ID).Return(debt, nil)
		f.payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{}, nil)
		f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.notifications.On("UpdateOutcome", mock.Anything, mock.Anything).Return(nil)
		f.sender.On("Send", mock.Anything, "841000001", "Pague hoje\n\n#DEBTTRACKER").Return(nil).Once()
		f.debts.On("TouchLastNotification", mock.Anything, debt.ID, testNow).Return(nil)

		notification, err := f.dispatcher.SendManual(context.Background(), owner, debt.ID, " Pague hoje ")

		require.NoError(t, err)
		assert.Equal(t, domain.NotificationStatusSent, notification.Status)
		assert.Equal(t, 1, notification.Attempts)
		require.NotNil(t, notification.DebtID)
		assert.Equal(t, debt.ID, *notification.DebtID)
		f.assertExpectations(t)
	})

	t.Run("unknown debt", func(t *testing.T) {
		f := newDispatcherFixture(false)
		owner, debtID := uuid.New(), uuid.New()
		f.debts.On("GetByID", mock.Anything, owner, debtID).Return(nil, sql.ErrNoRows)

		_, err := f.dispatcher.SendManual(context.Background(), owner, debtID, "")

		assert.Equal(t, customError.ErrCodeDebtNotFound, customError.Code(err))
	})

	t.Run("debtor without phone", func(t *testing.T) {
		f := newDispatcherFixture(false)
		owner := uuid.New()
		debt := newAutoDebt(owner, "João", "", testNow.AddDate(0, 0, 3))
		f.debts.On("GetByID", mock.Anything, owner, debt.ID).Return(debt, nil)
		f.payments.On("ListByDebt", mock.Anything, debt.ID).Return([]*domain.Payment{}, nil)

		_, err := f.dispatcher.SendManual(context.Background(), owner, debt.ID, "")

		assert.Equal(t, customError.ErrCodeInvalidInput, customError.Code(err))
		f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
