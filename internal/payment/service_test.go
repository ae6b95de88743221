package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/suite"

	"admitflow/internal/application/models"
	"admitflow/internal/application/store"
	dErrors "admitflow/pkg/domain-errors"
)

const testSecret = "test-key-secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeGateway struct {
	orders int
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string) (Order, error) {
	g.orders++
	return Order{ID: "order_test_1", AmountPaise: amountPaise, Currency: currency, Receipt: receipt}, nil
}

type recordingNotifier struct {
	notes []string
}

func (n *recordingNotifier) Note(_ context.Context, _ *int64, message string) error {
	n.notes = append(n.notes, message)
	return nil
}

type PaymentSuite struct {
	suite.Suite
	apps     *store.Memory
	gateway  *fakeGateway
	notifier *recordingNotifier
	svc      *Service
	ctx      context.Context
}

func TestPaymentSuite(t *testing.T) {
	suite.Run(t, new(PaymentSuite))
}

func (s *PaymentSuite) SetupTest() {
	s.apps = store.NewMemory()
	s.gateway = &fakeGateway{}
	s.notifier = &recordingNotifier{}
	s.svc = New(
		Config{KeySecret: testSecret, FeePaise: 100 * 100, Currency: "INR"},
		s.gateway,
		s.apps,
		WithNotifier(s.notifier),
	)
	s.ctx = context.Background()
}

func (s *PaymentSuite) submit() int64 {
	id, err := s.apps.Create(s.ctx, &models.Application{
		StudentName: "Asha",
		Email:       "asha@example.com",
		CourseID:    1,
	})
	s.Require().NoError(err)
	return id
}

func (s *PaymentSuite) TestCreateOrderUsesFlatFee() {
	order, err := s.svc.CreateOrder(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(100*100), order.AmountPaise)
	s.Equal("INR", order.Currency)
	s.Equal(1, s.gateway.orders)
}

func (s *PaymentSuite) TestVerifyRecordsPayment() {
	id := s.submit()

	result, err := s.svc.Verify(s.ctx, "order_1", "pay_1", sign("order_1", "pay_1"), id)
	s.Require().NoError(err)
	s.True(result.Valid)
	s.Equal(models.PaymentPaid, result.PaymentStatus)

	app, err := s.apps.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.PaymentPaid, app.PaymentStatus)
	s.Require().NotNil(app.PaymentID)
	s.Equal("pay_1", *app.PaymentID)
	s.NotNil(app.PaymentDate)
	s.Equal("100", app.PaymentAmount.String())
}

func (s *PaymentSuite) TestTamperedSignatureIsReportedNotRecorded() {
	id := s.submit()

	result, err := s.svc.Verify(s.ctx, "order_1", "pay_1", "deadbeef", id)
	s.Require().NoError(err)
	s.False(result.Valid)

	app, err := s.apps.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.PaymentPending, app.PaymentStatus)
	s.Nil(app.PaymentID)
}

func (s *PaymentSuite) TestVerifyIsIdempotentPerPaymentID() {
	id := s.submit()
	sig := sign("order_1", "pay_1")

	first, err := s.svc.Verify(s.ctx, "order_1", "pay_1", sig, id)
	s.Require().NoError(err)
	s.True(first.Valid)

	again, err := s.svc.Verify(s.ctx, "order_1", "pay_1", sig, id)
	s.Require().NoError(err)
	s.True(again.Valid)
	s.Equal(models.PaymentPaid, again.PaymentStatus)
}

func (s *PaymentSuite) TestSecondPaymentIDConflicts() {
	id := s.submit()

	_, err := s.svc.Verify(s.ctx, "order_1", "pay_1", sign("order_1", "pay_1"), id)
	s.Require().NoError(err)

	_, err = s.svc.Verify(s.ctx, "order_2", "pay_2", sign("order_2", "pay_2"), id)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PaymentSuite) TestUnknownApplicationLeavesReconciliationNote() {
	_, err := s.svc.Verify(s.ctx, "order_1", "pay_1", sign("order_1", "pay_1"), 404)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Require().Len(s.notifier.notes, 1)
	s.Contains(s.notifier.notes[0], "reconciliation_pending")
	s.Contains(s.notifier.notes[0], "pay_1")
}

func (s *PaymentSuite) TestMissingIDsRejected() {
	_, err := s.svc.Verify(s.ctx, "", "pay_1", "sig", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.svc.Verify(s.ctx, "order_1", "", "sig", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
