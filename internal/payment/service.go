// Package payment reconciles application-fee payments against the external
// gateway: order creation, constant-time signature verification, and an
// idempotent local record of the outcome keyed on the gateway payment id.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"admitflow/internal/application/models"
	"admitflow/internal/events"
	"admitflow/internal/platform/metrics"
	dErrors "admitflow/pkg/domain-errors"
	"admitflow/pkg/sentinel"
)

var tracer = otel.Tracer("admitflow/payment")

// Store is the slice of the application store this service needs.
type Store interface {
	Execute(ctx context.Context, id int64, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
}

// Notifier records out-of-band reconciliation notes.
type Notifier interface {
	Note(ctx context.Context, applicationID *int64, message string) error
}

// ReceiptRenderer renders the fee receipt artifact.
type ReceiptRenderer interface {
	RenderReceipt(r Receipt) ([]byte, error)
}

// ArtifactStore commits rendered artifacts to disk.
type ArtifactStore interface {
	SaveArtifact(subdir, name string, data []byte) (string, error)
}

// Receipt carries the fields printed on a fee receipt.
type Receipt struct {
	ReceiptNo     string
	StudentName   string
	ApplicationID int64
	CourseID      int64
	Amount        decimal.Decimal
	Currency      string
	PaidAt        time.Time
}

// Result reports the verification outcome. A signature mismatch is a reported
// false, not an error.
type Result struct {
	Valid         bool                 `json:"valid"`
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`
}

// Config carries the gateway secret and the flat application fee. The fee is
// intentionally flat; it does not read Course.Fee.
type Config struct {
	KeySecret string
	FeePaise  int64
	Currency  string
}

// Service reconciles payments.
type Service struct {
	cfg       Config
	gateway   Gateway
	store     Store
	notifier  Notifier
	renderer  ReceiptRenderer
	artifacts ArtifactStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithReceipts enables fee-receipt rendering after a successful verify.
func WithReceipts(r ReceiptRenderer, artifacts ArtifactStore) Option {
	return func(s *Service) {
		s.renderer = r
		s.artifacts = artifacts
	}
}

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(cfg Config, gateway Gateway, store Store, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		gateway:   gateway,
		store:     store,
		publisher: events.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CreateOrder opens a gateway order for the flat application fee. Gateway
// unreachability is a retryable failure, not fatal.
func (s *Service) CreateOrder(ctx context.Context) (Order, error) {
	receipt := fmt.Sprintf("admission_fee_%d", s.now().UnixMilli())
	order, err := s.gateway.CreateOrder(ctx, s.cfg.FeePaise, s.cfg.Currency, receipt)
	if err != nil {
		return Order{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "payment gateway unreachable")
	}
	s.logger.InfoContext(ctx, "payment order created",
		"order_id", order.ID,
		"amount_paise", order.AmountPaise,
	)
	return order, nil
}

// errAlreadyRecorded aborts the Execute mutation when the exact payment was
// already reconciled; the caller treats it as success.
var errAlreadyRecorded = errors.New("payment already recorded")

// Verify recomputes the gateway signature over "orderID|paymentID" and, on a
// constant-time match, records the payment atomically. Re-submitting the same
// valid pair is a no-op: revenue is recorded at most once per payment id.
func (s *Service) Verify(ctx context.Context, orderID, paymentID, clientSignature string, applicationID int64) (Result, error) {
	ctx, span := tracer.Start(ctx, "payment.verify")
	span.SetAttributes(attribute.Int64("application.id", applicationID))
	defer span.End()

	if orderID == "" || paymentID == "" {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "order id and payment id are required")
	}

	if !s.signatureMatches(orderID, paymentID, clientSignature) {
		s.logger.WarnContext(ctx, "payment signature mismatch",
			"order_id", orderID,
			"application_id", applicationID,
		)
		if s.metrics != nil {
			s.metrics.PaymentSignatureMismatch.Inc()
		}
		return Result{Valid: false}, nil
	}

	amount := decimal.NewFromInt(s.cfg.FeePaise).Div(decimal.NewFromInt(100))
	paidAt := s.now()

	app, err := s.store.Execute(ctx, applicationID,
		func(a *models.Application) error {
			if a.PaymentStatus == models.PaymentPaid {
				if a.PaymentID != nil && *a.PaymentID == paymentID {
					return errAlreadyRecorded
				}
				return fmt.Errorf("application already paid with a different payment id: %w", sentinel.ErrConflict)
			}
			return nil
		},
		func(a *models.Application) {
			pid := paymentID
			at := paidAt
			a.PaymentStatus = models.PaymentPaid
			a.PaymentID = &pid
			a.PaymentDate = &at
			a.PaymentAmount = amount
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, errAlreadyRecorded):
			return Result{Valid: true, PaymentStatus: models.PaymentPaid}, nil
		case errors.Is(err, sentinel.ErrConflict):
			return Result{}, dErrors.New(dErrors.CodeConflict, "payment already recorded for this application")
		case errors.Is(err, sentinel.ErrNotFound):
			// The gateway capture stands even though we have no local
			// application to attach it to; leave an out-of-band trail
			// for manual reconciliation.
			s.noteOrphanCapture(ctx, orderID, paymentID, applicationID)
			return Result{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		case errors.Is(err, sentinel.ErrUnavailable):
			return Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
		default:
			return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
		}
	}

	s.logger.InfoContext(ctx, "payment reconciled",
		"application_id", applicationID,
		"payment_id", paymentID,
		"amount", amount.String(),
	)
	if s.metrics != nil {
		s.metrics.PaymentsVerified.Inc()
	}
	if err := s.publisher.Emit(ctx, events.Event{
		Type:          events.PaymentCaptured,
		ApplicationID: applicationID,
		Fields:        map[string]string{"payment_id": paymentID},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish payment event",
			"application_id", applicationID, "error", err)
	}

	s.renderReceipt(ctx, app, paidAt)
	return Result{Valid: true, PaymentStatus: models.PaymentPaid}, nil
}

func (s *Service) signatureMatches(orderID, paymentID, clientSignature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	// Constant-time compare; a plain == would leak prefix length.
	return hmac.Equal([]byte(expected), []byte(clientSignature))
}

func (s *Service) noteOrphanCapture(ctx context.Context, orderID, paymentID string, applicationID int64) {
	if s.notifier == nil {
		return
	}
	msg := fmt.Sprintf("reconciliation_pending: gateway captured payment %s (order %s) for unknown application %d",
		paymentID, orderID, applicationID)
	if err := s.notifier.Note(ctx, nil, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to record reconciliation note",
			"payment_id", paymentID, "error", err)
	}
}

// renderReceipt is best-effort: a receipt failure never fails a reconciled
// payment.
func (s *Service) renderReceipt(ctx context.Context, app *models.Application, paidAt time.Time) {
	if s.renderer == nil || s.artifacts == nil || app == nil {
		return
	}

	receipt := Receipt{
		ReceiptNo:     fmt.Sprintf("REC%d", paidAt.UnixMilli()%100000),
		StudentName:   app.StudentName,
		ApplicationID: app.ID,
		CourseID:      app.CourseID,
		Amount:        app.PaymentAmount,
		Currency:      s.cfg.Currency,
		PaidAt:        paidAt,
	}
	data, err := s.renderer.RenderReceipt(receipt)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to render receipt", "application_id", app.ID, "error", err)
		return
	}
	name := fmt.Sprintf("receipt-%d-%d.pdf", app.ID, paidAt.UnixMilli())
	path, err := s.artifacts.SaveArtifact("receipts", name, data)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to store receipt", "application_id", app.ID, "error", err)
		return
	}
	if _, err := s.store.Execute(ctx, app.ID, nil, func(a *models.Application) {
		a.ReceiptPath = &path
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to attach receipt path", "application_id", app.ID, "error", err)
	}
}
