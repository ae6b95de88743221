package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the admission lifecycle.
type Metrics struct {
	ApplicationsSubmitted    prometheus.Counter
	DraftsSaved              prometheus.Counter
	VerificationsRecorded    prometheus.Counter
	ConsensusReached         prometheus.Counter
	PaymentsVerified         prometheus.Counter
	PaymentSignatureMismatch prometheus.Counter
	AdmitCardsGenerated      prometheus.Counter
	DocumentRequestsOpened   prometheus.Counter
	NotificationsAppended    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_applications_submitted_total",
			Help: "Total number of non-draft applications submitted",
		}),
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_drafts_saved_total",
			Help: "Total number of draft applications saved",
		}),
		VerificationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_verifications_recorded_total",
			Help: "Total number of admin or faculty verification flag writes",
		}),
		ConsensusReached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_verification_consensus_total",
			Help: "Total number of times documents_verified became true",
		}),
		PaymentsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_payments_verified_total",
			Help: "Total number of successfully reconciled payments",
		}),
		PaymentSignatureMismatch: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_payment_signature_mismatch_total",
			Help: "Total number of payment verifications rejected on signature",
		}),
		AdmitCardsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_admit_cards_generated_total",
			Help: "Total number of admit card artifacts rendered",
		}),
		DocumentRequestsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_document_requests_opened_total",
			Help: "Total number of supplementary document requests created",
		}),
		NotificationsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admitflow_notifications_appended_total",
			Help: "Total number of notifications appended to the log",
		}),
	}
}
