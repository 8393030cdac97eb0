package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/metrics"
)

// Handle is a cancellable background task owned by the payment engine.
// Pollers and settlement timers self-cancel on a terminal status or budget
// exhaustion; Cancel exists for shutdown and for the webhook path to stop
// a poller whose payment was already resolved.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newHandle() *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Cancel stops the task. Safe to call more than once.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the task has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// startPolling launches the per-payment status poller. Each tick consumes
// one attempt whether the status check succeeds or not; a transport error
// is logged and retried on the next tick. A terminal mapped status
// finalizes the payment and stops the poller. An exhausted budget forces
// the payment to FAILED with a polling timeout message.
func (s *PaymentServiceImpl) startPolling(paymentID uint, referenceID string) *Handle {
	handle := newHandle()
	go s.pollStatus(handle, paymentID, referenceID)
	return handle
}

func (s *PaymentServiceImpl) pollStatus(handle *Handle, paymentID uint, referenceID string) {
	defer close(handle.done)
	defer s.untrack(paymentID)

	plog := s.log.WithFields(logrus.Fields{
		"payment_id":   paymentID,
		"reference_id": referenceID,
	})

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.cfg.PollMaxAttempts; attempt++ {
		select {
		case <-handle.ctx.Done():
			return
		case <-ticker.C:
		}

		providerStatus, err := s.gateway.CheckStatus(handle.ctx, referenceID)
		if err != nil {
			plog.WithError(err).WithField("attempt", attempt).Warn("status poll failed")
			continue
		}
		plog.WithFields(logrus.Fields{
			"attempt": attempt,
			"status":  providerStatus,
		}).Debug("status poll")

		if core.MapProviderStatus(providerStatus) == core.PaymentStatusPending {
			continue
		}
		if err := s.finalizeStatus(paymentID, providerStatus); err != nil {
			plog.WithError(err).Error("failed to finalize polled status")
		}
		return
	}

	applied, err := s.paymentRepo.Finalize(paymentID, core.PaymentStatusFailed, "Payment polling timeout")
	if err != nil {
		plog.WithError(err).Error("failed to record polling timeout")
		return
	}
	if applied {
		metrics.PaymentsFinalized.WithLabelValues(string(core.PaymentStatusFailed)).Inc()
		plog.Warn("payment polling timed out")
	}
}
