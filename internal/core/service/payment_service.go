package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/metrics"
	"github.com/lipago/voucher-payments/internal/port/input"
	"github.com/lipago/voucher-payments/internal/port/output"
)

// Config carries the payment engine tunables. Tests shrink the timers to
// drive settlement and polling deterministically.
type Config struct {
	// LiveGateways lists the gateway selectors dispatched through the
	// mobile-money adapter; everything else takes the mock settlement
	LiveGateways map[core.Gateway]bool

	// Currency used on request-to-pay calls
	Currency core.Currency

	// MockSettleDelay is the fixed delay before a mock gateway payment
	// settles as PAID
	MockSettleDelay time.Duration

	// PollInterval is the delay between status poll attempts
	PollInterval time.Duration

	// PollMaxAttempts bounds the poll budget; exhaustion forces FAILED
	PollMaxAttempts int
}

// DefaultConfig matches the production cadence: 2s mock settlement and a
// 10s poll every 30 attempts (about five minutes)
func DefaultConfig() Config {
	return Config{
		LiveGateways:    map[core.Gateway]bool{core.GatewayMTN: true},
		Currency:        core.CurrencyEUR,
		MockSettleDelay: 2 * time.Second,
		PollInterval:    10 * time.Second,
		PollMaxAttempts: 30,
	}
}

// PaymentServiceImpl implements the PaymentService input port. It owns the
// payment lifecycle: creation, gateway dispatch, status transition and
// voucher finalization, plus the background tasks that settle payments.
type PaymentServiceImpl struct {
	cfg         Config
	paymentRepo output.PaymentRepository
	voucherRepo output.VoucherRepository
	gateway     output.MomoGateway
	log         logrus.FieldLogger

	mu      sync.Mutex
	handles map[uint]*Handle
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	cfg Config,
	paymentRepo output.PaymentRepository,
	voucherRepo output.VoucherRepository,
	gateway output.MomoGateway,
	log logrus.FieldLogger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		voucherRepo: voucherRepo,
		gateway:     gateway,
		log:         log,
		handles:     make(map[uint]*Handle),
	}
}

// Init creates a payment and dispatches it to the selected gateway
func (s *PaymentServiceImpl) Init(req input.InitPaymentRequest) (*input.InitPaymentResponse, error) {
	if req.Gateway == "" || req.Amount <= 0 {
		return nil, fmt.Errorf("%w: gateway and amount are required", core.ErrValidation)
	}
	live := s.cfg.LiveGateways[req.Gateway]
	if live && req.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number is required for mobile money", core.ErrValidation)
	}

	var voucherID *uint
	var packageType string
	code := core.NormalizeVoucherCode(req.VoucherCode)
	if code != "" {
		voucher, err := s.voucherRepo.GetByCode(code)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf("%w: invalid voucher code", core.ErrVoucherState)
			}
			return nil, fmt.Errorf("failed to look up voucher: %w", err)
		}
		if voucher.Used {
			return nil, fmt.Errorf("%w: voucher has already been used", core.ErrVoucherState)
		}
		if voucher.IsExpired(time.Now()) {
			return nil, fmt.Errorf("%w: voucher has expired", core.ErrVoucherState)
		}
		paid, err := s.paymentRepo.HasPaidForVoucherCode(code)
		if err != nil {
			return nil, fmt.Errorf("failed to check voucher payments: %w", err)
		}
		if paid {
			return nil, fmt.Errorf("%w: voucher is already paid for", core.ErrVoucherState)
		}
		voucherID = &voucher.ID
		packageType = voucher.PackageType
	}

	payment := &core.Payment{
		UserID:      req.UserID,
		Gateway:     req.Gateway,
		Amount:      req.Amount,
		Status:      core.PaymentStatusInit,
		PhoneNumber: req.PhoneNumber,
		VoucherID:   voucherID,
		VoucherCode: code,
		PackageType: packageType,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	metrics.PaymentsInitiated.WithLabelValues(string(req.Gateway)).Inc()

	if live {
		return s.dispatchLive(payment)
	}

	s.track(payment.ID, s.scheduleMockSettlement(payment.ID))
	return &input.InitPaymentResponse{
		PaymentID:   payment.ID,
		Status:      core.PaymentStatusInit,
		RedirectURL: "/mock-gateway",
	}, nil
}

// dispatchLive sends the request-to-pay, records the reference id and
// starts the per-payment status poller
func (s *PaymentServiceImpl) dispatchLive(payment *core.Payment) (*input.InitPaymentResponse, error) {
	referenceID, err := s.gateway.RequestToPay(
		context.Background(),
		payment.PhoneNumber,
		payment.Amount,
		s.cfg.Currency,
		fmt.Sprintf("payment_%d", payment.ID),
		fmt.Sprintf("Payment for order %d", payment.ID),
		fmt.Sprintf("Please pay %.2f for your order", payment.Amount),
	)
	if err != nil {
		if _, ferr := s.paymentRepo.Finalize(payment.ID, core.PaymentStatusFailed, err.Error()); ferr != nil {
			s.log.WithError(ferr).WithField("payment_id", payment.ID).Error("failed to record dispatch failure")
		}
		metrics.PaymentsFinalized.WithLabelValues(string(core.PaymentStatusFailed)).Inc()
		return nil, fmt.Errorf("%w: %v", core.ErrGatewayDispatch, err)
	}

	if err := s.paymentRepo.MarkPending(payment.ID, referenceID); err != nil {
		return nil, fmt.Errorf("failed to record gateway reference: %w", err)
	}
	s.track(payment.ID, s.startPolling(payment.ID, referenceID))

	return &input.InitPaymentResponse{
		PaymentID:   payment.ID,
		Status:      core.PaymentStatusPending,
		ReferenceID: referenceID,
		Message:     "Payment request sent to mobile money provider",
	}, nil
}

// finalizeStatus is the shared transition invoked by the webhook handler,
// the status poller and the mock settlement timer. Only a mapped terminal
// status is persisted; the write is conditional on the row not being
// terminal yet, so concurrent finalizers cannot regress a terminal state.
// The voucher side effect runs on whatever status the row actually
// carries, through a conditional used-flag update, which makes repeated
// invocations for the same payment a no-op.
func (s *PaymentServiceImpl) finalizeStatus(paymentID uint, providerStatus string) error {
	newStatus := core.MapProviderStatus(providerStatus)
	if newStatus == core.PaymentStatusPending {
		return nil
	}

	errorMessage := ""
	if newStatus == core.PaymentStatusFailed {
		errorMessage = "Payment failed on provider"
	}
	applied, err := s.paymentRepo.Finalize(paymentID, newStatus, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to finalize payment %d: %w", paymentID, err)
	}
	if applied {
		metrics.PaymentsFinalized.WithLabelValues(string(newStatus)).Inc()
		s.log.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"status":     newStatus,
		}).Info("payment finalized")
	}

	// The losing finalizer still consumes the voucher if the winner
	// left the row PAID; FinalizeIfUnused makes the second call a no-op
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return fmt.Errorf("failed to reload payment %d: %w", paymentID, err)
	}
	if payment.Status == core.PaymentStatusPaid && payment.VoucherID != nil {
		consumed, err := s.voucherRepo.FinalizeIfUnused(*payment.VoucherID, payment.UserID)
		if err != nil {
			return fmt.Errorf("failed to finalize voucher %d: %w", *payment.VoucherID, err)
		}
		if consumed {
			metrics.VouchersRedeemed.WithLabelValues("payment").Inc()
		}
	}
	return nil
}

// GetStatus retrieves a payment owned by userID
func (s *PaymentServiceImpl) GetStatus(paymentID, userID uint) (*core.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, fmt.Errorf("%w: payment belongs to another user", core.ErrForbidden)
	}
	return payment, nil
}

// HandleWebhook applies a provider status notification. A webhook for a
// payment already in a terminal state is acknowledged without any write.
func (s *PaymentServiceImpl) HandleWebhook(referenceID, providerStatus string) error {
	payment, err := s.paymentRepo.GetByReferenceID(referenceID)
	if err != nil {
		return err
	}
	metrics.WebhooksReceived.WithLabelValues(providerStatus).Inc()

	if err := s.finalizeStatus(payment.ID, providerStatus); err != nil {
		return err
	}
	if core.MapProviderStatus(providerStatus) != core.PaymentStatusPending {
		// The poller has nothing left to observe once the webhook won
		s.cancelTask(payment.ID)
	}
	return nil
}

// ListAll retrieves every payment, newest first
func (s *PaymentServiceImpl) ListAll() ([]core.Payment, error) {
	return s.paymentRepo.ListAll()
}

// ListMine retrieves the payments of one user, newest first
func (s *PaymentServiceImpl) ListMine(userID uint) ([]core.Payment, error) {
	return s.paymentRepo.ListByUser(userID)
}

// ListByVoucherCode aggregates the payments recorded for a voucher code
func (s *PaymentServiceImpl) ListByVoucherCode(code string) (*input.VoucherPayments, error) {
	code = core.NormalizeVoucherCode(code)
	payments, err := s.paymentRepo.ListByVoucherCode(code)
	if err != nil {
		return nil, err
	}
	return &input.VoucherPayments{
		VoucherCode:   code,
		Payments:      payments,
		TotalPayments: len(payments),
	}, nil
}

// scheduleMockSettlement settles a mock-gateway payment as PAID after the
// configured delay, consuming any linked voucher
func (s *PaymentServiceImpl) scheduleMockSettlement(paymentID uint) *Handle {
	handle := newHandle()
	go func() {
		defer close(handle.done)
		defer s.untrack(paymentID)

		select {
		case <-handle.ctx.Done():
			return
		case <-time.After(s.cfg.MockSettleDelay):
		}
		if err := s.finalizeStatus(paymentID, "SUCCESSFUL"); err != nil {
			s.log.WithError(err).WithField("payment_id", paymentID).Error("mock settlement failed")
		}
	}()
	return handle
}

// Shutdown cancels every in-flight poller and settlement timer and waits
// for them to exit
func (s *PaymentServiceImpl) Shutdown() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
		<-h.Done()
	}
}

func (s *PaymentServiceImpl) track(paymentID uint, h *Handle) {
	s.mu.Lock()
	s.handles[paymentID] = h
	s.mu.Unlock()
}

func (s *PaymentServiceImpl) untrack(paymentID uint) {
	s.mu.Lock()
	delete(s.handles, paymentID)
	s.mu.Unlock()
}

func (s *PaymentServiceImpl) cancelTask(paymentID uint) {
	s.mu.Lock()
	h, ok := s.handles[paymentID]
	s.mu.Unlock()
	if ok {
		h.Cancel()
	}
}
