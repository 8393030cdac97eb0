package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lipago/voucher-payments/internal/core"
)

// In-memory fakes for the output ports. The conditional-update semantics
// mirror what the gorm adapters do with single-row compare-and-set writes.

type fakePaymentRepo struct {
	mu       sync.Mutex
	nextID   uint
	payments map[uint]*core.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uint]*core.Payment)}
}

func (f *fakePaymentRepo) Create(p *core.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(id uint) (*core.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, fmt.Errorf("%w: payment %d", core.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) GetByReferenceID(referenceID string) (*core.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.GatewayReferenceID == referenceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no payment for reference %s", core.ErrNotFound, referenceID)
}

func (f *fakePaymentRepo) MarkPending(id uint, referenceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != core.PaymentStatusInit {
		return fmt.Errorf("%w: payment %d not in INIT", core.ErrNotFound, id)
	}
	p.Status = core.PaymentStatusPending
	p.GatewayReferenceID = referenceID
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakePaymentRepo) Finalize(id uint, status core.PaymentStatus, errorMessage string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.IsTerminal() {
		return false, nil
	}
	p.Status = status
	p.ErrorMessage = errorMessage
	p.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakePaymentRepo) HasPaidForVoucherCode(code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.VoucherCode == code && p.Status == core.PaymentStatusPaid {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentRepo) ListAll() ([]core.Payment, error) {
	return f.listWhere(func(*core.Payment) bool { return true })
}

func (f *fakePaymentRepo) ListByUser(userID uint) ([]core.Payment, error) {
	return f.listWhere(func(p *core.Payment) bool { return p.UserID == userID })
}

func (f *fakePaymentRepo) ListByVoucherCode(code string) ([]core.Payment, error) {
	return f.listWhere(func(p *core.Payment) bool { return p.VoucherCode == code })
}

func (f *fakePaymentRepo) listWhere(match func(*core.Payment) bool) ([]core.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Payment
	for _, p := range f.payments {
		if match(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeVoucherRepo struct {
	mu       sync.Mutex
	nextID   uint
	vouchers map[uint]*core.Voucher
}

func newFakeVoucherRepo() *fakeVoucherRepo {
	return &fakeVoucherRepo{vouchers: make(map[uint]*core.Voucher)}
}

func (f *fakeVoucherRepo) Create(v *core.Voucher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	v.ID = f.nextID
	cp := *v
	f.vouchers[v.ID] = &cp
	return nil
}

func (f *fakeVoucherRepo) GetByCode(code string) (*core.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vouchers {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: voucher %s", core.ErrNotFound, code)
}

func (f *fakeVoucherRepo) FinalizeIfUnused(voucherID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vouchers[voucherID]
	if !ok || v.Used {
		return false, nil
	}
	v.Used = true
	v.UsedBy = &userID
	return true, nil
}

func (f *fakeVoucherRepo) get(id uint) core.Voucher {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.vouchers[id]
}

// fakeGateway scripts the MomoGateway port. CheckStatus walks the statuses
// slice and sticks on the last entry; entries of the form "err" simulate a
// transport failure for that tick.
type fakeGateway struct {
	mu          sync.Mutex
	referenceID string
	requestErr  error
	statuses    []string
	statusCalls int
}

func (f *fakeGateway) Authenticate(ctx context.Context) (string, error) {
	return "test-token", nil
}

func (f *fakeGateway) RequestToPay(ctx context.Context, phone string, amount float64, currency core.Currency, externalID, payeeNote, payerMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return "", f.requestErr
	}
	if f.referenceID == "" {
		f.referenceID = "ref-test"
	}
	return f.referenceID, nil
}

func (f *fakeGateway) CheckStatus(ctx context.Context, referenceID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	idx := f.statusCalls - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	if idx < 0 {
		return "PENDING", nil
	}
	if f.statuses[idx] == "err" {
		return "", fmt.Errorf("connection refused")
	}
	return f.statuses[idx], nil
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

type sentSMS struct {
	To   string
	Text string
}

type fakeSMSPublisher struct {
	mu       sync.Mutex
	messages []sentSMS
}

func (f *fakeSMSPublisher) PublishSMS(to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentSMS{To: to, Text: text})
	return nil
}

func (f *fakeSMSPublisher) Close() error { return nil }

func (f *fakeSMSPublisher) sent() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentSMS(nil), f.messages...)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*core.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*core.User)}
}

func (f *fakeUserRepo) Create(u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Phone == u.Phone {
			return fmt.Errorf("%w: phone or email already registered", core.ErrValidation)
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, email)
}

func (f *fakeUserRepo) GetByID(id uint) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", core.ErrNotFound, id)
	}
	cp := *u
	return &cp, nil
}
