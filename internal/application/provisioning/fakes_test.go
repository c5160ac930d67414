package provisioning

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// ---- repos en memoria ----

type memPackageRepo struct {
	byID map[string]*entity.Package
}

func (m *memPackageRepo) Create(_ context.Context, p *entity.Package) error { m.byID[p.ID] = p; return nil }
func (m *memPackageRepo) GetByID(_ context.Context, id string) (*entity.Package, error) {
	return m.byID[id], nil
}
func (m *memPackageRepo) ListByConnectionType(context.Context, string, int, int) ([]*entity.Package, error) {
	return nil, nil
}
func (m *memPackageRepo) ListByRouter(context.Context, string) ([]*entity.Package, error) {
	return nil, nil
}
func (m *memPackageRepo) Update(_ context.Context, p *entity.Package) error { m.byID[p.ID] = p; return nil }
func (m *memPackageRepo) Delete(_ context.Context, id string) error         { delete(m.byID, id); return nil }

type memRouterRepo struct {
	byID map[string]*entity.Router
}

func (m *memRouterRepo) Create(_ context.Context, r *entity.Router) error { m.byID[r.ID] = r; return nil }
func (m *memRouterRepo) GetByID(_ context.Context, id string) (*entity.Router, error) {
	return m.byID[id], nil
}
func (m *memRouterRepo) List(context.Context) ([]*entity.Router, error) {
	var out []*entity.Router
	for _, r := range m.byID {
		out = append(out, r)
	}
	return out, nil
}
func (m *memRouterRepo) Update(_ context.Context, r *entity.Router) error { m.byID[r.ID] = r; return nil }
func (m *memRouterRepo) Delete(_ context.Context, id string) error        { delete(m.byID, id); return nil }

type memCustomerRepo struct {
	mu    sync.Mutex
	byID  map[string]*entity.Customer
	usage map[string]float64
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{byID: make(map[string]*entity.Customer), usage: make(map[string]float64)}
}

func (m *memCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	m.byID[c.ID] = c
	return nil
}
func (m *memCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return m.byID[id], nil
}
func (m *memCustomerRepo) GetByEmail(context.Context, string) (*entity.Customer, error) {
	return nil, nil
}
func (m *memCustomerRepo) List(context.Context, int, int) ([]*entity.Customer, error) {
	return nil, nil
}
func (m *memCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	m.byID[c.ID] = c
	return nil
}
func (m *memCustomerRepo) UpdateDataUsage(_ context.Context, id string, usageMB float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage[id] = usageMB
	return nil
}

type memSubscriptionRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.Subscription
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{byID: make(map[string]*entity.Subscription)}
}

func (m *memSubscriptionRepo) Create(_ context.Context, s *entity.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
	return nil
}
func (m *memSubscriptionRepo) GetByID(_ context.Context, id string) (*entity.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}
func (m *memSubscriptionRepo) ListByCustomer(context.Context, string, int, int) ([]*entity.Subscription, error) {
	return nil, nil
}
func (m *memSubscriptionRepo) ListActive(_ context.Context) ([]*entity.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Subscription
	for _, s := range m.byID {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *memSubscriptionRepo) ListActiveExpiredBefore(_ context.Context, now time.Time) ([]*entity.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Subscription
	for _, s := range m.byID {
		if s.IsActive && s.Expired(now) {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *memSubscriptionRepo) Update(_ context.Context, s *entity.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
	return nil
}
func (m *memSubscriptionRepo) MarkInactive(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || !s.IsActive {
		return false, nil
	}
	s.IsActive = false
	return true, nil
}

type memPaymentRepo struct {
	byID   map[string]*entity.Payment
	byTxID map[string]*entity.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{byID: make(map[string]*entity.Payment), byTxID: make(map[string]*entity.Payment)}
}

func (m *memPaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	m.byID[p.ID] = p
	m.byTxID[p.TransactionID] = p
	return nil
}
func (m *memPaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	return m.byID[id], nil
}
func (m *memPaymentRepo) GetByTransactionID(_ context.Context, txID string) (*entity.Payment, error) {
	return m.byTxID[txID], nil
}
func (m *memPaymentRepo) Update(_ context.Context, p *entity.Payment) error {
	m.byID[p.ID] = p
	m.byTxID[p.TransactionID] = p
	return nil
}

type memInvoiceRepo struct {
	byID map[string]*entity.Invoice
}

func (m *memInvoiceRepo) Create(_ context.Context, i *entity.Invoice) error { m.byID[i.ID] = i; return nil }
func (m *memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return m.byID[id], nil
}
func (m *memInvoiceRepo) ListByCustomer(context.Context, string, int, int) ([]*entity.Invoice, error) {
	return nil, nil
}
func (m *memInvoiceRepo) Update(_ context.Context, i *entity.Invoice) error { m.byID[i.ID] = i; return nil }

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditLog
}

func (m *memAuditRepo) Append(_ context.Context, e *entity.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}
func (m *memAuditRepo) ListByEntity(context.Context, string, string, int) ([]*entity.AuditLog, error) {
	return nil, nil
}

func (m *memAuditRepo) count(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// ---- sincronizadores de prueba ----

// recordingSyncer registra las llamadas y puede fallar a demanda.
type recordingSyncer struct {
	mu            sync.Mutex
	provisioned   []string // usernames
	deprovisioned []string
	provisionErr  error
	deprovErr     error
}

func (s *recordingSyncer) Provision(_ context.Context, t Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provisionErr != nil {
		return s.provisionErr
	}
	s.provisioned = append(s.provisioned, t.Subscription.Username)
	return nil
}

func (s *recordingSyncer) Deprovision(_ context.Context, t Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deprovErr != nil {
		return s.deprovErr
	}
	s.deprovisioned = append(s.deprovisioned, t.Subscription.Username)
	return nil
}

// recordingResyncer guarda el último conjunto de usernames repoblado.
type recordingResyncer struct {
	mu    sync.Mutex
	runs  int
	last  map[string]struct{}
	fails error
}

func (r *recordingResyncer) Resync(_ context.Context, targets []Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails != nil {
		return r.fails
	}
	r.runs++
	r.last = make(map[string]struct{}, len(targets))
	for _, t := range targets {
		r.last[t.Subscription.Username] = struct{}{}
	}
	return nil
}

// passLocker ejecuta directo; heldLocker simula el lock tomado por otro proceso.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, _ string, _ time.Duration, fn func(context.Context) error) error {
	return fn(ctx)
}

type heldLocker struct{}

func (heldLocker) WithLock(context.Context, string, time.Duration, func(context.Context) error) error {
	return domain.ErrLockHeld
}

type fakeMinter struct {
	code string
	err  error
}

func (f *fakeMinter) Mint(_ context.Context, packageID string) (*entity.Voucher, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Voucher{ID: "mv1", Code: f.code, PackageID: packageID, IsActive: true}, nil
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) Send(_ context.Context, to, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+": "+message)
	return nil
}

type fakeUsageSource struct {
	byRouter map[string]map[string]float64
}

func (f *fakeUsageSource) CollectUsage(_ context.Context, r *entity.Router) (map[string]float64, error) {
	return f.byRouter[r.ID], nil
}
