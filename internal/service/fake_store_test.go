package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/repository"
)

// memStore is an in-memory repository.Store. Methods named in fail return
// the mapped error instead of touching state.
type memStore struct {
	mu         sync.Mutex
	seq        int
	suppliers  []domain.Supplier
	devices    map[string]*domain.Device
	gadgets    map[string]*domain.Gadget
	sales      map[string]*domain.Sale
	loans      map[string]*domain.Loan
	warranties map[string]*domain.Warranty
	fail       map[string]error
	calls      []string
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		devices:    map[string]*domain.Device{},
		gadgets:    map[string]*domain.Gadget{},
		sales:      map[string]*domain.Sale{},
		loans:      map[string]*domain.Loan{},
		warranties: map[string]*domain.Warranty{},
		fail:       map[string]error{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) enter(method string) error {
	m.calls = append(m.calls, method)
	return m.fail[method]
}

func (m *memStore) addDevice(d domain.Device) *domain.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = m.nextID("dev")
	}
	if d.Status == "" {
		d.Status = domain.DeviceAvailable
	}
	m.devices[d.ID] = &d
	return &d
}

func (m *memStore) addGadget(g domain.Gadget) *domain.Gadget {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = m.nextID("gdt")
	}
	m.gadgets[g.ID] = &g
	return &g
}

func (m *memStore) addLoan(l domain.Loan) *domain.Loan {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = m.nextID("loan")
	}
	m.loans[l.ID] = &l
	return &l
}

func (m *memStore) ListDevices(_ context.Context, filter repository.DeviceFilter) ([]domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListDevices"); err != nil {
		return nil, err
	}
	var out []domain.Device
	for _, d := range m.devices {
		if filter.Status == "" || d.Status == filter.Status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) GetDevice(_ context.Context, id string) (*domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetDevice"); err != nil {
		return nil, err
	}
	d, ok := m.devices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) CreateDevice(_ context.Context, device *domain.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateDevice"); err != nil {
		return err
	}
	device.ID = m.nextID("dev")
	cp := *device
	m.devices[device.ID] = &cp
	return nil
}

func (m *memStore) UpdateDeviceStatus(_ context.Context, id string, from, to domain.DeviceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateDeviceStatus:" + string(to)); err != nil {
		return err
	}
	d, ok := m.devices[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.Status != from {
		return domain.ErrItemUnavailable
	}
	d.Status = to
	return nil
}

func (m *memStore) ListGadgets(_ context.Context) ([]domain.Gadget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListGadgets"); err != nil {
		return nil, err
	}
	var out []domain.Gadget
	for _, g := range m.gadgets {
		out = append(out, *g)
	}
	return out, nil
}

func (m *memStore) GetGadget(_ context.Context, id string) (*domain.Gadget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetGadget"); err != nil {
		return nil, err
	}
	g, ok := m.gadgets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) CreateGadget(_ context.Context, gadget *domain.Gadget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateGadget"); err != nil {
		return err
	}
	gadget.ID = m.nextID("gdt")
	cp := *gadget
	m.gadgets[gadget.ID] = &cp
	return nil
}

func (m *memStore) AdjustGadgetQuantity(_ context.Context, id string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(fmt.Sprintf("AdjustGadgetQuantity:%+d", delta)); err != nil {
		return 0, err
	}
	g, ok := m.gadgets[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if g.Quantity+delta < 0 {
		return 0, domain.ErrInsufficientStock
	}
	g.Quantity += delta
	return g.Quantity, nil
}

func (m *memStore) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListSuppliers"); err != nil {
		return nil, err
	}
	return append([]domain.Supplier(nil), m.suppliers...), nil
}

func (m *memStore) CreateSupplier(_ context.Context, supplier *domain.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateSupplier"); err != nil {
		return err
	}
	supplier.ID = m.nextID("sup")
	m.suppliers = append(m.suppliers, *supplier)
	return nil
}

func (m *memStore) ListLowStockAlerts(_ context.Context, _ int) ([]domain.LowStockAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return nil, m.enter("ListLowStockAlerts")
}

func (m *memStore) ListSales(_ context.Context, since time.Time) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListSales"); err != nil {
		return nil, err
	}
	var out []domain.Sale
	for _, s := range m.sales {
		if !s.DateSold.Before(since) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) CreateSale(_ context.Context, sale *domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateSale"); err != nil {
		return err
	}
	if err := sale.CheckItemRef(); err != nil {
		return err
	}
	sale.ID = m.nextID("sale")
	cp := *sale
	m.sales[sale.ID] = &cp
	return nil
}

func (m *memStore) DeleteSale(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteSale"); err != nil {
		return err
	}
	if _, ok := m.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sales, id)
	for wid, w := range m.warranties {
		if w.SaleID == id {
			delete(m.warranties, wid)
		}
	}
	return nil
}

func (m *memStore) ListLoans(_ context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListLoans"); err != nil {
		return nil, err
	}
	var out []domain.Loan
	for _, l := range m.loans {
		if status == "" || l.Status == status {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) GetLoan(_ context.Context, id string) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetLoan"); err != nil {
		return nil, err
	}
	l, ok := m.loans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) CreateLoan(_ context.Context, loan *domain.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateLoan"); err != nil {
		return err
	}
	if err := loan.CheckItemRef(); err != nil {
		return err
	}
	loan.ID = m.nextID("loan")
	cp := *loan
	m.loans[loan.ID] = &cp
	return nil
}

func (m *memStore) DeleteLoan(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteLoan"); err != nil {
		return err
	}
	if _, ok := m.loans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.loans, id)
	return nil
}

func (m *memStore) UpdateLoanStatus(_ context.Context, id string, from, to domain.LoanStatus, returnedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateLoanStatus:" + string(to)); err != nil {
		return err
	}
	l, ok := m.loans[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Status != from {
		return domain.ErrLoanClosed
	}
	l.Status = to
	switch {
	case to == domain.LoanActive:
		l.DateReturned = nil
	case returnedAt != nil:
		l.DateReturned = returnedAt
	}
	return nil
}

func (m *memStore) ListWarranties(_ context.Context) ([]domain.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListWarranties"); err != nil {
		return nil, err
	}
	var out []domain.Warranty
	for _, w := range m.warranties {
		out = append(out, *w)
	}
	return out, nil
}

func (m *memStore) CreateWarranty(_ context.Context, w *domain.Warranty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateWarranty"); err != nil {
		return err
	}
	w.ID = m.nextID("wty")
	cp := *w
	m.warranties[w.ID] = &cp
	return nil
}

func (m *memStore) DeleteWarranty(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteWarranty"); err != nil {
		return err
	}
	delete(m.warranties, id)
	return nil
}

// recordingCache counts invalidations.
type recordingCache struct {
	mu          sync.Mutex
	view        *domain.DashboardView
	getErr      error
	invalidated int
}

func (c *recordingCache) GetDashboard(context.Context) (*domain.DashboardView, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.view, c.view != nil, nil
}

func (c *recordingCache) SetDashboard(_ context.Context, view *domain.DashboardView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
	return nil
}

func (c *recordingCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.view = nil
	return nil
}

// lockstepStore holds every GetDevice and GetLoan until n of them have been
// served, so n concurrent callers all read the same state before any writes.
type lockstepStore struct {
	*memStore
	reads sync.WaitGroup
}

func newLockstepStore(m *memStore, n int) *lockstepStore {
	s := &lockstepStore{memStore: m}
	s.reads.Add(n)
	return s
}

func (s *lockstepStore) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	d, err := s.memStore.GetDevice(ctx, id)
	s.reads.Done()
	s.reads.Wait()
	return d, err
}

func (s *lockstepStore) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	l, err := s.memStore.GetLoan(ctx, id)
	s.reads.Done()
	s.reads.Wait()
	return l, err
}
