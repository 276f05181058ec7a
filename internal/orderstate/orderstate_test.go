package orderstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/internal/ws"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore keeps orders and products in memory and applies transitions the
// way the persistent store does: status flip plus stock mutation together.
type fakeStore struct {
	orders       map[uint]*models.Order
	products     map[uint]*models.Product
	sellerOwns   map[uint][]uint // sellerID -> product ids
	appliedCount int
}

func (f *fakeStore) Get(_ context.Context, id uint) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	cp.StockDeductions = append([]models.OrderStockDeduction(nil), o.StockDeductions...)
	return &cp, nil
}

func (f *fakeStore) SellerProductIDs(_ context.Context, sellerID uint) (map[uint]struct{}, error) {
	out := make(map[uint]struct{})
	for _, id := range f.sellerOwns[sellerID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) Apply(_ context.Context, t Transition) error {
	f.appliedCount++
	o := f.orders[t.OrderID]
	o.Status = t.Status
	if t.DeliveredAt != nil {
		o.DeliveredAt = t.DeliveredAt
	}
	if t.Deduct != nil {
		for _, it := range t.Deduct.Items {
			p := f.products[it.ProductID]
			if p == nil {
				continue
			}
			if p.StockQty > it.Qty {
				p.StockQty -= it.Qty
			} else {
				p.StockQty = 0
			}
			p.SoldCount += it.Qty
		}
		o.StockDeductions = append(o.StockDeductions, models.OrderStockDeduction{
			OrderID:  t.OrderID,
			SellerID: t.Deduct.SellerID,
		})
	}
	return nil
}

type fakeUsers struct {
	byID map[uint]*models.User
}

func (f *fakeUsers) Get(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type fakeMailer struct {
	subjects []string
}

func (f *fakeMailer) Send(_, subject, _ string) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

type fakeEvents struct {
	byUser map[uint][]ws.Event
}

func (f *fakeEvents) Publish(userID uint, ev ws.Event) {
	if f.byUser == nil {
		f.byUser = make(map[uint][]ws.Event)
	}
	f.byUser[userID] = append(f.byUser[userID], ev)
}

type fixture struct {
	machine *Machine
	store   *fakeStore
	mail    *fakeMailer
	events  *fakeEvents
}

var (
	testBuyer  = &models.User{ID: 1, Username: "maria", Email: "maria@example.com", Role: models.RoleUser}
	testSeller = &models.User{ID: 10, Username: "tindahan", Email: "seller@example.com", Role: models.RoleSeller}
	testAdmin  = &models.User{ID: 99, Username: "admin", Role: models.RoleAdmin}
)

func newFixture(status models.OrderStatus) *fixture {
	store := &fakeStore{
		orders: map[uint]*models.Order{
			1: {
				ID:          1,
				UserID:      1,
				OrderNumber: "ORD-250601-ABC123",
				SellerID:    10,
				Status:      status,
				Total:       350,
				TotalItems:  5,
				Items: []models.OrderItem{
					{OrderID: 1, ProductID: 100, Name: "Dried Fish", Price: 100, Qty: 2},
					{OrderID: 1, ProductID: 101, Name: "Dried Squid", Price: 50, Qty: 3},
				},
			},
		},
		products: map[uint]*models.Product{
			100: {ID: 100, SellerID: 10, StockQty: 10, SoldCount: 0},
			101: {ID: 101, SellerID: 10, StockQty: 2, SoldCount: 0},
		},
		sellerOwns: map[uint][]uint{10: {100, 101}},
	}
	f := &fixture{
		store:  store,
		mail:   &fakeMailer{},
		events: &fakeEvents{},
	}
	f.machine = &Machine{
		Store:  store,
		Users:  &fakeUsers{byID: map[uint]*models.User{1: testBuyer}},
		Mail:   f.mail,
		Events: f.events,
		Log:    zap.NewNop(),
		Now:    func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) },
	}
	return f
}

func TestSellerShipDeductsStockOnce(t *testing.T) {
	f := newFixture(models.OrderConfirmed)

	o, err := f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, o.Status)
	assert.True(t, o.HasDeductionFor(testSeller.ID))

	// qty 2 off stock 10; qty 3 off stock 2 floors at 0.
	assert.Equal(t, 8, f.store.products[100].StockQty)
	assert.Equal(t, 2, f.store.products[100].SoldCount)
	assert.Equal(t, 0, f.store.products[101].StockQty)
	assert.Equal(t, 3, f.store.products[101].SoldCount)

	// Re-applying shipped must not decrement again.
	o, err = f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, 8, f.store.products[100].StockQty)
	assert.Equal(t, 2, f.store.products[100].SoldCount)
	assert.Equal(t, 0, f.store.products[101].StockQty)
	require.Len(t, f.store.orders[1].StockDeductions, 1)
}

func TestSellerShipNotifiesBuyer(t *testing.T) {
	f := newFixture(models.OrderConfirmed)

	_, err := f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, models.OrderShipped)
	require.NoError(t, err)

	require.Len(t, f.mail.subjects, 1)
	assert.Contains(t, f.mail.subjects[0], "has shipped")

	// Both buyer and seller get the status event.
	assert.Len(t, f.events.byUser[1], 1)
	assert.Len(t, f.events.byUser[10], 1)
	assert.Equal(t, "order_status", f.events.byUser[1][0].Type)
}

func TestSellerCancelNotifiesBuyer(t *testing.T) {
	f := newFixture(models.OrderPending)

	o, err := f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, o.Status)

	require.Len(t, f.mail.subjects, 1)
	assert.Contains(t, f.mail.subjects[0], "was cancelled")
	// Cancelling never touches stock.
	assert.Equal(t, 10, f.store.products[100].StockQty)
}

func TestSellerCannotSetDelivered(t *testing.T) {
	f := newFixture(models.OrderShipped)

	_, err := f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, models.OrderDelivered)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, models.OrderPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.machine.SellerUpdateStatus(context.Background(), 1, testSeller, "garbage")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestForeignSellerRejected(t *testing.T) {
	f := newFixture(models.OrderConfirmed)
	other := &models.User{ID: 77, Username: "other", Role: models.RoleSeller}

	_, err := f.machine.SellerUpdateStatus(context.Background(), 1, other, models.OrderShipped)
	assert.ErrorIs(t, err, ErrNotSellerOrder)
	assert.Zero(t, f.store.appliedCount)
}

func TestCustomerCancelRules(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderPending, models.OrderConfirmed} {
		f := newFixture(status)
		o, err := f.machine.CustomerCancel(context.Background(), 1, testBuyer)
		require.NoError(t, err, status)
		assert.Equal(t, models.OrderCancelled, o.Status)
	}

	for _, status := range []models.OrderStatus{models.OrderShipped, models.OrderDelivered, models.OrderCancelled} {
		f := newFixture(status)
		_, err := f.machine.CustomerCancel(context.Background(), 1, testBuyer)
		assert.ErrorIs(t, err, ErrCancelNotAllowed, status)
	}
}

func TestCustomerCancelForeignOrderLooksAbsent(t *testing.T) {
	f := newFixture(models.OrderPending)
	stranger := &models.User{ID: 55, Username: "stranger"}

	_, err := f.machine.CustomerCancel(context.Background(), 1, stranger)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.machine.CustomerCancel(context.Background(), 404, testBuyer)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCustomerMarkDelivered(t *testing.T) {
	f := newFixture(models.OrderShipped)

	o, err := f.machine.CustomerMarkDelivered(context.Background(), 1, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), *o.DeliveredAt)
	require.NotNil(t, f.store.orders[1].DeliveredAt)
}

func TestCustomerMarkDeliveredRequiresShipped(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderPending, models.OrderConfirmed, models.OrderDelivered, models.OrderCancelled} {
		f := newFixture(status)
		_, err := f.machine.CustomerMarkDelivered(context.Background(), 1, testBuyer)
		assert.ErrorIs(t, err, ErrNotShipped, status)
	}
}

func TestAdminSetStatusSkipsDeduction(t *testing.T) {
	f := newFixture(models.OrderPending)

	o, err := f.machine.AdminSetStatus(context.Background(), 1, testAdmin, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, o.Status)

	// Force-set leaves stock alone; the deduction belongs to the seller flow.
	assert.Equal(t, 10, f.store.products[100].StockQty)
	assert.Empty(t, f.store.orders[1].StockDeductions)
}

func TestAdminSetStatusValidation(t *testing.T) {
	f := newFixture(models.OrderPending)

	_, err := f.machine.AdminSetStatus(context.Background(), 1, testAdmin, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.machine.AdminSetStatus(context.Background(), 404, testAdmin, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
