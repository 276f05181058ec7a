package checkout

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/internal/payments"
	"github.com/nxough-jxhn/daingGraderWeb/internal/voucher"
	"github.com/nxough-jxhn/daingGraderWeb/internal/ws"
	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducts struct {
	byID map[uint]*models.Product
}

func (f *fakeProducts) ByIDs(_ context.Context, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product)
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeOrders struct {
	created []*models.Order
	nextID  uint
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.nextID++
	o.ID = f.nextID
	f.created = append(f.created, o)
	return nil
}

type fakeCarts struct {
	cart    *models.Cart
	removed []uint
}

func (f *fakeCarts) Get(_ context.Context, _ uint) (*models.Cart, error) {
	return f.cart, nil
}

func (f *fakeCarts) RemoveItems(_ context.Context, _ uint, productIDs []uint) error {
	f.removed = append(f.removed, productIDs...)
	if f.cart == nil {
		return nil
	}
	gone := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		gone[id] = struct{}{}
	}
	var keep []models.CartItem
	for _, it := range f.cart.Items {
		if _, ok := gone[it.ProductID]; !ok {
			keep = append(keep, it)
		}
	}
	f.cart.Items = keep
	return nil
}

type fakeVouchers struct {
	byCode    map[string]*models.Voucher
	committed [][2]uint
}

func (f *fakeVouchers) FindByCode(_ context.Context, code string) (*models.Voucher, error) {
	if v, ok := f.byCode[code]; ok {
		return v, nil
	}
	return nil, ErrVoucherNotFound
}

func (f *fakeVouchers) CommitUsage(_ context.Context, voucherID, userID uint) error {
	f.committed = append(f.committed, [2]uint{voucherID, userID})
	return nil
}

type fakeGateway struct {
	intent     *payments.Intent
	err        error
	lastAmount int64
	lastMethod string
	calls      int
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount int64, method, _, _ string) (*payments.Intent, error) {
	f.calls++
	f.lastAmount = amount
	f.lastMethod = method
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func (f *fakeGateway) RetrieveIntent(_ context.Context, _ string) (*payments.Intent, error) {
	return f.intent, f.err
}

type fakeMailer struct {
	sent []string // recipients in send order
	err  error
}

func (f *fakeMailer) Send(to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeEvents struct {
	events map[uint][]ws.Event
}

func (f *fakeEvents) Publish(userID uint, ev ws.Event) {
	if f.events == nil {
		f.events = make(map[uint][]ws.Event)
	}
	f.events[userID] = append(f.events[userID], ev)
}

func buyer() *models.User {
	return &models.User{ID: 1, Username: "maria", FullName: "Maria Cruz", Email: "maria@example.com", Role: models.RoleUser}
}

func product(id, sellerID uint, price float64) *models.Product {
	return &models.Product{
		ID:         id,
		SellerID:   sellerID,
		SellerName: "Seller " + string(rune('A'+sellerID-10)),
		Name:       "Dried Fish " + string(rune('0'+id)),
		Price:      price,
		StockQty:   100,
		Status:     models.ProductAvailable,
		Seller:     models.User{ID: sellerID, Email: "seller@example.com"},
	}
}

func testAddress() models.Address {
	return models.Address{FullName: "Maria Cruz", Line1: "123 Rizal St", City: "Iloilo"}
}

type fixture struct {
	engine   *Engine
	orders   *fakeOrders
	carts    *fakeCarts
	vouchers *fakeVouchers
	gateway  *fakeGateway
	mail     *fakeMailer
	events   *fakeEvents
}

func newFixture(products map[uint]*models.Product, items []models.CartItem) *fixture {
	f := &fixture{
		orders:   &fakeOrders{},
		carts:    &fakeCarts{cart: &models.Cart{ID: 1, UserID: 1, Items: items}},
		vouchers: &fakeVouchers{byCode: map[string]*models.Voucher{}},
		gateway:  &fakeGateway{intent: &payments.Intent{ID: "pi_123", CheckoutURL: "https://pay.example/abc", Status: "awaiting_payment_method"}},
		mail:     &fakeMailer{},
		events:   &fakeEvents{},
	}
	f.engine = &Engine{
		Products: &fakeProducts{byID: products},
		Orders:   f.orders,
		Carts:    f.carts,
		Vouchers: f.vouchers,
		Gateway:  f.gateway,
		Mail:     f.mail,
		Events:   f.events,
		Log:      zap.NewNop(),
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return f
}

func TestCheckoutSplitsCartBySeller(t *testing.T) {
	products := map[uint]*models.Product{
		1: product(1, 10, 100),
		2: product(2, 11, 250),
		3: product(3, 10, 50),
	}
	items := []models.CartItem{
		{ProductID: 1, Qty: 2},
		{ProductID: 2, Qty: 1},
		{ProductID: 3, Qty: 3},
	}
	f := newFixture(products, items)

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)

	// Groups preserve first-seen seller order.
	first, second := res.Orders[0].Order, res.Orders[1].Order
	assert.Equal(t, uint(10), first.SellerID)
	assert.Equal(t, uint(11), second.SellerID)

	assert.InDelta(t, 350.0, first.Total, 0.001) // 2*100 + 3*50
	assert.Equal(t, 5, first.TotalItems)
	assert.InDelta(t, 250.0, second.Total, 0.001)
	assert.Equal(t, 1, second.TotalItems)

	// Item snapshots carry name and price.
	require.Len(t, first.Items, 2)
	assert.Equal(t, uint(1), first.Items[0].ProductID)
	assert.InDelta(t, 100.0, first.Items[0].Price, 0.001)

	// COD orders are confirmed and marked paid immediately.
	for _, or := range res.Orders {
		assert.Equal(t, models.OrderConfirmed, or.Order.Status)
		assert.Equal(t, models.PaymentCompleted, or.Order.PaymentStatus)
		require.NotNil(t, or.Order.PaidAt)
		assert.Nil(t, or.Order.PaymentIntentID)
	}

	// No gateway call for COD, cart fully cleared, events for buyer + sellers.
	assert.Zero(t, f.gateway.calls)
	assert.Empty(t, f.carts.cart.Items)
	assert.Len(t, f.events.events[1], 2)
	assert.Len(t, f.events.events[10], 1)
	assert.Len(t, f.events.events[11], 1)
}

func TestCheckoutSellerFilterConsumesOnlyThatSellersLines(t *testing.T) {
	products := map[uint]*models.Product{
		1: product(1, 10, 100),
		2: product(2, 11, 250),
	}
	items := []models.CartItem{
		{ProductID: 1, Qty: 1},
		{ProductID: 2, Qty: 1},
	}
	f := newFixture(products, items)

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
		SellerID:      11,
	})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, uint(11), res.Orders[0].Order.SellerID)

	// The other seller's line stays in the cart.
	require.Len(t, f.carts.cart.Items, 1)
	assert.Equal(t, uint(1), f.carts.cart.Items[0].ProductID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(nil, nil)
	f.carts.cart = nil

	_, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		PaymentMethod: PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, f.orders.created)
}

func TestCheckoutMissingProductsSkipped(t *testing.T) {
	products := map[uint]*models.Product{
		1: product(1, 10, 100),
	}
	items := []models.CartItem{
		{ProductID: 1, Qty: 1},
		{ProductID: 99, Qty: 5}, // product deleted since it was carted
	}
	f := newFixture(products, items)

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.InDelta(t, 100.0, res.Orders[0].Order.Total, 0.001)
}

func TestCheckoutAllProductsGone(t *testing.T) {
	f := newFixture(nil, []models.CartItem{{ProductID: 99, Qty: 1}})

	_, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		PaymentMethod: PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutNoItemsForRequestedSeller(t *testing.T) {
	products := map[uint]*models.Product{1: product(1, 10, 100)}
	f := newFixture(products, []models.CartItem{{ProductID: 1, Qty: 1}})

	_, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		PaymentMethod: PaymentMethodCOD,
		SellerID:      42,
	})
	assert.ErrorIs(t, err, ErrNoSellerItems)
}

func TestCheckoutEWalletCreatesSingleIntent(t *testing.T) {
	products := map[uint]*models.Product{
		1: product(1, 10, 100),
		2: product(2, 11, 250),
	}
	items := []models.CartItem{
		{ProductID: 1, Qty: 2},
		{ProductID: 2, Qty: 1},
	}
	f := newFixture(products, items)

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: "gcash",
		RedirectURL:   "https://app.example/orders",
	})
	require.NoError(t, err)

	// One intent over the grand total in centavos, shared by both orders.
	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, int64(45000), f.gateway.lastAmount)
	assert.Equal(t, "gcash", f.gateway.lastMethod)
	assert.Equal(t, "pi_123", res.PaymentIntentID)
	assert.Equal(t, "https://pay.example/abc", res.CheckoutURL)

	require.Len(t, res.Orders, 2)
	for _, or := range res.Orders {
		assert.Equal(t, models.OrderPending, or.Order.Status)
		assert.Equal(t, models.PaymentPending, or.Order.PaymentStatus)
		require.NotNil(t, or.Order.PaymentIntentID)
		assert.Equal(t, "pi_123", *or.Order.PaymentIntentID)
		assert.Nil(t, or.Order.PaidAt)
	}
}

func TestCheckoutGatewayFailureLeavesNothingBehind(t *testing.T) {
	products := map[uint]*models.Product{1: product(1, 10, 100)}
	f := newFixture(products, []models.CartItem{{ProductID: 1, Qty: 1}})
	f.gateway.err = payments.ErrGateway

	_, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: "gcash",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, payments.ErrGateway)

	assert.Empty(t, f.orders.created)
	assert.Empty(t, f.carts.removed)
	assert.Len(t, f.carts.cart.Items, 1)
}

func TestCheckoutAppliesVoucherAndCommitsUsage(t *testing.T) {
	products := map[uint]*models.Product{1: product(1, 10, 500)}
	f := newFixture(products, []models.CartItem{{ProductID: 1, Qty: 2}})
	f.vouchers.byCode["WELCOME10"] = &models.Voucher{
		ID:           3,
		Code:         "WELCOME10",
		DiscountType: models.DiscountPercentage,
		Value:        10,
		Active:       true,
	}

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: "gcash",
		VoucherCode:   "  welcome10 ", // normalized before lookup
	})
	require.NoError(t, err)

	assert.InDelta(t, 100.0, res.Discount, 0.001)
	assert.Equal(t, models.DiscountPercentage, res.DiscountType)
	// Intent is over the discounted total: (1000 - 100) * 100 centavos.
	assert.Equal(t, int64(90000), f.gateway.lastAmount)

	require.Len(t, f.vouchers.committed, 1)
	assert.Equal(t, [2]uint{3, 1}, f.vouchers.committed[0])
}

func TestCheckoutRejectedVoucherAbortsEverything(t *testing.T) {
	products := map[uint]*models.Product{1: product(1, 10, 100)}
	f := newFixture(products, []models.CartItem{{ProductID: 1, Qty: 1}})
	f.vouchers.byCode["BIGSPEND"] = &models.Voucher{
		ID:             4,
		Code:           "BIGSPEND",
		DiscountType:   models.DiscountFixed,
		Value:          50,
		MinOrderAmount: func() *float64 { v := 1000.0; return &v }(),
		Active:         true,
	}

	_, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
		VoucherCode:   "BIGSPEND",
	})
	assert.ErrorIs(t, err, voucher.ErrMinOrder)
	assert.Empty(t, f.orders.created)
	assert.Len(t, f.carts.cart.Items, 1)

	_, err = f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
		VoucherCode:   "NOSUCHCODE",
	})
	assert.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestCheckoutSendsReceipts(t *testing.T) {
	products := map[uint]*models.Product{1: product(1, 10, 100)}
	f := newFixture(products, []models.CartItem{{ProductID: 1, Qty: 1}})

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.True(t, res.Orders[0].EmailSent)
	assert.Equal(t, []string{"maria@example.com", "seller@example.com"}, f.mail.sent)
}

func TestCheckoutEmailFailureDoesNotFailOrder(t *testing.T) {
	products := map[uint]*models.Product{1: product(1, 10, 100)}
	f := newFixture(products, []models.CartItem{{ProductID: 1, Qty: 1}})
	f.mail.err = errors.New("smtp down")

	res, err := f.engine.Checkout(context.Background(), Input{
		User:          buyer(),
		Address:       testAddress(),
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.False(t, res.Orders[0].EmailSent)
	assert.Len(t, f.orders.created, 1)
}

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-250601-[A-Z0-9]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		n := NewOrderNumber(now)
		assert.Regexp(t, pattern, n)
		seen[n] = struct{}{}
	}
	// Random suffixes should essentially never collide in 50 draws.
	assert.Greater(t, len(seen), 45)
}
