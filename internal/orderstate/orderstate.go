// Package orderstate drives an order through its lifecycle:
//
//	pending -> confirmed -> shipped -> delivered
//
// with cancelled reachable from pending/confirmed (buyer) or via seller and
// admin transitions. The shipped transition performs the one-time stock
// deduction for the acting seller, guarded by the order's deduction set, and
// the store applies the status flip and every decrement in one transaction.
package orderstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/internal/audit"
	"github.com/nxough-jxhn/daingGraderWeb/internal/mailer"
	"github.com/nxough-jxhn/daingGraderWeb/internal/ws"
	"github.com/nxough-jxhn/daingGraderWeb/models"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrNotSellerOrder   = errors.New("no order items belong to this seller")
	ErrCancelNotAllowed = errors.New("only pending or confirmed orders can be cancelled")
	ErrNotShipped       = errors.New("only shipped orders can be marked as delivered")
)

// Deduction is the stock mutation bundled with a transition: for every item
// in Items, stock_qty drops by qty (floored at 0) and sold_count grows by
// qty, then the (order, seller) guard row is written.
type Deduction struct {
	SellerID uint
	Items    []models.OrderItem
}

type Transition struct {
	OrderID     uint
	Status      models.OrderStatus
	DeliveredAt *time.Time
	Deduct      *Deduction
}

type Store interface {
	// Get loads the order with items and deduction guards, or
	// ErrOrderNotFound.
	Get(ctx context.Context, id uint) (*models.Order, error)
	SellerProductIDs(ctx context.Context, sellerID uint) (map[uint]struct{}, error)
	// Apply runs the whole transition atomically.
	Apply(ctx context.Context, t Transition) error
}

type Users interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

type Events interface {
	Publish(userID uint, ev ws.Event)
}

type Machine struct {
	Store  Store
	Users  Users
	Mail   mailer.Sender
	Events Events
	Audit  audit.Recorder
	Log    *zap.Logger
	Now    func() time.Time
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// SellerUpdateStatus applies a seller-driven transition. Sellers may set
// confirmed, shipped, or cancelled; delivered is the buyer's (or admin's)
// call. The seller must own at least one product on the order.
func (m *Machine) SellerUpdateStatus(ctx context.Context, orderID uint, seller *models.User, status models.OrderStatus) (*models.Order, error) {
	switch status {
	case models.OrderConfirmed, models.OrderShipped, models.OrderCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	o, err := m.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owned, err := m.Store.SellerProductIDs(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	sellerItems := itemsOwnedBy(o.Items, owned)
	if len(sellerItems) == 0 {
		return nil, ErrNotSellerOrder
	}

	t := Transition{OrderID: o.ID, Status: status}
	deducted := false
	if status == models.OrderShipped && !o.HasDeductionFor(seller.ID) {
		t.Deduct = &Deduction{SellerID: seller.ID, Items: sellerItems}
		deducted = true
	}

	if err := m.Store.Apply(ctx, t); err != nil {
		return nil, err
	}
	o.Status = status
	if deducted {
		o.StockDeductions = append(o.StockDeductions, models.OrderStockDeduction{
			OrderID:  o.ID,
			SellerID: seller.ID,
		})
	}

	switch status {
	case models.OrderShipped:
		m.notifyBuyer(ctx, o, "shipped")
	case models.OrderCancelled:
		m.notifyBuyer(ctx, o, "cancelled")
	}
	m.publish(o)
	m.record(ctx, seller, o, "Updated order status", fmt.Sprintf("Status set to %s", status))

	return o, nil
}

// CustomerCancel lets the buyer cancel while the order is still pending or
// confirmed. No stock or payment reversal happens beyond the status flip.
func (m *Machine) CustomerCancel(ctx context.Context, orderID uint, user *models.User) (*models.Order, error) {
	o, err := m.ownedOrder(ctx, orderID, user.ID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderPending && o.Status != models.OrderConfirmed {
		return nil, ErrCancelNotAllowed
	}

	if err := m.Store.Apply(ctx, Transition{OrderID: o.ID, Status: models.OrderCancelled}); err != nil {
		return nil, err
	}
	o.Status = models.OrderCancelled

	m.publish(o)
	m.record(ctx, user, o, "Cancelled order", "Customer cancelled")
	return o, nil
}

// CustomerMarkDelivered lets the buyer confirm receipt of a shipped order.
func (m *Machine) CustomerMarkDelivered(ctx context.Context, orderID uint, user *models.User) (*models.Order, error) {
	o, err := m.ownedOrder(ctx, orderID, user.ID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderShipped {
		return nil, ErrNotShipped
	}

	now := m.now()
	if err := m.Store.Apply(ctx, Transition{
		OrderID:     o.ID,
		Status:      models.OrderDelivered,
		DeliveredAt: &now,
	}); err != nil {
		return nil, err
	}
	o.Status = models.OrderDelivered
	o.DeliveredAt = &now

	m.publish(o)
	m.record(ctx, user, o, "Marked order as delivered", "User confirmed delivery")
	return o, nil
}

// AdminSetStatus force-sets any of the five states. No stock deduction:
// deduction is keyed to the acting seller, and an admin is not one.
func (m *Machine) AdminSetStatus(ctx context.Context, orderID uint, admin *models.User, status models.OrderStatus) (*models.Order, error) {
	if _, ok := models.ParseOrderStatus(string(status)); !ok {
		return nil, ErrInvalidStatus
	}

	o, err := m.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := m.Store.Apply(ctx, Transition{OrderID: o.ID, Status: status}); err != nil {
		return nil, err
	}
	o.Status = status

	m.publish(o)
	m.record(ctx, admin, o, "Updated order status", fmt.Sprintf("Admin set status to %s", status))
	return o, nil
}

func (m *Machine) ownedOrder(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	o, err := m.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Foreign orders are reported as absent, same as the user-scoped lookup.
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func itemsOwnedBy(items []models.OrderItem, owned map[uint]struct{}) []models.OrderItem {
	var out []models.OrderItem
	for _, it := range items {
		if _, ok := owned[it.ProductID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// notifyBuyer sends the shipped/cancelled email, best effort.
func (m *Machine) notifyBuyer(ctx context.Context, o *models.Order, kind string) {
	if m.Mail == nil || m.Users == nil {
		return
	}
	buyer, err := m.Users.Get(ctx, o.UserID)
	if err != nil {
		m.Log.Warn("buyer lookup for notification failed", zap.Uint("order_id", o.ID), zap.Error(err))
		return
	}
	name := buyer.FullName
	if name == "" {
		name = buyer.Username
	}

	var html, subject string
	if kind == "shipped" {
		html, err = mailer.OrderShippedHTML(o, name)
		subject = "Your order " + o.OrderNumber + " has shipped"
	} else {
		html, err = mailer.OrderCancelledHTML(o, name)
		subject = "Your order " + o.OrderNumber + " was cancelled"
	}
	if err != nil {
		m.Log.Warn("notification render failed", zap.Uint("order_id", o.ID), zap.Error(err))
		return
	}
	if err := m.Mail.Send(buyer.Email, subject, html); err != nil {
		m.Log.Warn("notification email failed", zap.Uint("order_id", o.ID), zap.Error(err))
	}
}

func (m *Machine) publish(o *models.Order) {
	if m.Events == nil {
		return
	}
	ev := ws.Event{
		Type:        "order_status",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
	}
	m.Events.Publish(o.UserID, ev)
	if o.SellerID != 0 {
		m.Events.Publish(o.SellerID, ev)
	}
}

func (m *Machine) record(ctx context.Context, actor *models.User, o *models.Order, action, details string) {
	if m.Audit == nil {
		return
	}
	m.Audit.Record(ctx, audit.Entry{
		Actor:    actor.Username,
		ActorID:  actor.ID,
		Role:     actor.Role,
		Action:   action,
		Category: "Order",
		Entity:   "Order",
		EntityID: fmt.Sprint(o.ID),
		Details:  details,
	})
}
