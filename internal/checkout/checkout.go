// Package checkout turns a user's cart into one order per seller. Orders are
// priced from the current product documents, not cart-cached prices; each
// seller group is an independent all-or-nothing insert.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nxough-jxhn/daingGraderWeb/internal/audit"
	"github.com/nxough-jxhn/daingGraderWeb/internal/mailer"
	"github.com/nxough-jxhn/daingGraderWeb/internal/payments"
	"github.com/nxough-jxhn/daingGraderWeb/internal/voucher"
	"github.com/nxough-jxhn/daingGraderWeb/internal/ws"
	"github.com/nxough-jxhn/daingGraderWeb/models"
	"go.uber.org/zap"
)

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrNoSellerItems   = errors.New("no cart items for the requested seller")
	ErrVoucherNotFound = errors.New("invalid voucher code")
)

const PaymentMethodCOD = "cod"

type ProductStore interface {
	ByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
}

type CartStore interface {
	Get(ctx context.Context, userID uint) (*models.Cart, error)
	RemoveItems(ctx context.Context, userID uint, productIDs []uint) error
}

type VoucherStore interface {
	// FindByCode looks up by uppercased code; absent codes return
	// ErrVoucherNotFound.
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	CommitUsage(ctx context.Context, voucherID, userID uint) error
}

type Events interface {
	Publish(userID uint, ev ws.Event)
}

type Input struct {
	User          *models.User
	Address       models.Address
	PaymentMethod string
	SellerID      uint // 0 = every seller represented in the cart
	VoucherCode   string
	RedirectURL   string
	IP            string
}

// OrderResult pairs a created order with its receipt delivery flag.
type OrderResult struct {
	Order     *models.Order `json:"order"`
	EmailSent bool          `json:"email_sent"`
}

type Result struct {
	Orders          []OrderResult       `json:"orders"`
	OrderIDs        []uint              `json:"order_ids"`
	PaymentIntentID string              `json:"payment_intent_id,omitempty"`
	CheckoutURL     string              `json:"checkout_url,omitempty"`
	Discount        float64             `json:"discount,omitempty"`
	DiscountType    models.DiscountType `json:"discount_type,omitempty"`
}

type Engine struct {
	Products ProductStore
	Orders   OrderStore
	Carts    CartStore
	Vouchers VoucherStore
	Gateway  payments.Gateway
	Mail     mailer.Sender
	Events   Events
	Audit    audit.Recorder
	Log      *zap.Logger

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// NewOrderNumber allocates a human-readable order number:
// ORD-<YYMMDD>-<6 random uppercase alnum>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("060102"), suffix)
}

type sellerGroup struct {
	sellerID    uint
	sellerName  string
	sellerEmail string
	items       []models.OrderItem
	total       float64
	totalItems  int
}

// Checkout runs the full flow: resolve cart lines against live products,
// group by seller, price each group, create the payment intent for non-COD
// methods, persist one order per seller, clear the consumed cart lines, and
// fire the best-effort side effects (receipts, events, audit).
func (e *Engine) Checkout(ctx context.Context, in Input) (*Result, error) {
	cart, err := e.Carts.Get(ctx, in.User.ID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := e.Products.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Resolve lines in cart order; lines whose product no longer exists are
	// skipped, and the optional seller filter is applied here.
	type line struct {
		qty     int
		product *models.Product
	}
	var lines []line
	for _, it := range cart.Items {
		p := products[it.ProductID]
		if p == nil {
			continue
		}
		if in.SellerID != 0 && p.SellerID != in.SellerID {
			continue
		}
		lines = append(lines, line{qty: it.Qty, product: p})
	}
	if len(lines) == 0 {
		if in.SellerID != 0 {
			return nil, ErrNoSellerItems
		}
		return nil, ErrCartEmpty
	}

	// Group by seller, preserving first-seen order so results are stable.
	groups := make(map[uint]*sellerGroup)
	var sellerOrder []uint
	for _, l := range lines {
		g, ok := groups[l.product.SellerID]
		if !ok {
			g = &sellerGroup{
				sellerID:    l.product.SellerID,
				sellerName:  l.product.SellerName,
				sellerEmail: l.product.Seller.Email,
			}
			groups[l.product.SellerID] = g
			sellerOrder = append(sellerOrder, l.product.SellerID)
		}
		g.items = append(g.items, models.OrderItem{
			ProductID: l.product.ID,
			Name:      l.product.Name,
			Price:     l.product.Price,
			Qty:       l.qty,
			ImageURL:  l.product.MainImageURL(),
		})
		g.total += l.product.Price * float64(l.qty)
		g.totalItems += l.qty
	}

	var grandTotal float64
	for _, g := range groups {
		grandTotal += g.total
	}

	now := e.now()
	res := &Result{}

	var voucherRes *voucher.Result
	if in.VoucherCode != "" {
		code := strings.ToUpper(strings.TrimSpace(in.VoucherCode))
		v, err := e.Vouchers.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		voucherRes, err = voucher.Validate(v, in.User.ID, grandTotal, now)
		if err != nil {
			return nil, err
		}
		res.Discount = voucherRes.Discount
		res.DiscountType = voucherRes.DiscountType
	}

	cod := in.PaymentMethod == PaymentMethodCOD
	orders := make([]*models.Order, 0, len(sellerOrder))
	for _, sid := range sellerOrder {
		g := groups[sid]
		o := &models.Order{
			UserID:        in.User.ID,
			OrderNumber:   NewOrderNumber(now),
			SellerID:      g.sellerID,
			SellerName:    g.sellerName,
			Total:         g.total,
			TotalItems:    g.totalItems,
			PaymentMethod: in.PaymentMethod,
			Address:       in.Address,
			Items:         g.items,
		}
		if cod {
			o.Status = models.OrderConfirmed
			o.PaymentStatus = models.PaymentCompleted
			paidAt := now
			o.PaidAt = &paidAt
		} else {
			o.Status = models.OrderPending
			o.PaymentStatus = models.PaymentPending
		}
		orders = append(orders, o)
	}

	// The gateway is called before anything persists so a failed intent
	// leaves nothing behind; the single intent covers the discounted grand
	// total and its id lands on every created order.
	if !cod {
		amount := int64(math.Round((grandTotal - res.Discount) * 100))
		desc := fmt.Sprintf("DaingGrader order for %s (%d seller(s))", in.User.Username, len(orders))
		intent, err := e.Gateway.CreateIntent(ctx, amount, in.PaymentMethod, desc, in.RedirectURL)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			intentID := intent.ID
			o.PaymentIntentID = &intentID
		}
		res.PaymentIntentID = intent.ID
		res.CheckoutURL = intent.CheckoutURL
	}

	for _, o := range orders {
		if err := e.Orders.Create(ctx, o); err != nil {
			return nil, err
		}
		res.OrderIDs = append(res.OrderIDs, o.ID)
	}

	consumed := make([]uint, 0, len(lines))
	for _, l := range lines {
		consumed = append(consumed, l.product.ID)
	}
	if err := e.Carts.RemoveItems(ctx, in.User.ID, consumed); err != nil {
		return nil, err
	}

	if voucherRes != nil {
		if err := e.Vouchers.CommitUsage(ctx, voucherRes.VoucherID, in.User.ID); err != nil {
			e.Log.Warn("voucher usage commit failed",
				zap.Uint("voucher_id", voucherRes.VoucherID), zap.Error(err))
		}
	}

	for _, o := range orders {
		sent := e.sendReceipts(o, in.User, groups[o.SellerID].sellerEmail)
		res.Orders = append(res.Orders, OrderResult{Order: o, EmailSent: sent})

		if e.Events != nil {
			e.Events.Publish(in.User.ID, ws.Event{
				Type:        "order_created",
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Status:      string(o.Status),
			})
			e.Events.Publish(o.SellerID, ws.Event{
				Type:        "order_created",
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Status:      string(o.Status),
				Message:     "You have a new order",
			})
		}
		if e.Audit != nil {
			e.Audit.Record(ctx, audit.Entry{
				Actor:    in.User.Username,
				ActorID:  in.User.ID,
				Role:     in.User.Role,
				Action:   "Placed order",
				Category: "Order",
				Entity:   "Order",
				EntityID: fmt.Sprint(o.ID),
				Details:  fmt.Sprintf("Order %s, total %.2f", o.OrderNumber, o.Total),
				IP:       in.IP,
			})
		}
	}

	return res, nil
}

// sendReceipts emails the HTML receipt to the buyer and, if distinct, the
// seller. Failures are logged per order and never roll anything back.
func (e *Engine) sendReceipts(o *models.Order, buyer *models.User, sellerEmail string) bool {
	if e.Mail == nil {
		return false
	}

	name := buyer.FullName
	if name == "" {
		name = buyer.Username
	}
	html, err := mailer.OrderReceiptHTML(o, name)
	if err != nil {
		e.Log.Warn("receipt render failed", zap.String("order", o.OrderNumber), zap.Error(err))
		return false
	}

	sent := true
	if err := e.Mail.Send(buyer.Email, "Your DaingGrader receipt - "+o.OrderNumber, html); err != nil {
		e.Log.Warn("receipt email failed", zap.String("order", o.OrderNumber), zap.Error(err))
		sent = false
	}
	if sellerEmail != "" && sellerEmail != buyer.Email {
		if err := e.Mail.Send(sellerEmail, "New order "+o.OrderNumber, html); err != nil {
			e.Log.Warn("seller receipt email failed", zap.String("order", o.OrderNumber), zap.Error(err))
		}
	}
	return sent
}
