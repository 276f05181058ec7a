package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates a status string against the five order states.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Address is the shipping snapshot embedded on an order. It is copied at
// checkout and never tracks later profile edits.
type Address struct {
	FullName   string `gorm:"size:100" json:"full_name"`
	Phone      string `gorm:"size:20" json:"phone"`
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2"`
	City       string `gorm:"size:100" json:"city"`
	Province   string `gorm:"size:100" json:"province"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
}

// OrderItem is a snapshot line: name and price are copied at order creation
// and stay immutable for receipt fidelity.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Name      string  `gorm:"size:255" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Qty       int     `gorm:"not null;default:1" json:"qty"`
	ImageURL  string  `json:"image_url"`
}

// OrderStockDeduction marks that stock has been decremented for a seller on
// an order. The unique (order_id, seller_id) pair is the idempotency guard:
// a retried shipped transition finds the row and skips the decrement loop.
type OrderStockDeduction struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	OrderID  uint `gorm:"uniqueIndex:idx_order_seller_deduction;not null" json:"order_id"`
	SellerID uint `gorm:"uniqueIndex:idx_order_seller_deduction;not null" json:"seller_id"`
}

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	OrderNumber string `gorm:"uniqueIndex;size:24;not null" json:"order_number"`

	// One order covers exactly one seller after checkout splits the cart.
	SellerID   uint   `gorm:"index" json:"seller_id"`
	SellerName string `gorm:"size:100" json:"seller_name"`

	Status     OrderStatus `gorm:"default:'pending';size:20" json:"status"`
	Total      float64     `gorm:"not null" json:"total"`
	TotalItems int         `gorm:"not null" json:"total_items"`

	PaymentMethod   string        `gorm:"size:20" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"default:'pending';size:20" json:"payment_status"`
	PaymentIntentID *string       `gorm:"size:80" json:"payment_intent_id"`
	PaidAt          *time.Time    `json:"paid_at"`

	Address Address `gorm:"embedded;embeddedPrefix:ship_" json:"address"`

	Items           []OrderItem           `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	StockDeductions []OrderStockDeduction `gorm:"constraint:OnDelete:CASCADE" json:"stock_deducted_sellers"`

	DeliveredAt *time.Time `json:"delivered_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasDeductionFor reports whether stock was already deducted for the seller.
func (o *Order) HasDeductionFor(sellerID uint) bool {
	for _, d := range o.StockDeductions {
		if d.SellerID == sellerID {
			return true
		}
	}
	return false
}
