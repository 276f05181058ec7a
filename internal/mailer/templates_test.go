package mailer

import (
	"testing"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            1,
		OrderNumber:   "ORD-250601-ABC123",
		SellerName:    "Tindahan ni Aling Nena",
		Total:         350,
		TotalItems:    5,
		PaymentMethod: "cod",
		PaymentStatus: models.PaymentCompleted,
		Items: []models.OrderItem{
			{Name: "Dried Dilis", Price: 100, Qty: 2},
			{Name: "Dried Pusit", Price: 50, Qty: 3},
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOrderReceiptHTML(t *testing.T) {
	html, err := OrderReceiptHTML(sampleOrder(), "Maria")
	require.NoError(t, err)

	assert.Contains(t, html, "Hi Maria")
	assert.Contains(t, html, "ORD-250601-ABC123")
	assert.Contains(t, html, "Dried Dilis")
	assert.Contains(t, html, "Dried Pusit")
	// Line subtotals and the grand total.
	assert.Contains(t, html, "200.00")
	assert.Contains(t, html, "150.00")
	assert.Contains(t, html, "Total: PHP 350.00")
}

func TestOrderStatusEmails(t *testing.T) {
	o := sampleOrder()

	shipped, err := OrderShippedHTML(o, "Maria")
	require.NoError(t, err)
	assert.Contains(t, shipped, "on the way")
	assert.Contains(t, shipped, o.OrderNumber)

	cancelled, err := OrderCancelledHTML(o, "Maria")
	require.NoError(t, err)
	assert.Contains(t, cancelled, "was cancelled")
	assert.Contains(t, cancelled, o.OrderNumber)
}

func TestItemToggleHTML(t *testing.T) {
	disabled, err := ItemToggleHTML("product", "Dried Dilis", "Nena", "misleading photos", true)
	require.NoError(t, err)
	assert.Contains(t, disabled, "disabled")
	assert.Contains(t, disabled, "misleading photos")
	assert.Contains(t, disabled, "no longer visible")

	enabled, err := ItemToggleHTML("product", "Dried Dilis", "Nena", "", false)
	require.NoError(t, err)
	assert.Contains(t, enabled, "re-enabled")
	assert.Contains(t, enabled, "visible to other users again")
	assert.NotContains(t, enabled, "Reason:")
}

func TestAccountDeactivatedHTML(t *testing.T) {
	at := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	timed, err := AccountDeactivatedHTML("Maria", []string{"spam"}, &at)
	require.NoError(t, err)
	assert.Contains(t, timed, "spam")
	assert.Contains(t, timed, "Jun 8, 2025")
	assert.NotContains(t, timed, "permanent")

	permanent, err := AccountDeactivatedHTML("Maria", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, permanent, "permanent")
}
