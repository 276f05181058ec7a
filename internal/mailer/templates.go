package mailer

import (
	"bytes"
	"html/template"
	"time"

	"github.com/nxough-jxhn/daingGraderWeb/models"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"subtotal": func(it models.OrderItem) float64 { return it.Price * float64(it.Qty) },
}).Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1a4d7a">Order Receipt</h2>
  <p>Hi {{.BuyerName}}, thank you for your order!</p>
  <p><strong>Order {{.Order.OrderNumber}}</strong> &middot; {{.Order.SellerName}} &middot; {{.PlacedAt}}</p>
  <table style="width:100%;border-collapse:collapse">
    <tr style="background:#f0f4f8">
      <th style="text-align:left;padding:8px">Item</th>
      <th style="text-align:right;padding:8px">Qty</th>
      <th style="text-align:right;padding:8px">Price</th>
      <th style="text-align:right;padding:8px">Subtotal</th>
    </tr>
    {{range .Order.Items}}
    <tr>
      <td style="padding:8px;border-bottom:1px solid #eee">{{.Name}}</td>
      <td style="text-align:right;padding:8px;border-bottom:1px solid #eee">{{.Qty}}</td>
      <td style="text-align:right;padding:8px;border-bottom:1px solid #eee">{{printf "%.2f" .Price}}</td>
      <td style="text-align:right;padding:8px;border-bottom:1px solid #eee">{{printf "%.2f" (subtotal .)}}</td>
    </tr>
    {{end}}
  </table>
  <p style="text-align:right;font-size:18px"><strong>Total: PHP {{printf "%.2f" .Order.Total}}</strong></p>
  <p>Payment method: {{.Order.PaymentMethod}} ({{.Order.PaymentStatus}})</p>
  <p style="color:#888;font-size:12px">DaingGrader Marketplace</p>
</div>`))

var statusTmpl = template.Must(template.New("status").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1a4d7a">{{.Heading}}</h2>
  <p>Hi {{.BuyerName}},</p>
  <p>{{.Body}}</p>
  <p><strong>Order {{.Order.OrderNumber}}</strong> &middot; {{.Order.TotalItems}} item(s) &middot; PHP {{printf "%.2f" .Order.Total}}</p>
  <ul>
    {{range .Order.Items}}<li>{{.Name}} &times; {{.Qty}}</li>{{end}}
  </ul>
  <p style="color:#888;font-size:12px">DaingGrader Marketplace</p>
</div>`))

var toggleTmpl = template.Must(template.New("toggle").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:{{.Color}}">Your {{.ItemType}} has been {{.Verb}}</h2>
  <p>Hi {{.OwnerName}},</p>
  <p>Your {{.ItemType}} <strong>{{.ItemName}}</strong> has been {{.Verb}} by a moderator.</p>
  {{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
  {{if .Disabled}}<p>It is no longer visible to other users.</p>{{else}}<p>It is visible to other users again.</p>{{end}}
  <p style="color:#888;font-size:12px">DaingGrader Marketplace</p>
</div>`))

var deactivationTmpl = template.Must(template.New("deactivation").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#a33">Your account has been deactivated</h2>
  <p>Hi {{.Name}},</p>
  {{if .Reasons}}<p>Reasons:</p><ul>{{range .Reasons}}<li>{{.}}</li>{{end}}</ul>{{end}}
  {{if .ReactivateAt}}<p>Your account will be reactivated on <strong>{{.ReactivateAt}}</strong>.</p>
  {{else}}<p>This deactivation is permanent.</p>{{end}}
  <p style="color:#888;font-size:12px">DaingGrader Marketplace</p>
</div>`))

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OrderReceiptHTML renders the emailed receipt for one seller's order.
func OrderReceiptHTML(o *models.Order, buyerName string) (string, error) {
	return render(receiptTmpl, map[string]interface{}{
		"Order":     o,
		"BuyerName": buyerName,
		"PlacedAt":  o.CreatedAt.Format("Jan 2, 2006 15:04"),
	})
}

func OrderShippedHTML(o *models.Order, buyerName string) (string, error) {
	return render(statusTmpl, map[string]interface{}{
		"Order":     o,
		"BuyerName": buyerName,
		"Heading":   "Your order is on the way",
		"Body":      "The seller has shipped your order. You can mark it as delivered once it arrives.",
	})
}

func OrderCancelledHTML(o *models.Order, buyerName string) (string, error) {
	return render(statusTmpl, map[string]interface{}{
		"Order":     o,
		"BuyerName": buyerName,
		"Heading":   "Your order was cancelled",
		"Body":      "The seller has cancelled your order. If you already paid, the amount will be refunded.",
	})
}

// ItemToggleHTML covers the uniform moderation pattern: "item disabled" when
// disabled is true, "item enabled" otherwise.
func ItemToggleHTML(itemType, itemName, ownerName, reason string, disabled bool) (string, error) {
	verb, color := "re-enabled", "#2a7a2a"
	if disabled {
		verb, color = "disabled", "#a33"
	}
	return render(toggleTmpl, map[string]interface{}{
		"ItemType":  itemType,
		"ItemName":  itemName,
		"OwnerName": ownerName,
		"Reason":    reason,
		"Verb":      verb,
		"Color":     color,
		"Disabled":  disabled,
	})
}

func AccountDeactivatedHTML(name string, reasons []string, reactivateAt *time.Time) (string, error) {
	var at string
	if reactivateAt != nil {
		at = reactivateAt.Format("Jan 2, 2006 15:04 MST")
	}
	return render(deactivationTmpl, map[string]interface{}{
		"Name":         name,
		"Reasons":      reasons,
		"ReactivateAt": at,
	})
}
