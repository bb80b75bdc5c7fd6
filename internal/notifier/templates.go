package notifier

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderConfirmation renders the post-checkout confirmation mail.
func OrderConfirmation(orderID string, total decimal.Decimal) (subject, html string) {
	subject = fmt.Sprintf("Order Confirmation #%s", orderID)
	html = fmt.Sprintf(`<h1>Order Confirmation</h1>
<p>Thank you for your order #%s!</p>
<p>Your total: $%s</p>
<p>We'll notify you when your order ships.</p>`, orderID, total.StringFixed(2))
	return subject, html
}

// Welcome renders the post-registration mail.
func Welcome(name string) (subject, html string) {
	subject = "Welcome to Our Store!"
	html = fmt.Sprintf(`<h1>Welcome %s!</h1>
<p>Thank you for creating an account with us. We're excited to have you!</p>
<p>Start shopping now to discover our amazing products.</p>`, name)
	return subject, html
}
