package mail

import (
	"fmt"
	"strings"

	"storefront/internal/domain"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Body    string
}

func VerificationMessage(username, link string) Message {
	return Message{
		Subject: "Verify your email",
		Body:    fmt.Sprintf("Hello %s,\n\nPlease verify your email by opening the link below:\n%s\n\nThe link expires in 24 hours.", username, link),
	}
}

func PasswordResetMessage(username, link string) Message {
	return Message{
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password:\n%s\n\nThe link expires in 1 hour. Ignore this email if you did not ask for a reset.", username, link),
	}
}

func OrderPlacedMessage(o domain.Order) Message {
	return Message{
		Subject: "Order Confirmation",
		Body:    fmt.Sprintf("Thank you for your order.\n\nOrder: %s\nStatus: %s\n\n%s", o.ID, o.Status, orderSummary(o)),
	}
}

func OrderConfirmedMessage(o domain.Order) Message {
	return Message{
		Subject: "Order Confirmed",
		Body:    fmt.Sprintf("Your order %s has been confirmed.\n\n%s", o.ID, orderSummary(o)),
	}
}

func orderSummary(o domain.Order) string {
	var b strings.Builder
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%d x %s  %s %s\n", l.Quantity, l.ProductName, l.Price.StringFixed(2), o.Currency)
	}
	fmt.Fprintf(&b, "Total: %s %s\n", o.TotalAmount.StringFixed(2), o.Currency)
	return b.String()
}
