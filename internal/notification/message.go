package notification

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"pizzeria-api/internal/model"

	"github.com/shopspring/decimal"
)

// Kind identifies the type of notification and doubles as its routing key.
type Kind string

const (
	KindOrderConfirmation Kind = "order.confirmation"
	KindStatusUpdate      Kind = "order.status"
	KindAdminAlert        Kind = "order.admin_alert"
)

// Contact is who a customer notification goes to.
type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Business identifies the restaurant in outgoing messages.
type Business struct {
	Name    string
	Address string
	Phone   string
}

// DefaultBusiness is the restaurant the service runs for.
var DefaultBusiness = Business{
	Name:    "NY Pizza Woodstock",
	Address: "10214 Hickory Flat Hwy, Woodstock, GA 30188",
	Phone:   "(470) 545-0095",
}

// Message is a rendered notification ready for delivery.
type Message struct {
	Kind        Kind              `json:"kind"`
	To          []string          `json:"to"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	OrderID     string            `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	Status      model.OrderStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

var statusSubjects = map[model.OrderStatus]string{
	model.StatusConfirmed: "Your order has been confirmed!",
	model.StatusPreparing: "Your order is being prepared",
	model.StatusReady:     "Your order is ready for pickup!",
	model.StatusDelivered: "Your order has been delivered",
	model.StatusPickedUp:  "Your order has been picked up",
	model.StatusCancelled: "Your order has been cancelled",
}

var statusLines = map[model.OrderStatus]string{
	model.StatusConfirmed: "We've received your order and it's confirmed.",
	model.StatusPreparing: "Our kitchen is preparing your order now.",
	model.StatusReady:     "Your order is ready.",
	model.StatusDelivered: "Your order has been delivered. Enjoy!",
	model.StatusPickedUp:  "Thanks for picking up your order. Enjoy!",
	model.StatusCancelled: "Your order has been cancelled. Please call us with any questions.",
}

const confirmationText = `Hi {{.Contact.Name}},

Thank you for your order at {{.Business.Name}}!

Order #{{.Order.Number}} ({{.Order.OrderType}})
{{range .Order.Lines}}- {{.Quantity}} x {{.Name}}{{if .Size}} ({{deref .Size}}){{end}}: ${{money (.LineTotal)}}
{{end}}
Subtotal: ${{money .Order.Subtotal}}
Delivery fee: ${{money .Order.DeliveryFee}}
Tax: ${{money .Order.Tax}}
Total: ${{money .Order.Total}}
{{if .Order.DeliveryAddress}}
Delivering to: {{.Order.DeliveryAddress}}
{{end}}
Estimated ready time: {{.Order.EstimatedReadyAt.Format "3:04 PM"}}

{{.Business.Name}}
{{.Business.Address}}
{{.Business.Phone}}
`

const statusText = `Hi {{.Contact.Name}},

{{.Line}}

Order #{{.Order.Number}} is now {{.Status}}.

{{.Business.Name}}
{{.Business.Phone}}
`

const adminText = `New {{.Order.OrderType}} order #{{.Order.Number}}

Payment: {{.Order.PaymentMethod}}
{{range .Order.Lines}}- {{.Quantity}} x {{.Name}}{{if .Size}} ({{deref .Size}}){{end}}{{if .SpecialInstructions}} [{{deref .SpecialInstructions}}]{{end}}
{{end}}
Total: ${{money .Order.Total}}
{{if .Order.DeliveryAddress}}Deliver to: {{.Order.DeliveryAddress}}
{{end}}{{if .Order.SpecialInstructions}}Instructions: {{deref .Order.SpecialInstructions}}
{{end}}`

var funcs = template.FuncMap{
	"money": func(v decimal.Decimal) string { return v.StringFixed(2) },
	"deref": func(s *string) string { return *s },
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(confirmationText))
	statusTmpl       = template.Must(template.New("status").Funcs(funcs).Parse(statusText))
	adminTmpl        = template.Must(template.New("admin").Funcs(funcs).Parse(adminText))
)

// Renderer turns orders into messages.
type Renderer struct {
	business    Business
	adminEmails []string
	now         func() time.Time
}

// NewRenderer creates a renderer for the given business and staff recipients.
func NewRenderer(business Business, adminEmails []string) *Renderer {
	return &Renderer{business: business, adminEmails: adminEmails, now: time.Now}
}

// Confirmation renders the customer's order confirmation.
func (r *Renderer) Confirmation(order *model.Order, contact Contact) (Message, error) {
	body, err := render(confirmationTmpl, map[string]any{
		"Order":    order,
		"Contact":  contact,
		"Business": r.business,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:        KindOrderConfirmation,
		To:          []string{contact.Email},
		Subject:     fmt.Sprintf("Order Confirmation #%s - %s", order.Number(), r.business.Name),
		Body:        body,
		OrderID:     order.ID.String(),
		OrderNumber: order.Number(),
		Status:      order.Status,
		CreatedAt:   r.now(),
	}, nil
}

// StatusUpdate renders the customer message for a status change.
func (r *Renderer) StatusUpdate(order *model.Order, status model.OrderStatus, contact Contact) (Message, error) {
	subject, ok := statusSubjects[status]
	if !ok {
		subject = fmt.Sprintf("Order #%s update", order.Number())
	}
	line, ok := statusLines[status]
	if !ok {
		line = fmt.Sprintf("Your order status is now %s.", status)
	}

	body, err := render(statusTmpl, map[string]any{
		"Order":    order,
		"Contact":  contact,
		"Business": r.business,
		"Status":   status,
		"Line":     line,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:        KindStatusUpdate,
		To:          []string{contact.Email},
		Subject:     subject,
		Body:        body,
		OrderID:     order.ID.String(),
		OrderNumber: order.Number(),
		Status:      status,
		CreatedAt:   r.now(),
	}, nil
}

// AdminAlert renders the kitchen/staff alert for a new order.
func (r *Renderer) AdminAlert(order *model.Order) (Message, error) {
	body, err := render(adminTmpl, map[string]any{"Order": order})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:        KindAdminAlert,
		To:          r.adminEmails,
		Subject:     fmt.Sprintf("NEW ORDER #%s - $%s", order.Number(), order.Total.StringFixed(2)),
		Body:        body,
		OrderID:     order.ID.String(),
		OrderNumber: order.Number(),
		Status:      order.Status,
		CreatedAt:   r.now(),
	}, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
