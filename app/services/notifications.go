package services

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/pkg/notification"
)

var operatorChannels = []string{"mail", "webhook"}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "subscription_new"}}
<h2>New Subscription Request</h2>
<p><strong>Subscription ID:</strong> {{.ID}}</p>
<p><strong>Type:</strong> {{.Type}}</p>
<p><strong>Frequency:</strong> {{.Frequency}}</p>
<p><strong>Total Weight:</strong> {{.TotalWeight}}kg</p>
<p><strong>Total Price:</strong> €{{.TotalPrice}}</p>
<p><strong>Delivery Method:</strong> {{.Method}}</p>
<p><strong>Customer Email:</strong> {{.Email}}</p>
<h3>Selected Products:</h3>
<ul>
{{range .Lines}}<li>{{.Name}} - {{.Weight}}kg × €{{.Price}} = €{{.Total}}</li>
{{end}}</ul>
{{with .Address}}<h3>Delivery Address:</h3>
<p>{{range $i, $l := .}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>{{end}}
{{with .Notes}}<p><strong>Notes:</strong> {{.}}</p>{{end}}
{{end}}

{{define "subscription_status"}}
<h2>Subscription {{.Type}}</h2>
<p><strong>Subscription ID:</strong> {{.ID}}</p>
<p><strong>User ID:</strong> {{.UserID}}</p>
<p><strong>Changes:</strong> {{.Note}}</p>
<p><strong>Frequency:</strong> {{.Frequency}}</p>
<p><strong>Total Weight:</strong> {{.TotalWeight}}kg</p>
{{end}}

{{define "order_new"}}
<div style="font-family:Inter,Arial,sans-serif;line-height:1.6">
<h2>New order ({{.Status}})</h2>
{{with .ID}}<p><b>Order ID:</b> {{.}}</p>{{end}}
<h3>Items</h3>
<ul>
{{range .Items}}<li>{{.Name}} - {{.Quantity}}kg - €{{.LineTotal}}</li>
{{end}}</ul>
<p><b>Subtotal:</b> €{{.Subtotal}}</p>
<p><b>Delivery fee:</b> €{{.DeliveryFee}}</p>
<p><b>Total:</b> €{{.Total}}</p>
<p><b>Delivery:</b> {{.Zone}}</p>
<h3>Customer</h3>
{{range .Customer}}<p><b>{{.Key}}:</b> {{.Value}}</p>
{{end}}</div>
{{end}}

{{define "contact"}}
<h2>{{.Subject}}</h2>
{{range .Fields}}<p><strong>{{.Key}}:</strong> {{.Value}}</p>
{{end}}
{{end}}
`))

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Sprintf("<p>could not render %s: %v</p>", name, err)
	}
	return buf.String()
}

func kg(w float64) string { return strconv.FormatFloat(w, 'f', -1, 64) }

type pair struct{ Key, Value string }

// ─── New subscription ─────────────────────────────────────────────────────────

// NewSubscriptionMail tells the operator a subscription awaits review.
type NewSubscriptionMail struct {
	Subscription  models.Subscription
	CustomerEmail string
}

func (n NewSubscriptionMail) Via() []string { return operatorChannels }

func (n NewSubscriptionMail) ToMail() notification.MailData {
	s := n.Subscription

	type line struct{ Name, Weight, Price, Total string }
	lines := make([]line, 0, len(s.SelectedProducts))
	for _, p := range s.SelectedProducts {
		name := p.ProductName
		if name == "" {
			name = p.ProductID
		}
		lines = append(lines, line{
			Name:   name,
			Weight: kg(p.Weight),
			Price:  kg(p.Price),
			Total:  models.LinePrice(p).StringFixed(2),
		})
	}

	method := "Delivery"
	if s.PickupOption {
		method = "Pickup"
	}
	email := n.CustomerEmail
	if email == "" {
		email = "Not provided"
	}

	return notification.MailData{
		Subject: "New Subscription Request - " + s.ID,
		Body: render("subscription_new", map[string]any{
			"ID":          s.ID,
			"Type":        s.Type,
			"Frequency":   s.Frequency,
			"TotalWeight": kg(s.TotalWeight),
			"TotalPrice":  s.TotalPrice().StringFixed(2),
			"Method":      method,
			"Email":       email,
			"Lines":       lines,
			"Address":     s.DeliveryAddress.Lines(),
			"Notes":       s.Notes,
		}),
	}
}

func (n NewSubscriptionMail) ToWebhook() notification.WebhookData {
	return notification.WebhookData{Payload: map[string]any{
		"event":        EventSubscriptionCreated,
		"subscription": n.Subscription,
	}}
}

// ─── Status change ────────────────────────────────────────────────────────────

// StatusChangeType names the change for the mail subject.
func StatusChangeType(to models.SubscriptionStatus) string {
	switch to {
	case models.StatusPaused:
		return "paused"
	case models.StatusCancelled:
		return "cancelled"
	case models.StatusActive:
		return "activated"
	default:
		return "updated"
	}
}

// ChangeNote renders "<old> → <new>".
func ChangeNote(from, to models.SubscriptionStatus) string {
	return fmt.Sprintf("%s → %s", from, to)
}

// StatusChangedMail goes to the operator inbox; owners are only known by id.
type StatusChangedMail struct {
	Subscription models.Subscription
	From, To     models.SubscriptionStatus
}

func (n StatusChangedMail) Via() []string { return operatorChannels }

func (n StatusChangedMail) ToMail() notification.MailData {
	s := n.Subscription
	kind := StatusChangeType(n.To)
	return notification.MailData{
		Subject: fmt.Sprintf("Subscription %s - %s", kind, s.ID),
		Body: render("subscription_status", map[string]any{
			"Type":        kind,
			"ID":          s.ID,
			"UserID":      s.UserID,
			"Note":        ChangeNote(n.From, n.To),
			"Frequency":   s.Frequency,
			"TotalWeight": kg(s.TotalWeight),
		}),
	}
}

func (n StatusChangedMail) ToWebhook() notification.WebhookData {
	return notification.WebhookData{Payload: map[string]any{
		"event":          EventSubscriptionStatusChanged,
		"subscriptionId": n.Subscription.ID,
		"userId":         n.Subscription.UserID,
		"type":           StatusChangeType(n.To),
		"changes":        ChangeNote(n.From, n.To),
	}}
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// OrderMail tells the operator about a checkout.
type OrderMail struct {
	Order models.Order
}

func (n OrderMail) Via() []string { return operatorChannels }

func (n OrderMail) ToMail() notification.MailData {
	o := n.Order

	name := o.Customer.Name
	if name == "" {
		name = "Anonymous"
	}
	status := o.Status
	if status == "" {
		status = models.OrderPending
	}

	type item struct{ Name, Quantity, LineTotal string }
	items := make([]item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, item{Name: it.Name, Quantity: it.Quantity.String(), LineTotal: it.LineTotal.StringFixed(2)})
	}

	customer := []pair{}
	for _, p := range []pair{
		{"name", o.Customer.Name},
		{"email", o.Customer.Email},
		{"phone", o.Customer.Phone},
		{"notes", o.Customer.Notes},
	} {
		if p.Value != "" {
			customer = append(customer, p)
		}
	}
	addr := o.Customer.Address
	if addr == nil {
		addr = o.DeliveryAddress
	}
	for _, l := range addr.Lines() {
		if l != "" {
			customer = append(customer, pair{"address", l})
		}
	}

	return notification.MailData{
		Subject: fmt.Sprintf("New order (%s) - %s", status, name),
		Body: render("order_new", map[string]any{
			"ID":          o.ID,
			"Status":      status,
			"Items":       items,
			"Subtotal":    o.Totals.Subtotal.StringFixed(2),
			"DeliveryFee": o.Totals.DeliveryFee.StringFixed(2),
			"Total":       o.Totals.Total.StringFixed(2),
			"Zone":        o.DeliveryZone,
			"Customer":    customer,
		}),
	}
}

func (n OrderMail) ToWebhook() notification.WebhookData {
	return notification.WebhookData{Payload: map[string]any{
		"event": EventOrderCreated,
		"order": n.Order,
	}}
}

// ─── Contact form ─────────────────────────────────────────────────────────────

// ContactMail relays a website form; only the mail channel applies.
type ContactMail struct {
	Subject string
	Fields  map[string]any
}

func (n ContactMail) Via() []string { return []string{"mail"} }

func (n ContactMail) ToMail() notification.MailData {
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]pair, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, pair{k, fmt.Sprint(n.Fields[k])})
	}

	return notification.MailData{
		Subject: n.Subject,
		Body:    render("contact", map[string]any{"Subject": n.Subject, "Fields": fields}),
	}
}
