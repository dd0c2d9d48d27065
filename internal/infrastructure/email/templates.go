package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

const layout = `{{define "layout"}}<div style="max-width: 600px; margin: auto; padding: 20px; font-family: Arial, sans-serif; background: #fefefe; border-radius: 12px; border: 1px solid #eee;">
<h2 style="color: #FE4D00; text-align: center;">{{template "title" .}}</h2>
<p style="font-size: 16px;">Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
{{template "body" .}}
<p style="font-size: 13px; color: #888; text-align: center;">ServiBid</p>
</div>{{end}}`

var bodies = map[string]string{
	"requestSubmitted": `{{define "title"}}Request submitted{{end}}{{define "body"}}
<p>Your request for <strong>{{.Service}}</strong> has been submitted successfully.</p>
<p><strong>Date:</strong> {{date .Date}}</p>
<p><strong>Budget:</strong> {{money .Currency .Amount}}</p>
{{if .Description}}<p><strong>Details:</strong> {{.Description}}</p>{{end}}
<p>Providers offering this service have been notified. You will hear from us when bids arrive.</p>{{end}}`,

	"newJob": `{{define "title"}}New job alert{{end}}{{define "body"}}
<p>A new <strong>{{.Service}}</strong> request has just been posted in your service category.</p>
<p><strong>Date:</strong> {{date .Date}}</p>
<p><strong>Budget:</strong> {{money .Currency .Amount}}</p>
{{if .Description}}<p><strong>Details:</strong> {{.Description}}</p>{{end}}
<p>Open the app to place your bid.</p>{{end}}`,

	"bidReceived": `{{define "title"}}New bid received{{end}}{{define "body"}}
<p><strong>{{.Counterparty}}</strong> has placed a new bid on your <strong>{{.Service}}</strong> request.</p>
<p><strong>Bid amount:</strong> {{money .Currency .Amount}}</p>
{{if .Description}}<p><strong>Message:</strong> {{.Description}}</p>{{end}}{{end}}`,

	"bidPlaced": `{{define "title"}}Bid placed{{end}}{{define "body"}}
<p>Your bid has been submitted successfully for the <strong>{{.Service}}</strong> request.</p>
<p><strong>Amount:</strong> {{money .Currency .Amount}}</p>
<p>We will let you know if the customer accepts it.</p>{{end}}`,

	"paymentReceipt": `{{define "title"}}Payment successful{{end}}{{define "body"}}
<p>Thank you for your payment. Your service request is now confirmed.</p>
<p><strong>Service:</strong> {{.Service}}</p>
<p><strong>Amount:</strong> {{money .Currency .Amount}}</p>
<p><strong>Card:</strong> {{upper .CardBrand}} **** {{.CardLast4}}</p>
<p><strong>Date:</strong> {{date .Date}}</p>{{end}}`,

	"paymentReceived": `{{define "title"}}Payment received{{end}}{{define "body"}}
<p>The customer has paid for the <strong>{{.Service}}</strong> request. You can now contact them and schedule the job.</p>
<p><strong>Service:</strong> {{.Service}}</p>
<p><strong>Amount:</strong> {{money .Currency .Amount}}</p>
<p><strong>Date:</strong> {{date .Date}}</p>{{end}}`,
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("Jan 2, 2006 15:04 MST")
	},
	"money": func(currency string, amount float64) string {
		return fmt.Sprintf("%s %.2f", strings.ToUpper(currency), amount)
	},
	"upper": strings.ToUpper,
}

var templates = func() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		t := template.Must(template.New(name).Funcs(funcs).Parse(layout))
		parsed[name] = template.Must(t.Parse(body))
	}
	return parsed
}()

// Data is the view model shared by every template. Fields a template does
// not use are ignored.
type Data struct {
	Name         string
	Counterparty string
	Service      string
	Description  string
	Currency     string
	Amount       float64
	Date         time.Time
	CardBrand    string
	CardLast4    string
}

func render(name, to, subject string, data Data) (Message, error) {
	var buf bytes.Buffer
	if err := templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

func RequestSubmitted(to string, data Data) (Message, error) {
	return render("requestSubmitted", to, fmt.Sprintf("Your %s request has been submitted!", data.Service), data)
}

func NewJob(to string, data Data) (Message, error) {
	return render("newJob", to, fmt.Sprintf("New %s request in your area!", data.Service), data)
}

func BidReceived(to string, data Data) (Message, error) {
	return render("bidReceived", to, fmt.Sprintf("New bid received on your %s request!", data.Service), data)
}

func BidPlaced(to string, data Data) (Message, error) {
	return render("bidPlaced", to, fmt.Sprintf("Your bid for %s was placed successfully!", data.Service), data)
}

func PaymentReceipt(to string, data Data) (Message, error) {
	return render("paymentReceipt", to, fmt.Sprintf("Payment received for %s - ServiBid Receipt", data.Service), data)
}

func PaymentReceived(to string, data Data) (Message, error) {
	return render("paymentReceived", to, fmt.Sprintf("You received a payment for %s - ServiBid", data.Service), data)
}
