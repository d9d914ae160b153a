package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/warrantydesk/warrantydesk/internal/claims"
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("2006-01-02") },
}

var claimTmpl = template.Must(template.New("claim").Funcs(funcs).Parse(`<html><body>
<h2>Warranty claim {{.Claim.ClaimNumber}}</h2>
<p>A new claim needs <strong>{{.ApproverRole}}</strong> approval.</p>
<table>
<tr><td>Order</td><td>{{.Claim.OrderID}}</td></tr>
<tr><td>Customer</td><td>{{.Claim.CustomerName}} &lt;{{.Claim.CustomerEmail}}&gt;</td></tr>
{{- if .Claim.CustomerPhone}}
<tr><td>Phone</td><td>{{.Claim.CustomerPhone}}</td></tr>
{{- end}}
<tr><td>Created</td><td>{{date .Claim.CreatedAt}}</td></tr>
{{- if .CreatorName}}
<tr><td>Created by</td><td>{{.CreatorName}}</td></tr>
{{- end}}
</table>
<h3>Items</h3>
<ul>
{{- range .Items}}
<li>{{.SKU}}{{if .ProductName}} {{.ProductName}}{{end}}{{if .CategoryName}} ({{.CategoryName}}){{end}}{{if .Description}}: {{.Description}}{{end}}</li>
{{- end}}
</ul>
</body></html>`))

var ackTmpl = template.Must(template.New("ack").Parse(`<html><body>
<p>Hello{{if .Claim.CustomerName}} {{.Claim.CustomerName}}{{end}},</p>
<p>We received your warranty claim for order {{.Claim.OrderID}}. Your claim number is <strong>{{.Claim.ClaimNumber}}</strong>.</p>
<p>We will contact you once it has been reviewed.</p>
</body></html>`))

var statusTmpl = template.Must(template.New("status").Parse(`<html><body>
<p>Hello{{if .Claim.CustomerName}} {{.Claim.CustomerName}}{{end}},</p>
<p>Your warranty claim <strong>{{.Claim.ClaimNumber}}</strong> is now <strong>{{.NewStatus.Label}}</strong>.</p>
{{- if .Note}}
<p>{{.Note}}</p>
{{- end}}
</body></html>`))

// RenderClaimEmail renders the approver email body
func RenderClaimEmail(n *claims.ClaimNotification) (string, error) {
	return render(claimTmpl, n)
}

// RenderCustomerAck renders the customer acknowledgement body
func RenderCustomerAck(n *claims.ClaimNotification) (string, error) {
	return render(ackTmpl, n)
}

// RenderStatusEmail renders the customer status update body
func RenderStatusEmail(n *claims.StatusChangeNotification) (string, error) {
	return render(statusTmpl, n)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
