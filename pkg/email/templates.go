package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var templates = template.Must(template.New("email").Parse(`
{{define "layout_top"}}
<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
        <tr><td style="background-color:#4f46e5;padding:20px 32px;">
          <h1 style="color:#ffffff;font-size:20px;margin:0;">{{.Heading}}</h1>
        </td></tr>
        <tr><td style="padding:28px 32px;color:#374151;font-size:14px;line-height:1.6;">
{{end}}

{{define "layout_bottom"}}
        </td></tr>
        <tr><td style="padding:16px 32px;background-color:#f9fafb;color:#9ca3af;font-size:12px;text-align:center;">
          This is an automated message. Your invoice is attached when available, and can always be downloaded from your dashboard.
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>
{{end}}

{{define "booking_confirmation"}}
{{template "layout_top" .}}
          <p>Hi {{.Name}},</p>
          <p>Your seat is confirmed. Here are your booking details:</p>
          <table role="presentation" cellpadding="0" cellspacing="0" style="width:100%;background-color:#f9fafb;border-radius:6px;padding:8px;">
            <tr><td style="padding:6px 12px;color:#6b7280;">Webinar</td><td style="padding:6px 12px;"><strong>{{.WebinarTitle}}</strong></td></tr>
            <tr><td style="padding:6px 12px;color:#6b7280;">Date</td><td style="padding:6px 12px;">{{.WebinarDate}}</td></tr>
            <tr><td style="padding:6px 12px;color:#6b7280;">Time</td><td style="padding:6px 12px;">{{.WebinarTime}}</td></tr>
            <tr><td style="padding:6px 12px;color:#6b7280;">Host</td><td style="padding:6px 12px;">{{.Host}}</td></tr>
            <tr><td style="padding:6px 12px;color:#6b7280;">Amount Paid</td><td style="padding:6px 12px;">{{.Amount}}</td></tr>
            {{if .TransactionID}}<tr><td style="padding:6px 12px;color:#6b7280;">Transaction ID</td><td style="padding:6px 12px;">{{.TransactionID}}</td></tr>{{end}}
          </table>
          <p>The joining link will be emailed to you before the session starts.</p>
{{template "layout_bottom" .}}
{{end}}

{{define "purchase_confirmation"}}
{{template "layout_top" .}}
          <p>Hi {{.Name}},</p>
          <p>Thank you for your purchase. Here is what you ordered:</p>
          <table role="presentation" cellpadding="0" cellspacing="0" style="width:100%;background-color:#f9fafb;border-radius:6px;padding:8px;">
            <tr><td style="padding:6px 12px;color:#6b7280;">Service</td><td style="padding:6px 12px;"><strong>{{.ServiceName}}</strong></td></tr>
            {{if .ServiceDescription}}<tr><td style="padding:6px 12px;color:#6b7280;">Details</td><td style="padding:6px 12px;">{{.ServiceDescription}}</td></tr>{{end}}
            <tr><td style="padding:6px 12px;color:#6b7280;">Amount Paid</td><td style="padding:6px 12px;">{{.Amount}}</td></tr>
            {{if .TransactionID}}<tr><td style="padding:6px 12px;color:#6b7280;">Transaction ID</td><td style="padding:6px 12px;">{{.TransactionID}}</td></tr>{{end}}
          </table>
          <p>Our team will reach out shortly to get things started.</p>
{{template "layout_bottom" .}}
{{end}}

{{define "meeting_link"}}
{{template "layout_top" .}}
          <p>Hello,</p>
          <p>The webinar <strong>{{.WebinarTitle}}</strong> is starting on {{.WebinarDate}} at {{.WebinarTime}}.</p>
          <p style="text-align:center;margin:24px 0;">
            <a href="{{.MeetingLink}}" style="background-color:#4f46e5;color:#ffffff;padding:12px 28px;border-radius:6px;text-decoration:none;font-weight:bold;">Join Webinar</a>
          </p>
          <p>If the button does not work, copy this link into your browser:<br>{{.MeetingLink}}</p>
{{template "layout_bottom" .}}
{{end}}
`))

func renderTemplate(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return body.String(), nil
}
