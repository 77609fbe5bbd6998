package email

import (
	"fmt"
	"html"
	"time"
)

func ttlText(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	m := int(ttl.Minutes())
	if m <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

func renderOTPText(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour verification code is: %s\n\nThis code expires in %s. If you did not sign up, ignore this email.\n",
		name, code, ttlText(ttl),
	)
}

func renderOTPHTML(name, code string, ttl time.Duration) string {
	escName := html.EscapeString(name)
	escCode := html.EscapeString(code)

	// very simple inline HTML (works in Gmail)
	return `<!doctype html>
<html>
  <body style="margin:0; padding:0; font-family:Arial,Helvetica,sans-serif; background:#f5f5f5;">
    <div style="max-width:600px; margin:0 auto; background:#fff; padding:40px 20px;">
      <h2 style="color:#4f46e5;">Email Verification</h2>
      <p>Welcome, ` + escName + `!</p>
      <p>To complete your registration, enter the verification code below:</p>

      <div style="background:#f8f9fa; border:2px dashed #e9ecef; border-radius:8px; padding:20px; margin:30px 0; text-align:center;">
        <div style="font-size:32px; font-weight:bold; color:#4f46e5; letter-spacing:4px; font-family:'Courier New',monospace;">` + escCode + `</div>
      </div>

      <p style="color:#888; font-size:14px;">
        This code will expire in <strong>` + ttlText(ttl) + `</strong>. If you didn't request this verification, please ignore this email.
      </p>
    </div>
  </body>
</html>`
}
