package email

import (
	"fmt"
	"html"
	"time"

	"sealshare/internal/config"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0d9488; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// ShareCreated generates the receipt email sent to a share owner's contact
// address. The recipient still needs the password to open the share; it is
// never included here.
func (t *Templates) ShareCreated(title, shareLink string, expiresAt time.Time) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Share created: %s", t.cfg.SiteTitle, title)
	expiry := expiresAt.UTC().Format(time.RFC1123)

	content := fmt.Sprintf(`
        <p>A new password-protected share was created under your identity.</p>

        <div class="info-box">
            <p><span class="label">Title:</span> %s</p>
            <p><span class="label">Link:</span> <a href="%s">%s</a></p>
            <p><span class="label">Expires:</span> %s</p>
        </div>

        <p>Anyone opening the link will need the password you chose. If you did
        not create this share, delete it from your share history.</p>
    `,
		html.EscapeString(title),
		html.EscapeString(shareLink),
		html.EscapeString(shareLink),
		expiry,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Share created

Title: %s
Link: %s
Expires: %s

Anyone opening the link will need the password you chose. If you did not
create this share, delete it from your share history.

--
%s
%s`,
		title,
		shareLink,
		expiry,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}
