package email

import (
	"time"

	"sealshare/internal/config"
	"sealshare/internal/models"
)

// Notifier sends email notifications for share lifecycle events.
type Notifier struct {
	service   *Service
	templates *Templates
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
	}
}

// NotifyShareCreated sends a creation receipt to the owner's contact email,
// if the urn has one. Fire and forget.
func (n *Notifier) NotifyShareCreated(urn *models.Urn, title, shareLink string, expiresAt time.Time) {
	if !n.service.IsEnabled() || urn.Email == nil || *urn.Email == "" {
		return
	}

	if title == "" {
		title = "Untitled share"
	}

	subject, htmlBody, textBody := n.templates.ShareCreated(title, shareLink, expiresAt)
	n.service.SendAsync([]string{*urn.Email}, subject, htmlBody, textBody)
}
