// ABOUTME: Typed helpers for the non-collection endpoints the shell polls or edits
// ABOUTME: Notifications, account settings and the business inbox
package api

import (
	"context"
	"sort"

	"github.com/harperreed/crmtui/models"
)

// Notifications lists unread notifications.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.Get(ctx, "/api/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.Put(ctx, "/api/notifications/"+id+"/read", struct{}{}, nil)
}

// Settings fetches account settings, filling gaps with defaults.
func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	out := models.DefaultSettings()
	if err := c.Get(ctx, "/api/settings", &out); err != nil {
		return models.DefaultSettings(), err
	}
	if out.Theme.SidebarLayout == "" {
		out.Theme.SidebarLayout = models.LayoutDefault
	}
	return out, nil
}

// UpdateNotificationSettings replaces the notification toggles.
func (c *Client) UpdateNotificationSettings(ctx context.Context, s models.NotificationSettings) error {
	return c.Put(ctx, "/api/settings", map[string]any{"notifications": s}, nil)
}

// UpdateTheme replaces the theme block, which carries the sidebar layout.
func (c *Client) UpdateTheme(ctx context.Context, t models.ThemeSettings) error {
	return c.Put(ctx, "/api/settings", map[string]any{"theme": t}, nil)
}

// Inbox fetches the business inbox, newest first.
func (c *Client) Inbox(ctx context.Context) (models.Inbox, error) {
	var out models.Inbox
	if err := c.Get(ctx, "/api/business-email/inbox", &out); err != nil {
		return models.Inbox{}, err
	}
	sort.SliceStable(out.Emails, func(i, j int) bool {
		return out.Emails[i].Date.After(out.Emails[j].Date.Time)
	})
	return out, nil
}
