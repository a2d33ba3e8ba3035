package notify

import (
	"context"

	"github.com/go-pkgz/lgr"
)

// LogChannel logs notifications instead of sending them, used for dry runs
type LogChannel struct{}

// SendMessage logs the message
func (LogChannel) SendMessage(_ context.Context, chatID int64, text string) error {
	lgr.Printf("[INFO] dry-run message to %d: %q", chatID, text)
	return nil
}

// SendPhoto logs the photo url
func (LogChannel) SendPhoto(_ context.Context, chatID int64, photoURL, caption string) error {
	lgr.Printf("[INFO] dry-run photo to %d: %s (%s)", chatID, photoURL, caption)
	return nil
}
