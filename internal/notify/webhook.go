package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Announcement is the payload pushed to the game server after a container
// unlock or gift.
type Announcement struct {
	PlayerName string `json:"playerName"`
	ItemName   string `json:"itemName"`
	Rarity     string `json:"rarity"`
	StatTrak   bool   `json:"statTrak"`
}

// Notifier announces unlocks to an external sink. Fire-and-forget: failures
// are swallowed after logging.
type Notifier interface {
	AnnounceUnlock(ctx context.Context, a Announcement)
}

// WebhookNotifier posts announcements to a game-server webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL. An empty
// URL yields a no-op notifier.
func NewWebhookNotifier(url string, timeout time.Duration) Notifier {
	if url == "" {
		return &noopNotifier{}
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// AnnounceUnlock posts the announcement. Any failure is logged and dropped.
func (n *WebhookNotifier) AnnounceUnlock(ctx context.Context, a Announcement) {
	body, err := json.Marshal(a)
	if err != nil {
		log.Printf("[Notifier] failed to encode announcement: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[Notifier] failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("[Notifier] webhook call failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[Notifier] webhook returned status %d", resp.StatusCode)
	}
}

type noopNotifier struct{}

func (*noopNotifier) AnnounceUnlock(ctx context.Context, a Announcement) {}
