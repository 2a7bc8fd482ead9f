package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/walkguardian/guardian-server-go/internal/model"
)

// sendNtfy posts the raw message text to an ntfy topic. Danger alerts are
// marked urgent so subscribed phones ring through silent mode.
func (d *Dispatcher) sendNtfy(ctx context.Context, topic string, ntype model.NotificationType, content string) error {
	url := d.ntfyBase + "/" + topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Title", "WalkGuardian "+string(ntype))
	if strings.HasPrefix(string(ntype), "DANGER") {
		req.Header.Set("Priority", "urgent")
		req.Header.Set("Tags", "rotating_light")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy failed with status %d", resp.StatusCode)
	}

	return nil
}
