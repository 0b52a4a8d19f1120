package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ModerationSettings mirrors the server's moderation configuration.
type ModerationSettings struct {
	AutoApproveEnabled          bool `json:"auto_approve_enabled"`
	ManualReviewRatingThreshold int  `json:"manual_review_rating_threshold"`
}

const settingsPath = "/api/v1/feedback/admin/settings/moderation"

// FetchModerationSettings reads the current settings. They are not cached;
// every settings view refetches.
func (c *Client) FetchModerationSettings(ctx context.Context) (ModerationSettings, error) {
	var settings ModerationSettings
	if err := c.getJSON(ctx, settingsPath, &settings); err != nil {
		return ModerationSettings{}, err
	}
	return settings, nil
}

// UpdateModerationSettings replaces both fields wholesale. The threshold is
// clamped into [1,10] before submission; no other client-side invariants are
// enforced.
func (c *Client) UpdateModerationSettings(ctx context.Context, settings ModerationSettings) (ModerationSettings, error) {
	if settings.ManualReviewRatingThreshold < 1 {
		settings.ManualReviewRatingThreshold = 1
	}
	if settings.ManualReviewRatingThreshold > 10 {
		settings.ManualReviewRatingThreshold = 10
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		return ModerationSettings{}, err
	}

	resp, err := c.Do(ctx, http.MethodPatch, settingsPath, bytes.NewReader(payload))
	if err != nil {
		return ModerationSettings{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ModerationSettings{}, fmt.Errorf("settings update rejected with status %d", resp.StatusCode)
	}

	var updated ModerationSettings
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return ModerationSettings{}, err
	}
	return updated, nil
}
