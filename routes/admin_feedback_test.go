package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"guest-feedback-server/models"
)

func TestAdminFeedbackRequiresToken(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/feedback/admin"},
		{http.MethodPatch, "/api/v1/feedback/admin/1/approve"},
		{http.MethodGet, "/api/v1/feedback/admin/settings/moderation"},
		{http.MethodPatch, "/api/v1/feedback/admin/settings/moderation"},
		{http.MethodDelete, "/api/v1/feedback/delete/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rec := perform(t, router, tt.method, tt.path, "", ""); rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if rec := performAuthed(t, router, tt.method, tt.path, "not-a-real-token", ""); rec.Code != http.StatusUnauthorized {
				t.Errorf("garbage token: status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestGetAdminFeedbackIncludesPending(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	seedFeedback(t,
		models.Feedback{Type: models.FeedbackTypeReview, Rating: 9, Text: "approved", Name: "a", Contact: "b", IsApproved: true},
		models.Feedback{Type: models.FeedbackTypeSuggestion, Rating: 3, Text: "pending", Name: "c", Contact: "d"},
	)

	rec := performAuthed(t, router, http.MethodGet, "/api/v1/feedback/admin", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var items []models.Feedback
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want both approved and pending", len(items))
	}
}

func TestApproveFeedback(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	item := models.Feedback{Type: models.FeedbackTypeReview, Rating: 4, Text: "pending", Name: "a", Contact: "b"}
	seedFeedback(t, item)

	rec := performAuthed(t, router, http.MethodPatch, "/api/v1/feedback/admin/1/approve", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var updated models.Feedback
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !updated.IsApproved {
		t.Error("item not approved in the response")
	}

	// now visible on the public list
	public := perform(t, router, http.MethodGet, "/api/v1/feedback", "", "")
	var items []models.Feedback
	if err := json.Unmarshal(public.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode public list: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("approved item missing from the public list: %v", items)
	}
}

func TestApproveFeedbackUnknownID(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	if rec := performAuthed(t, router, http.MethodPatch, "/api/v1/feedback/admin/999/approve", token, ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := performAuthed(t, router, http.MethodPatch, "/api/v1/feedback/admin/abc/approve", token, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status = %d, want 400", rec.Code)
	}
}

func TestDeleteFeedback(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	seedFeedback(t, models.Feedback{Type: models.FeedbackTypeReview, Rating: 4, Text: "gone", Name: "a", Contact: "b"})

	rec := performAuthed(t, router, http.MethodDelete, "/api/v1/feedback/delete/1", token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// the item is gone, a second delete is a 404
	if rec := performAuthed(t, router, http.MethodDelete, "/api/v1/feedback/delete/1", token, ""); rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: status = %d, want 404", rec.Code)
	}
}

func TestModerationSettingsDefaults(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	rec := performAuthed(t, router, http.MethodGet, "/api/v1/feedback/admin/settings/moderation", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var settings models.ModerationSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings.AutoApproveEnabled || settings.ManualReviewRatingThreshold != 6 {
		t.Errorf("defaults = %+v, want auto-approval off with threshold 6", settings)
	}
}

func TestUpdateModerationSettings(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	rec := performAuthed(t, router, http.MethodPatch, "/api/v1/feedback/admin/settings/moderation", token,
		`{"auto_approve_enabled":true,"manual_review_rating_threshold":8}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var settings models.ModerationSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !settings.AutoApproveEnabled || settings.ManualReviewRatingThreshold != 8 {
		t.Errorf("settings = %+v, want enabled with threshold 8", settings)
	}

	// the update survives a reread
	rec = performAuthed(t, router, http.MethodGet, "/api/v1/feedback/admin/settings/moderation", token, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode reread: %v", err)
	}
	if !settings.AutoApproveEnabled || settings.ManualReviewRatingThreshold != 8 {
		t.Errorf("reread settings = %+v, want the updated values", settings)
	}
}

func TestUpdateModerationSettingsValidation(t *testing.T) {
	router := setupTestRouter(t)
	_, token := createAdmin(t, "admin@example.com", "password123")

	tests := []struct {
		name string
		body string
	}{
		{"threshold too high", `{"auto_approve_enabled":true,"manual_review_rating_threshold":11}`},
		{"threshold too low", `{"auto_approve_enabled":true,"manual_review_rating_threshold":0}`},
		{"missing flag", `{"manual_review_rating_threshold":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performAuthed(t, router, http.MethodPatch, "/api/v1/feedback/admin/settings/moderation", token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}
