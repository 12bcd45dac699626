package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/pricing"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperror.Validation("bad", nil), http.StatusBadRequest},
		{apperror.NotFound("missing", nil), http.StatusNotFound},
		{apperror.OutOfRange("far", nil), http.StatusUnprocessableEntity},
		{apperror.Upstream("down", nil), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWriteServiceError_ValidationFields(t *testing.T) {
	rr := httptest.NewRecorder()
	err := pricing.Validate(pricing.Input{VenueSlug: "v"}).Err()

	writeServiceError(rr, newTestLogger(), err, "internal")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Fields["cart_value"] != pricing.MsgMissingCartValue {
		t.Fatalf("unexpected cart_value message: %v", resp.Fields)
	}
	if resp.Fields["user_lat"] != pricing.MsgMissingLocation || resp.Fields["user_lon"] != pricing.MsgMissingLocation {
		t.Fatalf("unexpected location messages: %v", resp.Fields)
	}
	if _, ok := resp.Fields["venue_slug"]; ok {
		t.Fatalf("venue_slug is valid and must not be reported")
	}
}

func TestWriteServiceError_InternalHidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, newTestLogger(), errors.New("pq: secret detail"), "Failed to calculate delivery price")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var resp ErrorResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Message != "Failed to calculate delivery price" {
		t.Fatalf("internal details leaked: %q", resp.Message)
	}
}

func TestWriteServiceError_Upstream(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, nil, apperror.Upstream("venue api is unavailable", errors.New("dial tcp")), "internal")

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}
