// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/drantham/gladius/internal/leaderboard"
	"github.com/drantham/gladius/internal/models"
	"github.com/drantham/gladius/internal/pagination"
	"github.com/drantham/gladius/internal/upstream"
)

func TestRespondDomainErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"pagination input", &pagination.InputError{Field: "limit", Reason: "out of range"}, http.StatusBadRequest, CodeInvalidInput},
		{"filter input", &leaderboard.FilterError{Field: "spec", Reason: "ambiguous"}, http.StatusBadRequest, CodeInvalidInput},
		{"not found", upstream.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"season unavailable", &leaderboard.SeasonError{Game: "retail", Region: "us", Reason: "index empty"}, http.StatusBadGateway, CodeSeasonUnavailable},
		{"upstream status", &upstream.StatusError{Status: 500, URL: "/x"}, http.StatusBadGateway, CodeUpstreamFailed},
		{"token failure", &upstream.TokenError{Region: "us", Status: 403}, http.StatusBadGateway, CodeUpstreamFailed},
		{"breaker open", gobreaker.ErrOpenState, http.StatusServiceUnavailable, CodeUpstreamFailed},
		{"breaker half-open shed", gobreaker.ErrTooManyRequests, http.StatusServiceUnavailable, CodeUpstreamFailed},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, CodeUpstreamFailed},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboards/retail/pvp/3v3", nil)

			respondDomainError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var envelope models.APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", envelope.Error, tt.wantCode)
			}
		})
	}
}

func TestRespondDomainErrorWrappedBreaker(t *testing.T) {
	// Breaker errors often arrive wrapped by the retry driver.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboards/retail/pvp/3v3", nil)

	respondDomainError(rec, req, errors.Join(errors.New("attempt 1"), gobreaker.ErrOpenState))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
