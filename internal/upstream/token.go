// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/drantham/gladius/internal/logging"
	"github.com/drantham/gladius/internal/metrics"
)

// tokenSafetyMargin is subtracted from the upstream-declared token lifetime
// so a token is never used within a minute of its real expiry.
const tokenSafetyMargin = 60 * time.Second

// Token is a cached bearer token for one region.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token is still usable at now.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// TokenProvider exchanges client credentials for bearer tokens and caches
// them per region. Concurrent callers needing a refresh for the same region
// share one in-flight exchange.
type TokenProvider struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	// tokenURL overrides the per-region Battle.net endpoint. Tests only.
	tokenURL string

	mu     sync.RWMutex
	tokens map[string]Token
	group  singleflight.Group
}

// NewTokenProvider builds a provider using the given credentials.
func NewTokenProvider(clientID, clientSecret string, httpClient *http.Client) *TokenProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		tokens:       make(map[string]Token),
	}
}

func (p *TokenProvider) endpoint(region string) string {
	if p.tokenURL != "" {
		return p.tokenURL
	}
	return fmt.Sprintf("https://%s.battle.net/oauth/token", region)
}

// AccessToken returns a valid bearer token for region, refreshing it when
// the cached one is missing or inside the safety margin. All concurrent
// callers for one region ride a single upstream exchange.
func (p *TokenProvider) AccessToken(ctx context.Context, region string) (string, error) {
	p.mu.RLock()
	token, ok := p.tokens[region]
	p.mu.RUnlock()
	if ok && token.Valid(time.Now()) {
		return token.AccessToken, nil
	}

	v, err, shared := p.group.Do(region, func() (interface{}, error) {
		// Re-check under the flight: a racing caller may have refreshed
		// between our cache read and joining the group.
		p.mu.RLock()
		token, ok := p.tokens[region]
		p.mu.RUnlock()
		if ok && token.Valid(time.Now()) {
			return token, nil
		}

		token, err := p.exchange(ctx, region)
		if err != nil {
			metrics.RecordTokenRefresh(region, false)
			return nil, err
		}
		metrics.RecordTokenRefresh(region, true)

		p.mu.Lock()
		p.tokens[region] = token
		p.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		logging.Trace().Str("region", region).Msg("token refresh coalesced")
	}
	return v.(Token).AccessToken, nil
}

// Invalidate drops the cached token for region, forcing a refresh on the
// next call. Used when the upstream rejects a token early.
func (p *TokenProvider) Invalidate(region string) {
	p.mu.Lock()
	delete(p.tokens, region)
	p.mu.Unlock()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// exchange performs one client-credentials grant against the region's OAuth
// endpoint.
func (p *TokenProvider) exchange(ctx context.Context, region string) (Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(region),
		strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token exchange for %s: %w", region, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Token{}, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Token{}, &TokenError{Region: region, Status: resp.StatusCode, Body: truncateBody(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return Token{}, fmt.Errorf("token response for %s carried no access_token", region)
	}

	lifetime := time.Duration(tr.ExpiresIn) * time.Second
	if lifetime > tokenSafetyMargin {
		lifetime -= tokenSafetyMargin
	}

	logging.Debug().
		Str("region", region).
		Dur("lifetime", lifetime).
		Dur("duration", time.Since(start)).
		Msg("acquired upstream access token")

	return Token{
		AccessToken: tr.AccessToken,
		ExpiresAt:   time.Now().Add(lifetime),
	}, nil
}
