// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCommand(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func testAPIServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/cache/entries/missing"):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"error","error":{"code":"not_found","message":"cache entry not found"}}`))
		default:
			w.Write([]byte(`{"status":"success","data":{"status":"ok"},"metadata":{"timestamp":"2026-01-01T00:00:00Z"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestServerFlagDefaultMatchesListenPort(t *testing.T) {
	flag := NewRootCmd().PersistentFlags().Lookup("server")
	if flag == nil {
		t.Fatal("server flag not registered")
	}
	if flag.DefValue != "http://localhost:8470" {
		t.Errorf("default server = %q, want the default listen port 8470", flag.DefValue)
	}
}

func TestHealthCommand(t *testing.T) {
	srv, paths := testAPIServer(t)

	out, err := runCommand(t, srv.URL, "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, `"status": "ok"`) {
		t.Errorf("output = %q", out)
	}
	if (*paths)[0] != "/api/v1/health" {
		t.Errorf("path = %q", (*paths)[0])
	}
}

func TestCacheLsBuildsQuery(t *testing.T) {
	srv, paths := testAPIServer(t)

	if _, err := runCommand(t, srv.URL, "cache", "ls", "--prefix", "pvp:", "--include-value", "-n", "10"); err != nil {
		t.Fatalf("cache ls: %v", err)
	}
	got := (*paths)[0]
	for _, want := range []string{"/api/v1/cache/entries?", "prefix=pvp%3A", "include_value=true", "limit=10"} {
		if !strings.Contains(got, want) {
			t.Errorf("request %q missing %q", got, want)
		}
	}
}

func TestCacheGetEscapesKey(t *testing.T) {
	srv, paths := testAPIServer(t)

	if _, err := runCommand(t, srv.URL, "cache", "get", "pvp:retail:us:37:3v3"); err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if got := (*paths)[0]; got != "/api/v1/cache/entries/pvp:retail:us:37:3v3" {
		t.Errorf("path = %q", got)
	}
}

func TestErrorEnvelopeBecomesCLIError(t *testing.T) {
	srv, _ := testAPIServer(t)

	_, err := runCommand(t, srv.URL, "cache", "get", "missing")
	if err == nil || !strings.Contains(err.Error(), "not_found") {
		t.Errorf("err = %v, want not_found", err)
	}
}

func TestLeaderboardPvPCommand(t *testing.T) {
	srv, paths := testAPIServer(t)

	_, err := runCommand(t, srv.URL, "leaderboard", "pvp", "retail", "3v3",
		"--class", "rogue", "--season", "37", "--limit", "5")
	if err != nil {
		t.Fatalf("leaderboard pvp: %v", err)
	}
	got := (*paths)[0]
	for _, want := range []string{"/api/v1/leaderboards/retail/pvp/3v3?", "class=rogue", "season=37", "limit=5"} {
		if !strings.Contains(got, want) {
			t.Errorf("request %q missing %q", got, want)
		}
	}
}

func TestMythicPlusRequiresFlags(t *testing.T) {
	srv, _ := testAPIServer(t)

	if _, err := runCommand(t, srv.URL, "leaderboard", "mythic-plus", "retail"); err == nil {
		t.Error("expected error for missing --connected-realm and --dungeon")
	}

	if _, err := runCommand(t, srv.URL, "leaderboard", "mythic-plus", "retail",
		"--connected-realm", "11", "--dungeon", "402"); err != nil {
		t.Errorf("mythic-plus with flags: %v", err)
	}
}
