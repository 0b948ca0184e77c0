// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package cli implements gladctl, the operator command line for a running
// Gladius server. It talks to the HTTP API and prints envelope data as
// indented JSON.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/drantham/gladius/internal/models"
)

// Execute runs the gladctl root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// options holds the connection flags shared by every subcommand.
type options struct {
	server  string
	timeout time.Duration
}

// NewRootCmd builds the gladctl command tree.
func NewRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "gladctl",
		Short:         "Inspect and query a running Gladius server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "http://localhost:8470", "Base URL of the Gladius server")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")

	cmd.AddCommand(newHealthCmd(&opts))
	cmd.AddCommand(newCacheCmd(&opts))
	cmd.AddCommand(newLeaderboardCmd(&opts))

	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.get(cmd, "/api/v1/health", nil)
		},
	}
}

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the cache store",
	}

	var prefix string
	var includeValue bool
	var limit int
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if prefix != "" {
				query.Set("prefix", prefix)
			}
			if includeValue {
				query.Set("include_value", "true")
			}
			if limit > 0 {
				query.Set("limit", fmt.Sprintf("%d", limit))
			}
			return opts.get(cmd, "/api/v1/cache/entries", query)
		},
	}
	ls.Flags().StringVarP(&prefix, "prefix", "p", "", "Key prefix filter (e.g. pvp:)")
	ls.Flags().BoolVar(&includeValue, "include-value", false, "Include cached payloads in the listing")
	ls.Flags().IntVarP(&limit, "limit", "n", 0, "Page size")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a single cache entry with its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.get(cmd, "/api/v1/cache/entries/"+url.PathEscape(args[0]), nil)
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.get(cmd, "/api/v1/cache/stats", nil)
		},
	}

	cmd.AddCommand(ls, get, stats)
	return cmd
}

func newLeaderboardCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"lb"},
		Short:   "Query normalized leaderboards",
	}

	var query leaderboardFlags
	pvp := &cobra.Command{
		Use:   "pvp <game> <bracket>",
		Short: "Fetch a PvP leaderboard (e.g. pvp retail 3v3)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/leaderboards/%s/pvp/%s", url.PathEscape(args[0]), url.PathEscape(args[1]))
			return opts.get(cmd, path, query.values())
		},
	}
	query.register(pvp)

	var period, realm, dungeon int
	mplus := &cobra.Command{
		Use:   "mythic-plus <game>",
		Short: "Fetch a Mythic+ leaderboard for a connected realm and dungeon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := query.values()
			values.Set("connected_realm", fmt.Sprintf("%d", realm))
			values.Set("dungeon", fmt.Sprintf("%d", dungeon))
			if period > 0 {
				values.Set("period", fmt.Sprintf("%d", period))
			}
			path := fmt.Sprintf("/api/v1/leaderboards/%s/mythic-plus", url.PathEscape(args[0]))
			return opts.get(cmd, path, values)
		},
	}
	query.register(mplus)
	mplus.Flags().IntVar(&realm, "connected-realm", 0, "Connected realm ID (required)")
	mplus.Flags().IntVar(&dungeon, "dungeon", 0, "Dungeon ID (required)")
	mplus.Flags().IntVar(&period, "period", 0, "Mythic+ period ID (default: current)")
	_ = mplus.MarkFlagRequired("connected-realm")
	_ = mplus.MarkFlagRequired("dungeon")

	cmd.AddCommand(pvp, mplus)
	return cmd
}

// leaderboardFlags are the filter and paging flags shared by the
// leaderboard subcommands.
type leaderboardFlags struct {
	region, locale    string
	season            int
	class, spec, role string
	faction, realm    string
	cursor, limit     string
}

func (f *leaderboardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "Upstream region (us, eu, kr, tw)")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Response locale (e.g. en_US)")
	cmd.Flags().IntVar(&f.season, "season", 0, "Season ID (default: current)")
	cmd.Flags().StringVar(&f.class, "class", "", "Filter by class slug")
	cmd.Flags().StringVar(&f.spec, "spec", "", "Filter by spec slug")
	cmd.Flags().StringVar(&f.role, "role", "", "Filter by role (tank, healer, dps)")
	cmd.Flags().StringVar(&f.faction, "faction", "", "Filter by faction (horde, alliance)")
	cmd.Flags().StringVar(&f.realm, "realm", "", "Filter by realm slug")
	cmd.Flags().StringVar(&f.cursor, "cursor", "", "Pagination cursor from a previous page")
	cmd.Flags().StringVar(&f.limit, "limit", "", "Page size")
}

func (f *leaderboardFlags) values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("region", f.region)
	set("locale", f.locale)
	set("class", f.class)
	set("spec", f.spec)
	set("role", f.role)
	set("faction", f.faction)
	set("realm", f.realm)
	set("cursor", f.cursor)
	set("limit", f.limit)
	if f.season > 0 {
		values.Set("season", fmt.Sprintf("%d", f.season))
	}
	return values
}

// get performs the request and prints the envelope's data field as indented
// JSON on the command's stdout. API errors become CLI errors carrying the
// envelope's code and message.
func (o *options) get(cmd *cobra.Command, path string, query url.Values) error {
	base := strings.TrimRight(o.server, "/")
	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response from %s (status %d): %w", target, resp.StatusCode, err)
	}

	if envelope.Error != nil {
		return fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
	}

	out, err := json.MarshalIndent(envelope.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
