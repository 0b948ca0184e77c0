// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

package pagination

import (
	"errors"
	"testing"
)

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestCursorRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 25, 9999} {
		got, err := ParseCursor(FormatCursor(offset))
		if err != nil {
			t.Fatalf("ParseCursor(FormatCursor(%d)): %v", offset, err)
		}
		if got != offset {
			t.Errorf("round trip %d -> %d", offset, got)
		}
	}
}

func TestParseCursorRejectsMalformed(t *testing.T) {
	for _, cursor := range []string{
		"", "offset:", "offset:-1", "offset:1.5", "offset:abc",
		"page:3", "OFFSET:3", "offset:3 ", " offset:3", "offset:+3",
	} {
		_, err := ParseCursor(cursor)
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Errorf("ParseCursor(%q) err = %v, want *InputError", cursor, err)
		}
	}
}

func TestApplyWalksWholeSequence(t *testing.T) {
	items := sequence(23)
	cfg := Config{DefaultLimit: 10, MaxLimit: 50}

	var collected []int
	cursor := ""
	pages := 0
	for {
		page, err := Apply(items, Request{Cursor: cursor}, cfg)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		collected = append(collected, page.Results...)
		pages++

		if page.Total != 23 {
			t.Errorf("Total = %d, want 23", page.Total)
		}
		if cursor == "" && page.State.PreviousCursor != "" {
			t.Errorf("first page has PreviousCursor %q", page.State.PreviousCursor)
		}
		if page.State.NextCursor == "" {
			break
		}
		cursor = page.State.NextCursor
	}

	if pages != 3 {
		t.Errorf("walk took %d pages, want 3", pages)
	}
	if len(collected) != 23 {
		t.Fatalf("collected %d items, want 23", len(collected))
	}
	for i, v := range collected {
		if v != i {
			t.Fatalf("collected[%d] = %d, order broken", i, v)
		}
	}
}

func TestApplyLastPagePartial(t *testing.T) {
	page, err := Apply(sequence(23), Request{Cursor: "offset:20", Limit: "10"}, Config{DefaultLimit: 10, MaxLimit: 50})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(page.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(page.Results))
	}
	if page.State.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty on last page", page.State.NextCursor)
	}
	if page.State.PreviousCursor != "offset:10" {
		t.Errorf("PreviousCursor = %q, want offset:10", page.State.PreviousCursor)
	}
}

func TestApplyOffsetBeyondTotalClamps(t *testing.T) {
	page, err := Apply(sequence(5), Request{Cursor: "offset:500"}, Config{DefaultLimit: 10, MaxLimit: 50})
	if err != nil {
		t.Fatalf("offset beyond total must not be an error, got %v", err)
	}
	if len(page.Results) != 0 {
		t.Errorf("len(Results) = %d, want 0", len(page.Results))
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if page.State.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty", page.State.NextCursor)
	}
	if page.State.PreviousCursor == "" {
		t.Error("clamped page should still link backwards")
	}
}

func TestApplyEmptySequence(t *testing.T) {
	page, err := Apply([]int{}, Request{}, Config{DefaultLimit: 10, MaxLimit: 50})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if page.Total != 0 || len(page.Results) != 0 {
		t.Errorf("page = %+v, want empty", page)
	}
	if page.State.NextCursor != "" || page.State.PreviousCursor != "" {
		t.Errorf("empty sequence produced cursors: %+v", page.State)
	}
}

func TestApplyLimitValidation(t *testing.T) {
	items := sequence(10)
	cfg := Config{DefaultLimit: 10, MaxLimit: 50}

	for _, limit := range []string{"0", "-1", "51", "abc", "2.5", "1e3"} {
		_, err := Apply(items, Request{Limit: limit}, cfg)
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Errorf("limit %q: err = %v, want *InputError", limit, err)
		}
	}

	page, err := Apply(items, Request{Limit: "50"}, cfg)
	if err != nil {
		t.Fatalf("limit at max: %v", err)
	}
	if page.State.Limit != 50 {
		t.Errorf("Limit = %d, want 50", page.State.Limit)
	}

	page, err = Apply(items, Request{}, cfg)
	if err != nil {
		t.Fatalf("default limit: %v", err)
	}
	if page.State.Limit != 10 {
		t.Errorf("default Limit = %d, want 10", page.State.Limit)
	}
}

func TestApplyCopiesWindow(t *testing.T) {
	items := []string{"a", "b", "c"}
	page, err := Apply(items, Request{}, Config{DefaultLimit: 10, MaxLimit: 50})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	page.Results[0] = "mutated"
	if items[0] != "a" {
		t.Error("Apply aliased the source slice")
	}
}
