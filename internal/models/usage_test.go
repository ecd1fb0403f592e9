package models

import (
	"testing"
	"time"
)

func TestNewTokenUsageSummary(t *testing.T) {
	s := NewTokenUsageSummary([]AggregatedModelUsage{
		{Model: "gpt-4", PromptTokens: 100, CompletionTokens: 50},
		{Model: "gpt-4o-mini", PromptTokens: 30, CompletionTokens: 20, TotalTokens: 999}, // stale total gets normalized
	})

	if len(s.Models) != 2 {
		t.Fatalf("len(Models) = %d, want 2", len(s.Models))
	}
	if s.Models[0].TotalTokens != 150 {
		t.Errorf("member 0 total = %d, want 150", s.Models[0].TotalTokens)
	}
	if s.Models[1].TotalTokens != 50 {
		t.Errorf("member 1 total = %d, want 50 (normalized)", s.Models[1].TotalTokens)
	}

	var sum int64
	for _, m := range s.Models {
		sum += m.TotalTokens
	}
	if s.TotalTokens != sum {
		t.Errorf("TotalTokens = %d, want sum of members %d", s.TotalTokens, sum)
	}
}

func TestNewTokenUsageSummary_Empty(t *testing.T) {
	s := NewTokenUsageSummary(nil)
	if s.TotalTokens != 0 || len(s.Models) != 0 {
		t.Errorf("empty summary = %+v, want zero", s)
	}
}

func TestSessionHistoryRecord_Ongoing(t *testing.T) {
	rec := SessionHistoryRecord{StartTime: time.Now()}
	if !rec.Ongoing() {
		t.Error("record without EndTime should be ongoing")
	}

	end := time.Now()
	rec.EndTime = &end
	if rec.Ongoing() {
		t.Error("record with EndTime should not be ongoing")
	}
}

func TestPeriod(t *testing.T) {
	if Period7Days.Days() != 7 {
		t.Errorf("Period7Days.Days() = %d", Period7Days.Days())
	}
	if Period30Days.Days() != 30 {
		t.Errorf("Period30Days.Days() = %d", Period30Days.Days())
	}

	if Period7Days.Next() != Period30Days || Period30Days.Next() != Period7Days {
		t.Error("Next() should toggle between the two periods")
	}

	if PeriodFromDays(30) != Period30Days {
		t.Error("PeriodFromDays(30) != Period30Days")
	}
	for _, days := range []int{7, 0, -1, 14, 365} {
		if days != 30 && PeriodFromDays(days) != Period7Days {
			t.Errorf("PeriodFromDays(%d) should default to 7 days", days)
		}
	}
}
