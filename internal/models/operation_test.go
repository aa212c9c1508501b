package models

import (
	"strings"
	"testing"
)

// TestNewPlanCounts verifies per-kind summary counts
func TestNewPlanCounts(t *testing.T) {
	plan := NewPlan([]Operation{
		{Kind: OpMove, Source: "/a", Dest: "/b/a"},
		{Kind: OpTag, Source: "/b/a", Tag: &TagSpec{Color: "blue", Label: "x"}},
		{Kind: OpRename, Source: "/c (1).txt", Dest: "/c.txt"},
		{Kind: OpMarkDuplicate, Source: "/d", Tag: &TagSpec{Label: "duplicate"}},
		{Kind: OpMove, Source: "/e", Dest: "/b/e"},
	})

	if plan.Counts.Total != 5 {
		t.Errorf("Total = %d, want 5", plan.Counts.Total)
	}
	if plan.Counts.Moves != 2 || plan.Counts.Renames != 1 || plan.Counts.Tags != 1 || plan.Counts.Duplicates != 1 {
		t.Errorf("Counts = %+v", plan.Counts)
	}
	if plan.Empty() {
		t.Error("plan with operations reported Empty")
	}
}

// TestOperationPreview verifies the human-readable preview strings
func TestOperationPreview(t *testing.T) {
	move := Operation{Kind: OpMove, Source: "/in/a.pdf", Dest: "/out/a.pdf"}
	if got := move.Preview(); got != "move /in/a.pdf -> /out/a.pdf" {
		t.Errorf("move Preview = %q", got)
	}

	tag := Operation{Kind: OpTag, Source: "/out/a.pdf", Tag: &TagSpec{Color: "blue", Label: "WeChat"}}
	if got := tag.Preview(); !strings.Contains(got, "blue:WeChat") {
		t.Errorf("tag Preview = %q, want color:label", got)
	}

	dup := Operation{Kind: OpMarkDuplicate, Source: "/a", Dest: "/review/a"}
	if got := dup.Preview(); !strings.Contains(got, "-> /review/a") {
		t.Errorf("duplicate Preview = %q", got)
	}
}

// TestReportCounts verifies outcome counting and failure detection
func TestReportCounts(t *testing.T) {
	report := &Report{
		Results: []OperationResult{
			{Outcome: OutcomeApplied},
			{Outcome: OutcomeApplied},
			{Outcome: OutcomeSkipped, Reason: "cancelled"},
			{Outcome: OutcomeFailed, Reason: "conflict"},
		},
	}

	if got := report.CountByOutcome(OutcomeApplied); got != 2 {
		t.Errorf("applied = %d, want 2", got)
	}
	if !report.Failed() {
		t.Error("report with a failed result should report Failed")
	}

	clean := &Report{Results: []OperationResult{{Outcome: OutcomeApplied}}}
	if clean.Failed() {
		t.Error("report without failures should not report Failed")
	}
}
