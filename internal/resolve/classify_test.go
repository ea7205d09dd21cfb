package resolve

import "testing"

func TestClassifyListRequests(t *testing.T) {
	queries := []string{
		"list of bills in kenya",
		"LIST OF BILLS please",
		"what are the bills before the senate",
		"which bills were introduced this session",
		"show me all bills",
		"bills in parliament right now",
	}
	for _, q := range queries {
		if got := Classify(q); got != ModeList {
			t.Fatalf("Classify(%q) = %s, want list", q, got)
		}
	}
}

func TestClassifyDetailRequests(t *testing.T) {
	queries := []string{
		"tell me about the agriculture bill",
		"what does the finance bill 2024 change",
		"summary of the water bill",
		"",
	}
	for _, q := range queries {
		if got := Classify(q); got != ModeDetail {
			t.Fatalf("Classify(%q) = %s, want detail", q, got)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	q := "Which Bills are in Parliament?"
	first := Classify(q)
	for i := 0; i < 10; i++ {
		if got := Classify(q); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeList.String() != "list" || ModeDetail.String() != "detail" || ModeGeneral.String() != "general" {
		t.Fatalf("unexpected mode names: %s %s %s", ModeList, ModeDetail, ModeGeneral)
	}
}
