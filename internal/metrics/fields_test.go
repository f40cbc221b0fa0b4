package metrics

import "testing"

func TestMetricFieldKeysAreStable(t *testing.T) {
	if AttrProvider == "" || AttrCache == "" || AttrOutcome == "" {
		t.Fatalf("expected metric attribute keys to be non-empty")
	}
}
