package domain

import (
	"encoding/json"
	"testing"
)

func TestOrderedKeepsDocumentOrder(t *testing.T) {
	var o Ordered[int]
	if err := json.Unmarshal([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`), &o); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	if len(o.Keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), o.Keys)
	}
	for i, k := range want {
		if o.Keys[i] != k {
			t.Errorf("key %d: expected %q, got %q", i, k, o.Keys[i])
		}
	}
	if v, _ := o.Get("alpha"); v != 2 {
		t.Errorf("expected alpha=2, got %d", v)
	}
}

func TestOrderedDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var o Ordered[string]
	if err := json.Unmarshal([]byte(`{"a": "x", "b": "y", "a": "z"}`), &o); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if o.Len() != 2 || o.Keys[0] != "a" {
		t.Fatalf("unexpected keys: %v", o.Keys)
	}
	if v, _ := o.Get("a"); v != "z" {
		t.Errorf("expected last value to win, got %q", v)
	}
}

func TestOrderedNullIsEmpty(t *testing.T) {
	var o Ordered[int]
	if err := json.Unmarshal([]byte(`null`), &o); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if o.Len() != 0 {
		t.Errorf("expected empty object, got %v", o.Keys)
	}
}

func TestOrderedRejectsArray(t *testing.T) {
	var o Ordered[int]
	if err := json.Unmarshal([]byte(`[1, 2]`), &o); err == nil {
		t.Fatal("expected error for non-object input")
	}
}

func TestOrderedMarshalRoundTripPreservesOrder(t *testing.T) {
	var o Ordered[[]string]
	o.Set("Right Knee", []string{"a"})
	o.Set("Left Knee", []string{"b"})

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"Right Knee":["a"],"Left Knee":["b"]}` {
		t.Errorf("unexpected encoding: %s", data)
	}
}
