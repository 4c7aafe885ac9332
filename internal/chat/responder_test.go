package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleResponderDefaultTable(t *testing.T) {
	r := NewRuleResponder(DefaultRules, "")
	ctx := context.Background()

	tests := []struct {
		in   string
		want string
	}{
		{"I have Pain in my knee", DefaultRules[0].Reply},
		{"Swelling after walking", DefaultRules[1].Reply},
		{"Stiffness in the morning", DefaultRules[2].Reply},
		{"Cracking when I squat", DefaultRules[3].Reply},
		{"Cracking and Pain together", DefaultRules[0].Reply},
		{"pain in lower case", FallbackReply},
		{"xyz nothing matches", FallbackReply},
		{"", FallbackReply},
	}
	for _, tt := range tests {
		got, err := r.Respond(ctx, tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseRulesKeepsOrder(t *testing.T) {
	r, err := ParseRules([]byte(`
fallback: "Tell me more."
rules:
  - keyword: Knee
    reply: knee reply
  - keyword: Knee pain
    reply: never reached
  - keyword: Hip
    reply: hip reply
`))
	require.NoError(t, err)

	rules := r.Rules()
	require.Len(t, rules, 3)
	require.Equal(t, "Knee", rules[0].Keyword)
	require.Equal(t, "Hip", rules[2].Keyword)

	got, _ := r.Respond(context.Background(), "Knee pain at night")
	require.Equal(t, "knee reply", got)

	got, _ = r.Respond(context.Background(), "shoulder")
	require.Equal(t, "Tell me more.", got)
}

func TestParseRulesRejectsEmptyTable(t *testing.T) {
	_, err := ParseRules([]byte("rules: []\n"))
	require.Error(t, err)

	_, err = ParseRules([]byte("rules:\n  - reply: orphan\n"))
	require.Error(t, err)
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - keyword: Pain\n    reply: custom\n"), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)

	got, _ := r.Respond(context.Background(), "Pain")
	require.Equal(t, "custom", got)

	got, _ = r.Respond(context.Background(), "other")
	require.Equal(t, FallbackReply, got)
}
