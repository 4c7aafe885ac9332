// Package chat implements the assessment chat's interaction handler and
// the strategies that produce assistant replies.
package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Responder produces the assistant reply for one user message.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

// FallbackReply is returned when no rule keyword matches.
const FallbackReply = "Thank you for your feedback. I will conduct an analysis based on this information. Please continue to describe your symptoms."

// Rule maps a keyword to a canned reply.
type Rule struct {
	Keyword string `yaml:"keyword"`
	Reply   string `yaml:"reply"`
}

// DefaultRules is the built-in table. Order matters: the first keyword
// found in the message wins.
var DefaultRules = []Rule{
	{Keyword: "Pain", Reply: "Please describe in detail the nature, frequency and triggering factors of the pain."},
	{Keyword: "Swelling", Reply: "When does swelling usually occur? Is there any accompanying fever?"},
	{Keyword: "Stiffness", Reply: "How long does morning stiffness last? Was there any improvement after the activity?"},
	{Keyword: "Cracking", Reply: "Is joint cracking accompanied by pain?"},
}

// RuleResponder answers from an ordered keyword table.
// Keywords match as case-sensitive substrings.
type RuleResponder struct {
	rules    []Rule
	fallback string
}

// NewRuleResponder creates a responder over rules. An empty fallback uses
// FallbackReply.
func NewRuleResponder(rules []Rule, fallback string) *RuleResponder {
	if fallback == "" {
		fallback = FallbackReply
	}
	return &RuleResponder{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// Respond returns the reply of the first matching rule, else the fallback.
func (r *RuleResponder) Respond(_ context.Context, text string) (string, error) {
	for _, rule := range r.rules {
		if rule.Keyword != "" && strings.Contains(text, rule.Keyword) {
			return rule.Reply, nil
		}
	}
	return r.fallback, nil
}

// Rules returns a copy of the rule table.
func (r *RuleResponder) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// ruleFile is the YAML layout of a replacement rule table.
type ruleFile struct {
	Fallback string `yaml:"fallback"`
	Rules    []Rule `yaml:"rules"`
}

// LoadRules reads a rule table from a YAML file, keeping its order.
func LoadRules(path string) (*RuleResponder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) (*RuleResponder, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}
	for i, rule := range f.Rules {
		if rule.Keyword == "" {
			return nil, fmt.Errorf("parse rules: rule %d has no keyword", i+1)
		}
	}
	return NewRuleResponder(f.Rules, f.Fallback), nil
}
