package engine

import "strings"

// Class is the interpreted failure mode of an automation run.
type Class int

const (
	// ClassFailed is an opaque automation or runtime error.
	ClassFailed Class = iota
	// ClassDraft means publishing could not complete and the platform kept the
	// video as an unpublished draft. A qualified success, not an error.
	ClassDraft
	// ClassDraftUnavailable means even the draft fallback was impossible,
	// usually an account-state or permissions problem. Not transient, never
	// retried.
	ClassDraftUnavailable
)

// Rule maps an error-message substring to a Class. Matching is
// case-insensitive; rules are evaluated in order and the first hit wins.
type Rule struct {
	Substring string
	Class     Class
}

// DefaultRules is the classification table for the stock automation engine.
// The draft-button rule must precede the save-draft rule: its message embeds a
// similar phrase.
var DefaultRules = []Rule{
	{Substring: "save as draft button not found", Class: ClassDraftUnavailable},
	{Substring: "save draft", Class: ClassDraft},
	{Substring: "saved as draft", Class: ClassDraft},
}

// Classify interprets an automation error against DefaultRules.
func Classify(err error) Class {
	return ClassifyWith(DefaultRules, err)
}

// ClassifyWith interprets an automation error against an explicit rule table.
func ClassifyWith(rules []Rule, err error) Class {
	if err == nil {
		return ClassFailed
	}
	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		if strings.Contains(msg, strings.ToLower(r.Substring)) {
			return r.Class
		}
	}
	return ClassFailed
}
