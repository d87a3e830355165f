package rules

import (
	"slices"
	"strings"

	"github.com/Veraticus/sortit/internal/model"
)

// Step names the point in the decision cascade that produced a category.
type Step string

// Cascade steps, in evaluation order.
const (
	StepDirectMention Step = "direct_mention"
	StepHazardous     Step = "hazardous"
	StepFood          Step = "food"
	StepDeposit       Step = "deposit"
	StepReuse         Step = "reuse"
	StepSweep         Step = "sweep"
	StepFallback      Step = "fallback"
)

// Decision explains a resolution: the category, the step that fired, and
// the label/keyword pair that matched (empty for the fallback).
type Decision struct {
	Category model.Category
	Step     Step
	Label    string
	Keyword  string
}

// Resolve maps a label set to exactly one category. It never fails: when no
// rule matches the result is model.Other. A nil rule set uses Default().
func Resolve(labels model.LabelSet, rs *RuleSet) model.Category {
	return Explain(labels, rs).Category
}

// Explain runs the same strict first-match cascade as Resolve and reports
// which step decided the outcome.
//
// Every keyword list is matched with bidirectional substring containment:
// a label matches a keyword when either contains the other. The literal
// category tokens ("deposit", "hazardous", "food") must equal a label.
func Explain(labels model.LabelSet, rs *RuleSet) Decision {
	if rs == nil {
		rs = Default()
	}
	names := labels.Names()

	if slices.Contains(names, string(model.Deposit)) {
		return Decision{Category: model.Deposit, Step: StepDirectMention, Label: string(model.Deposit)}
	}

	if d, ok := rs.check(names, model.Hazardous, StepHazardous); ok {
		return d
	}

	if d, ok := rs.check(names, model.Food, StepFood); ok {
		return d
	}

	if label, kw, ok := matchAny(names, rs.keywords(model.Deposit)); ok && rs.looksLikeContainer(names) {
		return Decision{Category: model.Deposit, Step: StepDeposit, Label: label, Keyword: kw}
	}

	if label, kw, ok := matchAny(names, rs.keywords(model.Reuse)); ok {
		return Decision{Category: model.Reuse, Step: StepReuse, Label: label, Keyword: kw}
	}

	for _, e := range rs.entries {
		if e.Category == model.Reuse || e.Category == model.Deposit {
			continue
		}
		if label, kw, ok := matchAny(names, e.Keywords); ok {
			return Decision{Category: e.Category, Step: StepSweep, Label: label, Keyword: kw}
		}
	}

	return Decision{Category: model.Other, Step: StepFallback}
}

// check matches a category's keywords, or a label naming the category itself.
func (rs *RuleSet) check(names []string, c model.Category, step Step) (Decision, bool) {
	if label, kw, ok := matchAny(names, rs.keywords(c)); ok {
		return Decision{Category: c, Step: step, Label: label, Keyword: kw}, true
	}
	if slices.Contains(names, string(c)) {
		return Decision{Category: c, Step: step, Label: string(c)}, true
	}
	return Decision{}, false
}

// looksLikeContainer reports whether any label contains a container word.
func (rs *RuleSet) looksLikeContainer(names []string) bool {
	for _, name := range names {
		for _, w := range rs.containerWords {
			if strings.Contains(name, w) {
				return true
			}
		}
	}
	return false
}

// matchAny returns the first keyword, in declared order, that matches any
// label. Labels are expected sorted so the reported pair is stable.
func matchAny(names, keywords []string) (label, keyword string, ok bool) {
	for _, kw := range keywords {
		for _, name := range names {
			if Matches(name, kw) {
				return name, kw, true
			}
		}
	}
	return "", "", false
}

// Matches reports bidirectional substring containment between a normalized
// label and keyword.
func Matches(label, keyword string) bool {
	if label == "" || keyword == "" {
		return false
	}
	return strings.Contains(label, keyword) || strings.Contains(keyword, label)
}
