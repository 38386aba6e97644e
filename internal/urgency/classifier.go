// internal/urgency/classifier.go
package urgency

import (
	"strings"
	"time"

	"github.com/instabids/outreach-backend/internal/model"
)

// Keyword lists per urgency level. Matched case-insensitively against the
// concatenated free text of a project signal.
var (
	emergencyKeywords = []string{
		"emergency", "flooding", "flooded", "burst pipe", "gas leak",
		"no heat", "no water", "no power", "sewage", "sparking",
		"electrical hazard", "dangerous",
	}
	urgentKeywords = []string{
		"urgent", "asap", "as soon as possible", "right away", "immediately",
		"quickly", "leaking", "broken", "not working", "stopped working",
	}
	weekKeywords = []string{
		"this week", "within a week", "next week", "few days", "soon",
	}
	monthKeywords = []string{
		"this month", "within a month", "few weeks", "next month",
	}
	flexibleKeywords = []string{
		"no rush", "whenever", "flexible", "planning", "eventually", "future",
	}
)

// Project-type language that forces a classification regardless of keywords.
var (
	emergencyTypes   = []string{"emergency", "leak", "flood", "burst", "gas"}
	emergencyConcern = []string{"safety", "hazard", "water damage", "structural"}
	repairTypes      = []string{"repair", "broken", "fix", "damage", "replace"}
	renovationTypes  = []string{"renovation", "remodel", "addition", "install", "upgrade"}
)

// Classifier maps structured project signals to an urgency level. It is pure
// and deterministic; malformed input degrades to flexible, never an error.
type Classifier struct {
	// Now allows tests to pin the clock for timeline parsing.
	Now func() time.Time
}

func (c *Classifier) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Assess classifies a project signal. Rules apply in priority order:
// explicit urgency passthrough, emergency keyword override, urgent keyword
// override, then the highest-priority result among keyword, type-based and
// timeline-based classification.
func (c *Classifier) Assess(signal model.ProjectSignal) model.UrgencyLevel {
	if explicit := model.UrgencyLevel(strings.ToLower(strings.TrimSpace(signal.Urgency))); explicit.IsClassifiable() {
		return explicit
	}

	text := freeText(signal)

	if countKeywords(text, emergencyKeywords) > 0 {
		return model.UrgencyEmergency
	}
	if countKeywords(text, urgentKeywords) > 0 {
		return model.UrgencyUrgent
	}

	keywordLevel := bestKeywordLevel(text)
	typeLevel := c.typeBased(signal)
	timelineLevel := c.timelineBased(signal.TimelineStart)

	result := model.HigherUrgency(keywordLevel, model.HigherUrgency(typeLevel, timelineLevel))

	// Week-level keywords pull a near-term type signal down to week.
	if countKeywords(text, weekKeywords) > 0 && typeLevel.Priority() >= model.UrgencyWeek.Priority() {
		result = model.UrgencyWeek
	}

	return result
}

func freeText(signal model.ProjectSignal) string {
	parts := []string{signal.Requirements}
	parts = append(parts, signal.Concerns...)
	return strings.ToLower(strings.Join(parts, " "))
}

func countKeywords(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		count += strings.Count(text, kw)
	}
	return count
}

func bestKeywordLevel(text string) model.UrgencyLevel {
	// emergency and urgent were already short-circuited by the caller
	if countKeywords(text, weekKeywords) > 0 {
		return model.UrgencyWeek
	}
	if countKeywords(text, monthKeywords) > 0 {
		return model.UrgencyMonth
	}
	return model.UrgencyFlexible
}

func (c *Classifier) typeBased(signal model.ProjectSignal) model.UrgencyLevel {
	projectType := strings.ToLower(signal.ProjectType)
	for _, t := range emergencyTypes {
		if strings.Contains(projectType, t) {
			return model.UrgencyEmergency
		}
	}
	for _, concern := range signal.Concerns {
		lc := strings.ToLower(concern)
		for _, t := range emergencyConcern {
			if strings.Contains(lc, t) {
				return model.UrgencyEmergency
			}
		}
	}
	for _, t := range repairTypes {
		if strings.Contains(projectType, t) {
			return model.UrgencyUrgent
		}
	}
	for _, t := range renovationTypes {
		if strings.Contains(projectType, t) {
			return model.UrgencyMonth
		}
	}
	return model.UrgencyFlexible
}

func (c *Classifier) timelineBased(start string) model.UrgencyLevel {
	target, ok := c.parseDate(start)
	if !ok {
		return model.UrgencyFlexible
	}
	days := target.Sub(c.now()).Hours() / 24
	switch {
	case days <= 7:
		return model.UrgencyWeek
	case days <= 30:
		return model.UrgencyMonth
	default:
		return model.UrgencyFlexible
	}
}

// parseDate accepts relative phrases before falling back to date layouts.
// Season names map to mid-month dates of their next occurrence.
func (c *Classifier) parseDate(raw string) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return time.Time{}, false
	}

	now := c.now()
	switch s {
	case "asap", "immediately", "right away", "today", "now":
		return now, true
	case "tomorrow":
		return now.AddDate(0, 0, 1), true
	case "this week":
		return now.AddDate(0, 0, 3), true
	case "next week":
		return now.AddDate(0, 0, 7), true
	case "this month":
		return now.AddDate(0, 0, 14), true
	case "next month":
		return now.AddDate(0, 1, 0), true
	}

	if t, ok := seasonDate(s, now); ok {
		return t, true
	}

	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"01/02/2006",
		"January 2, 2006",
		"Jan 2, 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var seasonMonths = map[string]time.Month{
	"spring": time.April,
	"summer": time.July,
	"fall":   time.October,
	"autumn": time.October,
	"winter": time.January,
}

func seasonDate(s string, now time.Time) (time.Time, bool) {
	month, ok := seasonMonths[s]
	if !ok {
		return time.Time{}, false
	}
	t := time.Date(now.Year(), month, 15, 0, 0, 0, 0, now.Location())
	if t.Before(now) {
		t = t.AddDate(1, 0, 0)
	}
	return t, true
}
