package intent

import (
	"regexp"
	"strings"

	"github.com/blociq/blociq-engine/pkg/models"
)

// replyTriggers mark a request to draft correspondence rather than answer a
// question directly.
var replyTriggers = []string{
	"reply", "respond", "draft", "compose", "write back", "answer this email",
	"write a response", "write an email", "on behalf",
}

// qaTriggers are question cues. They only matter for confidence; q&a is the
// default classification anyway.
var qaTriggers = []string{
	"what", "when", "who", "where", "why", "how", "which", "does", "is the",
	"can you tell", "explain",
}

// ParseAddin classifies add-in input as a reply-drafting request or a
// question. Reply cues win over question cues; a question mark alone is a
// q&a signal. The zero state is q&a at low confidence so the adapter always
// has a path.
func ParseAddin(text string, msg *models.OutlookMessage) models.AddinIntent {
	lowered := strings.ToLower(text)

	var triggers []string
	for _, trigger := range replyTriggers {
		if strings.Contains(lowered, trigger) {
			triggers = append(triggers, trigger)
		}
	}
	if len(triggers) > 0 {
		confidence := 0.7 + 0.1*float64(len(triggers))
		if confidence > 0.95 {
			confidence = 0.95
		}
		return models.AddinIntent{
			Intent:     models.AddinIntentReply,
			Confidence: confidence,
			Triggers:   triggers,
			Context:    msg,
		}
	}

	for _, trigger := range qaTriggers {
		if strings.Contains(lowered, trigger) {
			triggers = append(triggers, trigger)
		}
	}
	if strings.Contains(text, "?") {
		triggers = append(triggers, "?")
	}

	confidence := 0.4
	if len(triggers) > 0 {
		confidence = 0.6 + 0.05*float64(len(triggers))
		if confidence > 0.9 {
			confidence = 0.9
		}
	}

	return models.AddinIntent{
		Intent:     models.AddinIntentQA,
		Confidence: confidence,
		Triggers:   triggers,
		Context:    msg,
	}
}

// BuildingContext is the advisory building/unit reference extracted from
// free text. Names are hints for lookup, never trusted identifiers.
type BuildingContext struct {
	BuildingName string
	UnitName     string
}

var (
	buildingNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:for|of|at|in)\s+([A-Za-z0-9\s]+?)\s+(?:house|building|block|property)`),
		regexp.MustCompile(`(?i)(?:house|building|block|property)\s+([A-Za-z0-9\s]+)`),
	}
	unitNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:flat|apartment|unit)\s+([A-Za-z0-9]+)`),
	}
)

// ExtractBuildingContext pulls building and unit name hints from text,
// falling back to the Outlook message subject when the text itself names
// nothing.
func ExtractBuildingContext(text string, msg *models.OutlookMessage) BuildingContext {
	ctx := BuildingContext{}

	candidates := []string{text}
	if msg != nil && msg.Subject != "" {
		candidates = append(candidates, msg.Subject)
	}

	for _, candidate := range candidates {
		if ctx.BuildingName == "" {
			for _, pattern := range buildingNamePatterns {
				if m := pattern.FindStringSubmatch(candidate); m != nil {
					ctx.BuildingName = strings.TrimSpace(m[1])
					break
				}
			}
		}
		if ctx.UnitName == "" {
			for _, pattern := range unitNamePatterns {
				if m := pattern.FindStringSubmatch(candidate); m != nil {
					ctx.UnitName = strings.TrimSpace(m[1])
				}
			}
		}
	}

	return ctx
}
