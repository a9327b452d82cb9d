package narrative

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/tidwall/gjson"
)

var (
	fenceNonGreedy = regexp.MustCompile("(?s)(?:~~~|```)\\s*(?:json)?\\s*(.*?)\\s*(?:~~~|```)")
	fenceGreedy    = regexp.MustCompile("(?s)(?:~~~|```)\\s*(?:json)?\\s*(.*)\\s*(?:~~~|```)")
)

// cleanJSONMarkdown extracts a JSON document from model output that may be
// wrapped in markdown fences or surrounded by prose.
func cleanJSONMarkdown(content string) string {
	content = strings.TrimSpace(content)

	for _, re := range []*regexp.Regexp{fenceNonGreedy, fenceGreedy} {
		matches := re.FindStringSubmatch(content)
		if len(matches) > 1 {
			candidate := strings.TrimSpace(matches[1])
			if gjson.Valid(candidate) {
				return candidate
			}
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		return content[start : end+1]
	}

	return content
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// parseObject cleans text and returns its root object.
func parseObject(text string) (gjson.Result, error) {
	if strings.TrimSpace(text) == "" {
		return gjson.Result{}, ErrEmptyResponse
	}
	clean := cleanJSONMarkdown(text)
	if !gjson.Valid(clean) {
		return gjson.Result{}, malformed("not valid JSON")
	}
	root := gjson.Parse(clean)
	if !root.IsObject() {
		return gjson.Result{}, malformed("expected a JSON object, got %s", root.Type)
	}
	return root, nil
}

func requiredString(root gjson.Result, field string) (string, error) {
	v := root.Get(field)
	if !v.Exists() {
		return "", malformed("missing field %q", field)
	}
	if v.Type != gjson.String {
		return "", malformed("field %q must be a string", field)
	}
	if strings.TrimSpace(v.Str) == "" {
		return "", malformed("field %q is empty", field)
	}
	return v.Str, nil
}

func requiredStrings(root gjson.Result, field string) ([]string, error) {
	v := root.Get(field)
	if !v.Exists() {
		return nil, malformed("missing field %q", field)
	}
	if !v.IsArray() {
		return nil, malformed("field %q must be an array", field)
	}
	out := []string{}
	for i, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, malformed("%s[%d] must be a string", field, i)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

func parsePriority(s string) (event.Priority, bool) {
	for _, p := range event.Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// ParseNarrative validates a model response against the narrative schema.
// The four text fields are required. confidenceScore and mitigationPriority
// may be absent but are rejected when present and out of range.
func ParseNarrative(text string) (event.Narrative, error) {
	root, err := parseObject(text)
	if err != nil {
		return event.Narrative{}, err
	}

	var n event.Narrative
	if n.Title, err = requiredString(root, "title"); err != nil {
		return event.Narrative{}, err
	}
	if n.TechnicalDetails, err = requiredString(root, "technicalDetails"); err != nil {
		return event.Narrative{}, err
	}
	if n.AttackerProfile, err = requiredString(root, "attackerProfile"); err != nil {
		return event.Narrative{}, err
	}
	if n.RecommendedCountermeasure, err = requiredString(root, "recommendedCountermeasure"); err != nil {
		return event.Narrative{}, err
	}

	if v := root.Get("confidenceScore"); v.Exists() {
		if v.Type != gjson.Number {
			return event.Narrative{}, malformed("field %q must be a number", "confidenceScore")
		}
		if v.Num < 0 || v.Num > 100 {
			return event.Narrative{}, malformed("confidenceScore %v out of range [0,100]", v.Num)
		}
		n.ConfidenceScore = v.Num
	}

	if v := root.Get("mitigationPriority"); v.Exists() {
		p, ok := parsePriority(v.String())
		if v.Type != gjson.String || !ok {
			return event.Narrative{}, malformed("unknown mitigationPriority %q", v.Raw)
		}
		n.MitigationPriority = p
	}

	return n, nil
}

// ParseAdvice validates an advisor response. All four fields are required.
func ParseAdvice(text string) (event.Advice, error) {
	root, err := parseObject(text)
	if err != nil {
		return event.Advice{}, err
	}

	var a event.Advice
	if a.RiskLevel, err = requiredString(root, "riskLevel"); err != nil {
		return event.Advice{}, err
	}
	if a.Summary, err = requiredString(root, "summary"); err != nil {
		return event.Advice{}, err
	}
	if a.RecommendedServices, err = requiredStrings(root, "recommendedServices"); err != nil {
		return event.Advice{}, err
	}
	if a.ImmediateSteps, err = requiredStrings(root, "immediateSteps"); err != nil {
		return event.Advice{}, err
	}
	return a, nil
}
