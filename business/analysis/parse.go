package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/superfeelapi/goRaphael/business/policy"
)

const missingResponse = "I'm here to help."

var (
	responseField = regexp.MustCompile(`(?s)"response"\s*:\s*"(.*?)"`)
	emotionField  = regexp.MustCompile(`(?s)"emotion"\s*:\s*"(.*?)"`)
)

// Parse turns raw model output into a Result. It tries a strict JSON decode
// first, then extracts the two fields by pattern, and finally treats the whole
// text as the reply. The emotion is always coerced into the accepted set.
// A response that is present but not a string comes back empty. Valid JSON
// that is not an object is malformed and yields the degraded result.
func Parse(raw string) Result {
	if r, ok := parseJSON(raw); ok {
		return r
	}

	r := Result{
		Response: strings.TrimSpace(raw),
		Emotion:  policy.Neutral,
	}
	if m := responseField.FindStringSubmatch(raw); m != nil {
		r.Response = strings.TrimSpace(m[1])
	}
	if m := emotionField.FindStringSubmatch(raw); m != nil {
		r.Emotion = policy.Normalize(m[1])
	}
	return r
}

func parseJSON(raw string) (Result, bool) {
	var decoded any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &decoded); err != nil {
		return Result{}, false
	}

	fields, ok := decoded.(map[string]any)
	if !ok {
		return Degraded(nil), true
	}

	r := Result{Emotion: policy.Neutral}

	if v, ok := fields["emotion"].(string); ok {
		r.Emotion = policy.Normalize(v)
	}

	switch v := fields["response"].(type) {
	case nil:
		if _, present := fields["response"]; !present {
			r.Response = missingResponse
		}
	case string:
		r.Response = v
	}

	return r, true
}
