// Package response turns raw model output into validated records.
//
// Model output is noisy: JSON may arrive wrapped in code fences, preceded or
// followed by prose, or littered with control characters. Extraction is
// best-effort (fence → text as-is → first-{ to last-} slice) and validation
// is per item, so one bad item never discards its neighbors and one bad
// chunk never aborts the run. Failures surface as Issues, not errors.
package response

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedJSONRe = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")
	controlRe    = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
)

// extractJSON locates the most plausible JSON object inside raw model text.
// It tries, in order: a fenced ```json``` block, the text as-is when it
// decodes whole, and the window from the first '{' to the last '}'. A
// candidate that starts with '{' but fails to decode does not win over a
// later candidate that does; models often append prose after the object.
// Control characters are scrubbed in every case. Returns false if no
// candidate exists at all; the winning candidate may still fail to decode.
func extractJSON(text string) (string, bool) {
	t := controlRe.ReplaceAllString(strings.TrimSpace(text), "")
	if t == "" {
		return "", false
	}

	if m := fencedJSONRe.FindStringSubmatch(t); m != nil {
		return m[1], true
	}

	if strings.HasPrefix(t, "{") && json.Valid([]byte(t)) {
		return t, true
	}

	var window string
	b0 := strings.Index(t, "{")
	b1 := strings.LastIndex(t, "}")
	if b0 != -1 && b1 > b0 {
		window = t[b0 : b1+1]
	}
	if window != "" && json.Valid([]byte(window)) {
		return window, true
	}

	// Nothing decodes; hand back the best candidate so the caller's issue
	// names the actual decode error.
	if strings.HasPrefix(t, "{") {
		return t, true
	}
	if window != "" {
		return window, true
	}
	return "", false
}
