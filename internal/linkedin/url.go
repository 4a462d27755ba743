package linkedin

import (
	"fmt"
	"net/url"
	"strings"
)

// PublicIdentifier extracts the profile id from a profile URL.
// For "https://www.linkedin.com/in/jane-doe/" it returns "jane-doe":
// the segment before the trailing slash, or the last segment when there is none.
func PublicIdentifier(profileURL string) (string, error) {
	raw := strings.TrimSpace(profileURL)
	if raw == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidProfileURL)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidProfileURL, err)
	}

	segments := strings.Split(parsed.Path, "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidProfileURL, raw)
	}

	id := segments[len(segments)-2]
	if !strings.HasSuffix(parsed.Path, "/") {
		id = segments[len(segments)-1]
	}

	if id == "" || id == "in" {
		return "", fmt.Errorf("%w: %q", ErrInvalidProfileURL, raw)
	}

	return id, nil
}
