package ytdlp

import (
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/(watch\?v=|embed/|v/)|youtu\.be/)[\w-]{11}`)

	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([^&\n?#]+)`),
		regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
	}
)

// ValidateURL reports whether url looks like a single YouTube video link.
func ValidateURL(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

// ExtractVideoID returns the source id from a watch, short, embed or /v/ URL,
// or from a bare 11 character id.
func ExtractVideoID(url string) (string, bool) {
	url = strings.TrimSpace(url)
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}
