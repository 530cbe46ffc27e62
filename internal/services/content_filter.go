package services

import (
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"viagra", "casino", "crypto giveaway", "seo services", "backlinks",
}

const (
	ReasonLanguage    = "inappropriate_language"
	ReasonLinks       = "url_not_allowed"
	ReasonContactInfo = "contact_info_not_allowed"
	ReasonSpam        = "spam_detected"
	ReasonCaps        = "excessive_caps"
)

// FilterPolicy selects which checks apply to a piece of text.
type FilterPolicy struct {
	// MaxLinks is the number of URLs tolerated; negative disables the check.
	MaxLinks int
	// AllowContactInfo permits emails and phone numbers in the text.
	AllowContactInfo bool
}

var (
	// ReviewPolicy applies to text published on the site.
	ReviewPolicy = FilterPolicy{MaxLinks: 0}
	// MessagePolicy applies to private contact messages.
	MessagePolicy = FilterPolicy{MaxLinks: 2, AllowContactInfo: true}
)

// ContentFilter screens publicly submitted text for abuse and spam before it
// is stored.
type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	allCapsPattern    *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps: make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:        regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:      regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern:      regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		allCapsPattern:    regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, word := range BannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns ok=false and a reason code when text violates the policy.
func (f *ContentFilter) Check(text string, policy FilterPolicy) (bool, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return true, ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return false, ReasonLanguage
		}
	}
	if policy.MaxLinks >= 0 && len(f.urlPattern.FindAllString(text, -1)) > policy.MaxLinks {
		return false, ReasonLinks
	}
	if !policy.AllowContactInfo && (f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text)) {
		return false, ReasonContactInfo
	}
	if hasRepeatedRun(text) {
		return false, ReasonSpam
	}
	if len(f.allCapsPattern.FindAllString(text, -1)) > 3 {
		return false, ReasonCaps
	}
	return true, ""
}

// Validate wraps Check into a field validation error.
func (f *ContentFilter) Validate(field, text string, policy FilterPolicy) error {
	if ok, reason := f.Check(text, policy); !ok {
		return apperr.Invalid(field, "%s", RejectionMessage(reason))
	}
	return nil
}

func RejectionMessage(reason string) string {
	messages := map[string]string{
		ReasonLanguage:    "contains inappropriate language",
		ReasonLinks:       "links are not allowed",
		ReasonContactInfo: "contact information is not allowed in public reviews",
		ReasonSpam:        "appears to be spam",
		ReasonCaps:        "please avoid excessive capital letters",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "does not meet our content guidelines"
}

// hasRepeatedRun reports six or more of the same non-digit character in a
// row, e.g. "sooooooo" or "!!!!!!".
func hasRepeatedRun(text string) bool {
	run := 1
	var prev rune
	for i, r := range strings.ToLower(text) {
		if i > 0 && r == prev && r != ' ' && (r < '0' || r > '9') {
			run++
			if run >= 6 {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}
