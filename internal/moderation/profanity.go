// Package moderation implements the content filter that withholds newly
// created posts from public listing until an admin approves them.
package moderation

import (
	"regexp"
	"strings"
)

// blocklist holds lowercase terms that flag a post for moderation. Matching is
// whole-word and case-insensitive so that e.g. "class" is never flagged.
var blocklist = []string{
	"arse",
	"ass",
	"bastard",
	"bitch",
	"bollocks",
	"boob",
	"bugger",
	"casino",
	"cialis",
	"cock",
	"crap",
	"cunt",
	"damn",
	"dick",
	"douche",
	"fag",
	"fuck",
	"fucker",
	"fucking",
	"jackpot",
	"jerk",
	"nigger",
	"piss",
	"porn",
	"prick",
	"pussy",
	"shit",
	"slut",
	"tits",
	"twat",
	"viagra",
	"wanker",
	"whore",
	"xxx",
}

var wordPattern *regexp.Regexp

func init() {
	escaped := make([]string, len(blocklist))
	for i, w := range blocklist {
		escaped[i] = regexp.QuoteMeta(w)
	}
	wordPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// IsProfane reports whether text contains a blocklisted term. It is a pure
// predicate; callers decide what to do with a flagged post.
func IsProfane(text string) bool {
	return wordPattern.MatchString(text)
}
