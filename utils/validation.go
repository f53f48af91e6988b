package utils

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SanitizeString trims surrounding whitespace and truncates to maxLength runes.
func SanitizeString(s string, maxLength int) string {
	s = strings.TrimSpace(s)
	if maxLength > 0 && utf8.RuneCountInString(s) > maxLength {
		s = string([]rune(s)[:maxLength])
	}
	return s
}

// ExceedsLength reports whether s, once trimmed, is longer than maxLength runes.
func ExceedsLength(s string, maxLength int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > maxLength
}

// Pagination reads ?page= and ?limit= falling back to defaultLimit and
// capping the limit at maxLimit. Invalid values fall back to the defaults.
func Pagination(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
