package services

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/library-community/internal/domain"
)

// Content limits, counted in runes after NFC normalisation and trimming.
const (
	TitleMinRunes   = 10
	TitleMaxRunes   = 100
	ContentMinRunes = 20
	ContentMaxRunes = 1000
	CommentMinRunes = 1
	CommentMaxRunes = 500
)

// Listing limits.
const (
	DefaultPageSize    = 8
	MaxPageSize        = 100
	DefaultOnlineLimit = 20
	MaxOnlineLimit     = 100
	PopularLimit       = 5
	ActiveMembersLimit = 10
)

// Actor identifies the verified reader performing a request.
type Actor struct {
	ID   string
	Name string
}

// normalizeText applies NFC and trims surrounding whitespace so that the same
// visible text always has the same rune count.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func runesBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// ValidateDiscussion normalises and checks a new discussion. An empty
// category becomes domain.CategoryGeneral.
func ValidateDiscussion(title, content, category string) (string, string, string, error) {
	title = normalizeText(title)
	content = normalizeText(content)
	category = strings.ToLower(strings.TrimSpace(category))

	if !runesBetween(title, TitleMinRunes, TitleMaxRunes) {
		return "", "", "", ErrTitleLength
	}
	if !runesBetween(content, ContentMinRunes, ContentMaxRunes) {
		return "", "", "", ErrContentLength
	}
	if category == "" {
		category = domain.CategoryGeneral
	}
	if !domain.IsKnownCategory(category) {
		return "", "", "", ErrUnknownCategory
	}
	return title, content, category, nil
}

// ValidateComment normalises and checks comment text.
func ValidateComment(content string) (string, error) {
	content = normalizeText(content)
	if !runesBetween(content, CommentMinRunes, CommentMaxRunes) {
		return "", ErrCommentLength
	}
	return content, nil
}
