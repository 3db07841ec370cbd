package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// SearchKey folds s for case- and accent-insensitive substring matching:
// "FICÇÃO Científica" and "ficcao cientifica" share a key.
func SearchKey(s string) string {
	// Chains hold state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// DiscussionSearchKey is the SearchText stored for a discussion.
func DiscussionSearchKey(title, content string) string {
	return SearchKey(title + "\n" + content)
}

// BeforeSave keeps SearchText in step with Title and Content.
func (d *Discussion) BeforeSave(*gorm.DB) error {
	d.SearchText = DiscussionSearchKey(d.Title, d.Content)
	return nil
}
