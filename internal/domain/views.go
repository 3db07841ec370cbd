package domain

import "time"

// Category tags accepted on new discussions.
const (
	CategoryGeneral    = "geral"
	CategoryFiction    = "ficcao"
	CategoryNonFiction = "nao-ficcao"
	CategorySelfHelp   = "autoajuda"
	CategoryBusiness   = "negocios"
	CategoryTechnology = "tecnologia"

	// CategoryAll in a list filter means "no category filter".
	CategoryAll = "all"
)

// Categories lists every known category in display order.
var Categories = []string{
	CategoryGeneral,
	CategoryFiction,
	CategoryNonFiction,
	CategorySelfHelp,
	CategoryBusiness,
	CategoryTechnology,
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Listing tabs.
const (
	TabRecent     = "recent"
	TabPopular    = "popular"
	TabUnanswered = "unanswered"
)

// DiscussionView is a discussion enriched for display: the author's current
// display name and username, live like/comment counts and whether the viewer
// has liked it.
type DiscussionView struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	AuthorID       string    `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorUsername string    `json:"author_username"`
	Likes          int64     `json:"likes"`
	CommentsCount  int64     `json:"comments_count"`
	Views          int64     `json:"views"`
	IsAnswered     bool      `json:"is_answered"`
	UserLiked      bool      `json:"user_liked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CommentView is a comment with its author's current display name.
type CommentView struct {
	ID             string    `json:"id"`
	DiscussionID   string    `json:"discussion_id"`
	AuthorID       string    `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// OnlineMember is one entry of the "who's online" list.
type OnlineMember struct {
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// CommunityStats is the dashboard snapshot served by GET /community/stats.
type CommunityStats struct {
	TotalDiscussions   int64            `json:"totalDiscussions"`
	TotalComments      int64            `json:"totalComments"`
	TotalMembers       int64            `json:"totalMembers"`
	OnlineMembers      int64            `json:"onlineMembers"`
	PopularDiscussions []DiscussionView `json:"popularDiscussions"`
	ActiveMembers      []OnlineMember   `json:"activeMembers"`
}
