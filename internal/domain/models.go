// Package domain defines the persistence models for the community board:
// readers, discussions, comments, likes and member presence. These types are
// mapped with GORM and form the core data layer of the service.
package domain

import "time"

// Reader is a row of the identity store. The community subsystem only reads
// it to resolve display names and to count members; rows are written by the
// external auth system or by the seed command.
//
// Fields:
//   - ID: opaque identifier issued by the auth system.
//   - Username: unique login handle.
//   - FullName: display name shown next to posts.
//   - Role: "reader" or "admin".
//   - IsActive: inactive readers are excluded from member counts.
type Reader struct {
	ID        string    `json:"id"        gorm:"type:varchar(64);primaryKey"`
	Username  string    `json:"username"  gorm:"type:varchar(64);not null;uniqueIndex:ux_readers_username"`
	FullName  string    `json:"full_name" gorm:"type:varchar(255);not null"`
	Role      string    `json:"role"      gorm:"type:varchar(16);not null;check:role IN ('reader','admin')"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Reader.
func (Reader) TableName() string { return "readers" }

// Discussion is a thread opened by a reader. The three counters are
// denormalised: LikeCount and CommentCount always equal the number of child
// rows, and every change to them happens in the same transaction as the
// child insert or delete.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - AuthorName: snapshot of the author's display name at creation time.
//   - IsAnswered: set by the first comment and never cleared.
//   - UpdatedAt: bumped when a comment is added; view counts do not touch it.
//   - SearchText: SearchKey of title and content, maintained by BeforeSave.
type Discussion struct {
	ID           string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Title        string    `json:"title"       gorm:"type:varchar(255);not null"`
	Content      string    `json:"content"     gorm:"type:text;not null"`
	Category     string    `json:"category"    gorm:"type:varchar(32);not null;index:idx_discussions_category"`
	AuthorID     string    `json:"author_id"   gorm:"type:varchar(64);not null;index:idx_discussions_author"`
	AuthorName   string    `json:"author_name" gorm:"type:varchar(255);not null"`
	LikeCount    int64     `json:"likes"          gorm:"not null;default:0;check:chk_discussions_likes,like_count >= 0"`
	CommentCount int64     `json:"comments_count" gorm:"not null;default:0;check:chk_discussions_comments,comment_count >= 0"`
	ViewCount    int64     `json:"views"          gorm:"not null;default:0;check:chk_discussions_views,view_count >= 0"`
	IsAnswered   bool      `json:"is_answered" gorm:"not null;index:idx_discussions_answered"`
	CreatedAt    time.Time `json:"created_at"  gorm:"index:idx_discussions_created"`
	UpdatedAt    time.Time `json:"updated_at"`
	SearchText   string    `json:"-"           gorm:"type:text;not null;default:''"`
}

// TableName returns the database table name for Discussion.
func (Discussion) TableName() string { return "discussions" }

// Comment is an append-only reply inside a discussion. Comments are
// cascade-deleted with their discussion.
type Comment struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	DiscussionID string    `json:"discussion_id" gorm:"type:char(36);not null;index:idx_comments_discussion,priority:1"`
	AuthorID     string    `json:"author_id"     gorm:"type:varchar(64);not null"`
	AuthorName   string    `json:"author_name"   gorm:"type:varchar(255);not null"`
	Content      string    `json:"content"       gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"    gorm:"index:idx_comments_discussion,priority:2"`

	Discussion Discussion `json:"-" gorm:"foreignKey:DiscussionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "discussion_comments" }

// Like records that a reader liked a discussion. At most one row exists per
// (discussion_id, user_id), enforced by a unique index.
type Like struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	DiscussionID string    `json:"discussion_id" gorm:"type:char(36);not null;uniqueIndex:ux_like_discussion_user,priority:1"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_like_discussion_user,priority:2;index:idx_likes_user"`
	CreatedAt    time.Time `json:"created_at"`

	Discussion Discussion `json:"-" gorm:"foreignKey:DiscussionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "discussion_likes" }

// Presence is the last known online state of a member. Rows are created on
// the first update and upserted afterwards.
type Presence struct {
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);primaryKey"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255);not null"`
	IsOnline    bool      `json:"is_online"    gorm:"not null;index:idx_presence_online,priority:1"`
	UpdatedAt   time.Time `json:"updated_at"   gorm:"autoUpdateTime:false;index:idx_presence_online,priority:2"`
}

// TableName returns the database table name for Presence.
func (Presence) TableName() string { return "member_presence" }
