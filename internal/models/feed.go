package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post content types
var PostContentTypes = []string{"text", "image", "video", "audio", "link"}

// PostCourseCreatedIndex backs the newest-first feed query
const PostCourseCreatedIndex = "idx_posts_course_created"

// Post is a course discussion post. It declares its own timestamps so the
// (course_id, created_at) index can be named.
type Post struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CourseID         uuid.UUID `gorm:"type:char(36);not null;index:idx_posts_course_created,priority:1" json:"courseId"`
	UserID           uuid.UUID `gorm:"type:char(36);index;not null" json:"userId"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	ContentType      string    `gorm:"size:16;not null" json:"contentType"`
	TextContent      string    `gorm:"size:4000" json:"textContent,omitempty"`
	MediaURL         string    `gorm:"size:1024" json:"mediaUrl,omitempty"`
	MediaAlt         string    `gorm:"size:255" json:"mediaAlt,omitempty"`
	LinkURL          string    `gorm:"size:1024" json:"linkUrl,omitempty"`
	LinkDescription  string    `gorm:"size:1000" json:"linkDescription,omitempty"`
	LinkPreviewImage string    `gorm:"size:1024" json:"linkPreviewImage,omitempty"`
	IsAnonymous      bool      `gorm:"not null" json:"isAnonymous"`
	CreatedAt        time.Time `gorm:"index:idx_posts_course_created,priority:2" json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a new id when none was set
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Comment belongs to a post
type Comment struct {
	Base
	PostID      uuid.UUID `gorm:"type:char(36);index;not null" json:"postId"`
	UserID      uuid.UUID `gorm:"type:char(36);not null" json:"userId"`
	Content     string    `gorm:"size:2000;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null" json:"isAnonymous"`
}

// CommentReply belongs to a comment
type CommentReply struct {
	Base
	CommentID   uuid.UUID `gorm:"type:char(36);index;not null" json:"commentId"`
	UserID      uuid.UUID `gorm:"type:char(36);not null" json:"userId"`
	Content     string    `gorm:"size:2000;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null" json:"isAnonymous"`
}

// PostLike exists while the user likes the post
type PostLike struct {
	Base
	PostID uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_post_like_user;not null" json:"postId"`
	UserID uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_post_like_user;not null" json:"userId"`
}

// CommentLike exists while the user likes the comment
type CommentLike struct {
	Base
	CommentID uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_comment_like_user;not null" json:"commentId"`
	UserID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_comment_like_user;not null" json:"userId"`
}
