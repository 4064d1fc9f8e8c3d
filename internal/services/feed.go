package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// AnonymousUser is shown when an anonymous author has no display name at all
const AnonymousUser = "Anonymous User"

// FeedAuthor is the author as seen by the viewer
type FeedAuthor struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Image    string    `json:"image,omitempty"`
	Avatar   string    `json:"avatar,omitempty"`
	IsMasked bool      `json:"isMasked"`
}

// FeedReply is a reply under a comment
type FeedReply struct {
	ID          uuid.UUID  `json:"id"`
	CommentID   uuid.UUID  `json:"commentId"`
	Content     string     `json:"content"`
	IsAnonymous bool       `json:"isAnonymous"`
	CreatedAt   time.Time  `json:"createdAt"`
	Author      FeedAuthor `json:"user"`
}

// FeedComment is a comment with its replies and likes
type FeedComment struct {
	ID              uuid.UUID   `json:"id"`
	PostID          uuid.UUID   `json:"postId"`
	Content         string      `json:"content"`
	IsAnonymous     bool        `json:"isAnonymous"`
	CreatedAt       time.Time   `json:"createdAt"`
	Author          FeedAuthor  `json:"user"`
	LikesCount      int64       `json:"likesCount"`
	IsLikedByViewer bool        `json:"isLiked"`
	Replies         []FeedReply `json:"replies"`
}

// FeedPost is a post with its full comment tree and likes
type FeedPost struct {
	ID               uuid.UUID     `json:"id"`
	CourseID         uuid.UUID     `json:"courseId"`
	Title            string        `json:"title"`
	ContentType      string        `json:"contentType"`
	TextContent      string        `json:"textContent,omitempty"`
	MediaURL         string        `json:"mediaUrl,omitempty"`
	MediaAlt         string        `json:"mediaAlt,omitempty"`
	LinkURL          string        `json:"linkUrl,omitempty"`
	LinkDescription  string        `json:"linkDescription,omitempty"`
	LinkPreviewImage string        `json:"linkPreviewImage,omitempty"`
	IsAnonymous      bool          `json:"isAnonymous"`
	CreatedAt        time.Time     `json:"createdAt"`
	Author           FeedAuthor    `json:"user"`
	LikesCount       int64         `json:"likesCount"`
	IsLikedByViewer  bool          `json:"isLiked"`
	Comments         []FeedComment `json:"comments"`
}

type idTotal struct {
	ItemID uuid.UUID
	Total  int64
}

// GetCourseFeed assembles the discussion feed of a course for one viewer.
// Every level is ordered newest first, like state is relative to viewerID and
// anonymous authors are masked.
func GetCourseFeed(db *gorm.DB, courseID, viewerID uuid.UUID) ([]FeedPost, error) {
	if _, err := loadCourse(db, courseID); err != nil {
		return nil, err
	}

	q := quiet(db)

	postQuery := q.Where("course_id = ?", courseID)
	if db.Dialector.Name() == "mysql" {
		postQuery = postQuery.Clauses(hints.UseIndex(models.PostCourseCreatedIndex))
	}
	var posts []models.Post
	if err := postQuery.Order("created_at desc").Order("id desc").Find(&posts).Error; err != nil {
		return nil, types.Infrastructure("feed.posts", err)
	}
	if len(posts) == 0 {
		return []FeedPost{}, nil
	}

	postIDs := make([]uuid.UUID, 0, len(posts))
	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.UserID)
	}

	var comments []models.Comment
	if err := q.Where("post_id IN ?", postIDs).Order("created_at desc").Order("id desc").Find(&comments).Error; err != nil {
		return nil, types.Infrastructure("feed.comments", err)
	}
	commentIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		authorIDs = append(authorIDs, c.UserID)
	}

	var replies []models.CommentReply
	if len(commentIDs) > 0 {
		if err := q.Where("comment_id IN ?", commentIDs).Order("created_at desc").Order("id desc").Find(&replies).Error; err != nil {
			return nil, types.Infrastructure("feed.replies", err)
		}
	}
	for _, r := range replies {
		authorIDs = append(authorIDs, r.UserID)
	}

	authors, err := loadAuthors(q, authorIDs)
	if err != nil {
		return nil, err
	}

	postLikes, postLiked, err := likeState(q, &models.PostLike{}, "post_id", postIDs, viewerID)
	if err != nil {
		return nil, err
	}
	commentLikes, commentLiked, err := likeState(q, &models.CommentLike{}, "comment_id", commentIDs, viewerID)
	if err != nil {
		return nil, err
	}

	repliesByComment := make(map[uuid.UUID][]FeedReply, len(comments))
	for _, r := range replies {
		repliesByComment[r.CommentID] = append(repliesByComment[r.CommentID], FeedReply{
			ID:          r.ID,
			CommentID:   r.CommentID,
			Content:     r.Content,
			IsAnonymous: r.IsAnonymous,
			CreatedAt:   r.CreatedAt,
			Author:      presentAuthor(r.UserID, authors, r.IsAnonymous),
		})
	}

	commentsByPost := make(map[uuid.UUID][]FeedComment, len(posts))
	for _, c := range comments {
		rs := repliesByComment[c.ID]
		if rs == nil {
			rs = []FeedReply{}
		}
		commentsByPost[c.PostID] = append(commentsByPost[c.PostID], FeedComment{
			ID:              c.ID,
			PostID:          c.PostID,
			Content:         c.Content,
			IsAnonymous:     c.IsAnonymous,
			CreatedAt:       c.CreatedAt,
			Author:          presentAuthor(c.UserID, authors, c.IsAnonymous),
			LikesCount:      commentLikes[c.ID],
			IsLikedByViewer: commentLiked[c.ID],
			Replies:         rs,
		})
	}

	feed := make([]FeedPost, 0, len(posts))
	for _, p := range posts {
		cs := commentsByPost[p.ID]
		if cs == nil {
			cs = []FeedComment{}
		}
		feed = append(feed, FeedPost{
			ID:               p.ID,
			CourseID:         p.CourseID,
			Title:            p.Title,
			ContentType:      p.ContentType,
			TextContent:      p.TextContent,
			MediaURL:         p.MediaURL,
			MediaAlt:         p.MediaAlt,
			LinkURL:          p.LinkURL,
			LinkDescription:  p.LinkDescription,
			LinkPreviewImage: p.LinkPreviewImage,
			IsAnonymous:      p.IsAnonymous,
			CreatedAt:        p.CreatedAt,
			Author:           presentAuthor(p.UserID, authors, p.IsAnonymous),
			LikesCount:       postLikes[p.ID],
			IsLikedByViewer:  postLiked[p.ID],
			Comments:         cs,
		})
	}

	return feed, nil
}

func loadAuthors(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	authors := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}
	var users []models.User
	err := db.Select("id", "full_name", "anonymous_name", "anonymous_avatar", "profile_pic_url").
		Where("id IN ?", uniqueIDs(ids)).
		Find(&users).Error
	if err != nil {
		return nil, types.Infrastructure("feed.authors", err)
	}
	for _, u := range users {
		authors[u.ID] = u
	}
	return authors, nil
}

// likeState returns the like count per item and the set of items liked by viewer
func likeState(db *gorm.DB, model interface{}, column string, ids []uuid.UUID, viewerID uuid.UUID) (map[uuid.UUID]int64, map[uuid.UUID]bool, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	liked := make(map[uuid.UUID]bool)
	if len(ids) == 0 {
		return counts, liked, nil
	}

	var totals []idTotal
	err := db.Model(model).
		Select(column+" AS item_id, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&totals).Error
	if err != nil {
		return nil, nil, types.Infrastructure("feed.likes", err)
	}
	for _, t := range totals {
		counts[t.ItemID] = t.Total
	}

	if viewerID == uuid.Nil {
		return counts, liked, nil
	}
	var mine []uuid.UUID
	err = db.Model(model).
		Where("user_id = ? AND "+column+" IN ?", viewerID, ids).
		Pluck(column, &mine).Error
	if err != nil {
		return nil, nil, types.Infrastructure("feed.likes", err)
	}
	for _, id := range mine {
		liked[id] = true
	}
	return counts, liked, nil
}

// presentAuthor applies anonymization. The author id is kept so clients can
// still tell their own content apart.
func presentAuthor(id uuid.UUID, authors map[uuid.UUID]models.User, anonymous bool) FeedAuthor {
	u, ok := authors[id]
	if !anonymous {
		return FeedAuthor{ID: id, Name: u.FullName, Image: u.ProfilePicURL}
	}

	author := FeedAuthor{ID: id, Avatar: u.AnonymousAvatar, IsMasked: true}
	switch {
	case !ok:
		author.Name = AnonymousUser
	case u.AnonymousName != "":
		author.Name = u.AnonymousName
	default:
		author.Name = MaskName(u.FullName)
	}
	return author
}

// MaskName reduces a full name to initials, e.g. "Jean Bosco" becomes "J*** B***"
func MaskName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return AnonymousUser
	}
	masked := make([]string, 0, len(parts))
	for _, p := range parts {
		first := []rune(p)[0]
		masked = append(masked, string(unicode.ToUpper(first))+"***")
	}
	return strings.Join(masked, " ")
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
