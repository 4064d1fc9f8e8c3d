package services

import (
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"gorm.io/gorm"
)

// PopularPostsLimit is the number of posts returned by PopularPosts
const PopularPostsLimit = 3

// DefaultRepliesLimit is the reply page size used when the caller gives none
const DefaultRepliesLimit = 10

var errMediaDisabled = errors.New("media uploads are not configured")

// MediaUploader stores a file on the media host and returns its public URL
type MediaUploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
}

// MediaFile is an uploaded file waiting to be stored
type MediaFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// PostInput is the body of a new post
type PostInput struct {
	Title           string     `json:"title" validate:"required,max=255"`
	ContentType     string     `json:"contentType" validate:"required,oneof=text image video audio link"`
	TextContent     string     `json:"textContent" validate:"max=4000"`
	MediaAlt        string     `json:"mediaAlt" validate:"max=255"`
	LinkURL         string     `json:"linkUrl" validate:"omitempty,url,max=1024"`
	LinkDescription string     `json:"linkDescription" validate:"max=1000"`
	IsAnonymous     bool       `json:"isAnonymous"`
	Media           *MediaFile `json:"-" validate:"-"`
	LinkPreview     *MediaFile `json:"-" validate:"-"`
}

// CommentInput is the body of a new comment or reply
type CommentInput struct {
	Content     string `json:"content" validate:"required,max=2000"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// ReplyPage is one page of replies under a comment
type ReplyPage struct {
	Replies     []FeedReply `json:"replies"`
	TotalCount  int64       `json:"totalCount"`
	HasMore     bool        `json:"hasMore"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
}

// CreatePost validates the post, stores any media on the media host and
// inserts it. Media is uploaded before the insert.
func CreatePost(ctx context.Context, db *gorm.DB, uploader MediaUploader, actor Actor, courseID uuid.UUID, in PostInput) (*FeedPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct("post.validation", in); err != nil {
		return nil, err
	}
	switch in.ContentType {
	case "text":
		if strings.TrimSpace(in.TextContent) == "" {
			return nil, types.ValidationFailed("post.validation", "Text posts need content",
				map[string]string{"textContent": "is required"})
		}
	case "link":
		if in.LinkURL == "" {
			return nil, types.ValidationFailed("post.validation", "Link posts need a URL",
				map[string]string{"linkUrl": "is required"})
		}
	default:
		if in.Media == nil {
			return nil, types.ValidationFailed("post.validation", "Media posts need a file",
				map[string]string{"media": "is required"})
		}
	}

	if _, err := loadCourse(db, courseID); err != nil {
		return nil, err
	}

	post := models.Post{
		CourseID:        courseID,
		UserID:          actor.UserID,
		Title:           in.Title,
		ContentType:     in.ContentType,
		TextContent:     in.TextContent,
		MediaAlt:        in.MediaAlt,
		LinkURL:         in.LinkURL,
		LinkDescription: in.LinkDescription,
		IsAnonymous:     in.IsAnonymous,
	}

	if in.Media != nil && in.ContentType != "text" && in.ContentType != "link" {
		url, err := upload(ctx, uploader, path.Join("posts", in.ContentType+"s"), in.Media)
		if err != nil {
			return nil, err
		}
		post.MediaURL = url
	}
	if in.LinkPreview != nil && in.ContentType == "link" {
		url, err := upload(ctx, uploader, "posts/link-previews", in.LinkPreview)
		if err != nil {
			return nil, err
		}
		post.LinkPreviewImage = url
	}

	if err := db.Create(&post).Error; err != nil {
		return nil, types.Infrastructure("post.create", err)
	}

	authors, err := loadAuthors(db, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, err
	}
	return &FeedPost{
		ID:               post.ID,
		CourseID:         post.CourseID,
		Title:            post.Title,
		ContentType:      post.ContentType,
		TextContent:      post.TextContent,
		MediaURL:         post.MediaURL,
		MediaAlt:         post.MediaAlt,
		LinkURL:          post.LinkURL,
		LinkDescription:  post.LinkDescription,
		LinkPreviewImage: post.LinkPreviewImage,
		IsAnonymous:      post.IsAnonymous,
		CreatedAt:        post.CreatedAt,
		Author:           presentAuthor(actor.UserID, authors, post.IsAnonymous),
		Comments:         []FeedComment{},
	}, nil
}

func upload(ctx context.Context, uploader MediaUploader, folder string, file *MediaFile) (string, error) {
	if uploader == nil {
		return "", types.Infrastructure("media.upload", errMediaDisabled)
	}
	url, err := uploader.Upload(ctx, folder, file.Name, file.ContentType, file.Reader)
	if err != nil {
		return "", types.Infrastructure("media.upload", err)
	}
	return url, nil
}

// CreateComment adds a comment to a post of the course
func CreateComment(db *gorm.DB, actor Actor, courseID, postID uuid.UUID, in CommentInput) (*FeedComment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct("comment.validation", in); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Post{}).Where("id = ? AND course_id = ?", postID, courseID).Count(&count).Error; err != nil {
		return nil, types.Infrastructure("comment.lookup", err)
	}
	if count == 0 {
		return nil, types.NotFound("post.not_found", "Post not found")
	}

	comment := models.Comment{PostID: postID, UserID: actor.UserID, Content: in.Content, IsAnonymous: in.IsAnonymous}
	if err := db.Create(&comment).Error; err != nil {
		return nil, types.Infrastructure("comment.create", err)
	}

	authors, err := loadAuthors(db, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, err
	}
	return &FeedComment{
		ID:          comment.ID,
		PostID:      comment.PostID,
		Content:     comment.Content,
		IsAnonymous: comment.IsAnonymous,
		CreatedAt:   comment.CreatedAt,
		Author:      presentAuthor(actor.UserID, authors, comment.IsAnonymous),
		Replies:     []FeedReply{},
	}, nil
}

// CreateReply adds a reply to a comment of the post
func CreateReply(db *gorm.DB, actor Actor, postID, commentID uuid.UUID, in CommentInput) (*FeedReply, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return nil, types.ValidationFailed("reply.validation", "Reply content is required",
			map[string]string{"content": "is required"})
	}
	if err := validation.Struct("reply.validation", in); err != nil {
		return nil, err
	}

	if err := commentOfPost(db, postID, commentID); err != nil {
		return nil, err
	}

	reply := models.CommentReply{CommentID: commentID, UserID: actor.UserID, Content: in.Content, IsAnonymous: in.IsAnonymous}
	if err := db.Create(&reply).Error; err != nil {
		return nil, types.Infrastructure("reply.create", err)
	}

	authors, err := loadAuthors(db, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, err
	}
	return &FeedReply{
		ID:          reply.ID,
		CommentID:   reply.CommentID,
		Content:     reply.Content,
		IsAnonymous: reply.IsAnonymous,
		CreatedAt:   reply.CreatedAt,
		Author:      presentAuthor(actor.UserID, authors, reply.IsAnonymous),
	}, nil
}

// ListReplies pages through the replies of a comment, newest first
func ListReplies(db *gorm.DB, postID, commentID uuid.UUID, req PageRequest) (*ReplyPage, error) {
	if err := commentOfPost(db, postID, commentID); err != nil {
		return nil, err
	}
	if req.Limit < 1 {
		req.Limit = DefaultRepliesLimit
	}

	q := quiet(db)
	var total int64
	if err := q.Model(&models.CommentReply{}).Where("comment_id = ?", commentID).Count(&total).Error; err != nil {
		return nil, types.Infrastructure("reply.count", err)
	}
	info, offset := resolvePage(total, req)

	var rows []models.CommentReply
	err := q.Where("comment_id = ?", commentID).
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(info.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, types.Infrastructure("reply.list", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	authors, err := loadAuthors(q, ids)
	if err != nil {
		return nil, err
	}

	replies := make([]FeedReply, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, FeedReply{
			ID:          r.ID,
			CommentID:   r.CommentID,
			Content:     r.Content,
			IsAnonymous: r.IsAnonymous,
			CreatedAt:   r.CreatedAt,
			Author:      presentAuthor(r.UserID, authors, r.IsAnonymous),
		})
	}

	return &ReplyPage{
		Replies:     replies,
		TotalCount:  total,
		HasMore:     info.HasNextPage,
		CurrentPage: info.CurrentPage,
		TotalPages:  info.TotalPages,
	}, nil
}

// PopularPosts returns the most liked posts across all courses, topped up
// with the newest posts when fewer have likes.
func PopularPosts(db *gorm.DB, viewerID uuid.UUID) ([]FeedPost, error) {
	q := quiet(db)

	var totals []idTotal
	err := q.Model(&models.PostLike{}).
		Select("post_id AS item_id, COUNT(*) AS total").
		Group("post_id").
		Order("total desc").
		Limit(PopularPostsLimit).
		Scan(&totals).Error
	if err != nil {
		return nil, types.Infrastructure("post.popular", err)
	}

	ids := make([]uuid.UUID, 0, PopularPostsLimit)
	for _, t := range totals {
		ids = append(ids, t.ItemID)
	}

	var posts []models.Post
	if len(ids) > 0 {
		if err := q.Where("id IN ?", ids).Find(&posts).Error; err != nil {
			return nil, types.Infrastructure("post.popular", err)
		}
	}
	if len(posts) < PopularPostsLimit {
		var newest []models.Post
		fill := q.Order("created_at desc").Limit(PopularPostsLimit - len(posts))
		if len(ids) > 0 {
			fill = fill.Where("id NOT IN ?", ids)
		}
		if err := fill.Find(&newest).Error; err != nil {
			return nil, types.Infrastructure("post.popular", err)
		}
		posts = append(posts, newest...)
	}

	postIDs := make([]uuid.UUID, 0, len(posts))
	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.UserID)
	}
	authors, err := loadAuthors(q, authorIDs)
	if err != nil {
		return nil, err
	}
	counts, liked, err := likeState(q, &models.PostLike{}, "post_id", postIDs, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]FeedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, FeedPost{
			ID:              p.ID,
			CourseID:        p.CourseID,
			Title:           p.Title,
			ContentType:     p.ContentType,
			TextContent:     p.TextContent,
			MediaURL:        p.MediaURL,
			MediaAlt:        p.MediaAlt,
			LinkURL:         p.LinkURL,
			IsAnonymous:     p.IsAnonymous,
			CreatedAt:       p.CreatedAt,
			Author:          presentAuthor(p.UserID, authors, p.IsAnonymous),
			LikesCount:      counts[p.ID],
			IsLikedByViewer: liked[p.ID],
			Comments:        []FeedComment{},
		})
	}
	sortByLikes(out)
	return out, nil
}

func sortByLikes(posts []FeedPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].LikesCount > posts[j].LikesCount
	})
}

func commentOfPost(db *gorm.DB, postID, commentID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return types.Infrastructure("reply.lookup", err)
	}
	if count == 0 {
		return types.NotFound("post.not_found", "Post not found")
	}

	var comment models.Comment
	if err := db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		return lookupError(err, "comment.not_found", "Comment not found")
	}
	if comment.PostID != postID {
		return types.NotFound("comment.not_found", "Comment not found")
	}
	return nil
}
