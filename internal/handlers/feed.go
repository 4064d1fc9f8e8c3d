package handlers

import (
	"bytes"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/utils"
)

// FeedHandler handles course discussions
type FeedHandler struct {
	*Deps
}

// LikeInput optionally sets the like state instead of toggling it
type LikeInput struct {
	Liked *bool `json:"liked"`
}

// GetFeed handles GET /api/courses/:id/posts
// @Summary Course discussion feed
// @Description Posts, comments and replies newest first, with like counts relative to the caller.
// @Description Anonymous authors are shown by their anonymous identity.
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts [get]
func (h *FeedHandler) GetFeed(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	feed, err := services.GetCourseFeed(h.DB, courseID, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Posts retrieved successfully", feed)
}

// CreatePost handles POST /api/courses/:id/posts
// @Summary Create a post
// @Description JSON for text and link posts, multipart/form-data with a "media" file for image,
// @Description video and audio posts, and an optional "linkPreviewImage" file for link posts.
// @Tags Feed
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body services.PostInput true "Post"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts [post]
func (h *FeedHandler) CreatePost(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var in services.PostInput
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if in, err = postFromForm(c); err != nil {
			return err
		}
	} else if err := parseBody(c, &in); err != nil {
		return err
	}

	actor := middleware.ActorFrom(c)
	post, err := services.CreatePost(c.UserContext(), h.DB, h.Uploader, actor, courseID, in)
	if err != nil {
		return err
	}
	publish(c.UserContext(), h.Events, h.Log, events.New(events.PostCreated, map[string]interface{}{
		"postId":      post.ID,
		"courseId":    courseID,
		"contentType": post.ContentType,
	}))
	return utils.DataResponse(c, fiber.StatusCreated, "Post created successfully", post)
}

func postFromForm(c *fiber.Ctx) (services.PostInput, error) {
	anonymous, _ := strconv.ParseBool(c.FormValue("isAnonymous"))
	in := services.PostInput{
		Title:           c.FormValue("title"),
		ContentType:     c.FormValue("contentType"),
		TextContent:     c.FormValue("textContent"),
		MediaAlt:        c.FormValue("mediaAlt"),
		LinkURL:         c.FormValue("linkUrl"),
		LinkDescription: c.FormValue("linkDescription"),
		IsAnonymous:     anonymous,
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, types.ValidationFailed("post.validation", "Invalid multipart form", nil)
	}
	if in.Media, err = formFile(form, "media"); err != nil {
		return in, err
	}
	if in.LinkPreview, err = formFile(form, "linkPreviewImage"); err != nil {
		return in, err
	}
	return in, nil
}

// formFile reads an optional multipart file fully into memory. Fiber bounds
// the request size, so the file is never larger than the body limit.
func formFile(form *multipart.Form, field string) (*services.MediaFile, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return readFile(files[0])
}

func readFile(fh *multipart.FileHeader) (*services.MediaFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, types.Infrastructure("media.read", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, types.Infrastructure("media.read", err)
	}
	contentType := fh.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &services.MediaFile{Name: fh.Filename, ContentType: contentType, Reader: &buf}, nil
}

// TogglePostLike handles POST /api/courses/:id/posts/:postId/likes
// @Summary Like or unlike a post
// @Description Toggles the caller's like, or sets it when "liked" is given.
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param postId path string true "Post ID"
// @Param body body LikeInput false "Desired state"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts/{postId}/likes [post]
func (h *FeedHandler) TogglePostLike(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	in, err := likeInput(c)
	if err != nil {
		return err
	}
	state, err := services.TogglePostLike(h.DB, courseID, postID, middleware.ActorFrom(c).UserID, in.Liked)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, likeMessage(state), state)
}

// CreateComment handles POST /api/courses/:id/posts/:postId/comments
// @Summary Comment on a post
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param postId path string true "Post ID"
// @Param body body services.CommentInput true "Comment"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts/{postId}/comments [post]
func (h *FeedHandler) CreateComment(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	var in services.CommentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	comment, err := services.CreateComment(h.DB, middleware.ActorFrom(c), courseID, postID, in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Comment created successfully", comment)
}

// ToggleCommentLike handles POST /api/courses/:id/posts/:postId/comments/:commentId/likes
// @Summary Like or unlike a comment
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param postId path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Param body body LikeInput false "Desired state"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts/{postId}/comments/{commentId}/likes [post]
func (h *FeedHandler) ToggleCommentLike(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	in, err := likeInput(c)
	if err != nil {
		return err
	}
	state, err := services.ToggleCommentLike(h.DB, courseID, postID, commentID, middleware.ActorFrom(c).UserID, in.Liked)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, likeMessage(state), state)
}

// ListReplies handles GET /api/courses/:id/posts/:postId/comments/:commentId/replies
// @Summary Page through a comment's replies
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param postId path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts/{postId}/comments/{commentId}/replies [get]
func (h *FeedHandler) ListReplies(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	page, err := services.ListReplies(h.DB, postID, commentID, parsePage(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Replies retrieved successfully", page)
}

// CreateReply handles POST /api/courses/:id/posts/:postId/comments/:commentId/replies
// @Summary Reply to a comment
// @Tags Feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param postId path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Param body body services.CommentInput true "Reply"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /courses/{id}/posts/{postId}/comments/{commentId}/replies [post]
func (h *FeedHandler) CreateReply(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	var in services.CommentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	reply, err := services.CreateReply(h.DB, middleware.ActorFrom(c), postID, commentID, in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Reply created successfully", reply)
}

// PopularPosts handles GET /api/popularposts
// @Summary The three most liked posts
// @Tags Feed
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /popularposts [get]
func (h *FeedHandler) PopularPosts(c *fiber.Ctx) error {
	posts, err := services.PopularPosts(h.DB, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Popular posts retrieved successfully", posts)
}

func likeInput(c *fiber.Ctx) (LikeInput, error) {
	var in LikeInput
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return in, nil
	}
	return in, parseBody(c, &in)
}

func likeMessage(state services.LikeState) string {
	if state.Liked {
		return "Liked successfully"
	}
	return "Unliked successfully"
}
