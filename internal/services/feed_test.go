package services_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
)

type feedFixture struct {
	db     *gorm.DB
	course models.Course
	author models.User
	viewer models.User
	base   time.Time
}

func newFeedFixture(t *testing.T) feedFixture {
	t.Helper()
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	return feedFixture{
		db:     db,
		course: testutil.SeedCourse(t, db, admin, "Soil basics"),
		author: testutil.SeedUser(t, db, "Claudine Mukamana", models.UserTypeFarmer),
		viewer: testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer),
		base:   time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f feedFixture) post(t *testing.T, title string, anonymous bool, minute int) models.Post {
	t.Helper()
	p := models.Post{
		CourseID:    f.course.ID,
		UserID:      f.author.ID,
		Title:       title,
		ContentType: "text",
		TextContent: "Field notes for " + title,
		IsAnonymous: anonymous,
		CreatedAt:   f.base.Add(time.Duration(minute) * time.Minute),
	}
	if err := f.db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

func (f feedFixture) comment(t *testing.T, post models.Post, user models.User, content string, minute int) models.Comment {
	t.Helper()
	c := models.Comment{PostID: post.ID, UserID: user.ID, Content: content}
	c.CreatedAt = f.base.Add(time.Duration(minute) * time.Minute)
	if err := f.db.Create(&c).Error; err != nil {
		t.Fatal(err)
	}
	return c
}

func (f feedFixture) reply(t *testing.T, comment models.Comment, user models.User, content string, anonymous bool, minute int) models.CommentReply {
	t.Helper()
	r := models.CommentReply{CommentID: comment.ID, UserID: user.ID, Content: content, IsAnonymous: anonymous}
	r.CreatedAt = f.base.Add(time.Duration(minute) * time.Minute)
	if err := f.db.Create(&r).Error; err != nil {
		t.Fatal(err)
	}
	return r
}

func TestGetCourseFeedOrderingAndAnonymity(t *testing.T) {
	f := newFeedFixture(t)
	older := f.post(t, "Older", false, 1)
	newer := f.post(t, "Newer", true, 2)

	first := f.comment(t, older, f.viewer, "first comment", 3)
	second := f.comment(t, older, f.author, "second comment", 4)
	f.reply(t, first, f.author, "early reply", true, 5)
	f.reply(t, first, f.viewer, "late reply", false, 6)

	if _, err := services.TogglePostLike(f.db, f.course.ID, older.ID, f.viewer.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := services.ToggleCommentLike(f.db, f.course.ID, older.ID, second.ID, f.author.ID, nil); err != nil {
		t.Fatal(err)
	}

	feed, err := services.GetCourseFeed(f.db, f.course.ID, f.viewer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 || feed[0].ID != newer.ID || feed[1].ID != older.ID {
		t.Fatalf("posts must be newest first: %+v", feed)
	}

	anon := feed[0].Author
	if !anon.IsMasked || anon.Name != f.author.AnonymousName || anon.Image != "" || anon.Avatar != f.author.AnonymousAvatar {
		t.Errorf("anonymous author leaked or malformed: %+v", anon)
	}
	if named := feed[1].Author; named.IsMasked || named.Name != "Claudine Mukamana" {
		t.Errorf("named author %+v", named)
	}

	if !feed[1].IsLikedByViewer || feed[1].LikesCount != 1 || feed[0].LikesCount != 0 {
		t.Errorf("post like state wrong: %+v / %+v", feed[0], feed[1])
	}

	comments := feed[1].Comments
	if len(comments) != 2 || comments[0].ID != second.ID || comments[1].ID != first.ID {
		t.Fatalf("comments must be newest first: %+v", comments)
	}
	if comments[0].LikesCount != 1 || comments[0].IsLikedByViewer {
		t.Errorf("comment like state is relative to the viewer: %+v", comments[0])
	}
	replies := comments[1].Replies
	if len(replies) != 2 || replies[0].Content != "late reply" || !replies[1].Author.IsMasked {
		t.Errorf("replies %+v", replies)
	}
	if feed[0].Comments == nil || comments[0].Replies == nil {
		t.Error("empty levels must be empty slices, not nil")
	}
}

func TestGetCourseFeedEmptyAndMissing(t *testing.T) {
	f := newFeedFixture(t)

	feed, err := services.GetCourseFeed(f.db, f.course.ID, f.viewer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if feed == nil || len(feed) != 0 {
		t.Errorf("expected an empty feed, got %v", feed)
	}

	if _, err := services.GetCourseFeed(f.db, uuid.New(), f.viewer.ID); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("missing course: got %v", err)
	}
}

func TestPresentAuthorFallbacks(t *testing.T) {
	f := newFeedFixture(t)
	if err := f.db.Model(&f.author).Update("anonymous_name", "").Error; err != nil {
		t.Fatal(err)
	}
	f.post(t, "Masked", true, 1)

	feed, err := services.GetCourseFeed(f.db, f.course.ID, f.viewer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if feed[0].Author.Name != "C*** M***" {
		t.Errorf("expected initials, got %q", feed[0].Author.Name)
	}

	if err := f.db.Delete(&models.User{}, "id = ?", f.author.ID).Error; err != nil {
		t.Fatal(err)
	}
	feed, err = services.GetCourseFeed(f.db, f.course.ID, f.viewer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if feed[0].Author.Name != services.AnonymousUser {
		t.Errorf("deleted anonymous author shows %q", feed[0].Author.Name)
	}
}

func TestMaskName(t *testing.T) {
	tests := map[string]string{
		"Jean Bosco":      "J*** B***",
		"  aline   uwase": "A*** U***",
		"":                services.AnonymousUser,
		"Émile":           "É***",
	}
	for in, want := range tests {
		if got := services.MaskName(in); got != want {
			t.Errorf("MaskName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTogglePostLike(t *testing.T) {
	f := newFeedFixture(t)
	p := f.post(t, "Likeable", false, 1)

	state, err := services.TogglePostLike(f.db, f.course.ID, p.ID, f.viewer.ID, nil)
	if err != nil || !state.Liked || state.LikesCount != 1 {
		t.Fatalf("first toggle: %+v %v", state, err)
	}
	state, err = services.TogglePostLike(f.db, f.course.ID, p.ID, f.viewer.ID, nil)
	if err != nil || state.Liked || state.LikesCount != 0 {
		t.Fatalf("second toggle: %+v %v", state, err)
	}
	state, err = services.TogglePostLike(f.db, f.course.ID, p.ID, f.viewer.ID, boolPtr(false))
	if err != nil || state.Liked || state.LikesCount != 0 {
		t.Fatalf("unlike when not liked: %+v %v", state, err)
	}

	other := testutil.SeedCourse(t, f.db, f.author, "Irrigation")
	if _, err := services.TogglePostLike(f.db, other.ID, p.ID, f.viewer.ID, nil); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("post of another course: got %v", err)
	}
}

func TestToggleCommentLikeScopedToCourse(t *testing.T) {
	f := newFeedFixture(t)
	p := f.post(t, "Mulching", false, 1)
	c := f.comment(t, p, f.author, "straw works well", 2)

	state, err := services.ToggleCommentLike(f.db, f.course.ID, p.ID, c.ID, f.viewer.ID, nil)
	if err != nil || !state.Liked || state.LikesCount != 1 {
		t.Fatalf("like: %+v %v", state, err)
	}

	other := testutil.SeedCourse(t, f.db, f.author, "Irrigation")
	if _, err := services.ToggleCommentLike(f.db, other.ID, p.ID, c.ID, f.viewer.ID, nil); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("comment through another course: got %v", err)
	}

	var count int64
	if err := f.db.Model(&models.CommentLike{}).Where("comment_id = ?", c.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected one like row, got %d", count)
	}
}

func TestConcurrentLikesCountOnce(t *testing.T) {
	f := newFeedFixture(t)
	p := f.post(t, "Popular", false, 1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := services.TogglePostLike(f.db, f.course.ID, p.ID, f.viewer.ID, boolPtr(true)); err != nil {
				t.Errorf("like: %v", err)
			}
		}()
	}
	wg.Wait()

	var count int64
	if err := f.db.Model(&models.PostLike{}).Where("post_id = ?", p.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected one like row, got %d", count)
	}
}

type fakeUploader struct {
	folders []string
	body    string
}

func (u *fakeUploader) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.folders = append(u.folders, folder)
	u.body = string(b)
	return "https://media.example/" + folder + "/" + filename, nil
}

func TestCreatePost(t *testing.T) {
	f := newFeedFixture(t)
	actor := learnerActor(f.author)
	uploader := &fakeUploader{}

	_, err := services.CreatePost(context.Background(), f.db, uploader, actor, f.course.ID, services.PostInput{Title: "Empty", ContentType: "text"})
	if ce, ok := types.AsCustomError(err); !ok || ce.Fields["textContent"] == "" {
		t.Errorf("text without content: got %v", err)
	}

	_, err = services.CreatePost(context.Background(), f.db, uploader, actor, f.course.ID, services.PostInput{Title: "Photo", ContentType: "image"})
	if ce, ok := types.AsCustomError(err); !ok || ce.Fields["media"] == "" {
		t.Errorf("image without a file: got %v", err)
	}

	_, err = services.CreatePost(context.Background(), f.db, nil, actor, f.course.ID, services.PostInput{
		Title:       "Photo",
		ContentType: "image",
		Media:       &services.MediaFile{Name: "leaf.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("jpeg")},
	})
	if !types.IsKind(err, types.KindInfrastructure) {
		t.Errorf("no uploader configured: got %v", err)
	}

	post, err := services.CreatePost(context.Background(), f.db, uploader, actor, f.course.ID, services.PostInput{
		Title:       "Photo",
		ContentType: "image",
		IsAnonymous: true,
		Media:       &services.MediaFile{Name: "leaf.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("jpeg")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if post.MediaURL != "https://media.example/posts/images/leaf.jpg" || uploader.body != "jpeg" {
		t.Errorf("media not stored: %+v", post)
	}
	if !post.Author.IsMasked || post.Author.Name != f.author.AnonymousName {
		t.Errorf("author %+v", post.Author)
	}
}

func TestListRepliesPagination(t *testing.T) {
	f := newFeedFixture(t)
	p := f.post(t, "Question", false, 1)
	c := f.comment(t, p, f.viewer, "answer", 2)
	for i := 0; i < 12; i++ {
		f.reply(t, c, f.viewer, fmt.Sprintf("reply %02d", i), false, 3+i)
	}

	page, err := services.ListReplies(f.db, p.ID, c.ID, services.PageRequest{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Replies) != services.DefaultRepliesLimit || !page.HasMore || page.TotalCount != 12 || page.TotalPages != 2 {
		t.Errorf("first page %+v", page)
	}
	if page.Replies[0].Content != "reply 11" {
		t.Errorf("replies must be newest first, got %q", page.Replies[0].Content)
	}

	page, err = services.ListReplies(f.db, p.ID, c.ID, services.PageRequest{Page: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Replies) != 2 || page.HasMore || page.Replies[1].Content != "reply 00" {
		t.Errorf("second page %+v", page)
	}

	other := f.post(t, "Other", false, 30)
	if _, err := services.ListReplies(f.db, other.ID, c.ID, services.PageRequest{}); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("comment of another post: got %v", err)
	}
}

func TestPopularPostsTopsUpWithNewest(t *testing.T) {
	f := newFeedFixture(t)
	liked := f.post(t, "Liked", false, 1)
	for i := 0; i < services.PopularPostsLimit+2; i++ {
		f.post(t, fmt.Sprintf("Plain %d", i), false, 10+i)
	}
	if _, err := services.TogglePostLike(f.db, f.course.ID, liked.ID, f.viewer.ID, nil); err != nil {
		t.Fatal(err)
	}

	posts, err := services.PopularPosts(f.db, f.viewer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != services.PopularPostsLimit {
		t.Fatalf("expected %d posts, got %d", services.PopularPostsLimit, len(posts))
	}
	if posts[0].ID != liked.ID || !posts[0].IsLikedByViewer {
		t.Errorf("most liked post must lead: %+v", posts[0])
	}
	want := fmt.Sprintf("Plain %d", services.PopularPostsLimit+1)
	if posts[1].Title != want {
		t.Errorf("top-up must start from the newest post, got %q want %q", posts[1].Title, want)
	}
}
