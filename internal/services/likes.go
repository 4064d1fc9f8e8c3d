package services

import (
	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/metrics"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeState is the viewer's like state after a toggle
type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

type likeTarget struct {
	kind   string
	column string
	model  func() interface{}
	newRow func(itemID, userID uuid.UUID) interface{}
}

var (
	postLikes = likeTarget{
		kind:   "post",
		column: "post_id",
		model:  func() interface{} { return &models.PostLike{} },
		newRow: func(itemID, userID uuid.UUID) interface{} {
			return &models.PostLike{PostID: itemID, UserID: userID}
		},
	}
	commentLikes = likeTarget{
		kind:   "comment",
		column: "comment_id",
		model:  func() interface{} { return &models.CommentLike{} },
		newRow: func(itemID, userID uuid.UUID) interface{} {
			return &models.CommentLike{CommentID: itemID, UserID: userID}
		},
	}
)

// TogglePostLike flips the user's like on a post, or sets it when desired is given
func TogglePostLike(db *gorm.DB, courseID, postID, userID uuid.UUID, desired *bool) (LikeState, error) {
	var state LikeState
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ? AND course_id = ?", postID, courseID).Count(&count).Error; err != nil {
			return types.Infrastructure("like.lookup", err)
		}
		if count == 0 {
			return types.NotFound("post.not_found", "Post not found")
		}
		var err error
		state, err = toggleLike(tx, postLikes, postID, userID, desired)
		return err
	})
	return state, err
}

// ToggleCommentLike flips the user's like on a comment, or sets it when desired is given
func ToggleCommentLike(db *gorm.DB, courseID, postID, commentID, userID uuid.UUID, desired *bool) (LikeState, error) {
	var state LikeState
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Comment{}).
			Joins("JOIN posts ON posts.id = comments.post_id").
			Where("comments.id = ? AND comments.post_id = ? AND posts.course_id = ?", commentID, postID, courseID).
			Count(&count).Error
		if err != nil {
			return types.Infrastructure("like.lookup", err)
		}
		if count == 0 {
			return types.NotFound("comment.not_found", "Comment not found")
		}
		state, err = toggleLike(tx, commentLikes, commentID, userID, desired)
		return err
	})
	return state, err
}

// toggleLike relies on the unique (item, user) index: a concurrent insert of the
// same like is ignored rather than counted twice.
func toggleLike(tx *gorm.DB, target likeTarget, itemID, userID uuid.UUID, desired *bool) (LikeState, error) {
	var liked bool

	switch {
	case desired != nil && !*desired:
		if err := unlike(tx, target, itemID, userID); err != nil {
			return LikeState{}, err
		}
	case desired != nil && *desired:
		if err := like(tx, target, itemID, userID); err != nil {
			return LikeState{}, err
		}
		liked = true
	default:
		res := tx.Where(target.column+" = ? AND user_id = ?", itemID, userID).Delete(target.model())
		if res.Error != nil {
			return LikeState{}, types.Infrastructure("like.delete", res.Error)
		}
		if res.RowsAffected == 0 {
			if err := like(tx, target, itemID, userID); err != nil {
				return LikeState{}, err
			}
			liked = true
		}
	}

	var count int64
	if err := tx.Model(target.model()).Where(target.column+" = ?", itemID).Count(&count).Error; err != nil {
		return LikeState{}, types.Infrastructure("like.count", err)
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	metrics.LikeToggles.WithLabelValues(target.kind, state).Inc()

	return LikeState{Liked: liked, LikesCount: count}, nil
}

func like(tx *gorm.DB, target likeTarget, itemID, userID uuid.UUID) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: target.column}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(target.newRow(itemID, userID)).Error
	if err != nil && !isDuplicate(err) {
		return types.Infrastructure("like.create", err)
	}
	return nil
}

func unlike(tx *gorm.DB, target likeTarget, itemID, userID uuid.UUID) error {
	if err := tx.Where(target.column+" = ? AND user_id = ?", itemID, userID).Delete(target.model()).Error; err != nil {
		return types.Infrastructure("like.delete", err)
	}
	return nil
}
