package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"gorm.io/gorm"
)

type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
	events   FeedEvents
}

func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository, events FeedEvents) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		events:   events,
	}
}

// CreateComment stores the comment and fires the comment-created event exactly once.
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundMessage("Post not found.")
	}
	if err != nil {
		return nil, err
	}

	content, err := cleanContent(req.Content, models.MaxCommentContentLength)
	if err != nil {
		return nil, err
	}

	commenter, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("loading commenter: %w", err)
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: authorID,
		Content:  content,
		// Postgres keeps microseconds; truncating keeps the stored and in-memory
		// timestamps equal for the previous-comment lookup.
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	comment.Author = commenter

	s.events.OnCommentCreated(ctx, comment, post, commenter)
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundMessage("Post not found.")
		}
		return nil, err
	}
	return s.comments.GetCommentsByPostID(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, id, userID uint, req models.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.getOwnComment(ctx, id, userID, "edit")
	if err != nil {
		return nil, err
	}

	content, err := cleanContent(req.Content, models.MaxCommentContentLength)
	if err != nil {
		return nil, err
	}
	comment.Content = content

	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	s.events.OnCommentUpdated(ctx, comment)
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, id, userID uint) error {
	if _, err := s.getOwnComment(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

func (s *CommentService) getOwnComment(ctx context.Context, id, userID uint, verb string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundMessage("Comment not found.")
	}
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, apperror.Forbidden(fmt.Sprintf("You do not have permission to %s this comment.", verb))
	}
	return comment, nil
}
