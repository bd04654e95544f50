package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"gorm.io/gorm"
)

// FeedEvents receives feed writes after they are stored.
type FeedEvents interface {
	OnPostCreated(ctx context.Context, post *models.Post)
	OnPostUpdated(ctx context.Context, post *models.Post)
	OnCommentCreated(ctx context.Context, comment *models.Comment, post *models.Post, commenter *models.User)
	OnCommentUpdated(ctx context.Context, comment *models.Comment)
}

type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	events   FeedEvents
	logger   *slog.Logger
}

func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository, events FeedEvents, logger *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		events:   events,
		logger:   logger,
	}
}

// PostPage is one page of the feed with comment counts keyed by post id.
type PostPage struct {
	Posts         []models.Post
	CommentCounts map[uint]int64
	Total         int64
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	content, err := cleanContent(req.Content, models.MaxPostContentLength)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:     authorID,
		Content:      content,
		PostType:     req.PostType,
		RelatedSkill: emptyToNil(req.RelatedSkill),
	}
	if post.PostType == "" {
		post.PostType = models.PostTypeAchievement
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	s.events.OnPostCreated(ctx, post)

	return s.posts.GetPostByID(ctx, post.ID)
}

// GetPost returns the post with its comments, oldest first.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, []models.Comment, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

func (s *PostService) ListPosts(ctx context.Context, filter models.PostFilter, page, limit int) (*PostPage, error) {
	posts, total, err := s.posts.ListPosts(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	counts, err := s.posts.CountComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, CommentCounts: counts, Total: total}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id, userID uint, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperror.Forbidden("You do not have permission to edit this post.")
	}

	if req.Content != nil {
		content, err := cleanContent(*req.Content, models.MaxPostContentLength)
		if err != nil {
			return nil, err
		}
		post.Content = content
	}
	if req.PostType != nil && *req.PostType != "" {
		post.PostType = *req.PostType
	}
	if req.RelatedSkill != nil {
		post.RelatedSkill = emptyToNil(req.RelatedSkill)
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	s.events.OnPostUpdated(ctx, post)
	return post, nil
}

// DeletePost is author only; the post's comments go with it.
func (s *PostService) DeletePost(ctx context.Context, id, userID uint) error {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return apperror.Forbidden("You do not have permission to delete this post.")
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	s.logger.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(id)), slog.Uint64("user_id", uint64(userID)))
	return nil
}

func (s *PostService) getPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundMessage("Post not found.")
	}
	return post, err
}

// cleanContent trims surrounding whitespace and enforces 1..max characters.
func cleanContent(raw string, max int) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", apperror.ValidationFailed("content", "Content cannot be empty.")
	}
	if utf8.RuneCountInString(content) > max {
		return "", apperror.ValidationFailed("content", fmt.Sprintf("Content is too long (max %d characters).", max))
	}
	return content, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
