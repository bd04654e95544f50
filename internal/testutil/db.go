// Package testutil builds migrated in-memory databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"github.com/anonto42/spinforge/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB returns a fresh, migrated in-memory SQLite database that is
// closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenGorm("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// DiscardLogger is a slog.Logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateUser inserts a user (with profile) whose email is derived from the username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "not-a-real-hash",
	}
	require.NoError(t, repositories.NewPostgresUserRepository(db).CreateUserWithProfile(context.Background(), user))
	return user
}

// CreatePost inserts a post by author.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Content: content, PostType: models.PostTypeAchievement}
	require.NoError(t, repositories.NewPostgresPostRepository(db).CreatePost(context.Background(), post))
	post.Author = author
	return post
}

// CreateComment inserts a comment with an explicit creation time so ordering
// between comments is deterministic.
func CreateComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, content string, createdAt time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Content: content, CreatedAt: createdAt.UTC()}
	require.NoError(t, repositories.NewPostgresCommentRepository(db).CreateComment(context.Background(), comment))
	comment.Author = author
	return comment
}
