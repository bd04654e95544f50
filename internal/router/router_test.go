package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/spinforge/backend/internal/auth"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/testutil"
	"github.com/anonto42/spinforge/backend/pkg/config"
	"github.com/anonto42/spinforge/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type server struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	db, err := config.OpenGorm("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tokens, err := auth.NewTokenService("router-test-secret-value", time.Minute, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = validators.NewValidator()
	require.NoError(t, SetupRoutes(e, Deps{
		SQL:       db,
		Tokens:    tokens,
		Passwords: auth.NewPasswordHasherWithCost(bcrypt.MinCost),
		Logger:    testutil.DiscardLogger(),
	}))
	return &server{t: t, e: e, db: db}
}

// do sends a JSON request and decodes the JSON response into a map (or
// returns nil for empty bodies).
func (s *server) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	rec := s.raw(method, path, token, body)
	if rec.Body.Len() == 0 {
		return rec.Code, nil
	}
	var out map[string]any
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (s *server) raw(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type account struct {
	id      uint
	access  string
	refresh string
}

func (s *server) signup(username string) account {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":            username + "@example.com",
		"username":         username,
		"password":         "backspin-123",
		"password_confirm": "backspin-123",
	})
	require.Equal(s.t, http.StatusCreated, code, body)
	tokens := body["tokens"].(map[string]any)
	user := body["user"].(map[string]any)
	return account{
		id:      uint(user["id"].(float64)),
		access:  tokens["access"].(string),
		refresh: tokens["refresh"].(string),
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	code, body := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestCommentFlowNotifiesPostAuthor(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	bob := s.signup("bob")

	code, post := s.do(http.MethodPost, "/api/v1/posts", alice.access, map[string]string{
		"content": "Beat my coach 11-9!", "post_type": "achievement", "related_skill": "forehand",
	})
	require.Equal(t, http.StatusCreated, code, post)
	postID := int(post["id"].(float64))
	assert.Equal(t, "alice", post["author"].(map[string]any)["username"])

	code, comment := s.do(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postID), bob.access, map[string]string{"content": "Nice!"})
	require.Equal(t, http.StatusCreated, code, comment)

	code, body := s.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = s.do(http.MethodGet, "/api/v1/notifications", alice.access, nil)
	require.Equal(t, http.StatusOK, code)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	n := results[0].(map[string]any)
	assert.Equal(t, "bob commented on your post", n["message"])
	assert.Equal(t, models.NotificationCommentOnPost, n["notification_type"])
	assert.Equal(t, "comment", n["related_object_type"])
	assert.Equal(t, false, n["is_read"])
	assert.Equal(t, "bob", n["actor"].(map[string]any)["username"])
	notificationID := int(n["id"].(float64))

	code, body = s.do(http.MethodGet, fmt.Sprintf("/api/v1/notifications/%d", notificationID), alice.access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Nice!", body["related_object"].(map[string]any)["content"])

	// Bob cannot read Alice's notification.
	code, body = s.do(http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", notificationID), bob.access, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Failed to mark notification as read.", body["error"])
	code, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/notifications/%d", notificationID), bob.access, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodPost, "/api/v1/notifications/mark-all-read", alice.access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "1 notification(s) marked as read.", body["message"])

	code, body = s.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])

	// Bob's own activity feed records the comment.
	code, body = s.do(http.MethodGet, "/api/v1/activities", bob.access, nil)
	require.Equal(t, http.StatusOK, code)
	activities := body["results"].([]any)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActionCommentCreated, activities[0].(map[string]any)["action_type"])

	code, body = s.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", postID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["comment_count"])
	assert.Len(t, body["comments"].([]any), 1)
}

func TestErrorShapes(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	bob := s.signup("bob")

	code, body := s.do(http.MethodPost, "/api/v1/posts", "", map[string]string{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["error"])
	assert.Equal(t, "Authentication credentials were not provided.", body["message"])

	code, body = s.do(http.MethodGet, "/api/v1/notifications", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Given token not valid for any token type", body["message"])

	code, post := s.do(http.MethodPost, "/api/v1/posts", alice.access, map[string]string{"content": "mine"})
	require.Equal(t, http.StatusCreated, code)
	postPath := fmt.Sprintf("/api/v1/posts/%d", int(post["id"].(float64)))

	code, body = s.do(http.MethodPatch, postPath, bob.access, map[string]string{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["error"])

	code, body = s.do(http.MethodGet, "/api/v1/posts/999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "Post not found.", body["message"])

	code, body = s.do(http.MethodGet, "/api/v1/posts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid post ID", body["message"])

	code, body = s.do(http.MethodPost, "/api/v1/posts", alice.access, map[string]string{"content": "x", "post_type": "rant"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["error"])
	assert.Contains(t, body["fields"].(map[string]any), "post_type")

	code, body = s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"username": "al", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, code)
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "This field is required.", fields["email"])
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")

	code, _ = s.do(http.MethodDelete, postPath, alice.access, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestAuthEndpoints(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")

	code, body := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@example.com", "password": "backspin-123"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful.", body["message"])

	code, body = s.do(http.MethodGet, "/api/v1/auth/user", alice.access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["username"])

	code, body = s.do(http.MethodPost, "/api/v1/auth/token/refresh", "", map[string]string{"refresh": alice.refresh})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["access"])

	code, body = s.do(http.MethodPost, "/api/v1/auth/logout", alice.access, map[string]string{"refresh": alice.refresh})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logout successful.", body["message"])

	code, body = s.do(http.MethodPost, "/api/v1/auth/token/refresh", "", map[string]string{"refresh": alice.refresh})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token is blacklisted.", body["message"])

	// Firebase login is not mounted without a verifier.
	code, _ = s.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"idToken": "x"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProfileEndpoints(t *testing.T) {
	s := newServer(t)
	alice := s.signup("alice")
	bob := s.signup("bob")

	code, body := s.do(http.MethodPatch, "/api/v1/profiles/me", alice.access, map[string]any{"display_name": "Alice L.", "serve_rating": 8})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Alice L.", body["display_name"])
	assert.EqualValues(t, 8, body["serve_rating"])
	assert.Equal(t, "alice@example.com", body["email"])

	code, body = s.do(http.MethodPatch, "/api/v1/profiles/me", alice.access, map[string]any{"serve_rating": 11})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["fields"].(map[string]any), "serve_rating")

	code, body = s.do(http.MethodGet, "/api/v1/profiles/alice", bob.access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alice L.", body["display_name"])
	assert.NotContains(t, body, "email")
}

func TestLearningEndpoints(t *testing.T) {
	s := newServer(t)

	sport := models.Sport{Name: "Table Tennis", Slug: "table-tennis"}
	require.NoError(t, s.db.Create(&sport).Error)
	serve := &models.Rule{SportID: sport.ID, RuleID: "serve-toss", Title: "Serve toss", Category: models.RuleCategoryServing, IsLegal: true}
	edge := &models.Rule{SportID: sport.ID, RuleID: "edge-ball", Title: "Edge ball", Category: models.RuleCategoryScoring, IsLegal: true}
	require.NoError(t, s.db.Create(serve).Error)
	require.NoError(t, s.db.Create(edge).Error)
	require.NoError(t, s.db.Model(serve).Association("RelatedRules").Append(edge))

	rec := s.raw(http.MethodGet, "/api/v1/learning/rules?category=serving", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "serve-toss", rules[0]["rule_id"])
	assert.Equal(t, "Table Tennis", rules[0]["sport_name"])
	assert.EqualValues(t, 1, rules[0]["related_rules_count"])

	code, body := s.do(http.MethodGet, "/api/v1/learning/rules/serve-toss", "", nil)
	require.Equal(t, http.StatusOK, code)
	related := body["related_rules"].([]any)
	require.Len(t, related, 1)
	assert.Equal(t, "edge-ball", related[0].(map[string]any)["rule_id"])

	code, body = s.do(http.MethodGet, "/api/v1/learning/rules/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Rule not found.", body["message"])

	code, body = s.do(http.MethodGet, "/api/v1/learning/sports/table-tennis", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table Tennis", body["name"])
}
