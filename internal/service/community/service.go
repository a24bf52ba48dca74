// Package community serves the peer-support feed.
package community

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
)

var (
	ErrLoginRequired = errors.New("posting requires a signed-in user")
	ErrPostNotFound  = errors.New("post not found")
	ErrEmptyPost     = errors.New("post title and content are required")
)

// Service keeps the feed in memory, newest first after the seeded posts.
type Service struct {
	mu    sync.RWMutex
	posts []wellness.Post
	now   func() time.Time
}

func NewService(seed []wellness.Post) *Service {
	return &Service{
		posts: append([]wellness.Post(nil), seed...),
		now:   time.Now,
	}
}

func (s *Service) List() []wellness.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]wellness.Post(nil), s.posts...)
}

// Like bumps a post's like count and returns the new total.
func (s *Service) Like(postID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Likes++
			return s.posts[i].Likes, nil
		}
	}
	return 0, ErrPostNotFound
}

// Create publishes a new post. Guests can read the feed but not write to it.
func (s *Service) Create(_ context.Context, id identity.Identity, author, tag, title, content string) (wellness.Post, error) {
	if !id.IsAuthenticated() {
		return wellness.Post{}, ErrLoginRequired
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return wellness.Post{}, ErrEmptyPost
	}
	if strings.TrimSpace(author) == "" {
		author = "Anon"
	}

	post := wellness.Post{
		ID:        uuid.NewString(),
		Author:    strings.TrimSpace(author),
		Tag:       strings.TrimSpace(tag),
		Title:     strings.TrimSpace(title),
		Content:   strings.TrimSpace(content),
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.posts = append([]wellness.Post{post}, s.posts...)
	s.mu.Unlock()
	return post, nil
}
