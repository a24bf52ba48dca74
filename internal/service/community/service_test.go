package community_test

import (
	"context"
	"errors"
	"testing"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/service/community"
)

func TestListReturnsSeededFeed(t *testing.T) {
	svc := community.NewService(wellness.SeedPosts())
	posts := svc.List()
	if len(posts) != 3 {
		t.Fatalf("expected 3 seeded posts, got %d", len(posts))
	}
}

func TestLikeIncrements(t *testing.T) {
	svc := community.NewService(wellness.SeedPosts())

	first, err := svc.Like("p-morning-anxiety")
	if err != nil {
		t.Fatalf("Like err: %v", err)
	}
	second, err := svc.Like("p-morning-anxiety")
	if err != nil {
		t.Fatalf("Like err: %v", err)
	}
	if second != first+1 {
		t.Fatalf("likes did not increment: %d then %d", first, second)
	}

	if _, err := svc.Like("missing"); !errors.Is(err, community.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	svc := community.NewService(nil)
	_, err := svc.Create(context.Background(), identity.Anonymous("device-1"), "me", "Anxiety", "title", "content")
	if !errors.Is(err, community.ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
}

func TestCreatePrependsAndDefaultsAuthor(t *testing.T) {
	svc := community.NewService(wellness.SeedPosts())
	user := identity.Authenticated("user-1")

	post, err := svc.Create(context.Background(), user, "  ", "Wins", "30 days sober", "small steps add up")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if post.Author != "Anon" {
		t.Fatalf("expected default author, got %q", post.Author)
	}

	posts := svc.List()
	if posts[0].ID != post.ID {
		t.Fatalf("new post not at the top of the feed")
	}
}

func TestCreateRejectsEmptyContent(t *testing.T) {
	svc := community.NewService(nil)
	user := identity.Authenticated("user-1")
	if _, err := svc.Create(context.Background(), user, "me", "tag", "", "content"); !errors.Is(err, community.ErrEmptyPost) {
		t.Fatalf("expected ErrEmptyPost, got %v", err)
	}
}
