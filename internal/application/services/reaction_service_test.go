package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
)

func TestToggleLikeUnlikeRelike(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addUser(t, "reader", 0)
	env.addStory(t, "s1", "author")

	// Like.
	result, err := env.reactions.ToggleStoryLike("reader", "s1")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !result.Liked || result.Count != 1 {
		t.Errorf("like = {%v, %d}, want {true, 1}", result.Liked, result.Count)
	}
	if result.Engagement == nil || result.Engagement.PointsDelta != 1 {
		t.Errorf("expected +1 to the author on like, got %+v", result.Engagement)
	}

	// Unlike: nothing is withdrawn.
	result, err = env.reactions.ToggleStoryLike("reader", "s1")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if result.Liked || result.Count != 0 {
		t.Errorf("unlike = {%v, %d}, want {false, 0}", result.Liked, result.Count)
	}
	if result.Engagement != nil {
		t.Errorf("unlike must not touch points, got %+v", result.Engagement)
	}
	u, _ := env.userRepo.FindByID("author")
	if u.Points != 1 {
		t.Errorf("author balance after unlike = %d, want 1", u.Points)
	}

	// Re-like: a fresh transition to liked awards again.
	result, err = env.reactions.ToggleStoryLike("reader", "s1")
	if err != nil {
		t.Fatalf("re-like: %v", err)
	}
	if !result.Liked || result.Count != 1 {
		t.Errorf("re-like = {%v, %d}, want {true, 1}", result.Liked, result.Count)
	}
	u, _ = env.userRepo.FindByID("author")
	if u.Points != 2 {
		t.Errorf("author balance after re-like = %d, want 2", u.Points)
	}
}

func TestSelfReactionTogglesButNeverAwards(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 10)
	env.addStory(t, "s1", "author")

	result, err := env.reactions.ToggleStoryLike("author", "s1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !result.Liked || result.Count != 1 {
		t.Errorf("self-like = {%v, %d}, want {true, 1}", result.Liked, result.Count)
	}
	if result.Engagement != nil {
		t.Errorf("self-like must not award, got %+v", result.Engagement)
	}

	u, _ := env.userRepo.FindByID("author")
	if u.Points != 10 {
		t.Errorf("author balance = %d, want unchanged 10", u.Points)
	}
}

func TestCountAlwaysMatchesSetCardinality(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")
	target := engagement.Target{Type: engagement.TargetStory, ID: "s1"}

	for i := 0; i < 5; i++ {
		reactor := fmt.Sprintf("reader%d", i)
		env.addUser(t, reactor, 0)
		result, err := env.reactions.ToggleStoryLike(reactor, "s1")
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		setSize, _ := env.reactionRepo.Count(target)
		if result.Count != setSize {
			t.Errorf("after like %d: count %d != cardinality %d", i, result.Count, setSize)
		}
	}

	// Unlike two of them.
	for _, reactor := range []string{"reader1", "reader3"} {
		result, err := env.reactions.ToggleStoryLike(reactor, "s1")
		if err != nil {
			t.Fatalf("unlike %s: %v", reactor, err)
		}
		setSize, _ := env.reactionRepo.Count(target)
		if result.Count != setSize {
			t.Errorf("after unlike %s: count %d != cardinality %d", reactor, result.Count, setSize)
		}
	}

	count, _ := env.reactionRepo.Count(target)
	if count != 3 {
		t.Errorf("final count = %d, want 3", count)
	}
}

func TestConcurrentTogglesByDistinctReactors(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")
	target := engagement.Target{Type: engagement.TargetStory, ID: "s1"}

	const n = 10
	for i := 0; i < n; i++ {
		env.addUser(t, fmt.Sprintf("reader%d", i), 0)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := env.reactions.ToggleStoryLike(fmt.Sprintf("reader%d", i), "s1"); err != nil {
				t.Errorf("toggle %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	count, _ := env.reactionRepo.Count(target)
	if count != n {
		t.Errorf("set cardinality = %d, want %d", count, n)
	}

	u, _ := env.userRepo.FindByID("author")
	if u.Points != n {
		t.Errorf("author balance = %d, want %d (one per distinct liker)", u.Points, n)
	}
}

func TestCommentLikeAwardsWithoutAchievement(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addUser(t, "commenter", 0)
	env.addUser(t, "reader", 0)
	env.addStory(t, "s1", "author")

	posted, err := env.comments.Post("commenter", "s1", "hello")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	result, err := env.reactions.ToggleCommentLike("reader", posted.Comment.ID)
	if err != nil {
		t.Fatalf("ToggleCommentLike: %v", err)
	}
	if !result.Liked || result.Count != 1 {
		t.Errorf("comment like = {%v, %d}, want {true, 1}", result.Liked, result.Count)
	}
	if result.Engagement == nil || result.Engagement.PointsDelta != 1 {
		t.Errorf("expected +1 to commenter, got %+v", result.Engagement)
	}
	if len(result.Engagement.Unlocked) != 0 {
		t.Errorf("comment likes carry no achievement rule, got %+v", result.Engagement.Unlocked)
	}
}
