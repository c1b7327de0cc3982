package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
)

func TestViewCountsOncePerWindow(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	first, err := env.views.RecordStoryView("viewer1", "s1", false)
	if err != nil {
		t.Fatalf("first view: %v", err)
	}
	if !first.Counted || first.ViewCount != 1 {
		t.Errorf("first view = {%v, %d}, want {true, 1}", first.Counted, first.ViewCount)
	}

	second, err := env.views.RecordStoryView("viewer1", "s1", false)
	if err != nil {
		t.Fatalf("second view: %v", err)
	}
	if second.Counted {
		t.Error("repeat view inside the window must not count")
	}
	if second.ViewCount != 1 {
		t.Errorf("view count = %d, want 1", second.ViewCount)
	}
}

func TestDistinctViewersEachCount(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	for i, viewer := range []string{"v1", "v2", "v3"} {
		result, err := env.views.RecordStoryView(viewer, "s1", false)
		if err != nil {
			t.Fatalf("view by %s: %v", viewer, err)
		}
		if !result.Counted || result.ViewCount != i+1 {
			t.Errorf("view by %s = {%v, %d}, want {true, %d}", viewer, result.Counted, result.ViewCount, i+1)
		}
	}
}

func TestLongTermMarkerSuppressesCounting(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	result, err := env.views.RecordStoryView("viewer1", "s1", true)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if result.Counted {
		t.Error("a presented long-term marker must suppress counting regardless of short-term state")
	}
	if result.ViewCount != 0 {
		t.Errorf("view count = %d, want 0", result.ViewCount)
	}
}

func TestShouldCountViewReflectsBothTiers(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	if !env.views.ShouldCountView("viewer1", "s1", false) {
		t.Error("a fresh viewer/story pair should count")
	}
	if env.views.ShouldCountView("viewer1", "s1", true) {
		t.Error("a presented long-term marker must suppress counting")
	}

	if _, err := env.views.RecordStoryView("viewer1", "s1", false); err != nil {
		t.Fatalf("view: %v", err)
	}

	if env.views.ShouldCountView("viewer1", "s1", false) {
		t.Error("a pair inside the short-term window must not count again")
	}
	if !env.views.ShouldCountView("viewer2", "s1", false) {
		t.Error("the short-term entry is per viewer/story pair, not per story")
	}
}

func TestViewStormCountsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	const n = 25
	var wg sync.WaitGroup
	counted := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.views.RecordStoryView("viewer1", "s1", false)
			if err != nil {
				t.Errorf("view: %v", err)
				return
			}
			counted <- result.Counted
		}()
	}
	wg.Wait()
	close(counted)

	wins := 0
	for c := range counted {
		if c {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one counted view, got %d", wins)
	}

	story, _ := env.storyRepo.FindByID("s1")
	if story.ViewCount != 1 {
		t.Errorf("story view count = %d, want 1", story.ViewCount)
	}
}

func TestViewOfMissingStory(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.views.RecordStoryView("viewer1", "nope", false); err != content.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTrendingStoryUnlocksAtFiftyViews(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	var lastCounted *ViewResult
	for i := 0; i < 50; i++ {
		result, err := env.views.RecordStoryView(fmt.Sprintf("viewer%d", i), "s1", false)
		if err != nil {
			t.Fatalf("view %d: %v", i, err)
		}
		if result.Counted {
			lastCounted = result
		}
	}

	if lastCounted == nil || lastCounted.ViewCount != 50 {
		t.Fatalf("expected 50 counted views, last = %+v", lastCounted)
	}
	if lastCounted.Engagement == nil {
		t.Fatal("expected engagement result on the 50th view")
	}
	if len(lastCounted.Engagement.Unlocked) != 1 || lastCounted.Engagement.Unlocked[0].AchievementID != "trending_story" {
		t.Errorf("expected trending_story on the 50th view, got %+v", lastCounted.Engagement.Unlocked)
	}

	// The unlock pays its bonus to the author; views themselves pay nothing.
	u, _ := env.userRepo.FindByID("author")
	if u.Points != 40 {
		t.Errorf("author balance = %d, want 40 (trending_story bonus only)", u.Points)
	}
}
