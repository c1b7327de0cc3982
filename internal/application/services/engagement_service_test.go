package services

import (
	"sync"
	"testing"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
)

func TestFirstStoryPublishAwardsBaseAndBonus(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)

	result, err := env.stories.Publish("author", "My First Story", "Once upon a time.")
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if result.Engagement == nil {
		t.Fatal("expected engagement result")
	}

	if result.Engagement.PointsDelta != 25 {
		t.Errorf("expected points delta 25 (10 base + 15 bonus), got %d", result.Engagement.PointsDelta)
	}
	if result.Engagement.NewBalance != 25 {
		t.Errorf("expected balance 25, got %d", result.Engagement.NewBalance)
	}
	if len(result.Engagement.Unlocked) != 1 || result.Engagement.Unlocked[0].AchievementID != "first_story" {
		t.Errorf("expected exactly the first_story unlock, got %+v", result.Engagement.Unlocked)
	}
	if result.Engagement.LevelChange != nil {
		t.Errorf("25 points should not change level, got %+v", result.Engagement.LevelChange)
	}

	u, _ := env.userRepo.FindByID("author")
	if u.Points != 25 {
		t.Errorf("stored balance = %d, want 25", u.Points)
	}
	if user.LevelID(u.Points) != user.LevelBeginner {
		t.Errorf("level for 25 points = %s, want beginner", user.LevelID(u.Points))
	}
}

func TestSecondStoryAwardsBaseOnly(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)

	if _, err := env.stories.Publish("author", "First", "body"); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	result, err := env.stories.Publish("author", "Second", "body")
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}

	if result.Engagement.PointsDelta != 10 {
		t.Errorf("second story delta = %d, want 10", result.Engagement.PointsDelta)
	}
	if len(result.Engagement.Unlocked) != 0 {
		t.Errorf("second story should unlock nothing, got %+v", result.Engagement.Unlocked)
	}
}

func TestLikesCrossLevelBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 95)
	env.addStory(t, "s1", "author")

	var last *engagement.Result
	for i := 0; i < 5; i++ {
		var err error
		last, err = env.engagement.OnStoryLiked("reader", "s1", "author")
		if err != nil {
			t.Fatalf("OnStoryLiked %d: %v", i, err)
		}
	}

	// 95 + 5 likes = 100: intermediate, rising_voice pays +20 once.
	if last.LevelChange == nil {
		t.Fatal("expected level change on the fifth like")
	}
	if last.LevelChange.From != user.LevelBeginner || last.LevelChange.To != user.LevelIntermediate {
		t.Errorf("level change = %+v, want beginner->intermediate", last.LevelChange)
	}
	if len(last.Unlocked) != 1 || last.Unlocked[0].AchievementID != "rising_voice" {
		t.Errorf("expected rising_voice unlock, got %+v", last.Unlocked)
	}

	u, _ := env.userRepo.FindByID("author")
	if u.Points != 120 {
		t.Errorf("balance = %d, want 120 (95 + 5 likes + 20 bonus)", u.Points)
	}
	if u.Level != user.LevelIntermediate {
		t.Errorf("stored level = %s, want intermediate", u.Level)
	}

	if has, _ := env.achievementRepo.Has("author", "rising_voice"); !has {
		t.Error("rising_voice should be recorded")
	}
	if env.achievementRepo.countAll() != 1 {
		t.Errorf("expected exactly one unlock row, got %d", env.achievementRepo.countAll())
	}
}

func TestPromotionToAdvancedSkipsIntermediateRule(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 495)
	env.addStory(t, "s1", "author")
	env.addStory(t, "s2", "author")

	result, err := env.stories.Publish("author", "Third", "body")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// 495 + 10 = 505: advanced. master_storyteller pays +50; rising_voice
	// must not fire for a promotion that lands past intermediate.
	if result.Engagement.LevelChange == nil || result.Engagement.LevelChange.To != user.LevelAdvanced {
		t.Fatalf("expected promotion to advanced, got %+v", result.Engagement.LevelChange)
	}

	ids := make(map[string]bool)
	for _, unlock := range result.Engagement.Unlocked {
		ids[unlock.AchievementID] = true
	}
	if !ids["master_storyteller"] {
		t.Errorf("expected master_storyteller unlock, got %+v", result.Engagement.Unlocked)
	}
	if ids["rising_voice"] {
		t.Error("rising_voice must not unlock on a promotion to advanced")
	}

	u, _ := env.userRepo.FindByID("author")
	if u.Points != 555 {
		t.Errorf("balance = %d, want 555 (495 + 10 + 50)", u.Points)
	}
}

func TestConcurrentDispatchUnlocksOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addStory(t, "s1", "author")

	event := engagement.Event{
		Kind:      engagement.EventStoryPublished,
		UserID:    "author",
		StoryID:   "s1",
		CreatedAt: time.Now().UTC(),
	}
	stats := engagement.Stats{StoryCount: 1}

	const n = 20
	var wg sync.WaitGroup
	totalUnlocks := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlocked, _, err := env.achievements.Dispatch(event, stats)
			if err != nil {
				t.Errorf("Dispatch: %v", err)
			}
			totalUnlocks <- len(unlocked)
		}()
	}
	wg.Wait()
	close(totalUnlocks)

	sum := 0
	for count := range totalUnlocks {
		sum += count
	}
	if sum != 1 {
		t.Errorf("expected exactly one dispatch to win, got %d unlocks", sum)
	}
	if env.achievementRepo.countAll() != 1 {
		t.Errorf("expected one unlock row, got %d", env.achievementRepo.countAll())
	}

	// The bonus must land exactly once.
	u, _ := env.userRepo.FindByID("author")
	if u.Points != 15 {
		t.Errorf("balance = %d, want 15 (one first_story bonus)", u.Points)
	}
}

func TestConcurrentApplyDeltaNoLostUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", 0)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.points.ApplyDelta("u1", 1); err != nil {
				t.Errorf("ApplyDelta: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := env.points.Balance("u1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != n {
		t.Errorf("balance = %d, want %d", balance, n)
	}
}

func TestApplyDeltaFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", 5)

	balance, err := env.points.ApplyDelta("u1", -10)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestApplyDeltaUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.points.ApplyDelta("ghost", 10); err != user.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCommentPostingAwardsPoints(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addUser(t, "commenter", 0)
	env.addStory(t, "s1", "author")

	result, err := env.comments.Post("commenter", "s1", "Great story!")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if result.Engagement.PointsDelta != 2 {
		t.Errorf("comment delta = %d, want 2", result.Engagement.PointsDelta)
	}

	u, _ := env.userRepo.FindByID("commenter")
	if u.Points != 2 {
		t.Errorf("commenter balance = %d, want 2", u.Points)
	}
}

func TestConversationalistUnlocksAtTwenty(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "author", 0)
	env.addUser(t, "commenter", 0)
	env.addStory(t, "s1", "author")

	var last *CommentResult
	for i := 0; i < 20; i++ {
		var err error
		last, err = env.comments.Post("commenter", "s1", "another thought")
		if err != nil {
			t.Fatalf("Post %d: %v", i, err)
		}
	}

	if len(last.Engagement.Unlocked) != 1 || last.Engagement.Unlocked[0].AchievementID != "conversationalist" {
		t.Errorf("expected conversationalist on the 20th comment, got %+v", last.Engagement.Unlocked)
	}

	// 20 comments x 2 + 20 bonus.
	u, _ := env.userRepo.FindByID("commenter")
	if u.Points != 60 {
		t.Errorf("balance = %d, want 60", u.Points)
	}
}
