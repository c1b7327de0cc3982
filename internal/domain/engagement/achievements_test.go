package engagement

import (
	"testing"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
)

func TestRulesForFiltersByTrigger(t *testing.T) {
	published := RulesFor(EventStoryPublished)
	if len(published) != 3 {
		t.Fatalf("story_published should match 3 rules, got %d", len(published))
	}
	for _, rule := range published {
		if rule.ID != "first_story" && rule.ID != "five_stories" && rule.ID != "ten_stories" {
			t.Errorf("unexpected rule %q for story_published", rule.ID)
		}
	}
	if got := RulesFor(EventCommentLiked); len(got) != 0 {
		t.Errorf("comment_liked should match no rules, got %d", len(got))
	}
}

func TestStoryCountRulesUseExactMatch(t *testing.T) {
	rule, ok := RuleByID("five_stories")
	if !ok {
		t.Fatal("five_stories rule missing")
	}
	if rule.Unlocks(Stats{StoryCount: 4}) {
		t.Error("five_stories unlocked at 4 stories")
	}
	if !rule.Unlocks(Stats{StoryCount: 5}) {
		t.Error("five_stories did not unlock at 5 stories")
	}
	// Exact match: the threshold crossing fires once; later publishes
	// rely on storage idempotency, not the predicate.
	if rule.Unlocks(Stats{StoryCount: 6}) {
		t.Error("five_stories unlocked past its threshold")
	}
}

func TestLevelRulesRequirePromotion(t *testing.T) {
	rule, _ := RuleByID("rising_voice")
	up := Stats{PreviousLevel: user.LevelBeginner, CurrentLevel: user.LevelIntermediate}
	if !rule.Unlocks(up) {
		t.Error("rising_voice did not unlock on promotion to intermediate")
	}
	down := Stats{PreviousLevel: user.LevelAdvanced, CurrentLevel: user.LevelIntermediate}
	if rule.Unlocks(down) {
		t.Error("rising_voice unlocked on demotion")
	}

	master, _ := RuleByID("master_storyteller")
	if !master.Unlocks(Stats{PreviousLevel: user.LevelIntermediate, CurrentLevel: user.LevelAdvanced}) {
		t.Error("master_storyteller did not unlock on promotion to advanced")
	}
}

func TestAggregateRulesUseThresholds(t *testing.T) {
	crowd, _ := RuleByID("crowd_favorite")
	if crowd.Unlocks(Stats{AggregateStoryLikes: 24}) {
		t.Error("crowd_favorite unlocked below 25 likes")
	}
	if !crowd.Unlocks(Stats{AggregateStoryLikes: 25}) {
		t.Error("crowd_favorite did not unlock at 25 likes")
	}

	trending, _ := RuleByID("trending_story")
	if !trending.Unlocks(Stats{StoryViewCount: 73}) {
		t.Error("trending_story should unlock at any count past 50")
	}
}
