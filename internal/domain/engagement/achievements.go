package engagement

import "github.com/StoryHiveHQ/storyhive-go/internal/domain/user"

// Base point awards for engagement actions.
const (
	PointsStoryPublished = 10
	PointsCommentPosted  = 2
	PointsReceivedLike   = 1
)

// Rule is one row of the achievement table: a badge, the bonus it pays,
// the event kinds that make it worth evaluating, and the predicate over
// the member's stats snapshot.
type Rule struct {
	ID          string
	Name        string
	Description string
	Badge       string
	Bonus       int
	Triggers    []EventKind
	Unlocks     func(Stats) bool
}

// Rules is the fixed achievement table. Order matters only for display;
// unlock idempotency is enforced by storage, not by evaluation order.
var Rules = []Rule{
	{
		ID:          "first_story",
		Name:        "First Story",
		Description: "Published your first story",
		Badge:       "✍️",
		Bonus:       15,
		Triggers:    []EventKind{EventStoryPublished},
		Unlocks:     func(s Stats) bool { return s.StoryCount == 1 },
	},
	{
		ID:          "five_stories",
		Name:        "Storyteller",
		Description: "Published five stories",
		Badge:       "📚",
		Bonus:       25,
		Triggers:    []EventKind{EventStoryPublished},
		Unlocks:     func(s Stats) bool { return s.StoryCount == 5 },
	},
	{
		ID:          "ten_stories",
		Name:        "Prolific Author",
		Description: "Published ten stories",
		Badge:       "🖋️",
		Bonus:       50,
		Triggers:    []EventKind{EventStoryPublished},
		Unlocks:     func(s Stats) bool { return s.StoryCount == 10 },
	},
	{
		ID:          "rising_voice",
		Name:        "Rising Voice",
		Description: "Reached the intermediate level",
		Badge:       "🌿",
		Bonus:       20,
		Triggers:    []EventKind{EventLevelChanged},
		Unlocks: func(s Stats) bool {
			return s.CurrentLevel == user.LevelIntermediate && promoted(s)
		},
	},
	{
		ID:          "master_storyteller",
		Name:        "Master Storyteller",
		Description: "Reached the advanced level",
		Badge:       "🌳",
		Bonus:       50,
		Triggers:    []EventKind{EventLevelChanged},
		Unlocks: func(s Stats) bool {
			return s.CurrentLevel == user.LevelAdvanced && promoted(s)
		},
	},
	{
		ID:          "crowd_favorite",
		Name:        "Crowd Favorite",
		Description: "Collected 25 likes across your stories",
		Badge:       "❤️",
		Bonus:       30,
		Triggers:    []EventKind{EventStoryLiked},
		Unlocks:     func(s Stats) bool { return s.AggregateStoryLikes >= 25 },
	},
	{
		ID:          "conversationalist",
		Name:        "Conversationalist",
		Description: "Posted 20 comments",
		Badge:       "💬",
		Bonus:       20,
		Triggers:    []EventKind{EventCommentPosted},
		Unlocks:     func(s Stats) bool { return s.CommentCount >= 20 },
	},
	{
		ID:          "trending_story",
		Name:        "Trending Story",
		Description: "One of your stories reached 50 views",
		Badge:       "🔥",
		Bonus:       40,
		Triggers:    []EventKind{EventStoryViewed},
		Unlocks:     func(s Stats) bool { return s.StoryViewCount >= 50 },
	},
}

func promoted(s Stats) bool {
	return user.LevelRank(s.CurrentLevel) > user.LevelRank(s.PreviousLevel)
}

// RulesFor returns the rules whose trigger set includes kind.
func RulesFor(kind EventKind) []Rule {
	var matched []Rule
	for _, rule := range Rules {
		for _, trigger := range rule.Triggers {
			if trigger == kind {
				matched = append(matched, rule)
				break
			}
		}
	}
	return matched
}

// RuleByID looks up a rule by identifier.
func RuleByID(id string) (Rule, bool) {
	for _, rule := range Rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}
