package services

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
)

// === In-memory repositories ===

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User)}
}

func (r *fakeUserRepo) FindByID(id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Store(u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) AdjustPoints(id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, user.ErrNotFound
	}
	u.Points += delta
	if u.Points < 0 {
		u.Points = 0
	}
	return u.Points, nil
}

func (r *fakeUserRepo) SetLevel(id, level string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Level = level
	return nil
}

type fakeStoryRepo struct {
	mu      sync.Mutex
	stories map[string]*content.Story
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[string]*content.Story)}
}

func (r *fakeStoryRepo) FindByID(id string) (*content.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStoryRepo) FindBySlug(slug string) (*content.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stories {
		if s.Slug == slug {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeStoryRepo) FindAll(limit, offset int) ([]*content.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*content.Story
	for _, s := range r.stories {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeStoryRepo) FindByAuthorID(authorID string) ([]*content.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*content.Story
	for _, s := range r.stories {
		if s.AuthorID == authorID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeStoryRepo) CountByAuthorID(authorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.stories {
		if s.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (r *fakeStoryRepo) Store(s *content.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.stories[s.ID] = &copied
	return nil
}

func (r *fakeStoryRepo) Update(s *content.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[s.ID]; !ok {
		return content.ErrNotFound
	}
	copied := *s
	r.stories[s.ID] = &copied
	return nil
}

func (r *fakeStoryRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stories, id)
	return nil
}

func (r *fakeStoryRepo) IncrementViewCount(id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return 0, content.ErrNotFound
	}
	s.ViewCount++
	return s.ViewCount, nil
}

func (r *fakeStoryRepo) TotalLikesByAuthorID(authorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, s := range r.stories {
		if s.AuthorID == authorID {
			total += s.LikeCount
		}
	}
	return total, nil
}

func (r *fakeStoryRepo) setLikeCount(id string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stories[id]; ok {
		s.LikeCount = count
	}
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*content.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*content.Comment)}
}

func (r *fakeCommentRepo) FindByID(id string) (*content.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCommentRepo) FindByStoryID(storyID string) ([]*content.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*content.Comment
	for _, c := range r.comments {
		if c.StoryID == storyID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) CountByAuthorID(authorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.comments {
		if c.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCommentRepo) Store(c *content.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.comments[c.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) setLikeCount(id string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		c.LikeCount = count
	}
}

// fakeReactionRepo keeps reaction sets in memory and mirrors the recomputed
// count onto the owning story or comment, like the SQL implementation does
// inside its transaction.
type fakeReactionRepo struct {
	mu          sync.Mutex
	sets        map[string]map[string]bool
	storyRepo   *fakeStoryRepo
	commentRepo *fakeCommentRepo
}

func newFakeReactionRepo(storyRepo *fakeStoryRepo, commentRepo *fakeCommentRepo) *fakeReactionRepo {
	return &fakeReactionRepo{
		sets:        make(map[string]map[string]bool),
		storyRepo:   storyRepo,
		commentRepo: commentRepo,
	}
}

func (r *fakeReactionRepo) Toggle(target engagement.Target, reactorID string) (bool, int, error) {
	r.mu.Lock()
	set, ok := r.sets[target.Key()]
	if !ok {
		set = make(map[string]bool)
		r.sets[target.Key()] = set
	}

	liked := !set[reactorID]
	if liked {
		set[reactorID] = true
	} else {
		delete(set, reactorID)
	}
	count := len(set)
	r.mu.Unlock()

	switch target.Type {
	case engagement.TargetStory:
		r.storyRepo.setLikeCount(target.ID, count)
	case engagement.TargetComment:
		r.commentRepo.setLikeCount(target.ID, count)
	}
	return liked, count, nil
}

func (r *fakeReactionRepo) Exists(target engagement.Target, reactorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets[target.Key()][reactorID], nil
}

func (r *fakeReactionRepo) Count(target engagement.Target) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets[target.Key()]), nil
}

func (r *fakeReactionRepo) FindReactors(target engagement.Target) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for reactor := range r.sets[target.Key()] {
		out = append(out, reactor)
	}
	return out, nil
}

type fakeAchievementRepo struct {
	mu      sync.Mutex
	unlocks map[string]*engagement.Unlock
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{unlocks: make(map[string]*engagement.Unlock)}
}

func unlockKey(userID, achievementID string) string {
	return userID + "|" + achievementID
}

func (r *fakeAchievementRepo) Unlock(u *engagement.Unlock) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := unlockKey(u.UserID, u.AchievementID)
	if _, exists := r.unlocks[key]; exists {
		return false, nil
	}
	copied := *u
	r.unlocks[key] = &copied
	return true, nil
}

func (r *fakeAchievementRepo) FindByUserID(userID string) ([]*engagement.Unlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*engagement.Unlock
	for _, u := range r.unlocks {
		if u.UserID == userID {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) Has(userID, achievementID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.unlocks[unlockKey(userID, achievementID)]
	return ok, nil
}

func (r *fakeAchievementRepo) countAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.unlocks)
}

// === Messaging and cache fakes ===

type fakeBroadcaster struct {
	mu               sync.Mutex
	achievementCount int
	levelCount       int
	pointsCount      int
}

func (b *fakeBroadcaster) AddClient(userID string) chan string { return make(chan string, 1) }
func (b *fakeBroadcaster) RemoveClient(ch chan string, userID string) {}
func (b *fakeBroadcaster) GetConnectionCount(userID string) int       { return 0 }
func (b *fakeBroadcaster) HasListeners(userID string) bool            { return false }

func (b *fakeBroadcaster) BroadcastAchievementUnlocked(userID, achievementID, name, badge string, bonus int) {
	b.mu.Lock()
	b.achievementCount++
	b.mu.Unlock()
}

func (b *fakeBroadcaster) BroadcastLevelChanged(userID, fromLevel, toLevel string) {
	b.mu.Lock()
	b.levelCount++
	b.mu.Unlock()
}

func (b *fakeBroadcaster) BroadcastPointsChanged(userID string, delta, balance int) {
	b.mu.Lock()
	b.pointsCount++
	b.mu.Unlock()
}

type fakeProfileCache struct {
	mu       sync.Mutex
	profiles map[string]*user.Profile
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{profiles: make(map[string]*user.Profile)}
}

func (c *fakeProfileCache) GetProfile(userID string) (*user.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[userID]
	return p, ok
}

func (c *fakeProfileCache) SetProfile(userID string, profile *user.Profile) {
	c.mu.Lock()
	c.profiles[userID] = profile
	c.mu.Unlock()
}

func (c *fakeProfileCache) InvalidateProfile(userID string) {
	c.mu.Lock()
	delete(c.profiles, userID)
	c.mu.Unlock()
}

type fakeTargetLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFakeTargetLocker() *fakeTargetLocker {
	return &fakeTargetLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *fakeTargetLocker) LockTarget(key string) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
}

func (l *fakeTargetLocker) UnlockTarget(key string) {
	l.mu.Lock()
	m := l.locks[key]
	l.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}

type fakeViewMarkerCache struct {
	mu      sync.Mutex
	markers map[string]time.Time
	window  time.Duration
}

func newFakeViewMarkerCache(window time.Duration) *fakeViewMarkerCache {
	return &fakeViewMarkerCache{markers: make(map[string]time.Time), window: window}
}

func (c *fakeViewMarkerCache) SeenRecently(viewerID, contentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	markedAt, ok := c.markers[viewerID+":"+contentID]
	return ok && time.Since(markedAt) <= c.window
}

func (c *fakeViewMarkerCache) MarkViewed(viewerID, contentID string) {
	c.mu.Lock()
	c.markers[viewerID+":"+contentID] = time.Now()
	c.mu.Unlock()
}

func (c *fakeViewMarkerCache) MarkViewedIfUnseen(viewerID, contentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := viewerID + ":" + contentID
	if markedAt, ok := c.markers[key]; ok && time.Since(markedAt) <= c.window {
		return false
	}
	c.markers[key] = time.Now()
	return true
}

func (c *fakeViewMarkerCache) ViewDedupWindow() time.Duration {
	return c.window
}

// === Test environment ===

type testEnv struct {
	userRepo        *fakeUserRepo
	storyRepo       *fakeStoryRepo
	commentRepo     *fakeCommentRepo
	reactionRepo    *fakeReactionRepo
	achievementRepo *fakeAchievementRepo
	broadcaster     *fakeBroadcaster
	viewMarkers     *fakeViewMarkerCache

	points       *PointsService
	achievements *AchievementService
	engagement   *EngagementService
	reactions    *ReactionService
	views        *ViewService
	stories      *StoryService
	comments     *CommentService
}

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := newTestLogger(t)
	tracker := performance.NewTracker(nil)

	env := &testEnv{
		userRepo:        newFakeUserRepo(),
		storyRepo:       newFakeStoryRepo(),
		commentRepo:     newFakeCommentRepo(),
		achievementRepo: newFakeAchievementRepo(),
		broadcaster:     &fakeBroadcaster{},
		viewMarkers:     newFakeViewMarkerCache(10 * time.Second),
	}
	env.reactionRepo = newFakeReactionRepo(env.storyRepo, env.commentRepo)

	env.points = NewPointsService(env.userRepo, env.broadcaster, logger, tracker)
	env.achievements = NewAchievementService(
		env.achievementRepo, env.userRepo, env.storyRepo, env.commentRepo,
		env.points, env.broadcaster, nil, nil, logger, tracker,
	)
	env.engagement = NewEngagementService(
		env.userRepo, env.points, env.achievements,
		newFakeProfileCache(), env.broadcaster, nil, nil, logger, tracker,
	)
	env.reactions = NewReactionService(
		env.reactionRepo, env.storyRepo, env.commentRepo,
		env.engagement, newFakeTargetLocker(), logger, tracker,
	)
	env.views = NewViewService(env.storyRepo, env.viewMarkers, env.engagement, logger, tracker)
	env.stories = NewStoryService(env.storyRepo, env.engagement, nil, logger, tracker)
	env.comments = NewCommentService(env.commentRepo, env.storyRepo, env.engagement, logger, tracker)

	return env
}

func (env *testEnv) addUser(t *testing.T, id string, points int) *user.User {
	t.Helper()
	u := &user.User{
		ID:        id,
		Email:     id + "@example.com",
		Username:  id,
		Points:    points,
		Level:     user.LevelID(points),
		CreatedAt: time.Now().UTC(),
	}
	if err := env.userRepo.Store(u); err != nil {
		t.Fatalf("failed to store user: %v", err)
	}
	return u
}

func (env *testEnv) addStory(t *testing.T, id, authorID string) *content.Story {
	t.Helper()
	s := &content.Story{
		ID:        id,
		AuthorID:  authorID,
		Title:     "Story " + id,
		Slug:      "story-" + id,
		Body:      "body",
		CreatedAt: time.Now().UTC(),
	}
	if err := env.storyRepo.Store(s); err != nil {
		t.Fatalf("failed to store story: %v", err)
	}
	return s
}
