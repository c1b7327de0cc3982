package user

import "testing"

func TestLevelForPointsBoundaries(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, LevelBeginner},
		{50, LevelBeginner},
		{99, LevelBeginner},
		{100, LevelIntermediate},
		{250, LevelIntermediate},
		{499, LevelIntermediate},
		{500, LevelAdvanced},
		{10000, LevelAdvanced},
		{-5, LevelBeginner},
	}
	for _, tc := range cases {
		got := LevelForPoints(tc.points)
		if got.ID != tc.want {
			t.Errorf("LevelForPoints(%d).ID = %q, want %q", tc.points, got.ID, tc.want)
		}
	}
}

func TestLevelForPointsNextLevel(t *testing.T) {
	info := LevelForPoints(95)
	if info.NextLevel == nil {
		t.Fatal("expected beginner to report a next level")
	}
	if info.NextLevel.ID != LevelIntermediate {
		t.Errorf("next level = %q, want %q", info.NextLevel.ID, LevelIntermediate)
	}
	if info.NextLevel.PointsNeeded != 5 {
		t.Errorf("points needed = %d, want 5", info.NextLevel.PointsNeeded)
	}

	top := LevelForPoints(500)
	if top.NextLevel != nil {
		t.Errorf("advanced should have no next level, got %+v", top.NextLevel)
	}
}

func TestLevelRankOrdering(t *testing.T) {
	if LevelRank(LevelBeginner) >= LevelRank(LevelIntermediate) {
		t.Error("beginner should rank below intermediate")
	}
	if LevelRank(LevelIntermediate) >= LevelRank(LevelAdvanced) {
		t.Error("intermediate should rank below advanced")
	}
	if LevelRank("unknown") != -1 {
		t.Errorf("unknown level rank = %d, want -1", LevelRank("unknown"))
	}
}
