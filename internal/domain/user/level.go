package user

// Level identifiers, ordered from lowest to highest tier.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// levelTier defines one reputation tier. Max is inclusive; a negative Max
// marks the open-ended top tier.
type levelTier struct {
	ID    string
	Name  string
	Badge string
	Min   int
	Max   int
}

var levelTiers = []levelTier{
	{ID: LevelBeginner, Name: "Beginner", Badge: "🌱", Min: 0, Max: 99},
	{ID: LevelIntermediate, Name: "Intermediate", Badge: "🌿", Min: 100, Max: 499},
	{ID: LevelAdvanced, Name: "Advanced", Badge: "🌳", Min: 500, Max: -1},
}

// LevelInfo describes the tier a point total falls into, plus the distance
// to the next tier when one exists.
type LevelInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Badge     string     `json:"badge"`
	NextLevel *NextLevel `json:"nextLevel,omitempty"`
	Points    int        `json:"points"`
}

// NextLevel describes the tier above the current one.
type NextLevel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Threshold    int    `json:"threshold"`
	PointsNeeded int    `json:"pointsNeeded"`
}

// LevelForPoints maps a point total onto its tier. Totals below zero are
// treated as zero; point balances never go negative, but callers may hold
// stale deltas.
func LevelForPoints(points int) LevelInfo {
	if points < 0 {
		points = 0
	}
	for i, tier := range levelTiers {
		if tier.Max >= 0 && points > tier.Max {
			continue
		}
		info := LevelInfo{
			ID:     tier.ID,
			Name:   tier.Name,
			Badge:  tier.Badge,
			Points: points,
		}
		if i+1 < len(levelTiers) {
			next := levelTiers[i+1]
			info.NextLevel = &NextLevel{
				ID:           next.ID,
				Name:         next.Name,
				Threshold:    next.Min,
				PointsNeeded: next.Min - points,
			}
		}
		return info
	}
	// Unreachable while the top tier is open-ended.
	last := levelTiers[len(levelTiers)-1]
	return LevelInfo{ID: last.ID, Name: last.Name, Badge: last.Badge, Points: points}
}

// LevelID is a convenience wrapper returning just the tier identifier.
func LevelID(points int) string {
	return LevelForPoints(points).ID
}

// LevelRank returns the ordinal of a level identifier, with unknown levels
// ranked lowest. Used to distinguish promotions from demotions.
func LevelRank(id string) int {
	for i, tier := range levelTiers {
		if tier.ID == id {
			return i
		}
	}
	return -1
}
