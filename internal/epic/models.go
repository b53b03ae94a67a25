package epic

import (
	"fmt"
	"strings"
	"time"
)

// Profile is a QueryProfile response document. Epic wraps the actual profile
// in a one-element profileChanges array; accessors below hide that.
type Profile struct {
	ProfileID      string          `json:"profileId"`
	ProfileChanges []ProfileChange `json:"profileChanges"`
}

// ProfileChange is one entry of the profileChanges array.
type ProfileChange struct {
	ChangeType string      `json:"changeType"`
	Profile    ProfileData `json:"profile"`
}

// ProfileData is the inner profile document.
type ProfileData struct {
	ID      string          `json:"_id"`
	Created string          `json:"created"`
	Updated string          `json:"updated"`
	Items   map[string]Item `json:"items"`
	Stats   ProfileStats    `json:"stats"`
}

// Item is one owned-item record in a profile's item map.
type Item struct {
	TemplateID string         `json:"templateId"`
	Attributes ItemAttributes `json:"attributes"`
	Quantity   int            `json:"quantity"`
}

// ItemAttributes carries the per-item attribute payload. Only the fields the
// aggregator reads are modeled.
type ItemAttributes struct {
	Variants []ItemVariant `json:"variants"`
	Favorite bool          `json:"favorite"`
	Level    int           `json:"level"`
}

// ItemVariant is one style-variant channel of an owned item.
type ItemVariant struct {
	Channel string   `json:"channel"`
	Active  string   `json:"active"`
	Owned   []string `json:"owned"`
}

// ProfileStats wraps the stats attribute block.
type ProfileStats struct {
	Attributes StatsAttributes `json:"attributes"`
}

// StatsAttributes are the profile-level stats the checker reports on. The
// athena and campaign profiles share this shape; each populates its own
// subset.
type StatsAttributes struct {
	AccountLevel int          `json:"accountLevel"`
	Level        int          `json:"level"`
	BookLevel    int          `json:"book_level"`
	LastMatchEnd string       `json:"last_match_end_datetime"`
	PastSeasons  []PastSeason `json:"past_seasons"`

	// campaign-only fields
	ResearchLevels      ResearchLevels `json:"research_levels"`
	CollectionBook      CollectionBook `json:"collection_book"`
	MFARewardClaimed    bool           `json:"mfa_reward_claimed"`
	ResearchPointsSpent int            `json:"legacy_research_points_spent"`
	MatchesPlayed       int            `json:"matches_played"`
}

// ResearchLevels are the campaign profile's per-stat research levels.
type ResearchLevels struct {
	Offence    int `json:"offence"`
	Fortitude  int `json:"fortitude"`
	Resistance int `json:"resistance"`
	Technology int `json:"technology"`
}

// CollectionBook is the campaign profile's collection book progress.
type CollectionBook struct {
	MaxBookXPLevelAchieved int `json:"maxBookXpLevelAchieved"`
}

// PastSeason is one entry of the athena past_seasons history.
type PastSeason struct {
	SeasonNumber      int  `json:"seasonNumber"`
	SeasonLevel       int  `json:"seasonLevel"`
	NumWins           int  `json:"numWins"`
	NumHighBracket    int  `json:"numHighBracket"`
	NumLowBracket     int  `json:"numLowBracket"`
	NumHighBracketLTM int  `json:"numHighBracket_LTM"`
	NumLowBracketLTM  int  `json:"numLowBracket_LTM"`
	NumHighBracketAr  int  `json:"numHighBracket_Ar"`
	NumLowBracketAr   int  `json:"numLowBracket_Ar"`
	PurchasedVIP      bool `json:"purchasedVIP"`
}

// Valid reports whether the document carries a profile at all. Responses
// missing the profileChanges root are treated as unavailable upstream data.
func (p *Profile) Valid() bool {
	return p != nil && len(p.ProfileChanges) > 0
}

// Items returns the profile's item map, or nil for an invalid document.
func (p *Profile) Items() map[string]Item {
	if !p.Valid() {
		return nil
	}
	return p.ProfileChanges[0].Profile.Items
}

// Attributes returns the profile's stats attributes, or a zero value for an
// invalid document.
func (p *Profile) Attributes() StatsAttributes {
	if !p.Valid() {
		return StatsAttributes{}
	}
	return p.ProfileChanges[0].Profile.Stats.Attributes
}

// LastMatchSummary formats the athena last-match timestamp the way the
// rendered report shows it, e.g. "02.01.25 (31 days ago)". Accounts with no
// recorded match fall back to a fixed "800+ days ago" label.
func (p *Profile) LastMatchSummary(now time.Time) string {
	raw := p.Attributes().LastMatchEnd
	if raw == "" {
		return "800+ days ago"
	}

	end, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "800+ days ago"
	}

	days := int(now.UTC().Sub(end.UTC()).Hours() / 24)
	return fmt.Sprintf("%s (%d days ago)", end.Format("02.01.06"), days)
}

// SeasonTotals sums wins and matches across the past-seasons history.
func (p *Profile) SeasonTotals() (wins, matches int) {
	for _, season := range p.Attributes().PastSeasons {
		wins += season.NumWins
		matches += season.NumHighBracket + season.NumLowBracket +
			season.NumHighBracketLTM + season.NumLowBracketLTM +
			season.NumHighBracketAr + season.NumLowBracketAr
	}
	return wins, matches
}

// SeasonsReport renders the past-seasons history plus the current season as
// a plain-text report block.
func (p *Profile) SeasonsReport() string {
	attrs := p.Attributes()

	var b strings.Builder
	b.WriteString("Previous Seasons History:\n")
	for _, season := range attrs.PastSeasons {
		fmt.Fprintf(&b, "Season %d\n", season.SeasonNumber)
		fmt.Fprintf(&b, "  Level: %d\n", season.SeasonLevel)
		fmt.Fprintf(&b, "  Battle Pass: %t\n", season.PurchasedVIP)
		fmt.Fprintf(&b, "  Wins: %d\n", season.NumWins)
	}
	fmt.Fprintf(&b, "Current Season:\n  Level: %d\n  Battle Pass Level: %d\n", attrs.Level, attrs.BookLevel)
	return b.String()
}

// HomebaseStats are the save-the-world progression numbers derived from the
// campaign profile.
type HomebaseStats struct {
	Level               int
	CollectionBookLevel int
	RewardsClaimed      bool
	ResearchPointsSpent int
	Research            ResearchLevels
	MatchesPlayed       int
}

// HomebaseStats reads the campaign profile's progression stats. Levels the
// profile never recorded report as 1, matching what the game shows for a
// fresh Save the World account.
func (p *Profile) HomebaseStats() HomebaseStats {
	attrs := p.Attributes()

	stats := HomebaseStats{
		Level:               attrs.Level,
		CollectionBookLevel: attrs.CollectionBook.MaxBookXPLevelAchieved,
		RewardsClaimed:      attrs.MFARewardClaimed,
		ResearchPointsSpent: attrs.ResearchPointsSpent,
		Research:            attrs.ResearchLevels,
		MatchesPlayed:       attrs.MatchesPlayed,
	}

	if stats.Level == 0 {
		stats.Level = 1
	}
	if stats.CollectionBookLevel == 0 {
		stats.CollectionBookLevel = 1
	}
	for _, level := range []*int{
		&stats.Research.Offence, &stats.Research.Fortitude,
		&stats.Research.Resistance, &stats.Research.Technology,
	} {
		if *level == 0 {
			*level = 1
		}
	}

	return stats
}

// HomebaseReport renders the campaign progression as a plain-text report
// block.
func (p *Profile) HomebaseReport() string {
	stats := p.HomebaseStats()

	var b strings.Builder
	b.WriteString("Homebase Information:\n")
	fmt.Fprintf(&b, "  Level: %d\n", stats.Level)
	fmt.Fprintf(&b, "  Collection Book Level: %d\n", stats.CollectionBookLevel)
	fmt.Fprintf(&b, "  Claimed Rewards: %t\n", stats.RewardsClaimed)
	fmt.Fprintf(&b, "  Research points spent: %d\n", stats.ResearchPointsSpent)
	fmt.Fprintf(&b, "  Offence: %d, Fortitude: %d, Resistance: %d, Tech: %d\n",
		stats.Research.Offence, stats.Research.Fortitude,
		stats.Research.Resistance, stats.Research.Technology)
	fmt.Fprintf(&b, "  Matches Played: %d\n", stats.MatchesPlayed)
	return b.String()
}

// AccountInfo is the public account surface reported alongside a check.
type AccountInfo struct {
	AccountID    string         `json:"id"`
	DisplayName  string         `json:"displayName"`
	CreationDate string         `json:"created"`
	External     []ExternalAuth `json:"externalAuths"`
}

// ExternalAuth is one linked external platform account.
type ExternalAuth struct {
	Type        string `json:"type"`
	DisplayName string `json:"externalDisplayName"`
	DateAdded   string `json:"dateAdded"`
}
