// Package locker aggregates an account's owned cosmetics, catalog metadata,
// style variants and banner ownership into a single renderable snapshot.
package locker

import "strings"

// Locker categories. The first five are real cosmetic namespaces from the
// athena profile; the last three are synthetic and always present in a
// snapshot even when empty.
const (
	CategoryCharacter = "AthenaCharacter"
	CategoryBackpack  = "AthenaBackpack"
	CategoryPickaxe   = "AthenaPickaxe"
	CategoryDance     = "AthenaDance"
	CategoryGlider    = "AthenaGlider"
	CategoryExclusive = "AthenaExclusive"
	CategoryPopular   = "AthenaPopular"
	CategoryBanners   = "HomebaseBannerIcons"
)

// Categories lists every category a snapshot carries, in render order.
var Categories = []string{
	CategoryCharacter,
	CategoryBackpack,
	CategoryPickaxe,
	CategoryDance,
	CategoryGlider,
	CategoryPopular,
	CategoryExclusive,
	CategoryBanners,
}

// cosmeticCategories are the namespaces resolved against the catalog.
var cosmeticCategories = []string{
	CategoryCharacter,
	CategoryBackpack,
	CategoryPickaxe,
	CategoryDance,
	CategoryGlider,
}

// templatePrefix is the namespace marker of cosmetic template IDs.
const templatePrefix = "Athena"

// defaultOutfitID is the placeholder every account owns. It is not a real
// cosmetic choice and never appears in a snapshot.
const defaultOutfitID = "cid_defaultoutfit"

// OwnedItem is one recognized cosmetic entry from the athena profile's item
// map.
type OwnedItem struct {
	TemplateID string
	Category   string
	CosmeticID string // lowercase suffix after the first ':'
}

// parseOwnedItem splits a template ID of form Category:CosmeticId. ok=false
// for items outside the cosmetic namespace.
func parseOwnedItem(templateID string) (OwnedItem, bool) {
	if !strings.HasPrefix(templateID, templatePrefix) {
		return OwnedItem{}, false
	}

	category, id, found := strings.Cut(templateID, ":")
	if !found || id == "" {
		return OwnedItem{}, false
	}

	return OwnedItem{
		TemplateID: templateID,
		Category:   category,
		CosmeticID: strings.ToLower(id),
	}, true
}

// CosmeticRecord is one resolved cosmetic placed into snapshot categories.
// A record flagged exclusive or popular is shared by reference between its
// home category and the synthetic ones, so rarity mutation must finish
// before placement.
type CosmeticRecord struct {
	CosmeticID     string   `json:"cosmetic_id"`
	Name           string   `json:"name"`
	Category       string   `json:"backend_value"`
	Rarity         string   `json:"rarity_value"`
	SmallIcon      string   `json:"small_icon"`
	IsBanner       bool     `json:"is_banner"`
	IsExclusive    bool     `json:"is_exclusive"`
	IsPopular      bool     `json:"is_popular"`
	UnlockedStyles []string `json:"unlocked_styles"`
}

// Snapshot is the finalized aggregation result for one check. It is built
// once, never cached across checks, and consumed read-only by rendering.
type Snapshot struct {
	Categories map[string][]*CosmeticRecord `json:"categories"`
	Banners    map[string]struct{}          `json:"-"`
	LastMatch  string                       `json:"last_match"`

	AccountLevel int `json:"account_level"`
}

// EmptySnapshot returns a snapshot with every category key present and
// empty. This is the terminal result for an account whose athena profile
// could not be fetched; callers report it as "nothing to render", distinct
// from an auth failure.
func EmptySnapshot() *Snapshot {
	categories := make(map[string][]*CosmeticRecord, len(Categories))
	for _, name := range Categories {
		categories[name] = []*CosmeticRecord{}
	}
	return &Snapshot{
		Categories: categories,
		Banners:    map[string]struct{}{},
	}
}

// TotalItems counts records across the non-synthetic categories.
func (s *Snapshot) TotalItems() int {
	total := 0
	for _, name := range cosmeticCategories {
		total += len(s.Categories[name])
	}
	return total
}
