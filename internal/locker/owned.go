package locker

import (
	"sort"
	"strings"

	"github.com/exocheck/exocheck/internal/epic"
)

// ownedIndex is the intermediate state scanned out of the profile documents
// before catalog resolution.
type ownedIndex struct {
	// byCategory maps a cosmetic namespace to its owned IDs (lowercase),
	// in deterministic order.
	byCategory map[string][]string

	// styles maps a cosmetic ID to the union of its unlocked style-variant
	// tags. Built for every owned item before exclusivity classification,
	// because several exclusivity rules depend on a specific tag.
	styles map[string][]string

	// banners is the presence set of owned banner IDs (lowercase) from the
	// common_core profile.
	banners map[string]struct{}
}

// scanOwned walks the athena profile's item map and builds the per-category
// ID sets and the unlocked-styles index. Item map iteration is ordered by
// key so repeated runs over identical data produce identical snapshots.
func scanOwned(athena *epic.Profile) *ownedIndex {
	idx := &ownedIndex{
		byCategory: make(map[string][]string),
		styles:     make(map[string][]string),
		banners:    make(map[string]struct{}),
	}

	items := athena.Items()
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{}, len(items))
	for _, key := range keys {
		item := items[key]
		owned, ok := parseOwnedItem(item.TemplateID)
		if !ok {
			continue
		}

		if _, dup := seen[owned.Category+":"+owned.CosmeticID]; !dup {
			seen[owned.Category+":"+owned.CosmeticID] = struct{}{}
			idx.byCategory[owned.Category] = append(idx.byCategory[owned.Category], owned.CosmeticID)
		}

		if _, exists := idx.styles[owned.CosmeticID]; !exists {
			idx.styles[owned.CosmeticID] = []string{}
		}
		for _, variant := range item.Attributes.Variants {
			idx.styles[owned.CosmeticID] = append(idx.styles[owned.CosmeticID], variant.Owned...)
		}
	}

	return idx
}

// scanBanners registers owned banner IDs from the common_core profile. Only
// presence is recorded; metadata comes later from the banner catalog.
func (idx *ownedIndex) scanBanners(common *epic.Profile) {
	if common == nil {
		return
	}

	for _, change := range common.ProfileChanges {
		for _, item := range change.Profile.Items {
			if item.TemplateID == "" {
				continue
			}
			_, id, found := strings.Cut(item.TemplateID, ":")
			if !found || id == "" {
				continue
			}
			idx.banners[strings.ToLower(id)] = struct{}{}
		}
	}
}

// hasStyle reports whether the cosmetic's unlocked styles contain the tag.
func (idx *ownedIndex) hasStyle(cosmeticID, tag string) bool {
	for _, owned := range idx.styles[strings.ToLower(cosmeticID)] {
		if owned == tag {
			return true
		}
	}
	return false
}
