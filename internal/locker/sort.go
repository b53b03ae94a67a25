package locker

import (
	"sort"

	"github.com/exocheck/exocheck/internal/locker/tables"
)

// rarityPriority is the single rarity ordering every rendered category
// follows, highest first.
var rarityPriority = []string{
	"mythic", "legendary", "dark", "slurp", "starwars", "marvel",
	"lava", "frozen", "gaminglegends", "shadow", "icon", "dc",
	"epic", "rare", "uncommon", "common",
}

var rarityRank = func() map[string]int {
	ranks := make(map[string]int, len(rarityPriority))
	for i, rarity := range rarityPriority {
		ranks[rarity] = i
	}
	return ranks
}()

// rankOf returns the sort rank of a rarity; unknown rarities sort last.
func rankOf(rarity string) int {
	if rank, ok := rarityRank[rarity]; ok {
		return rank
	}
	return len(rarityPriority)
}

// SortForRender returns the category's records in the order the renderer
// must receive them: rarity priority, with mythic items pinned to the front
// in exclusivity-table order. For the Popular category the non-mythic
// remainder follows popularity-table order instead of rarity alone. The
// input slice is not modified.
func SortForRender(category string, records []*CosmeticRecord, t *tables.Tables) []*CosmeticRecord {
	sorted := make([]*CosmeticRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return rankOf(sorted[i].Rarity) < rankOf(sorted[j].Rarity)
	})

	var mythic, rest []*CosmeticRecord
	for _, record := range sorted {
		if record.Rarity == "mythic" {
			mythic = append(mythic, record)
		} else {
			rest = append(rest, record)
		}
	}

	sortByTableIndex(mythic, t.ExclusiveIndex)
	if category == CategoryPopular {
		sortByTableIndex(rest, t.PopularIndex)
	}

	return append(mythic, rest...)
}

// sortExclusives orders the Exclusive category in place by exclusivity-table
// index. Members absent from the table (which should not occur by
// construction) sort after all listed members.
func sortExclusives(records []*CosmeticRecord, t *tables.Tables) {
	sortByTableIndex(records, t.ExclusiveIndex)
}

// sortByTableIndex stably sorts records by a curated table's index, unlisted
// entries last.
func sortByTableIndex(records []*CosmeticRecord, index func(string) (int, bool)) {
	sort.SliceStable(records, func(i, j int) bool {
		return tableRank(records[i], index) < tableRank(records[j], index)
	})
}

func tableRank(record *CosmeticRecord, index func(string) (int, bool)) int {
	if idx, ok := index(record.CosmeticID); ok {
		return idx
	}
	return int(^uint(0) >> 1) // unlisted sorts last
}
