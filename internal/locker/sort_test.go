package locker

import (
	"testing"
)

func record(id, rarity string) *CosmeticRecord {
	return &CosmeticRecord{CosmeticID: id, Rarity: rarity}
}

func ids(records []*CosmeticRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.CosmeticID
	}
	return out
}

func assertOrder(t *testing.T, got []*CosmeticRecord, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func TestSortForRender_RarityOrder(t *testing.T) {
	tbls := newTestTables(t, nil, nil)

	records := []*CosmeticRecord{
		record("c", "common"),
		record("e", "epic"),
		record("l", "legendary"),
		record("i", "icon"),
		record("gl", "gaminglegends"),
		record("r", "rare"),
		record("sw", "starwars"),
	}

	sorted := SortForRender(CategoryCharacter, records, tbls)
	assertOrder(t, sorted, "l", "sw", "gl", "i", "e", "r", "c")
}

func TestSortForRender_UnknownRarityLast(t *testing.T) {
	tbls := newTestTables(t, nil, nil)

	records := []*CosmeticRecord{
		record("x", "transcendent"),
		record("c", "common"),
	}

	sorted := SortForRender(CategoryCharacter, records, tbls)
	assertOrder(t, sorted, "c", "x")
}

func TestSortForRender_MythicPinnedInTableOrder(t *testing.T) {
	tbls := newTestTables(t, []string{"third", "first", "second"}, nil)

	records := []*CosmeticRecord{
		record("l", "legendary"),
		record("second", "mythic"),
		record("first", "mythic"),
		record("third", "mythic"),
	}

	sorted := SortForRender(CategoryCharacter, records, tbls)
	assertOrder(t, sorted, "third", "first", "second", "l")
}

func TestSortForRender_PopularUsesPopularityOrder(t *testing.T) {
	tbls := newTestTables(t, []string{"m"}, []string{"b", "a", "m"})

	records := []*CosmeticRecord{
		record("a", "rare"),
		record("b", "common"),
		record("m", "mythic"),
	}

	sorted := SortForRender(CategoryPopular, records, tbls)
	assertOrder(t, sorted, "m", "b", "a")
}

func TestSortForRender_DoesNotMutateInput(t *testing.T) {
	tbls := newTestTables(t, nil, nil)

	records := []*CosmeticRecord{
		record("c", "common"),
		record("l", "legendary"),
	}

	_ = SortForRender(CategoryCharacter, records, tbls)
	assertOrder(t, records, "c", "l")
}

func TestSortForRender_StableWithinRarity(t *testing.T) {
	tbls := newTestTables(t, nil, nil)

	records := []*CosmeticRecord{
		record("e1", "epic"),
		record("e2", "epic"),
		record("e3", "epic"),
	}

	sorted := SortForRender(CategoryCharacter, records, tbls)
	assertOrder(t, sorted, "e1", "e2", "e3")
}
