package locker

import (
	"context"
	"log"
	"time"

	"github.com/exocheck/exocheck/internal/catalog"
	"github.com/exocheck/exocheck/internal/epic"
	"github.com/exocheck/exocheck/internal/locker/tables"
)

// CatalogResolver is the subset of the catalog client the aggregator needs.
type CatalogResolver interface {
	SearchByIDs(ctx context.Context, ids []string) ([]catalog.Cosmetic, error)
	Banners(ctx context.Context) ([]catalog.Banner, error)
}

// Aggregator merges owned items, catalog metadata, style variants, banner
// ownership and the curated tables into a Snapshot. It never fails: catalog
// gaps and upstream timeouts degrade the snapshot instead of aborting, and
// auth failures are the profile fetch's concern, upstream of aggregation.
type Aggregator struct {
	catalog CatalogResolver
	tables  *tables.Tables
	now     func() time.Time
}

// NewAggregator creates an aggregator over the given catalog and tables.
func NewAggregator(resolver CatalogResolver, t *tables.Tables) *Aggregator {
	return &Aggregator{
		catalog: resolver,
		tables:  t,
		now:     time.Now,
	}
}

// Aggregate builds the locker snapshot for one fetched profile bundle.
func (a *Aggregator) Aggregate(ctx context.Context, bundle *epic.ProfileBundle) *Snapshot {
	if bundle == nil || !bundle.Athena.Valid() {
		// nothing to render; callers report this distinctly from auth failure
		return EmptySnapshot()
	}

	snapshot := EmptySnapshot()
	snapshot.LastMatch = bundle.Athena.LastMatchSummary(a.now())
	snapshot.AccountLevel = bundle.Athena.Attributes().AccountLevel

	owned := scanOwned(bundle.Athena)
	owned.scanBanners(bundle.Common)
	snapshot.Banners = owned.banners

	for _, category := range cosmeticCategories {
		ids := owned.byCategory[category]
		if len(ids) == 0 {
			continue
		}

		cosmetics, err := a.catalog.SearchByIDs(ctx, ids)
		if err != nil {
			// degraded category; the check continues without it
			log.Printf("[WARN] Catalog lookup failed for %s: %v", category, err)
			continue
		}

		for i := range cosmetics {
			a.placeCosmetic(snapshot, owned, category, &cosmetics[i])
		}
	}

	a.placeBanners(ctx, snapshot, owned)
	sortExclusives(snapshot.Categories[CategoryExclusive], a.tables)

	return snapshot
}

// placeCosmetic classifies one resolved cosmetic and places it into its home
// category plus the synthetic ones it qualifies for. Rarity mutation happens
// before any placement since the record is shared by reference.
func (a *Aggregator) placeCosmetic(snapshot *Snapshot, owned *ownedIndex, category string, cosmetic *catalog.Cosmetic) {
	id := catalog.NormalizeID(cosmetic.ID)
	if id == defaultOutfitID {
		return
	}

	// guard against miscategorized catalog entries in the emote namespace
	if category == CategoryDance && cosmetic.Type.Value != "emote" && !a.tables.IsExclusive(id) {
		return
	}

	exclusive := a.isExclusive(owned, id)

	record := &CosmeticRecord{
		CosmeticID:     cosmetic.ID,
		Name:           cosmetic.Name,
		Category:       category,
		Rarity:         cosmetic.Rarity.Value,
		SmallIcon:      cosmetic.Images.SmallIcon,
		IsBanner:       false,
		IsExclusive:    exclusive,
		IsPopular:      a.tables.IsPopular(id),
		UnlockedStyles: owned.styles[id],
	}
	if exclusive {
		record.Rarity = "mythic"
	}

	snapshot.Categories[category] = append(snapshot.Categories[category], record)
	if record.IsPopular {
		snapshot.Categories[CategoryPopular] = append(snapshot.Categories[CategoryPopular], record)
	}
	if record.IsExclusive {
		snapshot.Categories[CategoryExclusive] = append(snapshot.Categories[CategoryExclusive], record)
	}
}

// isExclusive applies the exclusivity table combined with the conditional
// style rules: membership alone suffices unless the cosmetic has a rule, in
// which case the required style tag must be unlocked on this account.
func (a *Aggregator) isExclusive(owned *ownedIndex, id string) bool {
	if !a.tables.IsExclusive(id) {
		return false
	}

	tag, ok := a.tables.StyleRule(id)
	if !ok {
		return true
	}
	return owned.hasStyle(id, tag)
}

// placeBanners resolves the owned banner set against the banner catalog.
// Banners carry no native rarity: exclusivity-table members become mythic,
// the rest uncommon.
func (a *Aggregator) placeBanners(ctx context.Context, snapshot *Snapshot, owned *ownedIndex) {
	if len(owned.banners) == 0 {
		return
	}

	banners, err := a.catalog.Banners(ctx)
	if err != nil {
		log.Printf("[WARN] Banner catalog fetch failed: %v", err)
		return
	}

	for _, banner := range banners {
		id := catalog.NormalizeID(banner.ID)
		if _, ok := owned.banners[id]; !ok {
			continue
		}

		exclusive := a.tables.IsExclusive(id)
		rarity := "uncommon"
		if exclusive {
			rarity = "mythic"
		}

		record := &CosmeticRecord{
			CosmeticID:  banner.ID,
			Name:        banner.DevName,
			Category:    CategoryBanners,
			Rarity:      rarity,
			SmallIcon:   banner.Images.SmallIcon,
			IsBanner:    true,
			IsExclusive: exclusive,
			IsPopular:   a.tables.IsPopular(id),
		}

		snapshot.Categories[CategoryBanners] = append(snapshot.Categories[CategoryBanners], record)
		if record.IsExclusive {
			snapshot.Categories[CategoryExclusive] = append(snapshot.Categories[CategoryExclusive], record)
		}
	}
}
