package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/exocheck/exocheck/internal/locker"
	"github.com/exocheck/exocheck/internal/locker/tables"
	"github.com/exocheck/exocheck/internal/render/iconcache"
)

// captureRenderer records the requests it receives instead of drawing.
type captureRenderer struct {
	requests []Request
	failOn   string
}

func (r *captureRenderer) Render(_ context.Context, req Request) error {
	if r.failOn != "" && req.Category == r.failOn {
		return fmt.Errorf("render failed")
	}
	r.requests = append(r.requests, req)
	return nil
}

func emptyTables(t *testing.T) *tables.Tables {
	t.Helper()
	tbls, err := tables.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load tables failed: %v", err)
	}
	return tbls
}

func snapshotWith(t *testing.T, categories map[string][]*locker.CosmeticRecord) *locker.Snapshot {
	t.Helper()
	snapshot := locker.EmptySnapshot()
	for name, records := range categories {
		snapshot.Categories[name] = records
	}
	return snapshot
}

func TestRenderSnapshot_SkipsEmptyCategories(t *testing.T) {
	renderer := &captureRenderer{}
	dispatcher := NewDispatcher(renderer, emptyTables(t))

	snapshot := snapshotWith(t, map[string][]*locker.CosmeticRecord{
		locker.CategoryCharacter: {
			{CosmeticID: "cid_alpha", Rarity: "rare"},
		},
		locker.CategoryPickaxe: {
			{CosmeticID: "pickaxe_alpha", Rarity: "epic"},
		},
	})

	outDir := t.TempDir()
	written, err := dispatcher.RenderSnapshot(context.Background(), snapshot, Preferences{}, outDir)
	if err != nil {
		t.Fatalf("RenderSnapshot failed: %v", err)
	}

	if len(written) != 2 {
		t.Fatalf("expected 2 rendered files, got %d", len(written))
	}
	if len(renderer.requests) != 2 {
		t.Fatalf("expected 2 render calls, got %d", len(renderer.requests))
	}

	// categories render in the fixed order
	if renderer.requests[0].Category != locker.CategoryCharacter {
		t.Errorf("first render = %s", renderer.requests[0].Category)
	}
	if renderer.requests[1].Category != locker.CategoryPickaxe {
		t.Errorf("second render = %s", renderer.requests[1].Category)
	}

	for _, path := range written {
		if !strings.HasPrefix(path, outDir) || !strings.HasSuffix(path, ".png") {
			t.Errorf("unexpected output path %s", path)
		}
	}
}

func TestRenderSnapshot_AppliesRenderOrder(t *testing.T) {
	renderer := &captureRenderer{}
	dispatcher := NewDispatcher(renderer, emptyTables(t))

	snapshot := snapshotWith(t, map[string][]*locker.CosmeticRecord{
		locker.CategoryCharacter: {
			{CosmeticID: "c", Rarity: "common"},
			{CosmeticID: "l", Rarity: "legendary"},
			{CosmeticID: "e", Rarity: "epic"},
		},
	})

	_, err := dispatcher.RenderSnapshot(context.Background(), snapshot, Preferences{}, t.TempDir())
	if err != nil {
		t.Fatalf("RenderSnapshot failed: %v", err)
	}

	records := renderer.requests[0].Records
	got := []string{records[0].CosmeticID, records[1].CosmeticID, records[2].CosmeticID}
	want := []string{"l", "e", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("render order = %v, want %v", got, want)
		}
	}

	// the snapshot itself keeps its insertion order
	if snapshot.Categories[locker.CategoryCharacter][0].CosmeticID != "c" {
		t.Error("dispatcher must not reorder the snapshot in place")
	}
}

func TestRenderSnapshot_PropagatesPreferences(t *testing.T) {
	renderer := &captureRenderer{}
	dispatcher := NewDispatcher(renderer, emptyTables(t))

	snapshot := snapshotWith(t, map[string][]*locker.CosmeticRecord{
		locker.CategoryGlider: {{CosmeticID: "glider_alpha", Rarity: "rare"}},
	})

	prefs := Preferences{Username: "tester", Gradient: GradientGold, Badges: Badges{Epic: true}}
	_, err := dispatcher.RenderSnapshot(context.Background(), snapshot, prefs, t.TempDir())
	if err != nil {
		t.Fatalf("RenderSnapshot failed: %v", err)
	}

	req := renderer.requests[0]
	if req.Preferences.Username != "tester" || req.Preferences.Gradient != GradientGold {
		t.Errorf("preferences not propagated: %+v", req.Preferences)
	}
	if !req.Preferences.Badges.Epic {
		t.Error("badges not propagated")
	}
}

func TestRenderSnapshot_StopsOnRenderFailure(t *testing.T) {
	renderer := &captureRenderer{failOn: locker.CategoryPickaxe}
	dispatcher := NewDispatcher(renderer, emptyTables(t))

	snapshot := snapshotWith(t, map[string][]*locker.CosmeticRecord{
		locker.CategoryCharacter: {{CosmeticID: "cid_alpha", Rarity: "rare"}},
		locker.CategoryPickaxe:   {{CosmeticID: "pickaxe_alpha", Rarity: "epic"}},
		locker.CategoryGlider:    {{CosmeticID: "glider_alpha", Rarity: "rare"}},
	})

	written, err := dispatcher.RenderSnapshot(context.Background(), snapshot, Preferences{}, t.TempDir())
	if err == nil {
		t.Fatal("expected render failure to propagate")
	}
	if len(written) != 1 {
		t.Errorf("expected the paths written before the failure, got %d", len(written))
	}
}

func TestGridRenderer_WritesImage(t *testing.T) {
	dir := t.TempDir()

	icons, err := iconcache.New(iconcache.Options{CacheDir: filepath.Join(dir, "icons")})
	if err != nil {
		t.Fatalf("icon cache init failed: %v", err)
	}
	renderer := NewGridRenderer(icons)

	outputPath := filepath.Join(dir, "AthenaCharacter.png")
	req := Request{
		Category: locker.CategoryCharacter,
		Records: []*locker.CosmeticRecord{
			{CosmeticID: "cid_alpha", Name: "Alpha", Rarity: "rare"},
			{CosmeticID: "cid_bravo", Name: "Bravo", Rarity: "mythic"},
		},
		OutputPath: outputPath,
	}

	if err := renderer.Render(context.Background(), req); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}
}
