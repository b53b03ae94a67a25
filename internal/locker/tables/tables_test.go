package tables

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_MissingFilesDegradeToEmpty(t *testing.T) {
	tbls, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if tbls.ExclusiveCount() != 0 {
		t.Errorf("expected empty exclusivity table, got %d entries", tbls.ExclusiveCount())
	}
	if tbls.IsExclusive("cid_028_athena_commando_f") {
		t.Error("nothing should be exclusive with no table file")
	}
	if tbls.IsPopular("anything") {
		t.Error("nothing should be popular with no table file")
	}
}

func TestLoad_MissingStyleRulesUsesDefaults(t *testing.T) {
	tbls, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tag, ok := tbls.StyleRule("CID_029_Athena_Commando_F_Halloween")
	if !ok || tag != "Mat3" {
		t.Errorf("default rule = %q, %t; want Mat3, true", tag, ok)
	}
	tag, ok = tbls.StyleRule("Pickaxe_Lockjaw")
	if !ok || tag != "Stage2" {
		t.Errorf("default rule = %q, %t; want Stage2, true", tag, ok)
	}
	if _, ok := tbls.StyleRule("cid_no_rule"); ok {
		t.Error("unexpected rule for unlisted cosmetic")
	}
}

func TestLoad_ListOrderAndCase(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, ExclusiveFile, "# curated list\nCID_Bravo\n\ncid_alpha\n")
	writeTable(t, dir, PopularFile, "cid_wanted\n")

	tbls, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !tbls.IsExclusive("CID_ALPHA") {
		t.Error("lookup must be case-insensitive")
	}
	if idx, ok := tbls.ExclusiveIndex("cid_bravo"); !ok || idx != 0 {
		t.Errorf("ExclusiveIndex(cid_bravo) = %d, %t; want 0, true", idx, ok)
	}
	if idx, ok := tbls.ExclusiveIndex("cid_alpha"); !ok || idx != 1 {
		t.Errorf("ExclusiveIndex(cid_alpha) = %d, %t; want 1, true", idx, ok)
	}
	if _, ok := tbls.ExclusiveIndex("cid_unlisted"); ok {
		t.Error("unlisted entries must report ok=false")
	}
	if !tbls.IsPopular("CID_Wanted") {
		t.Error("popularity lookup must be case-insensitive")
	}
	if tbls.ExclusiveCount() != 2 {
		t.Errorf("ExclusiveCount = %d, want 2", tbls.ExclusiveCount())
	}
}

func TestLoad_StyleRulesFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, StyleRulesFile, "# id tag\nCID_Custom Stage9\n")

	tbls, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tag, ok := tbls.StyleRule("cid_custom")
	if !ok || tag != "Stage9" {
		t.Errorf("StyleRule(cid_custom) = %q, %t; want Stage9, true", tag, ok)
	}
	// the file replaces the defaults wholesale
	if _, ok := tbls.StyleRule("cid_029_athena_commando_f_halloween"); ok {
		t.Error("defaults must not survive an explicit rules file")
	}
}

func TestLoad_MalformedStyleRule(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, StyleRulesFile, "cid_broken Stage2 extra\n")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed style rule")
	}
}

func TestReload_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, ExclusiveFile, "cid_old\n")

	tbls, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !tbls.IsExclusive("cid_old") {
		t.Fatal("initial load missing cid_old")
	}

	writeTable(t, dir, ExclusiveFile, "cid_new\n")
	if err := tbls.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if tbls.IsExclusive("cid_old") {
		t.Error("stale entry survived reload")
	}
	if !tbls.IsExclusive("cid_new") {
		t.Error("new entry missing after reload")
	}
}

func TestLoad_DuplicateEntriesFirstWins(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, ExclusiveFile, "cid_twice\ncid_other\ncid_twice\n")

	tbls, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if idx, _ := tbls.ExclusiveIndex("cid_twice"); idx != 0 {
		t.Errorf("duplicate entry index = %d, want first occurrence 0", idx)
	}
}
