// Package tables loads the curated exclusivity and popularity tables that
// drive mythic overrides and the synthetic Exclusive/Popular categories.
package tables

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File names expected inside the tables directory.
const (
	ExclusiveFile  = "exclusive.txt"
	PopularFile    = "most_wanted.txt"
	StyleRulesFile = "style_rules.txt"
)

// defaultStyleRules maps a cosmetic ID to the unlocked style tag required
// for that cosmetic to count as exclusive. These are legacy cosmetics whose
// base version is common but whose specific style is the rare one (e.g. the
// Mat3 material on the Halloween skin). Overridable via style_rules.txt.
var defaultStyleRules = map[string]string{
	"cid_029_athena_commando_f_halloween":     "Mat3",   // Pink Ghoul Trooper
	"cid_030_athena_commando_m_halloween":     "Mat1",   // Purple Skull Trooper
	"cid_017_athena_commando_m":               "Stage2", // Aerial Assault Trooper
	"cid_028_athena_commando_f":               "Mat3",   // Renegade Raider
	"pickaxe_lockjaw":                         "Stage2", // Raider's Revenge
	"glider_id_001":                           "Stage2", // Aerial Assault One
	"cid_116_athena_commando_m_carbideblack":  "Stage5", // Omega (max lights)
	"cid_694_athena_commando_m_catburglar":    "Stage4", // Gold Midas
	"cid_693_athena_commando_m_buffcat":       "Stage4", // Gold Meowscles
	"cid_691_athena_commando_f_tntina":        "Stage7", // Gold TNTina
	"cid_690_athena_commando_f_photographer":  "Stage4", // Gold Skye
	"cid_701_athena_commando_m_bananaagent":   "Stage4", // Gold Agent Peely
	"cid_315_athena_commando_m_teriyakifish":  "Stage3", // World Cup Fishstick
	"cid_971_athena_commando_m_jupiter_s0z6m": "Mat2",   // Matte Black Master Chief
}

// Tables holds the loaded exclusivity/popularity data. All lookups are
// case-insensitive; list order defines sort precedence. Safe for concurrent
// use; Reload swaps the data atomically.
type Tables struct {
	dir string

	mu             sync.RWMutex
	exclusiveOrder []string
	exclusiveIndex map[string]int
	popularOrder   []string
	popularIndex   map[string]int
	styleRules     map[string]string
}

// Load reads the tables from the given directory. A missing list file
// degrades to an empty list; only unreadable files are errors.
func Load(dir string) (*Tables, error) {
	t := &Tables{dir: dir}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads all table files and swaps the in-memory data.
func (t *Tables) Reload() error {
	exclusive, err := readIDList(filepath.Join(t.dir, ExclusiveFile))
	if err != nil {
		return fmt.Errorf("load exclusivity table: %w", err)
	}

	popular, err := readIDList(filepath.Join(t.dir, PopularFile))
	if err != nil {
		return fmt.Errorf("load popularity table: %w", err)
	}

	rules, err := readStyleRules(filepath.Join(t.dir, StyleRulesFile))
	if err != nil {
		return fmt.Errorf("load style rules: %w", err)
	}
	if rules == nil {
		rules = defaultStyleRules
	}

	t.mu.Lock()
	t.exclusiveOrder = exclusive
	t.exclusiveIndex = indexOf(exclusive)
	t.popularOrder = popular
	t.popularIndex = indexOf(popular)
	t.styleRules = rules
	t.mu.Unlock()

	return nil
}

// IsExclusive reports whether the cosmetic ID is in the exclusivity table.
func (t *Tables) IsExclusive(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.exclusiveIndex[strings.ToLower(id)]
	return ok
}

// ExclusiveIndex returns the cosmetic's position in the exclusivity table.
// Entries not in the table report ok=false and must sort after all listed
// entries.
func (t *Tables) ExclusiveIndex(id string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.exclusiveIndex[strings.ToLower(id)]
	return idx, ok
}

// IsPopular reports whether the cosmetic ID is in the popularity table.
func (t *Tables) IsPopular(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.popularIndex[strings.ToLower(id)]
	return ok
}

// PopularIndex returns the cosmetic's position in the popularity table.
func (t *Tables) PopularIndex(id string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.popularIndex[strings.ToLower(id)]
	return idx, ok
}

// StyleRule returns the unlocked style tag required for the cosmetic to be
// treated as exclusive. ok=false means plain table membership suffices.
func (t *Tables) StyleRule(id string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tag, ok := t.styleRules[strings.ToLower(id)]
	return tag, ok
}

// ExclusiveCount returns the number of entries in the exclusivity table.
func (t *Tables) ExclusiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.exclusiveOrder)
}

// readIDList reads one cosmetic ID per line, lowercased, skipping blanks and
// '#' comments. A missing file yields an empty list.
func readIDList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return ids, nil
}

// readStyleRules reads "cosmetic_id style_tag" pairs. A missing file returns
// nil so the caller can fall back to the built-in rules.
func readStyleRules(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rules := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed style rule %q in %s", line, path)
		}
		rules[strings.ToLower(fields[0])] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return rules, nil
}

// indexOf builds an ID→position map from an ordered list. First occurrence
// wins for duplicated entries.
func indexOf(ids []string) map[string]int {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, seen := index[id]; !seen {
			index[id] = i
		}
	}
	return index
}
