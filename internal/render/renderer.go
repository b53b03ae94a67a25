// Package render defines the boundary the locker snapshot is consumed
// through: a dispatcher that hands pre-sorted categories to a pluggable
// image renderer.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/exocheck/exocheck/internal/locker"
	"github.com/exocheck/exocheck/internal/locker/tables"
)

// GradientType selects the username gradient effect.
type GradientType int

const (
	GradientNone GradientType = iota
	GradientRainbow
	GradientGold
	GradientSilver
)

// Badges are the per-user badge flags shown on renders.
type Badges struct {
	AlphaTester1 bool
	AlphaTester2 bool
	AlphaTester3 bool
	Newbie       bool
	Advanced     bool
	Epic         bool
}

// Preferences are the user's display preferences applied to every render.
type Preferences struct {
	Style    int
	Username string
	Gradient GradientType
	Badges   Badges

	// Optional custom assets; empty means the style default.
	CustomLogoPath       string
	CustomBackgroundPath string
}

// Request is one category render job. Records arrive pre-sorted in the
// render order contract; the renderer may lay them out however it chooses.
type Request struct {
	Category    string
	Preferences Preferences
	Records     []*locker.CosmeticRecord
	OutputPath  string
}

// Renderer produces one image artifact per request.
type Renderer interface {
	Render(ctx context.Context, req Request) error
}

// Dispatcher walks a snapshot's categories, applies the render ordering and
// invokes the renderer once per non-empty category.
type Dispatcher struct {
	renderer Renderer
	tables   *tables.Tables
}

// NewDispatcher creates a dispatcher over the given renderer and tables.
func NewDispatcher(renderer Renderer, t *tables.Tables) *Dispatcher {
	return &Dispatcher{renderer: renderer, tables: t}
}

// RenderSnapshot renders every non-empty category of the snapshot into
// outDir and returns the written paths in category order.
func (d *Dispatcher) RenderSnapshot(ctx context.Context, snapshot *locker.Snapshot, prefs Preferences, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, category := range locker.Categories {
		records := snapshot.Categories[category]
		if len(records) == 0 {
			continue
		}

		outputPath := filepath.Join(outDir, category+".png")
		req := Request{
			Category:    category,
			Preferences: prefs,
			Records:     locker.SortForRender(category, records, d.tables),
			OutputPath:  outputPath,
		}

		if err := d.renderer.Render(ctx, req); err != nil {
			return written, fmt.Errorf("failed to render %s: %w", category, err)
		}
		written = append(written, outputPath)
	}

	return written, nil
}
