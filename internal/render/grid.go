package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // background decoding
	"image/png"
	"math"
	"os"
	"time"

	"github.com/exocheck/exocheck/internal/render/iconcache"
)

const (
	thumbSize  = 128
	headerSize = 140
	footerSize = 40
	cellBorder = 4
	perRowBase = 6
)

// rarityColors tint each cell's background by the record's rarity.
var rarityColors = map[string]color.NRGBA{
	"mythic":        {255, 200, 80, 255},
	"legendary":     {211, 120, 65, 255},
	"dark":          {190, 60, 220, 255},
	"slurp":         {60, 200, 220, 255},
	"starwars":      {40, 60, 130, 255},
	"marvel":        {200, 50, 50, 255},
	"lava":          {210, 100, 40, 255},
	"frozen":        {140, 200, 240, 255},
	"gaminglegends": {90, 60, 200, 255},
	"shadow":        {60, 60, 60, 255},
	"icon":          {70, 200, 200, 255},
	"dc":            {50, 80, 160, 255},
	"epic":          {170, 80, 220, 255},
	"rare":          {70, 140, 230, 255},
	"uncommon":      {100, 180, 80, 255},
	"common":        {150, 150, 150, 255},
}

// GridRenderer renders a category as a PNG contact sheet: a header band, a
// grid of rarity-tinted icon cells, and a footer carrying the date stamp.
// Output is deterministic for identical inputs except that stamp.
type GridRenderer struct {
	icons *iconcache.Cache
	now   func() time.Time
}

// NewGridRenderer creates a grid renderer drawing icons from the cache.
func NewGridRenderer(icons *iconcache.Cache) *GridRenderer {
	return &GridRenderer{icons: icons, now: time.Now}
}

// Render implements the Renderer interface.
func (r *GridRenderer) Render(ctx context.Context, req Request) error {
	perRow, rows := gridLayout(len(req.Records))

	width := perRow * thumbSize
	height := headerSize + rows*thumbSize + footerSize
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))

	base := color.NRGBA{12, 12, 16, 255}
	if req.Preferences.Style == 1 {
		base = color.NRGBA{235, 235, 240, 255}
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(base), image.Point{}, draw.Src)

	if req.Preferences.CustomBackgroundPath != "" {
		if bg, err := loadImage(req.Preferences.CustomBackgroundPath); err == nil {
			drawScaled(canvas, canvas.Bounds(), bg)
		}
	}

	// header band: item count blocks, gradient-tinted
	drawHeader(canvas, len(req.Records), req.Preferences.Gradient)

	for i, record := range req.Records {
		col := i % perRow
		row := i / perRow
		cell := image.Rect(
			col*thumbSize, headerSize+row*thumbSize,
			(col+1)*thumbSize, headerSize+(row+1)*thumbSize,
		)

		tint, ok := rarityColors[record.Rarity]
		if !ok {
			tint = rarityColors["common"]
		}
		draw.Draw(canvas, cell.Inset(1), image.NewUniform(tint), image.Point{}, draw.Src)

		icon, err := r.icons.Get(ctx, record.CosmeticID, record.SmallIcon)
		if err != nil {
			// missing icon leaves the rarity tile; the record still counts
			continue
		}

		iconRect := cell.Inset(cellBorder)
		if record.IsBanner {
			// banners are non-square; fit instead of fill
			iconRect = fitRect(iconRect, icon.Bounds())
		}
		drawScaled(canvas, iconRect, icon)
	}

	drawDateStamp(canvas, r.now(), height-footerSize)

	return writePNG(req.OutputPath, canvas)
}

// gridLayout computes columns and rows: six per row, switching to a roughly
// square layout past 30 items.
func gridLayout(total int) (perRow, rows int) {
	if total == 0 {
		return 1, 1
	}

	perRow = perRowBase
	rows = (total + perRow - 1) / perRow
	if total > 30 {
		rows = int(math.Sqrt(float64(total)))
		perRow = (total + rows - 1) / rows
		for perRow*rows < total {
			rows++
			perRow = (total + rows - 1) / rows
		}
	}
	return perRow, rows
}

// drawHeader fills the header band and marks the item count as a row of
// blocks (one per ten items, one small block per remaining item).
func drawHeader(canvas *image.NRGBA, count int, gradient GradientType) {
	band := image.Rect(0, 0, canvas.Bounds().Dx(), headerSize)
	draw.Draw(canvas, band, image.NewUniform(color.NRGBA{24, 24, 32, 255}), image.Point{}, draw.Src)

	x := 12
	for i := 0; i < count/10 && x+20 < canvas.Bounds().Dx(); i++ {
		block := image.Rect(x, 20, x+16, 52)
		draw.Draw(canvas, block, image.NewUniform(gradientColor(gradient, i)), image.Point{}, draw.Src)
		x += 20
	}
	for i := 0; i < count%10 && x+12 < canvas.Bounds().Dx(); i++ {
		block := image.Rect(x, 36, x+8, 52)
		draw.Draw(canvas, block, image.NewUniform(gradientColor(gradient, i)), image.Point{}, draw.Src)
		x += 12
	}
}

// gradientColor picks the block color for the selected gradient effect.
func gradientColor(gradient GradientType, i int) color.NRGBA {
	switch gradient {
	case GradientRainbow:
		switch i % 3 {
		case 0:
			return color.NRGBA{230, 80, 80, 255}
		case 1:
			return color.NRGBA{80, 230, 120, 255}
		default:
			return color.NRGBA{90, 120, 230, 255}
		}
	case GradientGold:
		return color.NRGBA{230, 190, 60, 255}
	case GradientSilver:
		return color.NRGBA{200, 200, 210, 255}
	default:
		return color.NRGBA{240, 240, 240, 255}
	}
}

// digit bitmaps for the date stamp, 3x5 per glyph.
var stampDigits = map[rune][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b010, 0b010, 0b010},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
}

// drawDateStamp draws the check date (DD.MM.YY) into the footer band.
func drawDateStamp(canvas *image.NRGBA, now time.Time, top int) {
	band := image.Rect(0, top, canvas.Bounds().Dx(), canvas.Bounds().Dy())
	draw.Draw(canvas, band, image.NewUniform(color.NRGBA{24, 24, 32, 255}), image.Point{}, draw.Src)

	const scale = 3
	x := 12
	y := top + 10
	white := color.NRGBA{240, 240, 240, 255}

	for _, ch := range now.Format("02.01.06") {
		glyph, ok := stampDigits[ch]
		if !ok {
			continue
		}
		for row := 0; row < 5; row++ {
			for col := 0; col < 3; col++ {
				if glyph[row]&(1<<(2-col)) == 0 {
					continue
				}
				px := image.Rect(x+col*scale, y+row*scale, x+(col+1)*scale, y+(row+1)*scale)
				draw.Draw(canvas, px, image.NewUniform(white), image.Point{}, draw.Src)
			}
		}
		x += 4 * scale
	}
}

// fitRect shrinks dst to the largest rectangle with src's aspect ratio,
// centered.
func fitRect(dst image.Rectangle, src image.Rectangle) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}

	scale := math.Min(float64(dw)/float64(sw), float64(dh)/float64(sh))
	w := int(float64(sw) * scale)
	h := int(float64(sh) * scale)

	x0 := dst.Min.X + (dw-w)/2
	y0 := dst.Min.Y + (dh-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

// drawScaled draws src scaled into dst using nearest-neighbor sampling.
func drawScaled(canvas *image.NRGBA, dst image.Rectangle, src image.Image) {
	bounds := src.Bounds()
	dw, dh := dst.Dx(), dst.Dy()
	if dw == 0 || dh == 0 || bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}

	for y := 0; y < dh; y++ {
		sy := bounds.Min.Y + y*bounds.Dy()/dh
		for x := 0; x < dw; x++ {
			sx := bounds.Min.X + x*bounds.Dx()/dw
			r, g, b, a := src.At(sx, sy).RGBA()
			if a == 0 {
				continue
			}
			canvas.Set(dst.Min.X+x, dst.Min.Y+y, color.RGBA64{uint16(r), uint16(g), uint16(b), uint16(a)})
		}
	}
}

// loadImage decodes an image file from disk.
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// writePNG writes the canvas atomically via a temp file rename.
func writePNG(path string, canvas image.Image) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := png.Encode(file, canvas); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to move output file: %w", err)
	}

	return nil
}
