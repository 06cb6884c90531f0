// Package translate renders text as a sequence of sign images.
package translate

import (
	"fmt"
	"image"
	"math"
	"path/filepath"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/domain"
)

// DefaultHeight is the height every image is resized to before concatenation.
const DefaultHeight = 50

// Asset is one character's image.
type Asset struct {
	Char domain.Char `json:"char"`
	File string      `json:"file"`
}

// Result is the outcome of translating a string: the images to show in
// order, and the characters that had no image. Missing is filled by
// RenderPNG with mapped assets whose file could not be loaded.
type Result struct {
	Assets  []Asset       `json:"assets"`
	Skipped []domain.Char `json:"skipped"`
	Missing []Asset       `json:"missing,omitempty"`
}

// Unrendered returns every character left out of the image: unmapped
// characters followed by those whose file is missing.
func (r Result) Unrendered() []domain.Char {
	out := make([]domain.Char, 0, len(r.Skipped)+len(r.Missing))
	out = append(out, r.Skipped...)
	for _, a := range r.Missing {
		out = append(out, a.Char)
	}
	return out
}

// Config holds translator settings.
type Config struct {
	AssetDir string
	Table    Table
	Height   int
}

// Translator maps text to sign images and composes them into one canvas.
type Translator struct {
	dir    string
	table  Table
	height int
	logger *zap.Logger
}

// New creates a Translator. A nil table means DefaultTable, and the space
// mapping is always present.
func New(config Config, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := config.Table
	if table == nil {
		table = DefaultTable()
	}
	height := config.Height
	if height <= 0 {
		height = DefaultHeight
	}

	return &Translator{
		dir:    config.AssetDir,
		table:  table.withSpace(),
		height: height,
		logger: logger,
	}
}

// Height returns the uniform output height.
func (t *Translator) Height() int {
	return t.height
}

// Translate upper-cases text and maps every rune through the table.
// Unmapped runes go to Skipped; the output is deterministic.
func (t *Translator) Translate(text string) Result {
	res := Result{Assets: []Asset{}, Skipped: []domain.Char{}}
	for _, r := range text {
		c, file, ok := t.table.Lookup(r)
		if !ok {
			res.Skipped = append(res.Skipped, c)
			continue
		}
		res.Assets = append(res.Assets, Asset{Char: c, File: file})
	}
	return res
}

// ScaledWidth returns the width of a w x h image resized to the given height
// with its aspect ratio kept. It is never less than 1.
func ScaledWidth(w, h, height int) int {
	if w <= 0 || h <= 0 {
		return 0
	}
	sw := int(math.Round(float64(w) * float64(height) / float64(h)))
	if sw < 1 {
		sw = 1
	}
	return sw
}

// Layout computes the resized width of each image and the final canvas size.
// Canvas width is the sum of the widths; height is the uniform height, or 0
// when there is nothing to draw.
func Layout(sizes []image.Point, height int) ([]int, image.Point) {
	widths := make([]int, len(sizes))
	canvas := image.Point{}
	for i, s := range sizes {
		widths[i] = ScaledWidth(s.X, s.Y, height)
		canvas.X += widths[i]
	}
	if canvas.X > 0 {
		canvas.Y = height
	}
	return widths, canvas
}

// Compose loads each asset, resizes it to the uniform height and concatenates
// the images left to right. Missing or unreadable files are logged and
// returned in missing; the canvas holds whatever loaded. The caller closes the Mat.
func (t *Translator) Compose(assets []Asset) (gocv.Mat, []Asset, error) {
	var (
		images  []gocv.Mat
		sizes   []image.Point
		missing []Asset
	)
	defer func() {
		for _, img := range images {
			img.Close()
		}
	}()

	for _, a := range assets {
		path := filepath.Join(t.dir, a.File)
		img := gocv.IMRead(path, gocv.IMReadColor)
		if img.Empty() {
			img.Close()
			err := &domain.OpError{Op: "translate.compose", Kind: domain.KindAssetNotFound, Path: path}
			t.logger.Warn("Skipping sign image", zap.String("char", a.Char.String()), zap.Error(err))
			missing = append(missing, a)
			continue
		}
		images = append(images, img)
		sizes = append(sizes, image.Point{X: img.Cols(), Y: img.Rows()})
	}

	if len(images) == 0 {
		return gocv.NewMat(), missing, domain.NewError("translate.compose", domain.KindAssetNotFound,
			fmt.Errorf("no images to compose"))
	}

	widths, size := Layout(sizes, t.height)

	canvas := gocv.NewMatWithSize(size.Y, size.X, gocv.MatTypeCV8UC3)
	canvas.SetTo(gocv.NewScalar(255, 255, 255, 0))

	x := 0
	for i, img := range images {
		resized := gocv.NewMat()
		gocv.Resize(img, &resized, image.Point{X: widths[i], Y: t.height}, 0, 0, gocv.InterpolationArea)

		region := canvas.Region(image.Rect(x, 0, x+widths[i], t.height))
		resized.CopyTo(&region)
		region.Close()
		resized.Close()

		x += widths[i]
	}

	return canvas, missing, nil
}

// RenderPNG translates text and encodes the composed canvas as PNG. Assets
// whose file could not be loaded are reported in the result's Missing.
func (t *Translator) RenderPNG(text string) ([]byte, Result, error) {
	res := t.Translate(text)

	canvas, missing, err := t.Compose(res.Assets)
	res.Missing = missing
	defer canvas.Close()
	if err != nil {
		return nil, res, err
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, canvas)
	if err != nil {
		return nil, res, fmt.Errorf("failed to encode canvas: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, res, nil
}
