package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrEmptyInput is returned when a collage is requested for zero images.
var ErrEmptyInput = errors.New("no images to compose")

// collageColumns is the fixed grid width; fewer columns are used when the
// input is smaller.
const collageColumns = 3

// jpegQuality favors payload size over fidelity for chat delivery.
const jpegQuality = 85

// Compose lays thumbs out in a grid and encodes the canvas as JPEG.
// The cell size is taken from the first image; inputs are expected to be
// pre-normalized by the decode pool. An oversized straggler is clipped at
// the canvas edge rather than resized.
func Compose(thumbs []image.Image) ([]byte, error) {
	if len(thumbs) == 0 {
		return nil, ErrEmptyInput
	}

	cols := collageColumns
	if len(thumbs) < cols {
		cols = len(thumbs)
	}
	rows := (len(thumbs) + cols - 1) / cols

	cellW := thumbs[0].Bounds().Dx()
	cellH := thumbs[0].Bounds().Dy()

	canvas := imaging.New(cols*cellW, rows*cellH, color.NRGBA{A: 255})
	for i, th := range thumbs {
		x := (i % cols) * cellW
		y := (i / cols) * cellH
		canvas = imaging.Paste(canvas, th, image.Pt(x, y))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
