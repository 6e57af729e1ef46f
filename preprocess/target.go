package preprocess

import (
	"github.com/pkg/errors"
	"math"
)

// DefaultPixelBudget is the total number of pixels (width x height) an image
// is scaled to before being passed to the Model, 256x256 by convention.  Make
// it smaller if inference is too slow.
const DefaultPixelBudget = 65536

// DefaultInputSize is the spatial input size assumed for Models that declare
// dynamic input dimensions
const DefaultInputSize = 256

var (
	// ErrInvalidInput is returned when an image or requested size has a zero
	// or negative dimension
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnidentifiedImage is returned when an image file can not be decoded
	ErrUnidentifiedImage = errors.New("cannot identify image file")
)

// TargetSize calculates the width and height to resize an image of the given
// dimensions to, so the aspect ratio is kept and width x height is close to
// the pixel budget.
func TargetSize(width, height, budget int) (int, int, error) {

	if width <= 0 || height <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidInput, "image size %dx%d", width, height)
	}

	if budget <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidInput, "pixel budget %d", budget)
	}

	scale := math.Sqrt(float64(budget) / (float64(width) * float64(height)))

	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))

	// a very thin image can round an edge down to nothing
	if w < 1 {
		w = 1
	}

	if h < 1 {
		h = 1
	}

	return w, h, nil
}
