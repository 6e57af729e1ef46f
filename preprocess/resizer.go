package preprocess

import (
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"image"
)

// Resizer defines the struct used for scaling an image to the pixel budget
// the Model input is configured for
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// budget is the pixel count destWidth x destHeight was calculated for
	budget int
	// tempMat is a Mat used during the OpenCV resize process, only allocated
	// on first use of ResizeMat()
	tempMat    gocv.Mat
	hasTempMat bool
}

// NewResizer returns a resizer used for scaling an image of the given source
// dimensions so it holds roughly budget pixels whilst keeping its aspect ratio
func NewResizer(srcWidth, srcHeight, budget int) (*Resizer, error) {

	w, h, err := TargetSize(srcWidth, srcHeight, budget)

	if err != nil {
		return nil, err
	}

	return &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  w,
		destHeight: h,
		budget:     budget,
	}, nil
}

// Close frees memory allocated during the OpenCV resize process
func (r *Resizer) Close() error {

	if !r.hasTempMat {
		return nil
	}

	r.hasTempMat = false
	return r.tempMat.Close()
}

// Resize scales the image to the destination dimensions using bilinear
// resampling
func (r *Resizer) Resize(img image.Image) *Pixels {
	resized := imaging.Resize(img, r.destWidth, r.destHeight, imaging.Linear)
	return FromImage(resized)
}

// ResizeMat scales a BGR gocv.Mat to the destination dimensions using OpenCV
// and returns the result converted to RGB
func (r *Resizer) ResizeMat(src gocv.Mat) (*Pixels, error) {

	if src.Empty() {
		return nil, errors.Wrap(ErrInvalidInput, "empty Mat")
	}

	if src.Cols() != r.srcWidth || src.Rows() != r.srcHeight {
		return nil, errors.Wrapf(ErrInvalidInput, "Mat is %dx%d, resizer expects %dx%d",
			src.Cols(), src.Rows(), r.srcWidth, r.srcHeight)
	}

	if !r.hasTempMat {
		r.tempMat = gocv.NewMat()
		r.hasTempMat = true
	}

	gocv.Resize(src, &r.tempMat, image.Pt(r.destWidth, r.destHeight),
		0, 0, gocv.InterpolationLinear)

	return FromMat(r.tempMat)
}

// DestWidth returns the width images are scaled to
func (r *Resizer) DestWidth() int {
	return r.destWidth
}

// DestHeight returns the height images are scaled to
func (r *Resizer) DestHeight() int {
	return r.destHeight
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}

// Budget returns the pixel budget the destination size was calculated for
func (r *Resizer) Budget() int {
	return r.budget
}
