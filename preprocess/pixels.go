package preprocess

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

// Pixels is an RGB image buffer with the color channels interleaved, stored
// row by row.  This is the layout handed to the Runtime for inference.
type Pixels struct {
	Width  int
	Height int
	// Pix holds Width*Height*3 bytes in R, G, B order
	Pix []uint8
}

// NewPixels allocates a zeroed (black) buffer of the given dimensions
func NewPixels(width, height int) *Pixels {
	return &Pixels{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// RGBAt returns the color channel values of the pixel at x, y
func (p *Pixels) RGBAt(x, y int) (r, g, b uint8) {
	i := (y*p.Width + x) * 3
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}

// FromImage copies a decoded image into an RGB Pixels buffer.  Any alpha
// channel is dropped without blending.
func FromImage(img image.Image) *Pixels {

	b := img.Bounds()
	px := NewPixels(b.Dx(), b.Dy())

	// imaging returns NRGBA so copy straight from its backing array
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < px.Height; y++ {
			src := nrgba.Pix[nrgba.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := px.Pix[y*px.Width*3:]

			for x := 0; x < px.Width; x++ {
				dst[x*3] = src[x*4]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4+2]
			}
		}

		return px
	}

	i := 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			px.Pix[i] = c.R
			px.Pix[i+1] = c.G
			px.Pix[i+2] = c.B
			i += 3
		}
	}

	return px
}

// FromMat copies a 3 channel BGR gocv.Mat, as read by gocv.IMRead, into an
// RGB Pixels buffer
func FromMat(mat gocv.Mat) (*Pixels, error) {

	if mat.Empty() {
		return nil, errors.Wrap(ErrInvalidInput, "empty Mat")
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Wrapf(ErrInvalidInput, "expected 8 bit 3 channel Mat, got type %v", mat.Type())
	}

	rgb := gocv.NewMat()
	defer rgb.Close()

	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	return &Pixels{
		Width:  rgb.Cols(),
		Height: rgb.Rows(),
		Pix:    rgb.ToBytes(),
	}, nil
}
