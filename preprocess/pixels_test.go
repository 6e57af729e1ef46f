package preprocess

import (
	"errors"
	"go.viam.com/test"
	"gocv.io/x/gocv"
	"image"
	"image/color"
	"testing"
)

func TestFromImageNRGBA(t *testing.T) {

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 7, G: 8, B: 9, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 11, B: 12, A: 0})

	px := FromImage(img)

	test.That(t, px.Width, test.ShouldEqual, 2)
	test.That(t, px.Height, test.ShouldEqual, 2)
	test.That(t, px.Pix, test.ShouldResemble, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
}

func TestFromImageSubImage(t *testing.T) {

	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	sub := img.SubImage(image.Rect(1, 1, 3, 3))
	px := FromImage(sub)

	test.That(t, px.Width, test.ShouldEqual, 2)
	test.That(t, px.Height, test.ShouldEqual, 2)

	r, g, b := px.RGBAt(0, 0)
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{9, 8, 7})
}

func TestFromImageGray(t *testing.T) {

	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(2, 0, color.Gray{Y: 77})

	px := FromImage(img)

	test.That(t, px.Pix, test.ShouldResemble, []uint8{0, 0, 0, 0, 0, 0, 77, 77, 77})
}

func TestFromMat(t *testing.T) {

	mat, err := gocv.NewMatFromBytes(1, 2, gocv.MatTypeCV8UC3, []byte{1, 2, 3, 4, 5, 6})
	test.That(t, err, test.ShouldBeNil)
	defer mat.Close()

	px, err := FromMat(mat)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, px.Width, test.ShouldEqual, 2)
	test.That(t, px.Height, test.ShouldEqual, 1)
	test.That(t, px.Pix, test.ShouldResemble, []uint8{3, 2, 1, 6, 5, 4})

	gray := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer gray.Close()

	_, err = FromMat(gray)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	empty := gocv.NewMat()
	defer empty.Close()

	_, err = FromMat(empty)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}
