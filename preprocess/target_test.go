package preprocess

import (
	"errors"
	"go.viam.com/test"
	"math"
	"testing"
)

func TestTargetSize(t *testing.T) {

	tests := []struct {
		width, height  int
		budget         int
		expectedWidth  int
		expectedHeight int
	}{
		{1, 1, DefaultPixelBudget, 256, 256},
		{256, 256, DefaultPixelBudget, 256, 256},
		{1920, 1080, DefaultPixelBudget, 341, 192},
		{20, 10, 50, 10, 5},
		{640, 480, DefaultPixelBudget, 296, 222},
		{1024, 1024, 262144, 512, 512},
	}

	for _, tc := range tests {
		w, h, err := TargetSize(tc.width, tc.height, tc.budget)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, w, test.ShouldEqual, tc.expectedWidth)
		test.That(t, h, test.ShouldEqual, tc.expectedHeight)
	}
}

func TestTargetSizeKeepsBudgetAndAspect(t *testing.T) {

	sizes := []int{1, 3, 17, 100, 256, 333, 640, 1000, 1920, 4000}

	for _, width := range sizes {
		for _, height := range sizes {
			w, h, err := TargetSize(width, height, DefaultPixelBudget)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, w, test.ShouldBeGreaterThan, 0)
			test.That(t, h, test.ShouldBeGreaterThan, 0)

			// each edge is off by at most half a pixel after rounding
			pixelTolerance := float64(w+h)/2 + 1
			test.That(t, math.Abs(float64(w*h-DefaultPixelBudget)), test.ShouldBeLessThanOrEqualTo, pixelTolerance)

			srcAspect := float64(width) / float64(height)
			dstAspect := float64(w) / float64(h)
			aspectTolerance := 1/float64(w) + 1/float64(h)
			test.That(t, math.Abs(dstAspect/srcAspect-1), test.ShouldBeLessThanOrEqualTo, aspectTolerance)
		}
	}
}

func TestTargetSizeThinImage(t *testing.T) {

	w, h, err := TargetSize(1000000, 1, DefaultPixelBudget)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w, test.ShouldEqual, 256000)
	test.That(t, h, test.ShouldEqual, 1)
}

func TestTargetSizeInvalid(t *testing.T) {

	tests := []struct {
		width, height, budget int
	}{
		{0, 480, DefaultPixelBudget},
		{640, 0, DefaultPixelBudget},
		{0, 0, DefaultPixelBudget},
		{-10, 480, DefaultPixelBudget},
		{640, 480, 0},
	}

	for _, tc := range tests {
		w, h, err := TargetSize(tc.width, tc.height, tc.budget)
		test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
		test.That(t, w, test.ShouldEqual, 0)
		test.That(t, h, test.ShouldEqual, 0)
	}
}
