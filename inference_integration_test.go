//go:build integration
// +build integration

package onnxdetect

import (
	"github.com/swdee/go-onnxdetect/preprocess"
	"go.viam.com/test"
	"os"
	"testing"
)

func TestObjectDetectorModel(t *testing.T) {

	// model and image files are provided in ONNX_MODEL and ONNX_IMAGE
	modelFile := os.Getenv("ONNX_MODEL")
	test.That(t, modelFile, test.ShouldNotBeEmpty)

	imgFile := os.Getenv("ONNX_IMAGE")
	test.That(t, imgFile, test.ShouldNotBeEmpty)

	// Initialize runtime
	rt, err := NewRuntime(modelFile,
		WithSharedLibraryPath(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")))
	test.That(t, err, test.ShouldBeNil)

	defer func() {
		test.That(t, rt.Close(), test.ShouldBeNil)
	}()

	test.That(t, rt.Version(), test.ShouldNotBeEmpty)

	img, err := preprocess.Open(imgFile)
	test.That(t, err, test.ShouldBeNil)

	detector := NewObjectDetector(rt, nil)

	// run inference
	output, err := detector.PredictImage(img)
	test.That(t, err, test.ShouldBeNil)

	b := img.Bounds()
	w, h, err := preprocess.TargetSize(b.Dx(), b.Dy(), preprocess.DefaultPixelBudget)
	test.That(t, err, test.ShouldBeNil)

	iw, ih := rt.InputSize()
	test.That(t, iw, test.ShouldEqual, w)
	test.That(t, ih, test.ShouldEqual, h)

	test.That(t, output.Height, test.ShouldBeGreaterThan, 0)
	test.That(t, output.Width, test.ShouldBeGreaterThan, 0)
	test.That(t, output.Channels, test.ShouldBeGreaterThan, 0)
	test.That(t, output.Data, test.ShouldHaveLength, output.Height*output.Width*output.Channels)

	// a second image of another size reuses the same session
	small := preprocess.NewPixels(64, 32)

	if err := rt.SetInputSize(small.Width, small.Height); err != nil {
		t.Skipf("model has fixed input dimensions: %v", err)
	}

	_, err = rt.Predict(small)
	test.That(t, err, test.ShouldBeNil)
}
