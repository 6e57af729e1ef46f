package onnxdetect

import (
	"github.com/swdee/go-onnxdetect/preprocess"
	"gocv.io/x/gocv"
	"image"
)

// Detector runs object detection on a decoded image and returns the raw
// output grid of the Model
type Detector interface {
	PredictImage(img image.Image) (*Output, error)
}

// ObjectDetector is the ONNX Runtime Detector.  Each image is scaled to the
// pixel budget and the Model input reconfigured to the same size before
// inference.
type ObjectDetector struct {
	rt     *Runtime
	labels []string
	// budget is the pixel count images are scaled to
	budget int
	// fixedInput leaves the Model input size untouched, images whose
	// scaled size differs fail with ErrShapeMismatch
	fixedInput bool
}

// DetectorOption configures an ObjectDetector
type DetectorOption func(*ObjectDetector)

// WithPixelBudget sets the pixel count images are scaled to, the default is
// preprocess.DefaultPixelBudget
func WithPixelBudget(budget int) DetectorOption {
	return func(d *ObjectDetector) {
		d.budget = budget
	}
}

// WithFixedInput stops the detector from reconfiguring the Model input size
// to match each image
func WithFixedInput(fixed bool) DetectorOption {
	return func(d *ObjectDetector) {
		d.fixedInput = fixed
	}
}

// NewObjectDetector returns a Detector running on the given Runtime
func NewObjectDetector(rt *Runtime, labels []string, opts ...DetectorOption) *ObjectDetector {

	d := &ObjectDetector{
		rt:     rt,
		labels: labels,
		budget: preprocess.DefaultPixelBudget,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Labels returns the class labels of the Model, the index being the class id
func (d *ObjectDetector) Labels() []string {
	return d.labels
}

// Runtime returns the Runtime the detector runs on
func (d *ObjectDetector) Runtime() *Runtime {
	return d.rt
}

// PredictImage scales the image to the pixel budget and runs the Model on it
func (d *ObjectDetector) PredictImage(img image.Image) (*Output, error) {

	b := img.Bounds()

	resizer, err := d.prepare(b.Dx(), b.Dy())

	if err != nil {
		return nil, err
	}

	defer resizer.Close()

	return d.rt.Predict(resizer.Resize(img))
}

// PredictMat is PredictImage for a BGR gocv.Mat, scaling with OpenCV
func (d *ObjectDetector) PredictMat(mat gocv.Mat) (*Output, error) {

	resizer, err := d.prepare(mat.Cols(), mat.Rows())

	if err != nil {
		return nil, err
	}

	defer resizer.Close()

	px, err := resizer.ResizeMat(mat)

	if err != nil {
		return nil, err
	}

	return d.rt.Predict(px)
}

// prepare calculates the scaled size for the image and configures the Model
// input to the same size, so both always agree
func (d *ObjectDetector) prepare(width, height int) (*preprocess.Resizer, error) {

	resizer, err := preprocess.NewResizer(width, height, d.budget)

	if err != nil {
		return nil, err
	}

	if d.fixedInput {
		return resizer, nil
	}

	err = d.rt.SetInputSize(resizer.DestWidth(), resizer.DestHeight())

	if err != nil {
		resizer.Close()
		return nil, err
	}

	return resizer, nil
}
