package onnxdetect

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-onnxdetect/preprocess"
	"time"
)

// Predict runs the Model on an RGB image that has already been resized to
// the configured input size.  The raw output grid is returned as (height,
// width, channel) float32 values, the meaning of each channel is defined by
// the Model.
//
// ErrShapeMismatch is returned without running the Model when the image size
// differs from the configured input size.  It is not retried.
func (r *Runtime) Predict(px *preprocess.Pixels) (*Output, error) {

	if px == nil {
		return nil, errors.Wrap(ErrInvalidInput, "nil image")
	}

	if px.Width != r.width || px.Height != r.height {
		return nil, errors.Wrapf(ErrShapeMismatch, "image is %dx%d but model %s is configured for %dx%d",
			px.Width, px.Height, r.inputName, r.width, r.height)
	}

	input, err := NewInputTensor(px, r.fp16)

	if err != nil {
		return nil, err
	}

	input.Name = r.inputName

	start := time.Now()

	out, err := r.session.Run(input)

	if err != nil {
		return nil, &engineError{cause: err}
	}

	r.logger.Debugw("inference", "shape", input.Shape, "type", input.Type.String(),
		"output_shape", out.Shape, "duration", time.Since(start))

	return newOutput(out)
}
