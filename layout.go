package onnxdetect

import (
	"bufio"
	"github.com/pkg/errors"
	"github.com/swdee/go-onnxdetect/preprocess"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/tensor"
	"io"
	"strconv"
)

// NewInputTensor converts an RGB image into the (1, 3, height, width) BGR
// float tensor the Model takes.  Pixel values are passed through unscaled in
// the range 0-255.  When fp16 is set the tensor is downcast to float16.
func NewInputTensor(px *preprocess.Pixels, fp16 bool) (*Tensor, error) {

	if px == nil || px.Width <= 0 || px.Height <= 0 {
		return nil, errors.Wrap(ErrInvalidInput, "image has no pixels")
	}

	if len(px.Pix) != px.Width*px.Height*3 {
		return nil, errors.Wrapf(ErrInvalidInput, "image buffer holds %d bytes, expected %d",
			len(px.Pix), px.Width*px.Height*3)
	}

	// (h, w, 3) float32 with the last axis reversed, RGB -> BGR
	hwc := make([]float32, len(px.Pix))

	for i := 0; i < len(px.Pix); i += 3 {
		hwc[i] = float32(px.Pix[i+2])
		hwc[i+1] = float32(px.Pix[i+1])
		hwc[i+2] = float32(px.Pix[i])
	}

	// move the channel axis in front of the spatial axes and add the batch
	dense := tensor.New(tensor.WithShape(px.Height, px.Width, 3), tensor.WithBacking(hwc))

	if err := dense.T(2, 0, 1); err != nil {
		return nil, errors.Wrap(err, "error transposing input to channels first")
	}

	if err := dense.Transpose(); err != nil {
		return nil, errors.Wrap(err, "error transposing input to channels first")
	}

	if err := dense.Reshape(1, 3, px.Height, px.Width); err != nil {
		return nil, errors.Wrap(err, "error adding batch dimension")
	}

	chw := dense.Data().([]float32)

	t := &Tensor{
		Shape: []int64{1, 3, int64(px.Height), int64(px.Width)},
	}

	if fp16 {
		t.Type = TensorFloat16
		t.Float16 = convertFloat32BufferToFloat16(chw)
	} else {
		t.Type = TensorFloat32
		t.Float32 = chw
	}

	return t, nil
}

// Output is the raw Model output grid laid out as (height, width, channel).
// Each grid cell carries Channels values.
type Output struct {
	Height   int
	Width    int
	Channels int
	Data     []float32
}

// newOutput squeezes the singleton dimensions from a Model output, moves the
// channel axis last and upcasts to float32
func newOutput(t *Tensor) (*Output, error) {

	var data []float32

	switch t.Type {
	case TensorFloat32:
		data = make([]float32, len(t.Float32))
		copy(data, t.Float32)
	case TensorFloat16:
		data = convertFloat16BufferToFloat32(t.Float16)
	default:
		return nil, errors.Wrapf(ErrOutputShape, "unsupported output type %s", t.Type)
	}

	if t.elements() != len(data) {
		return nil, errors.Wrapf(ErrOutputShape, "shape %v does not match %d values", t.Shape, len(data))
	}

	dims := make([]int, 0, len(t.Shape))

	for _, d := range t.Shape {
		if d != 1 {
			dims = append(dims, int(d))
		}
	}

	if len(dims) != 3 {
		return nil, errors.Wrapf(ErrOutputShape, "shape %v does not squeeze to (channel, height, width)", t.Shape)
	}

	dense := tensor.New(tensor.WithShape(dims...), tensor.WithBacking(data))

	if err := dense.T(1, 2, 0); err != nil {
		return nil, errors.Wrap(err, "error transposing output to channels last")
	}

	if err := dense.Transpose(); err != nil {
		return nil, errors.Wrap(err, "error transposing output to channels last")
	}

	return &Output{
		Channels: dims[0],
		Height:   dims[1],
		Width:    dims[2],
		Data:     dense.Data().([]float32),
	}, nil
}

// At returns the value of channel c in the grid cell at x, y
func (o *Output) At(y, x, c int) float32 {
	return o.Data[(y*o.Width+x)*o.Channels+c]
}

// Shape returns the output dimensions as (height, width, channel)
func (o *Output) Shape() []int {
	return []int{o.Height, o.Width, o.Channels}
}

// Cell returns the values of the grid cell at x, y
func (o *Output) Cell(y, x int) []float32 {
	i := (y*o.Width + x) * o.Channels
	return o.Data[i : i+o.Channels]
}

// Format writes the output grid as nested brackets, one grid cell per line
func (o *Output) Format(w io.Writer) error {

	bw := bufio.NewWriter(w)

	bw.WriteString("[")

	for y := 0; y < o.Height; y++ {
		if y > 0 {
			bw.WriteString("\n\n ")
		}

		bw.WriteString("[")

		for x := 0; x < o.Width; x++ {
			if x > 0 {
				bw.WriteString("\n  ")
			}

			bw.WriteString("[")

			for c, v := range o.Cell(y, x) {
				if c > 0 {
					bw.WriteString(" ")
				}

				bw.WriteString(strconv.FormatFloat(float64(v), 'g', 6, 32))
			}

			bw.WriteString("]")
		}

		bw.WriteString("]")
	}

	bw.WriteString("]\n")

	return bw.Flush()
}

// ChannelStats summarises the values of one output channel over all grid
// cells
type ChannelStats struct {
	Channel int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Stats returns the summary of each output channel
func (o *Output) Stats() []ChannelStats {

	cells := o.Height * o.Width
	res := make([]ChannelStats, o.Channels)

	if cells == 0 {
		return res
	}

	vals := make([]float64, cells)

	for c := 0; c < o.Channels; c++ {
		for i := 0; i < cells; i++ {
			vals[i] = float64(o.Data[i*o.Channels+c])
		}

		mean, std := stat.MeanStdDev(vals, nil)

		res[c] = ChannelStats{
			Channel: c,
			Min:     floats.Min(vals),
			Max:     floats.Max(vals),
			Mean:    mean,
			StdDev:  std,
		}
	}

	return res
}
