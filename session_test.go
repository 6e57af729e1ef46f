package onnxdetect

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.viam.com/test"
	"testing"
)

const fakeAttributes = 5

// fakeSession stands in for ONNX Runtime.  It returns a (1, 5, h/32+1,
// w/32+1) output counting up from zero.
type fakeSession struct {
	inputs  []TensorAttr
	outputs []TensorAttr
	runErr  error
	runs    []*Tensor
	closed  bool
}

func newFakeSession(inputType TensorType, height, width int64) *fakeSession {
	return &fakeSession{
		inputs: []TensorAttr{{
			Name: "data",
			Type: inputType,
			Dims: []int64{1, 3, height, width},
		}},
		outputs: []TensorAttr{{
			Name: "model_outputs0",
			Type: inputType,
			Dims: []int64{1, fakeAttributes, -1, -1},
		}},
	}
}

func (f *fakeSession) Inputs() []TensorAttr {
	return f.inputs
}

func (f *fakeSession) Outputs() []TensorAttr {
	return f.outputs
}

func (f *fakeSession) Version() string {
	return "fake-1.0"
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSession) Run(input *Tensor) (*Tensor, error) {

	f.runs = append(f.runs, input)

	if f.runErr != nil {
		return nil, f.runErr
	}

	if input.elements() != input.Len() {
		return nil, errors.New("input shape does not match data")
	}

	gh := input.Shape[2]/32 + 1
	gw := input.Shape[3]/32 + 1

	data := make([]float32, fakeAttributes*gh*gw)

	for i := range data {
		data[i] = float32(i)
	}

	out := &Tensor{
		Name:  f.outputs[0].Name,
		Shape: []int64{1, fakeAttributes, gh, gw},
		Type:  input.Type,
	}

	if input.Type == TensorFloat16 {
		out.Float16 = convertFloat32BufferToFloat16(data)
	} else {
		out.Float32 = data
	}

	return out, nil
}

func TestFloat16OutputShape(t *testing.T) {

	shape, err := float16OutputShape(TensorAttr{
		Name: "model_outputs0",
		Type: TensorFloat16,
		Dims: []int64{1, 5, 8, 8},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shape, test.ShouldResemble, ort.Shape{1, 5, 8, 8})
	test.That(t, shape.FlattenedSize(), test.ShouldEqual, int64(320))

	// the grid size follows the input size, so can not be allocated ahead
	_, err = float16OutputShape(TensorAttr{
		Name: "model_outputs0",
		Type: TensorFloat16,
		Dims: []int64{1, 5, -1, -1},
	})
	test.That(t, errors.Is(err, ErrModelLoad), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dynamic dims")

	_, err = float16OutputShape(TensorAttr{Name: "scalar", Type: TensorFloat16})
	test.That(t, errors.Is(err, ErrModelLoad), test.ShouldBeTrue)
}

func TestDecodeFloat16(t *testing.T) {

	bits := convertFloat32BufferToFloat16([]float32{0, 1, -2, 0.5})
	raw := []byte{
		byte(bits[0]), byte(bits[0] >> 8),
		byte(bits[1]), byte(bits[1] >> 8),
		byte(bits[2]), byte(bits[2] >> 8),
		byte(bits[3]), byte(bits[3] >> 8),
	}

	data, err := decodeFloat16(raw, []int64{1, 1, 2, 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, bits)
	test.That(t, convertFloat16BufferToFloat32(data), test.ShouldResemble, []float32{0, 1, -2, 0.5})

	// one byte per element is half the data a float16 output needs
	_, err = decodeFloat16(raw[:4], []int64{1, 1, 2, 2})
	test.That(t, errors.Is(err, ErrOutputShape), test.ShouldBeTrue)

	_, err = decodeFloat16(append(raw, 0, 0), []int64{1, 1, 2, 2})
	test.That(t, errors.Is(err, ErrOutputShape), test.ShouldBeTrue)
}
