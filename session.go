package onnxdetect

import (
	"encoding/binary"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"os"
	"sync"
)

// Session is a loaded inference graph that takes one tensor in and returns
// one tensor out.  The ONNX Runtime implementation is created by NewRuntime,
// other backends can be passed to NewRuntimeFromSession.
type Session interface {
	// Inputs returns the declared input tensors of the graph
	Inputs() []TensorAttr
	// Outputs returns the declared output tensors of the graph
	Outputs() []TensorAttr
	// Run executes the graph with the input bound to the first graph input
	// and returns the first graph output
	Run(input *Tensor) (*Tensor, error)
	// Version returns the version of the inference engine
	Version() string
	// Close releases the graph
	Close() error
}

var (
	// envMu guards envRefs, the number of open ONNX Runtime sessions sharing
	// the process wide environment
	envMu   sync.Mutex
	envRefs int
)

// acquireEnvironment initializes the ONNX Runtime environment on first use
func acquireEnvironment(libPath string) error {

	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 && !ort.IsInitialized() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}

		if err := ort.InitializeEnvironment(); err != nil {
			return errors.Wrap(err, "error initializing ONNX Runtime environment")
		}
	}

	envRefs++
	return nil
}

// releaseEnvironment destroys the ONNX Runtime environment once the last
// session using it has closed
func releaseEnvironment() error {

	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return nil
	}

	envRefs--

	if envRefs > 0 || !ort.IsInitialized() {
		return nil
	}

	return ort.DestroyEnvironment()
}

// ortSession is the ONNX Runtime Session
type ortSession struct {
	session *ort.DynamicAdvancedSession
	inputs  []TensorAttr
	outputs []TensorAttr
	// fp16Shape is the static shape of a float16 output, which must be
	// allocated before each run
	fp16Shape ort.Shape
}

// newORTSession loads the ONNX model file.  The environment must already be
// initialized.
func newORTSession(modelFile string, threads int) (*ortSession, error) {

	// check file exists in Go, before passing to C
	info, err := os.Stat(modelFile)

	if err != nil {
		return nil, errors.Wrapf(ErrModelLoad, "model file does not exist at %s, error: %v",
			modelFile, err)
	}

	if info.IsDir() {
		return nil, errors.Wrapf(ErrModelLoad, "model file %s is a directory", modelFile)
	}

	inputInfo, outputInfo, err := ort.GetInputOutputInfo(modelFile)

	if err != nil {
		return nil, errors.Wrapf(ErrModelLoad, "error reading model %s: %v", modelFile, err)
	}

	if len(inputInfo) == 0 || len(outputInfo) == 0 {
		return nil, errors.Wrapf(ErrModelLoad, "model %s has %d inputs and %d outputs",
			modelFile, len(inputInfo), len(outputInfo))
	}

	s := &ortSession{
		inputs:  make([]TensorAttr, len(inputInfo)),
		outputs: make([]TensorAttr, len(outputInfo)),
	}

	for i, in := range inputInfo {
		s.inputs[i] = convertTensorAttr(i, in)
	}

	for i, out := range outputInfo {
		s.outputs[i] = convertTensorAttr(i, out)
	}

	if s.outputs[0].Type == TensorFloat16 {
		if s.fp16Shape, err = float16OutputShape(s.outputs[0]); err != nil {
			return nil, errors.Wrapf(err, "model %s", modelFile)
		}
	}

	options, err := ort.NewSessionOptions()

	if err != nil {
		return nil, errors.Wrap(err, "error creating session options")
	}

	defer options.Destroy()

	if threads > 0 {
		if err := options.SetIntraOpNumThreads(threads); err != nil {
			return nil, errors.Wrap(err, "error setting intra op threads")
		}
	}

	s.session, err = ort.NewDynamicAdvancedSession(modelFile,
		[]string{s.inputs[0].Name}, []string{s.outputs[0].Name}, options)

	if err != nil {
		return nil, errors.Wrapf(ErrModelLoad, "error creating session for %s: %v", modelFile, err)
	}

	return s, nil
}

func (s *ortSession) Inputs() []TensorAttr {
	return s.inputs
}

func (s *ortSession) Outputs() []TensorAttr {
	return s.outputs
}

func (s *ortSession) Version() string {
	return ort.GetVersion()
}

func (s *ortSession) Close() error {
	return s.session.Destroy()
}

// Run binds the input tensor and runs the graph.  Float32 outputs are
// allocated by ONNX Runtime as their shape depends on the input size, float16
// outputs are allocated here from their static shape.
func (s *ortSession) Run(input *Tensor) (*Tensor, error) {

	in, err := newORTValue(input)

	if err != nil {
		return nil, err
	}

	defer in.Destroy()

	outputs := []ort.Value{nil}

	if s.fp16Shape != nil {
		raw := make([]byte, 2*s.fp16Shape.FlattenedSize())
		out, err := ort.NewCustomDataTensor(s.fp16Shape, raw, ort.TensorElementDataTypeFloat16)

		if err != nil {
			return nil, errors.Wrap(err, "error creating float16 output tensor")
		}

		outputs[0] = out
	}

	if err := s.session.Run([]ort.Value{in}, outputs); err != nil {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}

		return nil, err
	}

	defer outputs[0].Destroy()

	switch out := outputs[0].(type) {
	case *ort.Tensor[float32]:
		data := make([]float32, len(out.GetData()))
		copy(data, out.GetData())

		return &Tensor{
			Name:    s.outputs[0].Name,
			Shape:   out.GetShape().Clone(),
			Type:    TensorFloat32,
			Float32: data,
		}, nil

	case *ort.CustomDataTensor:
		shape := out.GetShape().Clone()
		data, err := decodeFloat16(out.GetData(), shape)

		if err != nil {
			return nil, err
		}

		return &Tensor{
			Name:    s.outputs[0].Name,
			Shape:   shape,
			Type:    TensorFloat16,
			Float16: data,
		}, nil
	}

	return nil, errors.Errorf("unsupported output value type %T", outputs[0])
}

// float16OutputShape returns the shape to allocate a float16 output with.
// onnxruntime_go allocates outputs it has no Go type for with one byte per
// element, too small for float16, so only outputs with static dims can be
// run.
func float16OutputShape(attr TensorAttr) (ort.Shape, error) {

	if len(attr.Dims) == 0 {
		return nil, errors.Wrapf(ErrModelLoad, "float16 output %s has no dimensions", attr.Name)
	}

	for _, d := range attr.Dims {
		if d <= 0 {
			return nil, errors.Wrapf(ErrModelLoad,
				"float16 output %s has dynamic dims %s, only static float16 outputs are supported",
				attr.Name, attr.String())
		}
	}

	return ort.NewShape(attr.Dims...), nil
}

// decodeFloat16 reads little endian float16 bits, the buffer must hold two
// bytes for every element of shape
func decodeFloat16(raw []byte, shape []int64) ([]uint16, error) {

	elements := 1

	for _, d := range shape {
		elements *= int(d)
	}

	if len(raw) != 2*elements {
		return nil, errors.Wrapf(ErrOutputShape, "float16 output holds %d bytes, shape %v needs %d",
			len(raw), shape, 2*elements)
	}

	data := make([]uint16, elements)

	for i := range data {
		data[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}

	return data, nil
}

// newORTValue copies a Tensor into an ONNX Runtime value
func newORTValue(t *Tensor) (ort.Value, error) {

	shape := ort.NewShape(t.Shape...)

	switch t.Type {
	case TensorFloat32:
		v, err := ort.NewTensor(shape, t.Float32)

		if err != nil {
			return nil, errors.Wrap(err, "error creating float32 input tensor")
		}

		return v, nil

	case TensorFloat16:
		raw := make([]byte, len(t.Float16)*2)

		for i, bits := range t.Float16 {
			binary.LittleEndian.PutUint16(raw[i*2:], bits)
		}

		v, err := ort.NewCustomDataTensor(shape, raw, ort.TensorElementDataTypeFloat16)

		if err != nil {
			return nil, errors.Wrap(err, "error creating float16 input tensor")
		}

		return v, nil
	}

	return nil, errors.Errorf("unsupported input tensor type %s", t.Type)
}
