package main

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/swdee/go-onnxdetect"
	"github.com/swdee/go-onnxdetect/preprocess"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"io"
	"os"
	"path/filepath"
)

const (
	// Model and label files are read from the working directory
	modelFilename  = "model.onnx"
	labelsFilename = "labels.txt"

	flagOpenCV     = "opencv"
	flagFixedInput = "fixed-input"
	flagSummary    = "summary"
	flagQuery      = "query"
	flagDebug      = "debug"
)

func main() {

	app := newApp(os.Stdout)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "objectdetect",
		Usage:     "run an ONNX object detection model on an image",
		ArgsUsage: "image_filename",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagOpenCV,
				Usage: "decode and resize the image with OpenCV",
			},
			&cli.BoolFlag{
				Name:  flagFixedInput,
				Usage: "keep the model input size instead of reconfiguring it for the image",
			},
			&cli.BoolFlag{
				Name:  flagSummary,
				Usage: "print the output shape and per channel statistics instead of every value",
			},
			&cli.BoolFlag{
				Name:  flagQuery,
				Usage: "print the model input and output tensors",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {

			if c.NArg() == 0 {
				return cli.ShowAppHelp(c)
			}

			cfg, err := loadConfig()

			if err != nil {
				return err
			}

			logger := newLogger(c.Bool(flagDebug))
			defer logger.Sync()

			d := &driver{
				out:        out,
				logger:     logger,
				cfg:        cfg,
				dir:        ".",
				opencv:     c.Bool(flagOpenCV),
				fixedInput: c.Bool(flagFixedInput),
				summary:    c.Bool(flagSummary),
				query:      c.Bool(flagQuery),
				newRuntime: onnxdetect.NewRuntime,
			}

			return d.run(c.Args().First())
		},
	}
}

// newLogger returns a console logger writing to stderr, only warnings are
// shown unless debug is set
func newLogger(debug bool) *zap.SugaredLogger {

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()

	if err != nil {
		return zap.NewNop().Sugar()
	}

	return logger.Sugar()
}

// driver runs the detection pipeline for a single image
type driver struct {
	out    io.Writer
	logger *zap.SugaredLogger
	cfg    config
	// dir holds the model and labels files
	dir        string
	opencv     bool
	fixedInput bool
	summary    bool
	query      bool
	newRuntime func(modelFile string, opts ...onnxdetect.Option) (*onnxdetect.Runtime, error)
}

// source is an opened image ready for prediction
type source struct {
	width, height int
	predict       func(*onnxdetect.ObjectDetector) (*onnxdetect.Output, error)
	close         func()
}

func (d *driver) run(imageFile string) error {

	labels, err := onnxdetect.LoadLabels(filepath.Join(d.dir, labelsFilename))

	if err != nil {
		return err
	}

	rt, err := d.newRuntime(filepath.Join(d.dir, modelFilename),
		onnxdetect.WithSharedLibraryPath(d.cfg.LibraryPath),
		onnxdetect.WithIntraOpThreads(d.cfg.Threads),
		onnxdetect.WithLogger(d.logger),
	)

	if err != nil {
		return err
	}

	defer func() {
		if err := rt.Close(); err != nil {
			d.logger.Warnw("error closing runtime", "error", err)
		}
	}()

	d.logger.Debugw("loaded labels", "count", len(labels))

	detector := onnxdetect.NewObjectDetector(rt, labels,
		onnxdetect.WithPixelBudget(d.cfg.PixelBudget),
		onnxdetect.WithFixedInput(d.fixedInput),
	)

	src, err := d.open(imageFile)

	if err != nil {
		return err
	}

	defer src.close()

	fmt.Fprintf(d.out, "(%d, %d)\n", src.width, src.height)
	fmt.Fprintf(d.out, "onnxruntime: %s, gocv: %s, opencv: %s\n",
		rt.Version(), gocv.Version(), gocv.OpenCVVersion())

	if d.query {
		if err := rt.Query(d.out); err != nil {
			return err
		}
	}

	output, err := src.predict(detector)

	if errors.Is(err, onnxdetect.ErrShapeMismatch) || errors.Is(err, onnxdetect.ErrInference) {
		fmt.Fprintf(d.out, "ERROR with Shape=(%d, %d) - %v\n", src.width, src.height, err)
		return nil
	}

	if err != nil {
		return err
	}

	if d.summary {
		return printSummary(d.out, output, labels)
	}

	return output.Format(d.out)
}

// open decodes the image file with either the Go decoders or OpenCV
func (d *driver) open(imageFile string) (*source, error) {

	if d.opencv {
		mat, err := preprocess.OpenMat(imageFile)

		if err != nil {
			mat.Close()
			return nil, err
		}

		return &source{
			width:  mat.Cols(),
			height: mat.Rows(),
			predict: func(det *onnxdetect.ObjectDetector) (*onnxdetect.Output, error) {
				return det.PredictMat(mat)
			},
			close: func() { mat.Close() },
		}, nil
	}

	img, err := preprocess.Open(imageFile)

	if err != nil {
		return nil, err
	}

	b := img.Bounds()

	return &source{
		width:  b.Dx(),
		height: b.Dy(),
		predict: func(det *onnxdetect.ObjectDetector) (*onnxdetect.Output, error) {
			return det.PredictImage(img)
		},
		close: func() {},
	}, nil
}

// printSummary writes the output grid shape and the value range of each
// channel
func printSummary(w io.Writer, output *onnxdetect.Output, labels []string) error {

	shape := output.Shape()
	fmt.Fprintf(w, "output shape: (%d, %d, %d), labels: %d\n", shape[0], shape[1], shape[2], len(labels))

	for _, s := range output.Stats() {
		if _, err := fmt.Fprintf(w, "  channel %3d: min=%10.4f max=%10.4f mean=%10.4f std=%10.4f\n",
			s.Channel, s.Min, s.Max, s.Mean, s.StdDev); err != nil {
			return err
		}
	}

	return nil
}
