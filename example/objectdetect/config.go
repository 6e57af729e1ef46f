package main

import (
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/swdee/go-onnxdetect/preprocess"
	"io/fs"
	"os"
	"strconv"
)

// environment variables read from the process or an optional .env file
const (
	envLibraryPath = "ONNXRUNTIME_SHARED_LIBRARY_PATH"
	envPixelBudget = "ONNXDETECT_PIXEL_BUDGET"
	envThreads     = "ONNXDETECT_THREADS"
)

type config struct {
	// LibraryPath is the onnxruntime shared library, empty uses the
	// platform default
	LibraryPath string
	// PixelBudget is the pixel count images are scaled to
	PixelBudget int
	// Threads is the number of intra op threads, 0 for the runtime default
	Threads int
}

// loadConfig reads the configuration from the environment, after loading any
// .env file in the working directory
func loadConfig() (config, error) {

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, errors.Wrap(err, "error loading .env")
	}

	cfg := config{
		LibraryPath: os.Getenv(envLibraryPath),
		PixelBudget: preprocess.DefaultPixelBudget,
	}

	var err error

	if cfg.PixelBudget, err = intEnv(envPixelBudget, cfg.PixelBudget); err != nil {
		return config{}, err
	}

	if cfg.PixelBudget <= 0 {
		return config{}, errors.Errorf("%s must be positive, got %d", envPixelBudget, cfg.PixelBudget)
	}

	if cfg.Threads, err = intEnv(envThreads, 0); err != nil {
		return config{}, err
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {

	val := os.Getenv(name)

	if val == "" {
		return def, nil
	}

	n, err := strconv.Atoi(val)

	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}

	return n, nil
}
