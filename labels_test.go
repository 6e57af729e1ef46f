package onnxdetect

import (
	"errors"
	"go.viam.com/test"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")
	err := os.WriteFile(file, []byte("hardhat\n  vest \nperson\n\n"), 0o644)
	test.That(t, err, test.ShouldBeNil)

	labels, err := LoadLabels(file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, labels, test.ShouldResemble, []string{"hardhat", "vest", "person"})
}

func TestLoadLabelsEmpty(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")
	test.That(t, os.WriteFile(file, nil, 0o644), test.ShouldBeNil)

	labels, err := LoadLabels(file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, labels, test.ShouldHaveLength, 0)
}

func TestLoadLabelsMissing(t *testing.T) {

	_, err := LoadLabels(filepath.Join(t.TempDir(), "labels.txt"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, fs.ErrNotExist), test.ShouldBeTrue)
}
