// SPDX-License-Identifier: MIT

package cli

import (
	"os"

	"github.com/katalvlaran/tuneq/calibration"
	"github.com/katalvlaran/tuneq/counts"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// CalibrationDocument is the on-disk form of calibration results.
//
//	qubits: 1
//	shots: 100
//	results:
//	  qubit_0_prep0: {"0": 90, "1": 10}
//	  qubit_0_prep1: {"0": 20, "1": 80}
type CalibrationDocument struct {
	Qubits  int                       `yaml:"qubits" json:"qubits"`
	Shots   int                       `yaml:"shots" json:"shots"`
	Results map[string]map[string]int `yaml:"results" json:"results"`
}

// CalibrationResults converts the document into calibration.Results.
func (d *CalibrationDocument) CalibrationResults() calibration.Results {
	out := make(calibration.Results, len(d.Results))
	for label, c := range d.Results {
		out[label] = counts.Counts(c)
	}

	return out
}

func loadCalibration(path string) (*CalibrationDocument, error) {
	doc := &CalibrationDocument{}
	if err := loadYAML(path, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// loadCounts reads a flat bit-string → count mapping.
func loadCounts(path string) (counts.Counts, error) {
	c := counts.Counts{}
	if err := loadYAML(path, &c); err != nil {
		return nil, err
	}

	return c, nil
}

// loadYAML decodes a YAML (or JSON) file into out.
func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", path)
	}
	if err = yaml.Unmarshal(data, out); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal %s", path)
	}

	return nil
}
