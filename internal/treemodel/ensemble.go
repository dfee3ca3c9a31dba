// Package treemodel implements inference over a gradient-boosted
// regression tree ensemble, the artifact format produced by the offline
// training pipeline. Only prediction lives here; training is out of scope.
package treemodel

import (
	"encoding/gob"
	"os"

	"github.com/rotisserie/eris"
)

// ErrNotFound indicates the model artifact does not exist at the given path.
var ErrNotFound = eris.New("treemodel: artifact not found")

// Tree is a single regression tree stored as parallel node arrays.
// Feature < 0 marks a leaf; Value holds the leaf output. Internal nodes
// route to Left when the feature value is <= Threshold, Right otherwise.
type Tree struct {
	Feature   []int
	Threshold []float64
	Left      []int
	Right     []int
	Value     []float64
}

// Ensemble is a trained boosted-tree regressor plus the feature contract
// it was fit on.
type Ensemble struct {
	Version      string
	FeatureNames []string
	Base         float64
	LearningRate float64
	Trees        []Tree
}

// NumFeatures returns the feature count the ensemble was fit on.
func (e *Ensemble) NumFeatures() int {
	return len(e.FeatureNames)
}

// Predict runs the feature vector through every tree and sums the boosted
// leaf outputs. The caller is responsible for vector shape validation.
func (e *Ensemble) Predict(features []float64) float64 {
	score := e.Base
	for i := range e.Trees {
		score += e.LearningRate * e.Trees[i].traverse(features)
	}
	return score
}

func (t *Tree) traverse(features []float64) float64 {
	node := 0
	for t.Feature[node] >= 0 {
		if features[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

// Load deserializes a gob-encoded ensemble artifact from disk. A missing
// file returns ErrNotFound immediately; there is no retry.
func Load(path string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "treemodel: %s", path)
		}
		return nil, eris.Wrapf(err, "treemodel: open %s", path)
	}
	defer f.Close()

	var e Ensemble
	if err := gob.NewDecoder(f).Decode(&e); err != nil {
		return nil, eris.Wrapf(err, "treemodel: decode %s", path)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Save serializes the ensemble to a gob artifact. Used by tooling and
// test fixtures.
func (e *Ensemble) Save(path string) error {
	if err := e.validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "treemodel: create %s", path)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(e); err != nil {
		return eris.Wrapf(err, "treemodel: encode %s", path)
	}
	return nil
}

// validate checks structural consistency so a corrupt artifact fails at
// load time rather than panicking during prediction.
func (e *Ensemble) validate() error {
	if len(e.FeatureNames) == 0 {
		return eris.New("treemodel: artifact has no feature names")
	}
	if len(e.Trees) == 0 {
		return eris.New("treemodel: artifact has no trees")
	}
	for ti := range e.Trees {
		t := &e.Trees[ti]
		n := len(t.Feature)
		if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
			return eris.Errorf("treemodel: tree %d has ragged node arrays", ti)
		}
		for i := 0; i < n; i++ {
			if t.Feature[i] >= len(e.FeatureNames) {
				return eris.Errorf("treemodel: tree %d node %d references feature %d", ti, i, t.Feature[i])
			}
			if t.Feature[i] >= 0 {
				if t.Left[i] < 0 || t.Left[i] >= n || t.Right[i] < 0 || t.Right[i] >= n {
					return eris.Errorf("treemodel: tree %d node %d has out-of-range children", ti, i)
				}
				if t.Left[i] <= i || t.Right[i] <= i {
					return eris.Errorf("treemodel: tree %d node %d children must follow parent", ti, i)
				}
			}
		}
	}
	return nil
}
