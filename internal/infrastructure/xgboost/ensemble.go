// Package xgboost evaluates gradient-boosted tree ensembles exported with
// XGBoost's JSON tree dump (Booster.get_dump(dump_format="json")).
package xgboost

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	ObjectiveBinaryLogistic = "binary:logistic"

	threshold = 0.5
)

// Model is the on-disk document: the objective, the base score and one
// nested node tree per boosting round.
type Model struct {
	Objective string  `json:"objective"`
	BaseScore float64 `json:"base_score"`
	Trees     []Node  `json:"trees"`
}

type Node struct {
	NodeID         int      `json:"nodeid"`
	Depth          int      `json:"depth,omitempty"`
	Split          string   `json:"split,omitempty"`
	SplitCondition float64  `json:"split_condition,omitempty"`
	Yes            int      `json:"yes,omitempty"`
	No             int      `json:"no,omitempty"`
	Missing        int      `json:"missing,omitempty"`
	Leaf           *float64 `json:"leaf,omitempty"`
	Gain           float64  `json:"gain,omitempty"`
	Cover          float64  `json:"cover,omitempty"`
	Children       []Node   `json:"children,omitempty"`
}

type treeNode struct {
	featureIdx int
	threshold  float32
	yes        int
	no         int
	missing    int
	leaf       float64
	isLeaf     bool
}

// Ensemble is immutable once loaded and safe for concurrent use.
type Ensemble struct {
	trees      [][]treeNode
	baseMargin float64
	nFeatures  int
}

// LoadFile reads a model from path. featureNames resolves named splits;
// splits of the form f<i> index the feature vector directly.
func LoadFile(path string, featureNames []string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, featureNames)
}

func Parse(r io.Reader, featureNames []string) (*Ensemble, error) {
	var model Model
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return New(model, featureNames)
}

func New(model Model, featureNames []string) (*Ensemble, error) {
	objective := model.Objective
	if objective == "" {
		objective = ObjectiveBinaryLogistic
	}
	if objective != ObjectiveBinaryLogistic {
		return nil, fmt.Errorf("unsupported objective %q", model.Objective)
	}
	if !(model.BaseScore > 0 && model.BaseScore < 1) {
		return nil, fmt.Errorf("base_score must be in (0, 1), got %v", model.BaseScore)
	}
	if len(model.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}
	if len(featureNames) == 0 {
		return nil, errors.New("feature names are required")
	}

	index := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		index[name] = i
	}

	trees := make([][]treeNode, len(model.Trees))
	for i, root := range model.Trees {
		tree, err := flatten(root, index, len(featureNames))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = tree
	}

	return &Ensemble{
		trees:      trees,
		baseMargin: math.Log(model.BaseScore / (1 - model.BaseScore)),
		nFeatures:  len(featureNames),
	}, nil
}

// flatten lays a nested tree out as a slice indexed by node id and checks
// that every branch points at one of its own children.
func flatten(root Node, index map[string]int, nFeatures int) ([]treeNode, error) {
	byID := make(map[int]Node)
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.NodeID < 0 {
			return nil, fmt.Errorf("negative node id %d", n.NodeID)
		}
		if _, dup := byID[n.NodeID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", n.NodeID)
		}
		byID[n.NodeID] = n
		stack = append(stack, n.Children...)
	}

	nodes := make([]treeNode, len(byID))
	for id, n := range byID {
		if id >= len(nodes) {
			return nil, fmt.Errorf("node ids are not contiguous: %d with %d nodes", id, len(nodes))
		}
		if n.Leaf != nil {
			if len(n.Children) != 0 {
				return nil, fmt.Errorf("leaf %d has children", id)
			}
			nodes[id] = treeNode{leaf: *n.Leaf, isLeaf: true}
			continue
		}

		featureIdx, err := resolveFeature(n.Split, index, nFeatures)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		children := make(map[int]bool, len(n.Children))
		for _, c := range n.Children {
			children[c.NodeID] = true
		}
		for _, ref := range []int{n.Yes, n.No, n.Missing} {
			if !children[ref] {
				return nil, fmt.Errorf("node %d branches to %d which is not one of its children", id, ref)
			}
		}
		nodes[id] = treeNode{
			featureIdx: featureIdx,
			threshold:  float32(n.SplitCondition),
			yes:        n.Yes,
			no:         n.No,
			missing:    n.Missing,
		}
	}

	if _, ok := byID[0]; !ok || root.NodeID != 0 {
		return nil, errors.New("root node must have id 0")
	}
	return nodes, nil
}

func resolveFeature(split string, index map[string]int, nFeatures int) (int, error) {
	if idx, ok := index[split]; ok {
		return idx, nil
	}
	if strings.HasPrefix(split, "f") {
		if idx, err := strconv.Atoi(split[1:]); err == nil {
			if idx < 0 || idx >= nFeatures {
				return 0, fmt.Errorf("split feature %q out of range for %d features", split, nFeatures)
			}
			return idx, nil
		}
	}
	return 0, fmt.Errorf("unknown split feature %q", split)
}

// Margin is the raw additive score before the logistic link.
func (e *Ensemble) Margin(x []float64) (float64, error) {
	if len(x) != e.nFeatures {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(x), e.nFeatures)
	}
	margin := e.baseMargin
	for _, tree := range e.trees {
		margin += walk(tree, x)
	}
	return margin, nil
}

func walk(tree []treeNode, x []float64) float64 {
	idx := 0
	for {
		n := tree[idx]
		if n.isLeaf {
			return n.leaf
		}
		v := x[n.featureIdx]
		switch {
		case math.IsNaN(v):
			idx = n.missing
		case float32(v) < n.threshold:
			idx = n.yes
		default:
			idx = n.no
		}
	}
}

// PredictProba returns the probability of class 1.
func (e *Ensemble) PredictProba(x []float64) (float64, error) {
	margin, err := e.Margin(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(margin), nil
}

// Predict returns the thresholded label together with its probability.
func (e *Ensemble) Predict(x []float64) (int, float64, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return 0, 0, err
	}
	if p > threshold {
		return 1, p, nil
	}
	return 0, p, nil
}

func (e *Ensemble) NumTrees() int {
	return len(e.trees)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
