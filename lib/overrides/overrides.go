// Package overrides applies raw CloudFormation property overrides, expressed as a nested tree of
// property names, onto an L1 resource.
//
// Configuration such as
//
//	Properties:
//	  BucketName: my-bucket
//	  LifecycleConfiguration:
//	    Rules:
//	      - Status: Disabled
//
// is turned into a Tree whose leaves become one AddOverride call each:
//
//	Properties.BucketName                   = "my-bucket"
//	Properties.LifecycleConfiguration.Rules = [{Status: Disabled}]
package overrides

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"
)

// Value is either a Leaf or a Node.
type Value interface {
	isValue()
}

// Leaf is a terminal value that replaces the property found at its path.
type Leaf struct {
	Value interface{}
}

// Node groups path segments. A Node is never applied itself.
type Node map[string]Value

// Tree is the root of an override tree.
type Tree = Node

func (Leaf) isValue() {}
func (Node) isValue() {}

// IsEmpty reports whether the tree holds no entries at all.
func (n Node) IsEmpty() bool {
	return len(n) == 0
}

// Path locates a leaf inside a resource's property tree.
type Path []string

// String joins the segments with dots, escaping literal dots in a segment the way
// CfnResource.AddOverride expects.
func (p Path) String() string {
	escaped := lo.Map(p, func(s string, _ int) string {
		return strings.ReplaceAll(s, ".", `\.`)
	})
	return strings.Join(escaped, ".")
}

// Target is the L1 resource primitive overrides are applied through.
// awscdk.CfnResource satisfies it.
type Target interface {
	AddOverride(path *string, value interface{})
}

// FromMap converts decoded configuration into a Tree. Nested maps become nodes, anything else
// (arrays included) becomes a leaf.
func FromMap(m map[string]interface{}) (Tree, error) {
	tree := make(Tree, len(m))
	for k, v := range m {
		converted, err := fromValue(v, Path{k})
		if err != nil {
			return nil, err
		}
		tree[k] = converted
	}
	return tree, nil
}

func fromValue(v interface{}, at Path) (Value, error) {
	switch typed := v.(type) {
	case map[string]interface{}:
		node := make(Node, len(typed))
		for k, child := range typed {
			converted, err := fromValue(child, append(at[:len(at):len(at)], k))
			if err != nil {
				return nil, err
			}
			node[k] = converted
		}
		return node, nil
	case map[interface{}]interface{}:
		node := make(Node, len(typed))
		for rawKey, child := range typed {
			k, err := keyString(rawKey, at)
			if err != nil {
				return nil, err
			}
			converted, err := fromValue(child, append(at[:len(at):len(at)], k))
			if err != nil {
				return nil, err
			}
			node[k] = converted
		}
		return node, nil
	default:
		return Leaf{Value: v}, nil
	}
}

// keyString accepts scalar keys as their string form, so an unquoted YAML index such as `0:`
// addresses an array element the same way "0" does.
func keyString(rawKey interface{}, at Path) (string, error) {
	switch k := rawKey.(type) {
	case string:
		return k, nil
	case nil, map[string]interface{}, map[interface{}]interface{}, []interface{}:
		return "", fmt.Errorf("override key %v under %q is not a scalar", rawKey, at.String())
	default:
		return fmt.Sprint(k), nil
	}
}

// Walk calls fn once for every leaf in the tree with its full path. Siblings are visited in
// key order. The path passed to fn is owned by the callee.
func Walk(tree Tree, fn func(path Path, value interface{})) {
	walk(tree, nil, fn)
}

func walk(node Node, prefix Path, fn func(Path, interface{})) {
	keys := lo.Keys(node)
	sort.Strings(keys)
	for _, k := range keys {
		path := make(Path, len(prefix), len(prefix)+1)
		copy(path, prefix)
		path = append(path, k)

		switch v := node[k].(type) {
		case Node:
			walk(v, path, fn)
		case Leaf:
			fn(path, v.Value)
		}
	}
}

// Apply sets every leaf of tree on target and returns the number of overrides set. Errors
// raised by the target are not recovered.
func Apply(tree Tree, target Target) int {
	if tree.IsEmpty() {
		return 0
	}
	applied := 0
	Walk(tree, func(p Path, value interface{}) {
		target.AddOverride(jsii.String(p.String()), value)
		applied++
	})
	return applied
}
