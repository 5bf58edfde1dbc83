package raster

import (
	"math"
	"regexp"
	"strings"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// maskKeywords are the upper-case forms of the logical operators
var maskKeywords = regexp.MustCompile(`\b(NOT|AND|OR)\b`)

// isSetFunc is the function that tests a sample used as a flag
const isSetFunc = "isSet"

func isSet(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

// normalizeMask lower-cases the logical keywords and checks that the expression is not empty
func normalizeMask(expression string) (string, error) {
	e := strings.TrimSpace(expression)
	if e == "" {
		return "", georef.NewInvalidArgument("mask", "empty valid-mask expression")
	}
	return maskKeywords.ReplaceAllStringFunc(e, strings.ToLower), nil
}

// bandCollector lists the identifiers of an expression, except the names of the functions
type bandCollector struct {
	names   []string
	callees map[string]bool
}

func (c *bandCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[id.Value] = true
		}
	case *ast.IdentifierNode:
		c.names = append(c.names, n.Value)
	}
}

// flagPatcher replaces the bands used as flags ("!band", "band && ...") by isSet(band)
type flagPatcher struct{}

func (flagPatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.UnaryNode:
		if n.Operator == "!" || n.Operator == "not" {
			n.Node = asFlag(n.Node)
		}
	case *ast.BinaryNode:
		switch n.Operator {
		case "&&", "||", "and", "or":
			n.Left, n.Right = asFlag(n.Left), asFlag(n.Right)
		}
	}
}

func asFlag(node ast.Node) ast.Node {
	if id, ok := node.(*ast.IdentifierNode); ok && id.Value != isSetFunc {
		return &ast.CallNode{Callee: &ast.IdentifierNode{Value: isSetFunc}, Arguments: []ast.Node{id}}
	}
	return node
}

// MaskBands returns the names of the bands referenced by a valid-mask expression, in order of appearance.
// The expression is a boolean expression on the samples of the bands, e.g. "quality > 0 && lat < 80".
// A band used as a flag is set if its sample is neither 0 nor NaN. NOT, AND, OR are accepted for !, &&, ||.
func MaskBands(expression string) ([]string, error) {
	e, err := normalizeMask(expression)
	if err != nil {
		return nil, err
	}
	tree, err := parser.Parse(e)
	if err != nil {
		return nil, georef.NewInvalidArgument("mask", "malformed valid-mask expression %s: %v", expression, err)
	}
	c := &bandCollector{callees: map[string]bool{}}
	ast.Walk(&tree.Node, c)

	// callees are visited before their call node: they are filtered at the end
	var names []string
	seen := map[string]bool{}
	for _, name := range c.names {
		if seen[name] || c.callees[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, georef.NewInvalidArgument("mask", "valid-mask expression %s does not reference any band", expression)
	}
	return names, nil
}

// compileMask compiles the expression with an environment made of the samples of the bands
func compileMask(expression string, bands []string) (*vm.Program, map[string]any, error) {
	e, err := normalizeMask(expression)
	if err != nil {
		return nil, nil, err
	}
	env := make(map[string]any, len(bands))
	for _, name := range bands {
		env[name] = 0.0
	}
	program, err := expr.Compile(e,
		expr.Env(env),
		expr.Function(isSetFunc, func(params ...any) (any, error) {
			v, _ := params[0].(float64)
			return isSet(v), nil
		}, new(func(float64) bool)),
		expr.Patch(flagPatcher{}),
	)
	if err != nil {
		return nil, nil, georef.NewInvalidArgument("mask", "malformed valid-mask expression %s: %v", expression, err)
	}
	return program, env, nil
}

// maskValue converts the result of the expression to a flag
func maskValue(expression string, out any) (bool, error) {
	switch v := out.(type) {
	case bool:
		return v, nil
	case float64:
		return isSet(v), nil
	case int:
		return v != 0, nil
	}
	return false, georef.NewInvalidArgument("mask", "valid-mask expression %s returns a %T", expression, out)
}

// ValidMask evaluates the valid-mask expression on the bands of the product.
// The result has one flag per pixel of the scene, row by row.
func (p *Product) ValidMask(expression string) ([]bool, error) {
	names, err := MaskBands(expression)
	if err != nil {
		return nil, err
	}
	bands := make([]*Band, len(names))
	for i, name := range names {
		if bands[i] = p.Band(name); bands[i] == nil {
			return nil, georef.NewNotFound("band", name, "referenced by valid-mask expression %s", expression)
		}
	}
	program, env, err := compileMask(expression, names)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, p.width*p.height)
	for i := range mask {
		for k, b := range bands {
			env[names[k]] = b.data[i]
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return nil, georef.NewInvalidArgument("mask", "valid-mask expression %s: %v", expression, err)
		}
		if mask[i], err = maskValue(expression, out); err != nil {
			return nil, err
		}
	}
	return mask, nil
}
