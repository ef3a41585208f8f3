// Package expr implements the expression compiler and stack VM of
// spec.md §4.B: a Pratt parser over a small arithmetic grammar, a
// type-checker resolving identifiers through a host, an optional
// constant-folding pass, a narrow-opcode-preferring code generator,
// and the evaluator that runs the resulting bytecode.
package expr

import "github.com/wireflow/wireflow/value"

// Compiled holds the result of compiling an expression: its bytecode,
// result type, and — if the whole expression folded to a literal —
// that constant value.
type Compiled struct {
	Code       []byte
	ResultType value.TypeID
	Constant   value.Value
	IsConstant bool
}

// Compile tokenizes, parses, type-checks, optimizes, and emits
// bytecode for src against host and builder. An empty (or
// whitespace-only) expression fails with ErrEmptyInput.
func Compile(src string, host Host, builder Builder) (*Compiled, error) {
	ast, err := parse(src)
	if err != nil {
		return nil, err
	}
	if err := typecheck(ast, host); err != nil {
		return nil, err
	}
	ast = optimize(ast)
	code := generate(ast, builder)
	result := &Compiled{Code: code, ResultType: ast.resultType}
	if v, ok := asConstant(ast); ok {
		result.Constant = v
		result.IsConstant = true
	}
	return result, nil
}
