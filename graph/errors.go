package graph

import "fmt"

// ErrorCode enumerates every compile-time failure the graph compiler
// can report (spec.md §4.C "Error taxonomy").
type ErrorCode uint8

const (
	ErrUnknown ErrorCode = iota
	ErrNoEntries
	ErrDuplicateBuiltinPlug
	ErrDuplicateSlotBinding
	ErrUnknownNodeType
	ErrIllegalPlugPower
	ErrIllegalPlugCustomID
	ErrIncompatiblePowerWire
	ErrNodeNotFound
	ErrPlugNotFound
	ErrSlotNotFound
	ErrVariableNotFound
	ErrExpressionCompileError
	ErrIncompatibleType
)

func (c ErrorCode) String() string {
	names := [...]string{
		"Unknown", "NoEntries", "DuplicateBuiltinPlug", "DuplicateSlotBinding",
		"UnknownNodeType", "IllegalPlugPower", "IllegalPlugCustomId",
		"IncompatiblePowerWire", "NodeNotFound", "PlugNotFound", "SlotNotFound",
		"VariableNotFound", "ExpressionCompileError", "IncompatibleType",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "Unknown"
}

// CompileError is a single structured compile-time failure, optionally
// naming the node/slot it concerns. The compiler accumulates all of
// these rather than stopping at the first (spec.md §4.C "All errors
// are accumulated").
type CompileError struct {
	Code   ErrorCode
	NodeID uint64
	Detail string
}

func (e *CompileError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("graph: %s (node %d): %s", e.Code, e.NodeID, e.Detail)
	}
	return fmt.Sprintf("graph: %s (node %d)", e.Code, e.NodeID)
}

func newError(code ErrorCode, nodeID uint64, format string, args ...any) *CompileError {
	return &CompileError{Code: code, NodeID: nodeID, Detail: fmt.Sprintf(format, args...)}
}
