// Command wfc compiles a JSON graph definition into a serialized
// assembly blob, the way cmd/asm turns a text source file into an
// object file: a thin flag-parsing shell around one package's
// compiler, all diagnostics reported through log rather than a
// structured error type the shell would have to understand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wireflow/wireflow/expr"
	"github.com/wireflow/wireflow/graph"
	"github.com/wireflow/wireflow/value"
)

var output = flag.String("o", "a.wfasm", "output assembly file")

func main() {
	log.SetFlags(0)
	log.SetPrefix("wfc: ")

	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wfc [-o out] graph.json")
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	var def graphDef
	if err := json.Unmarshal(src, &def); err != nil {
		log.Fatalf("parsing %s: %v", flag.Arg(0), err)
	}

	host, err := def.host()
	if err != nil {
		log.Fatal(err)
	}

	b := graph.NewBuilder()
	if err := def.build(b); err != nil {
		log.Fatal(err)
	}

	buf, errs := b.Compile(host)
	if len(errs) != 0 {
		for _, e := range errs {
			log.Print(e)
		}
		log.Fatalf("compilation of %s failed with %d error(s)", flag.Arg(0), len(errs))
	}

	if err := os.WriteFile(*output, buf, 0o644); err != nil {
		log.Fatal(err)
	}
}

// graphDef is the on-disk shape wfc reads: a flat, author-facing
// mirror of the graph.Builder calls needed to reproduce it. There is
// no host process behind this tool, so node kinds and function
// signatures the graph references must be declared in the same file.
type graphDef struct {
	NodeTypes []nodeTypeDef `json:"nodeTypes"`
	Functions []functionDef `json:"functions"`
	Variables []variableDef `json:"variables"`
	Nodes     []nodeDef     `json:"nodes"`
	Wires     []wireDef     `json:"wires"`
}

type nodeTypeDef struct {
	ID   uint32 `json:"id"`
	Kind string `json:"kind"` // "state", "entry", "action"
}

type functionDef struct {
	Name   string   `json:"name"`
	ID     uint32   `json:"id"`
	Return string   `json:"return"`
	Params []string `json:"params"`
}

type variableDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type nodeDef struct {
	ID          uint64     `json:"id"`
	Type        uint32     `json:"type"`
	InputPlugs  []uint8    `json:"inputPlugs"`
	OutputPlugs []uint8    `json:"outputPlugs"`
	InputSlots  []slotDef  `json:"inputSlots"`
	OutputSlots []slotDef  `json:"outputSlots"`
}

type slotDef struct {
	Index  uint8       `json:"index"`
	Type   string      `json:"type"`
	Bind   string      `json:"bind"`   // "variable", "expression", "constant"; empty for an output slot's variable name
	Name   string      `json:"name"`   // variable name, for bind == "variable" or an output slot
	Expr   string      `json:"expr"`   // expression text, for bind == "expression"
	Const  json.Number `json:"const"`  // literal value, for bind == "constant" (int32 or float32)
}

type wireDef struct {
	FromNode uint64 `json:"fromNode"`
	FromPlug uint8  `json:"fromPlug"`
	ToNode   uint64 `json:"toNode"`
	ToPlug   uint8  `json:"toPlug"`
}

func lookupType(name string) (value.TypeID, error) {
	t, ok := value.LookupTypeByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown type %q", name)
	}
	return t.ID, nil
}

// fileHost answers graph.Host entirely out of a graphDef's own
// declarations; it has no handler behavior, so a blob
// it compiles is fit for inspection (cmd/wfdump) but needs a real host
// to run.
type fileHost struct {
	kinds     map[graph.NodeTypeID]graph.NodeKind
	functions map[string]expr.FunctionSignature
}

func (h *fileHost) LookupNodeType(id graph.NodeTypeID) (graph.NodeTypeMeta, bool) {
	k, ok := h.kinds[id]
	return graph.NodeTypeMeta{Kind: k}, ok
}

func (h *fileHost) LookupFunction(name string) (expr.FunctionSignature, bool) {
	sig, ok := h.functions[name]
	return sig, ok
}

func (def *graphDef) host() (*fileHost, error) {
	h := &fileHost{
		kinds:     map[graph.NodeTypeID]graph.NodeKind{},
		functions: map[string]expr.FunctionSignature{},
	}
	for _, nt := range def.NodeTypes {
		var kind graph.NodeKind
		switch nt.Kind {
		case "state":
			kind = graph.KindState
		case "entry":
			kind = graph.KindEntry
		case "action":
			kind = graph.KindAction
		default:
			return nil, fmt.Errorf("node type %d: unknown kind %q", nt.ID, nt.Kind)
		}
		h.kinds[graph.NodeTypeID(nt.ID)] = kind
	}
	for _, fn := range def.Functions {
		ret, err := lookupType(fn.Return)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", fn.Name, err)
		}
		params := make([]value.TypeID, len(fn.Params))
		for i, p := range fn.Params {
			pt, err := lookupType(p)
			if err != nil {
				return nil, fmt.Errorf("function %q param %d: %w", fn.Name, i, err)
			}
			params[i] = pt
		}
		h.functions[fn.Name] = expr.FunctionSignature{ID: expr.FunctionID(fn.ID), ReturnType: ret, ParamTypes: params}
	}
	return h, nil
}

func (def *graphDef) build(b *graph.Builder) error {
	for _, v := range def.Variables {
		t, err := lookupType(v.Type)
		if err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		b.AddVariable(v.Name, t)
	}
	for _, n := range def.Nodes {
		b.BeginNode(n.ID, graph.NodeTypeID(n.Type))
		for _, p := range n.InputPlugs {
			b.AddInputPlug(p)
		}
		for _, p := range n.OutputPlugs {
			b.AddOutputPlug(p)
		}
		for _, s := range n.InputSlots {
			t, err := lookupType(s.Type)
			if err != nil {
				return fmt.Errorf("node %d input slot %d: %w", n.ID, s.Index, err)
			}
			b.AddInputSlot(s.Index, t)
			switch s.Bind {
			case "variable":
				b.BindSlotVariable(s.Name)
			case "expression":
				b.BindSlotExpression(s.Expr)
			case "constant":
				c, err := constantValue(t, s.Const)
				if err != nil {
					return fmt.Errorf("node %d input slot %d: %w", n.ID, s.Index, err)
				}
				b.BindSlotConstant(c)
			case "":
				// unbound
			default:
				return fmt.Errorf("node %d input slot %d: unknown bind kind %q", n.ID, s.Index, s.Bind)
			}
		}
		for _, s := range n.OutputSlots {
			t, err := lookupType(s.Type)
			if err != nil {
				return fmt.Errorf("node %d output slot %d: %w", n.ID, s.Index, err)
			}
			b.AddOutputSlot(s.Index, t)
			if s.Name != "" {
				b.BindOutputSlotVariable(s.Name)
			}
		}
	}
	for _, w := range def.Wires {
		b.AddWire(w.FromNode, w.FromPlug, w.ToNode, w.ToPlug)
	}
	return nil
}

func constantValue(t value.TypeID, n json.Number) (value.Value, error) {
	switch t {
	case value.TypeInt32.ID:
		i, err := n.Int64()
		if err != nil {
			return value.Value{}, fmt.Errorf("int32 constant %q: %w", n, err)
		}
		return value.Int32(int32(i)), nil
	case value.TypeFloat32.ID:
		f, err := n.Float64()
		if err != nil {
			return value.Value{}, fmt.Errorf("float32 constant %q: %w", n, err)
		}
		return value.Float32(float32(f)), nil
	case value.TypeBool.ID:
		i, err := n.Int64()
		if err != nil {
			return value.Value{}, fmt.Errorf("bool constant %q: %w", n, err)
		}
		return value.Bool(i != 0), nil
	default:
		return value.Value{}, fmt.Errorf("constants of type %d are not supported by wfc", t)
	}
}
