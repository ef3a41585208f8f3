// Command wfdump prints a human-readable dump of a compiled assembly
// file: its header counts, every node's plug/slot ranges, and the
// disassembled bytecode of every expression it embeds. It plays the
// role objdump plays for a linked object file, but needs no hardware
// decode table — the assembly's entire instruction set is the two
// dozen opcodes expr.Disassemble already knows.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wireflow/wireflow/assembly"
	"github.com/wireflow/wireflow/expr"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("wfdump: ")

	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wfdump assembly.wfasm")
		os.Exit(2)
	}

	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	a, err := assembly.Load(buf)
	if err != nil {
		log.Fatalf("loading %s: %v", flag.Arg(0), err)
	}

	dumpHeader(a)
	dumpNodes(a)
	dumpExpressions(a)
}

func dumpHeader(a *assembly.Assembly) {
	fmt.Printf("nodes=%d entries=%d outputPlugs=%d wires=%d\n",
		a.NodeCount(), a.EntryNodeCount(), a.OutputPlugCount(), a.WireCount())
	fmt.Printf("inputSlots=%d outputSlots=%d variables=%d dependencies=%d\n",
		a.InputSlotCount(), a.OutputSlotCount(), a.VariableCount(), a.DependencyCount())
	fmt.Printf("expressions=%d functions=%d constants=%d\n",
		a.ExpressionCount(), a.FunctionCount(), a.ConstantCount())
	fmt.Println()
}

func dumpNodes(a *assembly.Assembly) {
	for i := uint32(0); i < a.NodeCount(); i++ {
		n := a.Node(i)
		fmt.Printf("node %d: type=%d\n", i, n.TypeID)
		if n.DefaultOutputPlugIdx != assembly.InvalidIndex {
			p := a.OutputPlug(n.DefaultOutputPlugIdx)
			fmt.Printf("  default output: %d wire(s)\n", p.WireCount)
			dumpWires(a, p)
		}
		for j := uint32(0); j < n.CustomOutputCount; j++ {
			p := a.OutputPlug(n.CustomOutputStart + j)
			fmt.Printf("  output plug %d: %d wire(s)\n", p.PlugIndex, p.WireCount)
			dumpWires(a, p)
		}
		for j := uint32(0); j < n.InputSlotCount; j++ {
			s := a.InputSlot(n.InputSlotStart + j)
			fmt.Printf("  input slot %d: %s\n", j, describeInputSlot(s))
		}
		for j := uint32(0); j < n.OutputSlotCount; j++ {
			s := a.OutputSlot(n.OutputSlotStart + j)
			if s.VariableIdx == assembly.InvalidIndex {
				fmt.Printf("  output slot %d: unbound\n", j)
			} else {
				fmt.Printf("  output slot %d: variable %d\n", j, s.VariableIdx)
			}
		}
	}
	fmt.Println()
}

func dumpWires(a *assembly.Assembly, p assembly.OutputPlug) {
	for k := uint32(0); k < p.WireCount; k++ {
		w := a.Wire(p.WireStart + k)
		fmt.Printf("    -> node %d plug %d\n", w.TargetNode, w.TargetInputPlug)
	}
}

func describeInputSlot(s assembly.InputSlot) string {
	switch {
	case s.VariableIdx != assembly.InvalidIndex:
		return fmt.Sprintf("variable %d", s.VariableIdx)
	case s.ExpressionIdx != assembly.InvalidIndex:
		return fmt.Sprintf("expression %d", s.ExpressionIdx)
	case s.ConstantIdx != assembly.InvalidIndex:
		return fmt.Sprintf("constant %d", s.ConstantIdx)
	default:
		return "unbound"
	}
}

func dumpExpressions(a *assembly.Assembly) {
	for i := uint32(0); i < a.ExpressionCount(); i++ {
		e := a.Expression(i)
		fmt.Printf("expression %d:\n", i)
		for _, line := range expr.Disassemble(a.ByteCode(e)) {
			fmt.Printf("  %s\n", line)
		}
	}
}
