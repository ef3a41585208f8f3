package runtime

import (
	"fmt"
	"io"

	"github.com/google/pprof/profile"
)

// Snapshot builds a pprof profile of which nodes are currently active
// in inst, one sample per active node labeled by its assembly type
// id. It's meant for ad hoc inspection with `go tool pprof` against a
// long-running instance, not for anything the runtime itself reads
// back (spec.md §9 "observability is host plumbing, not a library
// concern" — this is exactly that plumbing, kept out of the hot
// path).
func Snapshot(inst *Instance) *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "active_node", Unit: "count"},
		},
		PeriodType: &profile.ValueType{Type: "snapshot", Unit: "count"},
		Period:     1,
	}

	functionsByType := map[uint32]*profile.Function{}
	var nextFunctionID, nextLocationID uint64

	for i := uint32(0); i < inst.asm.NodeCount(); i++ {
		if !inst.activeNodes.Test(int(i)) {
			continue
		}
		typeID := inst.asm.Node(i).TypeID
		fn, ok := functionsByType[typeID]
		if !ok {
			nextFunctionID++
			fn = &profile.Function{
				ID:   nextFunctionID,
				Name: fmt.Sprintf("node-type-%d", typeID),
			}
			p.Function = append(p.Function, fn)
			functionsByType[typeID] = fn
		}

		nextLocationID++
		loc := &profile.Location{
			ID:   nextLocationID,
			Line: []profile.Line{{Function: fn}},
		}
		p.Location = append(p.Location, loc)

		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{1},
			Label:    map[string][]string{"node": {fmt.Sprintf("%d", i)}},
		})
	}

	return p
}

// WriteSnapshot writes a gzip-compressed pprof profile of inst's
// active nodes to w.
func WriteSnapshot(w io.Writer, inst *Instance) error {
	return Snapshot(inst).Write(w)
}
