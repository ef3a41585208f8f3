package runtime

// EmitterID names a pub-sub channel a variable's expression bindings
// can subscribe to via expr.EvaluateHost.Listen (spec.md §6 "Emitter
// bus"). The runtime doesn't interpret emitter ids itself; it only
// routes Listen calls from a running expression to the instance's
// subscriber table and fans out NotifyChange to every subscriber.
type EmitterID uint32

// slotKey identifies one node's input slot by its global index, the
// granularity emitter subscriptions are scoped to (spec.md §4.D
// "Emitter bus": the listener table is keyed by instance, emitter,
// and input slot).
type slotKey struct {
	node uint32
	slot uint32
}

// bus is the per-instance emitter pub-sub table. Subscriptions are
// tracked in both directions so a slot's prior listen() calls can be
// dropped in one step before it is re-evaluated (spec.md §4.D: "prior
// listeners for that slot are forgotten first"), and duplicate
// registrations of the same (emitter, slot) pair coalesce rather than
// firing twice.
type bus struct {
	byEmitter map[EmitterID]map[slotKey]bool
	bySlot    map[slotKey][]EmitterID
}

func newBus() *bus {
	return &bus{
		byEmitter: map[EmitterID]map[slotKey]bool{},
		bySlot:    map[slotKey][]EmitterID{},
	}
}

// clearSlot drops every subscription key currently holds.
func (b *bus) clearSlot(key slotKey) {
	for _, id := range b.bySlot[key] {
		delete(b.byEmitter[id], key)
	}
	delete(b.bySlot, key)
}

// listen subscribes key to emitter id, coalescing a repeat
// registration of the same pair.
func (b *bus) listen(id EmitterID, key slotKey) {
	if b.byEmitter[id] == nil {
		b.byEmitter[id] = map[slotKey]bool{}
	}
	if b.byEmitter[id][key] {
		return
	}
	b.byEmitter[id][key] = true
	b.bySlot[key] = append(b.bySlot[key], id)
}

// notify returns every slot currently subscribed to id.
func (b *bus) notify(id EmitterID) []slotKey {
	keys := make([]slotKey, 0, len(b.byEmitter[id]))
	for k := range b.byEmitter[id] {
		keys = append(keys, k)
	}
	return keys
}

// forgetNode drops every subscription belonging to node. Nothing in
// this package calls it: Instance.Destroy replaces the whole bus
// instead.
func (b *bus) forgetNode(node uint32) {
	for key := range b.bySlot {
		if key.node == node {
			b.clearSlot(key)
		}
	}
}
