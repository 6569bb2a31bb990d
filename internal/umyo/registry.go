package umyo

// evictionThreshold is how many resolve calls a unit may go unmatched
// before its slot is reclaimed.
const evictionThreshold = 1000

// registry maps a 32-bit unit id to a working slot, creating slots for
// new ids and reclaiming slots of units that have gone silent.
type registry struct {
	slots []*Device
}

// resolve returns the device slot for unitID, creating one if the id has
// not been seen before.
//
// Stale slots are swept lazily at the start of every call, before the
// match search, and a slot is never evicted by a lookup of its own id.
// This ordering means a silent unit lingers until the next lookup of a
// *different* id after it crosses the threshold.
func (r *registry) resolve(unitID uint32) *Device {
	kept := r.slots[:0]
	for _, d := range r.slots {
		if d.unseen > evictionThreshold && d.UnitID != unitID {
			continue
		}
		kept = append(kept, d)
	}
	// Drop trailing pointers so evicted devices can be collected.
	for i := len(kept); i < len(r.slots); i++ {
		r.slots[i] = nil
	}
	r.slots = kept

	// The search stops at the first match, so slots past it keep their
	// counters for this call.
	for _, d := range r.slots {
		d.unseen++
		if d.UnitID == unitID {
			d.unseen = 0
			return d
		}
	}

	d := newDevice(unitID)
	r.slots = append(r.slots, d)
	return d
}
