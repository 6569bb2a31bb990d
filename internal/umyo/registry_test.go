package umyo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesAndReuses(t *testing.T) {
	r := &registry{}

	a := r.resolve(1)
	b := r.resolve(2)
	assert.NotSame(t, a, b)
	assert.Len(t, r.slots, 2)

	// Same id resolves to the same slot.
	assert.Same(t, a, r.resolve(1))
	assert.Len(t, r.slots, 2)
}

func TestSilentDeviceEvicted(t *testing.T) {
	r := &registry{}
	r.resolve(1)
	r.resolve(2)

	// Unit 1 goes silent while unit 2 keeps arriving. The sweep runs
	// before the match, so the slot disappears on the first resolve
	// after its counter crosses the threshold.
	for i := 0; i <= evictionThreshold+1; i++ {
		r.resolve(2)
	}

	require.Len(t, r.slots, 1)
	assert.Equal(t, uint32(2), r.slots[0].UnitID)
}

func TestActiveDeviceNeverEvicted(t *testing.T) {
	r := &registry{}

	for i := 0; i < 3*evictionThreshold; i++ {
		r.resolve(1)
		r.resolve(2)
	}

	assert.Len(t, r.slots, 2)
}

func TestStaleSlotNotEvictedByOwnLookup(t *testing.T) {
	r := &registry{}
	d := r.resolve(1)
	d.unseen = 2 * evictionThreshold

	// Resolving the stale id itself must match it, not evict it.
	got := r.resolve(1)
	assert.Same(t, d, got)
	assert.Equal(t, uint32(0), got.unseen)
	assert.Len(t, r.slots, 1)
}

func TestEvictionIsLazy(t *testing.T) {
	r := &registry{}
	stale := r.resolve(1)
	r.resolve(2)
	stale.unseen = evictionThreshold + 1

	// The stale slot lingers until the registry is consulted again.
	assert.Len(t, r.slots, 2)
	r.resolve(2)
	assert.Len(t, r.slots, 1)
}
