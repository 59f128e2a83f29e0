package memalloc

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFreeListAllocator(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"valid", 128, false},
		{"too_small", 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFreeListAllocator(make([]byte, tt.size))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFreeListAllocatorMinAllocSize(t *testing.T) {
	a, err := NewFreeListAllocator(make([]byte, 4096))
	require.NoError(t, err)

	p := a.Alloc(1)
	require.NotNil(t, p)
	tg := (*tag)(unsafe.Add(p, -int(unsafe.Sizeof(tag{}))))
	assert.Equal(t, uintptr(DefaultFreeListMinAllocSize), tg.size)
	require.NoError(t, a.CheckInvariants())
}

func TestFreeListAllocatorSplitAndContiguity(t *testing.T) {
	a, err := NewFreeListAllocator(make([]byte, 4096))
	require.NoError(t, err)

	p1 := a.Alloc(64)
	require.NotNil(t, p1)
	require.NoError(t, a.CheckInvariants())

	p2 := a.Alloc(64)
	require.NotNil(t, p2)
	assert.NotEqual(t, p1, p2)
	require.NoError(t, a.CheckInvariants())
}

func TestFreeListAllocatorFreeUnknownPointerPanics(t *testing.T) {
	a, err := NewFreeListAllocator(make([]byte, 4096))
	require.NoError(t, err)

	bogus := unsafe.Pointer(&struct{}{})
	assert.Panics(t, func() { a.Free(bogus) })
}

func TestFreeListAllocatorFreeNilIsNoop(t *testing.T) {
	a, err := NewFreeListAllocator(make([]byte, 4096))
	require.NoError(t, err)
	assert.NotPanics(t, func() { a.Free(nil) })
}

func TestFreeListAllocatorScenario(t *testing.T) {
	// Scenario 5 from the spec: region size 128: allocate(16) -> non-nil P;
	// write 16 random bytes, re-read equal; free(P); repeat 32 times
	// without leaking.
	region := make([]byte, 128)
	a, err := NewFreeListAllocator(region)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 32; i++ {
		p := a.Alloc(16)
		require.NotNil(t, p)

		want := make([]byte, 16)
		rng.Read(want)
		dst := unsafe.Slice((*byte)(p), 16)
		copy(dst, want)
		assert.Equal(t, want, dst)

		a.Free(p)
	}
	require.NoError(t, a.CheckInvariants())
}

func TestFreeListAllocatorExhaustion(t *testing.T) {
	a, err := NewFreeListAllocator(make([]byte, 256))
	require.NoError(t, err)

	var ptrs []unsafe.Pointer
	for {
		p := a.Alloc(64)
		if p == nil {
			break
		}
		ptrs = append(ptrs, p)
	}
	assert.NotEmpty(t, ptrs)
	require.NoError(t, a.CheckInvariants())

	for _, p := range ptrs {
		a.Free(p)
	}
	require.NoError(t, a.CheckInvariants())
}

func TestFreeListAllocatorWorkload(t *testing.T) {
	region := make([]byte, 64*1024)
	a, err := NewFreeListAllocator(region)
	require.NoError(t, err)

	type live struct {
		ptr    unsafe.Pointer
		shadow []byte
	}
	rng := rand.New(rand.NewSource(42))
	var liveAllocs []live

	for iter := 0; iter < 500; iter++ {
		if len(liveAllocs) > 0 && rng.Intn(2) == 0 {
			idx := rng.Intn(len(liveAllocs))
			l := liveAllocs[idx]
			got := unsafe.Slice((*byte)(l.ptr), len(l.shadow))
			assert.Equal(t, l.shadow, got)
			a.Free(l.ptr)
			liveAllocs[idx] = liveAllocs[len(liveAllocs)-1]
			liveAllocs = liveAllocs[:len(liveAllocs)-1]
			continue
		}

		size := 1 + rng.Intn(128)
		p := a.Alloc(size)
		if p == nil {
			continue
		}
		shadow := make([]byte, size)
		rng.Read(shadow)
		copy(unsafe.Slice((*byte)(p), size), shadow)
		liveAllocs = append(liveAllocs, live{ptr: p, shadow: shadow})
	}

	for _, l := range liveAllocs {
		got := unsafe.Slice((*byte)(l.ptr), len(l.shadow))
		assert.Equal(t, l.shadow, got)
	}
	require.NoError(t, a.CheckInvariants())
}
