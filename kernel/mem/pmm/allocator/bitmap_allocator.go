// Package allocator implements the physical page allocator: a fixed-arena
// bitmap tracking used/free frames plus a page-granular byte allocator
// layered on top of it.
package allocator

import (
	"math/bits"

	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem/pmm"
	"github.com/sureSundar/STEPPPS-sub015/kernel/sync"
)

var (
	// ErrOutOfMemory is returned by allocation calls when no free page
	// exists anywhere in the arena. This is the only allocator failure
	// the caller is expected to handle at runtime.
	ErrOutOfMemory = &kernel.Error{Module: "pmm_alloc", Message: "out of memory"}

	errBadArenaGeometry  = &kernel.Error{Module: "pmm_alloc", Message: "arena base/size must be page-aligned and non-empty"}
	errFrameOutOfRange   = &kernel.Error{Module: "pmm_alloc", Message: "frame is outside the managed arena"}
	errFrameNotAllocated = &kernel.Error{Module: "pmm_alloc", Message: "frame is not marked as allocated"}
	errUnalignedAddress  = &kernel.Error{Module: "pmm_alloc", Message: "address is not page-aligned"}
)

// BitmapAllocator implements a physical frame allocator for a fixed arena
// of page frames. Reservations are tracked with one bit per frame (set
// means allocated) together with a redundant free-frame counter that must
// always match the number of clear bits.
//
// Allocations use a first-fit linear scan. Fully allocated 64-frame blocks
// are skipped with a single compare, so the expected page-at-a-time, low
// frequency usage never pays for a bit-by-bit walk of the whole arena.
type BitmapAllocator struct {
	mu sync.Spinlock

	// arenaStart is the frame of the first page in the managed arena.
	arenaStart pmm.Frame

	// pageCount is the total number of frames in the arena.
	pageCount uint32

	// freeCount tracks the number of free frames. It always equals the
	// number of clear bits in the bitmap; divergence means corruption.
	freeCount uint32

	// bitmap tracks used/free frames. Bit i of block b describes frame
	// arenaStart + b*64 + i.
	bitmap []uint64

	// reservedStart/reservedEnd record the kernel image reservation
	// (inclusive frame range) applied at Init time.
	reservedStart, reservedEnd pmm.Frame
}

// Init sets up the allocator for the arena [arenaBase, arenaBase+arenaSize)
// and marks every page covering [kernelStart, kernelEnd) as allocated so
// the kernel image can never be handed out. The arena base and size must
// be page-aligned.
func (alloc *BitmapAllocator) Init(arenaBase uintptr, arenaSize mem.Size, kernelStart, kernelEnd uintptr) *kernel.Error {
	pageSizeMinus1 := uintptr(mem.PageSize - 1)
	if arenaSize == 0 || arenaBase&pageSizeMinus1 != 0 || arenaSize&(mem.PageSize-1) != 0 {
		return errBadArenaGeometry
	}

	alloc.arenaStart = pmm.FrameFromAddress(arenaBase)
	alloc.pageCount = arenaSize.Pages()
	alloc.freeCount = alloc.pageCount
	alloc.bitmap = make([]uint64, (alloc.pageCount+63)>>6)

	// Frames in the final block that lie beyond the arena end must never
	// be handed out; flag them as allocated up front.
	for padIndex := alloc.pageCount; padIndex < uint32(len(alloc.bitmap))<<6; padIndex++ {
		alloc.bitmap[padIndex>>6] |= 1 << (padIndex & 63)
	}

	if kernelStart >= kernelEnd {
		alloc.reservedStart, alloc.reservedEnd = pmm.InvalidFrame, pmm.InvalidFrame
		return nil
	}

	// Round the kernel start down and the kernel end up to page bounds.
	alloc.reservedStart = pmm.FrameFromAddress(kernelStart)
	alloc.reservedEnd = pmm.FrameFromAddress(kernelEnd+pageSizeMinus1) - 1

	for frame := alloc.reservedStart; frame <= alloc.reservedEnd; frame++ {
		if frame < alloc.arenaStart || uint32(frame-alloc.arenaStart) >= alloc.pageCount {
			continue
		}

		index := uint32(frame - alloc.arenaStart)
		alloc.bitmap[index>>6] |= 1 << (index & 63)
		alloc.freeCount--
	}

	return nil
}

// AllocFrame reserves the first free frame in the arena and returns it.
// It returns ErrOutOfMemory when every frame is allocated; the bitmap is
// left untouched in that case.
func (alloc *BitmapAllocator) AllocFrame() (pmm.Frame, *kernel.Error) {
	alloc.mu.Acquire()
	defer alloc.mu.Release()

	for blockIndex, block := range alloc.bitmap {
		if block == ^uint64(0) {
			continue
		}

		bitIndex := bits.TrailingZeros64(^block)
		alloc.bitmap[blockIndex] |= 1 << uint(bitIndex)
		alloc.freeCount--

		return alloc.arenaStart + pmm.Frame(blockIndex<<6+bitIndex), nil
	}

	return pmm.InvalidFrame, ErrOutOfMemory
}

// FreeFrame releases a frame previously returned by AllocFrame. Freeing a
// frame outside the arena or one that is not currently allocated is a
// caller-contract violation; it is rejected with an explicit error and the
// bitmap is left untouched.
func (alloc *BitmapAllocator) FreeFrame(frame pmm.Frame) *kernel.Error {
	alloc.mu.Acquire()
	defer alloc.mu.Release()

	if frame < alloc.arenaStart || uint32(frame-alloc.arenaStart) >= alloc.pageCount {
		return errFrameOutOfRange
	}

	index := uint32(frame - alloc.arenaStart)
	mask := uint64(1) << (index & 63)
	if alloc.bitmap[index>>6]&mask == 0 {
		return errFrameNotAllocated
	}

	alloc.bitmap[index>>6] &^= mask
	alloc.freeCount++

	return nil
}

// AllocPage reserves the first free page in the arena and returns its
// physical address.
func (alloc *BitmapAllocator) AllocPage() (uintptr, *kernel.Error) {
	frame, err := alloc.AllocFrame()
	if err != nil {
		return 0, err
	}

	return frame.Address(), nil
}

// FreePage releases the page at addr. The address must be page-aligned and
// previously returned by AllocPage.
func (alloc *BitmapAllocator) FreePage(addr uintptr) *kernel.Error {
	if addr&uintptr(mem.PageSize-1) != 0 {
		return errUnalignedAddress
	}

	return alloc.FreeFrame(pmm.FrameFromAddress(addr))
}

// AllocBytes reserves backing storage for a byte-granular allocation.
// Every request, no matter its size (including zero), is rounded up to
// exactly one whole page. This is an intentional placeholder: there is no
// splitting or coalescing until a real heap takes over.
func (alloc *BitmapAllocator) AllocBytes(size mem.Size) (uintptr, *kernel.Error) {
	_ = size
	return alloc.AllocPage()
}

// FreeBytes releases an allocation made by AllocBytes.
func (alloc *BitmapAllocator) FreeBytes(addr uintptr) *kernel.Error {
	return alloc.FreePage(addr)
}

// FreePages returns the number of free frames in the arena.
func (alloc *BitmapAllocator) FreePages() uint32 {
	alloc.mu.Acquire()
	defer alloc.mu.Release()
	return alloc.freeCount
}

// TotalPages returns the total number of frames in the arena.
func (alloc *BitmapAllocator) TotalPages() uint32 {
	return alloc.pageCount
}

// FreeMemory returns the amount of allocatable memory left in the arena.
func (alloc *BitmapAllocator) FreeMemory() mem.Size {
	return mem.Size(alloc.FreePages()) * mem.PageSize
}

// UsedMemory returns the amount of arena memory currently allocated,
// including the boot-time kernel image reservation.
func (alloc *BitmapAllocator) UsedMemory() mem.Size {
	return mem.Size(alloc.pageCount-alloc.FreePages()) * mem.PageSize
}

// PrintUsage reports the arena layout and current usage to the console.
func (alloc *BitmapAllocator) PrintUsage() {
	kfmt.Printf("[pmm_alloc] arena: 0x%8x - 0x%8x (%d pages)\n",
		alloc.arenaStart.Address(),
		uintptr(alloc.arenaStart+pmm.Frame(alloc.pageCount))<<mem.PageShift,
		alloc.pageCount,
	)
	if alloc.reservedStart.Valid() {
		kfmt.Printf("[pmm_alloc] kernel image: 0x%8x - 0x%8x (%d pages reserved)\n",
			alloc.reservedStart.Address(),
			uintptr(alloc.reservedEnd+1)<<mem.PageShift,
			uint64(alloc.reservedEnd-alloc.reservedStart+1),
		)
	}
	kfmt.Printf("[pmm_alloc] free: %dKb, used: %dKb\n",
		uint64(alloc.FreeMemory()/mem.Kb),
		uint64(alloc.UsedMemory()/mem.Kb),
	)
}
