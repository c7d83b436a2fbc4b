package mem

import "testing"

func TestSizePages(t *testing.T) {
	specs := []struct {
		size Size
		exp  uint32
	}{
		{0, 0},
		{1, 1},
		{PageSize, 1},
		{PageSize + 1, 2},
		{16 * Mb, 4096},
	}

	for specIndex, spec := range specs {
		if got := spec.size.Pages(); got != spec.exp {
			t.Errorf("[spec %d] expected size %d to need %d pages; got %d", specIndex, spec.size, spec.exp, got)
		}
	}
}

func TestMemset(t *testing.T) {
	// memset of an empty slice should be a no-op
	Memset(nil, 0x00)

	for pageCount := uint32(1); pageCount <= 10; pageCount++ {
		buf := make([]byte, PageSize<<pageCount)
		for i := 0; i < len(buf); i++ {
			buf[i] = 0xFE
		}

		Memset(buf, 0x00)

		for i := 0; i < len(buf); i++ {
			if got := buf[i]; got != 0x00 {
				t.Errorf("[block with %d pages] expected byte: %d to be 0x00; got 0x%x", pageCount, i, got)
			}
		}
	}
}
