package mem

// Memset sets all bytes of p to the supplied value. The implementation is
// based on bytes.Repeat; instead of a plain loop it uses log2(len(p)) copy
// calls which is considerably faster for the page-aligned regions it is
// called with.
func Memset(p []byte, value byte) {
	if len(p) == 0 {
		return
	}

	p[0] = value
	for index := 1; index < len(p); index *= 2 {
		copy(p[index:], p[:index])
	}
}
