// Package kfmt provides a minimal, allocation-free Printf implementation
// that the kernel can use from the moment it gains control, before any
// console device has been attached.
package kfmt

import "io"

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf [maxBufSize]byte

	// singleByte is a shared buffer for emitting single characters.
	singleByte = []byte(" ")

	// earlyPrintBuffer buffers Printf output generated before an output
	// sink has been attached.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. While
	// nil, output is redirected to earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf to w and drains any
// data accumulated in the early print buffer into it. Passing nil reverts
// Printf output to the early print buffer.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the sink Printf output currently goes to.
func GetOutputSink() io.Writer {
	if outputSink == nil {
		return &earlyPrintBuffer
	}
	return outputSink
}

// Printf formats its arguments to the active output sink. It supports the
// following subset of formatting verbs:
//
// Strings:
//	%s the uninterpreted bytes of the string or byte slice
//	%c the character represented by an integer value
//
// Integers:
//	%o base 8
//	%d base 10
//	%x base 16, lower-case letters for a-f
//	%X base 16, upper-case letters for A-F
//
// Booleans:
//	%t "true" or "false"
//
// Width is specified by an optional decimal number immediately preceding
// the verb. String and base-10 values shorter than the width are
// left-padded with spaces; base-16 values are left-padded with zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but writes the formatted output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		w = &earlyPrintBuffer
	}

	var (
		blockStart, blockEnd int
		nextArgIndex         int
		fmtLen               = len(format)
	)

	for blockEnd < fmtLen {
		if format[blockEnd] != '%' {
			blockEnd++
			continue
		}

		if blockStart < blockEnd {
			doWrite(w, []byte(format[blockStart:blockEnd]))
		}

		// Scan the optional width specifier.
		blockEnd++
		padLen := 0
		for ; blockEnd < fmtLen && format[blockEnd] >= '0' && format[blockEnd] <= '9'; blockEnd++ {
			padLen = padLen*10 + int(format[blockEnd]-'0')
		}

		if blockEnd >= fmtLen {
			doWrite(w, errNoVerb)
			return
		}

		verb := format[blockEnd]
		blockEnd++
		blockStart = blockEnd

		if verb == '%' {
			singleByte[0] = '%'
			doWrite(w, singleByte)
			continue
		}

		if nextArgIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}
		arg := args[nextArgIndex]
		nextArgIndex++

		switch verb {
		case 'o':
			fmtInt(w, arg, 8, padLen)
		case 'd':
			fmtInt(w, arg, 10, padLen)
		case 'x':
			fmtInt(w, arg, 16, padLen)
		case 'X':
			fmtInt(w, arg, -16, padLen)
		case 's':
			fmtString(w, arg, padLen)
		case 'c':
			fmtChar(w, arg)
		case 't':
			fmtBool(w, arg)
		default:
			doWrite(w, errNoVerb)
		}
	}

	if blockStart < blockEnd {
		doWrite(w, []byte(format[blockStart:blockEnd]))
	}

	if nextArgIndex < len(args) {
		doWrite(w, errExtraArg)
	}
}

// fmtBool prints a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	switch t := v.(type) {
	case bool:
		if t {
			doWrite(w, trueValue)
		} else {
			doWrite(w, falseValue)
		}
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtChar prints the character represented by integer value v.
func fmtChar(w io.Writer, v interface{}) {
	u, _, ok := intValue(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	singleByte[0] = byte(u)
	doWrite(w, singleByte)
}

// fmtString prints a formatted version of string or []byte value v,
// left-padding it with spaces to the requested width.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch t := v.(type) {
	case string:
		padString(w, len(t), padLen)
		doWrite(w, []byte(t))
	case []byte:
		padString(w, len(t), padLen)
		doWrite(w, t)
	default:
		doWrite(w, errWrongArgType)
	}
}

func padString(w io.Writer, strLen, padLen int) {
	singleByte[0] = ' '
	for ; strLen < padLen; padLen-- {
		doWrite(w, singleByte)
	}
}

// fmtInt prints a formatted version of integer value v in the requested
// base. Base-10 values are left-padded with spaces and base-16 values with
// zeroes up to the requested width. A negative base selects upper-case
// hex digits.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	digits := "0123456789abcdef"
	if base < 0 {
		base = -base
		digits = "0123456789ABCDEF"
	}

	u, neg, ok := intValue(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	padChar := byte(' ')
	if base == 16 {
		padChar = '0'
	}

	left := len(numFmtBuf)
	for {
		left--
		numFmtBuf[left] = digits[u%uint64(base)]
		u /= uint64(base)
		if u == 0 {
			break
		}
	}

	if neg {
		left--
		numFmtBuf[left] = '-'
	}

	for digitCount := len(numFmtBuf) - left; digitCount < padLen; digitCount++ {
		left--
		numFmtBuf[left] = padChar
	}

	doWrite(w, numFmtBuf[left:])
}

// intValue extracts the magnitude and sign out of any of the built-in
// integer types.
func intValue(v interface{}) (u uint64, neg, ok bool) {
	switch t := v.(type) {
	case int:
		return intMagnitude(int64(t))
	case int8:
		return intMagnitude(int64(t))
	case int16:
		return intMagnitude(int64(t))
	case int32:
		return intMagnitude(int64(t))
	case int64:
		return intMagnitude(t)
	case uint:
		return uint64(t), false, true
	case uint8:
		return uint64(t), false, true
	case uint16:
		return uint64(t), false, true
	case uint32:
		return uint64(t), false, true
	case uint64:
		return t, false, true
	case uintptr:
		return uint64(t), false, true
	}
	return 0, false, false
}

func intMagnitude(v int64) (uint64, bool, bool) {
	if v < 0 {
		return uint64(-v), true, true
	}
	return uint64(v), false, true
}

// doWrite writes p to w ignoring any write errors; there is nobody left to
// report them to once the console itself fails.
func doWrite(w io.Writer, p []byte) {
	w.Write(p)
}
