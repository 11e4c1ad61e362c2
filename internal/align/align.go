// Package align provides the integer helpers used to size slots and segments.
package align

// PointerWidth is the size in bytes of a machine pointer.
const PointerWidth = 4 << (^uintptr(0) >> 63)

// Up returns n rounded up to the next multiple of a.
// An a of zero leaves n unchanged.
//
// Example:
//
//	Up(1, 8)  = 8
//	Up(8, 8)  = 8
//	Up(9, 8)  = 16
//	Up(25, 24) = 48
func Up(n, a int) int {
	if a == 0 {
		return n
	}
	if r := n % a; r != 0 {
		return n + (a - r)
	}
	return n
}

// UpPow2 returns n rounded up to the next multiple of a, where a is a power of two.
func UpPow2(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b, or 0 if either is 0.
// ok is false when the result does not fit in an int.
func LCM(a, b int) (l int, ok bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	q := a / GCD(a, b)
	l = q * b
	if l/b != q {
		return 0, false
	}
	return l, true
}

// CeilDiv returns ceil(n / d) for positive d.
func CeilDiv(n, d int) int {
	return (n + d - 1) / d
}
