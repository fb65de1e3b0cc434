package model

// Amount is a fixed-width signed integer vector describing a capacity or a
// load delta. All amount vectors inside one Input share the same width.
type Amount []int64

// NewAmount returns a zero amount of the given width.
func NewAmount(width int) Amount {
	return make(Amount, width)
}

// Add returns the componentwise sum a+b. Panics if widths differ, mirroring
// the invariant that every Amount in an Input shares one dimension.
func (a Amount) Add(b Amount) Amount {
	a.mustMatch(b)
	out := make(Amount, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns the componentwise difference a-b.
func (a Amount) Sub(b Amount) Amount {
	a.mustMatch(b)
	out := make(Amount, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// LessOrEqual reports whether a[i] <= b[i] for every component.
func (a Amount) LessOrEqual(b Amount) bool {
	a.mustMatch(b)
	for i := range a {
		if a[i] > b[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every component is zero.
func (a Amount) IsZero() bool {
	for _, v := range a {
		if v != 0 {
			return false
		}
	}
	return true
}

// Max returns the componentwise maximum of a and b.
func (a Amount) Max(b Amount) Amount {
	a.mustMatch(b)
	out := make(Amount, len(a))
	for i := range a {
		if a[i] > b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// Clone returns an independent copy.
func (a Amount) Clone() Amount {
	out := make(Amount, len(a))
	copy(out, a)
	return out
}

func (a Amount) mustMatch(b Amount) {
	if len(a) != len(b) {
		panic("model: amount dimension mismatch")
	}
}
