package per

const (
	// MAX_CONSTRAINED_LENGTH is the bound below which a length determinant is
	// encoded as a constrained whole number.
	// ITU-T X.691 Section 11.9.3.3 / 11.9.4.1
	MAX_CONSTRAINED_LENGTH = 65536 // 64K

	// FRAGMENT_SIZE is the unit of fragmented length determinants.
	// ITU-T X.691 Section 11.9.3.8
	FRAGMENT_SIZE = 16384 // 16K

	// MAX_FRAGMENTS is the largest fragment multiplier "m" of a length octet.
	MAX_FRAGMENTS = 4

	// MAX_NORMALLY_SMALL is the largest value of the 6-bit normally small form.
	// ITU-T X.691 Section 11.6.1
	MAX_NORMALLY_SMALL = 63
)
