package sbv

// Wire tag kinds. The top 3 bits of every unit's first byte hold one of
// these; the low 5 bits are kind-specific.
const (
	tagNil       = 0
	tagNumber    = 1
	tagBool      = 2
	tagString    = 3
	tagTable     = 4
	tagArray     = 5
	tagStringRef = 6
	tagRun       = 7
)

const (
	tagShift = 5
	lowMask  = 0x1f
)

// Number payload layout.
const (
	numNegFlag  = 0x10 // sign flag within the low 5 tag bits
	numFmtInt   = 0    // format byte: varint integer magnitude
	numFmtFloat = 1    // format byte: 8-byte little-endian float64
)

// String form thresholds.
const (
	inlineMaxLen = 31  // longest string carried in the tag's low 5 bits
	mediumMaxLen = 255 // longest string carried with an explicit length byte
)

// refWideFlag, when set in a StringRef tag's low 5 bits, marks a 2-byte
// little-endian zero-based index; clear means a single byte. The width
// is declared per reference, so refs written while the pool was small
// stay readable after it grows.
const refWideFlag = 0x01

// narrowRefMax is the largest zero-based index a 1-byte reference can
// carry.
const narrowRefMax = 255

// runMinLen is the shortest run of equal array elements worth collapsing
// into a run-length unit. Below it, the unit's own overhead loses.
const runMinLen = 4
