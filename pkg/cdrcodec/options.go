package cdrcodec

// Limits bounds the resources a Reader will allocate while decoding a
// single message, guarding against hostile or corrupt input declaring
// an implausible sequence length or nesting depth.
type Limits struct {
	MaxSequenceLength int
	MaxStringLength   int
	MaxNestingDepth   int
}

// DefaultLimits is permissive, suited to trusted local transports.
var DefaultLimits = Limits{
	MaxSequenceLength: 1 << 20,
	MaxStringLength:   1 << 20,
	MaxNestingDepth:   64,
}

// SecureLimits is conservative, suited to decoding messages from an
// untrusted network peer.
var SecureLimits = Limits{
	MaxSequenceLength: 4096,
	MaxStringLength:   4096,
	MaxNestingDepth:   16,
}

// Options configures a Writer or Reader.
type Options struct {
	Limits            Limits
	EncapsulationKind EncapsulationKind
}

// DefaultOptions uses DefaultLimits and little-endian plain CDR.
var DefaultOptions = Options{
	Limits:            DefaultLimits,
	EncapsulationKind: CDR_LE,
}
