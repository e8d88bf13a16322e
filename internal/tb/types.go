package tb

// Simulated time

// SimTime counts clock half-edge steps since the start of a run.
type SimTime uint64

// BadSimTime marks an error that is not tied to a point in simulated time.
const BadSimTime SimTime = ^SimTime(0)

// DefaultMaxSimTime is the step budget for a full encrypt + decrypt run.
const DefaultMaxSimTime SimTime = 20000

// DefaultResetToggles is the number of clock toggles reset is held for.
const DefaultResetToggles = 10

// Transfer units

// Unit is one payload transfer. Only the low Width bits are significant.
type Unit uint32

// Width is the transfer unit width in bits.
type Width uint8

const (
	Width8  Width = 8
	Width32 Width = 32
)

// MaxWidth is the widest unit a Unit can carry.
const MaxWidth Width = 32

// Valid returns true for a non-zero multiple of 8 that fits in a Unit.
func (w Width) Valid() bool {
	return w != 0 && w%8 == 0 && w <= MaxWidth
}

// Bytes returns the number of message bytes carried per unit.
func (w Width) Bytes() int { return int(w) / 8 }

// Mask returns the bit mask of the significant unit bits.
func (w Width) Mask() Unit {
	if w >= MaxWidth {
		return ^Unit(0)
	}
	return Unit(1)<<w - 1
}

// Phases

// Phase identifies one run of the handshake engine over a transfer sequence.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseEncrypt
	PhaseDecrypt
)

func (p Phase) String() string {
	switch p {
	case PhaseEncrypt:
		return "encryption"
	case PhaseDecrypt:
		return "decryption"
	default:
		return "none"
	}
}

// General return and error codes

// Err is the harness error code type.
type Err uint32

const (
	OK                    Err = 0
	ErrFail               Err = 1
	ErrNotInit            Err = 2
	ErrInvalidParamVal    Err = 3
	ErrInvalidWidth       Err = 4
	ErrConfig             Err = 5
	ErrAttachTooMany      Err = 6
	ErrAttachCompNotFound Err = 7
	ErrTimeout            Err = 8
	ErrLengthMismatch     Err = 9
	ErrContentMismatch    Err = 10
	ErrLast               Err = 11
)

// ErrSeverity is used to indicate the severity of an error or logger verbosity.
type ErrSeverity uint32

const (
	ErrSevNone  ErrSeverity = 0
	ErrSevError ErrSeverity = 1
	ErrSevWarn  ErrSeverity = 2
	ErrSevInfo  ErrSeverity = 3
	ErrSevDebug ErrSeverity = 4
)
