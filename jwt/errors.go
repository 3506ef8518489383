package jwt

import "errors"

// ErrDecode is wrapped by every decode failure.
var ErrDecode = errors.New("token decode failed")

var (
	// ErrMalformed is returned for tokens that are not structurally valid JWTs or whose
	// claims are missing or inconsistent.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid is returned when the signature does not verify under the
	// configured secret or the token was signed with an unexpected algorithm.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired is returned for correctly signed tokens whose expiry has passed.
	ErrExpired = errors.New("token expired")
)

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind int

const (
	DecodeOK DecodeErrorKind = iota
	DecodeMalformed
	DecodeSignatureInvalid
	DecodeExpired
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeOK:
		return "ok"
	case DecodeMalformed:
		return "malformed"
	case DecodeSignatureInvalid:
		return "signature_invalid"
	case DecodeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// KindOf maps an error returned by [Manager.Decode] to its kind. Errors that did not
// come from Decode are reported as DecodeMalformed.
func KindOf(err error) DecodeErrorKind {
	switch {
	case err == nil:
		return DecodeOK
	case errors.Is(err, ErrExpired):
		return DecodeExpired
	case errors.Is(err, ErrSignatureInvalid):
		return DecodeSignatureInvalid
	default:
		return DecodeMalformed
	}
}

func decodeError(kind error, cause error) error {
	return errors.Join(ErrDecode, kind, cause)
}
