package protocol

const (
	// Request validation.
	ErrBadRequest     = "E_BAD_REQUEST"
	ErrUnknownMapSize = "E_UNKNOWN_MAP_SIZE"

	// Generation.
	ErrIncomplete = "E_INCOMPLETE"
	ErrBusy       = "E_BUSY"
	ErrNotFound   = "E_NOT_FOUND"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:     {},
	ErrUnknownMapSize: {},
	ErrIncomplete:     {},
	ErrBusy:           {},
	ErrNotFound:       {},
	ErrInternal:       {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
