package protocol

// Action result codes reported back in OBS.
const (
	CodeOK = "OK"

	ErrNotInRange      = "ERR_NOT_IN_RANGE"
	ErrBusy            = "ERR_BUSY"
	ErrNotEnoughEnergy = "ERR_NOT_ENOUGH_ENERGY"
	ErrInvalidTarget   = "ERR_INVALID_TARGET"
	ErrNoPath          = "ERR_NO_PATH"
	ErrNoBodypart      = "ERR_NO_BODYPART"
	ErrFull            = "ERR_FULL"
	ErrNotOwner        = "ERR_NOT_OWNER"
	ErrRateLimit       = "ERR_RATE_LIMIT"
	ErrNameTaken       = "ERR_NAME_TAKEN"
	ErrInternal        = "ERR_INTERNAL"
)

var knownCodes = map[string]struct{}{
	CodeOK:             {},
	ErrNotInRange:      {},
	ErrBusy:            {},
	ErrNotEnoughEnergy: {},
	ErrInvalidTarget:   {},
	ErrNoPath:          {},
	ErrNoBodypart:      {},
	ErrFull:            {},
	ErrNotOwner:        {},
	ErrRateLimit:       {},
	ErrNameTaken:       {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
