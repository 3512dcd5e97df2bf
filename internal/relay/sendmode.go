package relay

// SendMode governs notify fan-out behavior.
type SendMode string

// Valid send modes. Anything else resolves to SendModeBroadcast.
const (
	SendModeBroadcast SendMode = "broadcast" // broadcast to all friends only
	SendModeGroup     SendMode = "group"     // push to every registered group only
	SendModeAll       SendMode = "all"       // broadcast first, then group fan-out
)

// ParseSendMode resolves a configured literal to a SendMode. Unset,
// empty, or unrecognized values default to broadcast.
func ParseSendMode(value string) SendMode {
	switch SendMode(value) {
	case SendModeBroadcast, SendModeGroup, SendModeAll:
		return SendMode(value)
	default:
		return SendModeBroadcast
	}
}

// String returns the mode literal.
func (m SendMode) String() string {
	return string(m)
}
