package models

// Mode separates the durable normal conversation from the ephemeral
// private one. Every core operation takes it explicitly; only the HTTP
// layer knows it arrives as the X-Private-Mode header.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModePrivate Mode = "private"
)

// ParseMode maps the X-Private-Mode header value to a Mode.
func ParseMode(privateHeader string) Mode {
	if privateHeader == "true" {
		return ModePrivate
	}
	return ModeNormal
}

func (m Mode) IsPrivate() bool {
	return m == ModePrivate
}
