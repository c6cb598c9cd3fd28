package service

// ProtocolVersion is the highest request version this server accepts.
const ProtocolVersion = 1

// Operation names.
const (
	opIdentify    = "identify"
	opIdentifyUSB = "identify-usb"
	opWatch       = "watch"
)

// request is one client line. Identify requests attach the device fd as
// SCM_RIGHTS ancillary data on the same message.
type request struct {
	Version int    `json:"version"`
	Op      string `json:"op"`

	// identify
	Kind string `json:"kind,omitempty"` // "evdev" or "hidraw"

	// identify-usb
	Vendor  uint16 `json:"vendor,omitempty"`
	Product uint16 `json:"product,omitempty"`
	Bus     string `json:"bus,omitempty"` // bus name, default "usb"

	// watch
	Handle   string `json:"handle,omitempty"`
	Physical string `json:"physical,omitempty"`
}

// response is one server line.
type response struct {
	Version int    `json:"version"`
	Error   string `json:"error,omitempty"`

	// identify / identify-usb
	Handle   string `json:"handle,omitempty"`
	Physical string `json:"physical,omitempty"`
	Payload  string `json:"payload,omitempty"`

	// watch
	Event string `json:"event,omitempty"`
}
