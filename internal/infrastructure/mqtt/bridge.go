package mqtt

import (
	"encoding/json"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/probe"
	"github.com/nerrad567/inputid/internal/registry"
)

// Bridge fans registry lifecycle events out to the MQTT broker.
//
// Identified devices are announced on the event topics and their codec
// payload is published retained on the per-device description topic, so
// late subscribers can recover the full description without talking to
// the daemon. Removal clears the retained description by publishing an
// empty payload.
//
// Publishing is best-effort: a broker outage must never block or fail
// device identification, so errors are logged and dropped. The paho
// client buffers across reconnects for QoS >= 1.
type Bridge struct {
	client *Client
	qos    byte
	logger Logger
	db     device.Database
}

// bridgeEvent is the JSON body published on the event topics.
type bridgeEvent struct {
	Identity string `json:"identity,omitempty"`
	GroupKey string `json:"group_key,omitempty"`
}

// NewBridge creates a Bridge publishing through client at the given QoS.
//
// Parameters:
//   - client: connected MQTT client (shared with other publishers)
//   - qos: QoS level for event publishes (0-2)
//
// Returns:
//   - *Bridge: ready to receive registry events
func NewBridge(client *Client, qos byte) *Bridge {
	return &Bridge{client: client, qos: qos}
}

// SetLogger sets the logger for publish failures. Nil disables logging.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// HandleEvent publishes one registry event to the broker. It is safe to
// pass directly to registry.WithEventFunc: it never blocks on broker
// I/O beyond the paho publish call and never returns an error to the
// registry.
func (b *Bridge) HandleEvent(ev registry.Event) {
	switch ev.Type {
	case registry.EventRegistered:
		b.publishEvent(Topics{}.EventIdentified(), ev)
		b.publishDescription(ev)
	case registry.EventRemoved:
		b.publishEvent(Topics{}.EventRemoved(), ev)
		b.clearDescription(ev)
	case registry.EventPhysicalRemoved:
		b.publishEvent(Topics{}.EventPhysicalRemoved(), ev)
	case registry.EventPhysicalRegistered:
		// No dedicated topic: the constituent's identified event carries
		// the group key, which is all subscribers need.
	}
}

func (b *Bridge) publishEvent(topic string, ev registry.Event) {
	body := bridgeEvent{GroupKey: ev.GroupKey}
	if ev.Type == registry.EventRegistered || ev.Type == registry.EventRemoved {
		body.Identity = ev.Identity.String()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		b.warn("mqtt bridge: marshal event failed", "topic", topic, "error", err)
		return
	}

	if err := b.client.Publish(topic, payload, b.qos, false); err != nil {
		b.warn("mqtt bridge: publish failed", "topic", topic, "error", err)
	}
}

func (b *Bridge) publishDescription(ev registry.Event) {
	if ev.Device == nil {
		return
	}

	payload, err := ev.Device.Serialize()
	if err != nil {
		b.warn("mqtt bridge: serialize failed", "identity", ev.Identity.String(), "error", err)
		return
	}

	topic := Topics{}.DeviceDescription(ev.Identity.String())
	if err := b.client.PublishRetained(topic, []byte(payload)); err != nil {
		b.warn("mqtt bridge: publish retained failed", "topic", topic, "error", err)
	}
}

func (b *Bridge) clearDescription(ev registry.Event) {
	// An empty retained publish deletes the retained message.
	topic := Topics{}.DeviceDescription(ev.Identity.String())
	if err := b.client.PublishRetained(topic, nil); err != nil {
		b.warn("mqtt bridge: clear retained failed", "topic", topic, "error", err)
	}
}

// identifyRequest is the JSON body accepted on the identify request
// topic: bare identifiers, same contract as the socket's fd-less op.
type identifyRequest struct {
	// ID is an opaque correlation token echoed back on the response, so
	// concurrent requesters can pick out their answer.
	ID      string `json:"id,omitempty"`
	Vendor  uint16 `json:"vendor"`
	Product uint16 `json:"product"`
	Bus     string `json:"bus,omitempty"`
}

// identifyResponse is the JSON body published on the response topic.
type identifyResponse struct {
	ID      string `json:"id,omitempty"`
	Payload string `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListenIdentifyRequests subscribes the bridge to the identify request
// topic and answers each request on the response topic. The db drives
// the lookup; no registry entry is created. The subscription survives
// reconnects via the client's replay.
//
// Parameters:
//   - db: hardware database for the vendor/product lookup
//
// Returns:
//   - error: if the subscription cannot be established
func (b *Bridge) ListenIdentifyRequests(db device.Database) error {
	b.db = db
	return b.client.Subscribe(Topics{}.IdentifyRequest(), b.qos, b.handleIdentifyRequest)
}

func (b *Bridge) handleIdentifyRequest(_ string, payload []byte) error {
	resp := b.answerIdentify(payload)
	data, err := json.Marshal(resp)
	if err != nil {
		b.warn("mqtt bridge: marshal identify response failed", "error", err)
		return err
	}
	if err := b.client.Publish(Topics{}.IdentifyResponse(), data, b.qos, false); err != nil {
		b.warn("mqtt bridge: publish identify response failed", "error", err)
		return err
	}
	return nil
}

// answerIdentify resolves one request body to its response. Malformed
// or unresolvable requests produce an error response, never a dropped
// message.
func (b *Bridge) answerIdentify(payload []byte) identifyResponse {
	var req identifyRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return identifyResponse{Error: "malformed request: " + err.Error()}
	}
	if req.Vendor == 0 && req.Product == 0 {
		return identifyResponse{ID: req.ID, Error: "vendor and product are required"}
	}

	builder := device.NewBuilder().FromUSBID(req.Vendor, req.Product)
	if b.db != nil {
		builder = builder.WithDatabase(b.db)
	}
	if req.Bus != "" {
		bus, ok := probe.ParseBus(req.Bus)
		if !ok {
			return identifyResponse{ID: req.ID, Error: "unknown bus " + req.Bus}
		}
		builder = builder.WithBus(bus)
	}

	dev, err := builder.Build()
	if dev == nil {
		return identifyResponse{ID: req.ID, Error: err.Error()}
	}
	text, err := dev.Serialize()
	if err != nil {
		return identifyResponse{ID: req.ID, Error: err.Error()}
	}
	return identifyResponse{ID: req.ID, Payload: text}
}

func (b *Bridge) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
