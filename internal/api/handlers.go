package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/probe"
	"github.com/nerrad567/inputid/internal/registry"
)

// WebSocket broadcast channels.
const (
	ChannelIdentified      = "device.identified"
	ChannelRemoved         = "device.removed"
	ChannelPhysicalRemoved = "device.physical_removed"
)

// deviceResponse is the JSON shape of one registered handle.
type deviceResponse struct {
	Identity     string   `json:"identity"`
	Path         string   `json:"path,omitempty"`
	Bus          string   `json:"bus"`
	Vendor       string   `json:"vendor"`
	Product      string   `json:"product"`
	Name         string   `json:"name,omitempty"`
	Type         string   `json:"type,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	GroupKey     string   `json:"group_key,omitempty"`
}

// physicalResponse is the JSON shape of one physical aggregate.
type physicalResponse struct {
	GroupKey     string   `json:"group_key"`
	Type         string   `json:"type,omitempty"`
	Name         string   `json:"name,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Constituents []string `json:"constituents"`
}

// identifyRequest is the body for POST /api/v1/identify.
type identifyRequest struct {
	Vendor  uint16 `json:"vendor"`
	Product uint16 `json:"product"`
	Bus     string `json:"bus,omitempty"` // bus name, default "usb"
}

// deviceJSON converts a live handle into its response shape. Returns
// false when the handle went stale between snapshot and serialization.
func deviceJSON(h *registry.Handle) (deviceResponse, bool) {
	dev, err := h.Device()
	if err != nil {
		return deviceResponse{}, false
	}

	resp := deviceResponse{
		Identity: h.Identity().String(),
		Path:     h.Path(),
		GroupKey: dev.GroupingKey(),
	}
	fillDevice(&resp, dev)
	return resp, true
}

func fillDevice(resp *deviceResponse, dev *device.Device) {
	resp.Bus = dev.Bus().String()
	resp.Vendor = fmt.Sprintf("0x%04x", dev.Vendor())
	resp.Product = fmt.Sprintf("0x%04x", dev.Product())
	resp.Name = dev.Name()
	resp.Type = string(dev.PhysicalType())

	for _, c := range dev.Capabilities().Sorted() {
		resp.Capabilities = append(resp.Capabilities, string(c))
	}
}

// physicalJSON converts a live aggregate into its response shape.
// Returns false when the aggregate went stale.
func physicalJSON(p *registry.PhysicalDevice) (physicalResponse, bool) {
	constituents, err := p.Constituents()
	if err != nil {
		return physicalResponse{}, false
	}

	resp := physicalResponse{
		GroupKey:     p.GroupKey(),
		Constituents: make([]string, 0, len(constituents)),
	}
	for _, id := range constituents {
		resp.Constituents = append(resp.Constituents, id.String())
	}

	// Stale errors here mean removal raced us; report what we have.
	if t, err := p.PhysicalType(); err == nil {
		resp.Type = string(t)
	}
	if name, err := p.Name(); err == nil {
		resp.Name = name
	}
	if caps, err := p.Capabilities(); err == nil {
		for _, c := range caps.Sorted() {
			resp.Capabilities = append(resp.Capabilities, string(c))
		}
	}

	return resp, true
}

// handleEventJSON builds the WebSocket payload for handle lifecycle events.
func handleEventJSON(ev registry.Event) map[string]any {
	payload := map[string]any{
		"identity": ev.Identity.String(),
	}
	if ev.GroupKey != "" {
		payload["group_key"] = ev.GroupKey
	}
	if ev.Device != nil {
		payload["bus"] = ev.Device.Bus().String()
		payload["vendor"] = fmt.Sprintf("0x%04x", ev.Device.Vendor())
		payload["product"] = fmt.Sprintf("0x%04x", ev.Device.Product())
		payload["name"] = ev.Device.Name()
		payload["type"] = string(ev.Device.PhysicalType())
	}
	return payload
}

// handleListDevices returns all registered device handles.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	handles := s.registry.Snapshot()

	devices := make([]deviceResponse, 0, len(handles))
	for _, h := range handles {
		if resp, ok := deviceJSON(h); ok {
			devices = append(devices, resp)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns one handle by its major:minor identity.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookupHandle(w, r)
	if !ok {
		return
	}

	resp, ok := deviceJSON(h)
	if !ok {
		writeNotFound(w, "device removed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetDevicePayload returns the codec payload for one handle as
// plain text, for clients that relay it to tooling expecting the wire
// format.
func (s *Server) handleGetDevicePayload(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookupHandle(w, r)
	if !ok {
		return
	}

	dev, err := h.Device()
	if err != nil {
		writeNotFound(w, "device removed")
		return
	}

	payload, err := dev.Serialize()
	if err != nil {
		writeInternalError(w, "serialization failed")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(payload))
}

// lookupHandle resolves the {identity} URL parameter to a live handle,
// writing the error response itself on failure.
func (s *Server) lookupHandle(w http.ResponseWriter, r *http.Request) (*registry.Handle, bool) {
	raw := chi.URLParam(r, "identity")

	id, err := registry.ParseIdentity(raw)
	if err != nil {
		writeBadRequest(w, "invalid identity: expected major:minor")
		return nil, false
	}

	h, err := s.registry.Handle(id)
	if err != nil {
		writeNotFound(w, "unknown device "+raw)
		return nil, false
	}
	return h, true
}

// handleListPhysical returns all physical device aggregates.
func (s *Server) handleListPhysical(w http.ResponseWriter, _ *http.Request) {
	aggregates := s.registry.PhysicalSnapshot()

	physical := make([]physicalResponse, 0, len(aggregates))
	for _, p := range aggregates {
		if resp, ok := physicalJSON(p); ok {
			physical = append(physical, resp)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"physical": physical,
		"count":    len(physical),
	})
}

// handleGetPhysical returns one aggregate by its group key.
func (s *Server) handleGetPhysical(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	p, err := s.registry.Physical(key)
	if err != nil {
		writeNotFound(w, "unknown physical device "+key)
		return
	}

	resp, ok := physicalJSON(p)
	if !ok {
		writeNotFound(w, "physical device removed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleIdentify identifies a device by USB vendor/product ID without a
// kernel node. Nothing is registered: this is a pure database/heuristic
// lookup, useful for fleet tooling working from inventory lists.
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Vendor == 0 && req.Product == 0 {
		writeBadRequest(w, "vendor and product are required")
		return
	}

	builder := device.NewBuilder().FromUSBID(req.Vendor, req.Product)
	if s.db != nil {
		builder = builder.WithDatabase(s.db)
	}
	if req.Bus != "" {
		bus, ok := probe.ParseBus(req.Bus)
		if !ok {
			writeBadRequest(w, "unknown bus "+req.Bus)
			return
		}
		builder = builder.WithBus(bus)
	}

	dev, err := builder.Build()
	if err != nil && dev == nil {
		writeInternalError(w, "identification failed")
		return
	}

	resp := deviceResponse{}
	fillDevice(&resp, dev)

	payload, serr := dev.Serialize()
	if serr != nil {
		writeInternalError(w, "serialization failed")
		return
	}

	body := map[string]any{
		"device":  resp,
		"payload": payload,
	}
	// Non-fatal diagnostics (handle/supplied ID mismatch) still produce a
	// valid device; surface them so callers can flag the inventory row.
	if errors.Is(err, device.ErrIDMismatch) {
		body["diagnostic"] = err.Error()
	}

	writeJSON(w, http.StatusOK, body)
}
