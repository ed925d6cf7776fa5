// Package controller orchestrates the lighting zones of one device. A
// Controller composes a device model, a packet codec, and a transport
// variant selected at construction; model-specific behavior comes entirely
// from what is plugged in, not from subclassing.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alienfx-go/alienfx/internal/events"
	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
	"github.com/alienfx-go/alienfx/internal/theme"
	"github.com/alienfx-go/alienfx/internal/transport"
)

// Controller drives the lighting zones of exactly one device over exactly
// one transport handle. Operations are strictly sequential: a mutex
// serializes callers because the device firmware expects ordered frames.
type Controller struct {
	model  *registry.DeviceModel
	tr     transport.Transport
	codec  *fxpacket.Codec
	bus    *events.Bus
	logger *slog.Logger

	mu    sync.Mutex
	zones map[string]fxpacket.ZoneState
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus publishes zone and error events to the given bus.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New opens the transport and binds it to the model for the controller's
// lifetime. The transport is released if construction fails after open.
func New(model *registry.DeviceModel, tr transport.Transport, opts ...Option) (*Controller, error) {
	c := &Controller{
		model:  model,
		tr:     tr,
		codec:  fxpacket.NewCodec(model.Revision, model.ZoneCodes()),
		logger: slog.Default(),
		zones:  make(map[string]fxpacket.ZoneState, len(model.Zones)),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, z := range model.Zones {
		c.zones[z.Name] = fxpacket.ZoneState{Effect: fxpacket.EffectStatic}
	}

	if err := tr.Open(); err != nil {
		tr.Close()
		return nil, fmt.Errorf("controller: open %s: %w", model.Name, err)
	}

	c.logger.Info("Controller bound",
		"model", model.Name,
		"transport", string(tr.Kind()),
		"zones", len(model.Zones))
	return c, nil
}

// Model returns the bound device model.
func (c *Controller) Model() *registry.DeviceModel {
	return c.model
}

// TransportKind returns the variant the controller is bound to.
func (c *Controller) TransportKind() transport.Kind {
	return c.tr.Kind()
}

// ZoneInfo is a snapshot of one zone's last applied state.
type ZoneInfo struct {
	Name    string
	Color   fxpacket.RGB
	Effect  fxpacket.Effect
	Enabled bool
}

// Zones returns a snapshot of all zones in model declaration order.
func (c *Controller) Zones() []ZoneInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ZoneInfo, 0, len(c.model.Zones))
	for _, z := range c.model.Zones {
		st := c.zones[z.Name]
		out = append(out, ZoneInfo{Name: z.Name, Color: st.Color, Effect: st.Effect, Enabled: st.Enabled})
	}
	return out
}

// SetColor sets a zone to a fixed color and lights it.
func (c *Controller) SetColor(zone string, color fxpacket.RGB) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.zoneState(zone)
	if err != nil {
		return c.opErr("setColor", zone, err)
	}
	st.Color = c.scale(color)
	st.Enabled = true
	if st.Effect == fxpacket.EffectOff {
		st.Effect = fxpacket.EffectStatic
	}
	return c.applyZone("setColor", zone, st)
}

// SetEffect changes a zone's effect mode, keeping its color.
func (c *Controller) SetEffect(zone string, effect fxpacket.Effect) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.zoneState(zone)
	if err != nil {
		return c.opErr("setEffect", zone, err)
	}
	st.Effect = effect
	st.Enabled = effect != fxpacket.EffectOff
	return c.applyZone("setEffect", zone, st)
}

// SetPower lights or darkens a zone without touching its stored color.
func (c *Controller) SetPower(zone string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.zoneState(zone)
	if err != nil {
		return c.opErr("setPower", zone, err)
	}
	st.Enabled = enabled
	return c.applyZone("setPower", zone, st)
}

// ApplyAll applies a set of zone states in one pass: one packet per zone,
// in model declaration order regardless of map iteration order. All zones
// are validated before the first write, so an invalid request has no
// partial effect.
func (c *Controller) ApplyAll(states map[string]fxpacket.ZoneState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for zone := range states {
		if !c.model.HasZone(zone) {
			return c.opErr("applyAll", zone, fmt.Errorf("%w: %q", fxpacket.ErrInvalidZone, zone))
		}
	}

	for _, z := range c.model.Zones {
		st, ok := states[z.Name]
		if !ok {
			continue
		}
		st.Color = c.scale(st.Color)
		st.Color2 = c.scale(st.Color2)
		if err := c.applyZone("applyAll", z.Name, st); err != nil {
			return err
		}
	}
	return nil
}

// Status polls the controller. On transport/model combinations without
// read-back this returns transport.ErrUnsupported untouched; callers treat
// that as "status unknown", not as failure.
func (c *Controller) Status() (fxpacket.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status()
}

// Reset sends the named reset command (registry.ResetAllLightsOn or
// registry.ResetAllLightsOff).
func (c *Controller) Reset(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reset(name)
}

// Close releases the transport. The controller must not be used afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr.Close()
}

// zoneState fetches the stored state of a declared zone.
func (c *Controller) zoneState(zone string) (fxpacket.ZoneState, error) {
	st, ok := c.zones[zone]
	if !ok {
		return fxpacket.ZoneState{}, fmt.Errorf("%w: %q", fxpacket.ErrInvalidZone, zone)
	}
	return st, nil
}

// applyZone encodes one zone state and writes it, recording the new state
// and publishing the change on success. Caller holds the mutex.
func (c *Controller) applyZone(op, zone string, st fxpacket.ZoneState) error {
	pkt, err := c.codec.EncodeZoneState(zone, st)
	if err != nil {
		return c.opErr(op, zone, err)
	}
	c.logger.Debug("Sending packet", "op", op, "zone", zone, "packet", pkt.String())
	if err := c.tr.Write(pkt); err != nil {
		return c.opErr(op, zone, err)
	}

	c.zones[zone] = st
	if c.bus != nil {
		c.bus.Publish(events.ZoneStateChangedEvent{
			Zone:      zone,
			Color:     theme.FormatColor(st.Color),
			Effect:    string(st.Effect),
			Enabled:   st.Enabled,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return nil
}

func (c *Controller) status() (fxpacket.Status, error) {
	if err := c.tr.Write(c.codec.GetStatus()); err != nil {
		return fxpacket.Status{}, c.opErr("status", "", err)
	}
	raw, err := c.tr.Read()
	if err != nil {
		// ErrUnsupported is a normal outcome and passes through unwrapped.
		return fxpacket.Status{}, err
	}
	st, err := c.codec.DecodeStatus(raw)
	if err != nil {
		return fxpacket.Status{}, c.opErr("status", "", err)
	}
	return st, nil
}

func (c *Controller) reset(name string) error {
	code, ok := c.model.ResetCodes[name]
	if !ok {
		return c.opErr("reset", "", fmt.Errorf("unknown reset type %q", name))
	}
	if err := c.tr.Write(c.codec.Reset(code)); err != nil {
		return c.opErr("reset", "", err)
	}
	return nil
}

// scale maps 8-bit channels to the model's color depth. Rev1 controllers
// take 4-bit channels, so API-level colors are truncated to their upper
// nibble.
func (c *Controller) scale(col fxpacket.RGB) fxpacket.RGB {
	if c.model.Revision != fxpacket.Rev1 {
		return col
	}
	return fxpacket.RGB{R: col.R >> 4, G: col.G >> 4, B: col.B >> 4}
}

// opErr tags a failure with the operation and zone that triggered it. The
// underlying error is wrapped, never replaced, and never retried. Only
// transport I/O failures are published as events; local input errors are
// the caller's problem alone.
func (c *Controller) opErr(op, zone string, err error) error {
	var ioErr *transport.OpError
	if c.bus != nil && errors.As(err, &ioErr) {
		c.bus.Publish(events.TransportErrorEvent{
			Zone:      zone,
			Op:        op,
			Transport: string(c.tr.Kind()),
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	if zone != "" {
		return fmt.Errorf("controller: %s zone %q: %w", op, zone, err)
	}
	return fmt.Errorf("controller: %s: %w", op, err)
}
