package controller

import (
	"errors"
	"time"

	"github.com/alienfx-go/alienfx/internal/events"
	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/registry"
	"github.com/alienfx-go/alienfx/internal/theme"
	"github.com/alienfx-go/alienfx/internal/transport"
)

const (
	readyMaxAttempts = 10
	readyPollDelay   = 50 * time.Millisecond
)

// ApplyTheme sends a complete theme to the controller: reset, one save
// block per power state, effect speed, a boot-block replay, and the final
// execute command. The lights change immediately and the theme persists
// across power states.
func (c *Controller) ApplyTheme(th *theme.Theme) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := th.Validate(); err != nil {
		return c.opErr("applyTheme", "", err)
	}

	// Prepare the controller the way the firmware expects: poke it, reset
	// all lights on, then wait until it reports ready (or the model has no
	// read-back and we proceed after the reset settles).
	if err := c.tr.Write(c.codec.GetStatus()); err != nil {
		return c.opErr("applyTheme", "", err)
	}
	if err := c.reset(registry.ResetAllLightsOn); err != nil {
		return err
	}
	if err := c.waitReady(); err != nil {
		return c.opErr("applyTheme", "", err)
	}

	var bootReplay []fxpacket.Packet
	for _, state := range c.model.PowerStates {
		items := th.States[state.Name]
		if state.Name == "boot" {
			// The boot block is replayed at the end without save framing,
			// closed with a command blanking every undeclared zone. Built
			// even when the theme leaves boot empty so stray zones go dark.
			var err error
			bootReplay, err = c.stateCommands(state.Code, items, false)
			if err != nil {
				return c.opErr("applyTheme", "", err)
			}
		}
		if len(items) == 0 {
			continue
		}
		cmds, err := c.stateCommands(state.Code, items, true)
		if err != nil {
			return c.opErr("applyTheme", "", err)
		}
		if err := c.sendAll(cmds); err != nil {
			return err
		}
	}

	speed := th.Speed
	if speed == 0 {
		speed = c.model.DefaultSpeed
	}
	tail := []fxpacket.Packet{c.codec.SetSpeed(speed)}
	tail = append(tail, bootReplay...)
	tail = append(tail, c.codec.TransmitExecute())
	if err := c.sendAll(tail); err != nil {
		return err
	}

	c.rememberThemeZones(th)
	if c.bus != nil {
		c.bus.Publish(events.ThemeAppliedEvent{
			Theme:     th.Name,
			States:    len(th.States),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	c.logger.Info("Theme applied", "theme", th.Name, "speed", speed)
	return nil
}

// stateCommands builds the packet sequence for one power state. With save
// framing each color command is preceded by SaveNext so the firmware stores
// it for that state, and the block is committed with a trailing Save.
// Without framing the commands apply immediately and the sequence ends by
// setting every zone the model does not declare to black.
func (c *Controller) stateCommands(stateCode uint8, items []theme.StateItem, save bool) ([]fxpacket.Packet, error) {
	var cmds []fxpacket.Packet
	block := uint8(1)
	for _, item := range items {
		code, err := c.zoneMask(item.Zones)
		if err != nil {
			return nil, err
		}
		var loop []fxpacket.Packet
		for _, action := range item.Loop {
			pkt, err := c.actionPacket(block, code, action)
			if err != nil {
				return nil, err
			}
			loop = append(loop, pkt)
		}
		if len(loop) == 0 {
			continue
		}
		block++
		for _, pkt := range loop {
			if save {
				cmds = append(cmds, c.codec.SaveNext(stateCode))
			}
			cmds = append(cmds, pkt)
		}
		if save {
			cmds = append(cmds, c.codec.SaveNext(stateCode))
		}
		cmds = append(cmds, c.codec.EndLoopBlock())
	}
	if save {
		if len(cmds) > 0 {
			cmds = append(cmds, c.codec.Save())
		}
		return cmds, nil
	}
	dark, err := c.codec.SetColor(block, c.codec.NoZoneCode(), fxpacket.Black)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, dark, c.codec.EndLoopBlock())
	return cmds, nil
}

// zoneMask ORs the codes of the named zones. Every zone must be declared
// by the model.
func (c *Controller) zoneMask(zones []string) (uint32, error) {
	var mask uint32
	for _, name := range zones {
		code, err := c.codec.ZoneCode(name)
		if err != nil {
			return 0, err
		}
		mask |= code
	}
	return mask, nil
}

func (c *Controller) actionPacket(block uint8, code uint32, action theme.Action) (fxpacket.Packet, error) {
	c1, err := theme.ParseColor(action.Colors[0])
	if err != nil {
		return nil, err
	}
	c1 = c.scale(c1)
	switch action.Type {
	case theme.ActionBlink:
		return c.codec.SetBlinkColor(block, code, c1)
	case theme.ActionMorph:
		c2, err := theme.ParseColor(action.Colors[1])
		if err != nil {
			return nil, err
		}
		return c.codec.SetMorphColor(block, code, c1, c.scale(c2))
	default:
		return c.codec.SetColor(block, code, c1)
	}
}

func (c *Controller) sendAll(cmds []fxpacket.Packet) error {
	for _, pkt := range cmds {
		c.logger.Debug("Sending packet", "op", "applyTheme", "packet", pkt.String())
		if err := c.tr.Write(pkt); err != nil {
			return c.opErr("applyTheme", "", err)
		}
	}
	return nil
}

// waitReady polls the controller status until it reports ready. Models
// without read-back cannot be polled; for those the reset is assumed to
// have settled after the first unsupported read. A controller that never
// reports ready gets a warning and the sequence continues; some firmware
// accepts commands while still answering busy.
func (c *Controller) waitReady() error {
	for attempt := 0; attempt < readyMaxAttempts; attempt++ {
		if err := c.tr.Write(c.codec.GetStatus()); err != nil {
			return err
		}
		raw, err := c.tr.Read()
		if errors.Is(err, transport.ErrUnsupported) {
			return nil
		}
		if err == nil {
			if st, derr := c.codec.DecodeStatus(raw); derr == nil && st.Ready {
				return nil
			}
		}
		time.Sleep(readyPollDelay)
	}
	c.logger.Warn("Controller status could not be verified, proceeding",
		"attempts", readyMaxAttempts)
	return nil
}

// rememberThemeZones updates the in-memory zone snapshots from the theme's
// boot state so the API reflects what was applied.
func (c *Controller) rememberThemeZones(th *theme.Theme) {
	for _, item := range th.States["boot"] {
		if len(item.Loop) == 0 {
			continue
		}
		action := item.Loop[0]
		col, err := theme.ParseColor(action.Colors[0])
		if err != nil {
			continue
		}
		effect := fxpacket.EffectStatic
		switch action.Type {
		case theme.ActionBlink:
			effect = fxpacket.EffectPulse
		case theme.ActionMorph:
			effect = fxpacket.EffectMorph
		}
		for _, name := range item.Zones {
			if _, ok := c.zones[name]; !ok {
				continue
			}
			st := fxpacket.ZoneState{Color: c.scale(col), Effect: effect, Enabled: true}
			if action.Type == theme.ActionMorph && len(action.Colors) > 1 {
				if c2, err := theme.ParseColor(action.Colors[1]); err == nil {
					st.Color2 = c.scale(c2)
				}
			}
			c.zones[name] = st
		}
	}
}
