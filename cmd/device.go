package cmd

import (
	"fmt"

	"github.com/alienfx-go/alienfx/internal/controller"
	"github.com/alienfx-go/alienfx/internal/logging"
	"github.com/alienfx-go/alienfx/internal/registry"
	"github.com/alienfx-go/alienfx/internal/transport"
)

// initLogging sets up minimal logging for one-shot commands.
func initLogging(logJSON bool) {
	format := "text"
	if logJSON {
		format = "json"
	}
	logging.Initialize(logging.Config{
		Level:  "warn",
		Format: format,
	})
}

// openController probes for a supported device and opens a controller on it.
func openController() (*controller.Controller, error) {
	model, err := registry.Probe(registry.ProbeOptions{
		ListUSB: transport.EnumerateUSB,
	})
	if err != nil {
		return nil, err
	}

	tr, err := transport.New(model)
	if err != nil {
		return nil, err
	}

	c, err := controller.New(model, tr)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", model.Name, err)
	}
	return c, nil
}
