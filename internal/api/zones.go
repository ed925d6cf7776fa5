package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/alienfx-go/alienfx/internal/api/models"
	"github.com/alienfx-go/alienfx/internal/fxpacket"
	"github.com/alienfx-go/alienfx/internal/theme"
	"github.com/alienfx-go/alienfx/internal/transport"
	"github.com/alienfx-go/alienfx/internal/version"
	"github.com/danielgtaylor/huma/v2"
)

// ZoneUpdateRequest is the body for updating a single zone.
type ZoneUpdateRequest struct {
	Zone string `path:"zone" example:"AlienHead" doc:"Zone name"`
	Body models.ZoneRequestData
}

// ApplyAllRequest is the body for applying multiple zone states atomically.
type ApplyAllRequest struct {
	Body models.ApplyAllRequestData
}

// ResetRequest selects which reset command to send.
type ResetRequest struct {
	Body models.ResetRequestData
}

// registerDeviceRoutes registers device identity and version endpoints.
func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(ctx context.Context, input *struct{}) (*models.VersionResponse, error) {
		versionInfo := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   versionInfo.Version,
				GitCommit: versionInfo.GitCommit,
				BuildDate: versionInfo.BuildDate,
				BuildID:   versionInfo.BuildID,
				GoVersion: versionInfo.GoVersion,
				Compiler:  versionInfo.Compiler,
				Platform:  versionInfo.Platform,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/device",
		Summary:     "Get Device",
		Description: "Get the detected device model, transport variant, and its zones",
		Tags:        []string{"device"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.DeviceResponse, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}
		model := s.controller.Model()
		zones := make([]models.ZoneDescriptor, 0, len(model.Zones))
		for _, z := range model.Zones {
			zones = append(zones, models.ZoneDescriptor{Name: z.Name, Code: z.Code})
		}
		return &models.DeviceResponse{
			Body: models.DeviceData{
				Model:     model.Name,
				Transport: string(s.controller.TransportKind()),
				Revision:  int(model.Revision),
				Zones:     zones,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Controller Status",
		Description: "Poll the device ready flag. Transports without read-back report supported=false.",
		Tags:        []string{"device"},
		Errors:      []int{401, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.StatusResponse, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}
		st, err := s.controller.Status()
		if errors.Is(err, transport.ErrUnsupported) {
			return &models.StatusResponse{
				Body: models.StatusData{
					Supported: false,
					Transport: string(s.controller.TransportKind()),
				},
			}, nil
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to read status", err)
		}
		return &models.StatusResponse{
			Body: models.StatusData{
				Ready:     st.Ready,
				Raw:       st.Raw,
				Supported: true,
				Transport: string(s.controller.TransportKind()),
			},
		}, nil
	})
}

// registerZoneRoutes registers zone state endpoints.
func (s *Server) registerZoneRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-zones",
		Method:      http.MethodGet,
		Path:        "/api/zones",
		Summary:     "List Zones",
		Description: "Get the last applied state of every zone in model declaration order",
		Tags:        []string{"zones"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.ZoneListResponse, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}
		infos := s.controller.Zones()
		zones := make([]models.ZoneStateData, 0, len(infos))
		for _, z := range infos {
			zones = append(zones, models.ZoneStateData{
				Name:    z.Name,
				Color:   theme.FormatColor(z.Color),
				Effect:  string(z.Effect),
				Enabled: z.Enabled,
			})
		}
		return &models.ZoneListResponse{
			Body: models.ZoneListData{Zones: zones, Count: len(zones)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-zone",
		Method:      http.MethodPut,
		Path:        "/api/zones/{zone}",
		Summary:     "Set Zone",
		Description: "Apply a color and effect to one zone",
		Tags:        []string{"zones"},
		Errors:      []int{400, 401, 404, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *ZoneUpdateRequest) (*models.ZoneResponse, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}

		st, err := zoneStateFromRequest(input.Body)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid zone state", err)
		}

		if err := s.controller.ApplyAll(map[string]fxpacket.ZoneState{input.Zone: st}); err != nil {
			return nil, mapControllerError(err)
		}

		for _, z := range s.controller.Zones() {
			if z.Name == input.Zone {
				return &models.ZoneResponse{
					Body: models.ZoneStateData{
						Name:    z.Name,
						Color:   theme.FormatColor(z.Color),
						Effect:  string(z.Effect),
						Enabled: z.Enabled,
					},
				}, nil
			}
		}
		return nil, huma.Error404NotFound("Unknown zone: " + input.Zone)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "apply-zones",
		Method:      http.MethodPost,
		Path:        "/api/zones/apply",
		Summary:     "Apply Zone States",
		Description: "Apply a set of zone states in one pass. All zones are validated before the first packet is written, so an invalid request changes nothing.",
		Tags:        []string{"zones"},
		Errors:      []int{400, 401, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *ApplyAllRequest) (*models.ZoneListResponse, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}

		states := make(map[string]fxpacket.ZoneState, len(input.Body.Zones))
		for name, req := range input.Body.Zones {
			st, err := zoneStateFromRequest(req)
			if err != nil {
				return nil, huma.Error400BadRequest("Invalid state for zone "+name, err)
			}
			states[name] = st
		}

		if err := s.controller.ApplyAll(states); err != nil {
			return nil, mapControllerError(err)
		}

		infos := s.controller.Zones()
		zones := make([]models.ZoneStateData, 0, len(infos))
		for _, z := range infos {
			zones = append(zones, models.ZoneStateData{
				Name:    z.Name,
				Color:   theme.FormatColor(z.Color),
				Effect:  string(z.Effect),
				Enabled: z.Enabled,
			})
		}
		return &models.ZoneListResponse{
			Body: models.ZoneListData{Zones: zones, Count: len(zones)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-zones",
		Method:      http.MethodPost,
		Path:        "/api/zones/reset",
		Summary:     "Reset Zones",
		Description: "Send a device reset command (all lights on or off)",
		Tags:        []string{"zones"},
		Errors:      []int{400, 401, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *ResetRequest) (*struct{}, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}
		if err := s.controller.Reset(input.Body.Mode); err != nil {
			return nil, mapControllerError(err)
		}
		return &struct{}{}, nil
	})
}

// zoneStateFromRequest converts an API zone request into a codec state.
func zoneStateFromRequest(req models.ZoneRequestData) (fxpacket.ZoneState, error) {
	var st fxpacket.ZoneState

	color, err := theme.ParseColor(req.Color)
	if err != nil {
		return st, err
	}
	st.Color = color

	effect := fxpacket.EffectStatic
	if req.Effect != "" {
		effect, err = fxpacket.ParseEffect(req.Effect)
		if err != nil {
			return st, err
		}
	}
	st.Effect = effect

	if req.Color2 != "" {
		color2, err := theme.ParseColor(req.Color2)
		if err != nil {
			return st, err
		}
		st.Color2 = color2
	}

	st.Enabled = effect != fxpacket.EffectOff
	if req.Enabled != nil {
		st.Enabled = *req.Enabled
	}
	return st, nil
}

// mapControllerError converts controller errors to Huma HTTP errors.
// Invalid zones and colors are client errors; transport failures are not.
func mapControllerError(err error) error {
	switch {
	case errors.Is(err, fxpacket.ErrInvalidZone):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, fxpacket.ErrInvalidColor):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, transport.ErrPermissionDenied):
		return huma.Error500InternalServerError("Transport permission denied", err)
	case errors.Is(err, transport.ErrModuleNotLoaded):
		return huma.Error503ServiceUnavailable("Kernel module not loaded", err)
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
