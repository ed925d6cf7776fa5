package api

import (
	"context"
	"net/http"

	"github.com/alienfx-go/alienfx/internal/api/models"
	"github.com/danielgtaylor/huma/v2"
)

// registerSystemdRoutes exposes lifecycle control of the daemon's own unit.
// Routes are skipped when no D-Bus connection was available at startup.
func (s *Server) registerSystemdRoutes() {
	if s.options.SystemdManager == nil {
		return
	}

	serviceName := s.options.ServiceName
	if serviceName == "" {
		serviceName = "alienfxd.service"
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-service-status",
		Method:      http.MethodGet,
		Path:        "/api/systemd/service/status",
		Summary:     "Service Status",
		Description: "Get the daemon's systemd unit status",
		Tags:        []string{"systemd"},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.SystemdServiceStatusResponse, error) {
		status, err := s.options.SystemdManager.GetServiceStatus(ctx, serviceName)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get service status", err)
		}
		return &models.SystemdServiceStatusResponse{
			Body: models.SystemdServiceStatus{
				Service: serviceName,
				Status:  status,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-service-unit",
		Method:      http.MethodPost,
		Path:        "/api/systemd/service/restart",
		Summary:     "Restart Service",
		Description: "Restart the daemon's systemd unit",
		Tags:        []string{"systemd"},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.SystemdServiceActionResponse, error) {
		if err := s.options.SystemdManager.RestartService(ctx, serviceName); err != nil {
			return nil, huma.Error500InternalServerError("Failed to restart service", err)
		}
		return &models.SystemdServiceActionResponse{
			Body: models.SystemdServiceAction{
				Service: serviceName,
				Action:  "restart",
				Success: true,
			},
		}, nil
	})
}
