package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/alienfx-go/alienfx/internal/api/models"
	"github.com/alienfx-go/alienfx/internal/theme"
	"github.com/danielgtaylor/huma/v2"
)

// ThemeNameRequest addresses one stored theme.
type ThemeNameRequest struct {
	Name string `path:"name" pattern:"^[a-zA-Z0-9_-]+$" maxLength:"64" example:"default" doc:"Theme name"`
}

// ThemeSaveRequest stores a theme under the path name.
type ThemeSaveRequest struct {
	Name string `path:"name" pattern:"^[a-zA-Z0-9_-]+$" maxLength:"64" example:"default" doc:"Theme name"`
	Body models.ThemeData
}

// registerThemeRoutes registers theme storage and apply endpoints.
func (s *Server) registerThemeRoutes() {
	if s.themes == nil {
		s.logger.Debug("Theme store not available, skipping theme routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "list-themes",
		Method:      http.MethodGet,
		Path:        "/api/themes",
		Summary:     "List Themes",
		Description: "List stored themes and the most recently applied one",
		Tags:        []string{"themes"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.ThemeListResponse, error) {
		names, err := s.themes.List()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list themes", err)
		}
		themes := make([]models.ThemeSummary, 0, len(names))
		for _, n := range names {
			themes = append(themes, models.ThemeSummary{Name: n})
		}
		last, err := s.themes.LastApplied()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to read last applied theme", err)
		}
		return &models.ThemeListResponse{
			Body: models.ThemeListData{Themes: themes, LastApplied: last},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-theme",
		Method:      http.MethodGet,
		Path:        "/api/themes/{name}",
		Summary:     "Get Theme",
		Description: "Get one stored theme",
		Tags:        []string{"themes"},
		Errors:      []int{401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *ThemeNameRequest) (*models.ThemeResponse, error) {
		th, err := s.themes.Load(input.Name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, huma.Error404NotFound("Unknown theme: " + input.Name)
			}
			return nil, huma.Error500InternalServerError("Failed to load theme", err)
		}
		return &models.ThemeResponse{Body: themeToModel(th)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "save-theme",
		Method:      http.MethodPut,
		Path:        "/api/themes/{name}",
		Summary:     "Save Theme",
		Description: "Create or replace a stored theme",
		Tags:        []string{"themes"},
		Errors:      []int{400, 401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *ThemeSaveRequest) (*models.ThemeResponse, error) {
		th := themeFromModel(input.Name, input.Body)
		if err := th.Validate(); err != nil {
			return nil, huma.Error400BadRequest("Invalid theme", err)
		}
		if err := s.themes.Save(th); err != nil {
			return nil, huma.Error500InternalServerError("Failed to save theme", err)
		}
		return &models.ThemeResponse{Body: themeToModel(th)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "apply-theme",
		Method:      http.MethodPost,
		Path:        "/api/themes/{name}/apply",
		Summary:     "Apply Theme",
		Description: "Send a stored theme to the device, saving it for every power state",
		Tags:        []string{"themes"},
		Errors:      []int{400, 401, 404, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *ThemeNameRequest) (*models.ThemeAppliedResponse, error) {
		if s.controller == nil {
			return nil, huma.Error503ServiceUnavailable("No AlienFX device detected")
		}
		th, err := s.themes.Load(input.Name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, huma.Error404NotFound("Unknown theme: " + input.Name)
			}
			return nil, huma.Error500InternalServerError("Failed to load theme", err)
		}
		if err := s.controller.ApplyTheme(th); err != nil {
			return nil, mapControllerError(err)
		}
		if err := s.themes.SetLastApplied(th.Name); err != nil {
			s.logger.Warn("Failed to record last applied theme", "theme", th.Name, "error", err)
		}
		return &models.ThemeAppliedResponse{
			Body: models.ThemeAppliedData{Theme: th.Name, States: len(th.States)},
		}, nil
	})
}

func themeToModel(th *theme.Theme) models.ThemeData {
	states := make(map[string][]models.ThemeStateItemData, len(th.States))
	for state, items := range th.States {
		out := make([]models.ThemeStateItemData, 0, len(items))
		for _, item := range items {
			loop := make([]models.ThemeActionData, 0, len(item.Loop))
			for _, a := range item.Loop {
				loop = append(loop, models.ThemeActionData{Type: a.Type, Colors: a.Colors})
			}
			out = append(out, models.ThemeStateItemData{Zones: item.Zones, Loop: loop})
		}
		states[state] = out
	}
	return models.ThemeData{Name: th.Name, Speed: th.Speed, States: states}
}

func themeFromModel(name string, data models.ThemeData) *theme.Theme {
	states := make(map[string][]theme.StateItem, len(data.States))
	for state, items := range data.States {
		out := make([]theme.StateItem, 0, len(items))
		for _, item := range items {
			loop := make([]theme.Action, 0, len(item.Loop))
			for _, a := range item.Loop {
				loop = append(loop, theme.Action{Type: a.Type, Colors: a.Colors})
			}
			out = append(out, theme.StateItem{Zones: item.Zones, Loop: loop})
		}
		states[state] = out
	}
	return &theme.Theme{Name: name, Speed: data.Speed, States: states}
}
