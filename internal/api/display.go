package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/magne4000/displayd/internal/api/models"
	"github.com/magne4000/displayd/internal/vdisplay"
)

// registerDisplayRoutes sets up the virtual display lifecycle endpoints.
func (s *Server) registerDisplayRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-displays",
		Method:      http.MethodGet,
		Path:        "/api/displays",
		Summary:     "List Displays",
		Description: "List selectable virtual display names. The virtual display is always offered since it is created on demand.",
		Tags:        []string{"displays"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*models.DisplayListResponse, error) {
		names := s.displays.ListDisplayNames()
		return &models.DisplayListResponse{
			Body: models.DisplayListData{
				Displays: names,
				Count:    len(names),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-display-support",
		Method:      http.MethodGet,
		Path:        "/api/display/support",
		Summary:     "Display Support",
		Description: "Check whether the evdi kernel module is loaded and virtual displays can be created.",
		Tags:        []string{"displays"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*models.DisplaySupportResponse, error) {
		supported := s.displays.CheckSupport()
		data := models.DisplaySupportData{Supported: supported}
		if !supported {
			data.Message = "evdi kernel module is not loaded; install evdi-dkms and run: modprobe evdi"
		}
		return &models.DisplaySupportResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-display-status",
		Method:      http.MethodGet,
		Path:        "/api/display/status",
		Summary:     "Display Status",
		Description: "Get the lifecycle state and active mode of the virtual display.",
		Tags:        []string{"displays"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*models.DisplayStatusResponse, error) {
		mode, degraded := s.displays.ActiveMode()
		return &models.DisplayStatusResponse{
			Body: models.DisplayStatusData{
				State:       string(s.displays.State()),
				Active:      s.displays.IsActive(),
				Degraded:    degraded,
				Width:       mode.Width,
				Height:      mode.Height,
				RefreshRate: mode.RefreshRate,
				HDR:         mode.HDR,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-display",
		Method:        http.MethodPost,
		Path:          "/api/display",
		Summary:       "Create Display",
		Description:   "Create the virtual display and wait for the desktop to detect it. Idempotent while a session is active.",
		Tags:          []string{"displays"},
		Security:      withAuth(),
		DefaultStatus: http.StatusCreated,
		Errors:        []int{401, 422, 500, 503, 504},
	}, func(ctx context.Context, input *models.DisplayCreateRequest) (*models.DisplayCreatedResponse, error) {
		degraded, err := s.displays.PrepareStream(ctx, vdisplay.DisplayRequest{
			Width:       input.Body.Width,
			Height:      input.Body.Height,
			RefreshRate: input.Body.RefreshRate,
			HDR:         input.Body.HDR,
		})
		if err != nil {
			return nil, displayErrorToHTTP(err)
		}

		data := models.DisplayCreatedData{
			Status:   string(s.displays.State()),
			Degraded: degraded,
		}
		if degraded {
			data.Message = "display connected but the desktop never detected it; capture may fail"
		}
		return &models.DisplayCreatedResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "destroy-display",
		Method:      http.MethodDelete,
		Path:        "/api/display",
		Summary:     "Destroy Display",
		Description: "Tear down the virtual display. Safe to call when no display is active.",
		Tags:        []string{"displays"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*models.DisplayDestroyedResponse, error) {
		s.displays.Destroy()
		return &models.DisplayDestroyedResponse{
			Body: models.DisplayDestroyedData{
				Status: string(s.displays.State()),
			},
		}, nil
	})
}

// displayErrorToHTTP maps lifecycle error codes to HTTP status errors.
func displayErrorToHTTP(err error) error {
	msg := err.Error()
	switch vdisplay.ErrorCode(err) {
	case vdisplay.ErrCodeInvalidRequest:
		return huma.Error422UnprocessableEntity(msg)
	case vdisplay.ErrCodeSupportNotLoaded, vdisplay.ErrCodeNoDeviceFound:
		return huma.Error503ServiceUnavailable(msg)
	case vdisplay.ErrCodeDetectionTimeout:
		return huma.Error504GatewayTimeout(msg)
	default:
		return huma.Error500InternalServerError(msg)
	}
}
