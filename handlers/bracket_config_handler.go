package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/services"
)

type BracketConfigHandler struct {
	configService services.BracketConfigService
}

func NewBracketConfigHandler(cs services.BracketConfigService) *BracketConfigHandler {
	return &BracketConfigHandler{
		configService: cs,
	}
}

// ReplaceRegionsHandler обрабатывает PUT /pools/{poolID}/regions
func (h *BracketConfigHandler) ReplaceRegionsHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to configure pool")
		return
	}

	var input struct {
		Regions []services.RegionInput `json:"regions"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Regions) == 0 {
		badRequestResponse(w, r, errors.New("at least one region is required"))
		return
	}

	regions, err := h.configService.ReplaceRegions(r.Context(), poolID, currentUserID, input.Regions)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"regions": regions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateSemifinalsHandler обрабатывает PUT /pools/{poolID}/semifinals.
// Конфигурация сохраняется даже с проблемами; в ответе — отчёт валидатора.
func (h *BracketConfigHandler) UpdateSemifinalsHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to configure pool")
		return
	}

	var input services.SemifinalInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.configService.UpdateSemifinals(r.Context(), poolID, currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"validation": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetValidationHandler обрабатывает GET /pools/{poolID}/validation.
// Проблемы конфигурации — данные, а не ошибка: всегда 200 со списком.
func (h *BracketConfigHandler) GetValidationHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.configService.GetValidation(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"validation": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler обрабатывает GET /pools/{poolID}/bracket
func (h *BracketConfigHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	structure, err := h.configService.PreviewStructure(r.Context(), poolID)
	if err != nil {
		// Несобираемая сетка — это 422 со списком проблем, не 500.
		var structErr *brackets.StructureError
		if errors.As(err, &structErr) {
			failedValidationResponse(w, r, jsonResponse{
				"reason":   structErr.Reason,
				"problems": structErr.Problems,
			})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": structure}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadTeamLogoHandler обрабатывает PUT /teams/{teamID}/logo
func (h *BracketConfigHandler) UploadTeamLogoHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to upload team logo")
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	team, err := h.configService.UpdateTeamLogo(r.Context(), teamID, currentUserID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
