package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/service"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type brandsResponse struct {
	Brands []string `json:"brands"`
}

type tyreHandler struct {
	tyreSvc service.TyreService
}

func newTyreHandler(tyreSvc service.TyreService) *tyreHandler {
	return &tyreHandler{
		tyreSvc: tyreSvc,
	}
}

func (h *tyreHandler) Root(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, messageResponse{Message: "Tyre Inventory API"})
}

func (h *tyreHandler) ListTyres(w http.ResponseWriter, r *http.Request) error {
	tyres, err := h.tyreSvc.ListAllTyres(r.Context())
	if err != nil {
		return fmt.Errorf("tyre service list all tyres: %w", err)
	}

	return writeJSON(w, http.StatusOK, nonNil(tyres))
}

func (h *tyreHandler) SearchTyres(w http.ResponseWriter, r *http.Request) error {
	var params service.SearchTyresParams

	if err := runtime.BindQueryParameter("form", true, false, "brand", r.URL.Query(), &params.Brand); err != nil {
		return apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid brand parameter: %v", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", r.URL.Query(), &params.Size); err != nil {
		return apperr.ValidationErr.WithMsg(fmt.Sprintf("invalid size parameter: %v", err))
	}

	tyres, err := h.tyreSvc.SearchTyres(r.Context(), params)
	if err != nil {
		return fmt.Errorf("tyre service search tyres: %w", err)
	}

	return writeJSON(w, http.StatusOK, nonNil(tyres))
}

func (h *tyreHandler) CreateTyre(w http.ResponseWriter, r *http.Request) error {
	var params service.CreateTyreParams
	if err := decodeBody(w, r, &params); err != nil {
		return err
	}

	tyre, err := h.tyreSvc.CreateTyre(r.Context(), params)
	if err != nil {
		return fmt.Errorf("tyre service create tyre: %w", err)
	}

	return writeJSON(w, http.StatusOK, tyre)
}

func (h *tyreHandler) UpdateTyre(w http.ResponseWriter, r *http.Request) error {
	id, err := bindTyreID(r)
	if err != nil {
		return err
	}

	var params service.UpdateTyreParams
	if err := decodeBody(w, r, &params); err != nil {
		return err
	}

	tyre, err := h.tyreSvc.UpdateTyre(r.Context(), id, params)
	if err != nil {
		return fmt.Errorf("tyre service update tyre: %w", err)
	}

	return writeJSON(w, http.StatusOK, tyre)
}

func (h *tyreHandler) DeleteTyre(w http.ResponseWriter, r *http.Request) error {
	id, err := bindTyreID(r)
	if err != nil {
		return err
	}

	if err := h.tyreSvc.DeleteTyre(r.Context(), id); err != nil {
		return fmt.Errorf("tyre service delete tyre: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "Tyre deleted successfully"})
}

func (h *tyreHandler) ListBrands(w http.ResponseWriter, r *http.Request) error {
	brands, err := h.tyreSvc.ListBrands(r.Context())
	if err != nil {
		return fmt.Errorf("tyre service list brands: %w", err)
	}

	return writeJSON(w, http.StatusOK, brandsResponse{Brands: nonNil(brands)})
}

// bindTyreID reads the path id as an opaque string. Its format belongs to
// the record store: PUT reports a malformed id as INVALID_TYRE_ID, DELETE
// reports it as TYRE_NOT_FOUND.
func bindTyreID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return "", apperr.InvalidTyreIDErr.WrapParent(err)
	}
	return id, nil
}

// decodeBody decodes a single JSON object from the request body. A malformed
// or wrongly typed body is reported as apperr.MalformedBodyErr.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.MalformedBodyErr.WithMsg("request body is empty")
		}
		return apperr.MalformedBodyErr.WrapParent(err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

