package controllers

import (
	"net/http"

	"github.com/detoxsabeho/orders-backend/api/responses"
	"github.com/detoxsabeho/orders-backend/api/validators"
	"github.com/detoxsabeho/orders-backend/internal/pixel"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// PixelEvent forwards a conversion event to the Facebook Graph API. When the
// pixel is not configured the endpoint answers as an unavailable dependency
// rather than silently dropping events.
func PixelEvent(svc pixel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "facebook pixel is not configured"))
			return
		}

		var event pixel.Event
		if err := validators.DecodeJSONBody(r, &event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendEvent(r.Context(), event)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
