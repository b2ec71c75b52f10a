package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/craftline/cartengine/api/backend"
	"github.com/craftline/cartengine/api/middleware"
	"github.com/craftline/cartengine/api/responses"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/types"
)

func OrderCreate(store *backend.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
			return
		}

		var req types.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order body"))
			return
		}

		order, err := store.CreateOrder(userID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderList(store *backend.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
			return
		}
		responses.WriteSuccess(w, store.Orders(userID))
	}
}
