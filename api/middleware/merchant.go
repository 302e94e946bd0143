package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/quizfinderz-backend/api/responses"
	pkgerrors "github.com/angelmondragon/quizfinderz-backend/pkg/errors"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
	"github.com/google/uuid"
)

// MerchantHeader carries the merchant every quiz request is scoped to.
const MerchantHeader = "X-Merchant-Id"

// MerchantContext resolves the merchant from MerchantHeader and rejects requests without one.
func MerchantContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := strings.TrimSpace(r.Header.Get(MerchantHeader))
			if raw == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant header required"))
				return
			}
			merchantID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "merchant header must be a uuid"))
				return
			}
			ctx = WithMerchantID(ctx, merchantID)
			if logg != nil {
				ctx = logg.WithMerchantID(ctx, merchantID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
