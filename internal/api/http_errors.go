package api

import (
	"errors"
	"net/http"

	"github.com/diligent-ai/diligent/internal/core"
)

func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, true
	case core.ErrCatNotFound:
		return http.StatusNotFound, true
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, true
	case core.ErrCatBackend, core.ErrCatNetwork, core.ErrCatParse, core.ErrCatDebate:
		return http.StatusBadGateway, true
	default:
		return http.StatusInternalServerError, true
	}
}

func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	if status, ok := httpStatusForDomainError(err); ok {
		respondError(w, status, err.Error())
		return
	}
	s.logger.Error("unhandled error in request", "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}
