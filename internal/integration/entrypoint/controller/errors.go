package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/infra/session"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/middleware"
)

// ownerSession resolves the authenticated owner's session. It writes the
// 401 response itself when nobody is authenticated.
func ownerSession(ctx *gin.Context, registry *session.Registry) (*session.Session, session.Owner, bool) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return nil, session.Owner{}, false
	}

	email, _ := middleware.GetUserEmailFromContext(ctx)
	owner := session.Owner{ID: ownerID, Email: email}
	return registry.Get(owner), owner, true
}

// respondError maps domain errors to HTTP responses.
func respondError(ctx *gin.Context, err error, fallback string) {
	var expErr *domainerror.ExpenseError
	if errors.As(err, &expErr) {
		ctx.JSON(expenseErrorStatus(expErr), dto.ErrorResponse{
			Error:   expErr.Message,
			Code:    string(expErr.Code),
			Details: details(expErr.Err),
		})
		return
	}

	var emailErr *domainerror.EmailError
	if errors.As(err, &emailErr) {
		status := http.StatusBadGateway
		if emailErr.Code == domainerror.ErrCodeEmailNotConfigured {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: emailErr.Message,
			Code:  string(emailErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: fallback,
	})
}

func expenseErrorStatus(err *domainerror.ExpenseError) int {
	switch err.Code {
	case domainerror.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case domainerror.ErrCodeActionInProgress:
		return http.StatusConflict
	case domainerror.ErrCodeSuggestionDisabled:
		return http.StatusServiceUnavailable
	}

	switch err.Kind {
	case domainerror.KindValidationFailed:
		return http.StatusBadRequest
	case domainerror.KindNotFound:
		return http.StatusNotFound
	case domainerror.KindRemoteOperationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// details exposes validation causes only; store errors stay in the logs.
func details(err error) string {
	if err == nil || !isDomainSentinel(err) {
		return ""
	}
	return err.Error()
}

func isDomainSentinel(err error) bool {
	for _, sentinel := range []error{
		domainerror.ErrInvalidAmount,
		domainerror.ErrInvalidCategory,
		domainerror.ErrInvalidProfileValues,
		domainerror.ErrInvalidSavingsAmount,
		domainerror.ErrProfileNotLoaded,
		domainerror.ErrInvalidTimeFrame,
		domainerror.ErrActionInProgress,
		domainerror.ErrMissingNote,
		domainerror.ErrUnauthenticated,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// bindError builds the 400 response for a request that failed binding.
func bindError(ctx *gin.Context, err error, code domainerror.ExpenseErrorCode) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Invalid request body",
		Code:    string(code),
		Details: err.Error(),
	})
}
