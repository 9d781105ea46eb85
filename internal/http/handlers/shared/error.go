package shared

import (
	"errors"

	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/i18n"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog returns a logger carrying the request id.
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := RequestID(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError writes a translated error and logs err when present.
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	RespondErrorWithMsg(c, code, msg, err)
}

// RespondErrorWithMsg writes msg as-is and logs err when present.
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		log := RequestLog(c)
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		} else {
			log.Warnw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// MappedError maps one service error onto a response code and message key.
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// ClassErrorRules map the error classes every domain error wraps. Append them
// after specific rules so the more precise message wins.
var ClassErrorRules = []MappedError{
	{Target: service.ErrRateLimited, Code: response.CodeUpstream, Key: "error.upstream_failure"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrInvalidState, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.conflict"},
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrUpstream, Code: response.CodeUpstream, Key: "error.upstream_failure"},
}

// RespondMappedError writes the first matching rule, then the class rules,
// then the fallback. Upstream failures keep their cause in the log.
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, group := range [][]MappedError{rules, ClassErrorRules} {
		for _, rule := range group {
			if errors.Is(err, rule.Target) {
				var cause error
				if rule.Code >= response.CodeInternal {
					cause = err
				}
				RespondError(c, rule.Code, rule.Key, cause)
				return
			}
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}
