package http

import "github.com/labstack/echo/v4"

// ErrorBody is the machine readable part of a failed response.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse is written for every non-2xx answer. TraceID echoes the request id.
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id"`
}

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

// ErrorJSON writes the error envelope. An empty traceID falls back to the request id.
func ErrorJSON(c echo.Context, status int, code, message, traceID string, details interface{}) error {
	if traceID == "" {
		traceID = RequestID(c)
	}
	return c.JSON(status, ErrorResponse{
		Error:   ErrorBody{Code: code, Message: message, Details: details},
		TraceID: traceID,
	})
}

// RequestID returns the id set by echo's RequestID middleware, falling back to the inbound header.
func RequestID(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
