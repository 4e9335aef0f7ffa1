package fiber

import (
	"errors"
	"net/http"

	"github.com/fwojciec/doclens"
	"github.com/gofiber/fiber/v2"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	doclens.ECONFLICT: http.StatusConflict,
	doclens.EINVALID:  http.StatusBadRequest,
	doclens.ENOTFOUND: http.StatusNotFound,
}

// ErrorStatusCode returns the HTTP status for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Error writes err as a JSON failure. Internal errors are logged and
// reported without their details.
func (s *Server) Error(c *fiber.Ctx, err error) error {
	code, message := doclens.ErrorCode(err), doclens.ErrorMessage(err)
	if code == doclens.EINTERNAL {
		s.logger().Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(ErrorStatusCode(code)).JSON(errorResponse{Error: message})
}

// invalid writes a 400 failure with message.
func invalid(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(errorResponse{Error: message})
}

// handleFiberError renders errors returned by handlers and middleware.
func (s *Server) handleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	}
	return s.Error(c, err)
}
