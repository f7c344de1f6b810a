package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint polled by load balancers.  It only
// asserts the process serves HTTP; database connectivity is verified
// at startup.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
