package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"regexp"  // regexp validates date and time literals
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// paramID parses a numeric path parameter such as :id or :restaurant_id.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`) // calendar dates as YYYY-MM-DD
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)       // wall clock times as HH:MM
)

// validDate reports whether s looks like a YYYY-MM-DD date.  Range
// checks happen later when the engine parses the value.
func validDate(s string) bool { return dateRe.MatchString(s) }

// validTime reports whether s looks like an HH:MM time.
func validTime(s string) bool { return timeRe.MatchString(s) }
