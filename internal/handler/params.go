package handler

import (
	"net/http"
	"strconv"
)

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
