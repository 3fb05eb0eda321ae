package requests

import (
	"net/http"

	"github.com/google/uuid"
)

const requestIDParam = "X-Request-Id"

func GetRequestId(req *http.Request) string {
	requestID := req.Header.Get(requestIDParam)
	if requestID != "" {
		return requestID
	}
	requestID = uuid.New().String()
	req.Header.Set(requestIDParam, requestID)
	return requestID
}
