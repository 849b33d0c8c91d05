package apperrors

import "net/http"

// HTTPStatus maps an application error code to the status the query API
// responds with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeInvalidInput, CodeOutOfRange:
		return http.StatusBadRequest
	case CodeSourceFetch:
		return http.StatusBadGateway
	case CodeStoreIO, CodeCacheOperation, CodeEventPublish:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
