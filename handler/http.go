package handler

import (
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"khata-advisor/internal/usecase"
)

const maxRequestBody = 1 << 20

// NewHTTPHandler serves the Lambda handler over plain net/http so the proxy
// can run outside API Gateway.
func NewHTTPHandler(h *Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			writeResponse(w, jsonResponse(http.StatusRequestEntityTooLarge, correlationID(flattenHeaders(r.Header)),
				errorResponse{Error: "request body too large", Code: string(usecase.ErrorInvalidInput)}))
			return
		}

		resp, err := h.Handle(r.Context(), events.APIGatewayProxyRequest{
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Headers:    flattenHeaders(r.Header),
			Body:       string(body),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeResponse(w, resp)
	})
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
