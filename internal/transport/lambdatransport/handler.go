package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/transport/simdto"
)

type Handler struct {
	svc app.SimulationService
}

func NewHandler(svc app.SimulationService) *Handler {
	return &Handler{svc: svc}
}

// Handle routes API Gateway v2 requests for POST /v1/<operation>.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method, path := route(req)
	if method != http.MethodPost {
		return jsonResp(http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"}), nil
	}

	op, ok := simdto.Lookup(strings.TrimPrefix(path, "/v1/"))
	if !ok || !strings.HasPrefix(path, "/v1/") {
		return jsonResp(http.StatusNotFound, map[string]any{"error": "not found", "details": path}), nil
	}

	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()}), nil
	}

	status, out := op(ctx, h.svc, body)
	return jsonResp(status, out), nil
}

// route prefers the request context and falls back to the route key
// ("POST /v1/bailout") when the context is empty.
func route(req events.APIGatewayV2HTTPRequest) (string, string) {
	method := req.RequestContext.HTTP.Method
	path := req.RequestContext.HTTP.Path
	if path == "" {
		path = req.RawPath
	}
	if (method == "" || path == "") && req.RouteKey != "" {
		if m, p, ok := strings.Cut(req.RouteKey, " "); ok {
			if method == "" {
				method = m
			}
			if path == "" {
				path = p
			}
		}
	}
	return strings.ToUpper(method), strings.TrimSuffix(path, "/")
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
