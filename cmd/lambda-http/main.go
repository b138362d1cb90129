package main

// Lambda entry behind an API Gateway HTTP API (payload format 2.0):
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"docextract-api/internal/bootstrap"
	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/config"
	"docextract-api/internal/shared/server/respond"
	"docextract-api/internal/shared/telemetry"
)

var (
	coldStart sync.Once
	startErr  error
	adapter   *ginadapter.GinLambdaV2
)

func setup() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		startErr = err
		return
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		startErr = err
		return
	}
	adapter = ginadapter.NewV2(app.Router)
	telemetry.Info("lambda.ready", map[string]any{"env": cfg.Env})
}

// unavailable renders the unknown-error envelope when the app never came up.
func unavailable() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorEnvelope(apperr.CodeUnknown, "Unexpected server error", nil))
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	coldStart.Do(setup)
	if startErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": startErr})
		return unavailable(), nil
	}
	if adapter == nil {
		return unavailable(), nil
	}
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handle)
}
