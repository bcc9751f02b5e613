package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

// runLambda serves API Gateway HTTP API (payload v2) events through the
// router. It blocks until the runtime stops the process.
func runLambda(ctx context.Context, srv shutdowner, logger *slog.Logger) error {
	logger.Info("starting in Lambda mode")
	lambda.StartWithOptions(newLambdaHandler(srv.Handler()),
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Error("server resource shutdown error", "error", err)
			}
		}),
	)
	return nil
}

type lambdaHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// newLambdaHandler adapts h with the API Gateway v2 proxy. The gateway's own
// request id becomes X-Request-Id when the caller did not send one.
func newLambdaHandler(h http.Handler) lambdaHandler {
	adapter := httpadapter.NewV2(h)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if req.RequestContext.RequestID != "" && !hasHeader(req.Headers, "X-Request-Id") {
			headers := make(map[string]string, len(req.Headers)+1)
			for k, v := range req.Headers {
				headers[k] = v
			}
			headers["x-request-id"] = req.RequestContext.RequestID
			req.Headers = headers
		}
		return adapter.ProxyWithContext(ctx, req)
	}
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if http.CanonicalHeaderKey(k) == name {
			return true
		}
	}
	return false
}
