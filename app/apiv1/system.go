package apiv1

import (
	"context"
	"time"

	"github.com/dmitrymomot/mwm/pkg/api"
)

type HealthOutput struct {
	Status    string `json:"status" jsonschema:"enum=ok"`
	Timestamp string `json:"timestamp"`
}

type EchoInput struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type EchoOutput struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

func registerSystem(a *api.API) {
	api.Get(a, "/health", health,
		api.Summary("Health check"), api.Tags("health"), api.OperationID("health.check"))
	api.Post(a, "/echo", echo,
		api.Summary("Echo a message with the request id"), api.Tags("echo"), api.OperationID("echo"))
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func health(context.Context, struct{}) (HealthOutput, error) {
	return HealthOutput{Status: "ok", Timestamp: now()}, nil
}

func echo(ctx context.Context, in EchoInput) (EchoOutput, error) {
	return EchoOutput{Message: in.Message, RequestID: api.RequestID(ctx), Timestamp: now()}, nil
}
