package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaConfig configures an engine hosted in an AWS Lambda function.
type LambdaConfig struct {
	// FunctionName is the name or ARN of the model function.
	FunctionName string
	// Region overrides the region from the default AWS config chain.
	Region string
	// Model is the model name forwarded to the function.
	Model string
}

// invoker is the subset of *lambda.Client the engine needs.
type invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// NewLambda returns an M2M100 engine that invokes a Lambda function with
// {"op": "encode|generate|decode", "params": {...}} payloads.
func NewLambda(ctx context.Context, cfg LambdaConfig) (*M2M100, error) {
	if cfg.FunctionName == "" {
		return nil, fmt.Errorf("lambda function name is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	t := &lambdaTransport{
		client:       lambda.NewFromConfig(awsCfg),
		functionName: cfg.FunctionName,
	}
	return newM2M100(t, cfg.Model), nil
}

type lambdaTransport struct {
	client       invoker
	functionName string
}

type lambdaRequest struct {
	Op     string `json:"op"`
	Params any    `json:"params"`
}

func (t *lambdaTransport) call(ctx context.Context, op string, req, resp any) error {
	payload, err := json.Marshal(lambdaRequest{Op: op, Params: req})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	result, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(t.functionName),
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", t.functionName, err)
	}

	if result.FunctionError != nil {
		return fmt.Errorf("lambda error: %s: %s", aws.ToString(result.FunctionError), truncate(string(result.Payload), 500))
	}

	if err := json.Unmarshal(result.Payload, resp); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	return nil
}
