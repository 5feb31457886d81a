package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/corbaltcode/calendar-remediation/core"
	"github.com/corbaltcode/calendar-remediation/logging"
)

// version will be set at build time
var version = "dev"

// handler runs one non-interactive remediation. Configuration comes from the
// function's environment only.
func handler(ctx context.Context, e json.RawMessage) (core.RemediationResult, error) {
	var req core.RemediationRequest
	if len(e) > 0 {
		if err := json.Unmarshal(e, &req); err != nil {
			return core.RemediationResult{}, fmt.Errorf("invalid JSON event: %w", err)
		}
	}

	cfg, err := core.NewConfigLoader(core.WithoutDotenv()).Load()
	if err != nil {
		return core.RemediationResult{}, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	p, err := core.NewProvider(cfg, logger)
	if err != nil {
		return core.RemediationResult{}, err
	}
	return core.Remediate(ctx, p, req, logger)
}

func main() {
	// If we're on Lambda runtime
	if core.IsLambda {
		lambda.Start(handler)
		return
	}

	// CLI mode
	if err := newRootCmd().Execute(); err != nil {
		core.Die("%v", err)
	}
}
