// Package temporal runs ingest pipelines as Temporal workflows.
package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	doming "github.com/rahelarnold98/xreco-nmr/internal/domain/ingest"
)

// Config holds engine connection and workflow settings.
type Config struct {
	Address     string
	Namespace   string
	TaskQueue   string
	Workflow    string // registered workflow type name
	Schema      string // schema the pipelines index into
	Bucket      string // bucket the assets were uploaded to
	DialTimeout time.Duration
}

// WorkflowInput is the argument of every ingest workflow.
type WorkflowInput struct {
	Schema   string   `json:"schema"`
	Pipeline string   `json:"pipeline"`
	Bucket   string   `json:"bucket"`
	AssetIDs []string `json:"assetIds"`
}

// workflowClient is the subset of client.Client the engine uses.
type workflowClient interface {
	ExecuteWorkflow(ctx context.Context, opts client.StartWorkflowOptions, workflow any, args ...any) (client.WorkflowRun, error)
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
	CancelWorkflow(ctx context.Context, workflowID, runID string) error
	CheckHealth(ctx context.Context, req *client.CheckHealthRequest) (*client.CheckHealthResponse, error)
}

// Engine implements usecase/ingest.Engine. The workflow id is the job id.
type Engine struct {
	c   workflowClient
	cfg Config
}

// New wraps a connected client.
func New(c workflowClient, cfg Config) *Engine {
	return &Engine{c: c, cfg: cfg}
}

// Dial connects to the Temporal frontend.
func Dial(ctx context.Context, cfg Config, log *zap.Logger) (client.Client, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := client.DialContext(ctx, client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    newLogAdapter(log),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial (address=%s namespace=%s): %w", cfg.Address, cfg.Namespace, err)
	}
	return c, nil
}

// Start launches the workflow of pipeline p over the given assets.
func (e *Engine) Start(ctx context.Context, jobID string, p doming.Pipeline, assetIDs []string) error {
	opts := client.StartWorkflowOptions{
		ID:                    jobID,
		TaskQueue:             e.cfg.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	in := WorkflowInput{Schema: e.cfg.Schema, Pipeline: string(p), Bucket: e.cfg.Bucket, AssetIDs: assetIDs}
	if _, err := e.c.ExecuteWorkflow(ctx, opts, e.cfg.Workflow, in); err != nil {
		return classify("start workflow "+jobID, err)
	}
	return nil
}

// Status maps the workflow execution state onto the four job states.
func (e *Engine) Status(ctx context.Context, jobID string) (doming.Status, error) {
	resp, err := e.c.DescribeWorkflowExecution(ctx, jobID, "")
	if err != nil {
		var nf *serviceerror.NotFound
		if errors.As(err, &nf) {
			return doming.StatusUnknown, nil
		}
		return "", classify("describe workflow "+jobID, err)
	}
	return statusOf(resp.GetWorkflowExecutionInfo().GetStatus()), nil
}

// Cancel requests cancellation. Unknown or already closed workflows report false.
func (e *Engine) Cancel(ctx context.Context, jobID string) (bool, error) {
	err := e.c.CancelWorkflow(ctx, jobID, "")
	if err == nil {
		return true, nil
	}
	var nf *serviceerror.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, classify("cancel workflow "+jobID, err)
}

// Check reports whether the frontend is reachable.
func (e *Engine) Check(ctx context.Context) error {
	if _, err := e.c.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return classify("check health", err)
	}
	return nil
}

func statusOf(s enumspb.WorkflowExecutionStatus) doming.Status {
	switch s {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING,
		enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return doming.StatusRunning
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return doming.StatusCompleted
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT,
		enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED,
		enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return doming.StatusFailed
	}
	return doming.StatusUnknown
}

func classify(op string, err error) error {
	var (
		unavailable *serviceerror.Unavailable
		deadline    *serviceerror.DeadlineExceeded
	)
	switch {
	case errors.As(err, &unavailable),
		errors.As(err, &deadline),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.Unavailable("ingest engine is unavailable", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
