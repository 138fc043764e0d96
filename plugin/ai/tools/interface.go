// Package tools executes the synchronous lookups the classifier may request
// to ground an autonomous reply: product search, shipping-fee estimate,
// promotion lookup, and store info. Executors are external collaborators;
// any failure forces the conversation to a human.
package tools

import (
	"context"
	"fmt"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
)

// Result is the outcome of a single tool invocation.
type Result struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

// Executor executes one named tool.
type Executor interface {
	// Name returns the tool name the classifier uses to request it.
	Name() string

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

// Runner runs an ordered list of tool requests.
type Runner interface {
	// RunAll executes requests in order and stops at the first failure.
	RunAll(ctx context.Context, requests []classifier.ToolRequest) ([]Result, error)
}

// Registry maps tool names to executors.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry creates a registry with the given executors.
func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{executors: make(map[string]Executor, len(executors))}
	for _, e := range executors {
		r.executors[e.Name()] = e
	}
	return r
}

// Register adds an executor, replacing any previous one with the same name.
func (r *Registry) Register(e Executor) {
	r.executors[e.Name()] = e
}

// RunAll executes requests in order. An unknown tool name or a failing
// executor aborts the run and returns the error; partial results are
// discarded since the reply cannot be grounded.
func (r *Registry) RunAll(ctx context.Context, requests []classifier.ToolRequest) ([]Result, error) {
	results := make([]Result, 0, len(requests))
	for _, req := range requests {
		executor, ok := r.executors[req.Name]
		if !ok {
			return nil, fmt.Errorf("unknown tool: %s", req.Name)
		}
		result, err := executor.Execute(ctx, req.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool %s failed: %w", req.Name, err)
		}
		results = append(results, *result)
	}
	return results, nil
}

var _ Runner = (*Registry)(nil)
