package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/neboloop/callbridge/internal/crashlog"
	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/logging"
)

// Backend is the complaint store the functions operate on.
type Backend interface {
	RaiseComplaint(ctx context.Context, in db.NewComplaint) (*db.RaiseResult, error)
	LookupComplaint(ctx context.Context, q db.LookupQuery) (*db.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, u db.StatusUpdate) (*db.UpdateResult, error)
}

// Result is the outcome of one function call, already summarized for the agent.
type Result struct {
	Content string
	IsError bool
}

// Failed is the result for a call that could not be run at all,
// e.g. because its arguments were not valid JSON.
func Failed(err error) Result {
	return errorResult("Function call failed with: " + err.Error())
}

func errorResult(msg string) Result {
	return Result{Content: "Error: " + msg, IsError: true}
}

// validationErrors are relayed to the agent as-is so it can ask the caller for the missing fields.
var validationErrors = []error{
	db.ErrMissingFields,
	db.ErrMissingLookupKey,
	db.ErrMissingStatusFields,
	db.ErrComplaintNotFound,
}

// Dispatcher runs agent function calls against a Backend.
type Dispatcher struct {
	backend Backend
}

// NewDispatcher creates a dispatcher over backend.
func NewDispatcher(backend Backend) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// Execute runs the named function. It never returns an error: every failure,
// including a panic in the backend, is folded into the Result.
func (d *Dispatcher) Execute(ctx context.Context, name string, arguments json.RawMessage) (res Result) {
	tool, ok := ParseName(name)
	if !ok {
		return errorResult("Unknown function: " + name)
	}

	log := logging.With("tool", name)
	defer func() {
		if r := recover(); r != nil {
			crashlog.LogPanic("tools", r, map[string]string{"tool": name})
			res = errorResult(fmt.Sprintf("Function execution failed: %v", r))
		}
	}()

	res, err := d.run(ctx, tool, arguments)
	if err != nil {
		var argErr *argumentError
		switch {
		case errors.As(err, &argErr):
			res = Failed(argErr.err)
		case isValidationError(err):
			res = errorResult(err.Error())
		default:
			log.Error("tool failed", logging.Err(err))
			res = errorResult("Function execution failed: " + err.Error())
		}
	}
	log.Debug("tool result", "content", res.Content, "error", res.IsError)
	return res
}

func (d *Dispatcher) run(ctx context.Context, tool Name, arguments json.RawMessage) (Result, error) {
	switch tool {
	case RaiseComplaint:
		var args RaiseArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return Result{}, &argumentError{err}
		}
		out, err := d.backend.RaiseComplaint(ctx, args.complaint())
		if err != nil {
			return Result{}, err
		}
		return Result{Content: summarizeRaise(out)}, nil

	case LookupComplaint:
		var args LookupArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return Result{}, &argumentError{err}
		}
		out, err := d.backend.LookupComplaint(ctx, args.query())
		if err != nil {
			return Result{}, err
		}
		return Result{Content: summarizeLookup(out)}, nil

	case UpdateComplaintStatus:
		var args UpdateArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return Result{}, &argumentError{err}
		}
		out, err := d.backend.UpdateComplaintStatus(ctx, args.update())
		if err != nil {
			return Result{}, err
		}
		return Result{Content: summarizeMessage(out.Message)}, nil
	}
	panic(fmt.Sprintf("tools: unhandled function %q", tool))
}

type argumentError struct{ err error }

func (e *argumentError) Error() string { return "bad arguments: " + e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

func isValidationError(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
