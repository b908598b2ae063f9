package uexpr

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/uexpr/binding"
)

// Request names one expression to compile.
type Request struct {
	Declaration string
	Text        string
}

// Result is the outcome of compiling one Request.
type Result struct {
	Request
	Expression *Expression
	Err        error
}

// Report collects the results of CompileAll in request order.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every failure, or returns nil if all requests compiled.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// CompileAll compiles requests concurrently, at most Config.Workers at a
// time. A failing request does not affect the others; each failure is
// logged once with its declaration and source. Once ctx is done no new
// request starts, and the remaining ones fail with the context's error.
func (c *Compiler) CompileAll(ctx context.Context, requests []Request, scope binding.TypeScope) *Report {
	report := &Report{Results: make([]Result, len(requests))}

	var g errgroup.Group
	g.SetLimit(c.config.Workers)
	for i, req := range requests {
		res := &report.Results[i]
		res.Request = req
		if err := ctx.Err(); err != nil {
			res.Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res.Err = err
				return nil
			}
			res.Expression, res.Err = c.Compile(req.Declaration, req.Text, scope)
			if res.Err != nil {
				c.log().Errorw("expression compilation failed",
					"declaration", req.Declaration,
					"source", req.Text,
					"error", res.Err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	c.log().Debugw("compilation pass finished",
		"requests", len(requests),
		"failed", len(report.Failed()),
	)
	return report
}
