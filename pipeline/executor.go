/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunOrdered runs task for every input with at most limit tasks in flight.
// Results keep input order. The first error cancels the context passed to
// outstanding tasks and is returned without partial results.
func RunOrdered[In, Out any](ctx context.Context, limit int, inputs []In, task func(context.Context, int, In) (Out, error)) ([]Out, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]Out, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, err := task(gctx, i, in)
			if err != nil {
				return err
			}

			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
