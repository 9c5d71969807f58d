/*
Package abacus submits integer arithmetic expressions to an evaluator, reliably.

An expression such as "3 * -2 + 6" goes through three stages:

  - Validation: a pure, local check of the surface syntax. Rejections carry a fixed
    human-readable message and never reach the network.
  - Submission: a request pipeline sends the expression to an Evaluator, retrying
    transport and server failures with exponential backoff and jitter, and classifies
    whatever happened into a single EvaluationResult.
  - State: a submission controller owns the observable state (result, error message,
    loading flag) and applies only the result of the latest submission it started.

# Evaluators

The Evaluator port is satisfied by an HTTP client for a remote API, by an in-process
reference evaluator, and by scripted fakes for tests. A result cache backed by memory
or Redis can be layered on top of any of them.

# Usage

	client, err := abacus.New(abacus.WithEndpoint("http://localhost:8080"))
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.Calculate(ctx, "3 * 2 + 1")
	if err != nil {
		// Rejected locally, e.g. "Consecutive operators are not allowed".
		log.Fatal(err)
	}
	if result.OK && result.Value != nil {
		fmt.Println(*result.Value) // 7
	}

For interactive front ends, use a controller:

	ctrl := client.NewController(submission.WithObserver(func(ev domain.TransitionEvent) {
		render(ev.To)
	}))
	ctrl.SetExpression("10 / 2")
	_ = ctrl.Calculate(ctx)
*/
package abacus
