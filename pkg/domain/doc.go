/*
Package domain contains the core domain models of the Abacus submission tool.

It defines the values that flow through a single submission: the raw expression,
the outcome of local validation, the request sent to the remote evaluator, the
classified result of the pipeline, and the observable submission state. This
package is kept pure and free of I/O so every adapter and front end shares it.

# Key Entities

  - ValidationOutcome: Valid (with the expression to send) or Invalid (with one Reason).
  - EvaluationRequest / EvaluationResponse: the wire contract of the evaluator.
  - EvaluationResult: Success(value, note) or Failure(kind, message), produced once per pipeline run.
  - SubmissionState: the immutable snapshot owned by the submission controller.
*/
package domain
