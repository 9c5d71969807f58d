/*
Package ports defines the driven ports (interfaces) of the Abacus submission tool.

These interfaces decouple the pipeline and the reference server from concrete
implementations, so production, in-process and test variants are interchangeable.

# Key Interfaces

  - Evaluator: Sends one evaluation request to whatever computes the expression (HTTP, in-process, scripted).
  - Submitter: Runs a whole submission (retries included) and returns a classified result.
  - ResultCache: Stores evaluator responses keyed by expression (memory or Redis).
  - DistributedLocker: Serializes cache fills across replicas.
*/
package ports
