/*
Package observability provides tools for monitoring the evaluation pipeline and the
reference evaluation server.

It includes Prometheus collectors exposed as pipeline hooks and HTTP middleware,
and structured logging hooks that can be chained with them.
*/
package observability
