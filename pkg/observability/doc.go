/*
Package observability provides tools for monitoring the ticket desk.

It includes Prometheus metrics and structured audit logging, both exposed as
lifecycle hooks that the dispatcher fires after each turn.
*/
package observability
