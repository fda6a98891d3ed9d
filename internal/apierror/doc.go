// Package apierror provides error inspection for failures returned by the
// Humio HTTP and GraphQL APIs. It centralizes the logic for telling
// authentication, not-found, rate-limit, query and network failures apart,
// so callers can map them to sentinel errors and exit codes without
// scattering string checks through the codebase.
package apierror
