// Package token decodes Kubernetes service-account JWTs.
//
// The dashboard never trusts a token's contents for authorization; it only
// reads the namespace a token is bound to so the UI can open there. For that
// [DefaultNamespace] decodes without verifying. Deployments that mint their
// own dashboard tokens can check signatures with a [Verifier] before the
// cluster round-trip.
package token
