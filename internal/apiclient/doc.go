// Package apiclient is the shared HTTP plumbing of the dashboard API
// collaborators: URL building relative to a base, bearer headers, and bounded
// body reads.
package apiclient
