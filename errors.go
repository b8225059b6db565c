package dashauth

import "errors"

var (
	// ErrNoToken is returned by Authenticator.AuthToken when nothing is stored.
	ErrNoToken = errors.New("no auth token")
	// ErrNilController is returned when a method is called on a nil Controller.
	ErrNilController = errors.New("nil controller")
	// ErrMissingAuthenticator is returned by Build without an Authenticator.
	ErrMissingAuthenticator = errors.New("authenticator required")
	// ErrMissingNamespaces is returned by Build without a NamespaceSource.
	ErrMissingNamespaces = errors.New("namespace source required")
	// ErrBuilderUsed is returned when Build is called twice.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrControllerClosed is returned after Close.
	ErrControllerClosed = errors.New("controller closed")
)
