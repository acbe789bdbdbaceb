// Package api provides the HTTP REST API server for the PhilateList backend.
//
// It exposes account registration and login, public collector profiles,
// collection and stamp catalogue endpoints, and admin listings. Every request
// passes through the auth gate middleware, which classifies the route as
// exempt or protected, validates the bearer access token, and transparently
// renews an expired token from the refresh cookie without failing the
// in-flight request.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
