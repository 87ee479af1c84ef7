// Package delivery defines the contract every transport front-end satisfies.
package delivery

import "context"

// Delivery is a long-running transport server (HTTP today). Serve blocks
// until the server stops; shutdown is driven through fx lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
