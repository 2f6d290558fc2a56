package discovery

import "context"

// ServiceName is the mDNS service type Universal Clipboard advertises
// and resolves.
const ServiceName = "_uclip._tcp.local."

// Advertiser publishes this device's listening port under ServiceName
// so an initiator on the same network can find it without the user
// typing an address. A responder's controller calls this once its
// listener is accepting connections.
type Advertiser interface {
	// Advertise starts broadcasting ServiceName on port and returns a
	// stop function the caller invokes when the listener shuts down.
	Advertise(port int) (stop func(), err error)
}

// Resolver finds a responder advertising ServiceName on the local
// network. An initiator falls back to a manually entered (host, port)
// if resolution fails or times out — the core does not treat that as
// an error condition of its own.
type Resolver interface {
	// Resolve blocks until a responder is found or ctx is done.
	Resolve(ctx context.Context) (host string, port int, err error)
}
