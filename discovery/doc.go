// Package discovery defines the mDNS collaborator interfaces the
// responder and initiator may use to find each other on the local
// network without a typed hostname or IP address.
//
// Discovery is explicitly out of core scope (spec.md §7): the core
// never depends on it succeeding, since manual endpoint entry — the
// caller already knows host and port — is equivalent.
package discovery
