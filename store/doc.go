// Package store defines the paired-device record wire format and the
// narrow storage-collaborator interface the controller depends on to
// persist an identity keypair and paired-device records.
//
// Persistent storage itself is explicitly out of core scope (spec.md
// §7): this package owns only the record shape and its text encoding,
// so that any collaborator implementation (a file, a keychain, a
// mobile platform's secure storage) agrees on the same format.
package store
