// Package clipboard holds the initiator-side in-memory item buffer and
// the collaborator interface the controller and session dispatcher use
// to read and write the local system clipboard.
//
// Items are ephemeral: the buffer is a bounded FIFO, oldest evicted on
// overflow, never persisted across process restarts.
package clipboard
