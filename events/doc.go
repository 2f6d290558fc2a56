// Package events defines the typed events the controller and session
// dispatcher emit toward a UI layer: connection lifecycle, clipboard
// delivery, and image-transfer progress.
//
// The core never assumes a UI exists. It calls a caller-supplied Sink;
// a nil Sink is valid and simply discards events.
package events
