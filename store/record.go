package store

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
)

// PairedDevice is one entry in the paired-device store: a human-chosen
// name, the peer's static public key learned during pairing, and the
// last known (host, port) used to reconnect. Names are unique within
// the store; saving a record under an existing name overwrites it.
type PairedDevice struct {
	Name      string
	PublicKey []byte // 32 bytes
	Host      string
	Port      int
}

// Serialize renders a record as "name=pubkey_hex,host,port", the
// persisted line format a storage collaborator writes one-per-device.
func (d PairedDevice) Serialize() string {
	return d.Name + "=" + hex.EncodeToString(d.PublicKey) + "," + d.Host + "," + strconv.Itoa(d.Port)
}

// ParsePairedDevice parses one persisted line. It accepts the current
// "name=pubkey_hex,host,port" form and, for backward compatibility, the
// legacy "name=pubkey_hex" form with no commas — in which case Host and
// Port are left zero-valued and the caller must re-discover the
// endpoint before reconnecting.
func ParsePairedDevice(line string) (PairedDevice, error) {
	name, rest, ok := strings.Cut(line, "=")
	if !ok || name == "" {
		return PairedDevice{}, protoerr.Wrap("store: parse paired device", "", protoerr.ErrProtocolViolation)
	}

	parts := strings.SplitN(rest, ",", 3)
	pubKeyHex := parts[0]

	pubKey, err := hex.DecodeString(pubKeyHex)
	if err != nil || len(pubKey) != limits.StaticKeySize {
		return PairedDevice{}, protoerr.Wrap("store: parse paired device", "", protoerr.ErrProtocolViolation)
	}

	record := PairedDevice{Name: name, PublicKey: pubKey}

	if len(parts) == 3 {
		record.Host = parts[1]
		if parts[2] != "" {
			port, err := strconv.Atoi(parts[2])
			if err != nil {
				return PairedDevice{}, protoerr.Wrap("store: parse paired device", "", protoerr.ErrProtocolViolation)
			}
			record.Port = port
		}
	}
	// len(parts) == 1: legacy "name=pubkey_hex" form, Host/Port stay zero.

	return record, nil
}
