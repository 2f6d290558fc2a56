package store

import "github.com/universal-clipboard/uclip/crypto"

// Collaborator is the persistent-storage adapter the controller depends
// on to survive process restarts: the device's own identity keypair and
// its paired-device records. A real implementation might be a file, an
// OS keychain, or a mobile platform's secure storage — this interface
// is the only thing the core requires of it.
type Collaborator interface {
	// LoadIdentity returns the persisted identity keypair, or
	// (nil, false, nil) if none has been saved yet.
	LoadIdentity() (kp *crypto.KeyPair, ok bool, err error)

	// SaveIdentity persists the identity keypair, overwriting any
	// previously saved one.
	SaveIdentity(kp *crypto.KeyPair) error

	// LoadPairedDevices returns every persisted paired-device record.
	LoadPairedDevices() ([]PairedDevice, error)

	// SavePairedDevice persists a record, overwriting any existing
	// record with the same Name.
	SavePairedDevice(d PairedDevice) error

	// DeletePairedDevice removes the record for name, if any.
	DeletePairedDevice(name string) error
}
