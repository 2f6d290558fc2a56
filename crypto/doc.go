// Package crypto implements the cryptographic primitives shared by the
// handshake, transport, and pairing layers of Universal Clipboard: identity
// keypair generation/derivation and secure erasure of key material.
//
// Example:
//
//	keys, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Public key:", hex.EncodeToString(keys.Public[:]))
package crypto
