// Package modcrypt provides the encryption modulator for settings files.
//
// Data is encrypted with ChaCha20-Poly1305 (DARE format) using a key derived
// from the secret with scrypt. The output is self-describing:
//
//	magic "JSC1" | cost (1 byte) | salt (32 bytes) | key verifier (32 bytes) | ciphertext
//
// The verifier lets Decode tell a wrong secret (ErrWrongSecret) apart from
// damaged ciphertext (ErrCorruptData).
//
// Example:
//
//	m := modcrypt.New("SuperPassword", modcrypt.Options{})
//	enc, err := m.Encode([]byte(`{"port":8080}`))
package modcrypt
