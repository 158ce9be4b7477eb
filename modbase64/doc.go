// Package modbase64 provides the base64 modulator for settings files.
//
// Example:
//
//	m := modbase64.New(modbase64.Options{})
//	text, _ := m.Encode([]byte(`{"port":8080}`))
package modbase64
