// Package jsonsettings persists strongly-typed application settings to disk as JSON,
// with optional reversible byte layers (base64, encryption) around the serialized text.
//
// Quick Start:
//
//	type Config struct {
//	    Theme    string `json:"theme" conf:"oneof:light,dark"`
//	    FontSize int    `json:"fontSize" conf:"min:6,max:72"`
//	    Token    string `json:"token" conf:"secret"`
//	}
//
//	s, err := jsonsettings.Configure[Config]("settings.json").
//	    WithBase64().
//	    WithEncryption("SuperPassword").
//	    LoadNow()
//	if err != nil { ... }
//
//	s.Value().Theme = "dark"
//	err = s.Save()
//
// A missing file is not an error: the payload is default-constructed (see
// Constructor, Builder.WithArgs, Builder.WithFactory) and the file is only
// created by Save.
//
// On save the payload is serialized, then passed through each modulator in the
// order it was added; on load the modulators run in reverse.
//
// Bag is the dynamic variant holding arbitrary string-keyed JSON values:
//
//	bag, err := jsonsettings.LoadBag("state.json")
//	bag.EnableAutosave()
//	err = bag.Set("lastOpened", "/tmp/report.txt") // written immediately
//
// Tag directives (`conf`): required, min:N, max:N, oneof:a,b,c, secret, name:key
package jsonsettings
