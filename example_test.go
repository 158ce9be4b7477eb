package jsonsettings_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Azhovan/jsonsettings"
)

type AppSettings struct {
	Theme    string   `json:"theme" conf:"oneof:light,dark"`
	FontSize int      `json:"fontSize" conf:"min:6,max:72"`
	Recent   []string `json:"recent"`
}

// Construct sets the defaults used when the settings file does not exist yet.
func (s *AppSettings) Construct(args ...any) error {
	s.Theme = "light"
	s.FontSize = 12
	return nil
}

func exampleDir() string {
	dir, err := os.MkdirTemp("", "jsonsettings-example")
	if err != nil {
		log.Fatal(err)
	}
	return dir
}

// Example demonstrates load-or-create followed by a save and a fresh load.
func Example() {
	dir := exampleDir()
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "app.json")

	s, err := jsonsettings.Load[AppSettings](path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("persisted: %v, theme: %s\n", s.Persisted(), s.Value().Theme)

	s.Value().Theme = "dark"
	s.Value().Recent = append(s.Value().Recent, "notes.txt")
	if err := s.Save(); err != nil {
		log.Fatal(err)
	}

	again, err := jsonsettings.Load[AppSettings](path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("persisted: %v, theme: %s, recent: %v\n", again.Persisted(), again.Value().Theme, again.Value().Recent)

	// Output:
	// persisted: false, theme: light
	// persisted: true, theme: dark, recent: [notes.txt]
}

// ExampleConfigure shows an encrypted settings file.
func ExampleConfigure() {
	dir := exampleDir()
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "secure.json")

	s, err := jsonsettings.Configure[AppSettings](path).
		WithBase64().
		WithEncryption("SuperPassword").
		LoadNow()
	if err != nil {
		log.Fatal(err)
	}
	s.Value().FontSize = 14
	if err := s.Save(); err != nil {
		log.Fatal(err)
	}

	_, err = jsonsettings.Configure[AppSettings](path).
		WithBase64().
		WithEncryption("WrongPassword").
		LoadNow()
	fmt.Println("wrong password rejected:", err != nil)

	s, err = jsonsettings.Configure[AppSettings](path).
		WithBase64().
		WithEncryption("SuperPassword").
		LoadNow()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("font size:", s.Value().FontSize)

	// Output:
	// wrong password rejected: true
	// font size: 14
}

// ExampleLoadBag shows untyped settings with autosave.
func ExampleLoadBag() {
	dir := exampleDir()
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "bag.json")

	bag, err := jsonsettings.LoadBag(path)
	if err != nil {
		log.Fatal(err)
	}
	bag.EnableAutosave()

	if err := bag.Set("window", map[string]int{"width": 800}); err != nil {
		log.Fatal(err)
	}
	if err := bag.Set("lastFile", "notes.txt"); err != nil {
		log.Fatal(err)
	}

	reopened, err := jsonsettings.LoadBag(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reopened.Keys())
	fmt.Println(reopened.Get("window"))
	fmt.Println(reopened.Get("unknown").IsMissing())

	// Output:
	// [window lastFile]
	// {"width":800}
	// true
}

// ExampleDump prints the effective settings.
func ExampleDump() {
	type Credentials struct {
		User     string `json:"user"`
		Password string `json:"password" conf:"secret"`
	}

	cfg := &Credentials{User: "admin", Password: "hunter2"}
	if err := jsonsettings.Dump(os.Stdout, cfg); err != nil {
		log.Fatal(err)
	}

	// Output:
	// user: "admin"
	// password: ***redacted***
}
