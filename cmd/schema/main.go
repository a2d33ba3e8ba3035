// Command schema writes the JSON schema of kleinwatch configuration,
// used by editors to validate and complete config files.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/kleinwatch/pkg/config"
)

type options struct {
	Args struct {
		Output string `positional-arg-name:"output" description:"schema file"`
	} `positional-args:"yes"`
	Stdout bool `long:"stdout" description:"print schema instead of writing the file"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	if err := write(opts); err != nil {
		lgr.Fatalf("[ERROR] %v", err)
	}
}

func write(opts options) error {
	data, err := json.MarshalIndent(config.GenerateSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if opts.Stdout {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	path := opts.Args.Output
	if path == "" {
		path = "schema.json"
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write schema to %s: %w", path, err)
	}
	lgr.Printf("[INFO] schema written to %s", path)
	return nil
}
