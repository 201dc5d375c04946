package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// readInput reads a whole file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readJSONInput decodes a JSON document from path or stdin.
func readJSONInput(path string, v any) error {
	b, err := readInput(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
