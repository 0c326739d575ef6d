// Package main publishes the descriptor-pack JSON Schema to a file and
// optionally validates a descriptor-pack YAML document against it, so pack
// authors can check a document before dropping it into a drivers directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reviewforge/reviewforge/internal/analyzer/descriptorpack"
)

func main() {
	outputDir := flag.String("o", "docs/schemas", "output directory for the descriptor-pack schema")
	validate := flag.String("validate", "", "path to a descriptor-pack YAML document to validate against the schema")
	flag.Parse()

	if *validate != "" {
		if err := validateDocument(*validate); err != nil {
			fmt.Fprintf(os.Stderr, "invalid descriptor pack: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s is a valid descriptor pack\n", *validate)

		return
	}

	if err := writeSchema(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote descriptor-pack schema to %s\n", filepath.Join(*outputDir, "descriptor-pack.json"))
}

func validateDocument(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	_, err = descriptorpack.Parse(raw)

	return err
}

func writeSchema(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var pretty map[string]any
	if err := json.Unmarshal(descriptorpack.Schema(), &pretty); err != nil {
		return fmt.Errorf("decode embedded schema: %w", err)
	}

	data, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}

	return os.WriteFile(filepath.Join(outputDir, "descriptor-pack.json"), data, 0o644)
}
