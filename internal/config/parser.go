package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/tailscale/hujson"
)

// hujsonPosition extracts the position hujson embeds in its syntax errors.
var hujsonPosition = regexp.MustCompile(`line (\d+), column (\d+)`)

// ReadLayerFile reads and parses a configuration file. Comments and trailing
// commas are accepted. A file that does not parse yields a *ParseError.
func ReadLayerFile(path string) (*Document, error) {
	doc, _, err := readLayerFile(path)
	return doc, err
}

// readLayerFile also returns the source tree so writes can preserve comments.
func readLayerFile(path string) (*Document, *hujson.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return parseDocument(path, data)
}

// parseDocument parses data as a Document, reporting failures against path.
func parseDocument(path string, data []byte) (*Document, *hujson.Value, error) {
	source, err := hujson.Parse(data)
	if err != nil {
		line, column := positionFromMessage(err.Error())
		return nil, nil, &ParseError{Path: path, Line: line, Column: column, Err: err}
	}

	// Standardize blanks out comments without moving any byte, so offsets
	// reported by encoding/json still match the original file.
	standard := source.Clone()
	standard.Standardize()
	plain := standard.Pack()

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(plain))
	if err := dec.Decode(&doc); err != nil {
		line, column := positionFromOffset(plain, decodeOffset(err))
		return nil, nil, &ParseError{Path: path, Line: line, Column: column, Err: err}
	}

	doc.normalize()

	return &doc, &source, nil
}

// decodeOffset returns the byte offset carried by an encoding/json error.
func decodeOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}

	return -1
}

// positionFromOffset converts a byte offset into a 1-based line and column.
func positionFromOffset(data []byte, offset int64) (int, int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	line, column := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}

	return line, column
}

func positionFromMessage(msg string) (int, int) {
	m := hujsonPosition.FindStringSubmatch(msg)
	if m == nil {
		return 0, 0
	}

	line, _ := strconv.Atoi(m[1])
	column, _ := strconv.Atoi(m[2])
	return line, column
}
