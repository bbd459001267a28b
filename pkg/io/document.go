package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/errors"
)

// document is the wrapped on-disk form.
type document struct {
	Blocks block.Tree `json:"blocks" yaml:"blocks"`
}

// ReadDocument decodes a block tree from r. TOML is not a document format.
// Only the shape is checked; blocks without a type or with repeated ids are
// returned as they are and left to [block.Problems].
//
// ReadDocument does not close r.
func ReadDocument(r io.Reader, format Format) (block.Tree, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var raw any
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "documents must be JSON or YAML, got %s", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s document", format)
	}

	return treeFromAny(raw)
}

// ImportDocument reads the document at path, choosing the format from its
// extension.
func ImportDocument(path string) (block.Tree, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	tree, err := ReadDocument(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// treeFromAny accepts {"blocks": [...]} or a bare array.
func treeFromAny(raw any) (block.Tree, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		b, ok := v["blocks"]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidDocument, `document object has no "blocks" key`)
		}
		if b == nil {
			return block.Tree{}, nil
		}
		if items, ok = b.([]any); !ok {
			return nil, errors.New(errors.ErrCodeInvalidDocument, `"blocks" must be a list, got %T`, b)
		}
	case nil:
		return block.Tree{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document must be an object or a list, got %T", raw)
	}

	tree := make(block.Tree, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidBlock, "block %d is not an object", i)
		}
		b, err := block.FromMap(m)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidBlock, err, "block %d", i)
		}
		tree = append(tree, b)
	}
	return tree, nil
}

// WriteJSON writes tree in the wrapped form, indented.
func WriteJSON(tree block.Tree, w io.Writer) error {
	if tree == nil {
		tree = block.Tree{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{Blocks: tree}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML writes tree in the wrapped form.
func WriteYAML(tree block.Tree, w io.Writer) error {
	if tree == nil {
		tree = block.Tree{}
	}
	data, err := yaml.Marshal(document{Blocks: tree})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportDocument writes tree to path in the format its extension names.
func ExportDocument(tree block.Tree, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		err = WriteJSON(tree, &buf)
	case FormatYAML:
		err = WriteYAML(tree, &buf)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "documents must be JSON or YAML, got %s", format)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > MaxInputSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input exceeds %d bytes", MaxInputSize)
	}
	return data, nil
}
