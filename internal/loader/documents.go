// Package loader reads declarative configuration documents.
//
// A path names either one file or a directory searched recursively for
// .yml and .yaml files. Every YAML document in a file becomes one Batch:
// a top-level sequence yields one Document per element, a top-level
// mapping yields a single Document. Documents are produced lazily, one
// file at a time, so a consumer that stops early never reads the rest.
package loader

import (
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/armory/internal/errors"
)

// Document is one structured mapping read from a configuration file.
type Document struct {
	Path string
	node *yaml.Node
}

// Line returns the 1-based line the document starts on.
func (d Document) Line() int {
	if d.node == nil {
		return 0
	}
	return d.node.Line
}

// Decode unmarshals the document into v. Type mismatches are reported as
// errors.ErrMalformed.
func (d Document) Decode(v any) error {
	if err := d.node.Decode(v); err != nil {
		return errors.WrapMalformed(err, d.where())
	}
	return nil
}

func (d Document) where() string {
	return d.Path + ":" + strconv.Itoa(d.Line())
}

// Batch is the set of documents read from one YAML document of one file.
type Batch []Document

// Documents returns the batches found under path in file order. A path that
// does not exist, or a directory with no YAML files, yields nothing.
//
// Iteration stops at the first error, which is yielded with a nil Batch.
func Documents(path string) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		files, err := Files(path)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, file := range files {
			for batch, err := range fileBatches(file) {
				if !yield(batch, err) || err != nil {
					return
				}
			}
		}
	}
}

// Files lists the YAML files under path in lexical order. A regular file is
// returned as-is whatever its extension.
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isYAML(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", path)
	}
	return files, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// fileBatches reads one file document by document.
func fileBatches(path string) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, errors.Wrapf(err, "open %s", path))
			return
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		for {
			var doc yaml.Node
			err := dec.Decode(&doc)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, errors.WrapMalformed(err, "parse "+path))
				return
			}

			batch, err := toBatch(path, &doc)
			if err != nil {
				yield(nil, err)
				return
			}
			if batch == nil {
				continue
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}

// toBatch splits a parsed YAML document into its mappings. An empty
// document yields a nil batch.
func toBatch(path string, doc *yaml.Node) (Batch, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.MappingNode:
		return Batch{{Path: path, node: root}}, nil
	case yaml.SequenceNode:
		batch := make(Batch, 0, len(root.Content))
		for _, item := range root.Content {
			if item.Kind != yaml.MappingNode {
				return nil, errors.Malformedf("%s:%d: expected a mapping, found %s", path, item.Line, kindName(item.Kind))
			}
			batch = append(batch, Document{Path: path, node: item})
		}
		return batch, nil
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, errors.Malformedf("%s:%d: expected a mapping or a sequence of mappings, found %s", path, root.Line, kindName(root.Kind))
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}
