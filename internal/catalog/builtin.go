package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed data/*.yaml
var builtinFS embed.FS

// Builtin returns the embedded catalog documents, sorted by id.
func Builtin() ([]Document, error) {
	paths, err := fs.Glob(builtinFS, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		data, err := builtinFS.ReadFile(p)
		if err != nil {
			return nil, err
		}
		doc, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// BuiltinByID returns the embedded documents keyed by specialty id.
func BuiltinByID() (map[string]Document, error) {
	docs, err := Builtin()
	if err != nil {
		return nil, err
	}
	return ByID(docs), nil
}

// ByID indexes documents by id. Later documents replace earlier ones.
func ByID(docs []Document) map[string]Document {
	out := make(map[string]Document, len(docs))
	for _, d := range docs {
		out[d.ID] = d
	}
	return out
}
