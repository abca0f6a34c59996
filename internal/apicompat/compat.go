// Package apicompat detects backward-incompatible changes between two
// OpenAPI (Swagger 2.0) documents: removed paths, operations and response
// codes that existing clients may depend on.
package apicompat

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"chirp/docs"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// Operation is the part of an operation that clients depend on.
type Operation struct {
	Responses map[string]struct{}
}

// Document maps path -> lowercase method -> operation.
type Document struct {
	Paths map[string]map[string]Operation
}

// Has reports whether the document declares method on path.
func (d Document) Has(method, path string) bool {
	_, ok := d.Paths[path][strings.ToLower(method)]
	return ok
}

// Load reads a YAML or JSON document from path.
func Load(path string) (Document, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Parse(raw)
}

// Embedded returns the document served by this build at /api/swagger.
func Embedded() (Document, error) {
	return Parse([]byte(docs.SwaggerInfo.ReadDoc()))
}

// Parse decodes a document. JSON is accepted because it is valid YAML.
func Parse(raw []byte) (Document, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return Document{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return Document{}, errors.New("paths is not an object")
	}

	out := Document{Paths: make(map[string]map[string]Operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]Operation)
		for methodKey, methodEntry := range pathOps {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}
			ops[method] = Operation{Responses: responseCodes(methodMap["responses"])}
		}

		if len(ops) > 0 {
			out.Paths[pathKey] = ops
		}
	}
	return out, nil
}

func responseCodes(raw interface{}) map[string]struct{} {
	codes := make(map[string]struct{})
	responses, ok := toMap(raw)
	if !ok {
		return codes
	}
	for code := range responses {
		if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
			codes[normalized] = struct{}{}
		}
	}
	return codes
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Compare lists everything base offers that revision no longer does, sorted.
func Compare(base, revision Document) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code),
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
