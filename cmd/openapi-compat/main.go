// Command openapi-compat fails when a revision of the API document drops a
// path, operation or response code present in the base document.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"chirp/internal/apicompat"
)

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml or swagger.json path")
	revisionPath := flag.String("revision", "", "revision document path (defaults to the document built into this binary)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := apicompat.Load(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}

	var revision apicompat.Document
	if strings.TrimSpace(*revisionPath) == "" {
		revision, err = apicompat.Embedded()
	} else {
		revision, err = apicompat.Load(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	issues := apicompat.Compare(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}
