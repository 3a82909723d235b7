package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-formdispatch"
	"github.com/goliatone/go-formdispatch/pkg/binding"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nValidate binding tables and x-dispatch hints in OpenAPI documents.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"bindings.yaml"}
	}

	ctx := context.Background()
	loader := formdispatch.NewLoader()

	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(ctx, loader, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintFile(ctx context.Context, loader binding.Loader, path string) ([]violation, error) {
	doc, err := loader.Load(ctx, binding.SourceFromFile(path))
	if err != nil {
		return nil, err
	}

	var result []violation
	table, err := binding.Decode(ctx, doc)
	if err != nil {
		result = append(result, violation{file: path, location: "document", message: err.Error()})
		return result, nil
	}

	issues, err := binding.LintOpenAPIHints(ctx, doc.Raw())
	if err == nil {
		for _, issue := range issues {
			result = append(result, violation{
				file:     path,
				location: issue.Method + " " + issue.Path,
				message:  fmt.Sprintf("unsupported x-dispatch key %q", issue.Key),
			})
		}
	}

	fmt.Printf("%s: %d bindings, regions %v\n", path, table.Len(), table.Regions())
	return result, nil
}
