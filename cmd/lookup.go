package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
	"github.com/finos/architecture-as-code-sub007/internal/lint"
	"github.com/finos/architecture-as-code-sub007/internal/logger"
)

// LookupIO handles I/O for the lookup command.
type LookupIO interface {
	// ReadFile reads the document at path.
	ReadFile(path string) ([]byte, error)
}

// LookupResult is the JSON output of the lookup command.
type LookupResult struct {
	ID           string            `json:"id"`
	Declarations []DeclarationJSON `json:"declarations"`
	References   []string          `json:"references"`
}

// DeclarationJSON is one declaration of an identifier. The first is the
// definition; later ones are duplicates.
type DeclarationJSON struct {
	Kind      string `json:"kind"`
	Pointer   string `json:"pointer"`
	Duplicate bool   `json:"duplicate"`
}

// NewLookupCmd creates the lookup subcommand using os.Getwd for config lookup.
func NewLookupCmd(io LookupIO) *cobra.Command {
	return newLookupCmdWithGetCWD(io, os.Getwd)
}

func newLookupCmdWithGetCWD(io LookupIO, getwd func() (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lookup <document> <unique-id>",
		Short:        "Show where a unique-id is declared and referenced",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id := args[0], args[1]

			s, err := newSession(cmd, getwd, logger.ComponentLookup)
			if err != nil {
				return err
			}

			doc, _, err := loadDocument(io, path)
			if err != nil {
				return err
			}
			idx, err := lint.BuildIndex(doc)
			if err != nil {
				return err
			}

			res := lookup(doc, idx, id)
			s.log.Debugw("lookup", "file", path, "id", id, "declarations", len(res.Declarations))

			if s.outputFormat(cmd) == "json" {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, d := range res.Declarations {
					label := "defined"
					if d.Duplicate {
						label = "duplicate"
					}
					fmt.Fprintf(out, "%s %s %s\n", label, d.Kind, d.Pointer)
				}
				for _, ref := range res.References {
					fmt.Fprintf(out, "referenced %s\n", ref)
				}
			}

			if len(res.Declarations) == 0 {
				return fmt.Errorf("'%s' is not declared in %s", sanitize(id), sanitize(path))
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "output the result as JSON")

	return cmd
}

// lookup collects every declaration of id and every place that refers to it.
func lookup(doc *calm.Document, idx *lint.Index, id string) LookupResult {
	res := LookupResult{ID: id, Declarations: []DeclarationJSON{}, References: []string{}}
	if first, ok := idx.Lookup(id); ok {
		for _, o := range idx.Occurrences() {
			if o.ID != id {
				continue
			}
			res.Declarations = append(res.Declarations, DeclarationJSON{
				Kind:      string(o.Kind),
				Pointer:   o.Path.Pointer(),
				Duplicate: !o.Path.Equal(first.Path),
			})
		}
	}
	for _, refs := range [][]calm.Ref{doc.NodeRefs(), doc.InterfaceRefs(), doc.TransitionRefs()} {
		for _, r := range refs {
			if r.Value == id {
				res.References = append(res.References, r.Path.Pointer())
			}
		}
	}
	return res
}

// fileLookupIO implements LookupIO using OS file I/O.
type fileLookupIO struct{}

// ReadFile reads the file at path.
func (f fileLookupIO) ReadFile(path string) ([]byte, error) {
	return f.ReadFileImpl(path)
}

// ReadFileImpl reads the file using os.ReadFile.
func (f fileLookupIO) ReadFileImpl(path string) ([]byte, error) {
	return os.ReadFile(path)
}
