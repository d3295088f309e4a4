package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/doccritic/internal/agent"
	"github.com/dshills/doccritic/internal/artifact"
	"github.com/dshills/doccritic/internal/document"
	"github.com/dshills/doccritic/internal/redact"
	"github.com/dshills/doccritic/internal/role"
)

// loadDocument reads a document and redacts secrets before any of its text
// can reach the external agent.
func loadDocument(path string, redactEnabled bool) (*document.Document, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	if redactEnabled {
		doc = document.New(doc.FilePath, redact.Redact(doc.Raw))
	}
	return doc, nil
}

// reviewStore returns the artifact store rooted next to the document.
func reviewStore(docPath string) *artifact.FSStore {
	return artifact.NewFS(filepath.Join(filepath.Dir(docPath), artifact.DefaultDirName))
}

// parseRole validates a --role flag value.
func parseRole(name string) (role.Role, error) {
	r := role.Role(name)
	if !r.Valid() {
		return "", exitError(3, "unknown review role %q (want architecture, implementation, api, or data)", name)
	}
	return r, nil
}

// resolveTimeout applies the DOCCRITIC_TIMEOUT env override when the flag is
// left at its default.
func resolveTimeout(flagSeconds int, flagChanged bool) time.Duration {
	if !flagChanged {
		if env := os.Getenv("DOCCRITIC_TIMEOUT"); env != "" {
			if secs, err := strconv.Atoi(env); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return time.Duration(flagSeconds) * time.Second
}

func newReviewer() agent.Reviewer {
	return agent.NewCLI()
}

// loadContextFiles concatenates reference documents passed via --context,
// redacted under the same policy as the document itself.
func loadContextFiles(paths []string, redactEnabled bool) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", exitError(3, "failed to load context file: %v", err)
		}
		content := string(data)
		if redactEnabled {
			content = redact.Redact(content)
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", filepath.Base(p), strings.TrimSpace(content))
	}
	return strings.TrimSpace(b.String()), nil
}
