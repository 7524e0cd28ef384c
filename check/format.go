package check

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteText prints the result in the line-per-issue format CI logs want.
func WriteText(w io.Writer, res Result) error {
	for _, issue := range res.Issues {
		if _, err := fmt.Fprintf(w, "%s: [%s] %s: %s\n", issue.Severity, issue.Rule, issue.Path, issue.Message); err != nil {
			return err
		}
		if issue.Fix != "" {
			if _, err := fmt.Fprintf(w, "    fix: %s\n", issue.Fix); err != nil {
				return err
			}
		}
	}
	errors, warnings := res.Counts()
	_, err := fmt.Fprintf(w, "%d files checked, %d errors, %d warnings\n", res.FilesTotal, errors, warnings)
	return err
}

// WriteJSON prints the result as a single JSON document.
func WriteJSON(w io.Writer, res Result) error {
	if res.Issues == nil {
		res.Issues = []Issue{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
