package html2pdf

import (
	"fmt"
	"os"
)

// LoadStyles reads every stylesheet in order. It fails on the first path
// that cannot be read and returns no stylesheets in that case.
func LoadStyles(paths []string) ([]StyleSheet, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	styles := make([]StyleSheet, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 -- stylesheet paths are user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: reading stylesheet %s: %v", ErrFilesystem, p, err)
		}
		styles = append(styles, StyleSheet{Path: p, Content: string(data)})
	}
	return styles, nil
}
