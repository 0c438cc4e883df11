package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/calebnorth/stash/internal/config"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// normalizeTags trims, drops blanks, and de-duplicates while preserving
// order, then enforces the configured limits.
func normalizeTags(tags []string, limits config.Limits) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(t) > limits.MaxTagLen {
			return nil, fmt.Errorf("tag exceeds %d characters", limits.MaxTagLen)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > limits.MaxTags {
		return nil, fmt.Errorf("too many tags (max %d)", limits.MaxTags)
	}
	return out, nil
}
