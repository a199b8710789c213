package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
)

// Query runs a KNN search via FT.SEARCH. Filter keys with a TAG field
// become a server-side pre-filter; the rest are matched client-side on
// the decoded metadata.
func (s *Store) Query(ctx context.Context, vector []float32, k int, filter store.Filter) ([]store.Match, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) != s.cfg.Dimensions {
		return nil, fmt.Errorf("vector dimension mismatch: got %d, index has %d", len(vector), s.cfg.Dimensions)
	}

	indexed, residual := splitFilter(filter)

	args := []string{
		s.indexName(),
		buildKNNQuery(indexed, k),
		"RETURN", "3", fieldContent, fieldMeta, fieldVectorScore,
		"SORTBY", fieldVectorScore,
		"LIMIT", "0", strconv.Itoa(k),
		"PARAMS", "2", "BLOB", string(store.VectorToBytes(vector)),
		"DIALECT", "2",
	}

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	matches, err := s.parseKNNResult(raw)
	if err != nil {
		return nil, err
	}

	if len(residual) > 0 {
		filtered := matches[:0]
		for _, m := range matches {
			if matchesResidual(m.Doc.Metadata, residual) {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}
	return matches, nil
}

// List returns up to limit documents via FT.SEARCH *. limit <= 0 lists
// everything the index will page out in one call.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 10000
	}

	args := []string{
		s.indexName(), "*",
		"RETURN", "2", fieldContent, fieldMeta,
		"LIMIT", "0", strconv.Itoa(limit),
	}

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	matches, err := s.parseKNNResult(raw)
	if err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, m.Doc)
	}
	return docs, nil
}

// Count returns the document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context) (int, error) {
	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(s.indexName(), "*", "LIMIT", "0", "0").Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// parseKNNResult decodes the RESP2 FT.SEARCH reply:
// 2-stride [total, key1, fields1, key2, fields2, ...].
func (s *Store) parseKNNResult(raw []rueidis.RedisMessage) ([]store.Match, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	matches := make([]store.Match, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		var meta map[string]any
		if blob, ok := fields[fieldMeta]; ok && blob != "" {
			if err := json.Unmarshal([]byte(blob), &meta); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", key, err)
			}
		}

		match := store.Match{
			Doc: domain.Document{
				ID:       strings.TrimPrefix(key, s.docKeyPrefix()),
				Content:  fields[fieldContent],
				Metadata: meta,
			},
		}
		if scoreStr, ok := fields[fieldVectorScore]; ok {
			if dist, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				match.Distance = dist
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// splitFilter separates filter keys with a TAG field from the rest.
func splitFilter(filter store.Filter) (indexed, residual store.Filter) {
	for key, value := range filter {
		if indexedFields[key] {
			if indexed == nil {
				indexed = store.Filter{}
			}
			indexed[key] = value
		} else {
			if residual == nil {
				residual = store.Filter{}
			}
			residual[key] = value
		}
	}
	return indexed, residual
}

func matchesResidual(meta map[string]any, residual store.Filter) bool {
	for key, want := range residual {
		got, ok := meta[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// buildKNNQuery renders "(tag filters)=>[KNN k @vector $BLOB]".
func buildKNNQuery(indexed store.Filter, k int) string {
	knn := fmt.Sprintf("[KNN %d @%s $BLOB]", k, vectorAlias)
	if len(indexed) == 0 {
		return "*=>" + knn
	}

	keys := make([]string, 0, len(indexed))
	for key := range indexed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(indexed[key])))
	}
	return "(" + strings.Join(parts, " ") + ")=>" + knn
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
