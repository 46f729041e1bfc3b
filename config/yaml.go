package config

import (
	"encoding/json"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

func scalarNode(v any) (*yaml.Node, error) {
	var (
		valueStr string
		tag      string
	)
	switch v := v.(type) {
	case nil:
		valueStr, tag = "null", "!!null"
	case bool:
		valueStr, tag = strconv.FormatBool(v), "!!bool"
	case string:
		valueStr, tag = v, "!!str"
	case json.Number:
		tag = "!!float"
		if _, err := v.Int64(); err == nil {
			tag = "!!int"
		}
		valueStr = v.String()
	case float64:
		valueStr, tag = strconv.FormatFloat(v, 'g', -1, 64), "!!float"
	case int:
		valueStr, tag = strconv.Itoa(v), "!!int"
	case int64:
		valueStr, tag = strconv.FormatInt(v, 10), "!!int"
	default:
		return nil, xerrors.Errorf(
			"unsupported scalar type: %T", v,
		)
	}
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   tag,
		Value: valueStr,
	}, nil
}

func valueNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case map[string]any:
		return MarshalYAML(Record(v))
	case Record:
		return MarshalYAML(v)
	case []any:
		var (
			content []*yaml.Node
			merr    *multierror.Error
		)
		for i, vi := range v {
			n, err := valueNode(vi)
			if err != nil {
				merr = multierror.Append(merr, xerrors.Errorf("element %d: %w", i, err))
				continue
			}
			content = append(content, n)
		}
		return &yaml.Node{
			Kind:    yaml.SequenceNode,
			Content: content,
		}, merr.ErrorOrNil()
	default:
		return scalarNode(v)
	}
}

// MarshalYAML converts a record to its yaml representation with keys in
// sorted order. Nested objects and arrays are converted recursively.
func MarshalYAML(record Record) (*yaml.Node, error) {
	var (
		document = &yaml.Node{
			Kind: yaml.MappingNode,
		}
		merr *multierror.Error
	)

	keys := maps.Keys(record)
	slices.Sort(keys)
	for _, key := range keys {
		node, err := valueNode(record[key])
		if err != nil {
			merr = multierror.Append(merr, xerrors.Errorf("marshal %s: %w", key, err))
			continue
		}
		// Write field name.
		document.Content = append(document.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: key,
		})
		// Write node contents.
		document.Content = append(document.Content, node)
	}
	return document, merr.ErrorOrNil()
}
