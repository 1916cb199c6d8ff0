package storybook

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PageID identifies a page within a story document. Authors write ids as
// JSON numbers or strings depending on the document generation; both decode
// into the same key space.
type PageID string

// IsZero reports whether the id is unset.
func (id PageID) IsZero() bool {
	return id == ""
}

func (id PageID) String() string {
	return string(id)
}

// UnmarshalJSON accepts either a number or a string.
func (id *PageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = PageID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = PageID(n.String())
		return nil
	}

	return fmt.Errorf("page id must be a number or a string, got %s", string(data))
}

func (id PageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalYAML accepts scalar ids from YAML story documents.
func (id *PageID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("page id must be a scalar, got %v", value.Kind)
	}
	*id = PageID(value.Value)
	return nil
}
