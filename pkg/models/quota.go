package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TwinQuota is either an explicit number of twin rooms or "auto"
type TwinQuota struct {
	Value int
	Auto  bool
}

// AutoTwinQuota lets the engine share out the remaining twin rooms
func AutoTwinQuota() TwinQuota {
	return TwinQuota{Auto: true}
}

// FixedTwinQuota pins a housekeeper to n twin rooms
func FixedTwinQuota(n int) TwinQuota {
	if n < 0 {
		return AutoTwinQuota()
	}
	return TwinQuota{Value: n}
}

func (q TwinQuota) String() string {
	if q.Auto {
		return "auto"
	}
	return strconv.Itoa(q.Value)
}

// MarshalJSON writes "auto" or the number
func (q TwinQuota) MarshalJSON() ([]byte, error) {
	if q.Auto {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.Itoa(q.Value)), nil
}

// UnmarshalJSON accepts a number, "auto", a numeric string or null.
// Negative numbers mean auto, like the old roster sheet's -1.
func (q *TwinQuota) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = AutoTwinQuota()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseTwinQuota(s)
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("twin_quota: %w", err)
	}
	*q = FixedTwinQuota(n)
	return nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON
func (q *TwinQuota) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*q = AutoTwinQuota()
		return nil
	}
	parsed, err := ParseTwinQuota(node.Value)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseTwinQuota reads a CSV/YAML cell; empty means auto
func ParseTwinQuota(s string) (TwinQuota, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return AutoTwinQuota(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return TwinQuota{}, fmt.Errorf("twin_quota %q: expected a number or \"auto\"", s)
	}
	return FixedTwinQuota(n), nil
}
