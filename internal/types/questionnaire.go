package types

import (
	"database/sql/driver"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Questionnaire holds the operational posture answers keyed by question
// e.g. {"webhooks": true, "sandbox_env": false, "retries": true}
type Questionnaire map[string]bool

// TrueCount returns the number of affirmative answers
func (q Questionnaire) TrueCount() int {
	return lo.CountBy(lo.Values(q), func(v bool) bool { return v })
}

// SortedKeys returns the question keys in lexical order
func (q Questionnaire) SortedKeys() []string {
	keys := lo.Keys(q)
	sort.Strings(keys)
	return keys
}

// Scan implements the sql.Scanner interface for Questionnaire
func (q *Questionnaire) Scan(value interface{}) error {
	if value == nil {
		*q = make(Questionnaire)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(Questionnaire)
	err := json.Unmarshal(bytes, &result)
	*q = result
	return err
}

// Value implements the driver.Valuer interface for Questionnaire
func (q Questionnaire) Value() (driver.Value, error) {
	if q == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(q)
}
