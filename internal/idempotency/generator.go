package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/complysense/complysense/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Scope represents the scope of idempotency
type Scope string

const (
	ScopeAnalysis Scope = "analysis"
)

// Generator generates idempotency keys
type Generator struct{}

// NewGenerator creates a new idempotency key generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey generates an idempotency key from a scope and parameters.
// Parameters are JSON encoded with sorted map keys before hashing, so map
// iteration order does not matter and no two parameter sets share an encoding.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%#v", params))
	}

	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write(encoded)
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(h.Sum(nil)[:8]))
}

// AnalysisKey identifies one analysis request: the same upload analysed with
// the same answers always yields the same key
func (g *Generator) AnalysisKey(uploadID string, questionnaire types.Questionnaire) string {
	if questionnaire == nil {
		questionnaire = types.Questionnaire{}
	}
	return g.GenerateKey(ScopeAnalysis, map[string]interface{}{
		"upload_id":     uploadID,
		"questionnaire": map[string]bool(questionnaire),
	})
}

// ValidateKey validates if an idempotency key matches expected parameters
func (g *Generator) ValidateKey(scope Scope, params map[string]interface{}, key string) bool {
	return g.GenerateKey(scope, params) == key
}
