package models

import "fmt"

// Bounds for retrieval settings. Factor bounds match the range the threshold
// resolver accepts; values outside it are a configuration error, never
// silently clamped.
const (
	ContextSizeMin = 1
	ContextSizeMax = 10
	FactorMin      = 0.55
	FactorMax      = 0.95
)

// RetrievalSettings is the process-wide retrieval configuration. Instances
// are immutable snapshots: every mutation produces a new value, in-flight
// retrieval calls keep the snapshot they started with.
type RetrievalSettings struct {
	ContextSize              int     `json:"contextSize" yaml:"contextSize"`
	SimilarityThreshold      float64 `json:"similarityThreshold" yaml:"similarityThreshold"`
	QuestionThresholdFactor  float64 `json:"questionThresholdFactor" yaml:"questionThresholdFactor"`
	StatementThresholdFactor float64 `json:"statementThresholdFactor" yaml:"statementThresholdFactor"`
	ActiveIndexName          string  `json:"activeIndexName" yaml:"activeIndexName"`
	Namespace                string  `json:"namespace" yaml:"namespace"`
	IsEnabled                bool    `json:"isEnabled" yaml:"isEnabled"`
}

// DefaultRetrievalSettings returns the built-in defaults used when no
// persisted settings and no defaults file exist.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		ContextSize:              5,
		SimilarityThreshold:      0.75,
		QuestionThresholdFactor:  0.60,
		StatementThresholdFactor: 0.90,
		Namespace:                "default",
		IsEnabled:                false,
	}
}

// Validate rejects out-of-range values with a ConfigError.
func (s *RetrievalSettings) Validate() error {
	if s.ContextSize < ContextSizeMin || s.ContextSize > ContextSizeMax {
		return &ConfigError{Field: "contextSize", Reason: fmt.Sprintf("must be between %d and %d, got %d", ContextSizeMin, ContextSizeMax, s.ContextSize)}
	}
	if s.SimilarityThreshold < 0 || s.SimilarityThreshold > 1 {
		return &ConfigError{Field: "similarityThreshold", Reason: fmt.Sprintf("must be in [0,1], got %g", s.SimilarityThreshold)}
	}
	if s.QuestionThresholdFactor < FactorMin || s.QuestionThresholdFactor > FactorMax {
		return &ConfigError{Field: "questionThresholdFactor", Reason: fmt.Sprintf("must be in [%g,%g], got %g", FactorMin, FactorMax, s.QuestionThresholdFactor)}
	}
	if s.StatementThresholdFactor < FactorMin || s.StatementThresholdFactor > FactorMax {
		return &ConfigError{Field: "statementThresholdFactor", Reason: fmt.Sprintf("must be in [%g,%g], got %g", FactorMin, FactorMax, s.StatementThresholdFactor)}
	}
	return nil
}

// SettingsPatch is the payload for PATCH /settings. Nil fields are left
// unchanged.
type SettingsPatch struct {
	ContextSize              *int     `json:"contextSize,omitempty"`
	SimilarityThreshold      *float64 `json:"similarityThreshold,omitempty"`
	QuestionThresholdFactor  *float64 `json:"questionThresholdFactor,omitempty"`
	StatementThresholdFactor *float64 `json:"statementThresholdFactor,omitempty"`
	ActiveIndexName          *string  `json:"activeIndexName,omitempty"`
	Namespace                *string  `json:"namespace,omitempty"`
	IsEnabled                *bool    `json:"isEnabled,omitempty"`
}

// TouchesIndexBinding reports whether the patch changes fields that bind the
// engine to a secondary-store index. Such patches are rejected while a sync
// or hydrate is running.
func (p *SettingsPatch) TouchesIndexBinding() bool {
	return p.ActiveIndexName != nil || p.Namespace != nil
}

// Apply copies non-nil patch fields onto a settings value.
func (p *SettingsPatch) Apply(s *RetrievalSettings) {
	if p.ContextSize != nil {
		s.ContextSize = *p.ContextSize
	}
	if p.SimilarityThreshold != nil {
		s.SimilarityThreshold = *p.SimilarityThreshold
	}
	if p.QuestionThresholdFactor != nil {
		s.QuestionThresholdFactor = *p.QuestionThresholdFactor
	}
	if p.StatementThresholdFactor != nil {
		s.StatementThresholdFactor = *p.StatementThresholdFactor
	}
	if p.ActiveIndexName != nil {
		s.ActiveIndexName = *p.ActiveIndexName
	}
	if p.Namespace != nil {
		s.Namespace = *p.Namespace
	}
	if p.IsEnabled != nil {
		s.IsEnabled = *p.IsEnabled
	}
}
