package model

// Tag classifies a business process by its dominant activity.
// Tags are inferred from process name and description by the record
// builder; TagOther is the fallback when no keyword matches.
type Tag string

const (
	TagReception     Tag = "reception"
	TagPreparation   Tag = "preparation"
	TagExecution     Tag = "execution"
	TagValidation    Tag = "validation"
	TagPayment       Tag = "payment"
	TagDelivery      Tag = "delivery"
	TagTransport     Tag = "transport"
	TagStorage       Tag = "storage"
	TagCustoms       Tag = "customs"
	TagDocumentation Tag = "documentation"
	TagQualification Tag = "qualification"
	TagMaintenance   Tag = "maintenance"
	TagWarranty      Tag = "warranty"
	TagOther         Tag = "other"
)

// Process is one business process extracted from contract text.
//
// A Process is created only by the record builder from a single validated
// raw record and is never mutated afterwards. Steps is the ordered list of
// step labels; it always holds between 1 and the configured maximum.
type Process struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps"`
	Responsible string   `json:"responsible_party,omitempty"`
	Triggers    string   `json:"triggers,omitempty"`
	Tag         Tag      `json:"tag"`
}

// Complete reports whether every optional descriptive field was filled in
// by the reasoning service. Used by the confidence heuristic.
func (p Process) Complete() bool {
	return p.Name != "" && p.Description != "" && len(p.Steps) > 0 && p.Responsible != ""
}
