package record

import (
	"strings"

	"github.com/covenantlabs/covenant/internal/model"
)

// tagEntry pairs a classification tag with the keywords that select it.
type tagEntry struct {
	tag      model.Tag
	keywords []string
}

// tagTable is the ordered classification table. Order is the deterministic
// tie-break: the first entry with any matching keyword wins, so the table
// must stay a slice, never a map. Keywords cover both English and French
// because source contracts come in either language.
var tagTable = []tagEntry{
	{model.TagReception, []string{"reception", "réception", "accueil", "receive"}},
	{model.TagPreparation, []string{"preparation", "préparation", "setup", "prepare"}},
	{model.TagExecution, []string{"execution", "exécution", "perform", "execute"}},
	{model.TagValidation, []string{"validation", "verify", "check", "approve", "confirm"}},
	{model.TagPayment, []string{"payment", "paiement", "pay", "billing", "invoice"}},
	{model.TagDelivery, []string{"delivery", "livraison", "deliver", "ship", "send"}},
	{model.TagTransport, []string{"transport", "shipping", "logistics", "move"}},
	{model.TagStorage, []string{"storage", "stockage", "store", "warehouse"}},
	{model.TagCustoms, []string{"customs", "douane", "border", "import", "export"}},
	{model.TagDocumentation, []string{"documentation", "document", "record", "report"}},
	{model.TagQualification, []string{"qualification", "qualify", "assess", "evaluate"}},
	{model.TagMaintenance, []string{"maintenance", "maintain", "repair", "service"}},
	{model.TagWarranty, []string{"warranty", "garantie", "guarantee", "support"}},
}

// InferTag classifies a process from its name and description.
// The lower-cased concatenation is matched against the table in order;
// no match yields model.TagOther.
func InferTag(name, description string) model.Tag {
	text := strings.ToLower(name + " " + description)

	for _, entry := range tagTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.tag
			}
		}
	}
	return model.TagOther
}
