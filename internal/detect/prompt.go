package detect

import (
	"fmt"
	"strings"

	"github.com/covenantlabs/covenant/internal/config"
	"github.com/covenantlabs/covenant/internal/model"
)

// ContractType hints the detection prompt toward a known contract family.
type ContractType string

const (
	TypeAuto      ContractType = "auto"
	TypeLogistics ContractType = "logistics"
	TypeSales     ContractType = "sales"
	TypeService   ContractType = "service"
)

// maxContractChars bounds the contract text embedded in the detection
// prompt; longer contracts are truncated with an ellipsis.
const maxContractChars = 6000

var typeExamples = map[ContractType]string{
	TypeLogistics: `
EXEMPLES PROCESSUS LOGISTIQUE:
- Processus réception marchandises
- Processus manutention/stockage
- Processus douanier/administrative
- Processus facturation/paiement`,

	TypeSales: `
EXEMPLES PROCESSUS VENTE:
- Processus préparation produit
- Processus paiement échelonné
- Processus livraison/réception
- Processus garantie/SAV`,

	TypeService: `
EXEMPLES PROCESSUS PRESTATION:
- Processus qualification besoin
- Processus exécution prestation
- Processus validation livrables
- Processus facturation`,
}

// DetectionPrompt renders the process-detection prompt for a contract.
// The analysis bounds are advisory instructions to the model; hard
// enforcement happens when the response records are built.
func DetectionPrompt(contractText string, hint ContractType, instructions string, cfg config.AnalysisConfig) string {
	if len(contractText) > maxContractChars {
		contractText = contractText[:maxContractChars] + "..."
	}

	var b strings.Builder
	b.WriteString("Tu es un EXPERT SENIOR EN ANALYSE CONTRACTUELLE et AUTOMATISATION DE PROCESSUS.\n\n")
	b.WriteString("MISSION CRITIQUE: Analyser ce contrat pour identifier les PROCESSUS MÉTIER DISTINCTS qui peuvent être automatisés séparément.\n\n")
	b.WriteString("CONTRAT À ANALYSER:\n")
	b.WriteString(contractText)
	b.WriteString("\n\nMÉTHODOLOGIE UNIVERSELLE:\n")
	b.WriteString("1. LIRE intégralement le contrat\n")
	b.WriteString("2. IDENTIFIER les processus métier DISTINCTS et INDÉPENDANTS\n")
	b.WriteString("3. CHAQUE processus = une série d'actions liées logiquement\n")
	b.WriteString("4. SÉPARER les processus qui peuvent s'exécuter en parallèle\n")
	b.WriteString("5. IGNORER les clauses juridiques pures (résiliation, juridiction, etc.)\n")

	if examples, ok := typeExamples[hint]; ok {
		b.WriteString(examples)
		b.WriteString("\n")
	}

	b.WriteString("\nRÈGLES UNIVERSELLES:\n")
	fmt.Fprintf(&b, "- Minimum %d processus, maximum %d processus\n", cfg.MinProcesses, cfg.MaxProcesses)
	fmt.Fprintf(&b, "- Chaque processus = %d étapes maximum\n", cfg.MaxSteps)
	b.WriteString("- Processus ACTIONNABLE et MESURABLE\n")
	b.WriteString("- Adapté au contexte spécifique du contrat\n")
	b.WriteString("- États logiques et séquentiels\n")

	if instructions != "" {
		fmt.Fprintf(&b, "\nINSTRUCTIONS SPÉCIFIQUES: %s\n", instructions)
	}

	b.WriteString(`
FORMAT JSON STRICT:
[
  {
    "id": "01",
    "name": "Nom du processus métier",
    "description": "Description détaillée du processus",
    "steps": ["action_1", "action_2", "action_3", "action_4"],
    "responsible_party": "Qui est responsable",
    "triggers": "Quand démarre ce processus"
  }
]

ANALYSER LE CONTRAT ET IDENTIFIER LES PROCESSUS MÉTIER DISTINCTS:`)

	return b.String()
}

// DependencyPrompt renders the dependency-analysis prompt over the
// detected processes.
func DependencyPrompt(processes []model.Process) string {
	var info strings.Builder
	for _, p := range processes {
		fmt.Fprintf(&info, "PROCESSUS %s: %s\n", p.ID, p.Name)
		fmt.Fprintf(&info, "   Description: %s\n", p.Description)
		fmt.Fprintf(&info, "   Étapes: %s\n", strings.Join(p.Steps, ", "))
		fmt.Fprintf(&info, "   Responsable: %s\n", p.Responsible)
		fmt.Fprintf(&info, "   Déclencheur: %s\n\n", p.Triggers)
	}

	var b strings.Builder
	b.WriteString("Tu es un EXPERT EN ORCHESTRATION DE PROCESSUS MÉTIER.\n\n")
	b.WriteString("MISSION: Analyser les dépendances logiques entre ces processus pour créer un DAG optimal.\n\n")
	b.WriteString("PROCESSUS MÉTIER IDENTIFIÉS:\n")
	b.WriteString(info.String())
	b.WriteString(`RÈGLES UNIVERSELLES DÉPENDANCES - AUCUN CYCLE AUTORISÉ:
1. Un processus B dépend de A SI ET SEULEMENT si B ne peut PAS démarrer sans que A soit COMPLÉTÉ
2. Analyser la logique OPÉRATIONNELLE réelle du contrat
3. INTERDICTION ABSOLUE DE CYCLES: Si A dépend de B, alors B ne peut JAMAIS dépendre de A
4. VÉRIFIER qu'aucun processus ne dépend de lui-même
5. MAXIMISER l'exécution PARALLÈLE quand possible
6. En cas de doute sur une dépendance, PRÉFÉRER l'indépendance

FORMAT JSON EXACT:
{
  "01": [],
  "02": ["01"],
  "03": ["01"],
  "04": ["02", "03"]
}

ANALYSER LES DÉPENDANCES LOGIQUES:`)

	return b.String()
}
