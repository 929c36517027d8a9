package rfprag

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// RequirementInstruction asks the model for the business and technical
// requirement breakdown as JSON so it can be processed downstream.
const RequirementInstruction = `Extract the business and technical requirements from the document and return ONLY a JSON object with this shape, no prose:
{
  "business": [{"category": "...", "item": "...", "detail": "..."}],
  "technical": [{"category": "functional|non-functional|operational|security", "item": "...", "detail": "..."}]
}`

// Requirement is one row of the extracted requirement table.
type Requirement struct {
	Category string `json:"category"`
	Item     string `json:"item"`
	Detail   string `json:"detail"`
}

// RequirementTable is the structured requirement breakdown of an RFP
// document, split into business and technical requirements.
type RequirementTable struct {
	Business  []Requirement `json:"business"`
	Technical []Requirement `json:"technical"`
}

// ParseRequirementTable parses a model response into a RequirementTable.
// Markdown code fences are stripped first, and malformed JSON is repaired
// before unmarshalling, since models frequently return slightly broken JSON.
func ParseRequirementTable(content string) (RequirementTable, error) {
	stripped := removeMarkdownBackticks(content)

	repaired, err := jsonrepair.RepairJSON(stripped)
	if err != nil {
		return RequirementTable{}, fmt.Errorf("failed to repair requirement json: %w", err)
	}

	var table RequirementTable
	if err := json.Unmarshal([]byte(repaired), &table); err != nil {
		return RequirementTable{}, fmt.Errorf("failed to parse requirement table: %w", err)
	}

	return table, nil
}
