package ai

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"receiptserver/receipt"
)

// batchSystemPrompt pins the task and the output contract. Kept compact to
// save tokens; the user prompt carries the JSON shape.
const batchSystemPrompt = `Rozpoznajesz produkty z polskich paragonów. Odpowiadasz wyłącznie w formacie JSON.`

// maxPromptExamples caps how many confirmed examples travel with a batch
// prompt.
const maxPromptExamples = 5

// BuildBatchPrompt builds one enumerated prompt covering every name in the
// batch. The model answers with a JSON array parallel to the enumeration.
// Prior user-confirmed examples are included as guidance when available.
func BuildBatchPrompt(names []string, examples []receipt.ConfirmedExample) string {
	var b strings.Builder

	b.WriteString("Zamień skrócone nazwy z paragonu na kanoniczne nazwy produktów.\n")

	if len(examples) > 0 {
		if len(examples) > maxPromptExamples {
			examples = examples[:maxPromptExamples]
		}
		b.WriteString("\nZnane przykłady:\n")
		for i, example := range examples {
			fmt.Fprintf(&b, "%d. %q -> %q\n", i+1, example.RawName, example.CanonicalName)
		}
	}

	b.WriteString("\nProdukty:\n")
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}

	b.WriteString("\nOdpowiedz tablicą JSON w tej samej kolejności:\n")
	b.WriteString(`[{"index":1,"name":"Mleko"},{"index":2,"skip":true}]` + "\n")
	b.WriteString(`Użyj "skip":true, gdy nie ma pewnej nazwy.`)

	return b.String()
}

// batchSuggestion is one element of the model's enumerated answer.
type batchSuggestion struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Skip  bool   `json:"skip,omitempty"`
}

// parseBatchResponse maps the model's enumerated JSON answer back onto the
// batch names. Malformed JSON fails the whole batch; elements with an index
// outside the enumeration are logged and dropped. Each suggestion keeps its
// raw JSON for auditing.
func parseBatchResponse(response string, names []string) (map[string]receipt.ModelSuggestion, error) {
	cleaned := stripCodeFences(response)

	var rawItems []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &rawItems); err != nil {
		return nil, fmt.Errorf("failed to parse batch response: %w, response: %s", err, truncateForLog(cleaned))
	}

	suggestions := make(map[string]receipt.ModelSuggestion, len(rawItems))
	for _, rawItem := range rawItems {
		var item batchSuggestion
		if err := json.Unmarshal(rawItem, &item); err != nil {
			return nil, fmt.Errorf("failed to parse batch element: %w, element: %s", err, truncateForLog(string(rawItem)))
		}

		if item.Index < 1 || item.Index > len(names) {
			log.Printf("[Gateway] Dropping suggestion with index %d outside batch of %d", item.Index, len(names))
			continue
		}

		name := names[item.Index-1]
		switch {
		case item.Skip:
			suggestions[name] = receipt.ModelSuggestion{Skip: true, Raw: string(rawItem)}
		case item.Name != "":
			suggestions[name] = receipt.ModelSuggestion{Name: item.Name, Raw: string(rawItem)}
		}
	}

	return suggestions, nil
}

func truncateForLog(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
