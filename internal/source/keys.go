package source

// Secondary documents name things inconsistently across levels; the first
// key present wins.
var (
	nameKeys     = []string{"especialidade", "nome", "name", "assunto", "title"}
	childrenKeys = []string{"subespecialidades", "assuntos", "children", "items", "subgrupos", "topicos", "subtopicos", "detalhes"}
)

// Child list keys of the primary hierarchy document, one per level below
// the root.
var outlineChildKeys = []string{"subespecialidades", "subgrupos", "topicos", "subtopicos", "detalhes", "children"}

func firstString(obj map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func firstList(obj map[string]any, keys []string) ([]any, string, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if list, ok := v.([]any); ok {
				return list, key, true
			}
		}
	}
	return nil, "", false
}
