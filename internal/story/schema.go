package story

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// BookSchema returns the JSON Schema of the Book export document.
func BookSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&Book{})
	s.Title = "Book"
	s.Description = "A generated children's book with its chapters and metadata"
	return json.MarshalIndent(s, "", "  ")
}
