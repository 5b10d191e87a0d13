package illustrate

import (
	"time"

	"github.com/google/uuid"
)

// CharacterReference keeps a character's look consistent across chapters.
type CharacterReference struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	VisualFeatures  string    `json:"visualFeatures,omitempty"`
	ArtStyle        string    `json:"artStyle,omitempty"`
	ReferenceImages []string  `json:"referenceImages"`
	CreatedAt       time.Time `json:"createdAt"`
}

func NewCharacterReference(name, description, visualFeatures, artStyle string, images []string) CharacterReference {
	if images == nil {
		images = []string{}
	}
	return CharacterReference{
		ID:              "char_" + uuid.NewString(),
		Name:            name,
		Description:     description,
		VisualFeatures:  visualFeatures,
		ArtStyle:        artStyle,
		ReferenceImages: images,
		CreatedAt:       time.Now().UTC(),
	}
}

// CharacterPrompt is the base prompt for a character reference sheet.
func CharacterPrompt(description, artStyle string) string {
	return description + ", consistent character design, same appearance, " + artStyle + " style"
}
