package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	plain := `{"title":"T","sections":[]}`
	assert.Equal(t, plain, extractJSON(plain))
	assert.Equal(t, plain, extractJSON("```json\n"+plain+"\n```"))
	assert.Equal(t, plain, extractJSON("```\n"+plain+"\n```"))
	assert.Equal(t, plain, extractJSON("  \n"+plain+"\n  "))
}

func TestValidateGeneratedLesson(t *testing.T) {
	valid := fiveSections("Valid Lesson")
	assert.NoError(t, validateGeneratedLesson(valid))

	empty := &GeneratedLesson{Title: "", Sections: valid.Sections}
	assert.Error(t, validateGeneratedLesson(empty))

	noSections := &GeneratedLesson{Title: "T"}
	assert.Error(t, validateGeneratedLesson(noSections))

	tooFew := &GeneratedLesson{Title: "T", Sections: valid.Sections[:3]}
	assert.Error(t, validateGeneratedLesson(tooFew))

	tooMany := &GeneratedLesson{Title: "T", Sections: append(append([]GeneratedSection{}, valid.Sections...), valid.Sections[:2]...)}
	assert.Error(t, validateGeneratedLesson(tooMany))

	blankContent := fiveSections("T")
	blankContent.Sections[2].Content = "   "
	assert.Error(t, validateGeneratedLesson(blankContent))
}

func TestLanguageDirective(t *testing.T) {
	assert.Empty(t, languageDirective(""))
	assert.Empty(t, languageDirective("English"))
	assert.Contains(t, languageDirective("Spanish"), "Spanish")
	assert.Contains(t, languageDirective("Spanish"), "keep all technical code blocks")
}
