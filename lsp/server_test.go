package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetToPosition(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		line   int
		col    int
	}{
		{"start of document", "abc", 0, 0, 0},
		{"mid first line", "abc\ndef", 2, 0, 2},
		{"start of second line", "abc\ndef", 4, 1, 0},
		{"mid second line", "abc\ndef", 6, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := offsetToPosition(tt.text, tt.offset)
			assert.Equal(t, tt.line, int(pos.Line))
			assert.Equal(t, tt.col, int(pos.Character))
		})
	}
}

func TestFullDocumentRange(t *testing.T) {
	r := fullDocumentRange("abc\ndefgh")
	assert.Equal(t, 0, int(r.Start.Line))
	assert.Equal(t, 0, int(r.Start.Character))
	assert.Equal(t, 1, int(r.End.Line))
	assert.Equal(t, 5, int(r.End.Character))
}

func TestDiagnoseTextPublishesDiagnosticOnFailure(t *testing.T) {
	doc, diagnostics := diagnoseText("")

	require.Len(t, diagnostics, 1)
	assert.Equal(t, serverName, *diagnostics[0].Source)
	assert.NotEmpty(t, diagnostics[0].Message)
	assert.False(t, doc.hasFix)
}

func TestDiagnoseTextClearsDiagnosticAndCachesFixWhenRepaired(t *testing.T) {
	doc, diagnostics := diagnoseText(`{name: 'Ann'}`)

	assert.Empty(t, diagnostics)
	require.True(t, doc.hasFix)
	assert.Equal(t, `{"name": "Ann"}`, doc.repaired)
}

func TestDiagnoseTextAlreadyValidHasNoFixAndNoDiagnostic(t *testing.T) {
	doc, diagnostics := diagnoseText(`{"a": 1}`)

	assert.Empty(t, diagnostics)
	assert.False(t, doc.hasFix)
}

func TestCodeActionsForReturnsFixWhenDocumentHasOne(t *testing.T) {
	doc := &document{text: `{name: 'Ann'}`, repaired: `{"name": "Ann"}`, hasFix: true}

	actions := codeActionsFor("file:///doc.json", doc)

	require.Len(t, actions, 1)
	assert.Equal(t, "jsonrepair.fix", actions[0].Title)
	edits := actions[0].Edit.Changes["file:///doc.json"]
	require.Len(t, edits, 1)
	assert.Equal(t, `{"name": "Ann"}`, edits[0].NewText)
}

func TestCodeActionsForReturnsNilWithoutFix(t *testing.T) {
	assert.Nil(t, codeActionsFor("file:///doc.json", &document{text: `{"a": 1}`}))
	assert.Nil(t, codeActionsFor("file:///doc.json", nil))
}
