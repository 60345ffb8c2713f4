package moderation

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"marketsync/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const maskChar = '*'

func TestModerator_Mask(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	lists, err := LoadTerms()
	req.NoError(err)
	mod, err := NewModerator(lists, maskChar, log)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		masked   bool
	}{
		{
			name:     "Plain message is untouched",
			input:    "Posso enviar o orçamento amanhã de manhã",
			expected: "Posso enviar o orçamento amanhã de manhã",
		},
		{
			name:     "Contact term with preserved spacing",
			input:    "Me chama no whatsapp depois",
			expected: "Me chama no ******** depois",
			masked:   true,
		},
		{
			name:     "Punctuation noise inside the term",
			input:    "Manda no W.h.a.t.s.a.p.p",
			expected: "Manda no ***************",
			masked:   true,
		},
		{
			name:     "Phone number digits",
			input:    "Liga (11) 98765-4321 ok",
			expected: "Liga (**) *****-**** ok",
			masked:   true,
		},
		{
			name:     "Short numbers are kept",
			input:    "Área de 250 hectares em 2026",
			expected: "Área de 250 hectares em 2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := mod.Mask(tt.input)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.masked, len(found) > 0)
		})
	}
}

func TestLoadTerms_EmbeddedLanguages(t *testing.T) {
	req := require.New(t)

	lists, err := LoadTerms()
	req.NoError(err)
	req.ElementsMatch([]string{"pt", "en", "es"}, lists.Languages())
	req.Contains(lists["pt"], "whatsapp")
}

func TestLoadTerms_RejectsEmptyAndNestedFolders(t *testing.T) {
	req := require.New(t)

	_, err := loadTerms(fstest.MapFS{"terms/pt.txt": {Data: []byte("\n\n")}}, "terms")
	req.ErrorIs(err, errors.ErrEmptyWords)

	_, err = loadTerms(fstest.MapFS{"terms/nested/pt.txt": {Data: []byte("zap")}}, "terms")
	req.ErrorIs(err, errors.ErrOnlyTermFiles)
}
