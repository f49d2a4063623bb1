package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

func TestParseSubject(t *testing.T) {
	t.Run("accepts all known subjects", func(t *testing.T) {
		for _, s := range AllSubjects() {
			parsed, err := ParseSubject(string(s))
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("rejects unknown subject", func(t *testing.T) {
		_, err := ParseSubject("CHEMISTRY")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
	})

	t.Run("rejects lowercase", func(t *testing.T) {
		_, err := ParseSubject("math")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseSubject("")
		require.Error(t, err)
	})
}

func TestSubject_Display(t *testing.T) {
	assert.Equal(t, "计算机408", SubjectComputer408.Name())
	assert.Equal(t, "408", SubjectComputer408.ShortName())
	assert.Equal(t, "#3B82F6", SubjectComputer408.Color())

	assert.Equal(t, "数学", SubjectMath.Name())
	assert.Equal(t, "#10B981", SubjectMath.Color())
	assert.Equal(t, "英语", SubjectEnglish.Name())
	assert.Equal(t, "#F59E0B", SubjectEnglish.Color())
	assert.Equal(t, "政治", SubjectPolitics.Name())
	assert.Equal(t, "#EF4444", SubjectPolitics.Color())
}
