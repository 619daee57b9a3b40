package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onuc/src/errs"
)

func TestDefaultParseReportsNoParserWired(t *testing.T) {
	_, err := Parse("discourse sample { concern: \"demo\" }")
	require.Error(t, err)

	var ce *errs.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errs.GrammarViolation, ce.Kind)
}
