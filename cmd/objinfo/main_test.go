package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/milk9111/twobd/obj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	src := "v 0 0 0\nv 2 0 0\nv 2 1 0\nv 0 1 3\nf 1 2 3\nf 1 3 4\n"
	data, err := obj.Parse(strings.NewReader(src), obj.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	report(&buf, "quad.obj", data)

	out := buf.String()
	assert.Contains(t, out, "quad.obj\n")
	assert.Contains(t, out, "vertices:  6\n")
	assert.Contains(t, out, "triangles: 2\n")
	assert.Contains(t, out, "(0.000, 0.000, 0.000) .. (2.000, 1.000, 3.000)")
	assert.Contains(t, out, "size:      2.000 x 1.000 x 3.000")
}
