package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Basic(t *testing.T) {
	svc := NewService()

	out, err := svc.Render("**14:30** in Tokyo")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>14:30</strong>")
}

func TestRender_Table(t *testing.T) {
	svc := NewService()

	source := `| City | Time |
|------|------|
| Tokyo | 23:00 |
| London | 14:00 |`

	out, err := svc.Render(source)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>Tokyo</td>")
	assert.Contains(t, out, "<td>14:00</td>")
}

func TestRender_Empty(t *testing.T) {
	svc := NewService()

	out, err := svc.Render("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
