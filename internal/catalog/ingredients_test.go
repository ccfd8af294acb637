package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIngredients_StopsAtEffectsMarker(t *testing.T) {
	html := `<html><body><div class="description">
		<strong>Product contains:</strong><br>
		<strong>Niacinamide</strong>, <strong>Panthenol</strong>,
		<strong>Centella Asiatica Extract</strong>
		<strong>Product effects:</strong>
		<strong>Brightening</strong>
	</div></body></html>`

	got, err := ExtractIngredients(html, DefaultSelectors())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Niacinamide, Panthenol, Centella Asiatica Extract", *got)
}

func TestExtractIngredients_NEntries(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		var b strings.Builder
		b.WriteString(`<div><strong>Product contains:</strong>`)
		var want []string
		for i := 0; i < n; i++ {
			name := "Ingredient" + strings.Repeat("X", i)
			want = append(want, name)
			b.WriteString("<strong>" + name + "</strong>")
		}
		b.WriteString(`<strong>Product effects:</strong><strong>Soothing</strong></div>`)

		got, err := ExtractIngredients(b.String(), DefaultSelectors())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, strings.Join(want, ", "), *got)
	}
}

func TestExtractIngredients_NoMarker(t *testing.T) {
	html := `<div><strong>Ingredients</strong><strong>Water</strong></div>`

	got, err := ExtractIngredients(html, DefaultSelectors())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtractIngredients_NoStopMarkerRunsToEndOfSiblings(t *testing.T) {
	html := `<div>
		<strong>Product contains:</strong>
		<strong>Water</strong>
		<em>not an ingredient</em>
		<strong>Glycerin</strong>
	</div>
	<div><strong>Outside the section</strong></div>`

	got, err := ExtractIngredients(html, DefaultSelectors())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Water, Glycerin", *got)
}

func TestExtractIngredients_MarkerIsExactMatch(t *testing.T) {
	html := `<div><strong>Product contains: lots</strong><strong>Water</strong></div>`

	got, err := ExtractIngredients(html, DefaultSelectors())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtractIngredients_MarkerWithoutEntries(t *testing.T) {
	html := `<div><strong> Product contains: </strong><strong>Product effects: calming</strong></div>`

	got, err := ExtractIngredients(html, DefaultSelectors())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", *got)
}
