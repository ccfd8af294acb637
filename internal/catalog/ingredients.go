package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const ingredientJoin = ", "

// ExtractIngredients reads the ingredient list of a product detail page.
//
// The list is the run of sibling elements of sel.IngredientTag following the
// one whose text is exactly sel.IngredientStart, up to the first sibling
// starting with sel.IngredientStop or the end of the parent. It returns nil
// when the start marker is missing.
func ExtractIngredients(pageHTML string, sel Selectors) (*string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ingredientsFromDoc(doc, sel), nil
}

func ingredientsFromDoc(doc *goquery.Document, sel Selectors) *string {
	marker := doc.Find(sel.IngredientTag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == sel.IngredientStart
	}).First()
	if marker.Length() == 0 {
		return nil
	}

	var names []string
	for n := marker.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || n.Data != sel.IngredientTag {
			continue
		}
		text := strings.TrimSpace(nodeText(n))
		if strings.HasPrefix(text, sel.IngredientStop) {
			break
		}
		names = append(names, text)
	}

	joined := strings.Join(names, ingredientJoin)
	return &joined
}

func nodeText(node *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return buf.String()
}
