package scraper

import (
	"strings"
	"testing"
)

const wikiPage = `<!DOCTYPE html>
<html><head><title>Chapter 1</title><style>p { margin: 0 }</style></head>
<body>
<nav>Main page | Random | Donate</nav>
<div id="mw-content-text">
  <h2>Chapter 1<span class="mw-editsection">[edit]</span></h2>
  <p>The schooner lay becalmed in the lagoon.<sup>[1]</sup></p>
  <p>Dick watched the reef from the bow.</p>
  <table><tr><td>infobox junk</td></tr></table>
  <div class="printfooter">Retrieved from wikisource</div>
</div>
<footer>About | Disclaimers</footer>
<script>trackPageView();</script>
</body></html>`

func TestExtractTextScopesToContainer(t *testing.T) {
	text, err := ExtractText(wikiPage, "mw-content-text")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	for _, want := range []string{
		"The schooner lay becalmed in the lagoon.",
		"Dick watched the reef from the bow.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in extracted text:\n%s", want, text)
		}
	}
	for _, junk := range []string{
		"[edit]", "[1]", "infobox junk", "Retrieved from", "Main page", "About", "trackPageView", "margin",
	} {
		if strings.Contains(text, junk) {
			t.Errorf("Noise %q survived extraction:\n%s", junk, text)
		}
	}
}

func TestExtractTextFallsBackWithoutContainer(t *testing.T) {
	text, err := ExtractText(wikiPage, "no-such-id")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	// Falls back to the whole document, so chapter prose is still present.
	if !strings.Contains(text, "The schooner lay becalmed") {
		t.Errorf("Expected body text in fallback extraction:\n%s", text)
	}
	// Noise tags are still stripped in fallback mode.
	if strings.Contains(text, "trackPageView") {
		t.Errorf("Script content survived fallback extraction:\n%s", text)
	}
}

func TestExtractTextCollapsesBlankLines(t *testing.T) {
	text, err := ExtractText("<div><p>one</p><div></div><div></div><p>two</p></div>", "")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("Expected at most one blank line between blocks:\n%q", text)
	}
	if !strings.Contains(text, "one") || !strings.Contains(text, "two") {
		t.Errorf("Lost content while collapsing: %q", text)
	}
}

func TestExtractTextEmptyDocument(t *testing.T) {
	text, err := ExtractText("", "mw-content-text")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty result, got %q", text)
	}
}
