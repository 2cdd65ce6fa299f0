package out_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"atheneum/internal/modules/reader/adapter/out"
	"atheneum/internal/modules/reader/domain"
)

var epubFiles = []struct{ name, body string }{
	{"mimetype", "application/epub+zip"},
	{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
	{"OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Ann Author</dc:creator>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="cover"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`},
	{"OEBPS/toc.ncx", `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="text/ch1.xhtml"/>
      <navPoint id="n2" playOrder="2">
        <navLabel><text>Part Two</text></navLabel>
        <content src="text/ch2.xhtml#start"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`},
	{"OEBPS/cover.xhtml", `<html><body><img src="cover.jpg"/></body></html>`},
	{"OEBPS/text/ch1.xhtml", `<html><head><title>x</title><style>p{}</style></head><body>
<h1>Chapter One</h1>
<p>It was a bright cold day in April, and the clocks were striking thirteen.</p>
<p>Winston Smith, his chin nuzzled into his breast,<br/>slipped quickly through the glass doors.</p>
</body></html>`},
	{"OEBPS/text/ch2.xhtml", `<html><body><h2 id="start">Part Two</h2><p>Short.</p></body></html>`},
}

func writeEPUB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create epub: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, file := range epubFiles {
		w, err := zw.Create(file.name)
		if err != nil {
			t.Fatalf("zip entry: %v", err)
		}
		if _, err := w.Write([]byte(file.body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return path
}

func TestEPUBRendererSectionsAndTOC(t *testing.T) {
	t.Parallel()
	r := out.NewEPUBRenderer()
	if err := r.Open(context.Background(), writeEPUB(t)); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if r.SectionCount() != 3 {
		t.Fatalf("expected one section per spine item, got %d", r.SectionCount())
	}
	toc := r.TOC()
	if len(toc) != 2 || toc[0].Label != "Chapter One" || toc[0].Section != 1 || toc[1].Section != 2 || toc[1].Depth != 1 {
		t.Fatalf("unexpected toc: %+v", toc)
	}
	text, err := r.Section(1)
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	paragraphs := domain.Paragraphs(text)
	if len(paragraphs) != 3 {
		t.Fatalf("expected heading and two paragraphs, got %q", paragraphs)
	}
	if paragraphs[2] != "Winston Smith, his chin nuzzled into his breast, slipped quickly through the glass doors." {
		t.Fatalf("line breaks should collapse into spaces: %q", paragraphs[2])
	}
}

func TestEPUBRendererEmitsSpineLocations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := out.NewEPUBRenderer()
	if err := r.Open(ctx, writeEPUB(t)); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if err := r.GoTo(ctx, domain.Target{Token: "epubcfi(/6/4!/4/2/1:0)"}); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if err := r.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := r.Next(ctx); err != nil {
		t.Fatalf("next past the end: %v", err)
	}

	want := []int{1, 2, 2}
	for i, section := range want {
		ev := (<-r.Events()).(domain.EbookLocation)
		if ev.SectionIndex != section || ev.SectionTotal != 3 || ev.CFI != domain.SectionToken(section) {
			t.Fatalf("event %d: unexpected %+v", i, ev)
		}
		if ev.TOCItem == nil {
			t.Fatalf("event %d should carry its chapter", i)
		}
	}
	if err := r.GoTo(ctx, domain.Target{Token: "page 4"}); err == nil {
		t.Fatalf("a PDF page should not address an EPUB")
	}
}

func TestEPUBRendererRejectsNonEPUB(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "note.epub")
	if err := os.WriteFile(path, []byte("plain text"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := out.NewEPUBRenderer().Open(context.Background(), path); err == nil {
		t.Fatalf("expected open to fail")
	}
}
