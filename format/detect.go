// Package format names the document formats folio reads and writes and
// recognises them from file names or content.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format is a document format.
type Format int

const (
	Unknown Format = iota
	DOCX           // WordprocessingML package
	HTML           // single-file HTML
	RTF            // Rich Text Format
)

type info struct {
	name      string
	ext       string
	aliases   []string
	mediaType string
	read      bool
}

var formats = map[Format]info{
	DOCX: {name: "DOCX", ext: ".docx",
		mediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	HTML: {name: "HTML", ext: ".html", aliases: []string{"htm"}, mediaType: "text/html", read: true},
	RTF:  {name: "RTF", ext: ".rtf", mediaType: "application/rtf"},
}

func (f Format) String() string {
	if fi, ok := formats[f]; ok {
		return fi.name
	}
	return "Unknown"
}

// Extension returns the file extension written for f, with its dot.
func (f Format) Extension() string { return formats[f].ext }

// MediaType returns the MIME type of f, or "" for Unknown.
func (f Format) MediaType() string { return formats[f].mediaType }

// Writable reports whether folio can write f. Every known format is.
func (f Format) Writable() bool {
	_, ok := formats[f]
	return ok
}

// Readable reports whether folio can build a document from f.
func (f Format) Readable() bool { return formats[f].read }

// Parse returns the format named by s, such as "docx" or ".HTML".
func Parse(s string) Format {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	if s == "" {
		return Unknown
	}
	for f, fi := range formats {
		if s == fi.ext[1:] {
			return f
		}
		for _, a := range fi.aliases {
			if s == a {
				return f
			}
		}
	}
	return Unknown
}

// Detect returns the format implied by the extension of filename.
func Detect(filename string) Format {
	return Parse(filepath.Ext(filename))
}

var (
	zipMagic = []byte("PK\x03\x04")
	rtfMagic = []byte(`{\rtf`)
)

// sniffLen is how much content the detectors look at.
const sniffLen = 512

// DetectFromMagic recognises RTF and HTML from the first bytes of a file.
// ZIP content is Unknown here; DetectFromReader looks inside archives.
func DetectFromMagic(data []byte) Format {
	switch {
	case len(data) < len(zipMagic):
		return Unknown
	case bytes.HasPrefix(data, rtfMagic):
		return RTF
	case bytes.HasPrefix(data, zipMagic):
		return Unknown
	case looksLikeHTML(data):
		return HTML
	}
	return Unknown
}

func looksLikeHTML(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	head := bytes.ToLower(data)
	for _, p := range []string{"<!doctype html", "<html"} {
		if bytes.HasPrefix(head, []byte(p)) {
			return true
		}
	}
	// XHTML
	return bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<html"))
}

// DetectFromReader recognises a format from content. A ZIP archive is DOCX
// when it has a content types part and parts under word/.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	head := make([]byte, sniffLen)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	head = head[:n]
	if !bytes.HasPrefix(head, zipMagic) {
		return DetectFromMagic(head), nil
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	var types, word bool
	for _, f := range zr.File {
		types = types || f.Name == "[Content_Types].xml"
		word = word || strings.HasPrefix(f.Name, "word/")
	}
	if types && word {
		return DOCX, nil
	}
	return Unknown, nil
}
