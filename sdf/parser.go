package sdf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// Parser streams Records lazily from an underlying byte stream. One
// Parser is not safe for concurrent use.
type Parser struct {
	r            *bufio.Reader
	datasetName  string
	lineNo       int
	nextRecordNo int
	done         bool

	pending    string
	hasPending bool
}

// New wraps r as an SD file stream. If name ends in ".gz" or ".zip" the
// stream is treated as gzip-compressed and transparently decompressed
// (per spec.md §6, detection is by filename suffix, not content
// sniffing). startRecordNumber seeds RecordNumber for the first record
// produced.
func New(r io.Reader, name string, startRecordNumber int) (*Parser, error) {
	if strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".zip") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("sdf: opening gzip stream: %w", err)
		}
		r = gz
	}
	return &Parser{
		r:            bufio.NewReaderSize(r, 64*1024),
		datasetName:  name,
		nextRecordNo: startRecordNumber,
	}, nil
}

// Next returns the next record, or io.EOF once the stream is exhausted.
// IO errors from the underlying reader are returned wrapped so callers
// can distinguish them from the spec's recoverable per-record errors
// (spec.md §7: "IO errors are propagated ... fatal immediately").
func (p *Parser) Next() (*Record, error) {
	if p.done {
		return nil, io.EOF
	}

	startLine := p.lineNo + 1
	molLines, ok, err := p.readMolblock()
	if err != nil {
		return nil, err
	}
	if !ok {
		p.done = true
		return nil, io.EOF
	}

	props, err := p.readProperties()
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Molblock:     strings.Join(molLines, "\n") + "\n",
		Properties:   props,
		DatasetName:  p.datasetName,
		LineNumber:   startLine,
		RecordNumber: p.nextRecordNo,
	}
	p.nextRecordNo++
	return rec, nil
}

// readMolblock reads lines up to and including a trimmed "M  END" line. If
// the stream ends (or hits "$$$$") before "M  END" is seen, the spec
// treats the whole region as the molblock with an empty property map
// (spec.md §4.3 error case); readMolblock leaves that "$$$$" unread, so
// readProperties reads it first and returns an empty map.
func (p *Parser) readMolblock() ([]string, bool, error) {
	var lines []string
	sawAny := false
	for {
		line, err := p.nextLine()
		if err == io.EOF {
			if !sawAny {
				return nil, false, nil
			}
			return lines, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		sawAny = true
		trimmed := strings.TrimSpace(line)
		if trimmed == "$$$$" {
			p.pending = line
			p.hasPending = true
			return lines, true, nil
		}
		lines = append(lines, line)
		if trimmed == "M  END" {
			return lines, true, nil
		}
	}
}

// readProperties reads zero or more "> <NAME>\nvalue...\n\n" sections up
// to and including the "$$$$" terminator.
func (p *Parser) readProperties() (map[string]string, error) {
	props := make(map[string]string)
	for {
		line, err := p.nextLine()
		if err == io.EOF {
			return props, nil
		}
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "$$$$" {
			return props, nil
		}
		if trimmed == "" {
			continue
		}
		name, ok := parseHeader(trimmed)
		if !ok {
			// Header without a matching '>': skip this property, per
			// spec.md §4.3.
			continue
		}
		value, err := p.readValue()
		if err != nil {
			return nil, err
		}
		props[name] = value
	}
}

// readValue reads value lines until a blank line, EOF, or "$$$$". A
// property whose header is followed directly by a blank line is kept
// with an empty value. The first blank line always ends the value, so a
// value never contains an empty line.
func (p *Parser) readValue() (string, error) {
	var b strings.Builder
	first := true
	for {
		line, err := p.peekLine()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			p.nextLine() // consume the blank line
			return b.String(), nil
		}
		if trimmed == "$$$$" {
			return b.String(), nil
		}
		p.nextLine()
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		first = false
	}
}

// parseHeader extracts NAME from a "> <NAME>" or ">  <NAME>" header line.
func parseHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, ">") {
		return "", false
	}
	start := strings.Index(line, "<")
	if start < 0 {
		return "", false
	}
	end := strings.Index(line[start:], ">")
	if end < 0 {
		return "", false
	}
	return line[start+1 : start+end], true
}

// nextLine consumes and returns the next normalized line, draining the
// one-line pending buffer left by peekLine if present.
func (p *Parser) nextLine() (string, error) {
	if p.hasPending {
		p.hasPending = false
		line := p.pending
		p.pending = ""
		return line, nil
	}
	return p.readRaw()
}

// peekLine returns the next line without consuming it; a subsequent
// nextLine or peekLine call returns the same line until nextLine is
// actually called to consume it.
func (p *Parser) peekLine() (string, error) {
	if p.hasPending {
		return p.pending, nil
	}
	line, err := p.readRaw()
	if err != nil {
		return "", err
	}
	p.pending = line
	p.hasPending = true
	return line, nil
}

func (p *Parser) readRaw() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("sdf: reading stream: %w", err)
	}
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	p.lineNo++
	line = strings.ReplaceAll(line, "\r\n", "\n")
	return strings.TrimRight(line, "\n"), nil
}
