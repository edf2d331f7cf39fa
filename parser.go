/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"github.com/golang/glog"
)

// phase is the Parser's internal state, per spec.md §4.F.
type phase int

const (
	phaseBoundaryFirst phase = iota
	phaseHeader
	phasePostHeader
	phaseContent
	phasePostBoundary
	phaseFinished
)

// Target is what a Parser drives: it maps a part's Headers to a Sink (or
// declines the part), tracks which required part names are still unseen,
// and receives every recoverable error the Parser and its Sinks raise.
//
// bind.Bind produces a Target from a struct description; a caller may also
// implement Target by hand for cases bind does not cover.
type Target interface {
	// RequiredNames returns every part name that must be observed by
	// end-of-stream. Checked once, at construction.
	RequiredNames() []string

	// Sink returns the Sink for the part described by headers, or nil if
	// this Target has no interest in it (the part is then silently
	// consumed).
	Sink(headers Headers) Sink

	// HandleError is invoked for every recoverable error: KindSizeLimit
	// and KindMalformedHeader from the Parser itself, KindRequiredMissing
	// from Close, and KindParseInt, KindParseFloat, KindParseBool,
	// KindParseString from bind's generated sinks. For KindSizeLimit, a
	// non-nil returned error aborts the stream and Write returns it to the
	// caller; otherwise the returned OnError selects how the Parser
	// proceeds with the rest of the part. For every other kind both
	// returned values are discarded: a malformed header line never aborts
	// the stream, and Flush-time and end-of-stream errors have nothing left
	// to disposition.
	HandleError(err *ParseError) (OnError, error)

	// Finish is called once, after KindRequiredMissing (if any) has been
	// reported, when the stream ends.
	Finish()
}

// Parser is a streaming multipart/form-data reader: it consumes arbitrary
// byte chunks via Write and drives a Target as described in Target's doc
// comment. It keeps no copy of the stream beyond the in-progress delimiter
// candidate (at most len(middle) bytes, represented as an integer count,
// not a buffer — see contentMatched).
type Parser struct {
	delim  delimiters
	target Target

	phase phase

	// boundaryFirstMatched/headerMatched/postBoundaryMatched count bytes
	// matched against delim.first / delim.empty / {delim.divider,
	// delim.epilogue} respectively. contentMatched (see below) plays the
	// same role for delim.middle but via the KMP automaton.
	boundaryFirstMatched int
	headerMatched        int
	postBoundaryMatched  int

	middleBorders  []int
	contentMatched int

	hb      headerBuilder
	headers Headers
	sink    Sink

	maxSize     *int64
	contentSize int64
	onError     OnError

	unseen map[string]struct{}

	debug bool
}

// NewParser returns a Parser that recognizes boundary and drives target.
// Pass WithDebug(true) (via options) to have the Target's dispatch logged
// at glog.V(1) each time a part is selected — see also bind.WithDebug.
func NewParser(boundary string, target Target, opts ...ParserOption) *Parser {
	p := &Parser{
		delim:          newDelimiters(boundary),
		target:         target,
		phase:          phaseBoundaryFirst,
		onError:        ContinueWithError,
		middleBorders:  computeBorders([]byte("\r\n--" + boundary)),
	}
	names := target.RequiredNames()
	p.unseen = make(map[string]struct{}, len(names))
	for _, name := range names {
		p.unseen[name] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParserOption configures a Parser at construction time.
type ParserOption func(*Parser)

// WithDebug enables a one-line glog.V(1) trace of each part's dispatch
// (the part name and whether a Sink was found for it). This is the runtime
// analogue of spec.md §6's build-time "debug" flag: since this
// implementation binds part names to sinks through a runtime table rather
// than generated code, there is no generated source to print, so the
// dispatch decision itself is what gets traced.
func WithDebug(debug bool) ParserOption {
	return func(p *Parser) { p.debug = debug }
}

// Write feeds the next chunk of the stream to the Parser. Chunks may be
// any non-negative length, including zero, and may split a delimiter at
// any byte boundary; the result is identical to processing the
// concatenation of all chunks passed so far in one call.
//
// Write panics with a *ParseError of Kind KindMalformedBoundary if the
// very first boundary is not well-formed; this is the one fatal condition
// in the state machine (spec.md §4.F). No other anomaly panics: all are
// reported through Target.HandleError, which may itself choose to abort
// the stream by returning a non-nil error.
func (p *Parser) Write(chunk []byte) (int, error) {
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		switch p.phase {
		case phaseBoundaryFirst:
			p.processBoundaryFirst(c)
		case phaseHeader:
			p.processHeader(c)
		case phasePostHeader:
			p.processPostHeader(c)
		case phaseContent:
			if err := p.processContent(c); err != nil {
				return i, err
			}
		case phasePostBoundary:
			p.processPostBoundary(c)
		case phaseFinished:
			// terminal: ignore further input
		}
	}
	return len(chunk), nil
}

// Close signals end-of-stream: any required part name never observed is
// reported as a single KindRequiredMissing error (its return value is
// discarded, per spec.md §4.F — no remedy is possible this late), and then
// Target.Finish is called.
func (p *Parser) Close() error {
	if len(p.unseen) > 0 {
		missing := make([]string, 0, len(p.unseen))
		for name := range p.unseen {
			missing = append(missing, name)
		}
		_, _ = p.target.HandleError(&ParseError{Kind: KindRequiredMissing, Missing: missing})
	}
	p.target.Finish()
	return nil
}

func (p *Parser) processBoundaryFirst(c byte) {
	pattern := p.delim.first
	if c == pattern[p.boundaryFirstMatched] {
		p.boundaryFirstMatched++
		if p.boundaryFirstMatched == len(pattern) {
			p.boundaryFirstMatched = 0
			p.enterHeader()
		}
		return
	}
	panic(newMalformedBoundaryError(c, p.boundaryFirstMatched))
}

func (p *Parser) enterHeader() {
	p.headerMatched = 0
	p.headers = nil
	p.phase = phaseHeader
}

// processHeader reads one header line, ending on the \r\n terminating it.
// An embedded \r not followed by \n (e.g. inside a quoted header value) is
// disambiguated by replaying the already-matched CRLF prefix as literal
// header bytes before continuing — see spec.md §4.F.
func (p *Parser) processHeader(c byte) {
	empty := p.delim.empty
	if c == empty[p.headerMatched] {
		p.headerMatched++
		if p.headerMatched == len(empty) {
			p.headerMatched = 0
			p.hb.flushLine()
			p.phase = phasePostHeader
		}
		return
	}

	if p.headerMatched > 0 {
		matched := p.headerMatched
		p.headerMatched = 0
		p.hb.writeByte(empty[0])
		for i := 1; i < matched; i++ {
			p.processHeader(empty[i])
		}
		p.processHeader(c)
		return
	}

	p.hb.writeByte(c)
}

// processPostHeader looks for the blank line that ends the header block.
// On mismatch it replays the matched prefix as header bytes (same
// disambiguation as processHeader) and falls back to reading another
// header line.
func (p *Parser) processPostHeader(c byte) {
	empty := p.delim.empty
	if c == empty[p.headerMatched] {
		p.headerMatched++
		if p.headerMatched == len(empty) {
			p.headerMatched = 0
			p.enterContent()
		}
		return
	}

	matched := p.headerMatched
	p.headerMatched = 0
	if matched > 0 {
		p.hb.writeByte(empty[0])
	}
	for i := 1; i < matched; i++ {
		p.processHeader(empty[i])
	}
	p.phase = phaseHeader
	p.processHeader(c)
}

func (p *Parser) enterContent() {
	p.contentSize = 0
	p.onError = ContinueWithError

	headers := p.hb.build(func(err error) {
		if pe, ok := err.(*ParseError); ok {
			_, _ = p.target.HandleError(pe)
		}
	})
	p.headers = headers

	p.sink = p.target.Sink(headers)

	name, hasName := headers.Name()
	if p.debug {
		glog.V(1).Infof("multipart: part %q -> sink found: %t", name, p.sink != nil)
	}

	if p.sink != nil {
		if hasName {
			delete(p.unseen, name)
		}
		p.maxSize = p.sink.Params().MaxSize
		p.sink.Open(headers)
	} else {
		p.maxSize = nil
	}

	p.contentMatched = 0
	p.phase = phaseContent
}

// processContent matches c against delim.middle using the precomputed KMP
// border function for delim.middle. Bytes that fall out of an abandoned
// candidate match are emitted to the Sink as soon as the candidate fails;
// bytes that are part of a live candidate are held only as the integer
// contentMatched — the candidate is never materialized as a buffer, since
// it is always exactly delim.middle[:contentMatched] by construction.
func (p *Parser) processContent(c byte) error {
	pattern := p.delim.middle
	matched := p.contentMatched

	newMatched := kmpStep(matched, c, pattern, p.middleBorders)
	emitCount := matched + 1 - newMatched

	if emitCount > 0 {
		if emitCount <= matched {
			if err := p.emit(pattern[:emitCount]); err != nil {
				return err
			}
		} else {
			if err := p.emit(pattern[:matched]); err != nil {
				return err
			}
			if err := p.emit([]byte{c}); err != nil {
				return err
			}
		}
	}

	if newMatched == len(pattern) {
		p.flushSink()
		p.contentMatched = 0
		p.postBoundaryMatched = 0
		p.phase = phasePostBoundary
		return nil
	}

	p.contentMatched = newMatched
	return nil
}

// emit delivers data to the active Sink, enforcing max_size first.
func (p *Parser) emit(data []byte) error {
	if p.sink == nil || len(data) == 0 {
		return nil
	}

	if p.onError == Skip {
		return nil
	}

	if p.maxSize != nil {
		p.contentSize += int64(len(data))
		if p.contentSize > *p.maxSize {
			switch p.onError {
			case ContinueWithError:
				name := p.sink.Params().Name
				limit := *p.maxSize
				onError, err := p.target.HandleError(&ParseError{
					Kind:     KindSizeLimit,
					PartName: name,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				p.onError = onError
				// Cleared regardless of the chosen disposition: once a
				// part has overflowed once, it is never re-checked. See
				// SPEC_FULL.md §7.1 / DESIGN.md for why this mirrors the
				// reference implementation rather than re-arming the
				// limit for ContinueWithError.
				p.maxSize = nil
			case ContinueSilent, Skip:
				// unreachable in practice: p.onError is only ever
				// ContinueWithError while p.maxSize != nil, since both
				// other dispositions clear/bypass it above. Kept for
				// exhaustiveness.
			}
		}
	}

	// Re-check: the handler may have just switched the disposition to
	// Skip above, in which case the crossing chunk itself must not reach
	// the sink either — spec.md's Invariant 4 bounds cumulative bytes
	// delivered by max_size whenever the disposition is Skip, with no
	// one-chunk grace period.
	if p.onError == Skip {
		return nil
	}

	p.sink.Write(p.headers, data)
	return nil
}

func (p *Parser) flushSink() {
	if p.sink != nil {
		p.sink.Flush(p.headers)
	}
}

func (p *Parser) processPostBoundary(c byte) {
	divider := p.delim.divider
	epilogue := p.delim.epilogue
	pos := p.postBoundaryMatched

	if pos < len(divider) && c == divider[pos] {
		if pos+1 == len(divider) {
			p.postBoundaryMatched = 0
			p.enterHeader()
			return
		}
	}
	if pos < len(epilogue) && c == epilogue[pos] {
		if pos+1 == len(epilogue) {
			p.postBoundaryMatched = 0
			p.phase = phaseFinished
			return
		}
	}
	if pos+1 < len(divider) || pos+1 < len(epilogue) {
		p.postBoundaryMatched++
	}
}

// computeBorders returns the KMP failure function (longest proper
// border length at each prefix) for pattern.
func computeBorders(pattern []byte) []int {
	borders := make([]int, len(pattern))
	length := 0
	for i := 1; i < len(pattern); i++ {
		for length > 0 && pattern[i] != pattern[length] {
			length = borders[length-1]
		}
		if pattern[i] == pattern[length] {
			length++
		}
		borders[i] = length
	}
	return borders
}

// kmpStep advances the automaton for pattern by one byte c, given matched
// bytes already recognized (matched < len(pattern)), returning the new
// matched count in [0, len(pattern)].
func kmpStep(matched int, c byte, pattern []byte, borders []int) int {
	for matched > 0 && pattern[matched] != c {
		matched = borders[matched-1]
	}
	if pattern[matched] == c {
		matched++
	}
	return matched
}
